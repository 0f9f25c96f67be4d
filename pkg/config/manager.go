package config

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Manager holds the active configuration and the sources it came from.
type Manager struct {
	Service  Service
	current  atomic.Value // stores *Config
	sources  []Source
	reloadMu sync.Mutex
}

// NewManager creates a new configuration manager.
func NewManager(service Service) *Manager {
	if service == nil {
		service = NewService()
	}
	return &Manager{Service: service}
}

// Load loads configuration from sources and makes it current.
func (m *Manager) Load(ctx context.Context, sources ...Source) (*Config, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	m.sources = append([]Source(nil), sources...)
	config, err := m.Service.Load(ctx, sources...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	m.current.Store(config)
	return config, nil
}

// Sources returns a copy of the sources used by the last Load.
func (m *Manager) Sources() []Source {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	return append([]Source(nil), m.sources...)
}

// Get returns the current configuration, or nil before the first Load.
func (m *Manager) Get() *Config {
	if cfg, ok := m.current.Load().(*Config); ok {
		return cfg
	}
	return nil
}

// Reload reads every source again.
func (m *Manager) Reload(ctx context.Context) error {
	_, err := m.Load(ctx, m.Sources()...)
	return err
}
