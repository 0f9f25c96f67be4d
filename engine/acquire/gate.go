// Package acquire makes the bundled icon package available on disk, either
// from a previously populated cache directory or by downloading it from an
// npm registry.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/compozy/iconpipe/engine/core"
	"github.com/compozy/iconpipe/pkg/logger"
	"github.com/go-resty/resty/v2"
	"github.com/gofrs/flock"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

const (
	// CachedVersion is reported when content comes from an existing cache.
	CachedVersion = "cached"
	// PackageDir is the directory npm tarballs unpack into.
	PackageDir = "package"

	DefaultPackage     = "@iconify/json"
	DefaultCacheDir    = "cache"
	DefaultRegistryURL = "https://registry.npmjs.org"
	DefaultTimeout     = 5 * time.Minute
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 500 * time.Millisecond

	lockPollInterval = 250 * time.Millisecond
	abbreviatedJSON  = "application/vnd.npm.install-v1+json"
)

// Options configures a Gate.
type Options struct {
	Package     string
	CacheDir    string
	RegistryURL string
	// Version is a semver constraint; empty selects the latest dist-tag.
	Version    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Package == "" {
		out.Package = DefaultPackage
	}
	if out.CacheDir == "" {
		out.CacheDir = DefaultCacheDir
	}
	if out.RegistryURL == "" {
		out.RegistryURL = DefaultRegistryURL
	}
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	if out.MaxRetries < 0 {
		out.MaxRetries = 0
	}
	if out.RetryDelay <= 0 {
		out.RetryDelay = DefaultRetryDelay
	}
	return out
}

// Result locates acquired content.
type Result struct {
	ContentRoot string `json:"content_root"`
	Version     string `json:"version"`
}

// Gate acquires the icon package.
type Gate struct {
	fs     afero.Fs
	client *resty.Client
	opts   Options
}

// NewGate builds a gate writing through fs. Locking always uses the OS
// filesystem path of the cache directory.
func NewGate(fs afero.Fs, opts Options) *Gate {
	o := opts.withDefaults()
	client := resty.New().
		SetBaseURL(o.RegistryURL).
		SetTimeout(o.Timeout).
		SetHeader("User-Agent", "iconpipe")
	return &Gate{fs: fs, client: client, opts: o}
}

// Acquire returns the content root. When the cache directory already exists
// it is trusted as is and nothing is fetched.
func (g *Gate) Acquire(ctx context.Context) (*Result, error) {
	log := logger.FromContext(ctx)
	if res, ok, err := g.cached(); err != nil || ok {
		if ok {
			log.Debug("Using cached package", "path", res.ContentRoot)
		}
		return res, err
	}
	unlock, err := g.lock(ctx)
	if err != nil {
		return nil, g.fail(err)
	}
	defer unlock()
	// another process may have filled the cache while we waited
	if res, ok, err := g.cached(); err != nil || ok {
		return res, err
	}
	res, err := g.fetch(ctx)
	if err != nil {
		return nil, g.fail(err)
	}
	log.Info("Package downloaded", "package", g.opts.Package, "version", res.Version)
	return res, nil
}

func (g *Gate) cached() (*Result, bool, error) {
	exists, err := afero.DirExists(g.fs, g.opts.CacheDir)
	if err != nil {
		return nil, false, g.fail(err)
	}
	if !exists {
		return nil, false, nil
	}
	return &Result{
		ContentRoot: filepath.Join(g.opts.CacheDir, PackageDir),
		Version:     CachedVersion,
	}, true, nil
}

func (g *Gate) lock(ctx context.Context) (func(), error) {
	parent := filepath.Dir(filepath.Clean(g.opts.CacheDir))
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache parent %s: %w", parent, err)
	}
	fl := flock.New(filepath.Clean(g.opts.CacheDir) + ".lock")
	locked, err := fl.TryLockContext(ctx, lockPollInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cache: %w", err)
	}
	if !locked {
		return nil, errors.New("cache lock not acquired")
	}
	return func() {
		_ = fl.Unlock()
	}, nil
}

func (g *Gate) fetch(ctx context.Context) (*Result, error) {
	meta, err := g.download(ctx, "/"+url.PathEscape(g.opts.Package), abbreviatedJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch package metadata: %w", err)
	}
	release, err := ResolveRelease(meta, g.opts.Version)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("Downloading package", "package", g.opts.Package, "version", release.Version)
	tarball, err := g.download(ctx, release.Tarball, "")
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", release.Tarball, err)
	}
	if err := g.install(tarball); err != nil {
		return nil, err
	}
	return &Result{
		ContentRoot: filepath.Join(g.opts.CacheDir, PackageDir),
		Version:     release.Version,
	}, nil
}

// statusError is a non-2xx registry response.
type statusError struct {
	url    string
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.url, e.status)
}

func (g *Gate) download(ctx context.Context, target, accept string) ([]byte, error) {
	var body []byte
	backoff := retry.WithMaxRetries(uint64(g.opts.MaxRetries), retry.NewExponential(g.opts.RetryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req := g.client.R().SetContext(ctx)
		if accept != "" {
			req.SetHeader("Accept", accept)
		}
		resp, err := req.Get(target)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(err)
		}
		if resp.IsError() {
			statusErr := &statusError{url: resp.Request.URL, status: resp.StatusCode()}
			if resp.StatusCode() >= 500 || resp.StatusCode() == 429 {
				return retry.RetryableError(statusErr)
			}
			return statusErr
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// install unpacks tarball next to the cache directory and moves it into
// place, so a partial download never looks like a valid cache.
func (g *Gate) install(tarball []byte) error {
	parent := filepath.Dir(filepath.Clean(g.opts.CacheDir))
	if err := g.fs.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", parent, err)
	}
	tmp, err := afero.TempDir(g.fs, parent, ".iconpipe-download-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = g.fs.RemoveAll(tmp)
		}
	}()
	if err := Extract(g.fs, tarball, tmp); err != nil {
		return err
	}
	if ok, _ := afero.DirExists(g.fs, filepath.Join(tmp, PackageDir)); !ok {
		return fmt.Errorf("tarball has no %s/ directory", PackageDir)
	}
	if err := g.fs.Rename(tmp, g.opts.CacheDir); err != nil {
		return fmt.Errorf("failed to move package into %s: %w", g.opts.CacheDir, err)
	}
	committed = true
	return nil
}

func (g *Gate) fail(err error) error {
	if core.HasCode(err, core.CodeAcquireFailed) {
		return err
	}
	return core.NewError(err, core.CodeAcquireFailed, map[string]any{
		"package":   g.opts.Package,
		"cache_dir": g.opts.CacheDir,
	})
}
