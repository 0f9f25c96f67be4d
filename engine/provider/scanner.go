// Package provider discovers the providers of a vector output tree and the
// SVG files each one holds.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/compozy/iconpipe/engine/core"
	"github.com/spf13/afero"
)

const vectorPattern = "**/*.svg"

var ErrUnknownProvider = errors.New("unknown provider")

// Scanner walks a vector root.
type Scanner struct {
	fs   afero.Fs
	root string
}

func NewScanner(fsys afero.Fs, root string) *Scanner {
	return &Scanner{fs: fsys, root: root}
}

func (s *Scanner) Root() string {
	return s.root
}

// List returns the immediate subdirectories of the root, sorted by name. An
// empty or missing root yields a NO_PROVIDERS error.
func (s *Scanner) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", s.root, err)
	}
	var providers []string
	for _, e := range entries {
		if e.IsDir() {
			providers = append(providers, e.Name())
		}
	}
	if len(providers) == 0 {
		return nil, core.NewError(nil, core.CodeNoProviders, map[string]any{"root": s.root})
	}
	sort.Strings(providers)
	return providers, nil
}

// Resolve maps a provider name or a 1-based index into providers. An exact
// name wins over an index.
func Resolve(providers []string, choice string) (string, error) {
	choice = strings.TrimSpace(choice)
	for _, p := range providers {
		if p == choice {
			return p, nil
		}
	}
	return ResolveIndex(providers, choice)
}

// ResolveIndex accepts only a 1-based index into providers.
func ResolveIndex(providers []string, choice string) (string, error) {
	choice = strings.TrimSpace(choice)
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(providers) {
		return providers[n-1], nil
	}
	return "", core.NewError(ErrUnknownProvider, core.CodeInvalidSelection, map[string]any{"choice": choice})
}

// Files returns every .svg file below the provider directory, recursively,
// as paths relative to the root, in lexical walk order.
func (s *Scanner) Files(ctx context.Context, provider string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, provider)
	if ok, err := afero.DirExists(s.fs, dir); err != nil || !ok {
		return nil, core.NewError(ErrUnknownProvider, core.CodeInvalidSelection, map[string]any{"provider": provider})
	}
	// glob below the provider so its name is never read as a pattern
	iofs := afero.NewIOFS(afero.NewBasePathFs(s.fs, dir))
	var files []string
	err := doublestar.GlobWalk(iofs, vectorPattern,
		func(p string, d fs.DirEntry) error {
			if d.IsDir() {
				return nil
			}
			files = append(files, filepath.Join(provider, filepath.FromSlash(p)))
			return ctx.Err()
		}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, core.NewError(nil, core.CodeNoVectorFiles, map[string]any{"provider": provider})
	}
	return files, nil
}
