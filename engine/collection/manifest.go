// Package collection indexes the icon sets bundled in an acquired package.
package collection

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/compozy/iconpipe/engine/core"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

const (
	ManifestFile = "collections.json"
	SetsDir      = "json"
)

// Info is the metadata kept for one icon set in the manifest.
type Info struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Category string `json:"category,omitempty"`
	License  string `json:"license,omitempty"`
}

// Manifest lists the icon set prefixes of a content root in document order.
type Manifest struct {
	root     string
	prefixes []string
	info     map[string]Info
}

// Load reads <contentRoot>/collections.json.
func Load(ctx context.Context, fs afero.Fs, contentRoot string) (*Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(contentRoot, ManifestFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, core.NewError(err, core.CodeInvalidManifest, map[string]any{"path": path})
	}
	return Parse(contentRoot, data)
}

// Parse builds a manifest from raw collections.json content.
func Parse(contentRoot string, data []byte) (*Manifest, error) {
	if !gjson.ValidBytes(data) {
		return nil, core.NewError(fmt.Errorf("malformed JSON"), core.CodeInvalidManifest, nil)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, core.NewError(fmt.Errorf("manifest is not an object"), core.CodeInvalidManifest, nil)
	}
	m := &Manifest{root: contentRoot, info: make(map[string]Info)}
	doc.ForEach(func(key, value gjson.Result) bool {
		prefix := key.String()
		if _, dup := m.info[prefix]; !dup {
			m.prefixes = append(m.prefixes, prefix)
		}
		m.info[prefix] = Info{
			Name:     value.Get("name").String(),
			Total:    int(value.Get("total").Int()),
			Category: value.Get("category").String(),
			License:  value.Get("license.title").String(),
		}
		return true
	})
	return m, nil
}

// Prefixes returns the icon set prefixes in manifest order.
func (m *Manifest) Prefixes() []string {
	out := make([]string, len(m.prefixes))
	copy(out, m.prefixes)
	return out
}

func (m *Manifest) Len() int {
	return len(m.prefixes)
}

func (m *Manifest) Info(prefix string) (Info, bool) {
	info, ok := m.info[prefix]
	return info, ok
}

// SetPath is the location of the icon set document for prefix.
func (m *Manifest) SetPath(prefix string) (string, error) {
	if err := ValidatePrefix(prefix); err != nil {
		return "", err
	}
	return filepath.Join(m.root, SetsDir, prefix+".json"), nil
}

// ValidatePrefix accepts only prefixes that form a single clean path segment.
func ValidatePrefix(prefix string) error {
	if prefix == "" || prefix == "." || prefix == ".." ||
		strings.ContainsAny(prefix, `/\`) || filepath.Clean(prefix) != prefix {
		return core.NewError(fmt.Errorf("unsafe icon set prefix %q", prefix), core.CodePathEscape,
			map[string]any{"prefix": prefix})
	}
	return nil
}
