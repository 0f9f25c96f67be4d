// Package iconset models an iconify icon set document: a prefix, descriptive
// info and entries keyed by name that are either icons or aliases pointing at
// other entries.
package iconset

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/compozy/iconpipe/engine/svgdoc"
	"github.com/tidwall/gjson"
)

var (
	ErrNotFound   = errors.New("icon not found")
	ErrAliasLoop  = errors.New("alias chain does not resolve to an icon")
	ErrEmptyBody  = errors.New("icon body is empty")
	ErrBadPayload = errors.New("invalid icon set document")
)

// maxAliasDepth bounds alias resolution.
const maxAliasDepth = 8

// IconSet is a mutable collection of icon entries. Entry order follows the
// source document and is preserved across removals.
type IconSet struct {
	Prefix  string
	Info    Info
	order   []string
	entries map[string]*Entry
}

// Parse decodes an iconify JSON document.
func Parse(data []byte) (*IconSet, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrBadPayload)
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: document is not an object", ErrBadPayload)
	}
	prefix := doc.Get("prefix").String()
	if prefix == "" {
		return nil, fmt.Errorf("%w: missing prefix", ErrBadPayload)
	}
	set := &IconSet{
		Prefix:  prefix,
		entries: make(map[string]*Entry),
	}
	if info := doc.Get("info"); info.Exists() {
		if err := json.Unmarshal([]byte(info.Raw), &set.Info); err != nil {
			return nil, fmt.Errorf("%w: info: %v", ErrBadPayload, err)
		}
	}
	defaults := rawDefaults{
		Left:   doc.Get("left").Float(),
		Top:    doc.Get("top").Float(),
		Width:  optionalFloat(doc.Get("width")),
		Height: optionalFloat(doc.Get("height")),
	}
	if err := set.parseIcons(doc.Get("icons"), defaults); err != nil {
		return nil, err
	}
	if err := set.parseAliases(doc.Get("aliases")); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *IconSet) parseIcons(icons gjson.Result, defaults rawDefaults) error {
	var parseErr error
	icons.ForEach(func(key, value gjson.Result) bool {
		var raw rawIcon
		if err := json.Unmarshal([]byte(value.Raw), &raw); err != nil {
			parseErr = fmt.Errorf("%w: icon %q: %v", ErrBadPayload, key.String(), err)
			return false
		}
		icon := &Icon{
			Body:      raw.Body,
			Left:      valueOr(raw.Left, defaults.Left),
			Top:       valueOr(raw.Top, defaults.Top),
			Width:     valueOr(raw.Width, valueOr(defaults.Width, DefaultWidth)),
			Height:    valueOr(raw.Height, valueOr(defaults.Height, DefaultHeight)),
			Transform: Transform{Rotate: raw.Rotate, HFlip: raw.HFlip, VFlip: raw.VFlip},
			Hidden:    raw.Hidden,
		}
		s.add(&Entry{Name: key.String(), Kind: KindIcon, Icon: icon})
		return true
	})
	return parseErr
}

func (s *IconSet) parseAliases(aliases gjson.Result) error {
	var parseErr error
	aliases.ForEach(func(key, value gjson.Result) bool {
		var raw rawAlias
		if err := json.Unmarshal([]byte(value.Raw), &raw); err != nil {
			parseErr = fmt.Errorf("%w: alias %q: %v", ErrBadPayload, key.String(), err)
			return false
		}
		alias := &Alias{
			Parent:    raw.Parent,
			Left:      raw.Left,
			Top:       raw.Top,
			Width:     raw.Width,
			Height:    raw.Height,
			Transform: Transform{Rotate: raw.Rotate, HFlip: raw.HFlip, VFlip: raw.VFlip},
		}
		kind := KindAlias
		if alias.Transform != (Transform{}) || raw.Left != nil || raw.Top != nil || raw.Width != nil || raw.Height != nil {
			kind = KindVariation
		}
		s.add(&Entry{Name: key.String(), Kind: kind, Alias: alias})
		return true
	})
	return parseErr
}

func (s *IconSet) add(e *Entry) {
	if _, exists := s.entries[e.Name]; !exists {
		s.order = append(s.order, e.Name)
	}
	s.entries[e.Name] = e
}

func optionalFloat(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// Names returns a snapshot of entry names in document order. Removing
// entries while ranging over the snapshot is safe.
func (s *IconSet) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, name := range s.order {
		if _, ok := s.entries[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Entry returns the entry stored under name.
func (s *IconSet) Entry(name string) (*Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Count returns the number of entries of the given kind.
func (s *IconSet) Count(kind Kind) int {
	n := 0
	for _, e := range s.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// ForEach calls fn for every entry present when iteration starts, in
// document order. Entries removed by fn are skipped when reached.
func (s *IconSet) ForEach(fn func(name string, kind Kind) error) error {
	for _, name := range s.Names() {
		entry, ok := s.entries[name]
		if !ok {
			continue
		}
		if err := fn(name, entry.Kind); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes name and every alias that no longer resolves. It returns
// the number of removed entries.
func (s *IconSet) Remove(name string) int {
	if _, ok := s.entries[name]; !ok {
		return 0
	}
	delete(s.entries, name)
	removed := 1
	for changed := true; changed; {
		changed = false
		for _, n := range s.order {
			e, ok := s.entries[n]
			if !ok || e.Alias == nil {
				continue
			}
			if _, parentOK := s.entries[e.Alias.Parent]; !parentOK {
				delete(s.entries, n)
				removed++
				changed = true
			}
		}
	}
	s.compact()
	return removed
}

func (s *IconSet) compact() {
	kept := s.order[:0]
	for _, n := range s.order {
		if _, ok := s.entries[n]; ok {
			kept = append(kept, n)
		}
	}
	s.order = kept
}

// Resolve returns the icon data for name, following aliases and merging
// their overrides.
func (s *IconSet) Resolve(name string) (Icon, error) {
	entry, ok := s.entries[name]
	if !ok {
		return Icon{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	var chain []*Alias
	for depth := 0; entry.Kind != KindIcon; depth++ {
		if depth >= maxAliasDepth {
			return Icon{}, fmt.Errorf("%w: %s", ErrAliasLoop, name)
		}
		chain = append(chain, entry.Alias)
		parent, ok := s.entries[entry.Alias.Parent]
		if !ok {
			return Icon{}, fmt.Errorf("%w: %s -> %s", ErrAliasLoop, name, entry.Alias.Parent)
		}
		entry = parent
	}
	icon := *entry.Icon
	for i := len(chain) - 1; i >= 0; i-- {
		alias := chain[i]
		icon.Left = valueOr(alias.Left, icon.Left)
		icon.Top = valueOr(alias.Top, icon.Top)
		icon.Width = valueOr(alias.Width, icon.Width)
		icon.Height = valueOr(alias.Height, icon.Height)
		icon.Transform = icon.Transform.Merge(alias.Transform)
	}
	return icon, nil
}

// ToString renders name as standalone SVG markup.
func (s *IconSet) ToString(name string) (string, error) {
	icon, err := s.Resolve(name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(icon.Body) == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyBody, name)
	}
	return Render(icon), nil
}

// ToSVG renders name and parses the result. A nil document is never
// returned without an error.
func (s *IconSet) ToSVG(name string) (*svgdoc.Document, error) {
	markup, err := s.ToString(name)
	if err != nil {
		return nil, err
	}
	return svgdoc.Parse(markup)
}

// FromSVG replaces name with the content of doc. Any transformation is
// already part of the document body, so the stored icon has none.
func (s *IconSet) FromSVG(name string, doc *svgdoc.Document) error {
	box, err := doc.ViewBox()
	if err != nil {
		return err
	}
	body, err := doc.Body()
	if err != nil {
		return err
	}
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyBody, name)
	}
	hidden := false
	if current, ok := s.entries[name]; ok && current.Icon != nil {
		hidden = current.Icon.Hidden
	}
	s.add(&Entry{
		Name: name,
		Kind: KindIcon,
		Icon: &Icon{
			Body:   body,
			Left:   box.Left,
			Top:    box.Top,
			Width:  box.Width,
			Height: box.Height,
			Hidden: hidden,
		},
	})
	return nil
}
