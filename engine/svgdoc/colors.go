package svgdoc

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/beevik/etree"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mazznoer/csscolorparser"
)

// ColorKind classifies a parsed color token.
type ColorKind int

const (
	ColorRGBA ColorKind = iota
	ColorCurrent
	ColorNone
	ColorTransparent
)

// Color is a parsed paint value.
type Color struct {
	Kind       ColorKind
	R, G, B, A float64
}

// IsEmpty reports whether the color paints nothing.
func (c *Color) IsEmpty() bool {
	if c == nil {
		return false
	}
	switch c.Kind {
	case ColorNone, ColorTransparent:
		return true
	case ColorRGBA:
		return c.A == 0
	default:
		return false
	}
}

// RewriteFunc maps one color occurrence to its replacement token. color is
// nil when the token could not be parsed.
type RewriteFunc func(token string, color *Color) string

// MonotoneRewrite replaces every painting color with canonical and keeps
// unparsable or empty tokens as they are.
func MonotoneRewrite(canonical string) RewriteFunc {
	return func(token string, color *Color) string {
		if color == nil || color.IsEmpty() {
			return token
		}
		return canonical
	}
}

// ColorOptions configures ParseColors.
type ColorOptions struct {
	// Rewrite is called once per color occurrence.
	Rewrite RewriteFunc
	// DefaultColor, when set, is added as fill on shapes that would
	// otherwise paint with the implicit black fill.
	DefaultColor string
}

// colorAttributes hold paint values.
var colorAttributes = []string{"fill", "stroke", "stop-color", "flood-color", "lighting-color", "color"}

var shapeElements = []string{"path", "rect", "circle", "ellipse", "polygon", "polyline", "text"}

var urlPaint = regexp.MustCompile(`^url\(\s*['"]?#([^'")\s]+)['"]?\s*\)`)

type parsedColor struct {
	color Color
	ok    bool
}

var colorCache, _ = lru.New[string, parsedColor](512)

// ParseColor parses a paint token. It returns nil for tokens that are not
// plain colors, such as url() references or inherit.
func ParseColor(token string) *Color {
	key := strings.ToLower(strings.TrimSpace(token))
	if cached, ok := colorCache.Get(key); ok {
		return cached.ptr()
	}
	parsed := parseColorUncached(key)
	colorCache.Add(key, parsed)
	return parsed.ptr()
}

func (p parsedColor) ptr() *Color {
	if !p.ok {
		return nil
	}
	c := p.color
	return &c
}

func parseColorUncached(key string) parsedColor {
	switch key {
	case "":
		return parsedColor{}
	case "none":
		return parsedColor{color: Color{Kind: ColorNone}, ok: true}
	case "transparent":
		return parsedColor{color: Color{Kind: ColorTransparent}, ok: true}
	case "currentcolor":
		return parsedColor{color: Color{Kind: ColorCurrent, A: 1}, ok: true}
	case "inherit", "initial", "unset", "context-fill", "context-stroke":
		return parsedColor{}
	}
	c, err := csscolorparser.Parse(key)
	if err != nil {
		return parsedColor{}
	}
	return parsedColor{color: Color{Kind: ColorRGBA, R: c.R, G: c.G, B: c.B, A: c.A}, ok: true}
}

// ParseColors walks every color occurrence of the document and replaces it
// with the token returned by opts.Rewrite.
func (d *Document) ParseColors(opts ColorOptions) error {
	if opts.Rewrite == nil {
		return fmt.Errorf("color rewrite function is required")
	}
	root := d.Root()
	ids := collectIDs(root)
	if err := rewriteColors(root, opts.Rewrite, ids); err != nil {
		return err
	}
	if opts.DefaultColor != "" {
		addDefaultFill(root, opts.DefaultColor, "")
	}
	return nil
}

func collectIDs(root *etree.Element) map[string]bool {
	ids := make(map[string]bool)
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if id := el.SelectAttrValue("id", ""); id != "" {
			ids[id] = true
		}
		for _, child := range el.ChildElements() {
			walk(child)
		}
	}
	walk(root)
	return ids
}

func rewriteColors(el *etree.Element, rewrite RewriteFunc, ids map[string]bool) error {
	for i := range el.Attr {
		attr := &el.Attr[i]
		if attr.Space != "" || !slices.Contains(colorAttributes, attr.Key) {
			continue
		}
		if m := urlPaint.FindStringSubmatch(strings.TrimSpace(attr.Value)); m != nil && !ids[m[1]] {
			return fmt.Errorf("<%s %s> references missing paint server #%s", el.Tag, attr.Key, m[1])
		}
		attr.Value = rewrite(attr.Value, ParseColor(attr.Value))
	}
	for _, child := range el.ChildElements() {
		if err := rewriteColors(child, rewrite, ids); err != nil {
			return err
		}
	}
	return nil
}

// addDefaultFill sets fill on shapes whose computed fill is the implicit
// default. inherited is the closest ancestor fill, empty when none.
func addDefaultFill(el *etree.Element, color, inherited string) {
	switch el.Tag {
	case "clipPath", "mask":
		return
	}
	if fill := el.SelectAttrValue("fill", ""); fill != "" && fill != "inherit" {
		inherited = fill
	}
	if inherited == "" && slices.Contains(shapeElements, el.Tag) {
		el.CreateAttr("fill", color)
		inherited = color
	}
	for _, child := range el.ChildElements() {
		addDefaultFill(child, color, inherited)
	}
}
