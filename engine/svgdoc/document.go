// Package svgdoc holds the mutable SVG document used while normalizing icons
// and the three transforms applied to it: structural cleanup, color rewrite
// and size optimization. Every transform mutates the document in place.
package svgdoc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

const svgNamespace = "http://www.w3.org/2000/svg"

var (
	ErrEmptyDocument = errors.New("empty svg document")
	ErrNotSVG        = errors.New("root element is not <svg>")
	ErrNoViewBox     = errors.New("svg has no usable viewBox")
)

// ViewBox is the user-space rectangle of an icon.
type ViewBox struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// String renders the box the way it appears in a viewBox attribute.
func (v ViewBox) String() string {
	return strings.Join([]string{
		FormatNumber(v.Left),
		FormatNumber(v.Top),
		FormatNumber(v.Width),
		FormatNumber(v.Height),
	}, " ")
}

// Document is a parsed SVG document.
type Document struct {
	doc *etree.Document
}

// Parse reads an SVG document from its markup.
func Parse(markup string) (*Document, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, ErrEmptyDocument
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(markup); err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	if root.Tag != "svg" {
		return nil, fmt.Errorf("%w: found <%s>", ErrNotSVG, root.FullTag())
	}
	return &Document{doc: doc}, nil
}

// Root returns the <svg> element.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// String serializes the whole document.
func (d *Document) String() (string, error) {
	out, err := d.doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize svg: %w", err)
	}
	return out, nil
}

// ViewBox returns the parsed viewBox of the root element. When the attribute
// is missing, numeric width and height are used instead.
func (d *Document) ViewBox() (ViewBox, error) {
	root := d.Root()
	if raw := root.SelectAttrValue("viewBox", ""); raw != "" {
		return ParseViewBox(raw)
	}
	width, werr := parseLength(root.SelectAttrValue("width", ""))
	height, herr := parseLength(root.SelectAttrValue("height", ""))
	if werr != nil || herr != nil || width <= 0 || height <= 0 {
		return ViewBox{}, ErrNoViewBox
	}
	return ViewBox{Width: width, Height: height}, nil
}

// Body serializes the children of the root element.
func (d *Document) Body() (string, error) {
	tmp := etree.NewDocument()
	for _, token := range d.Root().Child {
		switch t := token.(type) {
		case *etree.Element:
			tmp.AddChild(t.Copy())
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				tmp.CreateText(t.Data)
			}
		}
	}
	out, err := tmp.WriteToString()
	if err != nil {
		return "", fmt.Errorf("failed to serialize svg body: %w", err)
	}
	return out, nil
}

// ParseViewBox parses "min-x min-y width height", whitespace or comma separated.
func ParseViewBox(raw string) (ViewBox, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) != 4 {
		return ViewBox{}, fmt.Errorf("%w: %q", ErrNoViewBox, raw)
	}
	values := make([]float64, 4)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return ViewBox{}, fmt.Errorf("%w: %q", ErrNoViewBox, raw)
		}
		values[i] = v
	}
	box := ViewBox{Left: values[0], Top: values[1], Width: values[2], Height: values[3]}
	if box.Width <= 0 || box.Height <= 0 {
		return ViewBox{}, fmt.Errorf("%w: %q", ErrNoViewBox, raw)
	}
	return box, nil
}

// FormatNumber prints a float without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func parseLength(raw string) (float64, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "px"))
	return strconv.ParseFloat(raw, 64)
}
