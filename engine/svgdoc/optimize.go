package svgdoc

import (
	"fmt"

	"github.com/beevik/etree"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/svg"
)

const svgMediaType = "image/svg+xml"

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.Add(svgMediaType, &svg.Minifier{})
	return m
}

// Optimize minifies the markup without changing rendered geometry and
// reloads the document from the minified output.
func (d *Document) Optimize() error {
	markup, err := d.String()
	if err != nil {
		return err
	}
	out, err := minifier.String(svgMediaType, markup)
	if err != nil {
		return fmt.Errorf("failed to minify svg: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromString(out); err != nil {
		return fmt.Errorf("minified svg is not well-formed: %w", err)
	}
	if doc.Root() == nil || doc.Root().Tag != "svg" {
		return ErrNotSVG
	}
	d.doc = doc
	return nil
}
