// Package raster renders SVG documents to PNG images at a target width.
package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// DefaultSizes are the output widths of every rasterized icon.
var DefaultSizes = []int{24, 48, 64, 128}

const MaxSupersample = 4

var (
	ErrInvalidWidth = errors.New("target width must be positive")
	ErrNoGeometry   = errors.New("svg has no usable viewBox")
)

// Rasterizer turns SVG content into an image whose width is exactly width;
// the height follows the viewBox aspect ratio.
type Rasterizer interface {
	Render(svg []byte, width int) (image.Image, error)
}

// Options configures SVGRasterizer.
type Options struct {
	// Supersample renders at N times the target size and downscales.
	Supersample int
	// Strict fails on SVG constructs the renderer does not support
	// instead of ignoring them.
	Strict bool
}

// SVGRasterizer is the oksvg based Rasterizer.
type SVGRasterizer struct {
	opts Options
}

func New(opts Options) *SVGRasterizer {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	if opts.Supersample > MaxSupersample {
		opts.Supersample = MaxSupersample
	}
	return &SVGRasterizer{opts: opts}
}

func (r *SVGRasterizer) Render(data []byte, width int) (image.Image, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	mode := oksvg.IgnoreErrorMode
	if r.opts.Strict {
		mode = oksvg.StrictErrorMode
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), mode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse svg: %w", err)
	}
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, ErrNoGeometry
	}
	height := int(math.Round(float64(width) * icon.ViewBox.H / icon.ViewBox.W))
	if height < 1 {
		height = 1
	}

	ss := r.opts.Supersample
	w, h := width*ss, height*ss
	icon.SetTarget(0, 0, float64(w), float64(h))
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	if ss == 1 {
		return canvas, nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Rect, canvas, canvas.Bounds(), draw.Src, nil)
	return dst, nil
}

var encoder = png.Encoder{CompressionLevel: png.BestCompression}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return encoder.Encode(w, img)
}

// RenderPNG renders data at width and returns the encoded PNG.
func RenderPNG(r Rasterizer, data []byte, width int) ([]byte, error) {
	img, err := r.Render(data, width)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
