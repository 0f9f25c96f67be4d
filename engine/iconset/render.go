package iconset

import (
	"strings"

	"github.com/compozy/iconpipe/engine/svgdoc"
)

const (
	svgOpen   = `<svg xmlns="http://www.w3.org/2000/svg"`
	xlinkAttr = ` xmlns:xlink="http://www.w3.org/1999/xlink"`
)

// Render builds standalone SVG markup for a resolved icon. Rotation and
// flips are expressed as a transform on a group wrapping the body; the
// viewBox is adjusted for quarter turns.
func Render(icon Icon) string {
	box := svgdoc.ViewBox{Left: icon.Left, Top: icon.Top, Width: icon.Width, Height: icon.Height}
	body := icon.Body
	rotate := icon.Transform.Rotate
	var transforms []string

	switch {
	case icon.Transform.HFlip && icon.Transform.VFlip:
		rotate += 2
	case icon.Transform.HFlip:
		transforms = append(transforms,
			"translate("+num(box.Width+box.Left)+" "+num(0-box.Top)+")",
			"scale(-1 1)",
		)
		box.Left, box.Top = 0, 0
	case icon.Transform.VFlip:
		transforms = append(transforms,
			"translate("+num(0-box.Left)+" "+num(box.Height+box.Top)+")",
			"scale(1 -1)",
		)
		box.Left, box.Top = 0, 0
	}

	rotate = ((rotate % 4) + 4) % 4
	switch rotate {
	case 1:
		c := box.Height/2 + box.Top
		transforms = append([]string{"rotate(90 " + num(c) + " " + num(c) + ")"}, transforms...)
	case 2:
		transforms = append([]string{
			"rotate(180 " + num(box.Width/2+box.Left) + " " + num(box.Height/2+box.Top) + ")",
		}, transforms...)
	case 3:
		c := box.Width/2 + box.Left
		transforms = append([]string{"rotate(-90 " + num(c) + " " + num(c) + ")"}, transforms...)
	}
	if rotate%2 == 1 {
		box.Left, box.Top = box.Top, box.Left
		box.Width, box.Height = box.Height, box.Width
	}
	if len(transforms) > 0 {
		body = `<g transform="` + strings.Join(transforms, " ") + `">` + body + `</g>`
	}

	var b strings.Builder
	b.WriteString(svgOpen)
	if strings.Contains(body, "xlink:") {
		b.WriteString(xlinkAttr)
	}
	b.WriteString(` width="` + num(box.Width) + `"`)
	b.WriteString(` height="` + num(box.Height) + `"`)
	b.WriteString(` viewBox="` + box.String() + `">`)
	b.WriteString(body)
	b.WriteString(`</svg>`)
	return b.String()
}

func num(v float64) string {
	return svgdoc.FormatNumber(v)
}
