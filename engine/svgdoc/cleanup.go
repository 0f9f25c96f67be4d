package svgdoc

import (
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

// removedElements are dropped silently: they never affect rendering.
var removedElements = []string{"metadata", "title", "desc"}

// knownElements may appear in a clean icon. Filter primitives (fe*) are
// accepted by prefix.
var knownElements = []string{
	"svg", "g", "defs", "symbol", "use", "switch",
	"path", "rect", "circle", "ellipse", "line", "polyline", "polygon",
	"text", "tspan", "textPath",
	"linearGradient", "radialGradient", "stop", "pattern",
	"clipPath", "mask", "marker", "filter",
	"animate", "animateMotion", "animateTransform", "set", "mpath",
}

// rootKeptAttributes survive on <svg>; presentation attributes are moved to a
// wrapping <g>, anything else is dropped.
var rootKeptAttributes = []string{"viewBox", "width", "height", "preserveAspectRatio"}

// presentationAttributes can be expressed either as attributes or inside style.
var presentationAttributes = []string{
	"fill", "fill-opacity", "fill-rule",
	"stroke", "stroke-width", "stroke-opacity", "stroke-linecap", "stroke-linejoin",
	"stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset",
	"opacity", "color", "display", "visibility",
	"stop-color", "stop-opacity", "flood-color", "flood-opacity", "lighting-color",
	"clip-rule", "clip-path", "mask", "filter", "transform",
	"font-family", "font-size", "font-weight", "font-style", "text-anchor",
	"dominant-baseline", "vector-effect", "shape-rendering", "paint-order",
	"mix-blend-mode", "isolation",
}

// Cleanup canonicalizes the document: comments and editor metadata are
// removed, inline styles become attributes, root attributes are reduced to
// geometry, and unsupported constructs make the whole document fail.
func (d *Document) Cleanup() error {
	removeNonElementTokens(&d.doc.Element)
	root := d.Root()
	box, err := d.ViewBox()
	if err != nil {
		return err
	}
	if err := cleanupElement(root); err != nil {
		return err
	}
	cleanupRoot(root, box)
	return nil
}

func removeNonElementTokens(parent *etree.Element) {
	for i := len(parent.Child) - 1; i >= 0; i-- {
		switch t := parent.Child[i].(type) {
		case *etree.Comment, *etree.ProcInst, *etree.Directive:
			parent.RemoveChildAt(i)
		case *etree.Element:
			removeNonElementTokens(t)
		}
	}
}

func cleanupElement(el *etree.Element) error {
	if err := checkElement(el); err != nil {
		return err
	}
	expandStyle(el)
	cleanupAttributes(el)
	for _, child := range el.ChildElements() {
		if isRemovable(child) {
			el.RemoveChild(child)
			continue
		}
		if err := cleanupElement(child); err != nil {
			return err
		}
	}
	return nil
}

func isRemovable(el *etree.Element) bool {
	if el.Space != "" && el.Space != "svg" {
		return true
	}
	return slices.Contains(removedElements, el.Tag)
}

func checkElement(el *etree.Element) error {
	switch el.Tag {
	case "script", "foreignObject":
		return fmt.Errorf("unsupported element <%s>", el.Tag)
	case "style":
		if strings.TrimSpace(el.Text()) != "" {
			return fmt.Errorf("unsupported element <style> with global rules")
		}
		return nil
	case "image":
		return fmt.Errorf("unsupported element <image>")
	}
	if strings.HasPrefix(el.Tag, "fe") || slices.Contains(knownElements, el.Tag) {
		return nil
	}
	return fmt.Errorf("unknown element <%s>", el.FullTag())
}

// expandStyle moves presentation properties from style into attributes.
// Declarations in style win over attributes, matching CSS precedence.
func expandStyle(el *etree.Element) {
	style := el.SelectAttr("style")
	if style == nil {
		return
	}
	for _, decl := range parseStyle(style.Value) {
		if slices.Contains(presentationAttributes, decl.property) {
			el.CreateAttr(decl.property, decl.value)
		}
	}
	el.RemoveAttr("style")
}

type declaration struct {
	property string
	value    string
}

func parseStyle(raw string) []declaration {
	var out []declaration
	for _, part := range strings.Split(raw, ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
		if prop == "" || value == "" {
			continue
		}
		out = append(out, declaration{property: prop, value: value})
	}
	return out
}

func cleanupAttributes(el *etree.Element) {
	kept := el.Attr[:0]
	for _, attr := range el.Attr {
		if keepAttribute(attr) {
			kept = append(kept, attr)
		}
	}
	el.Attr = kept
}

func keepAttribute(attr etree.Attr) bool {
	key := strings.ToLower(attr.Key)
	switch {
	case attr.Space == "xmlns" || (attr.Space == "" && attr.Key == "xmlns"):
		return attr.Space == "" || attr.Key == "xlink"
	case attr.Space == "xlink":
		return attr.Key == "href"
	case attr.Space != "":
		return false
	case strings.HasPrefix(key, "on"), strings.HasPrefix(key, "data-"):
		return false
	case key == "class", key == "version", key == "enable-background":
		return false
	}
	return true
}

// cleanupRoot reduces <svg> to geometry and moves presentation attributes
// onto a <g> that wraps the original content.
func cleanupRoot(root *etree.Element, box ViewBox) {
	var moved []etree.Attr
	kept := make([]etree.Attr, 0, len(root.Attr))
	for _, attr := range root.Attr {
		switch {
		case attr.Space == "" && attr.Key == "xmlns":
			kept = append(kept, attr)
		case attr.Space == "xmlns" && attr.Key == "xlink":
			kept = append(kept, attr)
		case attr.Space == "" && slices.Contains(rootKeptAttributes, attr.Key):
			kept = append(kept, attr)
		case attr.Space == "" && slices.Contains(presentationAttributes, attr.Key):
			moved = append(moved, attr)
		}
	}
	root.Attr = kept
	if root.SelectAttr("viewBox") == nil {
		root.CreateAttr("viewBox", box.String())
	}
	if root.SelectAttr("xmlns") == nil {
		root.CreateAttr("xmlns", svgNamespace)
	}
	if len(moved) == 0 {
		return
	}
	wrapper := etree.NewElement("g")
	for _, attr := range moved {
		wrapper.CreateAttr(attr.Key, attr.Value)
	}
	for _, child := range slices.Clone(root.Child) {
		root.RemoveChild(child)
		wrapper.AddChild(child)
	}
	root.AddChild(wrapper)
}
