package svgdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonical = "#fcfcfc"

func TestParseColor(t *testing.T) {
	t.Run("Should classify color tokens", func(t *testing.T) {
		testCases := []struct {
			token string
			kind  ColorKind
			empty bool
		}{
			{"#000", ColorRGBA, false},
			{"red", ColorRGBA, false},
			{"rgb(10, 20, 30)", ColorRGBA, false},
			{"rgba(0,0,0,0)", ColorRGBA, true},
			{"currentColor", ColorCurrent, false},
			{"none", ColorNone, true},
			{"Transparent", ColorTransparent, true},
		}
		for _, tc := range testCases {
			c := ParseColor(tc.token)
			require.NotNil(t, c, tc.token)
			assert.Equal(t, tc.kind, c.Kind, tc.token)
			assert.Equal(t, tc.empty, c.IsEmpty(), tc.token)
		}
	})

	t.Run("Should return nil for non color paints", func(t *testing.T) {
		for _, token := range []string{"url(#grad)", "inherit", "", "not-a-color"} {
			assert.Nil(t, ParseColor(token), token)
		}
	})

	t.Run("Should return independent values from the cache", func(t *testing.T) {
		first := ParseColor("#123456")
		first.R = 99
		second := ParseColor("#123456")
		assert.NotEqual(t, 99.0, second.R)
	})
}

func TestMonotoneRewrite(t *testing.T) {
	rewrite := MonotoneRewrite(canonical)

	t.Run("Should replace painting colors", func(t *testing.T) {
		for _, token := range []string{"#000", "red", "currentColor", "rgb(1,2,3)"} {
			assert.Equal(t, canonical, rewrite(token, ParseColor(token)), token)
		}
	})

	t.Run("Should keep empty and unparsable tokens", func(t *testing.T) {
		for _, token := range []string{"none", "transparent", "url(#a)", "rgba(1,2,3,0)"} {
			assert.Equal(t, token, rewrite(token, ParseColor(token)), token)
		}
	})
}

func TestDocument_ParseColors(t *testing.T) {
	parse := func(t *testing.T, markup string) *Document {
		t.Helper()
		doc, err := Parse(markup)
		require.NoError(t, err)
		return doc
	}

	t.Run("Should rewrite every color attribute", func(t *testing.T) {
		doc := parse(t, `<svg viewBox="0 0 24 24"><defs><linearGradient id="g"><stop stop-color="#f00"/></linearGradient></defs><path fill="#123" stroke="blue" d="M0 0"/><rect fill="url(#g)" stroke="none"/></svg>`)
		require.NoError(t, doc.ParseColors(ColorOptions{Rewrite: MonotoneRewrite(canonical)}))

		path := doc.Root().FindElement("//path")
		assert.Equal(t, canonical, path.SelectAttrValue("fill", ""))
		assert.Equal(t, canonical, path.SelectAttrValue("stroke", ""))
		assert.Equal(t, canonical, doc.Root().FindElement("//stop").SelectAttrValue("stop-color", ""))
		rect := doc.Root().FindElement("//rect")
		assert.Equal(t, "url(#g)", rect.SelectAttrValue("fill", ""))
		assert.Equal(t, "none", rect.SelectAttrValue("stroke", ""))
	})

	t.Run("Should leave missing colors alone without a default", func(t *testing.T) {
		doc := parse(t, `<svg viewBox="0 0 24 24"><path d="M0 0"/></svg>`)
		require.NoError(t, doc.ParseColors(ColorOptions{Rewrite: MonotoneRewrite(canonical)}))
		assert.Nil(t, doc.Root().FindElement("//path").SelectAttr("fill"))
	})

	t.Run("Should add the default fill to shapes painting black", func(t *testing.T) {
		doc := parse(t, `<svg viewBox="0 0 24 24"><path id="a" d="M0 0"/><g fill="none"><path id="b" d="M1 1"/></g><clipPath id="c"><rect/></clipPath></svg>`)
		require.NoError(t, doc.ParseColors(ColorOptions{Rewrite: MonotoneRewrite(canonical), DefaultColor: canonical}))

		assert.Equal(t, canonical, doc.Root().FindElement("//path[@id='a']").SelectAttrValue("fill", ""))
		assert.Nil(t, doc.Root().FindElement("//path[@id='b']").SelectAttr("fill"))
		assert.Nil(t, doc.Root().FindElement("//rect").SelectAttr("fill"))
	})

	t.Run("Should invoke the rewrite once per occurrence", func(t *testing.T) {
		doc := parse(t, `<svg viewBox="0 0 24 24"><path fill="red" stroke="red" d="M0 0"/><circle fill="red"/></svg>`)
		var seen []string
		err := doc.ParseColors(ColorOptions{Rewrite: func(token string, _ *Color) string {
			seen = append(seen, token)
			return token
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"red", "red", "red"}, seen)
	})

	t.Run("Should fail on references to missing paint servers", func(t *testing.T) {
		doc := parse(t, `<svg viewBox="0 0 24 24"><path fill="url(#nope)" d="M0 0"/></svg>`)
		assert.ErrorContains(t, doc.ParseColors(ColorOptions{Rewrite: MonotoneRewrite(canonical)}), "#nope")
	})

	t.Run("Should require a rewrite function", func(t *testing.T) {
		doc := parse(t, `<svg viewBox="0 0 24 24"/>`)
		assert.Error(t, doc.ParseColors(ColorOptions{}))
	})
}
