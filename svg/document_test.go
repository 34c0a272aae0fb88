package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMalformed(t *testing.T) {
	cases := []string{
		"",
		"<svg><path d=",
		"<svg><g></svg>",
		"<svg></svg><svg></svg>",
		"not xml at all",
	}
	for _, in := range cases {
		_, err := Parse(strings.NewReader(in))
		assert.Error(t, err, "input %q", in)
	}
}

func TestNamespaceRoundTrip(t *testing.T) {
	const in = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="10" height="10"><use xlink:href="#a" /></svg>`

	doc, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	s := string(out)

	assert.Contains(t, s, `xmlns="http://www.w3.org/2000/svg"`)
	assert.Contains(t, s, `xmlns:xlink="http://www.w3.org/1999/xlink"`)
	assert.Contains(t, s, `xlink:href="#a"`)

	// The output is itself a fixed point of parse/serialize.
	doc2, err := Parse(strings.NewReader(s))
	require.NoError(t, err)
	out2, err := doc2.Bytes()
	require.NoError(t, err)
	assert.Equal(t, s, string(out2))
}

func TestXLinkDeclaredOnlyWhenUsed(t *testing.T) {
	const in = `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0,0" /></svg>`
	doc, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "xlink")
}

func TestCommentsDiscarded(t *testing.T) {
	const in = `<svg xmlns="http://www.w3.org/2000/svg"><!-- generator note --><path d="M0,0" /></svg>`
	doc, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "generator note")
	assert.Contains(t, string(out), `<path d="M0,0" />`)
}

func TestForeignPrefixPreserved(t *testing.T) {
	const in = `<svg xmlns="http://www.w3.org/2000/svg" xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"><g inkscape:label="Layer 1" /></svg>`
	doc, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"`)
	assert.Contains(t, s, `inkscape:label="Layer 1"`)
}

func TestAttrOrderPreserved(t *testing.T) {
	const in = `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0,0" fill="#000000" transform="translate(1,2)" /></svg>`
	doc, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	s := string(out)
	d := strings.Index(s, `d="M0,0"`)
	f := strings.Index(s, `fill=`)
	tr := strings.Index(s, `transform=`)
	assert.True(t, d < f && f < tr, "attribute order must survive serialization: %s", s)
}

func TestAttrEscaping(t *testing.T) {
	doc := NewDocument()
	doc.Root.SetAttr("data-note", `a<b&"c"`)
	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), `data-note="a&lt;b&amp;&quot;c&quot;"`)
}

func TestSetAttrReplaces(t *testing.T) {
	e := &Element{}
	e.SetAttr("fill", "#000")
	e.SetAttr("fill", "#fff")
	assert.Len(t, e.Attrs, 1)
	assert.Equal(t, "#fff", e.Attr("fill"))

	e.RemoveAttr("fill")
	assert.Empty(t, e.Attr("fill"))
}
