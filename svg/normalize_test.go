package svg

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeNumber(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.0", "1"},
		{"1.50", "1.5"},
		{"0.0", "0"},
		{"-0.25", "-0.25"},
		{"+3", "3"},
		{"1e2", "100"},
		{"nope", "nope"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeNumber(tt.in), tt.in)
	}
}

func TestNormalizePathData(t *testing.T) {
	tests := []struct{ in, want string }{
		{"M0,0 L10,10", "M 0 0 L 10 10"},
		{"M 0 0 L 10.0 10.00", "M 0 0 L 10 10"},
		{"m1.5.5z", "m 1.5 0.5 z"},
		{"M-1-2L3-4", "M -1 -2 L 3 -4"},
		{"  M0,0  ", "M 0 0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePathData(tt.in), tt.in)
	}
}

func TestNormalizePathDataCollision(t *testing.T) {
	a := NormalizePathData("M1.0,2.0 C3.0,4.0 5,6 7.50,8")
	b := NormalizePathData("M 1 2 C 3 4 5.0 6.0 7.5 8.0")
	assert.Equal(t, a, b)
}

func TestRoundPathData(t *testing.T) {
	tests := []struct{ in, want string }{
		{"M1.23456,2.98765 L3,4", "M 1.23 2.99 L 3 4"},
		{"C1.006,2.0 3.1,4.999 5,6", "C 1.01 2 3.1 5 5 6"},
		{"M1.10,2.20", "M 1.1 2.2"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RoundPathData(tt.in, 2), tt.in)
	}
}

func TestCanonicalKeyEmpty(t *testing.T) {
	e := &Element{Name: xml.Name{Space: Namespace, Local: "path"}}
	assert.Empty(t, CanonicalKey(e, KeyConfig{}))

	e.SetAttr("d", "   ")
	assert.Empty(t, CanonicalKey(e, KeyConfig{}))
}

func TestCanonicalKeyExcludesTransform(t *testing.T) {
	a := &Element{Name: xml.Name{Space: Namespace, Local: "path"}}
	a.SetAttr("d", "M0,0 L1,1")
	a.SetAttr("transform", "translate(5,5)")

	b := &Element{Name: xml.Name{Space: Namespace, Local: "path"}}
	b.SetAttr("d", "M0,0 L1,1")

	assert.Equal(t, CanonicalKey(b, KeyConfig{}), CanonicalKey(a, KeyConfig{}))
}

func TestCanonicalKeyIncludesConfiguredAttrs(t *testing.T) {
	key := KeyConfig{Attributes: []string{"fill", "stroke"}}

	a := &Element{Name: xml.Name{Space: Namespace, Local: "path"}}
	a.SetAttr("d", "M0,0")
	a.SetAttr("fill", "#f00")

	b := &Element{Name: xml.Name{Space: Namespace, Local: "path"}}
	b.SetAttr("d", "M0,0")
	b.SetAttr("fill", "#00f")

	assert.NotEqual(t, CanonicalKey(a, key), CanonicalKey(b, key))
}
