package svg

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeNumber reduces a numeric string to its shortest exact decimal
// form, so "1.0", "1." and "1" all render as "1". Non-numeric input is
// returned unchanged.
func NormalizeNumber(s string) string {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NormalizePathData rewrites path data into a canonical textual form:
// single-space separated tokens with numbers in shortest exact form.
// Two path strings describing identical geometry with different
// formatting ("M0,0 L1.0,2.0" vs "M 0 0 L 1 2") normalize to the same
// output. The geometry itself is never altered. Path data that fails to
// tokenize is returned as-is after whitespace trimming, so garbage can
// still only ever match byte-identical garbage.
func NormalizePathData(d string) string {
	toks, err := tokenizePath(d)
	if err != nil {
		return strings.TrimSpace(d)
	}
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.cmd != 0 {
			parts = append(parts, string(t.cmd))
			continue
		}
		parts = append(parts, strconv.FormatFloat(t.num, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// RoundPathData rounds every number in path data to the given number of
// decimal places, trimming trailing zeros. Applied to raw tracer output
// before deduplication so near-identical shapes collide.
func RoundPathData(d string, decimals int) string {
	toks, err := tokenizePath(d)
	if err != nil {
		return d
	}
	pow := math.Pow10(decimals)
	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.cmd != 0 {
			parts = append(parts, string(t.cmd))
			continue
		}
		v := math.Round(t.num*pow) / pow
		parts = append(parts, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// CanonicalKey computes the equivalence key for a path-bearing element
// from the configured attribute subset. Numeric attribute values are
// reduced to their shortest form so "2.0" and "2" key alike. An element
// with empty or missing path data yields "" and must never be treated
// as a duplicate of anything.
func CanonicalKey(e *Element, key KeyConfig) string {
	d := strings.TrimSpace(e.Attr("d"))
	if d == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("d=")
	b.WriteString(NormalizePathData(d))
	for _, name := range key.Attributes {
		if name == "d" {
			continue
		}
		if v := strings.TrimSpace(e.Attr(name)); v != "" {
			b.WriteByte('\x00')
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(NormalizeNumber(v))
		}
	}
	return b.String()
}
