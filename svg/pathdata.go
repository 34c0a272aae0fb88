package svg

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// token is one lexical unit of SVG path data: either a single command
// letter or a number.
type token struct {
	cmd byte // 0 for numbers
	num float64
	raw string
}

func isPathCommand(c byte) bool {
	switch c {
	case 'M', 'm', 'L', 'l', 'H', 'h', 'V', 'v',
		'C', 'c', 'S', 's', 'Q', 'q', 'T', 't', 'A', 'a', 'Z', 'z':
		return true
	}
	return false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// scanNumber returns the end index of the number starting at i, or i if
// no number starts there. Handles sign, fraction and exponent, and stops
// at a second dot so "1.5.5" scans as two numbers.
func scanNumber(s string, i int) int {
	j := i
	if j < len(s) && (s[j] == '+' || s[j] == '-') {
		j++
	}
	digits := false
	for j < len(s) && isDigit(s[j]) {
		j++
		digits = true
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigit(s[j]) {
			j++
			digits = true
		}
	}
	if !digits {
		return i
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		k := j + 1
		if k < len(s) && (s[k] == '+' || s[k] == '-') {
			k++
		}
		if k < len(s) && isDigit(s[k]) {
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

// tokenizePath splits path data into command and number tokens. Commas
// and whitespace are separators and produce no tokens. An unparseable
// run yields an error rather than a silent skip.
func tokenizePath(d string) ([]token, error) {
	var out []token
	i := 0
	for i < len(d) {
		c := d[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == ',':
			i++
		case isPathCommand(c):
			out = append(out, token{cmd: c})
			i++
		default:
			j := scanNumber(d, i)
			if j == i {
				return nil, errors.Errorf("svg: bad path data at offset %d: %q", i, d[i:])
			}
			raw := d[i:j]
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "svg: bad number %q in path data", raw)
			}
			out = append(out, token{num: v, raw: raw})
			i = j
		}
	}
	return out, nil
}

// segment is one path command with its numeric arguments.
type segment struct {
	cmd  byte
	args []float64
}

func parsePath(d string) ([]segment, error) {
	toks, err := tokenizePath(d)
	if err != nil {
		return nil, err
	}
	var segs []segment
	for _, t := range toks {
		if t.cmd != 0 {
			segs = append(segs, segment{cmd: t.cmd})
			continue
		}
		if len(segs) == 0 {
			return nil, errors.New("svg: path data starts with a number")
		}
		last := &segs[len(segs)-1]
		last.args = append(last.args, t.num)
	}
	return segs, nil
}

// Bounds is an axis-aligned bounding box in user units.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// PathBounds computes the bounding box of SVG path data. Curve control
// points are included, so the result is a conservative hull rather than
// the exact curve extent.
func PathBounds(d string) (Bounds, error) {
	segs, err := parsePath(d)
	if err != nil {
		return Bounds{}, err
	}

	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	var cx, cy, sx, sy float64
	seen := false

	add := func(x, y float64) {
		b.MinX = math.Min(b.MinX, x)
		b.MinY = math.Min(b.MinY, y)
		b.MaxX = math.Max(b.MaxX, x)
		b.MaxY = math.Max(b.MaxY, y)
		seen = true
	}
	rel := func(cmd byte) bool { return cmd >= 'a' && cmd <= 'z' }

	for _, s := range segs {
		lower := s.cmd | 0x20
		switch lower {
		case 'm', 'l', 't':
			for i := 0; i+1 < len(s.args); i += 2 {
				x, y := s.args[i], s.args[i+1]
				if rel(s.cmd) {
					x += cx
					y += cy
				}
				add(x, y)
				cx, cy = x, y
				if lower == 'm' && i == 0 {
					sx, sy = x, y
				}
			}
		case 'h':
			for _, v := range s.args {
				x := v
				if rel(s.cmd) {
					x += cx
				}
				add(x, cy)
				cx = x
			}
		case 'v':
			for _, v := range s.args {
				y := v
				if rel(s.cmd) {
					y += cy
				}
				add(cx, y)
				cy = y
			}
		case 'c':
			for i := 0; i+5 < len(s.args); i += 6 {
				pts := s.args[i : i+6]
				for j := 0; j < 6; j += 2 {
					x, y := pts[j], pts[j+1]
					if rel(s.cmd) {
						x += cx
						y += cy
					}
					add(x, y)
					if j == 4 {
						cx, cy = x, y
					}
				}
			}
		case 's', 'q':
			for i := 0; i+3 < len(s.args); i += 4 {
				pts := s.args[i : i+4]
				for j := 0; j < 4; j += 2 {
					x, y := pts[j], pts[j+1]
					if rel(s.cmd) {
						x += cx
						y += cy
					}
					add(x, y)
					if j == 2 {
						cx, cy = x, y
					}
				}
			}
		case 'a':
			for i := 0; i+6 < len(s.args); i += 7 {
				x, y := s.args[i+5], s.args[i+6]
				if rel(s.cmd) {
					x += cx
					y += cy
				}
				add(x, y)
				cx, cy = x, y
			}
		case 'z':
			cx, cy = sx, sy
		}
	}
	if !seen {
		return Bounds{}, errors.New("svg: path data has no coordinates")
	}
	return b, nil
}
