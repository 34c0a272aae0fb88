package svg

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrReferenceCycle is returned when reference mode would make an
// element point at itself. That can only happen through a defect in key
// computation, so the whole document transform fails rather than
// producing an invalid file.
var ErrReferenceCycle = errors.New("svg: reference cycle")

// Record tracks one canonical path: its equivalence key, the id of the
// element kept in the output, and how many input occurrences shared the
// key.
type Record struct {
	Key   string
	ID    string
	Count int

	canonical *Element
}

// GlyphUse is a path that matched a known font glyph and was lifted out
// of the document. X and Y come from the element's translate transform.
type GlyphUse struct {
	CodePoint rune
	X, Y      float64
}

// MarshalJSON renders the use as the [codePoint, x, y] triple the glyph
// packager consumes.
func (g GlyphUse) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("[%d,%s,%s]",
		g.CodePoint,
		strconv.FormatFloat(g.X, 'f', -1, 64),
		strconv.FormatFloat(g.Y, 'f', -1, 64))), nil
}

// Result summarizes one deduplication pass.
type Result struct {
	// Records holds one entry per distinct canonical key, in first-seen
	// document order.
	Records []*Record
	// Folded counts duplicate elements removed or rewritten.
	Folded int
	// GlyphUses holds paths replaced by font glyph references.
	GlyphUses []GlyphUse
}

type deduper struct {
	cfg     Config
	index   map[string]*Record
	result  *Result
	usedIDs map[string]bool
	nextID  int
}

// Deduplicate folds duplicate path elements in doc according to cfg.
// The document is modified in place; on error its state is undefined and
// it must not be serialized.
func Deduplicate(doc *Document, cfg Config) (*Result, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if doc.Root == nil {
		return nil, errors.New("svg: no root element")
	}

	dd := &deduper{
		cfg:     cfg,
		index:   make(map[string]*Record),
		result:  &Result{},
		usedIDs: make(map[string]bool),
		nextID:  1,
	}
	collectIDs(doc.Root, dd.usedIDs)

	if err := dd.walk(doc.Root); err != nil {
		return nil, err
	}
	cfg.Logger.Debug("deduplicated document",
		"distinct", len(dd.result.Records),
		"folded", dd.result.Folded,
		"glyphs", len(dd.result.GlyphUses))
	return dd.result, nil
}

func collectIDs(e *Element, ids map[string]bool) {
	if id := e.Attr("id"); id != "" {
		ids[id] = true
	}
	for _, c := range e.Children {
		collectIDs(c, ids)
	}
}

func isPathElement(e *Element) bool {
	return e.Name.Local == "path" && (e.Name.Space == Namespace || e.Name.Space == "")
}

// walk visits parent's children in document order, folding duplicates.
// Children are replaced or dropped in place so sibling order survives.
func (dd *deduper) walk(parent *Element) error {
	kept := parent.Children[:0]
	for _, child := range parent.Children {
		if !isPathElement(child) {
			if err := dd.walk(child); err != nil {
				return err
			}
			kept = append(kept, child)
			continue
		}

		d := strings.TrimSpace(child.Attr("d"))
		if dd.cfg.GlyphLookup != nil && d != "" {
			if cp, ok := dd.cfg.GlyphLookup(d); ok {
				x, y, _ := ParseTranslate(child.Attr("transform"))
				dd.result.GlyphUses = append(dd.result.GlyphUses, GlyphUse{CodePoint: cp, X: x, Y: y})
				continue
			}
		}

		key := CanonicalKey(child, dd.cfg.Key)
		if key == "" {
			// Empty path data never participates in deduplication.
			kept = append(kept, child)
			continue
		}

		rec, ok := dd.index[key]
		if !ok {
			rec = &Record{Key: key, ID: child.Attr("id"), Count: 1, canonical: child}
			dd.index[key] = rec
			dd.result.Records = append(dd.result.Records, rec)
			kept = append(kept, child)
			continue
		}

		rec.Count++
		dd.result.Folded++
		switch dd.cfg.Mode {
		case ModeRemove:
			// Drop the duplicate outright.
		case ModeReference:
			use, err := dd.makeUse(rec, child)
			if err != nil {
				return err
			}
			kept = append(kept, use)
		}
	}
	parent.Children = kept
	return nil
}

// makeUse builds the <use> element replacing a duplicate, assigning the
// canonical element a deterministic id if it has none.
func (dd *deduper) makeUse(rec *Record, dup *Element) (*Element, error) {
	if rec.canonical == dup {
		return nil, errors.Wrapf(ErrReferenceCycle, "key %q", rec.Key)
	}
	if rec.ID == "" {
		rec.ID = dd.freshID()
		rec.canonical.SetAttr("id", rec.ID)
	}
	if dup.Attr("id") == rec.ID {
		return nil, errors.Wrapf(ErrReferenceCycle, "id %q", rec.ID)
	}

	use := &Element{
		Name: xml.Name{Space: Namespace, Local: "use"},
		Attrs: []Attr{{
			Name:  xml.Name{Space: XLinkNamespace, Local: "href"},
			Value: "#" + rec.ID,
		}},
	}
	// Placement attributes are excluded from the key, so they transfer
	// to the reference to keep the instance's visual position.
	for _, name := range []string{"x", "y", "transform"} {
		if v := dup.Attr(name); v != "" {
			use.Attrs = append(use.Attrs, Attr{Name: xml.Name{Local: name}, Value: v})
		}
	}
	return use, nil
}

func (dd *deduper) freshID() string {
	for {
		id := "p" + strconv.Itoa(dd.nextID)
		dd.nextID++
		if !dd.usedIDs[id] {
			dd.usedIDs[id] = true
			return id
		}
	}
}

var translateRe = regexp.MustCompile(`translate\(\s*([-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)[\s,]+([-+]?[0-9]*\.?[0-9]+(?:[eE][-+]?[0-9]+)?)\s*\)`)

// ParseTranslate extracts the x and y offsets from a translate()
// transform expression. Returns ok=false when no translate is present.
func ParseTranslate(transform string) (x, y float64, ok bool) {
	m := translateRe.FindStringSubmatch(transform)
	if m == nil {
		return 0, 0, false
	}
	x, err1 := strconv.ParseFloat(m[1], 64)
	y, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return x, y, true
}
