package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// The namespaces every written document declares. Downstream consumers
// (the PDF assembler, the glyph packager) expect exactly these prefixes.
const (
	Namespace      = "http://www.w3.org/2000/svg"
	XLinkNamespace = "http://www.w3.org/1999/xlink"
)

// Attr is a single element attribute. The attribute name carries the
// resolved namespace URI in Name.Space, never a prefix.
type Attr struct {
	Name  xml.Name
	Value string
}

// Element is a node of the document tree. Attribute order and child
// order are preserved from the input so that serialization is stable.
type Element struct {
	Name     xml.Name
	Attrs    []Attr
	Children []*Element
	Text     string
}

// Attr returns the value of the named attribute in the empty namespace,
// or "" if absent.
func (e *Element) Attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			return a.Value
		}
	}
	return ""
}

// AttrNS returns the value of the named attribute in the given namespace.
func (e *Element) AttrNS(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets an attribute in the empty namespace, replacing an existing
// value and otherwise appending it.
func (e *Element) SetAttr(local, value string) {
	for i, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: xml.Name{Local: local}, Value: value})
}

// RemoveAttr deletes an attribute in the empty namespace if present.
func (e *Element) RemoveAttr(local string) {
	for i, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			e.Attrs = append(e.Attrs[:i], e.Attrs[i+1:]...)
			return
		}
	}
}

// Document is a parsed SVG document. It is owned by a single invocation
// of the deduplication pass and never shared.
type Document struct {
	Root *Element

	// prefixes maps namespace URI to the prefix declared in the input,
	// seeded with the fixed SVG and XLink prefixes. The serializer
	// re-emits these declarations verbatim.
	prefixes map[string]string
}

func defaultPrefixes() map[string]string {
	return map[string]string{
		Namespace:      "",
		XLinkNamespace: "xlink",
	}
}

// NewDocument returns a document with an empty <svg> root and the fixed
// namespace registrations.
func NewDocument() *Document {
	return &Document{
		Root:     &Element{Name: xml.Name{Space: Namespace, Local: "svg"}},
		prefixes: defaultPrefixes(),
	}
}

// Parse reads a full SVG document from r. A malformed document yields an
// error and no partial result. Comments and processing instructions are
// discarded, so an input carrying them serializes without them; element
// structure, attributes and character data round-trip exactly.
func Parse(r io.Reader) (*Document, error) {
	doc := &Document{prefixes: defaultPrefixes()}
	dec := xml.NewDecoder(r)

	var stack []*Element
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "svg: parse")
		}
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name}
			for _, a := range t.Attr {
				// Namespace declarations are recorded once and
				// re-emitted by the serializer, not kept as attrs.
				if a.Name.Space == "xmlns" {
					doc.registerPrefix(a.Value, a.Name.Local)
					continue
				}
				if a.Name.Space == "" && a.Name.Local == "xmlns" {
					doc.registerPrefix(a.Value, "")
					continue
				}
				el.Attrs = append(el.Attrs, Attr{Name: a.Name, Value: a.Value})
			}
			if len(stack) == 0 {
				if doc.Root != nil {
					return nil, errors.New("svg: multiple root elements")
				}
				doc.Root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("svg: unbalanced end tag")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				s := string(t)
				if strings.TrimSpace(s) != "" {
					stack[len(stack)-1].Text += s
				}
			}
		}
	}
	if doc.Root == nil {
		return nil, errors.New("svg: empty document")
	}
	if len(stack) != 0 {
		return nil, errors.New("svg: truncated document")
	}
	return doc, nil
}

// ParseFile parses the SVG file at path.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "svg: open %s", path)
	}
	defer f.Close()

	doc, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "svg: %s", path)
	}
	return doc, nil
}

func (d *Document) registerPrefix(uri, prefix string) {
	// The fixed SVG and XLink prefixes win over whatever the input used.
	if uri == Namespace || uri == XLinkNamespace {
		return
	}
	if _, ok := d.prefixes[uri]; !ok {
		d.prefixes[uri] = prefix
	}
}

// usesNamespace reports whether any element or attribute in the tree
// belongs to the given namespace URI.
func (d *Document) usesNamespace(uri string) bool {
	var walk func(e *Element) bool
	walk = func(e *Element) bool {
		if e.Name.Space == uri {
			return true
		}
		for _, a := range e.Attrs {
			if a.Name.Space == uri {
				return true
			}
		}
		for _, c := range e.Children {
			if walk(c) {
				return true
			}
		}
		return false
	}
	return d.Root != nil && walk(d.Root)
}

// WriteTo serializes the document as UTF-8 XML with the registered
// namespace prefixes. The whole document is rendered before any byte is
// written out, so a failed transform never leaves a partial file behind.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	b, err := d.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// Bytes serializes the document to a byte slice.
func (d *Document) Bytes() ([]byte, error) {
	if d.Root == nil {
		return nil, errors.New("svg: no root element")
	}
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if err := d.writeElement(&buf, d.Root, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile serializes the document and writes it to path in one shot.
func (d *Document) WriteFile(path string) error {
	b, err := d.Bytes()
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, b, 0644), "svg: write %s", path)
}

func (d *Document) writeElement(buf *bytes.Buffer, e *Element, root bool) error {
	name, err := d.qualify(e.Name)
	if err != nil {
		return err
	}
	buf.WriteByte('<')
	buf.WriteString(name)

	if root {
		buf.WriteString(` xmlns="` + Namespace + `"`)
		if d.usesNamespace(XLinkNamespace) {
			buf.WriteString(` xmlns:xlink="` + XLinkNamespace + `"`)
		}
		// Any extra prefixes the input declared round-trip unchanged.
		extras := make([]string, 0, len(d.prefixes))
		for uri, prefix := range d.prefixes {
			if uri == Namespace || uri == XLinkNamespace || prefix == "" {
				continue
			}
			extras = append(extras, ` xmlns:`+prefix+`="`+uri+`"`)
		}
		sort.Strings(extras)
		for _, decl := range extras {
			buf.WriteString(decl)
		}
	}

	for _, a := range e.Attrs {
		aname, err := d.qualifyAttr(a.Name)
		if err != nil {
			return err
		}
		buf.WriteByte(' ')
		buf.WriteString(aname)
		buf.WriteString(`="`)
		escape(buf, a.Value)
		buf.WriteByte('"')
	}

	if len(e.Children) == 0 && e.Text == "" {
		buf.WriteString(" />")
		return nil
	}

	buf.WriteByte('>')
	if e.Text != "" {
		escape(buf, e.Text)
	}
	for _, c := range e.Children {
		if err := d.writeElement(buf, c, false); err != nil {
			return err
		}
	}
	buf.WriteString("</" + name + ">")
	return nil
}

func (d *Document) qualify(n xml.Name) (string, error) {
	if n.Space == "" || n.Space == Namespace {
		return n.Local, nil
	}
	prefix, ok := d.prefixes[n.Space]
	if !ok || prefix == "" {
		return "", errors.Errorf("svg: unregistered namespace %q", n.Space)
	}
	return prefix + ":" + n.Local, nil
}

func (d *Document) qualifyAttr(n xml.Name) (string, error) {
	if n.Space == "" {
		return n.Local, nil
	}
	// Attributes never inherit the default namespace.
	prefix, ok := d.prefixes[n.Space]
	if !ok || prefix == "" {
		return "", errors.Errorf("svg: unregistered namespace %q", n.Space)
	}
	return prefix + ":" + n.Local, nil
}

func escape(buf *bytes.Buffer, s string) {
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
}
