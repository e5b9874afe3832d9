// Package xmlscan provides pull-based XML scanning primitives on top of
// encoding/xml: namespace-aware token iteration, attribute collection,
// whole-subtree skipping, and verbatim inner-markup capture.
//
// The scanner does not build a document tree; callers drive it with
// recursive descent and use Skip to discard subtrees they do not model.
// Go's xml.Decoder resolves namespaces (Name.Space carries the URI),
// decodes character and entity references, and surfaces malformed input
// and mid-subtree EOF as fatal errors, which matches the fail-fast
// contract of the conversion core.
package xmlscan

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"
)

// Scanner wraps an xml.Decoder with the primitives the conversion core needs.
type Scanner struct {
	d *xml.Decoder
}

// New creates a Scanner reading from r.
func New(r io.Reader) *Scanner {
	d := xml.NewDecoder(r)
	// XXE Protection (CWE-611): never expand non-predefined entities.
	d.Entity = map[string]string{}
	return &Scanner{d: d}
}

// Next returns the next XML token. io.EOF signals a clean end of stream;
// any other error is fatal.
func (s *Scanner) Next() (xml.Token, error) {
	return s.d.Token()
}

// Skip consumes the remainder of the most recently opened element,
// start through matching end, without interpreting its content.
func (s *Scanner) Skip() error {
	return s.d.Skip()
}

// Attrs collects the attributes of start into a name-keyed map.
// Namespace-prefixed attributes are keyed by their local name, so two
// attributes that differ only in prefix collapse to a single entry with
// the later value winning; the xmlns declarations themselves are
// dropped.
func Attrs(start xml.StartElement) map[string]string {
	if len(start.Attr) == 0 {
		return nil
	}
	attrs := make(map[string]string, len(start.Attr))
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		attrs[attr.Name.Local] = attr.Value
	}
	return attrs
}

// Attr returns the value of the named attribute on start, reporting
// whether it was present.
func Attr(start xml.StartElement, local string) (string, bool) {
	for _, attr := range start.Attr {
		if attr.Name.Local == local {
			return attr.Value, true
		}
	}
	return "", false
}

// InnerMarkup reads the full content of the element opened by start, up
// to and including its matching end tag, and returns it as text. Plain
// text and CDATA are appended decoded; nested elements are re-serialized
// with their local names and attributes so escaped markup survives as
// markup (e.g. a <data> entry holding &lt;b&gt;bold&lt;/b&gt; yields
// "<b>bold</b>").
func (s *Scanner) InnerMarkup(start xml.StartElement) (string, error) {
	var out strings.Builder
	if err := s.appendInner(start, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (s *Scanner) appendInner(start xml.StartElement, out *strings.Builder) error {
	for {
		tok, err := s.Next()
		if err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			out.Write(t)
		case xml.StartElement:
			out.WriteByte('<')
			out.WriteString(t.Name.Local)
			for _, attr := range sortedAttrs(t) {
				out.WriteByte(' ')
				out.WriteString(attr.Name.Local)
				out.WriteString(`="`)
				out.WriteString(EscapeAttr(attr.Value))
				out.WriteByte('"')
			}
			out.WriteByte('>')
			if err := s.appendInner(t, out); err != nil {
				return err
			}
			out.WriteString("</")
			out.WriteString(t.Name.Local)
			out.WriteByte('>')
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

func sortedAttrs(start xml.StartElement) []xml.Attr {
	attrs := make([]xml.Attr, 0, len(start.Attr))
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].Name.Local < attrs[j].Name.Local
	})
	return attrs
}

// IsWhitespace reports whether cd contains only XML whitespace.
func IsWhitespace(cd xml.CharData) bool {
	for _, b := range cd {
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}

// EscapeText escapes the basic XML entities for text content.
func EscapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeAttr escapes text for use in XML attribute values.
// Includes quote escaping in addition to basic XML entities.
func EscapeAttr(s string) string {
	s = EscapeText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}
