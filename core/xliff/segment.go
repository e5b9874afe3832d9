package xliff

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/core/jliff"
	"github.com/openlocalize/jliffconv/core/xmlscan"
)

// segmentBuilder turns the content of one <source> or <target> element
// into segment text plus the ordered tag instances extracted from it.
type segmentBuilder struct {
	s          *xmlscan.Scanner
	path       string
	bucket     Bucket
	style      jliff.PlaceholderStyle
	keepInline bool
	auto       *autoIDs

	text strings.Builder
	tags []jliff.TagInstance
	open []string
}

// build consumes tokens until the end of the container element the
// scanner is positioned inside of.
func (b *segmentBuilder) build() (string, []jliff.TagInstance, error) {
	for {
		tok, err := b.s.Next()
		if err == io.EOF {
			return "", nil, errors.NewParse("XLIFF", b.path, "unexpected end of document inside segment content")
		}
		if err != nil {
			return "", nil, errors.NewParse("XLIFF", b.path, err.Error())
		}

		switch t := tok.(type) {
		case xml.CharData:
			b.writeText(string(t))
		case xml.StartElement:
			if err := b.startElement(t); err != nil {
				return "", nil, err
			}
		case xml.EndElement:
			if len(b.open) > 0 {
				b.closeElement()
				continue
			}
			return b.text.String(), b.tags, nil
		}
	}
}

func (b *segmentBuilder) writeText(text string) {
	if b.keepInline {
		b.text.WriteString(xmlscan.EscapeText(text))
		return
	}
	b.text.WriteString(text)
}

func (b *segmentBuilder) startElement(t xml.StartElement) error {
	if !inNamespace(t.Name) || !isInlineKind(t.Name.Local) {
		// Annotation wrappers are transparent, their text flows through.
		if t.Name.Local == "mrk" && inNamespace(t.Name) {
			b.open = append(b.open, "mrk")
			return nil
		}
		if err := b.s.Skip(); err != nil {
			return errors.NewParse("XLIFF", b.path, err.Error())
		}
		return nil
	}

	attrs := xmlscan.Attrs(t)
	kind := t.Name.Local

	switch kind {
	case KindCp:
		return b.emitCp(attrs)
	case KindPc:
		b.emit(kind, attrs, b.codeID(kind, attrs))
		b.open = append(b.open, KindPc)
		return nil
	default: // ph, sc, ec
		b.emit(kind, attrs, b.codeID(kind, attrs))
		if err := b.s.Skip(); err != nil {
			return errors.NewParse("XLIFF", b.path, err.Error())
		}
		return nil
	}
}

func (b *segmentBuilder) closeElement() {
	closed := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	if closed == KindPc && b.keepInline {
		b.text.WriteString("</pc>")
	}
}

// codeID picks the identifier used in the placeholder token. The
// explicit flag in the return distinguishes document-supplied ids from
// generated fallbacks, which are never recorded in the tag map.
func (b *segmentBuilder) codeID(kind string, attrs map[string]string) codeIdentity {
	if kind == KindEc {
		if ref := attrs["startRef"]; ref != "" {
			return codeIdentity{id: ref, explicit: true}
		}
	}
	if id := attrs["id"]; id != "" {
		return codeIdentity{id: id, explicit: true}
	}
	return codeIdentity{id: b.auto.take(kind)}
}

type codeIdentity struct {
	id       string
	explicit bool
}

func (b *segmentBuilder) emit(kind string, attrs map[string]string, identity codeIdentity) {
	token := b.style.Token(kind, identity.id)

	instance := jliff.TagInstance{
		Placeholder:  token,
		Elem:         kind,
		Attrs:        attrs,
		OriginalData: resolveOriginal(b.bucket, attrs, attrs["id"]),
	}
	if identity.explicit {
		instance.ID = identity.id
	}
	b.tags = append(b.tags, instance)

	if b.keepInline {
		b.text.WriteString(serializeInline(kind, attrs, kind != KindPc))
		return
	}
	b.text.WriteString(token)
}

// emitCp handles <cp hex="..."/>. Renderable code points become literal
// segment text; everything else, including a missing or unparsable hex
// attribute, stays behind a placeholder token so a stray <cp> never
// aborts the conversion.
func (b *segmentBuilder) emitCp(attrs map[string]string) error {
	instance := jliff.TagInstance{Elem: KindCp, Attrs: attrs}

	r, ok := decodeCp(attrs["hex"])
	if ok && renderable(r) {
		instance.Placeholder = string(r)
		if b.keepInline {
			b.text.WriteString(serializeInline(KindCp, attrs, true))
		} else {
			b.text.WriteString(string(r))
		}
	} else {
		token := b.style.Token(KindCp, b.auto.take(KindCp))
		instance.Placeholder = token
		if b.keepInline {
			b.text.WriteString(serializeInline(KindCp, attrs, true))
		} else {
			b.text.WriteString(token)
		}
	}
	b.tags = append(b.tags, instance)

	if err := b.s.Skip(); err != nil {
		return errors.NewParse("XLIFF", b.path, err.Error())
	}
	return nil
}

// serializeInline renders an inline element back to markup with its
// attributes in lexicographic order.
func serializeInline(local string, attrs map[string]string, selfClose bool) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(local)
	for _, k := range keys {
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteString(`="`)
		sb.WriteString(xmlscan.EscapeAttr(attrs[k]))
		sb.WriteByte('"')
	}
	if selfClose {
		sb.WriteString("/>")
	} else {
		sb.WriteByte('>')
	}
	return sb.String()
}
