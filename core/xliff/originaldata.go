package xliff

import (
	"encoding/xml"
	"io"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/core/xmlscan"
)

// Bucket maps originalData ids to their raw markup content.
type Bucket map[string]string

// Clone returns an independent copy of the bucket.
func (b Bucket) Clone() Bucket {
	out := make(Bucket, len(b))
	for id, content := range b {
		out[id] = content
	}
	return out
}

// parseBucket consumes an <originalData> subtree and merges every
// <data> entry into b. Duplicate ids are overwritten, last one wins.
// A <data> element without an id is a hard failure since nothing could
// ever reference it.
func parseBucket(s *xmlscan.Scanner, path string, b Bucket) error {
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return errors.NewParse("XLIFF", path, "unexpected end of document inside <originalData>")
		}
		if err != nil {
			return errors.NewParse("XLIFF", path, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "data" || !inNamespace(t.Name) {
				if err := s.Skip(); err != nil {
					return errors.NewParse("XLIFF", path, err.Error())
				}
				continue
			}
			id, ok := xmlscan.Attr(t, "id")
			if !ok || id == "" {
				return errors.NewParse("XLIFF", path, "<data> element is missing the id attribute")
			}
			content, err := s.InnerMarkup(t)
			if err != nil {
				return errors.NewParse("XLIFF", path, err.Error())
			}
			b[id] = content
		case xml.EndElement:
			return nil
		}
	}
}

// resolveOriginal looks up the original markup an inline code points at:
// an explicit dataRef wins, then the code's own id.
func resolveOriginal(b Bucket, attrs map[string]string, id string) string {
	if ref := attrs["dataRef"]; ref != "" {
		if content, ok := b[ref]; ok {
			return content
		}
	}
	if id != "" {
		if content, ok := b[id]; ok {
			return content
		}
	}
	return ""
}
