package xliff

import (
	"encoding/xml"
	"io"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/core/xmlscan"
)

// Namespace is the XLIFF 2.0 document namespace.
const Namespace = "urn:oasis:names:tc:xliff:document:2.0"

// docInfo carries the root-level attributes every file inherits.
type docInfo struct {
	version    string
	sourceLang string
	targetLang string
}

// inNamespace reports whether an element belongs to the XLIFF 2.0
// vocabulary. Unprefixed documents without a default namespace are
// accepted as well.
func inNamespace(name xml.Name) bool {
	return name.Space == "" || name.Space == Namespace
}

// locateRoot consumes prolog tokens until the document's root element.
func locateRoot(s *xmlscan.Scanner, path string) (xml.StartElement, error) {
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return xml.StartElement{}, errors.NewParse("XLIFF", path, "document has no root element")
		}
		if err != nil {
			return xml.StartElement{}, errors.NewParse("XLIFF", path, err.Error())
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start, nil
		}
	}
}

// checkRoot validates the <xliff> element: local name, namespace,
// version 2.0, and the mandatory language pair.
func checkRoot(root xml.StartElement, path string) (docInfo, error) {
	if root.Name.Local != "xliff" {
		return docInfo{}, errors.NewParse("XLIFF", path, "root element is <"+root.Name.Local+">, expected <xliff>")
	}
	if !inNamespace(root.Name) {
		return docInfo{}, errors.NewUnsupported("namespace "+root.Name.Space, "only XLIFF 2.0 documents are handled")
	}

	attrs := xmlscan.Attrs(root)

	info := docInfo{
		version:    attrs["version"],
		sourceLang: attrs["srcLang"],
		targetLang: attrs["trgLang"],
	}

	if info.version != "2.0" {
		if info.version == "" {
			return docInfo{}, errors.NewParse("XLIFF", path, "<xliff> is missing the version attribute")
		}
		return docInfo{}, errors.NewUnsupported("XLIFF version "+info.version, "only version 2.0 is handled")
	}
	if info.sourceLang == "" {
		return docInfo{}, errors.NewParse("XLIFF", path, "<xliff> is missing the srcLang attribute")
	}
	if info.targetLang == "" {
		return docInfo{}, errors.NewParse("XLIFF", path, "<xliff> is missing the trgLang attribute")
	}
	return info, nil
}
