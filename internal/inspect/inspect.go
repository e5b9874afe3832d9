// Package inspect summarizes the structure of an XLIFF document
// without converting it.
package inspect

import (
	"fmt"
	"io"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Report summarizes one document.
type Report struct {
	Version        string         `json:"version"`
	SourceLanguage string         `json:"source_language"`
	TargetLanguage string         `json:"target_language"`
	Files          int            `json:"files"`
	Units          int            `json:"units"`
	Segments       int            `json:"segments"`
	Inline         map[string]int `json:"inline_codes"`
	DataEntries    int            `json:"original_data_entries"`
}

// Inspect parses the document and counts its translatable structure.
func Inspect(r io.Reader) (*Report, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	root := xmlquery.FindOne(doc, "//*[local-name()='xliff']")
	if root == nil {
		return nil, fmt.Errorf("document has no <xliff> root element")
	}

	report := &Report{
		Version:        root.SelectAttr("version"),
		SourceLanguage: root.SelectAttr("srcLang"),
		TargetLanguage: root.SelectAttr("trgLang"),
		Inline:         map[string]int{},
	}

	report.Files = len(xmlquery.Find(doc, "//*[local-name()='file']"))
	report.Units = len(xmlquery.Find(doc, "//*[local-name()='unit']"))
	report.Segments = len(xmlquery.Find(doc, "//*[local-name()='segment']"))
	report.DataEntries = len(xmlquery.Find(doc, "//*[local-name()='data']"))

	for _, kind := range []string{"ph", "pc", "sc", "ec", "cp"} {
		n := len(xmlquery.Find(doc, fmt.Sprintf("//*[local-name()='%s']", kind)))
		if n > 0 {
			report.Inline[kind] = n
		}
	}
	return report, nil
}

// Query runs an XPath expression against the document and returns the
// serialized form of every match. The expression is compiled up front
// so a bad query fails before the document is read.
func Query(r io.Reader, expression string) ([]string, error) {
	expr, err := xpath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath expression %q: %w", expression, err)
	}

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	nodes := xmlquery.QuerySelectorAll(doc, expr)
	out := make([]string, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, node.OutputXML(true))
	}
	return out, nil
}
