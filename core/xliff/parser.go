package xliff

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/core/jliff"
	"github.com/openlocalize/jliffconv/core/xmlscan"
)

// Convert parses the XLIFF document named by opts.Input and returns one
// conversion result per <file> element, in document order.
func Convert(opts *jliff.Options) ([]jliff.FileConversion, error) {
	f, err := os.Open(opts.Input)
	if err != nil {
		return nil, errors.NewIO("open", opts.Input, err)
	}
	defer f.Close()

	return Parse(f, opts)
}

// Parse runs the conversion against an already open document stream.
func Parse(r io.Reader, opts *jliff.Options) ([]jliff.FileConversion, error) {
	s := xmlscan.New(r)
	path := opts.Input

	root, err := locateRoot(s, path)
	if err != nil {
		return nil, err
	}
	info, err := checkRoot(root, path)
	if err != nil {
		return nil, err
	}

	p := &parser{
		s:    s,
		path: path,
		opts: opts,
		info: info,
	}
	return p.files()
}

type parser struct {
	s    *xmlscan.Scanner
	path string
	opts *jliff.Options
	info docInfo
}

// files walks the children of <xliff>, converting each <file> element.
func (p *parser) files() ([]jliff.FileConversion, error) {
	var conversions []jliff.FileConversion

	for {
		tok, err := p.s.Next()
		if err == io.EOF {
			return conversions, nil
		}
		if err != nil {
			return nil, errors.NewParse("XLIFF", p.path, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "file" || !inNamespace(t.Name) {
				if err := p.s.Skip(); err != nil {
					return nil, errors.NewParse("XLIFF", p.path, err.Error())
				}
				continue
			}
			conversion, err := p.file(t)
			if err != nil {
				return nil, err
			}
			conversions = append(conversions, conversion)
		case xml.EndElement:
			return conversions, nil
		}
	}
}

// file converts one <file> element into its JLIFF document and tag map.
func (p *parser) file(start xml.StartElement) (jliff.FileConversion, error) {
	attrs := xmlscan.Attrs(start)
	fileID := attrs["id"]
	if fileID == "" {
		return jliff.FileConversion{}, errors.NewParse("XLIFF", p.path, "<file> element is missing the id attribute")
	}
	original := attrs["original"]

	doc := jliff.Document{
		ProjectName:    p.opts.ProjectName,
		ProjectID:      p.opts.ProjectID,
		File:           original,
		User:           p.opts.User,
		SourceLanguage: p.info.sourceLang,
		TargetLanguage: p.info.targetLang,
	}
	if doc.File == "" {
		doc.File = filepath.Base(p.path)
	}

	tagMap := jliff.TagMapDoc{
		FileID:           fileID,
		OriginalPath:     original,
		SourceLanguage:   p.info.sourceLang,
		TargetLanguage:   p.info.targetLang,
		PlaceholderStyle: string(p.opts.EffectiveStyle()),
	}

	fileBucket := Bucket{}

	for {
		tok, err := p.s.Next()
		if err == io.EOF {
			return jliff.FileConversion{}, errors.NewParse("XLIFF", p.path, "unexpected end of document inside <file>")
		}
		if err != nil {
			return jliff.FileConversion{}, errors.NewParse("XLIFF", p.path, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "originalData" && inNamespace(t.Name):
				if err := parseBucket(p.s, p.path, fileBucket); err != nil {
					return jliff.FileConversion{}, err
				}
			case t.Name.Local == "unit" && inNamespace(t.Name):
				units, mapUnit, err := p.unit(t, fileBucket)
				if err != nil {
					return jliff.FileConversion{}, err
				}
				doc.TransUnits = append(doc.TransUnits, units...)
				tagMap.Units = append(tagMap.Units, mapUnit)
			default:
				if err := p.s.Skip(); err != nil {
					return jliff.FileConversion{}, errors.NewParse("XLIFF", p.path, err.Error())
				}
			}
		case xml.EndElement:
			return jliff.FileConversion{Jliff: doc, TagMap: tagMap, FileID: fileID}, nil
		}
	}
}

// unit converts one <unit> element. Unit-level originalData entries
// overlay the file-level bucket for the unit's segments.
func (p *parser) unit(start xml.StartElement, fileBucket Bucket) ([]jliff.TransUnit, jliff.TagMapUnit, error) {
	unitID, ok := xmlscan.Attr(start, "id")
	if !ok || unitID == "" {
		return nil, jliff.TagMapUnit{}, errors.NewParse("XLIFF", p.path, "<unit> element is missing the id attribute")
	}

	bucket := fileBucket.Clone()
	mapUnit := jliff.TagMapUnit{UnitID: unitID}
	var transUnits []jliff.TransUnit
	segSeq := 0

	for {
		tok, err := p.s.Next()
		if err == io.EOF {
			return nil, jliff.TagMapUnit{}, errors.NewParse("XLIFF", p.path, "unexpected end of document inside <unit>")
		}
		if err != nil {
			return nil, jliff.TagMapUnit{}, errors.NewParse("XLIFF", p.path, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "originalData" && inNamespace(t.Name):
				if err := parseBucket(p.s, p.path, bucket); err != nil {
					return nil, jliff.TagMapUnit{}, err
				}
			case t.Name.Local == "segment" && inNamespace(t.Name):
				transUnit, mapSegment, err := p.segment(t, unitID, segSeq, bucket)
				if err != nil {
					return nil, jliff.TagMapUnit{}, err
				}
				segSeq++
				transUnits = append(transUnits, transUnit)
				mapUnit.Segments = append(mapUnit.Segments, mapSegment)
			default:
				if err := p.s.Skip(); err != nil {
					return nil, jliff.TagMapUnit{}, errors.NewParse("XLIFF", p.path, err.Error())
				}
			}
		case xml.EndElement:
			return transUnits, mapUnit, nil
		}
	}
}

// segment converts one <segment> element. The source content is
// authoritative for the tag map; target content only contributes the
// translated text.
func (p *parser) segment(start xml.StartElement, unitID string, seq int, bucket Bucket) (jliff.TransUnit, jliff.TagMapSegment, error) {
	segID, ok := xmlscan.Attr(start, "id")
	if !ok || segID == "" {
		segID = fmt.Sprintf("%d", seq)
	}

	var (
		source     string
		target     string
		sourceTags []jliff.TagInstance
	)

	for {
		tok, err := p.s.Next()
		if err == io.EOF {
			return jliff.TransUnit{}, jliff.TagMapSegment{}, errors.NewParse("XLIFF", p.path, "unexpected end of document inside <segment>")
		}
		if err != nil {
			return jliff.TransUnit{}, jliff.TagMapSegment{}, errors.NewParse("XLIFF", p.path, err.Error())
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "source" && inNamespace(t.Name):
				source, sourceTags, err = p.content(bucket, p.opts.KeepInlineInSource)
			case t.Name.Local == "target" && inNamespace(t.Name):
				target, _, err = p.content(bucket, false)
			default:
				err = p.s.Skip()
				if err != nil {
					err = errors.NewParse("XLIFF", p.path, err.Error())
				}
			}
			if err != nil {
				return jliff.TransUnit{}, jliff.TagMapSegment{}, err
			}
		case xml.EndElement:
			transUnit := jliff.TransUnit{
				UnitID:            unitID,
				TransUnitID:       fmt.Sprintf("u%s-s%s", unitID, segID),
				Source:            source,
				TargetTranslation: target,
			}
			mapSegment := jliff.TagMapSegment{
				SegmentID:    segID,
				Placeholders: sourceTags,
				OriginalData: bucket.Clone(),
			}
			return transUnit, mapSegment, nil
		}
	}
}

// content builds one <source> or <target> container. Each container
// gets its own fallback-id generator so unnamed codes in source and
// target produce identical token text and the tag map matches both.
func (p *parser) content(bucket Bucket, keepInline bool) (string, []jliff.TagInstance, error) {
	b := &segmentBuilder{
		s:          p.s,
		path:       p.path,
		bucket:     bucket,
		style:      p.opts.EffectiveStyle(),
		keepInline: keepInline,
		auto:       &autoIDs{},
	}
	return b.build()
}
