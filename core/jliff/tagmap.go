package jliff

// TagMapDoc records, per XLIFF <file>, the metadata needed to map
// placeholder tokens in JLIFF text back to the inline codes they
// replaced. It is the companion document to a Document and shares its
// ordering: for every (unit, segment) the tokens in the JLIFF text
// correspond one-to-one, in order, with that segment's TagInstances.
type TagMapDoc struct {
	FileID           string       `json:"file_id"`
	OriginalPath     string       `json:"original_path"`
	SourceLanguage   string       `json:"source_language"`
	TargetLanguage   string       `json:"target_language"`
	PlaceholderStyle string       `json:"placeholder_style"`
	Units            []TagMapUnit `json:"units"`
}

// TagMapUnit holds the tag mapping for a single <unit>.
type TagMapUnit struct {
	UnitID   string          `json:"unit_id"`
	Segments []TagMapSegment `json:"segments"`
}

// TagMapSegment holds the tag mapping for one <segment>, along with a
// snapshot of the original-data bucket visible to that segment so the
// document is self-contained for reconstruction.
type TagMapSegment struct {
	SegmentID    string            `json:"segment_id"`
	Placeholders []TagInstance     `json:"placeholders_in_order"`
	OriginalData map[string]string `json:"originalData_bucket"`
}

// TagInstance mirrors exactly one inline code encountered in a source
// container: the token text inserted into the JLIFF text, the element
// kind, its id when present, its attributes (serialized in lexicographic
// key order), and the resolved original markup when a <data> entry
// matched.
type TagInstance struct {
	Placeholder  string            `json:"placeholder"`
	Elem         string            `json:"elem"`
	ID           string            `json:"id,omitempty"`
	Attrs        map[string]string `json:"attrs"`
	OriginalData string            `json:"originalData,omitempty"`
}
