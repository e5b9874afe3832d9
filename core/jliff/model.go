// Package jliff defines the JLIFF and tag-map output documents produced
// from XLIFF 2.0 input, the conversion options, and the writer that
// serializes generated documents to disk.
package jliff

// Document is the JLIFF payload generated for a single XLIFF <file>
// element. Field names mirror the JLIFF schema exactly.
type Document struct {
	ProjectName    string      `json:"Project_name"`
	ProjectID      string      `json:"Project_ID"`
	File           string      `json:"File"`
	User           string      `json:"User"`
	SourceLanguage string      `json:"Source_language"`
	TargetLanguage string      `json:"Target_language"`
	TransUnits     []TransUnit `json:"Transunits"`
}

// TransUnit is one translatable segment. The QA and notes fields are
// reserved for downstream editing tools and are never populated by the
// converter; they serialize only when non-empty.
type TransUnit struct {
	UnitID            string       `json:"unit id"`
	TransUnitID       string       `json:"transunit_id"`
	Source            string       `json:"Source"`
	TargetTranslation string       `json:"Target_translation"`
	TargetQA1         string       `json:"Target_QA_1,omitempty"`
	TargetQA2         string       `json:"Target_QA_2,omitempty"`
	TargetPostedit    string       `json:"Target_Postedit,omitempty"`
	TranslationNotes  *NoteBlock   `json:"Translation_notes,omitempty"`
	QANotes           *NoteBlock   `json:"QA_notes,omitempty"`
	SourceNotes       *SourceNotes `json:"Source_notes,omitempty"`
}

// NoteBlock groups notes into WARNING/CRITICAL/SOURCE_ERROR buckets.
type NoteBlock struct {
	Warning     []string `json:"WARNING,omitempty"`
	Critical    []string `json:"CRITICAL,omitempty"`
	SourceError []string `json:"SOURCE_ERROR,omitempty"`
}

// SourceNotes omits the CRITICAL category per the schema.
type SourceNotes struct {
	Warning     []string `json:"WARNING,omitempty"`
	SourceError []string `json:"SOURCE_ERROR,omitempty"`
}

// FileConversion is the fully assembled in-memory output for a single
// XLIFF <file> element: the JLIFF document plus its companion tag map.
type FileConversion struct {
	Jliff  Document
	TagMap TagMapDoc
	FileID string
}
