package jliff

// PlaceholderStyle identifies the token flavour substituted for inline codes.
type PlaceholderStyle string

// PlaceholderDoubleCurly renders tokens as {{elem:id}}. It is the only
// style currently defined.
const PlaceholderDoubleCurly PlaceholderStyle = "double-curly"

// Token formats the placeholder token for an inline element of the given
// kind and effective id.
func (s PlaceholderStyle) Token(elem, id string) string {
	// Only the double-curly style exists today.
	return "{{" + elem + ":" + id + "}}"
}

// Options configures a single conversion call.
type Options struct {
	// Input is the path of the XLIFF 2.0 document to convert.
	Input string `yaml:"input"`
	// OutputDir is the directory generated JSON artifacts are written to.
	OutputDir string `yaml:"output_dir"`
	// ProjectName is the human readable project name stored in the payload.
	ProjectName string `yaml:"project_name"`
	// ProjectID is the stable project identifier stored in the payload.
	ProjectID string `yaml:"project_id"`
	// User identifies the operator responsible for the conversion.
	User string `yaml:"user"`
	// FilePrefix overrides the output filename prefix. Empty means the
	// input file's stem; a provided-but-blank value is a configuration
	// error.
	FilePrefix string `yaml:"file_prefix,omitempty"`
	// SchemaPath optionally points at a JSON schema used to validate
	// generated JLIFF payloads. A missing or unusable schema degrades to
	// no validation.
	SchemaPath string `yaml:"schema_path,omitempty"`
	// Style selects the placeholder token flavour.
	Style PlaceholderStyle `yaml:"placeholder_style,omitempty"`
	// KeepInlineInSource preserves inline markup verbatim in the text
	// instead of substituting placeholder tokens.
	KeepInlineInSource bool `yaml:"keep_inline_in_source,omitempty"`
	// Pretty pretty-prints the JSON output.
	Pretty bool `yaml:"pretty,omitempty"`
	// Manifest additionally writes <prefix>.manifest.json describing the
	// generated artifacts with their digests.
	Manifest bool `yaml:"manifest,omitempty"`
}

// NewOptions returns Options with the defaults applied.
func NewOptions(input, outputDir, projectName, projectID, user string) *Options {
	return &Options{
		Input:       input,
		OutputDir:   outputDir,
		ProjectName: projectName,
		ProjectID:   projectID,
		User:        user,
		Style:       PlaceholderDoubleCurly,
	}
}

// EffectiveStyle returns the configured style, defaulting to double-curly.
func (o *Options) EffectiveStyle() PlaceholderStyle {
	if o.Style == "" {
		return PlaceholderDoubleCurly
	}
	return o.Style
}
