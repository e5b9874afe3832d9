package jliff

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/internal/logging"
)

// GeneratedArtifact describes where the artifacts for one <file> element
// were written.
type GeneratedArtifact struct {
	FileID     string
	JliffPath  string
	TagMapPath string
}

// ComputePrefix resolves the output filename prefix: the explicit
// override when supplied (blank overrides are a configuration error),
// else the input file's stem, which must be non-empty valid UTF-8.
func ComputePrefix(opts *Options) (string, error) {
	if opts.FilePrefix != "" {
		if strings.TrimSpace(opts.FilePrefix) == "" {
			return "", errors.NewConfig("file-prefix", "cannot be blank when provided")
		}
		return opts.FilePrefix, nil
	}

	base := filepath.Base(opts.Input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || !utf8.ValidString(stem) {
		return "", errors.NewConfig("input", "filename does not yield a usable output prefix")
	}
	return stem, nil
}

// OutputPaths returns the deterministic artifact paths for one <file>:
// <prefix>-file<fileID>.jliff.json and <prefix>-file<fileID>.tags.json.
func OutputPaths(outDir, prefix, fileID string) (jliffPath, tagMapPath string) {
	stem := prefix + "-file" + fileID
	return filepath.Join(outDir, stem+".jliff.json"),
		filepath.Join(outDir, stem+".tags.json")
}

// Validator validates generated JLIFF payloads against a JSON schema.
// A nil Validator performs no validation.
type Validator struct {
	schema *jsonschema.Schema
}

// LoadValidator compiles the schema at path. Schema unavailability or
// invalidity is a soft degrade: the returned Validator is nil, a warning
// is logged, and no error is reported. Only a successfully compiled
// schema can later fail a conversion.
func LoadValidator(path string) *Validator {
	if path == "" {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("schema_unavailable", "path", path, "error", err.Error())
		return nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		logging.Warn("schema_not_json", "path", path, "error", err.Error())
		return nil
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(path, doc); err != nil {
		logging.Warn("schema_rejected", "path", path, "error", err.Error())
		return nil
	}
	schema, err := compiler.Compile(path)
	if err != nil {
		logging.Warn("schema_invalid", "path", path, "error", err.Error())
		return nil
	}

	return &Validator{schema: schema}
}

// Validate checks payload against the schema. destPath names the output
// file the payload was destined for, used in the error report.
func (v *Validator) Validate(payload []byte, destPath string) error {
	if v == nil {
		return nil
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to decode generated payload")
	}

	err = v.schema.Validate(instance)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	schemaErr := &errors.SchemaError{Path: destPath}
	collectIssues(verr, &schemaErr.Issues)
	return schemaErr
}

// collectIssues flattens leaf causes of a validation error into
// pointer+message pairs.
func collectIssues(verr *jsonschema.ValidationError, issues *[]errors.SchemaIssue) {
	if len(verr.Causes) == 0 {
		*issues = append(*issues, errors.SchemaIssue{
			Pointer: "/" + strings.Join(verr.InstanceLocation, "/"),
			Message: verr.Error(),
		})
		return
	}
	for _, cause := range verr.Causes {
		collectIssues(cause, issues)
	}
}

// WriteArtifacts serializes the conversions into opts.OutputDir under the
// given prefix, removing stale artifacts for that prefix first. Files
// without translatable content are skipped. When a validator is supplied,
// every JLIFF payload is validated before anything is written; a
// validation failure aborts the whole call with nothing flushed.
func WriteArtifacts(opts *Options, prefix string, conversions []FileConversion, validator *Validator) ([]GeneratedArtifact, error) {
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.NewIO("create output directory", opts.OutputDir, err)
	}

	type pending struct {
		artifact GeneratedArtifact
		jliff    []byte
		tagMap   []byte
	}

	var out []pending
	for _, conversion := range conversions {
		if !translatable(conversion.Jliff) {
			logging.Debug("skipping file without translatable segments", "file_id", conversion.FileID)
			continue
		}

		jliffPath, tagMapPath := OutputPaths(opts.OutputDir, prefix, conversion.FileID)

		jliffPayload, err := marshalJSON(conversion.Jliff, opts.Pretty)
		if err != nil {
			return nil, errors.Wrap(err, "failed to serialize JLIFF document")
		}
		if err := validator.Validate(jliffPayload, jliffPath); err != nil {
			return nil, err
		}

		tagMapPayload, err := marshalJSON(conversion.TagMap, opts.Pretty)
		if err != nil {
			return nil, errors.Wrap(err, "failed to serialize tag-map document")
		}

		out = append(out, pending{
			artifact: GeneratedArtifact{
				FileID:     conversion.FileID,
				JliffPath:  jliffPath,
				TagMapPath: tagMapPath,
			},
			jliff:  jliffPayload,
			tagMap: tagMapPayload,
		})
	}

	if len(out) == 0 {
		return nil, errors.NewParse("XLIFF", opts.Input, "no translatable <file> elements found")
	}

	if err := cleanupArtifacts(opts.OutputDir, prefix); err != nil {
		return nil, err
	}

	artifacts := make([]GeneratedArtifact, 0, len(out))
	for _, p := range out {
		if err := os.WriteFile(p.artifact.JliffPath, p.jliff, 0644); err != nil {
			return nil, errors.NewIO("write", p.artifact.JliffPath, err)
		}
		if err := os.WriteFile(p.artifact.TagMapPath, p.tagMap, 0644); err != nil {
			return nil, errors.NewIO("write", p.artifact.TagMapPath, err)
		}
		artifacts = append(artifacts, p.artifact)
	}

	if opts.Manifest {
		if _, err := writeManifest(opts, prefix, artifacts); err != nil {
			return nil, err
		}
	}

	return artifacts, nil
}

func translatable(doc Document) bool {
	for _, unit := range doc.TransUnits {
		if strings.TrimSpace(unit.Source) != "" || strings.TrimSpace(unit.TargetTranslation) != "" {
			return true
		}
	}
	return false
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// cleanupArtifacts removes previously generated outputs sharing the
// prefix so a re-conversion never leaves stale file ids behind.
func cleanupArtifacts(dir, prefix string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.NewIO("read", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		perFile := strings.HasPrefix(name, prefix+"-file") &&
			(strings.HasSuffix(name, ".jliff.json") || strings.HasSuffix(name, ".tags.json"))
		// Single-output naming used by earlier releases.
		legacy := name == prefix+".jliff.json" || name == prefix+".tags.json"
		manifest := name == prefix+".manifest.json"
		if !perFile && !legacy && !manifest {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			return errors.NewIO("remove stale artifact", path, err)
		}
	}
	return nil
}
