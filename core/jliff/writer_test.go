package jliff

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openlocalize/jliffconv/core/errors"
)

func TestComputePrefix(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		filePrefix string
		want       string
		wantErr    bool
	}{
		{
			name:  "stem of input",
			input: "corpus/demo.xlf",
			want:  "demo",
		},
		{
			name:  "multi dot keeps earlier parts",
			input: "v2.release.xliff",
			want:  "v2.release",
		},
		{
			name:       "explicit override",
			input:      "corpus/demo.xlf",
			filePrefix: "handoff",
			want:       "handoff",
		},
		{
			name:       "blank override rejected",
			input:      "corpus/demo.xlf",
			filePrefix: "   ",
			wantErr:    true,
		},
		{
			name:    "extension only input",
			input:   ".xlf",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions(tt.input, "out", "p", "id", "u")
			opts.FilePrefix = tt.filePrefix

			got, err := ComputePrefix(opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ComputePrefix() = %q, want error", got)
				}
				if !errors.Is(err, errors.ErrInvalidConfig) {
					t.Errorf("error %v, want ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ComputePrefix() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ComputePrefix() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	jliffPath, tagMapPath := OutputPaths("out", "demo", "f1")
	if jliffPath != filepath.Join("out", "demo-file1.jliff.json") {
		t.Errorf("jliff path = %q", jliffPath)
	}
	if tagMapPath != filepath.Join("out", "demo-file1.tags.json") {
		t.Errorf("tag map path = %q", tagMapPath)
	}
}

func sampleConversion(fileID, source string) FileConversion {
	return FileConversion{
		FileID: fileID,
		Jliff: Document{
			ProjectName:    "Demo",
			ProjectID:      "p-1",
			File:           "doc.html",
			User:           "alice",
			SourceLanguage: "en",
			TargetLanguage: "de",
			TransUnits: []TransUnit{
				{UnitID: "1", TransUnitID: "u1-s1", Source: source},
			},
		},
		TagMap: TagMapDoc{
			FileID:           fileID,
			SourceLanguage:   "en",
			TargetLanguage:   "de",
			PlaceholderStyle: "double-curly",
			Units: []TagMapUnit{
				{UnitID: "1", Segments: []TagMapSegment{{SegmentID: "1"}}},
			},
		},
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	opts := NewOptions("demo.xlf", dir, "Demo", "p-1", "alice")

	conversions := []FileConversion{
		sampleConversion("f1", "Hello"),
		sampleConversion("f2", "   "), // nothing translatable, skipped
	}

	artifacts, err := WriteArtifacts(opts, "demo", conversions, nil)
	if err != nil {
		t.Fatalf("WriteArtifacts() error: %v", err)
	}
	if len(artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(artifacts))
	}

	raw, err := os.ReadFile(artifacts[0].JliffPath)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	// Exact payload field names matter to downstream consumers.
	for _, field := range []string{`"Project_name"`, `"Project_ID"`, `"unit id"`, `"transunit_id"`, `"Target_translation"`} {
		if !strings.Contains(string(raw), field) {
			t.Errorf("payload missing field %s", field)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "demo-file2.jliff.json")); !os.IsNotExist(err) {
		t.Error("untranslatable file should not produce artifacts")
	}

	var tagMap TagMapDoc
	tagRaw, err := os.ReadFile(artifacts[0].TagMapPath)
	if err != nil {
		t.Fatalf("reading tag map: %v", err)
	}
	if err := json.Unmarshal(tagRaw, &tagMap); err != nil {
		t.Fatalf("decoding tag map: %v", err)
	}
	if tagMap.FileID != "f1" {
		t.Errorf("tag map FileID = %q, want f1", tagMap.FileID)
	}
}

func TestWriteArtifactsPretty(t *testing.T) {
	dir := t.TempDir()
	opts := NewOptions("demo.xlf", dir, "Demo", "p-1", "alice")
	opts.Pretty = true

	artifacts, err := WriteArtifacts(opts, "demo", []FileConversion{sampleConversion("f1", "Hi")}, nil)
	if err != nil {
		t.Fatalf("WriteArtifacts() error: %v", err)
	}
	raw, _ := os.ReadFile(artifacts[0].JliffPath)
	if !strings.Contains(string(raw), "\n  ") {
		t.Error("pretty output should be indented")
	}
}

func TestWriteArtifactsCleansStale(t *testing.T) {
	dir := t.TempDir()
	stale := []string{
		"demo-file9.jliff.json",
		"demo-file9.tags.json",
		"demo.jliff.json", // single-output naming from earlier releases
		"demo.tags.json",
	}
	for _, name := range stale {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	keep := filepath.Join(dir, "other-file1.jliff.json")
	if err := os.WriteFile(keep, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := NewOptions("demo.xlf", dir, "Demo", "p-1", "alice")
	if _, err := WriteArtifacts(opts, "demo", []FileConversion{sampleConversion("f1", "Hi")}, nil); err != nil {
		t.Fatalf("WriteArtifacts() error: %v", err)
	}

	for _, name := range stale {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("stale artifact %s survived", name)
		}
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("artifacts of other prefixes must not be touched")
	}
}

func TestWriteArtifactsNothingTranslatable(t *testing.T) {
	dir := t.TempDir()
	opts := NewOptions("demo.xlf", dir, "Demo", "p-1", "alice")

	_, err := WriteArtifacts(opts, "demo", []FileConversion{sampleConversion("f1", " ")}, nil)
	if err == nil {
		t.Fatal("WriteArtifacts() = nil error for untranslatable input")
	}
	if !strings.Contains(err.Error(), "translatable") {
		t.Errorf("error %q should mention translatable content", err.Error())
	}
}

func TestWriteArtifactsManifest(t *testing.T) {
	dir := t.TempDir()
	opts := NewOptions("demo.xlf", dir, "Demo", "p-1", "alice")
	opts.Manifest = true

	artifacts, err := WriteArtifacts(opts, "demo", []FileConversion{sampleConversion("f1", "Hi")}, nil)
	if err != nil {
		t.Fatalf("WriteArtifacts() error: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "demo.manifest.json"))
	if err != nil {
		t.Fatalf("reading manifest: %v", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		t.Fatalf("decoding manifest: %v", err)
	}
	if manifest.Prefix != "demo" {
		t.Errorf("Prefix = %q, want demo", manifest.Prefix)
	}
	if len(manifest.Artifacts) != 2 {
		t.Fatalf("got %d manifest entries, want 2", len(manifest.Artifacts))
	}

	payload, err := os.ReadFile(artifacts[0].JliffPath)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(payload)
	if manifest.Artifacts[0].SHA256 != hex.EncodeToString(sum[:]) {
		t.Error("manifest sha256 does not match artifact content")
	}
	if len(manifest.Artifacts[0].BLAKE3) != 64 {
		t.Errorf("blake3 digest length = %d, want 64", len(manifest.Artifacts[0].BLAKE3))
	}
	if manifest.Artifacts[0].SizeBytes != int64(len(payload)) {
		t.Errorf("SizeBytes = %d, want %d", manifest.Artifacts[0].SizeBytes, len(payload))
	}
}

func TestLoadValidatorSoftSkip(t *testing.T) {
	t.Run("missing schema file", func(t *testing.T) {
		if v := LoadValidator(filepath.Join(t.TempDir(), "absent.json")); v != nil {
			t.Error("missing schema should yield a nil validator")
		}
	})

	t.Run("schema is not json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}
		if v := LoadValidator(path); v != nil {
			t.Error("unreadable schema should yield a nil validator")
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if v := LoadValidator(""); v != nil {
			t.Error("empty path should yield a nil validator")
		}
	})
}

func TestValidatorRejectsPayload(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.json")
	schema := `{
		"type": "object",
		"properties": {
			"Project_name": {"type": "string", "minLength": 1}
		}
	}`
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		t.Fatal(err)
	}

	validator := LoadValidator(schemaPath)
	if validator == nil {
		t.Fatal("valid schema should compile")
	}

	conversion := sampleConversion("f1", "Hi")
	conversion.Jliff.ProjectName = "" // violates minLength

	opts := NewOptions("demo.xlf", dir, "Demo", "p-1", "alice")
	_, err := WriteArtifacts(opts, "demo", []FileConversion{conversion}, validator)
	if err == nil {
		t.Fatal("WriteArtifacts() = nil error for schema violation")
	}
	var schemaErr *errors.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("error %T, want *errors.SchemaError", err)
	}
	if len(schemaErr.Issues) == 0 {
		t.Error("schema error carries no issues")
	}

	// Nothing may be flushed when validation fails.
	if _, statErr := os.Stat(filepath.Join(dir, "demo-file1.jliff.json")); !os.IsNotExist(statErr) {
		t.Error("artifact written despite validation failure")
	}
}
