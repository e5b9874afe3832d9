package convert

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/core/jliff"
)

const sampleDoc = `<xliff xmlns="urn:oasis:names:tc:xliff:document:2.0" version="2.0" srcLang="en" trgLang="fr">
<file id="f1" original="page.html">
  <unit id="1">
    <originalData><data id="d1">&lt;a href="x"&gt;</data></originalData>
    <segment id="1">
      <source>Visit <ph id="1" dataRef="d1"/> today</source>
      <target>Visitez <ph id="1" dataRef="d1"/> maintenant</target>
    </segment>
  </unit>
</file>
</xliff>`

func writeSample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "page.xlf")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	input := writeSample(t, dir)

	opts := jliff.NewOptions(input, outDir, "Demo", "p-1", "alice")
	result, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if result.Prefix != "page" {
		t.Errorf("Prefix = %q, want page", result.Prefix)
	}
	if len(result.Artifacts) != 1 {
		t.Fatalf("got %d artifacts, want 1", len(result.Artifacts))
	}

	var doc jliff.Document
	raw, err := os.ReadFile(result.Artifacts[0].JliffPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decoding artifact: %v", err)
	}
	if doc.TransUnits[0].Source != "Visit {{ph:1}} today" {
		t.Errorf("Source = %q", doc.TransUnits[0].Source)
	}

	var tagMap jliff.TagMapDoc
	raw, err = os.ReadFile(result.Artifacts[0].TagMapPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(raw, &tagMap); err != nil {
		t.Fatalf("decoding tag map: %v", err)
	}
	instance := tagMap.Units[0].Segments[0].Placeholders[0]
	if instance.OriginalData != `<a href="x">` {
		t.Errorf("OriginalData = %q", instance.OriginalData)
	}
}

func TestRunConfigErrorsComeFirst(t *testing.T) {
	// The input does not exist; the blank prefix must be reported anyway.
	opts := jliff.NewOptions(filepath.Join(t.TempDir(), "absent.xlf"), t.TempDir(), "Demo", "p-1", "alice")
	opts.FilePrefix = " "

	_, err := Run(opts)
	if err == nil {
		t.Fatal("Run() = nil error")
	}
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("error %v, want ErrInvalidConfig before any I/O", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	opts := jliff.NewOptions(filepath.Join(t.TempDir(), "absent.xlf"), t.TempDir(), "Demo", "p-1", "alice")

	_, err := Run(opts)
	if err == nil {
		t.Fatal("Run() = nil error")
	}
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) {
		t.Errorf("error %T, want *errors.IOError", err)
	}
}

func TestRunKeepInline(t *testing.T) {
	dir := t.TempDir()
	input := writeSample(t, dir)

	opts := jliff.NewOptions(input, filepath.Join(dir, "out"), "Demo", "p-1", "alice")
	opts.KeepInlineInSource = true

	result, err := Run(opts)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	var doc jliff.Document
	raw, _ := os.ReadFile(result.Artifacts[0].JliffPath)
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	want := `Visit <ph dataRef="d1" id="1"/> today`
	if doc.TransUnits[0].Source != want {
		t.Errorf("Source = %q, want %q", doc.TransUnits[0].Source, want)
	}
}
