// Command jliffconv converts XLIFF 2.0 documents into JLIFF translation
// payloads with companion tag maps.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/openlocalize/jliffconv/core/convert"
	"github.com/openlocalize/jliffconv/core/jliff"
	"github.com/openlocalize/jliffconv/core/placeholder"
	"github.com/openlocalize/jliffconv/internal/archive"
	"github.com/openlocalize/jliffconv/internal/batch"
	"github.com/openlocalize/jliffconv/internal/inspect"
	"github.com/openlocalize/jliffconv/internal/logging"
	"github.com/openlocalize/jliffconv/internal/validation"
	"github.com/openlocalize/jliffconv/internal/watch"
)

const version = "0.1.0"

// CLI defines the command-line interface for jliffconv.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" default:"info" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" default:"text" enum:"text,json" help:"Log output format (text, json)"`

	Convert ConvertCmd `cmd:"" help:"Convert an XLIFF 2.0 document to JLIFF artifacts"`
	Batch   BatchCmd   `cmd:"" help:"Run the conversions declared in a YAML job file"`
	Inspect InspectCmd `cmd:"" help:"Summarize the structure of an XLIFF document"`
	Check   CheckCmd   `cmd:"" help:"Verify a generated JLIFF/tag-map artifact pair"`
	Watch   WatchCmd   `cmd:"" help:"Re-convert whenever the input document changes"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// convertFlags are the conversion options shared by convert and watch.
type convertFlags struct {
	OutputDir   string `name:"output-dir" short:"o" default:"." help:"Directory generated artifacts are written to" type:"path"`
	ProjectName string `name:"project-name" help:"Project name stored in the JLIFF payload"`
	ProjectID   string `name:"project-id" help:"Project identifier (random UUID when omitted)"`
	User        string `name:"user" help:"Operator recorded in the JLIFF payload"`
	FilePrefix  string `name:"file-prefix" help:"Output filename prefix (input stem when omitted)"`
	Schema      string `name:"schema" help:"JSON schema to validate generated JLIFF payloads against" type:"path"`
	KeepInline  bool   `name:"keep-inline" help:"Preserve inline markup in source text instead of placeholder tokens"`
	Pretty      bool   `name:"pretty" help:"Pretty-print the JSON output"`
	Manifest    bool   `name:"manifest" help:"Also write a manifest with artifact digests"`
}

func (f *convertFlags) options(input string) (*jliff.Options, error) {
	if err := validation.ValidatePath(input); err != nil {
		return nil, fmt.Errorf("invalid input path: %w", err)
	}
	if f.FilePrefix != "" {
		if err := validation.ValidatePrefix(f.FilePrefix); err != nil {
			return nil, fmt.Errorf("invalid file prefix: %w", err)
		}
	}

	projectID := f.ProjectID
	if projectID == "" {
		projectID = uuid.New().String()
	}

	opts := jliff.NewOptions(input, f.OutputDir, f.ProjectName, projectID, f.User)
	opts.FilePrefix = f.FilePrefix
	opts.SchemaPath = f.Schema
	opts.KeepInlineInSource = f.KeepInline
	opts.Pretty = f.Pretty
	opts.Manifest = f.Manifest
	return opts, nil
}

// ConvertCmd converts one document.
type ConvertCmd struct {
	convertFlags
	Input  string `arg:"" help:"Path to the XLIFF 2.0 document" type:"existingfile"`
	Bundle string `name:"bundle" help:"Pack the generated artifacts into a tar.xz archive at this path" type:"path"`
}

func (c *ConvertCmd) Run() error {
	if err := sniff(c.Input); err != nil {
		return err
	}

	opts, err := c.options(c.Input)
	if err != nil {
		return err
	}

	result, err := convert.Run(opts)
	if err != nil {
		return err
	}

	for _, artifact := range result.Artifacts {
		fmt.Printf("file %s: %s, %s\n", artifact.FileID, artifact.JliffPath, artifact.TagMapPath)
	}

	if c.Bundle != "" {
		paths := make([]string, 0, len(result.Artifacts)*2)
		for _, artifact := range result.Artifacts {
			paths = append(paths, artifact.JliffPath, artifact.TagMapPath)
		}
		if err := archive.BundleTarXz(paths, c.Bundle, result.Prefix); err != nil {
			return err
		}
		fmt.Printf("bundle: %s\n", c.Bundle)
	}
	return nil
}

func sniff(input string) error {
	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := validation.SniffInput(f, input); err != nil {
		return err
	}
	return nil
}

// BatchCmd runs the jobs in a YAML job file in order, stopping at the
// first failure.
type BatchCmd struct {
	JobFile string `arg:"" help:"Path to the YAML job file" type:"existingfile"`
}

func (c *BatchCmd) Run() error {
	file, err := batch.Load(c.JobFile)
	if err != nil {
		return err
	}
	return batch.RunAll(file)
}

// InspectCmd prints a structural summary or runs an XPath query.
type InspectCmd struct {
	Input string `arg:"" help:"Path to the XLIFF document" type:"existingfile"`
	XPath string `name:"xpath" help:"Print nodes matching this XPath expression instead of the summary"`
}

func (c *InspectCmd) Run() error {
	f, err := os.Open(c.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	if c.XPath != "" {
		matches, err := inspect.Query(f, c.XPath)
		if err != nil {
			return err
		}
		for _, match := range matches {
			fmt.Println(match)
		}
		return nil
	}

	report, err := inspect.Inspect(f)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(payload))
	return nil
}

// CheckCmd cross-checks a written artifact pair: every placeholder token
// in the JLIFF source text must line up with the tag map, in order.
type CheckCmd struct {
	Jliff  string `arg:"" help:"Path to the .jliff.json artifact" type:"existingfile"`
	TagMap string `arg:"" help:"Path to the .tags.json artifact" type:"existingfile"`
}

func (c *CheckCmd) Run() error {
	var doc jliff.Document
	if err := readJSON(c.Jliff, &doc); err != nil {
		return err
	}
	var tagMap jliff.TagMapDoc
	if err := readJSON(c.TagMap, &tagMap); err != nil {
		return err
	}

	segments := map[string][]string{}
	for _, unit := range tagMap.Units {
		for _, seg := range unit.Segments {
			key := "u" + unit.UnitID + "-s" + seg.SegmentID
			want := make([]string, 0, len(seg.Placeholders))
			for _, instance := range seg.Placeholders {
				want = append(want, instance.Placeholder)
			}
			segments[key] = want
		}
	}

	checked := 0
	for _, unit := range doc.TransUnits {
		if _, err := placeholder.ParseAll(unit.Source); err != nil {
			return fmt.Errorf("%s: %w", unit.TransUnitID, err)
		}
		want, ok := segments[unit.TransUnitID]
		if !ok {
			return fmt.Errorf("%s: no matching tag-map segment", unit.TransUnitID)
		}
		if err := placeholder.VerifyAlignment(unit.Source, want); err != nil {
			return fmt.Errorf("%s: %w", unit.TransUnitID, err)
		}
		checked++
	}

	fmt.Printf("ok: %d segments aligned\n", checked)
	return nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// WatchCmd keeps converting the input as it changes.
type WatchCmd struct {
	convertFlags
	Input    string        `arg:"" help:"Path to the XLIFF 2.0 document" type:"existingfile"`
	Debounce time.Duration `name:"debounce" default:"500ms" help:"Quiet period before re-converting after a change"`
}

func (c *WatchCmd) Run() error {
	opts, err := c.options(c.Input)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Convert once up front so the artifacts exist before the first change.
	if _, err := convert.Run(opts); err != nil {
		logging.Error("conversion_failed", "input", opts.Input, "error", err.Error())
	}

	err = watch.Run(ctx, c.Input, c.Debounce, func() error {
		_, err := convert.Run(opts)
		return err
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("jliffconv version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("jliffconv"),
		kong.Description("XLIFF 2.0 to JLIFF conversion toolkit"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
