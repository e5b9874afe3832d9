// Package batch loads multi-conversion job files.
package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/openlocalize/jliffconv/core/convert"
	"github.com/openlocalize/jliffconv/core/jliff"
	"github.com/openlocalize/jliffconv/internal/logging"
)

// File is a YAML job file: shared defaults plus a list of conversions.
type File struct {
	Defaults jliff.Options   `yaml:"defaults"`
	Jobs     []jliff.Options `yaml:"jobs"`
}

// Load reads and decodes a job file. Every job must name an input.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to decode job file %s: %w", path, err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("job file %s declares no jobs", path)
	}
	for i, job := range f.Jobs {
		if job.Input == "" {
			return nil, fmt.Errorf("job %d in %s has no input", i+1, path)
		}
	}
	return &f, nil
}

// Resolved merges the file defaults into each job and returns the
// runnable option sets. Job-level values win over defaults.
func (f *File) Resolved() []*jliff.Options {
	out := make([]*jliff.Options, 0, len(f.Jobs))
	for i := range f.Jobs {
		job := f.Jobs[i]
		fillFromDefaults(&job, &f.Defaults)
		out = append(out, &job)
	}
	return out
}

// RunAll converts the jobs in declaration order and stops at the first
// failure. Artifacts written by earlier jobs stay on disk.
func RunAll(f *File) error {
	for i, opts := range f.Resolved() {
		if _, err := convert.Run(opts); err != nil {
			return fmt.Errorf("job %d (%s): %w", i+1, opts.Input, err)
		}
		logging.Info("job_converted", "input", opts.Input)
	}
	return nil
}

func fillFromDefaults(job, defaults *jliff.Options) {
	if job.OutputDir == "" {
		job.OutputDir = defaults.OutputDir
	}
	if job.ProjectName == "" {
		job.ProjectName = defaults.ProjectName
	}
	if job.ProjectID == "" {
		job.ProjectID = defaults.ProjectID
	}
	if job.User == "" {
		job.User = defaults.User
	}
	if job.SchemaPath == "" {
		job.SchemaPath = defaults.SchemaPath
	}
	if job.Style == "" {
		job.Style = defaults.Style
	}
	if !job.KeepInlineInSource {
		job.KeepInlineInSource = defaults.KeepInlineInSource
	}
	if !job.Pretty {
		job.Pretty = defaults.Pretty
	}
	if !job.Manifest {
		job.Manifest = defaults.Manifest
	}
}
