// Package convert runs the full XLIFF-to-JLIFF pipeline: parse,
// placeholder verification, serialization, manifest.
package convert

import (
	"time"

	"github.com/openlocalize/jliffconv/core/errors"
	"github.com/openlocalize/jliffconv/core/jliff"
	"github.com/openlocalize/jliffconv/core/placeholder"
	"github.com/openlocalize/jliffconv/core/xliff"
	"github.com/openlocalize/jliffconv/internal/logging"
)

// Result reports one completed conversion run.
type Result struct {
	Prefix    string
	Artifacts []jliff.GeneratedArtifact
}

// Run converts opts.Input and writes the artifacts into opts.OutputDir.
// Configuration problems surface before the input is opened.
func Run(opts *jliff.Options) (*Result, error) {
	started := time.Now()

	prefix, err := jliff.ComputePrefix(opts)
	if err != nil {
		return nil, err
	}

	logging.ConversionStarted(opts.Input, opts.OutputDir, "prefix", prefix)

	conversions, err := xliff.Convert(opts)
	if err != nil {
		return nil, err
	}

	if !opts.KeepInlineInSource {
		if err := verify(conversions); err != nil {
			return nil, err
		}
	}

	validator := jliff.LoadValidator(opts.SchemaPath)
	artifacts, err := jliff.WriteArtifacts(opts, prefix, conversions, validator)
	if err != nil {
		return nil, err
	}

	for _, artifact := range artifacts {
		logging.ArtifactWritten(artifact.FileID, artifact.JliffPath, artifact.TagMapPath)
	}
	logging.ConversionFinished(opts.Input, len(artifacts), time.Since(started))

	return &Result{Prefix: prefix, Artifacts: artifacts}, nil
}

// verify cross-checks every segment's source text against its recorded
// tag instances.
func verify(conversions []jliff.FileConversion) error {
	for _, conversion := range conversions {
		bySegment := indexSegments(conversion.TagMap)
		for _, unit := range conversion.Jliff.TransUnits {
			segments, ok := bySegment[unit.UnitID]
			if !ok {
				continue
			}
			seg, ok := segments[unit.TransUnitID]
			if !ok {
				continue
			}
			want := make([]string, 0, len(seg.Placeholders))
			for _, instance := range seg.Placeholders {
				want = append(want, instance.Placeholder)
			}
			if err := placeholder.VerifyAlignment(unit.Source, want); err != nil {
				return errors.Wrapf(err, "file %s %s", conversion.FileID, unit.TransUnitID)
			}
		}
	}
	return nil
}

// indexSegments maps unit id to transunit id to tag-map segment.
func indexSegments(tagMap jliff.TagMapDoc) map[string]map[string]jliff.TagMapSegment {
	out := make(map[string]map[string]jliff.TagMapSegment, len(tagMap.Units))
	for _, unit := range tagMap.Units {
		segments := make(map[string]jliff.TagMapSegment, len(unit.Segments))
		for _, seg := range unit.Segments {
			segments["u"+unit.UnitID+"-s"+seg.SegmentID] = seg
		}
		out[unit.UnitID] = segments
	}
	return out
}
