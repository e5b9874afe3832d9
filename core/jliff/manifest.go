package jliff

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/openlocalize/jliffconv/core/errors"
)

// Manifest records every artifact written for one conversion run,
// with content digests so downstream tooling can verify transfers.
type Manifest struct {
	Prefix    string          `json:"prefix"`
	Artifacts []ManifestEntry `json:"artifacts"`
}

// ManifestEntry describes one written artifact.
type ManifestEntry struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
	BLAKE3    string `json:"blake3"`
}

// writeManifest digests every artifact and writes
// <prefix>.manifest.json next to them.
func writeManifest(opts *Options, prefix string, artifacts []GeneratedArtifact) (string, error) {
	manifest := Manifest{Prefix: prefix}

	for _, artifact := range artifacts {
		for _, path := range []string{artifact.JliffPath, artifact.TagMapPath} {
			entry, err := digestFile(path)
			if err != nil {
				return "", err
			}
			manifest.Artifacts = append(manifest.Artifacts, entry)
		}
	}

	payload, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize manifest")
	}

	path := filepath.Join(opts.OutputDir, prefix+".manifest.json")
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", errors.NewIO("write", path, err)
	}
	return path, nil
}

func digestFile(path string) (ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ManifestEntry{}, errors.NewIO("read", path, err)
	}

	sum256 := sha256.Sum256(data)
	sumB3 := blake3.Sum256(data)

	return ManifestEntry{
		Path:      filepath.Base(path),
		SizeBytes: int64(len(data)),
		SHA256:    hex.EncodeToString(sum256[:]),
		BLAKE3:    hex.EncodeToString(sumB3[:]),
	}, nil
}
