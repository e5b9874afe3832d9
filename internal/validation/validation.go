// Package validation checks user-supplied paths and input files before
// the converter touches them.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
)

// Common validation errors.
var (
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrPathTooLong      = errors.New("path too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrInvalidFilename  = errors.New("invalid filename")
	ErrFilenameTooLong  = errors.New("filename too long")
)

// ValidatePath checks a path for length limits and characters that have
// no business in a filename.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidCharacter)
	}
	for _, r := range path {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidCharacter)
		}
	}
	return nil
}

// ValidatePrefix checks a user-supplied output filename prefix.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return ErrInvalidFilename
	}
	if len(prefix) > MaxFilenameLength {
		return ErrFilenameTooLong
	}
	if strings.ContainsAny(prefix, "/\\") {
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidFilename)
	}
	if strings.Contains(prefix, "\x00") {
		return fmt.Errorf("%w: null byte not allowed", ErrInvalidFilename)
	}
	for _, r := range prefix {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidFilename)
		}
	}
	if strings.HasPrefix(prefix, "-") {
		return fmt.Errorf("%w: cannot start with hyphen", ErrInvalidFilename)
	}
	return nil
}

// FileType represents a detected or expected file type.
type FileType string

const (
	FileTypeXML     FileType = "xml"
	FileTypeJSON    FileType = "json"
	FileTypeYAML    FileType = "yaml"
	FileTypeXZ      FileType = "xz"
	FileTypeUnknown FileType = "unknown"
)

var xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

// SniffInput reads the head of an input stream and reports whether it
// plausibly matches the type its filename claims. XML, JSON, and YAML
// inputs must look like text; compressed bundles must carry the xz
// signature.
func SniffInput(reader io.Reader, filename string) (FileType, error) {
	buf := make([]byte, 512)
	n, err := io.ReadFull(reader, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FileTypeUnknown, fmt.Errorf("failed to read file header: %w", err)
	}
	buf = buf[:n]

	expected := typeFromExtension(filename)
	switch expected {
	case FileTypeXZ:
		if !bytes.HasPrefix(buf, xzMagic) {
			return FileTypeUnknown, fmt.Errorf("%s does not carry an xz signature", filename)
		}
		return FileTypeXZ, nil
	case FileTypeXML, FileTypeJSON, FileTypeYAML:
		if !isLikelyText(buf) {
			return FileTypeUnknown, fmt.Errorf("%s does not look like a text document", filename)
		}
		return expected, nil
	default:
		return FileTypeUnknown, nil
	}
}

func typeFromExtension(filename string) FileType {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".tar.xz") {
		return FileTypeXZ
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xml", ".xlf", ".xliff":
		return FileTypeXML
	case ".json", ".jliff":
		return FileTypeJSON
	case ".yaml", ".yml":
		return FileTypeYAML
	case ".xz":
		return FileTypeXZ
	default:
		return FileTypeUnknown
	}
}

// isLikelyText checks if the buffer contains likely text content.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 {
		return false
	}
	if bytes.IndexByte(buf, 0) != -1 {
		return false
	}

	printable := 0
	control := 0
	for _, b := range buf {
		if b >= 0x20 && b <= 0x7e || b == '\t' || b == '\n' || b == '\r' {
			printable++
		} else if b < 0x20 {
			control++
		}
		// UTF-8 multi-byte sequences are neutral
	}
	return printable > 0 && float64(printable)/float64(printable+control) > 0.95
}
