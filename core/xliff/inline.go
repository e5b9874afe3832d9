package xliff

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Inline code elements understood by the segment builder.
const (
	KindPh = "ph"
	KindPc = "pc"
	KindSc = "sc"
	KindEc = "ec"
	KindCp = "cp"
)

// isInlineKind reports whether local names an inline code element.
func isInlineKind(local string) bool {
	switch local {
	case KindPh, KindPc, KindSc, KindEc, KindCp:
		return true
	}
	return false
}

// autoIDs hands out fallback identifiers for inline codes that arrive
// without one. Each source or target container uses a fresh generator,
// so matching unnamed codes in source and target yield the same token.
type autoIDs struct {
	next int
}

func (a *autoIDs) take(kind string) string {
	a.next++
	return kind + "_auto" + strconv.Itoa(a.next)
}

// decodeCp parses the mandatory hex attribute of a <cp> element.
func decodeCp(hex string) (rune, bool) {
	if hex == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// renderable reports whether a code point can be emitted directly into
// segment text rather than kept as a placeholder. Tab and newline are
// the only control characters let through.
func renderable(r rune) bool {
	if !utf8.ValidRune(r) {
		return false
	}
	if r == '\n' || r == '\t' {
		return true
	}
	return !unicode.IsControl(r)
}
