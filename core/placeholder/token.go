// Package placeholder parses and verifies the inline-code tokens
// embedded in converted segment text.
package placeholder

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/openlocalize/jliffconv/core/errors"
)

// Token is one parsed placeholder, e.g. {{ph:ph1}}.
type Token struct {
	// Elem is the inline element kind (ph, pc, sc, ec, cp).
	Elem string `json:"elem"`

	// ID is the identifier the token carries.
	ID string `json:"id"`

	// Raw is the literal token text as it appeared in the segment.
	Raw string `json:"raw"`
}

// tokenGrammar matches the double-curly token shape {{elem:id}}.
//
//nolint:govet // participle grammar tags are not standard struct tags
type tokenGrammar struct {
	Elem string `"{{" @Part`
	ID   string `":" @Part "}}"`
}

var tokenLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Open", Pattern: `\{\{`},
	{Name: "Close", Pattern: `\}\}`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Part", Pattern: `[^:{}]+`},
})

var tokenParser = participle.MustBuild[tokenGrammar](
	participle.Lexer(tokenLexer),
)

// Parse parses a single token string.
func Parse(s string) (*Token, error) {
	parsed, err := tokenParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid placeholder token %q", s)
	}
	return &Token{Elem: parsed.Elem, ID: parsed.ID, Raw: s}, nil
}

// Extract returns every {{...}} span of text in order of appearance.
// Malformed spans (an opener with no closer) terminate the scan.
func Extract(text string) []string {
	var spans []string
	for {
		open := strings.Index(text, "{{")
		if open < 0 {
			return spans
		}
		rest := text[open+2:]
		end := strings.Index(rest, "}}")
		if end < 0 {
			return spans
		}
		spans = append(spans, text[open:open+2+end+2])
		text = rest[end+2:]
	}
}

// ParseAll extracts and parses every token in text, reporting the first
// malformed one.
func ParseAll(text string) ([]*Token, error) {
	spans := Extract(text)
	tokens := make([]*Token, 0, len(spans))
	for _, span := range spans {
		token, err := Parse(span)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// VerifyAlignment checks that the tokens embedded in text match want
// exactly, in order. Entries of want that are not brace tokens (literal
// characters restored from code points) are ignored.
func VerifyAlignment(text string, want []string) error {
	got := Extract(text)

	var expected []string
	for _, w := range want {
		if strings.HasPrefix(w, "{{") && strings.HasSuffix(w, "}}") {
			expected = append(expected, w)
		}
	}

	if len(got) != len(expected) {
		return errors.NewValidation("placeholders",
			fmt.Sprintf("segment text has %d tokens, tag map records %d", len(got), len(expected)))
	}
	for i := range got {
		if got[i] != expected[i] {
			return errors.NewValidation("placeholders",
				fmt.Sprintf("token %d is %s, tag map records %s", i, got[i], expected[i]))
		}
	}
	return nil
}
