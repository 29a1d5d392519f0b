package docx

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CandidateSource produces placeholder candidates from flattened document
// text. Implementations must not fall back internally: a source that cannot
// produce a well-formed candidate list returns an error and lets the caller
// choose the fallback policy.
type CandidateSource interface {
	Scan(ctx context.Context, text string) ([]Placeholder, error)
}

// Candidate token patterns: brace-delimited and bracket-delimited spans with
// no nesting, closed by the nearest matching delimiter.
var (
	bracePattern   = regexp.MustCompile(`\{[^{}]+\}`)
	bracketPattern = regexp.MustCompile(`\[[^\[\]]+\]`)

	nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// RegexScanner is the deterministic candidate source. It collects bracketed
// and braced tokens, collapsing repeated literals into a single candidate.
// It never assigns occurrence suffixes; disambiguating repeated labels is the
// oracle scanner's job.
type RegexScanner struct{}

// NewRegexScanner creates a deterministic regex-based candidate source.
func NewRegexScanner() *RegexScanner {
	return &RegexScanner{}
}

// Scan finds candidate tokens in the flattened text. It always succeeds; an
// empty document simply yields no candidates.
func (s *RegexScanner) Scan(_ context.Context, text string) ([]Placeholder, error) {
	tokens := bracePattern.FindAllString(text, -1)
	tokens = append(tokens, bracketPattern.FindAllString(text, -1)...)

	seen := make(map[string]bool, len(tokens))
	var placeholders []Placeholder

	for _, token := range tokens {
		if seen[token] {
			continue
		}
		seen[token] = true

		inner := strings.TrimSpace(token[1 : len(token)-1])
		placeholders = append(placeholders, Placeholder{
			ID:          strconv.Itoa(len(placeholders) + 1),
			Name:        NormalizeName(inner),
			Original:    token,
			Description: fmt.Sprintf("Fill in the %s field", inner),
			Position:    strings.Index(text, token),
		})
	}

	return placeholders, nil
}

// NormalizeName derives a placeholder name from label text: lowercase, every
// run of non-alphanumeric characters collapsed to one underscore, leading and
// trailing underscores stripped.
func NormalizeName(label string) string {
	name := strings.ToLower(strings.TrimSpace(label))
	name = nonAlnumRun.ReplaceAllString(name, "_")

	return strings.Trim(name, "_")
}
