package docx

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/docufill/docx-fill/internal/oracle"
)

// Completer is the slice of the oracle client the scanner needs.
type Completer interface {
	Complete(ctx context.Context, messages []oracle.Message, temperature float64) (string, error)
}

// DetectionError reports that the oracle produced output that cannot be used
// as a candidate list. The orchestrator decides whether to fall back to the
// regex scanner; the scanner itself never swallows the failure.
type DetectionError struct {
	Reason string
	Err    error
}

func (e *DetectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("placeholder detection: %s: %v", e.Reason, e.Err)
	}

	return "placeholder detection: " + e.Reason
}

func (e *DetectionError) Unwrap() error { return e.Err }

// maxOracleTextLen caps how much flattened text is sent to the oracle.
// Legal documents front-load their fillable fields, so a prefix is enough.
const maxOracleTextLen = 8000

const detectionSystemPrompt = `You are a legal document analyzer. Identify every fillable placeholder in the document text: bracketed or braced tokens like [Company Name] or {date}, and bare labels awaiting a value such as "Name:" or "By:".
When the same label occurs more than once, emit one entry per occurrence and number the names with suffixes (_1, _2, ...) in document order, with descriptions that tell the occurrences apart (e.g. "First signature line", "Second signature line").
Return ONLY a valid JSON array with this exact structure, no additional text:
[{"id": "1", "name": "normalized_key", "original": "the text exactly as it appears", "description": "what information is needed", "position": 0}]`

// OracleScanner delegates candidate discovery to the external oracle. The
// regex candidates are passed along as hints but the oracle owns the final
// list, which lets it surface bare labels and number repeated ones.
type OracleScanner struct {
	completer Completer
	hints     *RegexScanner
}

// NewOracleScanner creates an oracle-backed candidate source.
func NewOracleScanner(completer Completer) *OracleScanner {
	return &OracleScanner{
		completer: completer,
		hints:     NewRegexScanner(),
	}
}

// Scan asks the oracle for the full candidate list. Transport failures and
// malformed output are returned as *DetectionError for the caller to handle.
func (s *OracleScanner) Scan(ctx context.Context, text string) ([]Placeholder, error) {
	hints, _ := s.hints.Scan(ctx, text)

	excerpt := text
	if len(excerpt) > maxOracleTextLen {
		excerpt = excerpt[:maxOracleTextLen]
	}

	hintJSON, err := json.Marshal(hints)
	if err != nil {
		return nil, &DetectionError{Reason: "encode candidate hints", Err: err}
	}

	user := fmt.Sprintf("Find all placeholders in this document.\n\nDocument text:\n%s\n\nPattern-matched candidates (may be incomplete):\n%s", excerpt, hintJSON)

	completion, err := s.completer.Complete(ctx, []oracle.Message{
		{Role: "system", Content: detectionSystemPrompt},
		{Role: "user", Content: user},
	}, 0)
	if err != nil {
		return nil, &DetectionError{Reason: "oracle call failed", Err: err}
	}

	placeholders, derr := parseDetection(completion, text)
	if derr != nil {
		return nil, derr
	}

	return placeholders, nil
}

// parseDetection validates an oracle completion as a candidate list.
func parseDetection(completion, text string) ([]Placeholder, *DetectionError) {
	var placeholders []Placeholder
	if err := json.Unmarshal([]byte(strings.TrimSpace(completion)), &placeholders); err != nil {
		return nil, &DetectionError{Reason: "response is not a JSON array", Err: err}
	}

	// Oracles routinely echo the prompt's example position of 0, so a zero
	// position is treated as missing and backfilled by searching the text.
	// Repeats of the same literal advance to the next occurrence; giving
	// every copy the first occurrence's offset would collapse them into one
	// target.
	backfilled := make(map[string]int)

	for i := range placeholders {
		p := &placeholders[i]
		if p.Original == "" {
			return nil, &DetectionError{Reason: fmt.Sprintf("entry %d has no original text", i)}
		}

		if p.Name == "" {
			p.Name = NormalizeName(strings.Trim(p.Original, "{}[]"))
		}
		if p.ID == "" {
			p.ID = strconv.Itoa(i + 1)
		}
		if p.Position == 0 {
			backfilled[p.Original]++
			p.Position = nthIndex(text, p.Original, backfilled[p.Original])
		}
	}

	dedupeNames(placeholders)

	return placeholders, nil
}

// nthIndex returns the byte offset of the nth occurrence (1-based) of literal
// in text. When fewer than n occurrences exist it returns the last one found,
// or -1 when the literal does not appear at all.
func nthIndex(text, literal string, n int) int {
	pos := -1
	off := 0
	for i := 0; i < n; i++ {
		idx := strings.Index(text[off:], literal)
		if idx < 0 {
			break
		}

		pos = off + idx
		off = pos + len(literal)
	}

	return pos
}

// dedupeNames enforces the name-uniqueness invariant: if the oracle repeated
// a name without suffixing, the repeats are numbered in list order.
func dedupeNames(placeholders []Placeholder) {
	counts := make(map[string]int, len(placeholders))
	for _, p := range placeholders {
		counts[p.Name]++
	}

	next := make(map[string]int, len(counts))
	for i := range placeholders {
		name := placeholders[i].Name
		if counts[name] < 2 {
			continue
		}

		next[name]++
		placeholders[i].Name = fmt.Sprintf("%s_%d", name, next[name])
	}
}
