package docx

import (
	"regexp"
	"strings"
	"unicode"
)

// tagRun matches any number of consecutive inline markup tags. Word splits a
// semantic token across formatting runs, so "Company Name" can appear in the
// XML as Company</w:t></w:r><w:r><w:t> Name; tolerating tag runs between the
// token's characters finds it anyway.
const tagRun = `(?:<[^>]*>)*`

// SubstituteOccurrence replaces the Nth occurrence (1-based) of token inside
// an XML part's text with value, leaving everything outside the matched span
// untouched.
//
// Matching is two-phase. The literal pass wins whenever the token appears
// verbatim: if it matches at least once, its result is final even when the
// requested occurrence exceeds the match count (no replacement happens, the
// text comes back unchanged). Only when the literal pass finds nothing does
// the run-agnostic pass look for the token with markup interleaved between
// its characters; the interleaved markup inside the one matched span is
// removed along with the token.
//
// A token absent from the part in both passes is a silent no-op: body-only
// tokens legitimately never appear in header and footer parts.
func SubstituteOccurrence(xml, token, value string, occurrence int) string {
	if token == "" {
		return xml
	}
	if occurrence < 1 {
		occurrence = 1
	}

	literal := regexp.MustCompile(regexp.QuoteMeta(token))
	if matches := literal.FindAllStringIndex(xml, -1); len(matches) > 0 {
		return replaceMatch(xml, matches, occurrence, value)
	}

	split := regexp.MustCompile(splitTokenPattern(token))
	if matches := split.FindAllStringIndex(xml, -1); len(matches) > 0 {
		return replaceMatch(xml, matches, occurrence, value)
	}

	return xml
}

// SubstituteAll replaces every occurrence of token with value, using the
// same two-phase matching rule as SubstituteOccurrence.
func SubstituteAll(xml, token, value string) string {
	if token == "" {
		return xml
	}

	literal := regexp.MustCompile(regexp.QuoteMeta(token))
	if literal.MatchString(xml) {
		return literal.ReplaceAllLiteralString(xml, value)
	}

	split := regexp.MustCompile(splitTokenPattern(token))

	return split.ReplaceAllLiteralString(xml, value)
}

// replaceMatch splices value over the Nth match span. An unreachable
// occurrence leaves the text unchanged.
func replaceMatch(xml string, matches [][]int, occurrence int, value string) string {
	if occurrence > len(matches) {
		return xml
	}

	m := matches[occurrence-1]

	return xml[:m[0]] + value + xml[m[1]:]
}

// splitTokenPattern builds the run-agnostic pattern for a token: each
// character may be followed by inline markup, and each whitespace run matches
// flexibly, also followed by optional markup. No markup is allowed after the
// final character so the match never swallows the tag that closes the
// token's own run.
func splitTokenPattern(token string) string {
	runes := []rune(token)

	var sb strings.Builder

	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			sb.WriteString(`\s+`)
		} else {
			sb.WriteString(regexp.QuoteMeta(string(runes[i])))
			i++
		}

		if i < len(runes) {
			sb.WriteString(tagRun)
		}
	}

	return sb.String()
}
