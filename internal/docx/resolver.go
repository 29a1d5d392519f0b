package docx

import (
	"regexp"
	"sort"
	"strconv"
)

// occurrenceSuffix matches the trailing _N that the oracle path appends to
// repeated labels (by_1, by_2).
var occurrenceSuffix = regexp.MustCompile(`_(\d+)$`)

// Resolve binds filled values to the placeholders they target. Entries whose
// name matches no known placeholder are dropped. The result is sorted by
// document position, highest first: when several placeholders share a literal
// inside one text buffer, replacing the rightmost ones first keeps earlier
// offsets valid even though replacement values change the buffer's length.
// Positions can tie (the oracle may report the same offset for every copy of
// a repeated label), so ties are broken by occurrence, highest first. For a
// shared literal that is the only safe order: replacing occurrence 1 first
// would leave higher occurrences pointing past the end of the match list.
func Resolve(filled map[string]string, placeholders []Placeholder) []Substitution {
	byName := make(map[string]Placeholder, len(placeholders))
	for _, p := range placeholders {
		byName[p.Name] = p
	}

	subs := make([]Substitution, 0, len(filled))

	for name, value := range filled {
		p, ok := byName[name]
		if !ok {
			continue
		}

		subs = append(subs, Substitution{
			Name:       name,
			Value:      value,
			Original:   p.Original,
			Occurrence: occurrenceOf(name),
			Position:   p.Position,
		})
	}

	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Position != subs[j].Position {
			return subs[i].Position > subs[j].Position
		}
		if subs[i].Occurrence != subs[j].Occurrence {
			return subs[i].Occurrence > subs[j].Occurrence
		}

		return subs[i].Name < subs[j].Name
	})

	return subs
}

// occurrenceOf extracts the 1-based occurrence index from a name's _N suffix.
// Names without a suffix target the first occurrence.
func occurrenceOf(name string) int {
	m := occurrenceSuffix.FindStringSubmatch(name)
	if m == nil {
		return 1
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 1
	}

	return n
}
