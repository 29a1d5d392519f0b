package docx

import "fmt"

// ComposeDocument applies the resolved substitutions to every rewritable text
// part of the package and serializes the result.
//
// Placeholders without a filled value keep their tokens; a partially filled
// request produces a partially filled document. With an empty value map the
// output archive's parts are all textually identical to the input.
//
// fillAll selects the policy for values whose name carries no occurrence
// suffix: false targets only the first occurrence of the literal, true
// rewrites every occurrence identically. Suffixed names always target their
// one numbered occurrence.
func ComposeDocument(pkg *Package, placeholders []Placeholder, filled map[string]string, fillAll bool) ([]byte, error) {
	subs := Resolve(filled, placeholders)

	for _, name := range pkg.TextParts() {
		text, err := pkg.PartText(name)
		if err != nil {
			// Matched parts listed from the archive always resolve; a miss
			// here means the part vanished, which we treat as skippable.
			continue
		}

		for _, sub := range subs {
			if fillAll && !occurrenceSuffix.MatchString(sub.Name) {
				text = SubstituteAll(text, sub.Original, sub.Value)
			} else {
				text = SubstituteOccurrence(text, sub.Original, sub.Value, sub.Occurrence)
			}
		}

		if err := pkg.SetPartText(name, text); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", name, err)
		}
	}

	out, err := pkg.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialize package: %w", err)
	}

	return out, nil
}
