package paper

import (
	"regexp"
	"strings"
)

// citationStart matches a line that begins a new numbered citation:
// either "[12] ..." or "12. ..." styles.
var citationStart = regexp.MustCompile(`^\s*(\[\d+\]|\d+\.)`)

var blankLineSplit = regexp.MustCompile(`\n\s*\n`)

// splitReferenceEntries segments a bibliography into individual
// citations, one entry per numbered line start. A citation is never
// split across entries and two citations never share one, however long
// a single citation runs. Bibliographies without numbered entries fall
// back to blank-line blocks, then to the whole text.
func splitReferenceEntries(text string) []string {
	var entries []string
	var current []string
	seen := false

	flush := func() {
		if !seen {
			// Anything before the first numbered entry is the section
			// heading or stray page furniture, not a citation.
			current = nil
			return
		}
		var kept []string
		for _, line := range current {
			if strings.TrimSpace(line) != "" {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			entries = append(entries, strings.TrimSpace(strings.Join(kept, "\n")))
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		if citationStart.MatchString(line) {
			flush()
			seen = true
		}
		current = append(current, line)
	}
	flush()

	if len(entries) > 0 {
		return entries
	}

	var blocks []string
	for _, block := range blankLineSplit.Split(text, -1) {
		if b := strings.TrimSpace(block); b != "" {
			blocks = append(blocks, b)
		}
	}
	if len(blocks) > 0 {
		return blocks
	}
	if t := strings.TrimSpace(text); t != "" {
		return []string{t}
	}
	return nil
}
