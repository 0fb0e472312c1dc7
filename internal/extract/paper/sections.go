package paper

import (
	"regexp"
	"strings"

	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
)

// referenceHeading matches a standalone bibliography heading line.
var referenceHeading = regexp.MustCompile(`(?im)^\s*(references|literature\s+cited|bibliography)\s*$`)

// section is one page-ranged region of a paper. Page numbers are
// 1-based and inclusive.
type section struct {
	title     string
	level     int
	pageStart int
	pageEnd   int
	text      string
}

// sectionsFromTOC derives ordered page-ranged sections from a table of
// contents. A section runs until the first later entry that starts on
// a later page; entries producing an empty range are dropped.
func sectionsFromTOC(toc []TOCEntry, totalPages int) []*section {
	var sections []*section
	for idx, entry := range toc {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "Untitled"
		}
		startPage := entry.Page
		if startPage < 1 {
			startPage = 1
		}
		startIdx := startPage - 1
		if startIdx > totalPages {
			startIdx = totalPages
		}

		endIdx := totalPages
		for _, next := range toc[idx+1:] {
			nextPage := next.Page
			if nextPage < 1 {
				nextPage = 1
			}
			if nextPage-1 > startIdx {
				endIdx = nextPage - 1
				break
			}
		}
		if endIdx <= startIdx {
			continue
		}

		sections = append(sections, &section{
			title:     title,
			level:     entry.Level,
			pageStart: startPage,
			pageEnd:   endIdx,
		})
	}
	return sections
}

// fillSectionTexts populates each section with the cleaned text of its
// page range.
func fillSectionTexts(sections []*section, pages []string) {
	total := len(pages)
	for _, sec := range sections {
		start := sec.pageStart - 1
		if start > total {
			start = total
		}
		end := sec.pageEnd
		if end > total {
			end = total
		}
		if start < 0 || start >= end {
			continue
		}
		sec.text = splitter.Clean(strings.Join(pages[start:end], "\n\n"))
	}
}

func dropEmpty(sections []*section) []*section {
	kept := sections[:0]
	for _, sec := range sections {
		if sec.text != "" {
			kept = append(kept, sec)
		}
	}
	return kept
}

// fallbackSection treats the whole paper as one section.
func fallbackSection(p *Paper) *section {
	return &section{
		title:     p.Title,
		level:     1,
		pageStart: 1,
		pageEnd:   len(p.Pages),
		text:      splitter.Clean(strings.Join(p.Pages, "\n\n")),
	}
}

// isReferenceSection reports whether a section title names a
// bibliography.
func isReferenceSection(title string) bool {
	lower := strings.ToLower(title)
	return strings.Contains(lower, "reference") ||
		strings.Contains(lower, "bibliograph") ||
		strings.Contains(lower, "literature cited")
}

// extractReferenceTail scans text for the last standalone bibliography
// heading and splits around it. Returns ok=false when no heading is
// found or nothing follows it.
func extractReferenceTail(text string) (body, heading, tail string, ok bool) {
	matches := referenceHeading.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return "", "", "", false
	}
	last := matches[len(matches)-1]

	tail = strings.TrimSpace(text[last[1]:])
	if tail == "" {
		return "", "", "", false
	}
	body = strings.TrimRight(text[:last[0]], " \t\n")
	heading = strings.TrimSpace(text[last[0]:last[1]])
	if heading == "" {
		heading = "References"
	}
	return body, heading, tail, true
}

// expandReferenceSections splits any section whose text contains a
// trailing bibliography into a body section plus a reference section,
// so no emitted chunk can span the boundary. Sections already titled
// as references pass through unchanged.
func expandReferenceSections(sections []*section) []*section {
	var expanded []*section
	for _, sec := range sections {
		if isReferenceSection(sec.title) {
			expanded = append(expanded, sec)
			continue
		}
		body, heading, tail, ok := extractReferenceTail(sec.text)
		if !ok {
			expanded = append(expanded, sec)
			continue
		}
		if strings.TrimSpace(body) != "" {
			expanded = append(expanded, &section{
				title:     sec.title,
				level:     sec.level,
				pageStart: sec.pageStart,
				pageEnd:   sec.pageEnd,
				text:      strings.TrimSpace(body),
			})
		}
		level := sec.level + 1
		if level < 1 {
			level = 1
		}
		expanded = append(expanded, &section{
			title:     heading,
			level:     level,
			pageStart: sec.pageEnd,
			pageEnd:   sec.pageEnd,
			text:      tail,
		})
	}
	return expanded
}
