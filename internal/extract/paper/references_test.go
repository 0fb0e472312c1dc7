package paper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSplitReferenceEntries_Bracketed tests [n] style citations
func TestSplitReferenceEntries_Bracketed(t *testing.T) {
	text := "References\n[1] Kavraki et al. 1996.\ncontinued line\n[2] LaValle 1998.\n[3] Karaman 2011."

	entries := splitReferenceEntries(text)
	require.Len(t, entries, 3)
	assert.Equal(t, "[1] Kavraki et al. 1996.\ncontinued line", entries[0])
	assert.Equal(t, "[2] LaValle 1998.", entries[1])
	assert.Equal(t, "[3] Karaman 2011.", entries[2])
}

// TestSplitReferenceEntries_Numbered tests "n." style citations
func TestSplitReferenceEntries_Numbered(t *testing.T) {
	text := "1. First entry.\n2. Second entry.\n10. Tenth entry."

	entries := splitReferenceEntries(text)
	require.Len(t, entries, 3)
	assert.Equal(t, "10. Tenth entry.", entries[2])
}

// TestSplitReferenceEntries_HeadingDropped tests that the section
// heading never becomes an entry
func TestSplitReferenceEntries_HeadingDropped(t *testing.T) {
	entries := splitReferenceEntries("Bibliography\n\n[1] Only entry.")
	require.Len(t, entries, 1)
	assert.Equal(t, "[1] Only entry.", entries[0])
}

// TestSplitReferenceEntries_FallbackBlocks tests unnumbered
// bibliographies falling back to blank-line blocks
func TestSplitReferenceEntries_FallbackBlocks(t *testing.T) {
	text := "Kavraki, L. Probabilistic roadmaps.\n\nLaValle, S. Rapidly-exploring trees."

	entries := splitReferenceEntries(text)
	require.Len(t, entries, 2)
	assert.Contains(t, entries[0], "Kavraki")
	assert.Contains(t, entries[1], "LaValle")
}

// TestSplitReferenceEntries_Empty tests empty input
func TestSplitReferenceEntries_Empty(t *testing.T) {
	assert.Nil(t, splitReferenceEntries(""))
	assert.Nil(t, splitReferenceEntries("  \n \n"))
}

// TestExtractReferenceTail tests splitting a section body around the
// last bibliography heading
func TestExtractReferenceTail(t *testing.T) {
	text := "Body text.\nReferences mentioned inline do not count.\nReferences\n[1] Entry."

	body, heading, tail, ok := extractReferenceTail(text)
	require.True(t, ok)
	assert.Equal(t, "References", heading)
	assert.Contains(t, body, "Body text.")
	assert.Contains(t, body, "inline do not count")
	assert.Equal(t, "[1] Entry.", tail)
}

// TestExtractReferenceTail_Variants tests the accepted heading forms
func TestExtractReferenceTail_Variants(t *testing.T) {
	for _, heading := range []string{"References", "REFERENCES", "Bibliography", "Literature Cited", "  references  "} {
		_, got, tail, ok := extractReferenceTail("body\n" + heading + "\n[1] x.")
		require.True(t, ok, "heading %q not detected", heading)
		assert.NotEmpty(t, got)
		assert.Equal(t, "[1] x.", tail)
	}
}

// TestExtractReferenceTail_NoHeading tests the no-bibliography case
func TestExtractReferenceTail_NoHeading(t *testing.T) {
	_, _, _, ok := extractReferenceTail("just body text with references to things")
	assert.False(t, ok)
}

// TestExtractReferenceTail_EmptyTail tests a heading with nothing
// after it
func TestExtractReferenceTail_EmptyTail(t *testing.T) {
	_, _, _, ok := extractReferenceTail("body\nReferences\n   ")
	assert.False(t, ok)
}

// TestSectionsFromTOC tests page range derivation
func TestSectionsFromTOC(t *testing.T) {
	toc := []TOCEntry{
		{Level: 1, Title: "Intro", Page: 1},
		{Level: 2, Title: "Scope", Page: 1},
		{Level: 1, Title: "Methods", Page: 3},
		{Level: 1, Title: "References", Page: 8},
	}

	sections := sectionsFromTOC(toc, 10)
	require.Len(t, sections, 4)

	assert.Equal(t, "Intro", sections[0].title)
	assert.Equal(t, 1, sections[0].pageStart)
	assert.Equal(t, 2, sections[0].pageEnd)

	assert.Equal(t, "Scope", sections[1].title)
	assert.Equal(t, 2, sections[1].pageEnd)

	assert.Equal(t, "Methods", sections[2].title)
	assert.Equal(t, 3, sections[2].pageStart)
	assert.Equal(t, 7, sections[2].pageEnd)

	assert.Equal(t, "References", sections[3].title)
	assert.Equal(t, 8, sections[3].pageStart)
	assert.Equal(t, 10, sections[3].pageEnd)
}

// TestSectionsFromTOC_Empty tests that no TOC yields no sections
func TestSectionsFromTOC_Empty(t *testing.T) {
	assert.Empty(t, sectionsFromTOC(nil, 5))
}

// TestIsReferenceSection tests bibliography title detection
func TestIsReferenceSection(t *testing.T) {
	assert.True(t, isReferenceSection("References"))
	assert.True(t, isReferenceSection("Annotated Bibliography"))
	assert.True(t, isReferenceSection("Literature Cited"))
	assert.False(t, isReferenceSection("Methods"))
}
