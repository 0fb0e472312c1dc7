// Package paper extracts retrievable chunks from long-form survey
// documents. Sections come from the document's table of contents when
// one exists; a trailing bibliography is detected by heading pattern
// and re-segmented so each numbered citation becomes one indivisible
// chunk.
package paper

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
)

// DefaultChunkSize is the default chunk size for survey sections.
// Tighter than the reference-documentation default: prose packs more
// meaning per character than API listings.
const DefaultChunkSize = 1800

// DefaultChunkOverlap is the default overlap for survey sections.
const DefaultChunkOverlap = 200

var chunkNamespace = uuid.MustParse("b4c1a7d2-3f6e-4e8a-bb29-51d07c9ae614")

// TOCEntry is one table-of-contents row: a nesting level (1-based),
// the section title and the 1-based page the section starts on.
type TOCEntry struct {
	Level int    `json:"level"`
	Title string `json:"title"`
	Page  int    `json:"page"`
}

// Paper is a parsed long-form document: per-page text plus an optional
// table of contents.
type Paper struct {
	// Source identifies the originating file.
	Source string

	// Title is the paper title, falling back to the file stem.
	Title string

	// Pages holds the text of each page in order.
	Pages []string

	// TOC is the hierarchical table of contents; empty means the whole
	// document is treated as a single section.
	TOC []TOCEntry
}

// Chunker turns papers into chunks.
type Chunker struct {
	split *splitter.Splitter
}

// New creates a paper chunker. Defaults to 1800/200.
func New(opts ...splitter.Option) *Chunker {
	base := []splitter.Option{
		splitter.WithChunkSize(DefaultChunkSize),
		splitter.WithOverlap(DefaultChunkOverlap),
	}
	return &Chunker{split: splitter.New(append(base, opts...)...)}
}

// Chunk converts one paper into chunk records. Sections follow the
// table of contents; a missing TOC collapses the paper into a single
// section spanning all pages, which is intentional, not a failure.
func (c *Chunker) Chunk(p *Paper) []domain.Chunk {
	sections := sectionsFromTOC(p.TOC, len(p.Pages))
	fillSectionTexts(sections, p.Pages)
	sections = dropEmpty(sections)
	if len(sections) == 0 {
		sections = []*section{fallbackSection(p)}
	}
	sections = expandReferenceSections(sections)

	topic := InferTopic(p.Title)

	var chunks []domain.Chunk
	for secIdx, sec := range sections {
		var pieces []string
		reference := isReferenceSection(sec.title)
		if reference {
			pieces = splitReferenceEntries(sec.text)
		} else {
			header := sectionHeader(p.Title, sec)
			pieces = c.split.Split(splitter.Clean(header + "\n\n" + sec.text))
		}

		for chunkIdx, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				ID:           chunkID(p.Source, secIdx, chunkIdx),
				Text:         piece,
				Source:       p.Source,
				Title:        sec.title,
				Kind:         domain.KindPaper,
				PaperTitle:   p.Title,
				SectionTitle: sec.title,
				SectionLevel: sec.level,
				PageStart:    sec.pageStart,
				PageEnd:      sec.pageEnd,
				Topic:        topic,
				Reference:    reference,
				ChunkIndex:   chunkIdx,
			})
		}
	}
	return chunks
}

// sectionHeader renders the metadata preamble prepended to a section's
// text before splitting, so the leading chunk names its origin.
func sectionHeader(paperTitle string, sec *section) string {
	lines := []string{
		"Paper: " + paperTitle,
		"Section: " + sec.title,
		fmt.Sprintf("Level: %d", sec.level),
		fmt.Sprintf("Pages: %d-%d", sec.pageStart, sec.pageEnd),
	}
	return strings.Join(lines, "\n")
}

func chunkID(source string, secIdx, chunkIdx int) string {
	name := fmt.Sprintf("%s\x00%d\x00%d", source, secIdx, chunkIdx)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}
