package paper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
)

func surveyPaper() *Paper {
	return &Paper{
		Source: "survey.pdf",
		Title:  "Sampling-Based Motion Planning: A Survey",
		Pages: []string{
			"Intro\nMotion planning asks for a collision-free path.",
			"Methods\nSampling-based planners build roadmaps or trees.",
			"References\n[1] Kavraki et al. Probabilistic roadmaps. 1996.\n[2] LaValle. RRT. 1998.\n[3] Karaman and Frazzoli. Optimal planning. 2011.",
		},
		TOC: []TOCEntry{
			{Level: 1, Title: "Intro", Page: 1},
			{Level: 1, Title: "Methods", Page: 2},
			{Level: 1, Title: "References", Page: 3},
		},
	}
}

// TestChunk_SurveyWithTOC tests the survey scenario: three TOC
// sections, three citations, no chunk spanning the section boundary
func TestChunk_SurveyWithTOC(t *testing.T) {
	chunks := New().Chunk(surveyPaper())
	require.NotEmpty(t, chunks)

	var refs, intro, methods []domain.Chunk
	for _, c := range chunks {
		switch {
		case c.Reference:
			refs = append(refs, c)
		case c.SectionTitle == "Intro":
			intro = append(intro, c)
		case c.SectionTitle == "Methods":
			methods = append(methods, c)
		}
	}

	require.Len(t, refs, 3, "each citation becomes exactly one chunk")
	assert.Contains(t, refs[0].Text, "[1]")
	assert.Contains(t, refs[1].Text, "[2]")
	assert.Contains(t, refs[2].Text, "[3]")
	for i, r := range refs {
		assert.Equal(t, i, r.ChunkIndex)
		assert.Equal(t, "References", r.SectionTitle)
	}

	require.NotEmpty(t, intro)
	require.NotEmpty(t, methods)
	for _, c := range methods {
		assert.NotContains(t, c.Text, "Kavraki", "no chunk spans the Methods/References boundary")
	}
	for _, c := range chunks {
		assert.Equal(t, domain.KindPaper, c.Kind)
		assert.Equal(t, "Sampling-Based Motion Planning: A Survey", c.PaperTitle)
		assert.Equal(t, "motion_planning", c.Topic)
	}
}

// TestChunk_NoTOC tests the single-section fallback
func TestChunk_NoTOC(t *testing.T) {
	p := &Paper{
		Source: "notoc.pdf",
		Title:  "An Essay",
		Pages:  []string{"page one text", "page two text"},
	}

	chunks := New().Chunk(p)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "An Essay", c.SectionTitle)
		assert.Equal(t, 1, c.SectionLevel)
		assert.Equal(t, 1, c.PageStart)
		assert.Equal(t, 2, c.PageEnd)
		assert.False(t, c.Reference)
	}
}

// TestChunk_ReferenceTailWithoutTOCEntry tests bibliography detection
// inside a section body
func TestChunk_ReferenceTailWithoutTOCEntry(t *testing.T) {
	p := &Paper{
		Source: "tail.pdf",
		Title:  "Planner Notes",
		Pages: []string{
			"Discussion of planners.\n\nReferences\n[1] First citation.\n[2] Second citation.",
		},
	}

	chunks := New().Chunk(p)
	var refs int
	for _, c := range chunks {
		if c.Reference {
			refs++
			assert.Equal(t, "References", c.SectionTitle)
		}
	}
	assert.Equal(t, 2, refs)
}

// TestChunk_OversizedCitationStaysWhole tests that a citation longer
// than the chunk size is never split
func TestChunk_OversizedCitationStaysWhole(t *testing.T) {
	long := "[1] " + strings.Repeat("authors and venues ", 30)
	p := &Paper{
		Source: "big.pdf",
		Title:  "Tiny Survey",
		Pages:  []string{"Body.\n\nReferences\n" + long + "\n[2] Short one."},
	}

	chunks := New(splitter.WithChunkSize(200), splitter.WithOverlap(20)).Chunk(p)

	var refs []domain.Chunk
	for _, c := range chunks {
		if c.Reference {
			refs = append(refs, c)
		}
	}
	require.Len(t, refs, 2)
	assert.Greater(t, len(refs[0].Text), 200, "oversized citation stays in one piece")
	assert.Contains(t, refs[1].Text, "[2]")
}

// TestChunk_MaxLengthNonReference tests the length bound on section
// chunks
func TestChunk_MaxLengthNonReference(t *testing.T) {
	p := &Paper{
		Source: "long.pdf",
		Title:  "Motion Planning Survey",
		Pages:  []string{strings.Repeat("sampling based planning in high dimensions\n", 200)},
	}

	chunks := New(splitter.WithChunkSize(600), splitter.WithOverlap(60)).Chunk(p)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 600, "chunk %d too long", i)
		assert.Equal(t, i, c.ChunkIndex)
	}
	assert.Contains(t, chunks[0].Text, "Paper: Motion Planning Survey")
}

// TestChunk_Deterministic tests that re-chunking yields identical IDs
func TestChunk_Deterministic(t *testing.T) {
	first := New().Chunk(surveyPaper())
	second := New().Chunk(surveyPaper())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

// TestInferTopic tests the title-keyword table
func TestInferTopic(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Sampling-Based Motion Planning: A Survey", "motion_planning"},
		{"A Review of Task and Motion Planning", "task_and_motion_planning"},
		{"TAMP: Integrated Task-and-Motion Approaches", "task_and_motion_planning"},
		{"Asymptotically Optimal Planners", "motion_planning"},
		{"Deep Learning for Robotics", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, InferTopic(tt.title))
		})
	}
}
