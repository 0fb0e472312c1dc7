// Package splitter provides fixed-size text splitting with overlap,
// shared by the document extractors.
package splitter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 2000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// minBreakOffset is how far into a chunk a newline must sit before it
// is preferred as the break point. Breaking earlier than this would
// produce degenerate slivers.
const minBreakOffset = 200

var (
	multiBlank  = regexp.MustCompile(`\n{3,}`)
	trailingWS  = regexp.MustCompile(`[ \t]+\n`)
	runOfSpaces = regexp.MustCompile(`[ \t]{2,}`)
)

// Clean normalises extracted text: CRLF to LF, runs of spaces
// collapsed, trailing whitespace stripped, at most one blank line
// between paragraphs.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, " ", " ")
	text = runOfSpaces.ReplaceAllString(text, " ")
	text = trailingWS.ReplaceAllString(text, "\n")
	text = multiBlank.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Splitter cuts text into length-bounded pieces, preferring to break
// at a newline when one falls late enough in the window.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// ChunkSize returns the configured chunk size.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the configured overlap.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split cuts text into pieces of at most chunkSize characters.
// When the window does not end the text, the cut prefers the last
// newline past minBreakOffset so pieces end on line boundaries.
// Consecutive pieces share up to overlap characters. Pieces that are
// empty after trimming are dropped.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	textLen := len(text)
	if textLen <= s.chunkSize {
		return []string{strings.TrimSpace(text)}
	}

	estimated := (textLen / (s.chunkSize - s.overlap)) + 1
	pieces := make([]string, 0, estimated)

	start := 0
	for start < textLen {
		end := start + s.chunkSize
		if end >= textLen {
			end = textLen
		} else if idx := strings.LastIndexByte(text[start:end], '\n'); idx > minBreakOffset {
			end = start + idx
		} else {
			// The window is byte-indexed; back the cut up so it never
			// lands inside a multi-byte UTF-8 sequence.
			end = runeFloor(text, end)
			if end <= start {
				_, n := utf8.DecodeRuneInString(text[start:])
				end = start + n
			}
		}

		piece := strings.TrimSpace(text[start:end])
		if piece != "" {
			pieces = append(pieces, piece)
		}

		if end >= textLen {
			break
		}

		next := runeFloor(text, end-s.overlap)
		// A shortened window plus overlap can step backwards; force
		// progress so the loop terminates.
		if next <= start {
			next = end
		}
		start = next
	}

	return pieces
}

// runeFloor backs i up to the nearest rune start so byte-indexed cuts
// stay on rune boundaries.
func runeFloor(s string, i int) int {
	if i <= 0 {
		return 0
	}
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return i
}
