package doxygen

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
	"github.com/scholarch/scholarch-cli/internal/logger"
)

// chunkNamespace seeds the deterministic chunk IDs. Fixed so the same
// corpus always produces the same IDs and re-indexing upserts instead
// of duplicating.
var chunkNamespace = uuid.MustParse("6f2f2cbe-8a5e-4c4b-9a8e-2d4a9b1c7e03")

// Extractor turns reference HTML and markdown documents into chunks.
type Extractor struct {
	split *splitter.Splitter
}

// New creates an extractor. Splitter options default to the shared
// splitter defaults (2000/200).
func New(opts ...splitter.Option) *Extractor {
	return &Extractor{
		split: splitter.New(opts...),
	}
}

// ExtractDir walks htmlDir for .htm/.html files and markdownDir for
// .md files, in sorted order, and returns all extracted chunks.
// Files that fail to parse or read are skipped with a warning; a bad
// document never aborts the batch.
func (e *Extractor) ExtractDir(htmlDir, markdownDir string) ([]domain.Chunk, error) {
	var chunks []domain.Chunk

	htmlFiles, err := listFiles(htmlDir, ".html", ".htm")
	if err != nil {
		return nil, fmt.Errorf("walk html dir: %w", err)
	}
	for _, path := range htmlFiles {
		docChunks, err := e.ExtractHTMLFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		chunks = append(chunks, docChunks...)
	}

	mdFiles, err := listFiles(markdownDir, ".md")
	if err != nil {
		return nil, fmt.Errorf("walk markdown dir: %w", err)
	}
	for _, path := range mdFiles {
		docChunks, err := e.ExtractMarkdownFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		chunks = append(chunks, docChunks...)
	}

	return chunks, nil
}

// ExtractHTMLFile parses one reference page and chunks it.
func (e *Extractor) ExtractHTMLFile(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := parseHTML(f)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if doc.title == "" {
		doc.title = stem(path)
	}
	detectMetadata(path, doc)

	return e.chunkDocument(path, doc), nil
}

// ExtractMarkdownFile chunks one markdown source file. The document
// title is the first heading, falling back to the file stem; markdown
// documents always carry kind "markdown" with the title as symbol.
func (e *Extractor) ExtractMarkdownFile(path string) ([]domain.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc := parseMarkdown(string(data), stem(path))
	return e.chunkDocument(path, doc), nil
}

// parseMarkdown segments markdown into units at # heading lines.
func parseMarkdown(content, fallbackTitle string) *parsedDoc {
	doc := &parsedDoc{
		title: fallbackTitle,
		kind:  string(domain.KindMarkdown),
	}

	titled := false
	var current unit
	var lines []string
	flush := func() {
		if text := splitter.Clean(strings.Join(lines, "\n")); text != "" {
			current.text = text
			doc.units = append(doc.units, current)
		}
		current = unit{}
		lines = nil
	}

	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(stripped, "# "))
			flush()
			current.title = heading
			if !titled && heading != "" {
				doc.title = heading
				titled = true
			}
		}
		lines = append(lines, line)
	}
	flush()

	doc.symbol = doc.title
	return doc
}

// detectMetadata resolves kind, symbol and namespace from the filename
// prefix and the page title suffix. The title suffix wins over the
// filename when both match, since Doxygen titles name the symbol
// precisely.
func detectMetadata(path string, doc *parsedDoc) {
	filename := filepath.Base(path)
	lower := strings.ToLower(doc.title)

	doc.kind = string(domain.KindPage)
	switch {
	case strings.HasPrefix(filename, "class"):
		doc.kind = string(domain.KindClass)
	case strings.HasPrefix(filename, "struct"):
		doc.kind = string(domain.KindStruct)
	case strings.HasPrefix(filename, "namespace"):
		doc.kind = string(domain.KindNamespace)
	case strings.HasPrefix(filename, "file"):
		doc.kind = string(domain.KindFile)
	case strings.HasPrefix(filename, "group__"):
		doc.kind = string(domain.KindTutorial)
	case strings.Contains(filename, "tutorial"):
		doc.kind = string(domain.KindTutorial)
	}

	titleSuffixes := []struct {
		suffix string
		kind   domain.DocKind
		strip  string
	}{
		{"class reference", domain.KindClass, "Class Reference"},
		{"struct reference", domain.KindStruct, "Struct Reference"},
		{"namespace reference", domain.KindNamespace, "Namespace Reference"},
		{"file reference", domain.KindFile, "File Reference"},
		{"module reference", domain.KindModule, "Module Reference"},
	}
	for _, ts := range titleSuffixes {
		if strings.Contains(lower, ts.suffix) {
			doc.kind = string(ts.kind)
			doc.symbol = strings.TrimSpace(strings.ReplaceAll(doc.title, ts.strip, ""))
			break
		}
	}

	if doc.symbol != "" {
		if idx := strings.LastIndex(doc.symbol, "::"); idx > 0 {
			doc.namespace = doc.symbol[:idx]
		}
	}
}

// chunkDocument splits each unit and attaches the self-describing
// header to every chunk. The splitter window shrinks by the header
// length so the configured maximum bounds the finished chunk.
func (e *Extractor) chunkDocument(path string, doc *parsedDoc) []domain.Chunk {
	header := chunkHeader(doc)

	// The header counts against the configured maximum, so the inner
	// window shrinks by its length. splitter.New clamps the overlap
	// when the shrunk window makes it too large; widening the window
	// back out instead would break the size bound.
	size := e.split.ChunkSize() - len(header)
	if size < 1 {
		size = 1
	}
	split := splitter.New(splitter.WithChunkSize(size), splitter.WithOverlap(e.split.Overlap()))

	var chunks []domain.Chunk
	for unitIdx, u := range doc.units {
		title := u.title
		if title == "" {
			title = doc.title
		}
		for chunkIdx, piece := range split.Split(u.text) {
			chunks = append(chunks, domain.Chunk{
				ID:         chunkID(path, unitIdx, chunkIdx),
				Text:       header + piece,
				Source:     path,
				Title:      title,
				Kind:       domain.DocKind(doc.kind),
				Symbol:     doc.symbol,
				Namespace:  doc.namespace,
				ChunkIndex: chunkIdx,
			})
		}
	}
	return chunks
}

// chunkHeader renders the per-chunk metadata preamble.
func chunkHeader(doc *parsedDoc) string {
	lines := []string{
		"Title: " + doc.title,
		"Kind: " + doc.kind,
	}
	if doc.symbol != "" {
		lines = append(lines, "Symbol: "+doc.symbol)
	}
	if doc.namespace != "" {
		lines = append(lines, "Namespace: "+doc.namespace)
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// chunkID derives a stable identifier from source, unit and position.
func chunkID(source string, unitIdx, chunkIdx int) string {
	name := fmt.Sprintf("%s\x00%d\x00%d", source, unitIdx, chunkIdx)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// listFiles returns sorted paths under dir with one of the given
// extensions. A missing directory yields no files, not an error.
func listFiles(dir string, exts ...string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		for _, want := range exts {
			if ext == want {
				paths = append(paths, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
