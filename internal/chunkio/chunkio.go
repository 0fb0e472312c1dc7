// Package chunkio reads and writes chunk records as line-delimited
// JSON, the handoff format between the extractors and the index
// builder.
package chunkio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// maxLineSize bounds a single record line. Reference chunks are
// unbounded in principle but a multi-megabyte citation is corrupt
// input, not data.
const maxLineSize = 4 * 1024 * 1024

// Write encodes chunks one JSON object per line.
func Write(w io.Writer, chunks []domain.Chunk) error {
	enc := json.NewEncoder(w)
	for i, c := range chunks {
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode chunk %d: %w", i, err)
		}
	}
	return nil
}

// WriteFile writes chunks to path, creating parent directories as
// needed. An existing file is replaced.
func WriteFile(path string, chunks []domain.Chunk) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	w := bufio.NewWriter(f)
	if err := Write(w, chunks); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush output file: %w", err)
	}
	return f.Close()
}

// Read decodes line-delimited chunk records. Blank lines are ignored;
// a malformed line fails the whole read with its line number, since a
// partially loaded corpus would silently skew the index.
func Read(r io.Reader) ([]domain.Chunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var chunks []domain.Chunk
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var c domain.Chunk
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse line %d: %w", line, err)
		}
		if c.Text == "" {
			return nil, fmt.Errorf("parse line %d: %w: empty text", line, domain.ErrInvalidInput)
		}
		chunks = append(chunks, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chunks: %w", err)
	}
	return chunks, nil
}

// ReadFile reads chunk records from path.
func ReadFile(path string) ([]domain.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chunk file: %w", err)
	}
	defer f.Close()
	return Read(f)
}
