package paper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/scholarch/scholarch-cli/internal/extract/splitter"
	"github.com/scholarch/scholarch-cli/internal/logger"
)

// tocSidecarSuffix names the optional table-of-contents file placed
// next to a PDF ("survey.pdf" -> "survey.pdf.toc.json"), holding a
// JSON array of TOCEntry. Text-layer PDFs rarely expose page-resolved
// outlines, so the TOC travels as a sidecar.
const tocSidecarSuffix = ".toc.json"

// LoadPaper reads a PDF into per-page text, picking up the title from
// document metadata (file stem when absent) and the table of contents
// from the sidecar file when one exists.
func LoadPaper(path string) (*Paper, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	p := &Paper{
		Source: path,
		Title:  pdfTitle(r, path),
	}

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			p.Pages = append(p.Pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single unreadable page degrades the section text, it
			// does not fail the paper.
			logger.Warn("Unreadable page %d in %s: %v", i, path, err)
			text = ""
		}
		p.Pages = append(p.Pages, splitter.Clean(text))
	}

	toc, err := loadSidecarTOC(path)
	if err != nil {
		return nil, err
	}
	p.TOC = toc
	return p, nil
}

// LoadDir loads every *.pdf under dir in sorted order. A paper that
// fails to load is skipped with a warning and does not abort the batch.
func LoadDir(dir string) ([]*Paper, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("glob pdf dir: %w", err)
	}
	sort.Strings(matches)

	var papers []*Paper
	for _, path := range matches {
		p, err := LoadPaper(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			continue
		}
		papers = append(papers, p)
	}
	return papers, nil
}

func pdfTitle(r *pdf.Reader, path string) string {
	info := r.Trailer().Key("Info")
	if !info.IsNull() {
		if title := info.Key("Title"); title.Kind() == pdf.String {
			if t := strings.TrimSpace(title.Text()); t != "" {
				return t
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func loadSidecarTOC(path string) ([]TOCEntry, error) {
	data, err := os.ReadFile(path + tocSidecarSuffix)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read toc sidecar: %w", err)
	}

	var toc []TOCEntry
	if err := json.Unmarshal(data, &toc); err != nil {
		return nil, fmt.Errorf("parse toc sidecar: %w", err)
	}
	return toc, nil
}
