// Package pdf reads positioned text from PDF files using ledongthuc/pdf.
package pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure the adapter implements the ports.
var (
	_ driven.PDFReader   = (*Reader)(nil)
	_ driven.PDFDocument = (*Document)(nil)
)

// defaultPageHeight is US Letter, used when a page has no MediaBox.
const defaultPageHeight = 792.0

// maxTreeDepth bounds the walk up the page tree for inherited attributes.
const maxTreeDepth = 32

// Reader opens PDF files from disk.
type Reader struct{}

// NewReader creates a PDF reader.
func NewReader() *Reader {
	return &Reader{}
}

// Open parses the file's cross-reference table and page tree.
// Any failure, including a parser panic, is returned as a
// *domain.DocumentReadError.
func (r *Reader) Open(path string) (doc driven.PDFDocument, err error) {
	name := filepath.Base(path)
	var file *os.File

	defer func() {
		if rec := recover(); rec != nil {
			if file != nil {
				_ = file.Close()
			}
			doc = nil
			err = &domain.DocumentReadError{Filename: name, Err: fmt.Errorf("parser panic: %v", rec)}
		}
	}()

	file, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, &domain.DocumentReadError{Filename: name, Err: err}
	}

	d := &Document{
		name:   name,
		file:   file,
		reader: reader,
		count:  reader.NumPage(),
		pages:  make(map[int]*Page),
	}
	logger.Debug("pdf: opened %s (%d pages)", name, d.count)
	return d, nil
}

// Document is an open PDF. Parsed pages are cached.
type Document struct {
	name   string
	file   *os.File
	reader *pdflib.Reader
	count  int

	mu    sync.Mutex
	pages map[int]*Page
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return d.count
}

// MetadataTitle returns the Title entry of the document info dictionary.
func (d *Document) MetadataTitle() (title string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug("pdf: %s: unreadable info dictionary: %v", d.name, rec)
			title = ""
		}
	}()
	return d.reader.Trailer().Key("Info").Key("Title").Text()
}

// Page returns the page at the 0-based index.
func (d *Document) Page(index int) (page driven.PDFPage, err error) {
	if index < 0 || index >= d.count {
		return nil, fmt.Errorf("page %d out of range (document has %d)", index+1, d.count)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pages[index]; ok {
		return p, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			page = nil
			err = &domain.DocumentReadError{
				Filename: d.name,
				Err:      fmt.Errorf("page %d: parser panic: %v", index+1, rec),
			}
		}
	}()

	raw := d.reader.Page(index + 1)
	if raw.V.IsNull() {
		return nil, &domain.DocumentReadError{
			Filename: d.name,
			Err:      fmt.Errorf("page %d: %w", index+1, errMissingPage),
		}
	}

	p := newPage(toGlyphs(raw.Content().Text, pageTop(raw.V)))
	d.pages[index] = p
	return p, nil
}

// Close releases the file handle.
func (d *Document) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

var errMissingPage = errors.New("page object missing")

// pageTop returns the upper edge of the page's MediaBox, walking up the
// page tree for inherited boxes.
func pageTop(v pdflib.Value) float64 {
	for i := 0; i < maxTreeDepth && !v.IsNull(); i++ {
		if box := v.Key("MediaBox"); box.Len() == 4 {
			return box.Index(3).Float64()
		}
		v = v.Key("Parent")
	}
	return defaultPageHeight
}

// toGlyphs converts bottom-up content text into top-down glyphs.
func toGlyphs(texts []pdflib.Text, top float64) []glyph {
	out := make([]glyph, 0, len(texts))
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		out = append(out, glyph{
			text: t.S,
			font: t.Font,
			size: t.FontSize,
			x:    t.X,
			y:    top - t.Y,
			w:    t.W,
		})
	}
	return out
}
