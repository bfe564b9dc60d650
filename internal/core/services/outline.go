package services

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure OutlineService implements the interface.
var _ driving.OutlineService = (*OutlineService)(nil)

// OutlineService extracts titles and heading outlines from PDFs.
type OutlineService struct {
	reader   driven.PDFReader
	detector driven.HeadingDetector
}

// NewOutlineService creates an outline service.
// The detector is usually a merge stage over several strategies.
func NewOutlineService(reader driven.PDFReader, detector driven.HeadingDetector) *OutlineService {
	return &OutlineService{
		reader:   reader,
		detector: detector,
	}
}

// Outline opens the PDF at path and returns its outline.
func (s *OutlineService) Outline(ctx context.Context, path string) (*domain.Outline, error) {
	doc, err := s.reader.Open(path)
	if err != nil {
		var readErr *domain.DocumentReadError
		if errors.As(err, &readErr) {
			return nil, err
		}
		return nil, &domain.DocumentReadError{Filename: filepath.Base(path), Err: err}
	}
	defer doc.Close()

	return s.Extract(ctx, doc, filepath.Base(path))
}

// Extract runs the heading detector over every page, deduplicates the
// candidates by (text, page), resolves the title and removes headings
// that repeat it.
func (s *OutlineService) Extract(ctx context.Context, doc driven.PDFDocument, filename string) (*domain.Outline, error) {
	var (
		headings []domain.HeadingCandidate
		seen     = make(map[domain.HeadingKey]bool)
	)

	for i := 0; i < doc.PageCount(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := doc.Page(i)
		if err != nil {
			logger.Warn("%s: page %d unreadable: %v", filename, i+1, err)
			continue
		}
		candidates, err := s.detector.Detect(ctx, page, i)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%s: heading detection failed on page %d: %v", filename, i+1, err)
			continue
		}
		for _, c := range candidates {
			if seen[c.Key()] {
				continue
			}
			seen[c.Key()] = true
			headings = append(headings, c)
		}
	}

	title := ResolveTitle(doc)
	if title == "" {
		title = fallbackTitle(headings)
	}

	outline := &domain.Outline{
		Filename:  filename,
		Title:     title,
		PageCount: doc.PageCount(),
		Headings:  filterOutline(headings, title),
	}
	logger.Debug("%s: title %q, %d candidates, %d after title filter",
		filename, title, len(headings), len(outline.Headings))

	return outline, nil
}
