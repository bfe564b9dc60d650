package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
	"github.com/custodia-labs/folio/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// identityPattern limits identities to names that are safe as file prefixes.
var identityPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateIdentity reports whether identity can name an index.
func ValidateIdentity(identity string) error {
	if !identityPattern.MatchString(identity) || identity == "." || identity == ".." {
		return fmt.Errorf("%w: identity %q must match [A-Za-z0-9._-]+", domain.ErrInvalidInput, identity)
	}
	return nil
}

// IndexService turns a folder of PDFs into an embedded, persisted index.
// Calls for the same identity are serialised by failing fast; different
// identities run concurrently.
type IndexService struct {
	reader    driven.PDFReader
	outline   *OutlineService
	segmenter *Segmenter
	chunker   driven.ChunkBuilder
	embedder  driven.EmbeddingService
	store     driven.IndexStore
	runs      driven.RunStore

	mu     sync.Mutex
	active map[string]bool
}

// NewIndexService creates an index service.
// The embedder should return unit vectors. runs is optional.
func NewIndexService(
	reader driven.PDFReader,
	outline *OutlineService,
	segmenter *Segmenter,
	chunker driven.ChunkBuilder,
	embedder driven.EmbeddingService,
	store driven.IndexStore,
	runs driven.RunStore,
) *IndexService {
	return &IndexService{
		reader:    reader,
		outline:   outline,
		segmenter: segmenter,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		runs:      runs,
		active:    make(map[string]bool),
	}
}

// Index adds every PDF directly inside folder that the identity's index
// does not already contain. Nothing is persisted unless at least one
// chunk was added, and nothing is persisted if the call fails.
func (s *IndexService) Index(
	ctx context.Context, folder, identity string, opts driving.IndexOptions,
) (*domain.IndexReport, error) {
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	if err := s.acquire(identity); err != nil {
		return nil, err
	}
	defer s.release(identity)

	logger.Section("Indexing")
	logger.Debug("Folder: %s, identity: %s", folder, identity)

	files, err := ScanPDFs(folder)
	if err != nil {
		return nil, err
	}

	report := &domain.IndexReport{
		RunID:     uuid.New().String(),
		Identity:  identity,
		Folder:    folder,
		Documents: []domain.DocumentOutcome{},
		StartedAt: time.Now(),
	}
	run := domain.IndexRun{
		ID:        report.RunID,
		Identity:  identity,
		Folder:    folder,
		Status:    domain.RunRunning,
		StartedAt: report.StartedAt,
	}
	s.saveRun(ctx, run)

	err = s.index(ctx, identity, files, opts.Progress, report)

	report.FinishedAt = time.Now()
	run.FinishedAt = &report.FinishedAt
	run.Added = report.Added
	run.Status = domain.RunCompleted
	if err != nil {
		run.Status = domain.RunFailed
		run.Error = err.Error()
	}
	s.saveRun(ctx, run)

	if err != nil {
		return report, err
	}

	logger.Info("Indexed %d chunks from %d documents (%d skipped, %d without headings, %d failed)",
		report.Added, report.Count(domain.DocumentIndexed), report.Count(domain.DocumentSkipped),
		report.Count(domain.DocumentNoHeadings), report.Count(domain.DocumentFailed))
	return report, nil
}

func (s *IndexService) index(
	ctx context.Context, identity string, files []string,
	progress driving.IndexProgress, report *domain.IndexReport,
) error {
	idx, records, err := s.open(identity)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(records))
	for _, r := range records {
		known[r.Document] = true
	}

	if progress != nil {
		progress.Begin(len(files))
	}
	record := func(o domain.DocumentOutcome) {
		report.Documents = append(report.Documents, o)
		s.saveOutcome(ctx, report.RunID, o)
		if progress != nil {
			progress.Document(o)
		}
	}

	added := 0
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := filepath.Base(path)
		if known[name] {
			logger.Debug("%s: already indexed", name)
			record(domain.DocumentOutcome{Filename: name, Status: domain.DocumentSkipped})
			continue
		}

		outcome, chunks, err := s.extract(ctx, path, name)
		if err != nil {
			return err
		}
		if len(chunks) > 0 {
			n, err := s.embedAndAppend(ctx, idx, &records, chunks)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			outcome.Chunks = n
			added += n
			known[name] = true
		}
		record(outcome)
	}

	if added == 0 {
		logger.Debug("no new chunks, leaving index %s untouched", identity)
		return nil
	}

	if err := s.store.Save(identity, idx, records); err != nil {
		return fmt.Errorf("save index %s: %w", identity, err)
	}
	report.Added = added
	return nil
}

// open loads the identity's index, or creates an empty one.
func (s *IndexService) open(identity string) (driven.VectorIndex, []domain.Record, error) {
	exists, err := s.store.Exists(identity)
	if err != nil {
		return nil, nil, fmt.Errorf("check index %s: %w", identity, err)
	}

	if !exists {
		return s.store.New(s.embedder.Dimensions()), nil, nil
	}

	idx, records, err := s.store.Load(identity)
	if err != nil {
		return nil, nil, fmt.Errorf("load index %s: %w", identity, err)
	}
	if idx.Dimensions() != s.embedder.Dimensions() {
		return nil, nil, fmt.Errorf("%w: index %s has width %d, %s produces %d",
			domain.ErrDimensionMismatch, identity, idx.Dimensions(),
			s.embedder.ModelName(), s.embedder.Dimensions())
	}
	return idx, records, nil
}

// extract runs outline, segmentation and chunking for one PDF.
// Read failures, including engine panics, become a failed outcome;
// only cancellation is returned as an error.
func (s *IndexService) extract(
	ctx context.Context, path, name string,
) (outcome domain.DocumentOutcome, chunks []domain.Chunk, err error) {
	outcome = domain.DocumentOutcome{Filename: name}

	fail := func(cause error) {
		var readErr *domain.DocumentReadError
		if !errors.As(cause, &readErr) {
			readErr = &domain.DocumentReadError{Filename: name, Err: cause}
		}
		logger.Warn("%v", readErr)
		outcome.Status = domain.DocumentFailed
		outcome.Error = readErr.Error()
		chunks = nil
	}

	defer func() {
		if r := recover(); r != nil {
			fail(fmt.Errorf("pdf engine panic: %v", r))
			err = nil
		}
	}()

	doc, err := s.reader.Open(path)
	if err != nil {
		fail(err)
		return outcome, nil, nil
	}
	defer doc.Close()

	outline, err := s.outline.Extract(ctx, doc, name)
	if err != nil {
		if ctx.Err() != nil {
			return outcome, nil, ctx.Err()
		}
		fail(err)
		return outcome, nil, nil
	}
	outcome.Title = outline.Title

	sections, err := s.segmenter.Segment(ctx, doc, outline.Headings)
	if err != nil {
		if ctx.Err() != nil {
			return outcome, nil, ctx.Err()
		}
		fail(err)
		return outcome, nil, nil
	}
	if len(sections) == 0 {
		logger.Info("%s: no headings found, skipping", name)
		outcome.Status = domain.DocumentNoHeadings
		return outcome, nil, nil
	}

	chunks = s.chunker.Build(name, sections)
	outcome.Status = domain.DocumentIndexed
	logger.Debug("%s: %d sections, %d chunks", name, len(sections), len(chunks))
	return outcome, chunks, nil
}

// embedAndAppend embeds one document's chunks in a single batch and
// appends vectors and records in the same order.
func (s *IndexService) embedAndAppend(
	ctx context.Context, idx driven.VectorIndex, records *[]domain.Record, chunks []domain.Chunk,
) (int, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embed: got %d vectors for %d chunks", len(vectors), len(chunks))
	}

	ids, err := idx.Add(vectors)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if want := domain.ChunkID(len(*records)); id != want {
			return 0, fmt.Errorf("%w: vector stored as %d, expected %d", domain.ErrIndexCorrupt, id, want)
		}
		*records = append(*records, domain.Record{ID: id, Chunk: chunks[i]})
	}
	return len(ids), nil
}

func (s *IndexService) acquire(identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[identity] {
		return fmt.Errorf("%w: %s", domain.ErrIndexingInProgress, identity)
	}
	s.active[identity] = true
	return nil
}

func (s *IndexService) release(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, identity)
}

// saveRun writes the ledger entry. The ledger is advisory, so failures
// are logged and otherwise ignored.
func (s *IndexService) saveRun(ctx context.Context, run domain.IndexRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("run ledger: save run %s: %v", run.ID, err)
	}
}

func (s *IndexService) saveOutcome(ctx context.Context, runID string, o domain.DocumentOutcome) {
	if s.runs == nil {
		return
	}
	if err := s.runs.SaveOutcome(context.WithoutCancel(ctx), runID, o); err != nil {
		logger.Warn("run ledger: save outcome for %s: %v", o.Filename, err)
	}
}

// ScanPDFs lists the PDF files directly inside folder, sorted by name.
// The extension match ignores case; subdirectories are not entered.
func ScanPDFs(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: folder %s", domain.ErrNotFound, folder)
		}
		return nil, fmt.Errorf("read folder %s: %w", folder, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsPDF(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(folder, e.Name()))
	}
	return files, nil
}

// IsPDF reports whether name has a .pdf extension in any case.
func IsPDF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
