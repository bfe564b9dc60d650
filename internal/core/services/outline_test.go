package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/custodia-labs/folio/internal/detectors"
)

// stubDetector returns fixed candidates per page index.
type stubDetector struct {
	byPage map[int][]domain.HeadingCandidate
	errOn  map[int]error
	calls  int
}

func (d *stubDetector) Name() string { return "stub" }

func (d *stubDetector) Detect(_ context.Context, _ driven.PDFPage, i int) ([]domain.HeadingCandidate, error) {
	d.calls++
	if err := d.errOn[i]; err != nil {
		return nil, err
	}
	return d.byPage[i], nil
}

func defaultDetector(t *testing.T) driven.HeadingDetector {
	t.Helper()
	reg := detectors.NewRegistry()
	detectors.RegisterDefaults(reg)
	m, err := reg.BuildMerger(domain.DefaultAppSettings().Headings)
	require.NoError(t, err)
	return m
}

func TestOutlineService_Extract_DedupAndFilter(t *testing.T) {
	det := &stubDetector{byPage: map[int][]domain.HeadingCandidate{
		0: {
			{Text: "Annual Report", Page: 0, Level: 1},
			{Text: "Introduction", Page: 0, Level: 2},
			{Text: "Introduction", Page: 0, Level: 2},
		},
		1: {{Text: "Introduction", Page: 1, Level: 2}},
	}}
	d := doc(page(fakeLine{"Annual Report", 24, 20}), page())

	svc := NewOutlineService(&fakeReader{}, det)
	outline, err := svc.Extract(context.Background(), d, "report.pdf")
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", outline.Filename)
	assert.Equal(t, "Annual Report", outline.Title)
	assert.Equal(t, 2, outline.PageCount)
	assert.Equal(t, []domain.HeadingCandidate{
		{Text: "Introduction", Page: 0, Level: 2},
		{Text: "Introduction", Page: 1, Level: 2},
	}, outline.Headings)
}

func TestOutlineService_Extract_TitleFallsBackToH1(t *testing.T) {
	det := &stubDetector{byPage: map[int][]domain.HeadingCandidate{
		0: {
			{Text: "Scope", Page: 0, Level: 2},
			{Text: "Handbook", Page: 0, Level: 1},
		},
	}}
	// No metadata and every line is too short for a title.
	d := doc(page(fakeLine{"abc", 12, 10}))

	outline, err := NewOutlineService(&fakeReader{}, det).Extract(context.Background(), d, "h.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Handbook", outline.Title)
	assert.Equal(t, []domain.HeadingCandidate{{Text: "Scope", Page: 0, Level: 2}}, outline.Headings)
}

func TestOutlineService_Extract_PageFailuresAreSkipped(t *testing.T) {
	det := &stubDetector{
		byPage: map[int][]domain.HeadingCandidate{2: {{Text: "Results", Page: 2, Level: 2}}},
		errOn:  map[int]error{1: errors.New("detector broke")},
	}
	d := doc(page(), page(), page())
	d.pageErr = map[int]error{0: errors.New("bad page")}

	outline, err := NewOutlineService(&fakeReader{}, det).Extract(context.Background(), d, "x.pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, det.calls, "unreadable page is not passed to the detector")
	assert.Equal(t, []domain.HeadingCandidate{{Text: "Results", Page: 2, Level: 2}}, outline.Headings)
}

func TestOutlineService_Extract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewOutlineService(&fakeReader{}, &stubDetector{}).Extract(ctx, doc(page()), "x.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutlineService_Outline_OpensAndCloses(t *testing.T) {
	d := doc(page(
		fakeLine{"Field Guide to Birds", 24, 20},
		fakeLine{"Identification", 16, 80},
		fakeLine{"Look at the beak first.", 10, 100},
	))
	reader := &fakeReader{docs: map[string]*fakeDoc{"birds.pdf": d}}

	outline, err := NewOutlineService(reader, defaultDetector(t)).Outline(context.Background(), "/data/birds.pdf")
	require.NoError(t, err)

	assert.True(t, d.closed)
	assert.Equal(t, "Field Guide to Birds", outline.Title)
	require.NotEmpty(t, outline.Headings)
	assert.Equal(t, "Identification", outline.Headings[0].Text)
	assert.Equal(t, domain.SourceMarkdown, outline.Headings[0].Source)
}

func TestOutlineService_Outline_ReadError(t *testing.T) {
	_, err := NewOutlineService(&fakeReader{}, &stubDetector{}).Outline(context.Background(), "/data/missing.pdf")
	assert.ErrorIs(t, err, domain.ErrDocumentRead)
}
