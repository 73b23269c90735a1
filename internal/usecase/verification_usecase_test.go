package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/fadilmartias/cert-verifier/internal/util"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor serves documents keyed by the raw file content.
type fakeExtractor struct {
	docs  map[string]*model.ExtractedDocument
	texts map[string][]string
}

func (f *fakeExtractor) Extract(data []byte) (*model.ExtractedDocument, error) {
	doc, ok := f.docs[string(data)]
	if !ok {
		return nil, fmt.Errorf("cannot open %q: %w", data, model.ErrDocument)
	}
	if doc == nil {
		panic("corrupt document")
	}
	return doc, nil
}

func (f *fakeExtractor) ExtractText(data []byte) ([]string, error) {
	lines, ok := f.texts[string(data)]
	if !ok {
		return nil, fmt.Errorf("cannot open %q: %w", data, model.ErrDocument)
	}
	return lines, nil
}

type fakeResolver struct {
	links map[string]string
	errs  map[string]error
}

func (f *fakeResolver) Resolve(_ context.Context, p model.Pointer) (string, error) {
	if p.Kind == model.PointerLink {
		return p.Value, nil
	}
	if err, ok := f.errs[p.Value]; ok {
		return "", err
	}
	if link, ok := f.links[p.Value]; ok {
		return link, nil
	}
	return "", fmt.Errorf("no anchor for %s: %w", p.Value, model.ErrNotFound)
}

type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("GET %s: unexpected status 404: %w", url, model.ErrFetch)
	}
	return []byte(body), nil
}

func certLines(name, marks string) []string {
	return []string{
		"Elite",
		"This certificate is awarded to",
		name,
		"for successfully completing the course",
		"Cloud Computing",
		"with a consolidated score of",
		"Online Assignments",
		"23.5/25",
		"52/75",
		marks,
	}
}

func str(s string) *string { return &s }

func newTestUsecase(ex *fakeExtractor, res *fakeResolver, fe *fakeFetcher, workers int) *VerificationUsecase {
	return NewVerificationUsecase(ex, util.NewFieldParser(), res, fe, workers, logrus.NewEntry(logrus.New()))
}

func TestProcessCertificate_LinkOnlyVerified(t *testing.T) {
	link := "https://internalapp.nptel.ac.in/cert.pdf"
	ex := &fakeExtractor{
		docs:  map[string]*model.ExtractedDocument{"student": {Lines: certLines("JOHN SMITH", "76%"), EmbeddedLink: &link}},
		texts: map[string][]string{"official": certLines("JOHN SMITH", "76%")},
	}
	fe := &fakeFetcher{bodies: map[string]string{link: "official"}}
	uc := newTestUsecase(ex, &fakeResolver{}, fe, 1)

	out := uc.ProcessCertificate(context.Background(), model.CertificateFile{Filename: "a.pdf", Data: []byte("student")})

	require.Len(t, out.Results, 1)
	res := out.Results[0]
	assert.Equal(t, model.LinkPointer(link), res.Pointer)
	assert.True(t, res.FetchSucceeded)
	assert.Equal(t, model.Verified, res.Verdict)
	assert.Equal(t, model.Verified, out.Status())
	assert.Equal(t, &link, out.OfficialLink)
	assert.Equal(t, str("JOHN SMITH"), out.Fields.Name)
	assert.Equal(t, str("23.5"), out.Fields.AssignmentScore)
	assert.Equal(t, str("52"), out.Fields.ProctoredScore)
	assert.NoError(t, out.Err)
}

func TestProcessCertificate_MissingAnchor(t *testing.T) {
	ex := &fakeExtractor{docs: map[string]*model.ExtractedDocument{
		"student": {Lines: certLines("JOHN SMITH", "76%"), QRPayloads: []string{"QR1"}},
	}}
	fe := &fakeFetcher{}
	uc := newTestUsecase(ex, &fakeResolver{}, fe, 1)

	out := uc.ProcessCertificate(context.Background(), model.CertificateFile{Filename: "a.pdf", Data: []byte("student")})

	require.Len(t, out.Results, 1)
	assert.False(t, out.Results[0].FetchSucceeded)
	assert.Nil(t, out.Results[0].ResolvedPDFLink)
	assert.Equal(t, model.NotVerified, out.Status())
	assert.ErrorIs(t, out.Err, model.ErrNotFound)
	assert.Empty(t, fe.calls)
}

func TestProcessCertificate_AnyQRVerifies(t *testing.T) {
	good := "https://internalapp.nptel.ac.in/good.pdf"
	ex := &fakeExtractor{
		docs: map[string]*model.ExtractedDocument{"student": {
			Lines:      certLines("JOHN SMITH", "76%"),
			QRPayloads: []string{"BAD", "GOOD"},
		}},
		texts: map[string][]string{"official": certLines("JOHN SMITH", "76%")},
	}
	res := &fakeResolver{
		links: map[string]string{"GOOD": good},
		errs:  map[string]error{"BAD": fmt.Errorf("timeout: %w", model.ErrNetwork)},
	}
	fe := &fakeFetcher{bodies: map[string]string{good: "official"}}
	uc := newTestUsecase(ex, res, fe, 1)

	out := uc.ProcessCertificate(context.Background(), model.CertificateFile{Filename: "a.pdf", Data: []byte("student")})

	require.Len(t, out.Results, 2)
	assert.Equal(t, model.NotVerified, out.Results[0].Verdict)
	assert.ErrorIs(t, out.Results[0].Err, model.ErrNetwork)
	assert.Equal(t, model.Verified, out.Results[1].Verdict)
	assert.Equal(t, model.Verified, out.Status())
	assert.Equal(t, &good, out.OfficialLink)
}

func TestProcessCertificate_MarksDiffer(t *testing.T) {
	link := "https://internalapp.nptel.ac.in/cert.pdf"
	ex := &fakeExtractor{
		docs:  map[string]*model.ExtractedDocument{"student": {Lines: certLines("JOHN SMITH", "96%"), EmbeddedLink: &link}},
		texts: map[string][]string{"official": certLines("JOHN SMITH", "76%")},
	}
	uc := newTestUsecase(ex, &fakeResolver{}, &fakeFetcher{bodies: map[string]string{link: "official"}}, 1)

	out := uc.ProcessCertificate(context.Background(), model.CertificateFile{Filename: "a.pdf", Data: []byte("student")})

	require.Len(t, out.Results, 1)
	assert.True(t, out.Results[0].FetchSucceeded)
	assert.Equal(t, model.NotVerified, out.Status())
}

func TestProcessCertificate_NoPointer(t *testing.T) {
	ex := &fakeExtractor{docs: map[string]*model.ExtractedDocument{"student": {Lines: certLines("JOHN SMITH", "76%")}}}
	uc := newTestUsecase(ex, &fakeResolver{}, &fakeFetcher{}, 1)

	out := uc.ProcessCertificate(context.Background(), model.CertificateFile{Filename: "a.pdf", Data: []byte("student")})

	require.Len(t, out.Results, 1)
	assert.Equal(t, model.NoPointer(), out.Results[0].Pointer)
	assert.Equal(t, model.NotVerified, out.Status())
}

func TestChoosePointers(t *testing.T) {
	link := "https://internalapp.nptel.ac.in/x.pdf"

	assert.Equal(t, []model.Pointer{model.QRPointer("a"), model.QRPointer("b")},
		ChoosePointers(&model.ExtractedDocument{QRPayloads: []string{"a", "b"}, EmbeddedLink: &link}))
	assert.Equal(t, []model.Pointer{model.LinkPointer(link)},
		ChoosePointers(&model.ExtractedDocument{EmbeddedLink: &link}))
	assert.Equal(t, []model.Pointer{model.NoPointer()},
		ChoosePointers(&model.ExtractedDocument{}))
}

func TestProcessBatch_OrderingAndFailures(t *testing.T) {
	link := "https://internalapp.nptel.ac.in/cert.pdf"
	ex := &fakeExtractor{
		docs: map[string]*model.ExtractedDocument{
			"unverified": {Lines: certLines("ANITA RAO", "50%")},
			"verified":   {Lines: certLines("JOHN SMITH", "76%"), EmbeddedLink: &link},
			"panics":     nil,
		},
		texts: map[string][]string{"official": certLines("JOHN SMITH", "76%")},
	}
	fe := &fakeFetcher{bodies: map[string]string{link: "official"}}
	uc := newTestUsecase(ex, &fakeResolver{}, fe, 3)

	files := []model.CertificateFile{
		{Filename: "1.pdf", Data: []byte("unverified")},
		{Filename: "2.pdf", Data: []byte("garbage")},
		{Filename: "3.pdf", Data: []byte("verified")},
		{Filename: "4.pdf", Data: []byte("panics")},
	}

	var (
		mu       sync.Mutex
		progress []int
	)
	rows := uc.ProcessBatch(context.Background(), files, func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 4, total)
		progress = append(progress, done)
	})

	require.Len(t, rows, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, progress)

	assert.Equal(t, "3.pdf", rows[0].Filename)
	assert.Equal(t, model.Verified, rows[0].Status)
	assert.Equal(t, &link, rows[0].PDFLink)

	assert.Equal(t, []string{"1.pdf", "2.pdf", "4.pdf"}, []string{rows[1].Filename, rows[2].Filename, rows[3].Filename})
	for _, r := range rows[1:] {
		assert.Equal(t, model.NotVerified, r.Status)
		assert.NotEmpty(t, r.Notes)
	}
	assert.Nil(t, rows[2].Name)
	assert.Nil(t, rows[2].Marks)
}

func TestProcessBatch_Empty(t *testing.T) {
	uc := newTestUsecase(&fakeExtractor{}, &fakeResolver{}, &fakeFetcher{}, 2)
	called := false

	rows := uc.ProcessBatch(context.Background(), nil, func(int, int) { called = true })

	assert.Empty(t, rows)
	assert.False(t, called)
}

type staticSource struct {
	files []model.CertificateFile
	err   error
}

func (s staticSource) List(context.Context) ([]model.CertificateFile, error) { return s.files, s.err }

func TestVerifyStored(t *testing.T) {
	uc := newTestUsecase(&fakeExtractor{}, &fakeResolver{}, &fakeFetcher{}, 1)

	rows, err := uc.VerifyStored(context.Background(), staticSource{files: []model.CertificateFile{{Filename: "x.pdf", Data: []byte("x")}}}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.NotVerified, rows[0].Status)

	boom := errors.New("bucket unavailable")
	_, err = uc.VerifyStored(context.Background(), staticSource{err: boom}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestSortRows_Stable(t *testing.T) {
	rows := []model.ReportRow{
		{Filename: "a", Status: model.NotVerified},
		{Filename: "b", Status: model.Verified},
		{Filename: "c", Status: model.NotVerified},
		{Filename: "d", Status: model.Verified},
	}
	SortRows(rows)

	var names []string
	for _, r := range rows {
		names = append(names, r.Filename)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, names)
}
