package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/fadilmartias/cert-verifier/internal/service"
	"github.com/fadilmartias/cert-verifier/internal/util"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type Extractor interface {
	Extract(data []byte) (*model.ExtractedDocument, error)
	ExtractText(data []byte) ([]string, error)
}

// CertificateSource yields every stored certificate as (filename, bytes).
type CertificateSource interface {
	List(ctx context.Context) ([]model.CertificateFile, error)
}

// ProgressFunc is called after each certificate completes. done never
// decreases between calls.
type ProgressFunc func(done, total int)

type VerificationUsecase struct {
	extractor Extractor
	parser    *util.FieldParser
	resolver  service.VerificationServiceInterface
	fetcher   service.CertificateFetcherInterface
	workers   int
	log       *logrus.Entry
}

func NewVerificationUsecase(extractor Extractor, parser *util.FieldParser, resolver service.VerificationServiceInterface, fetcher service.CertificateFetcherInterface, workers int, logger *logrus.Entry) *VerificationUsecase {
	if workers <= 0 {
		workers = 1
	}
	if parser == nil {
		parser = util.NewFieldParser()
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &VerificationUsecase{
		extractor: extractor,
		parser:    parser,
		resolver:  resolver,
		fetcher:   fetcher,
		workers:   workers,
		log:       logger.WithField("component", "verification_usecase"),
	}
}

// ProcessBatch verifies every file and returns one row per file, verified
// rows first. A file that fails never aborts the others.
func (uc *VerificationUsecase) ProcessBatch(ctx context.Context, files []model.CertificateFile, progress ProgressFunc) []model.ReportRow {
	rows := make([]model.ReportRow, len(files))
	total := len(files)

	var (
		mu   sync.Mutex
		done int
	)
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.workers)
	for i, file := range files {
		eg.Go(func() error {
			outcome := uc.safeProcess(gctx, file)
			rows[i] = outcome.Row()

			mu.Lock()
			done++
			if progress != nil {
				progress(done, total)
			}
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	SortRows(rows)
	verified := 0
	for _, r := range rows {
		if r.Status == model.Verified {
			verified++
		}
	}
	uc.log.WithFields(logrus.Fields{"files": total, "verified": verified}).Info("batch verification completed")
	return rows
}

// VerifyStored runs the batch over every certificate held by src.
func (uc *VerificationUsecase) VerifyStored(ctx context.Context, src CertificateSource, progress ProgressFunc) ([]model.ReportRow, error) {
	files, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored certificates: %w", err)
	}
	return uc.ProcessBatch(ctx, files, progress), nil
}

// SortRows orders rows verified-first, keeping the input order otherwise.
func SortRows(rows []model.ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Status == model.Verified && rows[j].Status != model.Verified
	})
}

func (uc *VerificationUsecase) safeProcess(ctx context.Context, file model.CertificateFile) (outcome model.CertificateOutcome) {
	defer func() {
		if r := recover(); r != nil {
			uc.log.Errorf("panic while verifying %s: %v", file.Filename, r)
			outcome = failedOutcome(file.Filename, fmt.Errorf("panic: %v", r))
		}
	}()
	return uc.ProcessCertificate(ctx, file)
}

// ProcessCertificate runs the whole pipeline for one certificate.
func (uc *VerificationUsecase) ProcessCertificate(ctx context.Context, file model.CertificateFile) model.CertificateOutcome {
	log := uc.log.WithField("file", file.Filename)

	doc, err := uc.extractor.Extract(file.Data)
	if err != nil {
		log.WithError(err).Warn("could not read certificate")
		return failedOutcome(file.Filename, err)
	}

	outcome := model.CertificateOutcome{
		Filename: file.Filename,
		Fields:   uc.parser.ParseFields(doc.Lines),
	}

	var errs *multierror.Error
	for _, pointer := range ChoosePointers(doc) {
		res := uc.verifyPointer(ctx, pointer, outcome.Fields)
		if res.ResolvedPDFLink != nil {
			outcome.OfficialLink = res.ResolvedPDFLink
		}
		if res.Err != nil {
			errs = multierror.Append(errs, res.Err)
		}
		outcome.Results = append(outcome.Results, res)
	}
	outcome.Err = errs.ErrorOrNil()

	log.WithFields(logrus.Fields{
		"pointers": len(outcome.Results),
		"status":   outcome.Status(),
	}).Debug("certificate processed")
	return outcome
}

// ChoosePointers applies the pointer strategy: every QR payload when there is
// at least one, otherwise the embedded issuer link, otherwise a single empty
// pointer.
func ChoosePointers(doc *model.ExtractedDocument) []model.Pointer {
	if len(doc.QRPayloads) > 0 {
		pointers := make([]model.Pointer, 0, len(doc.QRPayloads))
		for _, payload := range doc.QRPayloads {
			pointers = append(pointers, model.QRPointer(payload))
		}
		return pointers
	}
	if doc.EmbeddedLink != nil {
		return []model.Pointer{model.LinkPointer(*doc.EmbeddedLink)}
	}
	return []model.Pointer{model.NoPointer()}
}

func (uc *VerificationUsecase) verifyPointer(ctx context.Context, pointer model.Pointer, original model.ParsedFields) model.VerificationResult {
	res := model.VerificationResult{Pointer: pointer, Verdict: model.NotVerified}
	if pointer.Kind == model.PointerNone {
		res.Err = fmt.Errorf("no QR code or issuer link in certificate: %w", model.ErrNotFound)
		return res
	}

	link, err := uc.resolver.Resolve(ctx, pointer)
	if err != nil {
		res.Err = err
		return res
	}
	res.ResolvedPDFLink = &link

	data, err := uc.fetcher.Fetch(ctx, link)
	if err != nil {
		res.Err = err
		return res
	}
	lines, err := uc.extractor.ExtractText(data)
	if err != nil {
		res.Err = fmt.Errorf("official copy: %w", err)
		return res
	}
	res.FetchSucceeded = true
	res.Verdict = Compare(original, uc.parser.ParseFields(lines))
	return res
}

func failedOutcome(filename string, err error) model.CertificateOutcome {
	return model.CertificateOutcome{
		Filename: filename,
		Results: []model.VerificationResult{{
			Pointer: model.NoPointer(),
			Verdict: model.NotVerified,
			Err:     err,
		}},
		Err: err,
	}
}
