package service

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/sirupsen/logrus"
)

type CertificateFetcherInterface interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CertificateFetcher downloads the issuer's official PDF into memory. It does
// not retry.
type CertificateFetcher struct {
	client *IssuerClient
	log    *logrus.Entry
}

func NewCertificateFetcher(client *IssuerClient, logger *logrus.Entry) *CertificateFetcher {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CertificateFetcher{
		client: client,
		log:    logger.WithField("component", "certificate_fetcher"),
	}
}

func (f *CertificateFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	body, err := f.client.Get(ctx, url)
	if err != nil {
		f.log.WithError(err).Warnf("error downloading PDF from %s", url)
		return nil, fmt.Errorf("%v: %w", err, model.ErrFetch)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty body from %s: %w", url, model.ErrFetch)
	}
	return body, nil
}
