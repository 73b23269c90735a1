package usecase

import (
	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/service"
	"github.com/fadilmartias/cert-verifier/internal/util"
	"github.com/sirupsen/logrus"
)

// NewVerificationUsecaseFromConfig wires the MuPDF extractor and the issuer
// HTTP services into a ready usecase.
func NewVerificationUsecaseFromConfig(cfg *config.VerifierConfig, logger *logrus.Entry) *VerificationUsecase {
	client := service.NewIssuerClient(cfg)
	return NewVerificationUsecase(
		util.NewPDFExtractor(cfg.LinkPrefix, logger),
		util.NewFieldParser(),
		service.NewVerificationService(cfg, client, logger),
		service.NewCertificateFetcher(client, logger),
		cfg.Workers,
		logger,
	)
}
