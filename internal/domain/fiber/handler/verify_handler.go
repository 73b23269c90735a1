package handler

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fadilmartias/cert-verifier/internal/dto"
	"github.com/fadilmartias/cert-verifier/internal/middleware"
	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/fadilmartias/cert-verifier/internal/usecase"
	"github.com/fadilmartias/cert-verifier/internal/util"
	"github.com/gofiber/fiber/v2"
)

type VerifyHandler struct {
	uc            *usecase.VerificationUsecase
	store         usecase.CertificateSource
	maxUploadSize int
}

func NewVerifyHandler(uc *usecase.VerificationUsecase, store usecase.CertificateSource, maxUploadSize int) *VerifyHandler {
	return &VerifyHandler{uc: uc, store: store, maxUploadSize: maxUploadSize}
}

func (h *VerifyHandler) RegisterRoutes(app *fiber.App) {
	limit := middleware.RateLimiter(5, 1*time.Minute)
	app.Post("/verify", limit, h.Verify)
	app.Post("/verify/stored", limit, h.VerifyStored)
}

// Verify checks the PDFs uploaded under the "certificates" form field.
func (h *VerifyHandler) Verify(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "expecting multipart form",
		}, err)
	}
	headers := form.File["certificates"]
	if len(headers) == 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "certificates file is required",
		})
	}

	files := make([]model.CertificateFile, 0, len(headers))
	for _, fh := range headers {
		if ext := strings.ToLower(filepath.Ext(fh.Filename)); ext != ".pdf" {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("unsupported file type for %s", fh.Filename),
			})
		}
		if h.maxUploadSize > 0 && fh.Size > int64(h.maxUploadSize) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("%s is too large", fh.Filename),
			})
		}
		f, err := fh.Open()
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("cannot read %s", fh.Filename),
			}, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("cannot read %s", fh.Filename),
			}, err)
		}
		files = append(files, model.CertificateFile{Filename: fh.Filename, Data: data})
	}

	rows := h.uc.ProcessBatch(c.UserContext(), files, nil)
	return h.respond(c, rows)
}

// VerifyStored checks every certificate previously submitted through the
// student form.
func (h *VerifyHandler) VerifyStored(c *fiber.Ctx) error {
	rows, err := h.uc.VerifyStored(c.UserContext(), h.store, nil)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load stored certificates",
		}, err)
	}
	return h.respond(c, rows)
}

func (h *VerifyHandler) respond(c *fiber.Ctx, rows []model.ReportRow) error {
	report := dto.NewReportDTO(rows)
	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := report.WriteCSV(&buf); err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to render report",
			}, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="verification_report.csv"`)
		return c.Send(buf.Bytes())
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Processing completed",
		Data:    report,
	})
}
