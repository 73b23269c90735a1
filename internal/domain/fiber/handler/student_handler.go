package handler

import (
	"errors"
	"fmt"
	"io"

	"github.com/fadilmartias/cert-verifier/internal/dto"
	"github.com/fadilmartias/cert-verifier/internal/usecase"
	"github.com/fadilmartias/cert-verifier/internal/util"
	"github.com/gofiber/fiber/v2"
)

type StudentHandler struct {
	uc            *usecase.StudentUsecase
	maxUploadSize int
}

func NewStudentHandler(uc *usecase.StudentUsecase, maxUploadSize int) *StudentHandler {
	return &StudentHandler{uc: uc, maxUploadSize: maxUploadSize}
}

func (h *StudentHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/students", h.Submit)
	app.Get("/students", h.List)
}

func (h *StudentHandler) Submit(c *fiber.Ctx) error {
	in := usecase.SubmitStudentInput{
		Name:           c.FormValue("name"),
		Email:          c.FormValue("email"),
		StudentID:      c.FormValue("student_id"),
		Year:           c.FormValue("year"),
		CertificateURL: c.FormValue("certificate_url"),
	}

	if file, err := c.FormFile("certificate"); err == nil {
		if h.maxUploadSize > 0 && file.Size > int64(h.maxUploadSize) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("certificate file is too large (max %dMB)", h.maxUploadSize/1024/1024),
			})
		}
		f, err := file.Open()
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "cannot read certificate file",
			}, err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "cannot read certificate file",
			}, err)
		}
		in.CertificateName = file.Filename
		in.Certificate = data
	}

	student, err := h.uc.Submit(c.UserContext(), in)
	if err != nil {
		var formErr *util.FormError
		if errors.As(err, &formErr) {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnprocessableEntity,
				Message: "Please fill in all required fields",
				Details: formErr.Errors,
			})
		}
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to submit student data",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Student data submitted successfully",
		Data:    dto.NewStudentDTO(student),
	})
}

func (h *StudentHandler) List(c *fiber.Ctx) error {
	students, pagination, err := h.uc.List(c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list students",
		}, err)
	}
	message := "Success get students"
	if pagination.TotalItems == 0 {
		message = "No students found"
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message:    message,
		Data:       dto.NewStudentDTOs(students),
		Pagination: pagination,
	})
}
