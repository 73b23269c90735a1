package usecase

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/fadilmartias/cert-verifier/internal/response"
	"github.com/fadilmartias/cert-verifier/internal/util"
)

// StudentRepository is the record store for submissions.
type StudentRepository interface {
	Save(student *model.Student) error
	ListAll() ([]model.Student, error)
}

// CertificateStore keeps uploaded certificate PDFs and hands them back for
// verification.
type CertificateStore interface {
	CertificateSource
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

type SubmitStudentInput struct {
	Name            string
	Email           string
	StudentID       string
	Year            string
	CertificateURL  string
	CertificateName string
	Certificate     []byte
}

type StudentUsecase struct {
	repo  StudentRepository
	store CertificateStore
}

func NewStudentUsecase(repo StudentRepository, store CertificateStore) *StudentUsecase {
	return &StudentUsecase{repo: repo, store: store}
}

// Submit validates the form, stores the optional certificate and saves the
// student record.
func (uc *StudentUsecase) Submit(ctx context.Context, in SubmitStudentInput) (*model.Student, error) {
	if err := validateStudent(in); err != nil {
		return nil, err
	}

	student := &model.Student{
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.TrimSpace(in.Email),
		StudentID: strings.TrimSpace(in.StudentID),
		Year:      strings.TrimSpace(in.Year),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if u := strings.TrimSpace(in.CertificateURL); u != "" {
		student.CertificateURL = &u
	}
	if len(in.Certificate) > 0 {
		stored, err := uc.store.Save(ctx, in.CertificateName, in.Certificate)
		if err != nil {
			return nil, fmt.Errorf("save certificate: %w", err)
		}
		student.CertificateFileName = &stored
	}

	if err := uc.repo.Save(student); err != nil {
		return nil, fmt.Errorf("save student: %w", err)
	}
	return student, nil
}

// List returns one page of students, page numbers starting at 1.
func (uc *StudentUsecase) List(page, pageSize int) ([]model.Student, *response.Pagination, error) {
	students, err := uc.repo.ListAll()
	if err != nil {
		return nil, nil, err
	}
	pagination := response.NewPagination(page, pageSize, len(students))
	from, to := pagination.Bounds()
	return students[from:to], pagination, nil
}

func validateStudent(in SubmitStudentInput) error {
	errs := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "full name is required"
	}
	if email := strings.TrimSpace(in.Email); email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "email is not valid"
	}
	if strings.TrimSpace(in.StudentID) == "" {
		errs["student_id"] = "enrollment number is required"
	}
	if len(in.Certificate) > 0 && !bytes.HasPrefix(in.Certificate, []byte("%PDF")) {
		errs["certificate"] = "certificate must be a PDF"
	}
	if len(errs) > 0 {
		return util.NewFormError("please fill in all required fields", errs)
	}
	return nil
}
