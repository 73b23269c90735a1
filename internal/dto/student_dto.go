package dto

import (
	"time"

	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/google/uuid"
)

type StudentDTO struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	StudentID           string    `json:"student_id"`
	Year                string    `json:"year,omitempty"`
	CertificateURL      *string   `json:"certificate_url"`
	CertificateFileName *string   `json:"certificate_file_name"`
	CreatedAt           time.Time `json:"created_at"`
}

func NewStudentDTO(s *model.Student) StudentDTO {
	return StudentDTO{
		ID:                  s.ID,
		Name:                s.Name,
		Email:               s.Email,
		StudentID:           s.StudentID,
		Year:                s.Year,
		CertificateURL:      s.CertificateURL,
		CertificateFileName: s.CertificateFileName,
		CreatedAt:           s.CreatedAt,
	}
}

func NewStudentDTOs(students []model.Student) []StudentDTO {
	out := make([]StudentDTO, 0, len(students))
	for i := range students {
		out = append(out, NewStudentDTO(&students[i]))
	}
	return out
}
