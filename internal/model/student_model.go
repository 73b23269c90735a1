package model

import (
	"time"

	"github.com/google/uuid"
)

type Student struct {
	ID                  uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                string    `gorm:"type:varchar(255);not null" json:"name"`
	Email               string    `gorm:"type:varchar(255);not null" json:"email"`
	StudentID           string    `gorm:"type:varchar(100);not null;index" json:"student_id"` // enrollment number
	Year                string    `gorm:"type:varchar(20)" json:"year"`
	CertificateURL      *string   `gorm:"type:text" json:"certificate_url"`
	CertificateFileName *string   `gorm:"type:text" json:"certificate_file_name"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (s *Student) TableName() string {
	return "students"
}
