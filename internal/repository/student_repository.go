package repository

import (
	"github.com/fadilmartias/cert-verifier/internal/model"
	"gorm.io/gorm"
)

type StudentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{db}
}

func (r *StudentRepository) Save(student *model.Student) error {
	return r.db.Create(student).Error
}

func (r *StudentRepository) ListAll() ([]model.Student, error) {
	var students []model.Student
	err := r.db.Order("created_at ASC").Find(&students).Error
	return students, err
}
