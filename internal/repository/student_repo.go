package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/models"
)

// StudentRepository persists students.
type StudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id string) (models.Student, error)
	ListByClass(ctx context.Context, classID string) ([]models.Student, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Student, error)
	Delete(ctx context.Context, id string) error
	// CodeExists checks the per-teacher student code scope.
	CodeExists(ctx context.Context, teacherID, code string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository constructs the student repository.
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) GetByID(ctx context.Context, id string) (models.Student, error) {
	var student models.Student
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (r *studentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at DESC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Student{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *studentRepository) CodeExists(ctx context.Context, teacherID, code string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).
		Where("teacher_id = ? AND student_code = ?", teacherID, code).
		Count(&total).Error
	return total > 0, err
}

func (r *studentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Student{}).Count(&total).Error
	return total, err
}
