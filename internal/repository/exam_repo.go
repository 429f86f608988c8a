package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/models"
)

// ExamRepository persists exams.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id string) (models.Exam, error)
	GetByCode(ctx context.Context, code string) (models.Exam, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Exam, error)
	Delete(ctx context.Context, id string) error
	// CodeExists checks the global exam code scope.
	CodeExists(ctx context.Context, code string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type examRepository struct {
	db *gorm.DB
}

// NewExamRepository constructs the exam repository.
func NewExamRepository(db *gorm.DB) ExamRepository {
	return &examRepository{db: db}
}

func (r *examRepository) Create(ctx context.Context, exam *models.Exam) error {
	return r.db.WithContext(ctx).Create(exam).Error
}

func (r *examRepository) GetByID(ctx context.Context, id string) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&exam).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) GetByCode(ctx context.Context, code string) (models.Exam, error) {
	var exam models.Exam
	if err := r.db.WithContext(ctx).Where("exam_code = ?", code).First(&exam).Error; err != nil {
		return models.Exam{}, err
	}
	return exam, nil
}

func (r *examRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Exam, error) {
	var exams []models.Exam
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&exams).Error
	if err != nil {
		return nil, err
	}
	return exams, nil
}

func (r *examRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Exam{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *examRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Exam{}).
		Where("exam_code = ?", code).
		Count(&total).Error
	return total > 0, err
}

func (r *examRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Exam{}).Count(&total).Error
	return total, err
}
