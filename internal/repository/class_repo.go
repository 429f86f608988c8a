package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/models"
)

// ClassRepository persists classes and runs the class delete cascade.
type ClassRepository interface {
	Create(ctx context.Context, class *models.Class) error
	GetByID(ctx context.Context, id string) (models.Class, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error)
	// DeleteCascade removes the class together with every student and exam
	// referencing it in one transaction.
	DeleteCascade(ctx context.Context, classID string) (students, exams int64, err error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository constructs the class repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) GetByID(ctx context.Context, id string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Class, error) {
	var classes []models.Class
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		Order("created_at DESC").
		Find(&classes).Error
	if err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) DeleteCascade(ctx context.Context, classID string) (int64, int64, error) {
	var students, exams int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("class_id = ?", classID).Delete(&models.Student{})
		if res.Error != nil {
			return res.Error
		}
		students = res.RowsAffected

		res = tx.Where("class_id = ?", classID).Delete(&models.Exam{})
		if res.Error != nil {
			return res.Error
		}
		exams = res.RowsAffected

		res = tx.Where("id = ?", classID).Delete(&models.Class{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return students, exams, nil
}
