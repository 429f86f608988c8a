package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/observability"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
)

var (
	// ErrClassNameRequired indicates an empty or whitespace-only class name.
	ErrClassNameRequired = errors.New("class name is required")
	// ErrClassNotFound indicates the class does not exist.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassNotOwned indicates the class belongs to a different teacher.
	ErrClassNotOwned = errors.New("class not owned by caller")
)

// ClassService exposes teacher-scoped class management.
type ClassService interface {
	Create(ctx context.Context, teacherID string, payload dto.ClassCreateRequest) (dto.ClassResponse, error)
	List(ctx context.Context, teacherID string) ([]dto.ClassResponse, error)
	Delete(ctx context.Context, teacherID, classID string) error
}

type classService struct {
	classes   repository.ClassRepository
	realtime  realtime.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewClassService constructs the class service.
func NewClassService(classes repository.ClassRepository, publisher realtime.Publisher, validate *validator.Validate, logger zerolog.Logger) ClassService {
	return &classService{
		classes:   classes,
		realtime:  publisher,
		validator: validate,
		logger:    logger.With().Str("component", "class_service").Logger(),
	}
}

func (s *classService) Create(ctx context.Context, teacherID string, payload dto.ClassCreateRequest) (dto.ClassResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ClassResponse{}, err
	}

	name := strings.TrimSpace(payload.Name)
	if name == "" {
		return dto.ClassResponse{}, ErrClassNameRequired
	}

	class := models.Class{
		ID:        uuid.NewString(),
		Name:      name,
		TeacherID: teacherID,
	}
	if err := s.classes.Create(ctx, &class); err != nil {
		return dto.ClassResponse{}, err
	}

	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionClasses, TeacherID: teacherID})
	return dto.NewClassResponse(class), nil
}

func (s *classService) List(ctx context.Context, teacherID string) ([]dto.ClassResponse, error) {
	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, dto.NewClassResponse(class))
	}
	return responses, nil
}

// Delete removes the class together with every student and exam referencing
// it. The cascade is a single atomic batch: no caller ever observes the class
// gone while its students or exams remain.
func (s *classService) Delete(ctx context.Context, teacherID, classID string) error {
	class, err := s.ownedClass(ctx, teacherID, classID)
	if err != nil {
		return err
	}

	students, exams, err := s.classes.DeleteCascade(ctx, class.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	observability.CascadeDeletes().WithLabelValues("class").Inc()
	s.logger.Info().
		Str("class_id", class.ID).
		Int64("students_removed", students).
		Int64("exams_removed", exams).
		Msg("class cascade delete completed")

	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionClasses, TeacherID: teacherID, ClassID: class.ID})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionStudents, TeacherID: teacherID, ClassID: class.ID})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionExams, TeacherID: teacherID, ClassID: class.ID})
	return nil
}

func (s *classService) ownedClass(ctx context.Context, teacherID, classID string) (models.Class, error) {
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Class{}, ErrClassNotFound
		}
		return models.Class{}, err
	}
	if class.TeacherID != teacherID {
		return models.Class{}, ErrClassNotOwned
	}
	return class, nil
}
