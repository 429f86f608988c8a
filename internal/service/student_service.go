package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/codegen"
	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
)

var (
	// ErrStudentNotFound indicates the student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrStudentNotOwned indicates the student belongs to a different teacher.
	ErrStudentNotOwned = errors.New("student not owned by caller")
)

// StudentService exposes teacher-scoped student management including the bulk
// roster import.
type StudentService interface {
	Create(ctx context.Context, teacherID string, payload dto.StudentCreateRequest) (dto.StudentResponse, error)
	// BulkImport reads one student name per line, skipping blank lines. Rows
	// are independent writes: a failing row is reported and the rest proceed.
	BulkImport(ctx context.Context, teacherID, classID, grade string, source io.Reader) (dto.StudentImportResponse, error)
	List(ctx context.Context, teacherID, classID string) ([]dto.StudentResponse, error)
	Delete(ctx context.Context, teacherID, studentID string) error
}

type studentService struct {
	students  repository.StudentRepository
	classes   repository.ClassRepository
	realtime  realtime.Publisher
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(students repository.StudentRepository, classes repository.ClassRepository, publisher realtime.Publisher, validate *validator.Validate, logger zerolog.Logger) StudentService {
	return &studentService{
		students:  students,
		classes:   classes,
		realtime:  publisher,
		validator: validate,
		logger:    logger.With().Str("component", "student_service").Logger(),
	}
}

func (s *studentService) Create(ctx context.Context, teacherID string, payload dto.StudentCreateRequest) (dto.StudentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.StudentResponse{}, err
	}

	class, err := s.ownedClass(ctx, teacherID, payload.ClassID)
	if err != nil {
		return dto.StudentResponse{}, err
	}

	student, err := s.createInClass(ctx, class, strings.TrimSpace(payload.Name), strings.TrimSpace(payload.Grade))
	if err != nil {
		return dto.StudentResponse{}, err
	}

	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionStudents, TeacherID: class.TeacherID, ClassID: class.ID})
	return dto.NewStudentResponse(student), nil
}

func (s *studentService) BulkImport(ctx context.Context, teacherID, classID, grade string, source io.Reader) (dto.StudentImportResponse, error) {
	class, err := s.ownedClass(ctx, teacherID, classID)
	if err != nil {
		return dto.StudentImportResponse{}, err
	}

	response := dto.StudentImportResponse{
		Created:  []dto.StudentResponse{},
		Failures: []dto.StudentImportFailure{},
	}

	scanner := bufio.NewScanner(source)
	line := 0
	for scanner.Scan() {
		line++
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			continue
		}

		student, err := s.createInClass(ctx, class, name, strings.TrimSpace(grade))
		if err != nil {
			s.logger.Warn().Err(err).Int("line", line).Msg("roster row import failed")
			response.Failures = append(response.Failures, dto.StudentImportFailure{
				Line:   line,
				Name:   name,
				Reason: err.Error(),
			})
			continue
		}
		response.Created = append(response.Created, dto.NewStudentResponse(student))
	}
	if err := scanner.Err(); err != nil {
		return dto.StudentImportResponse{}, err
	}

	if len(response.Created) > 0 {
		s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionStudents, TeacherID: class.TeacherID, ClassID: class.ID})
	}
	return response, nil
}

func (s *studentService) List(ctx context.Context, teacherID, classID string) ([]dto.StudentResponse, error) {
	var (
		students []models.Student
		err      error
	)
	if classID != "" {
		if _, err := s.ownedClass(ctx, teacherID, classID); err != nil {
			return nil, err
		}
		students, err = s.students.ListByClass(ctx, classID)
	} else {
		students, err = s.students.ListByTeacher(ctx, teacherID)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	for _, student := range students {
		responses = append(responses, dto.NewStudentResponse(student))
	}
	return responses, nil
}

func (s *studentService) Delete(ctx context.Context, teacherID, studentID string) error {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}
	if student.TeacherID != teacherID {
		return ErrStudentNotOwned
	}

	if err := s.students.Delete(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		return err
	}

	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionStudents, TeacherID: teacherID, ClassID: student.ClassID})
	return nil
}

// createInClass writes one student. TeacherID is derived from the validated
// class, never from the request, which keeps the denormalized field equal to
// the owning class's teacher.
func (s *studentService) createInClass(ctx context.Context, class models.Class, name, grade string) (models.Student, error) {
	code, err := codegen.GenerateUnique(ctx, codegen.StudentCodeLength, func(ctx context.Context, code string) (bool, error) {
		return s.students.CodeExists(ctx, class.TeacherID, code)
	})
	if err != nil {
		return models.Student{}, err
	}

	student := models.Student{
		ID:          uuid.NewString(),
		Name:        name,
		Grade:       grade,
		ClassID:     class.ID,
		TeacherID:   class.TeacherID,
		StudentCode: code,
	}
	if err := s.students.Create(ctx, &student); err != nil {
		return models.Student{}, err
	}
	return student, nil
}

func (s *studentService) ownedClass(ctx context.Context, teacherID, classID string) (models.Class, error) {
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
