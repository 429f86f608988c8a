package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/codegen"
	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
)

var (
	// ErrExamNotFound indicates the exam does not exist.
	ErrExamNotFound = errors.New("exam not found")
	// ErrExamNotOwned indicates the exam belongs to a different teacher.
	ErrExamNotOwned = errors.New("exam not owned by caller")
	// ErrInvalidQuestions indicates the question payload failed schema
	// validation.
	ErrInvalidQuestions = errors.New("invalid question payload")
)

// questionSchema enforces the stored question shape at the boundary: exactly
// four non-empty options and an answer index inside them.
const questionSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["text", "options", "correct_answer_index"],
		"properties": {
			"text": {"type": "string", "minLength": 1},
			"options": {
				"type": "array",
				"minItems": 4,
				"maxItems": 4,
				"items": {"type": "string", "minLength": 1}
			},
			"correct_answer_index": {"type": "integer", "minimum": 0, "maximum": 3}
		}
	}
}`

// ExamService exposes teacher-scoped exam management plus the public
// answer-free lookups used by students taking an exam.
type ExamService interface {
	Create(ctx context.Context, teacherID string, payload dto.ExamCreateRequest) (dto.ExamResponse, error)
	List(ctx context.Context, teacherID string) ([]dto.ExamResponse, error)
	Delete(ctx context.Context, teacherID, examID string) error
	PublicByID(ctx context.Context, examID string) (dto.PublicExamResponse, error)
	PublicByCode(ctx context.Context, code string) (dto.PublicExamResponse, error)
}

type examService struct {
	exams     repository.ExamRepository
	classes   repository.ClassRepository
	realtime  realtime.Publisher
	validator *validator.Validate
	schema    *jsonschema.Schema
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// NewExamService constructs the exam service.
func NewExamService(exams repository.ExamRepository, classes repository.ClassRepository, publisher realtime.Publisher, validate *validator.Validate, logger zerolog.Logger) ExamService {
	return &examService{
		exams:     exams,
		classes:   classes,
		realtime:  publisher,
		validator: validate,
		schema:    jsonschema.MustCompileString("questions.json", questionSchema),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "exam_service").Logger(),
	}
}

func (s *examService) Create(ctx context.Context, teacherID string, payload dto.ExamCreateRequest) (dto.ExamResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExamResponse{}, err
	}

	class, err := s.ownedClass(ctx, teacherID, payload.ClassID)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	questions, err := s.sanitizeQuestions(payload.Questions)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	encoded, err := models.EncodeQuestions(questions)
	if err != nil {
		return dto.ExamResponse{}, err
	}

	code, err := codegen.GenerateUnique(ctx, codegen.ExamCodeLength, func(ctx context.Context, code string) (bool, error) {
		return s.exams.CodeExists(ctx, code)
	})
	if err != nil {
		return dto.ExamResponse{}, err
	}

	exam := models.Exam{
		ID:        uuid.NewString(),
		Title:     s.sanitizer.Sanitize(strings.TrimSpace(payload.Title)),
		ClassID:   class.ID,
		ClassName: class.Name,
		TeacherID: class.TeacherID,
		ExamCode:  code,
		Questions: encoded,
	}
	if err := s.exams.Create(ctx, &exam); err != nil {
		return dto.ExamResponse{}, err
	}

	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionExams, TeacherID: class.TeacherID, ClassID: class.ID})
	return dto.NewExamResponse(exam)
}

func (s *examService) List(ctx context.Context, teacherID string) ([]dto.ExamResponse, error) {
	exams, err := s.exams.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ExamResponse, 0, len(exams))
	for _, exam := range exams {
		response, err := dto.NewExamResponse(exam)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	return responses, nil
}

func (s *examService) Delete(ctx context.Context, teacherID, examID string) error {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}
	if exam.TeacherID != teacherID {
		return ErrExamNotOwned
	}

	if err := s.exams.Delete(ctx, examID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrExamNotFound
		}
		return err
	}

	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionExams, TeacherID: teacherID, ClassID: exam.ClassID})
	return nil
}

func (s *examService) PublicByID(ctx context.Context, examID string) (dto.PublicExamResponse, error) {
	exam, err := s.exams.GetByID(ctx, examID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PublicExamResponse{}, ErrExamNotFound
		}
		return dto.PublicExamResponse{}, err
	}
	return dto.NewPublicExamResponse(exam)
}

func (s *examService) PublicByCode(ctx context.Context, code string) (dto.PublicExamResponse, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return dto.PublicExamResponse{}, ErrExamNotFound
	}

	exam, err := s.exams.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.PublicExamResponse{}, ErrExamNotFound
		}
		return dto.PublicExamResponse{}, err
	}
	return dto.NewPublicExamResponse(exam)
}

// sanitizeQuestions strips markup from free-text fields and re-checks the
// cleaned payload against the question schema before it is stored.
func (s *examService) sanitizeQuestions(payloads []dto.QuestionPayload) ([]models.Question, error) {
	questions := make([]models.Question, 0, len(payloads))
	document := make([]interface{}, 0, len(payloads))
	for _, payload := range payloads {
		options := make([]string, 0, len(payload.Options))
		rawOptions := make([]interface{}, 0, len(payload.Options))
		for _, option := range payload.Options {
			clean := s.sanitizer.Sanitize(strings.TrimSpace(option))
			options = append(options, clean)
			rawOptions = append(rawOptions, clean)
		}

		text := s.sanitizer.Sanitize(strings.TrimSpace(payload.Text))
		questions = append(questions, models.Question{
			Text:               text,
			Options:            options,
			CorrectAnswerIndex: payload.CorrectAnswerIndex,
		})
		document = append(document, map[string]interface{}{
			"text":                 text,
			"options":              rawOptions,
			"correct_answer_index": payload.CorrectAnswerIndex,
		})
	}

	if err := s.schema.Validate(document); err != nil {
		s.logger.Debug().Err(err).Msg("question payload rejected by schema")
		return nil, ErrInvalidQuestions
	}
	return questions, nil
}

func (s *examService) ownedClass(ctx context.Context, teacherID, classID string) (models.Class, error) {
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
