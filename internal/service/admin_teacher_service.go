package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/observability"
	"github.com/exambel/exambel-api/internal/realtime"
	"github.com/exambel/exambel-api/internal/repository"
)

const (
	overviewCacheKey    = "exambel:admin:overview"
	recentTeachersLimit = 5
)

var (
	// ErrTeacherNotFound indicates the target account does not exist or is
	// not a teacher.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrInvalidTransition indicates the approval lifecycle forbids the
	// requested status change. Rejection and approval are terminal.
	ErrInvalidTransition = errors.New("status transition not permitted")
)

// AdminTeacherService exposes the admin-side teacher management use cases.
type AdminTeacherService interface {
	List(ctx context.Context, req dto.TeacherListRequest) ([]dto.AccountResponse, error)
	Detail(ctx context.Context, teacherID string) (dto.TeacherDetailResponse, error)
	UpdateStatus(ctx context.Context, teacherID string, payload dto.TeacherStatusUpdateRequest, actor Actor) (dto.AccountResponse, error)
	Delete(ctx context.Context, teacherID string, actor Actor) error
	Overview(ctx context.Context) (dto.AdminOverviewResponse, error)
}

type adminTeacherService struct {
	accounts  repository.AccountRepository
	classes   repository.ClassRepository
	students  repository.StudentRepository
	exams     repository.ExamRepository
	activity  ActivityRecorder
	realtime  realtime.Publisher
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewAdminTeacherService constructs the admin teacher service.
func NewAdminTeacherService(accounts repository.AccountRepository, classes repository.ClassRepository, students repository.StudentRepository, exams repository.ExamRepository, activity ActivityRecorder, publisher realtime.Publisher, cache *redis.Client, cacheTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AdminTeacherService {
	return &adminTeacherService{
		accounts:  accounts,
		classes:   classes,
		students:  students,
		exams:     exams,
		activity:  activity,
		realtime:  publisher,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		tracer:    otel.Tracer("github.com/exambel/exambel-api/internal/service/admin_teacher"),
		logger:    logger.With().Str("component", "admin_teacher_service").Logger(),
	}
}

func (s *adminTeacherService) List(ctx context.Context, req dto.TeacherListRequest) ([]dto.AccountResponse, error) {
	filter := repository.AccountFilter{
		Role:   models.RoleTeacher,
		Search: strings.TrimSpace(req.Search),
		Limit:  req.Limit,
	}
	if status := strings.TrimSpace(req.Status); status != "" {
		filter.Status = models.Status(status)
	}

	teachers, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AccountResponse, 0, len(teachers))
	for _, teacher := range teachers {
		responses = append(responses, dto.NewAccountResponse(teacher))
	}
	return responses, nil
}

func (s *adminTeacherService) Detail(ctx context.Context, teacherID string) (dto.TeacherDetailResponse, error) {
	teacher, err := s.getTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherDetailResponse{}, err
	}

	classes, err := s.classes.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherDetailResponse{}, err
	}
	students, err := s.students.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherDetailResponse{}, err
	}
	exams, err := s.exams.ListByTeacher(ctx, teacherID)
	if err != nil {
		return dto.TeacherDetailResponse{}, err
	}

	detail := dto.TeacherDetailResponse{
		Teacher:  dto.NewAccountResponse(teacher),
		Classes:  make([]dto.ClassResponse, 0, len(classes)),
		Students: make([]dto.StudentResponse, 0, len(students)),
		Exams:    make([]dto.ExamResponse, 0, len(exams)),
	}
	for _, class := range classes {
		detail.Classes = append(detail.Classes, dto.NewClassResponse(class))
	}
	for _, student := range students {
		detail.Students = append(detail.Students, dto.NewStudentResponse(student))
	}
	for _, exam := range exams {
		response, err := dto.NewExamResponse(exam)
		if err != nil {
			return dto.TeacherDetailResponse{}, err
		}
		detail.Exams = append(detail.Exams, response)
	}
	return detail, nil
}

func (s *adminTeacherService) UpdateStatus(ctx context.Context, teacherID string, payload dto.TeacherStatusUpdateRequest, actor Actor) (dto.AccountResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AccountResponse{}, err
	}

	teacher, err := s.getTeacher(ctx, teacherID)
	if err != nil {
		return dto.AccountResponse{}, err
	}

	next := models.Status(payload.Status)
	if !teacher.Status.CanTransitionTo(next) {
		return dto.AccountResponse{}, ErrInvalidTransition
	}

	if err := s.accounts.UpdateStatus(ctx, teacherID, teacher.Status, next); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusConflict):
			// Another admin action moved the status between read and write.
			return dto.AccountResponse{}, ErrInvalidTransition
		case errors.Is(err, gorm.ErrRecordNotFound):
			return dto.AccountResponse{}, ErrTeacherNotFound
		default:
			return dto.AccountResponse{}, err
		}
	}

	action := models.ActionTeacherApproved
	if next == models.StatusRejected {
		action = models.ActionTeacherRejected
	}
	s.activity.Record(ctx, action, map[string]interface{}{
		"teacher_name": teacher.Name,
		"admin_name":   actor.Name,
	})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionTeachers, TeacherID: teacherID})

	teacher.Status = next
	return dto.NewAccountResponse(teacher), nil
}

// Delete removes the teacher account together with every class, student and
// exam it owns, as one atomic batch from the caller's perspective.
func (s *adminTeacherService) Delete(ctx context.Context, teacherID string, actor Actor) error {
	ctx, span := s.tracer.Start(ctx, "admin.delete_teacher", trace.WithAttributes(attribute.String("teacher_id", teacherID)))
	defer span.End()

	teacher, err := s.getTeacher(ctx, teacherID)
	if err != nil {
		return err
	}

	counts, err := s.accounts.DeleteTeacherCascade(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.Int64("classes_removed", counts.Classes),
		attribute.Int64("students_removed", counts.Students),
		attribute.Int64("exams_removed", counts.Exams),
	)
	observability.CascadeDeletes().WithLabelValues("teacher").Inc()

	s.activity.Record(ctx, models.ActionTeacherDeleted, map[string]interface{}{
		"teacher_name":     teacher.Name,
		"admin_name":       actor.Name,
		"classes_removed":  counts.Classes,
		"students_removed": counts.Students,
		"exams_removed":    counts.Exams,
	})

	s.invalidateOverview(ctx)
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionTeachers, TeacherID: teacherID})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionClasses, TeacherID: teacherID})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionStudents, TeacherID: teacherID})
	s.realtime.Publish(ctx, realtime.Event{Collection: realtime.CollectionExams, TeacherID: teacherID})

	return nil
}

func (s *adminTeacherService) Overview(ctx context.Context) (dto.AdminOverviewResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, overviewCacheKey).Result(); err == nil {
			var response dto.AdminOverviewResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				s.logger.Debug().Msg("overview cache hit")
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read overview cache")
		}
	}

	teacherCount, err := s.accounts.CountByRole(ctx, models.RoleTeacher)
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}
	studentCount, err := s.students.Count(ctx)
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}
	examCount, err := s.exams.Count(ctx)
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}

	recent, err := s.accounts.List(ctx, repository.AccountFilter{Role: models.RoleTeacher, Limit: recentTeachersLimit})
	if err != nil {
		return dto.AdminOverviewResponse{}, err
	}

	response := dto.AdminOverviewResponse{
		TeacherCount:   teacherCount,
		StudentCount:   studentCount,
		ExamCount:      examCount,
		RecentTeachers: make([]dto.AccountResponse, 0, len(recent)),
		GeneratedAt:    time.Now().UTC(),
	}
	for _, teacher := range recent {
		response.RecentTeachers = append(response.RecentTeachers, dto.NewAccountResponse(teacher))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, overviewCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store overview cache")
			}
		}
	}
	return response, nil
}

func (s *adminTeacherService) getTeacher(ctx context.Context, teacherID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Account{}, ErrTeacherNotFound
		}
		return models.Account{}, err
	}
	if account.Role != models.RoleTeacher {
		return models.Account{}, ErrTeacherNotFound
	}
	return account, nil
}

func (s *adminTeacherService) invalidateOverview(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, overviewCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate overview cache")
	}
}
