package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"

	"github.com/exambel/exambel-api/internal/dto"
	"github.com/exambel/exambel-api/internal/models"
	"github.com/exambel/exambel-api/internal/repository"
)

const defaultActivityLimit = 50

// Actor is the authenticated account performing a state-changing action.
type Actor struct {
	ID   string
	Name string
	Role string
}

// ActivityRecorder appends audit entries. Recording is fire-and-forget: a
// failed append is logged locally and never fails the calling operation.
type ActivityRecorder interface {
	Record(ctx context.Context, action string, details map[string]interface{})
}

// ActivityService exposes the audit trail.
type ActivityService interface {
	ActivityRecorder
	Recent(ctx context.Context, limit int) ([]dto.ActivityEntryResponse, error)
}

type activityService struct {
	repo   repository.ActivityLogRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity log service.
func NewActivityService(repo repository.ActivityLogRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, action string, details map[string]interface{}) {
	action = strings.TrimSpace(action)
	if action == "" {
		s.logger.Warn().Msg("dropping audit entry with empty action")
		return
	}

	payload := datatypes.JSONMap{}
	for key, value := range details {
		payload[key] = value
	}

	entry := models.ActivityLog{Action: action, Details: payload}
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Error().Err(err).Str("action", action).Msg("failed to persist audit entry")
	}
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]dto.ActivityEntryResponse, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > 200 {
		limit = 200
	}

	entries, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ActivityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityEntryResponse(entry))
	}
	return responses, nil
}
