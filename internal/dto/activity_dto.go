package dto

import (
	"time"

	"github.com/exambel/exambel-api/internal/models"
)

// ActivityEntryResponse serializes one audit entry. Details stay opaque;
// rendering them into human text is a presentation concern.
type ActivityEntryResponse struct {
	ID        uint                   `json:"id"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewActivityEntryResponse converts an activity log model into a DTO.
func NewActivityEntryResponse(entry models.ActivityLog) ActivityEntryResponse {
	details := map[string]interface{}{}
	for key, value := range entry.Details {
		details[key] = value
	}

	return ActivityEntryResponse{
		ID:        entry.ID,
		Action:    entry.Action,
		Details:   details,
		CreatedAt: entry.CreatedAt,
	}
}
