package dto

import (
	"time"

	"github.com/exambel/exambel-api/internal/models"
)

// ClassCreateRequest is the class creation payload.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ClassResponse serializes class data.
type ClassResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TeacherID string    `json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewClassResponse converts a class model into a DTO.
func NewClassResponse(class models.Class) ClassResponse {
	return ClassResponse{
		ID:        class.ID,
		Name:      class.Name,
		TeacherID: class.TeacherID,
		CreatedAt: class.CreatedAt,
	}
}
