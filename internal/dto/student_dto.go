package dto

import (
	"time"

	"github.com/exambel/exambel-api/internal/models"
)

// StudentCreateRequest is the single-student creation payload.
type StudentCreateRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=255"`
	Grade   string `json:"grade" validate:"required,max=64"`
	ClassID string `json:"class_id" validate:"required"`
}

// StudentResponse serializes student data.
type StudentResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Grade       string    `json:"grade"`
	ClassID     string    `json:"class_id"`
	TeacherID   string    `json:"teacher_id"`
	StudentCode string    `json:"student_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// StudentImportFailure records one roster line that could not be imported.
type StudentImportFailure struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// StudentImportResponse summarizes a bulk roster import. Rows are independent
// writes, so created students and failures can coexist.
type StudentImportResponse struct {
	Created  []StudentResponse      `json:"created"`
	Failures []StudentImportFailure `json:"failures"`
}

// NewStudentResponse converts a student model into a DTO.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:          student.ID,
		Name:        student.Name,
		Grade:       student.Grade,
		ClassID:     student.ClassID,
		TeacherID:   student.TeacherID,
		StudentCode: student.StudentCode,
		CreatedAt:   student.CreatedAt,
	}
}
