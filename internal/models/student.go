package models

import "time"

// Student belongs to exactly one class. TeacherID is denormalized from the
// owning class and must always equal that class's teacher; it is derived at
// write time, never taken from client input. StudentCode is unique within one
// teacher's students, enforced by the composite index.
type Student struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Grade       string    `gorm:"size:64" json:"grade"`
	ClassID     string    `gorm:"size:36;index;not null" json:"class_id"`
	TeacherID   string    `gorm:"size:36;not null;uniqueIndex:idx_students_teacher_code" json:"teacher_id"`
	StudentCode string    `gorm:"size:16;not null;uniqueIndex:idx_students_teacher_code" json:"student_code"`
	CreatedAt   time.Time `json:"created_at"`
}
