package models

import "time"

// Class is a group of students owned by exactly one teacher.
type Class struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	TeacherID string    `gorm:"size:36;index;not null" json:"teacher_id"`
	CreatedAt time.Time `json:"created_at"`
}
