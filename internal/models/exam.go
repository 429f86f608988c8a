package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Exam is a multiple-choice exam owned by one teacher and attached to one
// class. ClassName is a point-in-time snapshot taken at creation; it is not
// kept in sync when the class is renamed. ExamCode is the public lookup key
// and must be unique across all exams.
type Exam struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	ClassID   string         `gorm:"size:36;index;not null" json:"class_id"`
	ClassName string         `gorm:"size:255" json:"class_name"`
	TeacherID string         `gorm:"size:36;index;not null" json:"teacher_id"`
	ExamCode  string         `gorm:"size:8;uniqueIndex;not null" json:"exam_code"`
	Questions datatypes.JSON `gorm:"type:json" json:"questions"`
	CreatedAt time.Time      `json:"created_at"`
}

// Question is one multiple-choice item. Options always holds exactly four
// entries and CorrectAnswerIndex points into it.
type Question struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
}

// DecodeQuestions unpacks the stored question payload.
func (e Exam) DecodeQuestions() ([]Question, error) {
	if len(e.Questions) == 0 {
		return nil, nil
	}

	var questions []Question
	if err := json.Unmarshal(e.Questions, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// EncodeQuestions packs a question sequence for storage.
func EncodeQuestions(questions []Question) (datatypes.JSON, error) {
	payload, err := json.Marshal(questions)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}
