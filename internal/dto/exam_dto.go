package dto

import (
	"time"

	"github.com/exambel/exambel-api/internal/models"
)

// QuestionPayload is one multiple-choice question as sent and returned over
// the API.
type QuestionPayload struct {
	Text               string   `json:"text" validate:"required,min=1"`
	Options            []string `json:"options" validate:"required,len=4,dive,required"`
	CorrectAnswerIndex int      `json:"correct_answer_index" validate:"gte=0,lte=3"`
}

// ExamCreateRequest is the exam creation payload.
type ExamCreateRequest struct {
	Title     string            `json:"title" validate:"required,min=1,max=255"`
	ClassID   string            `json:"class_id" validate:"required"`
	Questions []QuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

// ExamResponse serializes an exam for its owning teacher, including answers.
type ExamResponse struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	ClassID   string            `json:"class_id"`
	ClassName string            `json:"class_name"`
	TeacherID string            `json:"teacher_id"`
	ExamCode  string            `json:"exam_code"`
	Questions []QuestionPayload `json:"questions"`
	CreatedAt time.Time         `json:"created_at"`
}

// PublicQuestion is a question with the correct answer withheld.
type PublicQuestion struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// PublicExamResponse is the answer-free payload served on the public exam
// link and code lookup.
type PublicExamResponse struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	ClassName string           `json:"class_name"`
	ExamCode  string           `json:"exam_code"`
	Questions []PublicQuestion `json:"questions"`
}

// NewExamResponse converts an exam model into the owner-facing DTO.
func NewExamResponse(exam models.Exam) (ExamResponse, error) {
	questions, err := exam.DecodeQuestions()
	if err != nil {
		return ExamResponse{}, err
	}

	payloads := make([]QuestionPayload, 0, len(questions))
	for _, q := range questions {
		payloads = append(payloads, QuestionPayload{
			Text:               q.Text,
			Options:            q.Options,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
		})
	}

	return ExamResponse{
		ID:        exam.ID,
		Title:     exam.Title,
		ClassID:   exam.ClassID,
		ClassName: exam.ClassName,
		TeacherID: exam.TeacherID,
		ExamCode:  exam.ExamCode,
		Questions: payloads,
		CreatedAt: exam.CreatedAt,
	}, nil
}

// NewPublicExamResponse converts an exam model into the public DTO, dropping
// correct answer indices.
func NewPublicExamResponse(exam models.Exam) (PublicExamResponse, error) {
	questions, err := exam.DecodeQuestions()
	if err != nil {
		return PublicExamResponse{}, err
	}

	public := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		public = append(public, PublicQuestion{Text: q.Text, Options: q.Options})
	}

	return PublicExamResponse{
		ID:        exam.ID,
		Title:     exam.Title,
		ClassName: exam.ClassName,
		ExamCode:  exam.ExamCode,
		Questions: public,
	}, nil
}
