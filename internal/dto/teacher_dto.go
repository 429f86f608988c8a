package dto

import "time"

// TeacherListRequest defines filters for the admin teacher listing.
type TeacherListRequest struct {
	Status string
	Search string
	Limit  int
}

// TeacherStatusUpdateRequest carries an approval decision.
type TeacherStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// TeacherDetailResponse bundles a teacher with everything it owns.
type TeacherDetailResponse struct {
	Teacher  AccountResponse   `json:"teacher"`
	Classes  []ClassResponse   `json:"classes"`
	Students []StudentResponse `json:"students"`
	Exams    []ExamResponse    `json:"exams"`
}

// AdminOverviewResponse aggregates platform-wide counts for the admin
// dashboard.
type AdminOverviewResponse struct {
	TeacherCount   int64             `json:"teacher_count"`
	StudentCount   int64             `json:"student_count"`
	ExamCount      int64             `json:"exam_count"`
	RecentTeachers []AccountResponse `json:"recent_teachers"`
	GeneratedAt    time.Time         `json:"generated_at"`
}
