package exam

import (
	"time"

	"github.com/google/uuid"
)

type CreateExamDTO struct {
	SubjectID       uuid.UUID `json:"subject_id" validate:"required"`
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description" validate:"max=2000"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1,max=1440"`
	AutoStartOnCode bool      `json:"auto_start_on_code"`
	AllowQuickStart bool      `json:"allow_quick_start"`
}

// UpdateExamDTO changes only the fields that are present.
type UpdateExamDTO struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,min=1,max=1440"`
	IsActive        *bool   `json:"is_active"`
	AutoStartOnCode *bool   `json:"auto_start_on_code"`
	AllowQuickStart *bool   `json:"allow_quick_start"`
}

type IssueAccessCodeDTO struct {
	StudentID uuid.UUID `json:"student_id" validate:"required"`
}

// AvailableExam is what a student sees; the entry code is handed out by
// the proctor.
type AvailableExam struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      int       `json:"total_marks"`
	CreatedAt       time.Time `json:"created_at"`
}
