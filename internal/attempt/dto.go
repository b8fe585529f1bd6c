package attempt

import (
	"github.com/google/uuid"
)

// StartDTO opens an exam. Username identifies the student when the caller
// has no full student session.
type StartDTO struct {
	Username   string `json:"username" validate:"omitempty,max=100"`
	ExamCode   string `json:"exam_code" validate:"required,len=6,numeric"`
	AccessCode string `json:"access_code" validate:"omitempty,len=6,numeric"`
}

type AnswerDTO struct {
	Answer *string `json:"answer" validate:"omitempty,max=2000"`
}

type Confirmation struct {
	ExamID          uuid.UUID `json:"exam_id"`
	ExamTitle       string    `json:"exam_title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalMarks      int       `json:"total_marks"`
	StudentName     string    `json:"student_name"`
	Username        string    `json:"username"`
}

type StartResponse struct {
	Outcome      Outcome       `json:"outcome"`
	AttemptID    *uuid.UUID    `json:"attempt_id,omitempty"`
	Token        string        `json:"token,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
}

type SubmitResponse struct {
	Result       *Result `json:"result"`
	SessionEnded bool    `json:"session_ended"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Kind   Kind   `json:"kind,omitempty"`
	Reason Reason `json:"reason,omitempty"`
}
