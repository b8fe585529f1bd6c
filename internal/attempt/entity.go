package attempt

import (
	"time"

	"github.com/google/uuid"
)

// Attempt is one student's sitting of one exam.
type Attempt struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExamID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"exam_id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index" json:"student_id"`
	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Score     *float64   `json:"score,omitempty"`
	Status    Status     `gorm:"type:text;not null;index" json:"status"`

	Slots []AnswerSlot `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Attempt) TableName() string {
	return "exam_sessions"
}

// AnswerSlot binds one question to one position of an attempt. Position is
// fixed at creation and is the index students address.
type AnswerSlot struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_answers_attempt_position" json:"attempt_id"`
	QuestionID     uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	Position       int       `gorm:"not null;uniqueIndex:ux_answers_attempt_position" json:"position"`
	SelectedAnswer *string   `gorm:"type:text" json:"selected_answer,omitempty"`
	IsCorrect      *bool     `json:"is_correct,omitempty"`
}

func (AnswerSlot) TableName() string {
	return "answers"
}
