package exam

import (
	"time"

	"github.com/google/uuid"
)

// Exam is owned by the tenant of its creator, fixed at creation.
type Exam struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubjectID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"subject_id"`
	CreatedBy       uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	SchoolID        *uuid.UUID `gorm:"type:uuid;index" json:"school_id,omitempty"`
	Title           string     `gorm:"type:text;not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	Code            string     `gorm:"type:varchar(6);not null;uniqueIndex" json:"code"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	TotalMarks      int        `gorm:"not null" json:"total_marks"`
	IsActive        bool       `gorm:"not null" json:"is_active"`
	AutoStartOnCode bool       `gorm:"not null" json:"auto_start_on_code"`
	AllowQuickStart bool       `gorm:"not null" json:"allow_quick_start"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// AccessCode is a one-time entry credential for one student on one exam.
type AccessCode struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExamID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_access_codes_pair" json:"exam_id"`
	StudentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_access_codes_pair" json:"student_id"`
	Code      string     `gorm:"type:varchar(6);not null;uniqueIndex" json:"code"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedBy uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (AccessCode) TableName() string {
	return "exam_access_codes"
}

func (c *AccessCode) Consumed() bool {
	return c.UsedAt != nil
}
