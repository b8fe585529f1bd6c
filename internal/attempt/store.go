package attempt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
)

// Reader holds the lookups the access gate needs. Finders return nil, nil
// when nothing matches.
type Reader interface {
	FindExamByCode(ctx context.Context, code string) (*exam.Exam, error)
	FindSchool(ctx context.Context, id uuid.UUID) (*tenancy.School, error)
	ListAccessCodes(ctx context.Context, examID, studentID uuid.UUID) ([]exam.AccessCode, error)
	HasTerminalAttempt(ctx context.Context, examID, studentID uuid.UUID) (bool, error)
}

type Repository interface {
	Reader

	// Transaction runs fn against a repository bound to one database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	FindStudentByUsername(ctx context.Context, username string) (*user.User, error)
	FindStudentByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	// LockStudent serializes attempt creation per student for the rest of
	// the transaction.
	LockStudent(ctx context.Context, id uuid.UUID) error
	// ConsumeAccessCode marks an unused code as used and reports whether it
	// was still unused.
	ConsumeAccessCode(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	FindExamByID(ctx context.Context, id uuid.UUID) (*exam.Exam, error)

	DeleteInProgress(ctx context.Context, examID, studentID uuid.UUID) (int64, error)
	CreateAttempt(ctx context.Context, a *Attempt, slots []AnswerSlot) error
	FindAttempt(ctx context.Context, id uuid.UUID, forUpdate bool) (*Attempt, error)
	ListSlots(ctx context.Context, attemptID uuid.UUID) ([]AnswerSlot, error)
	SaveSlot(ctx context.Context, slot *AnswerSlot) error
	SaveAttempt(ctx context.Context, a *Attempt) error
	DeleteAttempt(ctx context.Context, id uuid.UUID) error

	ListResults(ctx context.Context, filter ResultFilter) ([]ResultRow, error)
}

type ResultFilter struct {
	StudentID *uuid.UUID
	ExamID    *uuid.UUID
	Tenant    *uuid.UUID
}

// ResultRow is a submitted attempt joined with its exam and student.
type ResultRow struct {
	AttemptID    uuid.UUID  `json:"attempt_id"`
	ExamID       uuid.UUID  `json:"exam_id"`
	ExamTitle    string     `json:"exam_title"`
	TotalMarks   int        `json:"total_marks"`
	SchoolID     *uuid.UUID `json:"school_id,omitempty"`
	StudentID    uuid.UUID  `json:"student_id"`
	Username     string     `json:"username"`
	FullName     string     `json:"full_name"`
	StudentClass string     `json:"student_class,omitempty"`
	Score        *float64   `json:"score"`
	Status       Status     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
}

// TimeUsed is zero while the attempt has no end time.
func (r ResultRow) TimeUsed() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}
