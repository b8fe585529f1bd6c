package attempt

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	util "github.com/saulo-duarte/examgate-lambda/internal/utils"
)

type SlotResult struct {
	Index          int       `json:"question_index"`
	QuestionID     uuid.UUID `json:"question_id"`
	Text           string    `json:"text,omitempty"`
	SelectedAnswer *string   `json:"selected_answer"`
	IsCorrect      bool      `json:"is_correct"`
	Marks          int       `json:"marks"`
	CorrectAnswer  string    `json:"correct_answer,omitempty"`
}

type ResultDetail struct {
	AttemptID       uuid.UUID    `json:"attempt_id"`
	ExamID          uuid.UUID    `json:"exam_id"`
	ExamTitle       string       `json:"exam_title"`
	StudentID       uuid.UUID    `json:"student_id"`
	Score           float64      `json:"score"`
	TotalMarks      int          `json:"total_marks"`
	StartTime       time.Time    `json:"start_time"`
	EndTime         *time.Time   `json:"end_time"`
	TimeUsedSeconds int64        `json:"time_used_seconds"`
	Slots           []SlotResult `json:"slots"`
}

// resultsFilter narrows listings to what the caller may see: students get
// their own attempts, staff get their tenant.
func resultsFilter(claims *auth.Claims, examID *uuid.UUID) (ResultFilter, error) {
	f := ResultFilter{ExamID: examID}
	if claims.Role == auth.RoleStudent {
		id, err := claims.UserUUID()
		if err != nil {
			return f, err
		}
		f.StudentID = &id
		return f, nil
	}
	f.Tenant = tenancy.EffectiveTenant(claims)
	return f, nil
}

// authorizeResult checks that claims may read attempt a of an exam owned by
// schoolID.
func authorizeResult(claims *auth.Claims, a *Attempt, schoolID *uuid.UUID) error {
	if claims.Role == auth.RoleStudent {
		id, err := claims.UserUUID()
		if err != nil {
			return err
		}
		if a.StudentID != id {
			return ErrAttemptNotFound
		}
		return nil
	}
	if tenancy.VerifyOwnership(claims, schoolID) != nil {
		return ErrAttemptNotFound
	}
	return nil
}

func buildDetail(a *Attempt, examTitle string, totalMarks int, slots []AnswerSlot, questions map[uuid.UUID]question.Question, revealAnswers bool) *ResultDetail {
	d := &ResultDetail{
		AttemptID:  a.ID,
		ExamID:     a.ExamID,
		ExamTitle:  examTitle,
		StudentID:  a.StudentID,
		TotalMarks: totalMarks,
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		Slots:      make([]SlotResult, 0, len(slots)),
	}
	if a.Score != nil {
		d.Score = *a.Score
	}
	if a.EndTime != nil {
		d.TimeUsedSeconds = int64(a.EndTime.Sub(a.StartTime).Seconds())
	}
	for i, s := range slots {
		sr := SlotResult{
			Index:          i,
			QuestionID:     s.QuestionID,
			SelectedAnswer: s.SelectedAnswer,
			IsCorrect:      s.IsCorrect != nil && *s.IsCorrect,
		}
		if q, ok := questions[s.QuestionID]; ok {
			sr.Text = q.Text
			sr.Marks = q.EffectiveMarks()
			if revealAnswers {
				sr.CorrectAnswer = q.CorrectAnswer
			}
		}
		d.Slots = append(d.Slots, sr)
	}
	return d
}

var exportHeader = []string{
	"username", "full_name", "class", "exam", "score", "total_marks", "percentage",
	"start_time", "end_time", "time_used_minutes",
}

func writeCSV(w io.Writer, rows []ResultRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		score := 0.0
		if r.Score != nil {
			score = *r.Score
		}
		pct := 0.0
		if r.TotalMarks > 0 {
			pct = score / float64(r.TotalMarks) * 100
		}
		record := []string{
			r.Username,
			r.FullName,
			r.StudentClass,
			r.ExamTitle,
			strconv.FormatFloat(score, 'f', -1, 64),
			strconv.Itoa(r.TotalMarks),
			fmt.Sprintf("%.1f", pct),
			util.FormatReportTime(&r.StartTime),
			util.FormatReportTime(r.EndTime),
			fmt.Sprintf("%.1f", r.TimeUsed().Minutes()),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// loadDetail assembles a result for a submitted attempt.
func loadDetail(ctx context.Context, repo Repository, bank question.Bank, claims *auth.Claims, attemptID uuid.UUID) (*ResultDetail, error) {
	a, err := repo.FindAttempt(ctx, attemptID, false)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAttemptNotFound
	}
	e, err := repo.FindExamByID(ctx, a.ExamID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrAttemptNotFound
	}
	if err := authorizeResult(claims, a, e.SchoolID); err != nil {
		return nil, err
	}
	if !a.Status.IsTerminal() {
		return nil, ErrNotSubmitted
	}

	slots, err := repo.ListSlots(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(slots))
	for i := range slots {
		ids[i] = slots[i].QuestionID
	}
	questions, err := bank.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return buildDetail(a, e.Title, e.TotalMarks, slots, questions, claims.Role != auth.RoleStudent), nil
}
