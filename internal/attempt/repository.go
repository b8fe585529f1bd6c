package attempt

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func first[T any](q *gorm.DB, dest *T, conds ...any) (*T, error) {
	if err := q.First(dest, conds...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dest, nil
}

func (r *repository) Transaction(ctx context.Context, fn func(tx Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) FindExamByCode(ctx context.Context, code string) (*exam.Exam, error) {
	return first(r.db.WithContext(ctx), &exam.Exam{}, "code = ?", code)
}

func (r *repository) FindExamByID(ctx context.Context, id uuid.UUID) (*exam.Exam, error) {
	return first(r.db.WithContext(ctx), &exam.Exam{}, "id = ?", id)
}

func (r *repository) FindSchool(ctx context.Context, id uuid.UUID) (*tenancy.School, error) {
	return first(r.db.WithContext(ctx), &tenancy.School{}, "id = ?", id)
}

func (r *repository) ListAccessCodes(ctx context.Context, examID, studentID uuid.UUID) ([]exam.AccessCode, error) {
	var codes []exam.AccessCode
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ?", examID, studentID).
		Order("created_at ASC").
		Find(&codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *repository) HasTerminalAttempt(ctx context.Context, examID, studentID uuid.UUID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&Attempt{}).
		Where("exam_id = ? AND student_id = ? AND status IN ?", examID, studentID, TerminalStatuses()).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) FindStudentByUsername(ctx context.Context, username string) (*user.User, error) {
	return first(r.db.WithContext(ctx), &user.User{}, "username = ? AND role = ?", username, auth.RoleStudent)
}

func (r *repository) FindStudentByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return first(r.db.WithContext(ctx), &user.User{}, "id = ? AND role = ?", id, auth.RoleStudent)
}

func (r *repository) LockStudent(ctx context.Context, id uuid.UUID) error {
	var u user.User
	return r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(&u, "id = ?", id).Error
}

func (r *repository) ConsumeAccessCode(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&exam.AccessCode{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	return res.RowsAffected == 1, res.Error
}

// DeleteInProgress removes the open attempt of the pair; its slots go with it
// through the foreign key.
func (r *repository) DeleteInProgress(ctx context.Context, examID, studentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("exam_id = ? AND student_id = ? AND status = ?", examID, studentID, StatusInProgress).
		Delete(&Attempt{})
	return res.RowsAffected, res.Error
}

func (r *repository) CreateAttempt(ctx context.Context, a *Attempt, slots []AnswerSlot) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Slots").Create(a).Error; err != nil {
		return err
	}
	if len(slots) == 0 {
		return nil
	}
	return db.Create(&slots).Error
}

func (r *repository) FindAttempt(ctx context.Context, id uuid.UUID, forUpdate bool) (*Attempt, error) {
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return first(q, &Attempt{}, "id = ?", id)
}

func (r *repository) ListSlots(ctx context.Context, attemptID uuid.UUID) ([]AnswerSlot, error) {
	var slots []AnswerSlot
	err := r.db.WithContext(ctx).
		Where("attempt_id = ?", attemptID).
		Order("position ASC").
		Find(&slots).Error
	if err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *repository) SaveSlot(ctx context.Context, slot *AnswerSlot) error {
	return r.db.WithContext(ctx).
		Model(&AnswerSlot{}).
		Where("id = ?", slot.ID).
		Updates(map[string]any{
			"selected_answer": slot.SelectedAnswer,
			"is_correct":      slot.IsCorrect,
		}).Error
}

func (r *repository) SaveAttempt(ctx context.Context, a *Attempt) error {
	return r.db.WithContext(ctx).
		Model(&Attempt{}).
		Where("id = ?", a.ID).
		Updates(map[string]any{
			"status":   a.Status,
			"score":    a.Score,
			"end_time": a.EndTime,
		}).Error
}

func (r *repository) DeleteAttempt(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Attempt{}, "id = ?", id).Error
}

func (r *repository) ListResults(ctx context.Context, filter ResultFilter) ([]ResultRow, error) {
	q := r.db.WithContext(ctx).
		Table("exam_sessions AS s").
		Select(`s.id AS attempt_id, s.exam_id, e.title AS exam_title, e.total_marks, e.school_id,
			s.student_id, u.username, u.full_name, u.student_class,
			s.score, s.status, s.start_time, s.end_time`).
		Joins("JOIN exams e ON e.id = s.exam_id").
		Joins("JOIN users u ON u.id = s.student_id").
		Where("s.status IN ?", TerminalStatuses())

	if filter.StudentID != nil {
		q = q.Where("s.student_id = ?", *filter.StudentID)
	}
	if filter.ExamID != nil {
		q = q.Where("s.exam_id = ?", *filter.ExamID)
	}
	q = q.Scopes(tenancy.Scope("e.school_id", filter.Tenant))

	var rows []ResultRow
	if err := q.Order("s.end_time DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
