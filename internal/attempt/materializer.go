package attempt

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/sirupsen/logrus"
)

// Materializer opens attempts: it replaces any unfinished attempt of the pair
// with a fresh one holding a new random ordering of the subject's questions.
type Materializer struct {
	repo    Repository
	bank    question.Bank
	now     func() time.Time
	shuffle func(n int, swap func(i, j int))
}

type MaterializerOption func(*Materializer)

// WithShuffle replaces the random permutation of question positions.
func WithShuffle(shuffle func(n int, swap func(i, j int))) MaterializerOption {
	return func(m *Materializer) {
		m.shuffle = shuffle
	}
}

func NewMaterializer(repo Repository, bank question.Bank, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		repo:    repo,
		bank:    bank,
		now:     time.Now,
		shuffle: rand.Shuffle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Begin re-runs the entry checks inside the transaction that creates the
// attempt, so a decision cannot go stale between evaluation and creation.
func (m *Materializer) Begin(ctx context.Context, req Request) (*Attempt, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"student_id": req.Student.ID,
		"exam_code":  req.ExamCode,
	})

	pre, err := evaluate(ctx, m.repo, req)
	if err != nil {
		return nil, storeErr(err)
	}
	if pre.Denied() {
		return nil, denial(pre.Reason)
	}

	questions, err := m.bank.ListBySubject(ctx, pre.Exam.SubjectID)
	if err != nil {
		log.WithError(err).Error("Failed to load questions for attempt")
		return nil, storeErr(err)
	}
	if len(questions) == 0 {
		log.WithField("exam_id", pre.Exam.ID).Warn("Exam subject has no questions")
		return nil, ErrNoQuestions
	}

	var created *Attempt
	err = m.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.LockStudent(ctx, req.Student.ID); err != nil {
			return err
		}

		d, err := evaluate(ctx, tx, req)
		if err != nil {
			return err
		}
		if d.Denied() {
			return denial(d.Reason)
		}

		now := m.now()
		if d.Code != nil {
			ok, err := tx.ConsumeAccessCode(ctx, d.Code.ID, now)
			if err != nil {
				return err
			}
			if !ok {
				return denial(ReasonInvalidOrMissingCode)
			}
		}

		removed, err := tx.DeleteInProgress(ctx, d.Exam.ID, req.Student.ID)
		if err != nil {
			return err
		}
		if removed > 0 {
			log.WithField("exam_id", d.Exam.ID).Info("Discarded unfinished attempt before restart")
		}

		order := make([]int, len(questions))
		for i := range order {
			order[i] = i
		}
		m.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		a := &Attempt{
			ID:        uuid.New(),
			ExamID:    d.Exam.ID,
			StudentID: req.Student.ID,
			StartTime: now,
			Status:    StatusInProgress,
		}
		slots := make([]AnswerSlot, len(order))
		for pos, qi := range order {
			slots[pos] = AnswerSlot{
				ID:         uuid.New(),
				AttemptID:  a.ID,
				QuestionID: questions[qi].ID,
				Position:   pos,
			}
		}
		if err := tx.CreateAttempt(ctx, a, slots); err != nil {
			if config.IsUniqueViolation(err) {
				return ErrConcurrentStart
			}
			return err
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.WithFields(logrus.Fields{
		"attempt_id": created.ID,
		"exam_id":    created.ExamID,
		"questions":  len(questions),
	}).Info("Attempt started")
	return created, nil
}
