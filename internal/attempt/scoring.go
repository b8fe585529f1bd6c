package attempt

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/sirupsen/logrus"
)

// Scorer finalizes attempts. Every call recomputes each slot from the stored
// selection and the live question, so repeated submissions agree.
type Scorer struct {
	repo Repository
	bank question.Bank
	now  func() time.Time
}

func NewScorer(repo Repository, bank question.Bank) *Scorer {
	return &Scorer{repo: repo, bank: bank, now: time.Now}
}

type Result struct {
	AttemptID     uuid.UUID  `json:"attempt_id"`
	Score         float64    `json:"score"`
	PossibleMarks int        `json:"possible_marks"`
	Correct       int        `json:"correct"`
	Answered      int        `json:"answered"`
	Total         int        `json:"total_questions"`
	EndTime       *time.Time `json:"end_time"`
}

// grade recomputes every slot in place and returns the aggregate. Slots whose
// question no longer exists count as incorrect.
func grade(ctx context.Context, attemptID uuid.UUID, slots []AnswerSlot, questions map[uuid.UUID]question.Question) Result {
	log := config.WithContext(ctx).WithField("attempt_id", attemptID)
	res := Result{AttemptID: attemptID, Total: len(slots)}

	for i := range slots {
		slot := &slots[i]
		correct := false

		q, ok := questions[slot.QuestionID]
		if !ok {
			log.WithFields(logrus.Fields{
				"slot_id":     slot.ID,
				"question_id": slot.QuestionID,
			}).Warn("Scoring slot whose question is missing")
		} else {
			res.PossibleMarks += q.EffectiveMarks()
			if slot.SelectedAnswer != nil {
				correct = IsCorrect(&q, Normalize(*slot.SelectedAnswer))
			}
			if correct {
				res.Score += float64(q.EffectiveMarks())
				res.Correct++
			}
		}
		if slot.SelectedAnswer != nil && *slot.SelectedAnswer != "" {
			res.Answered++
		}
		slot.IsCorrect = &correct
	}
	return res
}

// Submit scores the attempt and moves it to the terminal state. Submitting a
// terminal attempt again recomputes the same score and keeps its end time.
func (s *Scorer) Submit(ctx context.Context, studentID, attemptID uuid.UUID) (*Result, error) {
	log := config.WithContext(ctx).WithField("attempt_id", attemptID)

	var res Result
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		a, err := tx.FindAttempt(ctx, attemptID, true)
		if err != nil {
			return err
		}
		if a == nil {
			return ErrAttemptNotFound
		}
		if a.StudentID != studentID {
			return ErrNotOwner
		}

		slots, err := tx.ListSlots(ctx, attemptID)
		if err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(slots))
		for i := range slots {
			ids[i] = slots[i].QuestionID
		}
		questions, err := s.bank.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		res = grade(ctx, attemptID, slots, questions)
		for i := range slots {
			if err := tx.SaveSlot(ctx, &slots[i]); err != nil {
				return err
			}
		}

		if a.EndTime == nil {
			end := s.now()
			a.EndTime = &end
		}
		score := res.Score
		a.Score = &score
		a.Status = StatusCompleted
		if err := tx.SaveAttempt(ctx, a); err != nil {
			return err
		}
		res.EndTime = a.EndTime
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	log.WithFields(logrus.Fields{
		"score":    res.Score,
		"correct":  res.Correct,
		"answered": res.Answered,
	}).Info("Attempt submitted")
	return &res, nil
}
