package attempt

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/sirupsen/logrus"
)

// Normalize is the canonical form answers are stored and compared in.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsCorrect grades a normalized answer. A single known label is compared to
// the correct label; anything else is compared to the correct option's text.
func IsCorrect(q *question.Question, normalized string) bool {
	if normalized == "" {
		return false
	}
	correct := Normalize(q.CorrectAnswer)
	if len(normalized) == 1 && slices.Contains(question.Labels, normalized) {
		return normalized == correct
	}
	text, ok := q.OptionText(correct)
	if !ok {
		return false
	}
	return normalized == Normalize(text)
}

// Recorder stores answers on open attempts.
type Recorder struct {
	repo Repository
	bank question.Bank
}

func NewRecorder(repo Repository, bank question.Bank) *Recorder {
	return &Recorder{repo: repo, bank: bank}
}

// openAttempt loads the attempt and its slots for studentID and rejects
// anything the student may no longer touch.
func openAttempt(ctx context.Context, repo Repository, studentID, attemptID uuid.UUID, forUpdate bool) (*Attempt, []AnswerSlot, error) {
	a, err := repo.FindAttempt(ctx, attemptID, forUpdate)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, ErrAttemptNotFound
	}
	if a.StudentID != studentID {
		return nil, nil, ErrNotOwner
	}
	if a.Status.IsTerminal() {
		return nil, nil, ErrAttemptLocked
	}
	slots, err := repo.ListSlots(ctx, attemptID)
	if err != nil {
		return nil, nil, err
	}
	return a, slots, nil
}

// Record normalizes raw, grades it and writes it to the slot at index. A nil
// or blank answer clears the slot.
func (r *Recorder) Record(ctx context.Context, studentID, attemptID uuid.UUID, index int, raw *string) (*AnswerSlot, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"attempt_id": attemptID,
		"index":      index,
	})

	var saved AnswerSlot
	err := r.repo.Transaction(ctx, func(tx Repository) error {
		_, slots, err := openAttempt(ctx, tx, studentID, attemptID, true)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(slots) {
			return ErrInvalidIndex
		}
		slot := slots[index]

		normalized := ""
		if raw != nil {
			normalized = Normalize(*raw)
		}

		correct := false
		if normalized != "" {
			questions, err := r.bank.GetByIDs(ctx, []uuid.UUID{slot.QuestionID})
			if err != nil {
				return err
			}
			if q, ok := questions[slot.QuestionID]; ok {
				correct = IsCorrect(&q, normalized)
			} else {
				log.WithFields(logrus.Fields{
					"slot_id":     slot.ID,
					"question_id": slot.QuestionID,
				}).Warn("Answered slot points at a missing question")
			}
		}

		if normalized == "" {
			slot.SelectedAnswer = nil
		} else {
			slot.SelectedAnswer = &normalized
		}
		slot.IsCorrect = &correct

		if err := tx.SaveSlot(ctx, &slot); err != nil {
			return err
		}
		saved = slot
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return &saved, nil
}

// SlotView is what a student sees for one position of an attempt.
type SlotView struct {
	Index          int               `json:"question_index"`
	Total          int               `json:"total_questions"`
	QuestionID     uuid.UUID         `json:"question_id"`
	Text           string            `json:"text"`
	Options        []question.Option `json:"options"`
	SelectedAnswer *string           `json:"selected_answer"`
	Marks          int               `json:"marks"`
}

// View renders the slot at index without revealing the correct answer.
func (r *Recorder) View(ctx context.Context, studentID, attemptID uuid.UUID, index int) (*SlotView, error) {
	_, slots, err := openAttempt(ctx, r.repo, studentID, attemptID, false)
	if err != nil {
		return nil, storeErr(err)
	}
	if index < 0 || index >= len(slots) {
		return nil, ErrInvalidIndex
	}
	slot := slots[index]

	questions, err := r.bank.GetByIDs(ctx, []uuid.UUID{slot.QuestionID})
	if err != nil {
		return nil, storeErr(err)
	}
	q, ok := questions[slot.QuestionID]
	if !ok {
		config.WithContext(ctx).WithFields(logrus.Fields{
			"attempt_id":  attemptID,
			"slot_id":     slot.ID,
			"question_id": slot.QuestionID,
		}).Warn("Slot points at a missing question")
		return nil, ErrQuestionMissing
	}

	return &SlotView{
		Index:          index,
		Total:          len(slots),
		QuestionID:     q.ID,
		Text:           q.Text,
		Options:        q.OptionList(),
		SelectedAnswer: slot.SelectedAnswer,
		Marks:          q.EffectiveMarks(),
	}, nil
}
