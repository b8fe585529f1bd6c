package attempt_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
)

func TestIsCorrect(t *testing.T) {
	q := newQuestion(uuid.New(), "A", 1)

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{"Label", "A", true},
		{"LowercaseLabel", "a", true},
		{"PaddedLabel", " A ", true},
		{"WrongLabel", "B", false},
		{"OptionText", "paris", true},
		{"PaddedOptionText", "  Paris ", true},
		{"WrongOptionText", "Rome", false},
		{"Empty", "", false},
		{"Blank", "   ", false},
		{"UnknownLabel", "Z", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := attempt.IsCorrect(&q, attempt.Normalize(tt.answer)); got != tt.want {
				t.Errorf("IsCorrect(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestIsCorrectMissingCorrectOption(t *testing.T) {
	q := newQuestion(uuid.New(), "E", 1)
	if attempt.IsCorrect(&q, "PARIS") {
		t.Error("expected text answer to fail when the correct label has no option")
	}
}

func startAttempt(t *testing.T, f *fixture) *attempt.Attempt {
	t.Helper()
	a, err := attempt.NewMaterializer(f.store, f.bank).Begin(context.Background(), f.request())
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}
	return a
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresNormalizedAnswer", func(t *testing.T) {
		f := newFixture()
		a := startAttempt(t, f)
		r := attempt.NewRecorder(f.store, f.bank)

		answer := " b "
		slot, err := r.Record(ctx, f.student.ID, a.ID, 0, &answer)
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if slot.SelectedAnswer == nil || *slot.SelectedAnswer != "B" {
			t.Fatalf("expected stored answer B, got %v", slot.SelectedAnswer)
		}
		want := slot.QuestionID == f.q2.ID
		if slot.IsCorrect == nil || *slot.IsCorrect != want {
			t.Errorf("expected correctness %v, got %v", want, slot.IsCorrect)
		}
	})

	t.Run("BlankClearsSlot", func(t *testing.T) {
		f := newFixture()
		a := startAttempt(t, f)
		r := attempt.NewRecorder(f.store, f.bank)

		answer := "A"
		if _, err := r.Record(ctx, f.student.ID, a.ID, 1, &answer); err != nil {
			t.Fatalf("record failed: %v", err)
		}
		blank := "  "
		slot, err := r.Record(ctx, f.student.ID, a.ID, 1, &blank)
		if err != nil {
			t.Fatalf("record failed: %v", err)
		}
		if slot.SelectedAnswer != nil {
			t.Errorf("expected cleared answer, got %q", *slot.SelectedAnswer)
		}
		if slot.IsCorrect == nil || *slot.IsCorrect {
			t.Errorf("expected cleared slot to be incorrect")
		}
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		f := newFixture()
		a := startAttempt(t, f)
		r := attempt.NewRecorder(f.store, f.bank)

		answer := "A"
		for _, index := range []int{-1, 2} {
			if _, err := r.Record(ctx, f.student.ID, a.ID, index, &answer); !errors.Is(err, attempt.ErrInvalidIndex) {
				t.Errorf("index %d: expected ErrInvalidIndex, got %v", index, err)
			}
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		f := newFixture()
		a := startAttempt(t, f)
		r := attempt.NewRecorder(f.store, f.bank)

		answer := "A"
		_, err := r.Record(ctx, uuid.New(), a.ID, 0, &answer)
		if !errors.Is(err, attempt.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if !errors.Is(err, attempt.ErrAccessDenied) {
			t.Errorf("expected access denied kind, got %v", err)
		}
	})

	t.Run("UnknownAttempt", func(t *testing.T) {
		f := newFixture()
		r := attempt.NewRecorder(f.store, f.bank)

		_, err := r.View(ctx, f.student.ID, uuid.New(), 0)
		if !errors.Is(err, attempt.ErrAttemptNotFound) {
			t.Fatalf("expected ErrAttemptNotFound, got %v", err)
		}
	})

	t.Run("ViewHidesCorrectAnswer", func(t *testing.T) {
		f := newFixture()
		a := startAttempt(t, f)
		r := attempt.NewRecorder(f.store, f.bank)

		view, err := r.View(ctx, f.student.ID, a.ID, 0)
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		if view.Total != 2 || view.Index != 0 {
			t.Errorf("unexpected position %d/%d", view.Index, view.Total)
		}
		if len(view.Options) != 3 {
			t.Errorf("expected 3 options, got %d", len(view.Options))
		}
	})

	t.Run("ViewMissingQuestion", func(t *testing.T) {
		f := newFixture()
		a := startAttempt(t, f)
		r := attempt.NewRecorder(f.store, f.bank)

		view, err := r.View(ctx, f.student.ID, a.ID, 0)
		if err != nil {
			t.Fatalf("view failed: %v", err)
		}
		f.bank.remove(view.QuestionID)

		if _, err := r.View(ctx, f.student.ID, a.ID, 0); !errors.Is(err, attempt.ErrQuestionMissing) {
			t.Fatalf("expected ErrQuestionMissing, got %v", err)
		}
	})
}
