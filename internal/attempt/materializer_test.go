package attempt_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
)

func reverse(n int, swap func(i, j int)) {
	for i := 0; i < n/2; i++ {
		swap(i, n-1-i)
	}
}

func TestMaterializerBuildsPermutation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q3 := newQuestion(f.exam.SubjectID, "C", 1)
	f.bank.questions[q3.ID] = q3

	a := startAttempt(t, f)

	slots, err := f.store.ListSlots(ctx, a.ID)
	if err != nil {
		t.Fatalf("list slots: %v", err)
	}
	listed, err := f.bank.ListBySubject(ctx, f.exam.SubjectID)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(slots) != len(listed) {
		t.Fatalf("expected %d slots, got %d", len(listed), len(slots))
	}

	counts := map[uuid.UUID]int{}
	for _, q := range listed {
		counts[q.ID]++
	}
	for i, s := range slots {
		if s.Position != i {
			t.Errorf("slot %d has position %d", i, s.Position)
		}
		if s.AttemptID != a.ID {
			t.Errorf("slot %d belongs to attempt %s", i, s.AttemptID)
		}
		counts[s.QuestionID]--
	}
	for id, n := range counts {
		if n != 0 {
			t.Errorf("question %s appears %d times too few in the slots", id, n)
		}
	}
}

func TestMaterializerRestartBuildsFreshSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	q3 := newQuestion(f.exam.SubjectID, "C", 1)
	f.bank.questions[q3.ID] = q3
	m := attempt.NewMaterializer(f.store, f.bank, attempt.WithShuffle(reverse))

	first, err := m.Begin(ctx, f.request())
	if err != nil {
		t.Fatalf("first begin failed: %v", err)
	}
	second, err := m.Begin(ctx, f.request())
	if err != nil {
		t.Fatalf("second begin failed: %v", err)
	}

	if a, _ := f.store.FindAttempt(ctx, first.ID, false); a != nil {
		t.Fatal("expected the unfinished attempt to be replaced")
	}
	if old, _ := f.store.ListSlots(ctx, first.ID); len(old) != 0 {
		t.Fatalf("expected no slots of the replaced attempt, got %d", len(old))
	}

	listed, _ := f.bank.ListBySubject(ctx, f.exam.SubjectID)
	slots, _ := f.store.ListSlots(ctx, second.ID)
	if len(slots) != len(listed) {
		t.Fatalf("expected %d slots, got %d", len(listed), len(slots))
	}
	for i, s := range slots {
		want := listed[len(listed)-1-i].ID
		if s.Position != i || s.QuestionID != want {
			t.Errorf("position %d: expected question %s, got %s at position %d", i, want, s.QuestionID, s.Position)
		}
	}
}
