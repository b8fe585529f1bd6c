package exam_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saulo-duarte/examgate-lambda/internal/exam"
)

func TestGenerateCode(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 4, 9, 7, 5, 0, time.UTC)

	t.Run("SixDigits", func(t *testing.T) {
		code, err := exam.GenerateCode(ctx, func(context.Context, string) (bool, error) { return false, nil }, now)
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q should have six characters", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("code %q should be numeric", code)
			}
		}
	})

	t.Run("RetriesOnCollision", func(t *testing.T) {
		calls := 0
		_, err := exam.GenerateCode(ctx, func(context.Context, string) (bool, error) {
			calls++
			return calls < 3, nil
		}, now)
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if calls != 3 {
			t.Errorf("lookups = %d, want 3", calls)
		}
	})

	t.Run("FallsBackToClock", func(t *testing.T) {
		code, err := exam.GenerateCode(ctx, func(context.Context, string) (bool, error) { return true, nil }, now)
		if err != nil {
			t.Fatalf("GenerateCode failed: %v", err)
		}
		if code != "090705" {
			t.Errorf("code = %q, want 090705", code)
		}
	})

	t.Run("LookupError", func(t *testing.T) {
		boom := errors.New("db down")
		if _, err := exam.GenerateCode(ctx, func(context.Context, string) (bool, error) { return false, boom }, now); !errors.Is(err, boom) {
			t.Errorf("got %v, want %v", err, boom)
		}
	})
}
