package migrate

import (
	"strings"
	"testing"

	"gorm.io/gorm"
)

func TestSteps(t *testing.T) {
	steps := Steps()
	if len(steps) == 0 {
		t.Fatal("expected migration steps")
	}
	if err := validate(steps); err != nil {
		t.Fatalf("schema history invalid: %v", err)
	}
	if steps[0].Version != 1 {
		t.Errorf("expected history to start at version 1, got %d", steps[0].Version)
	}
}

func TestValidate(t *testing.T) {
	noop := func(*gorm.DB) error { return nil }

	tests := []struct {
		name    string
		steps   []Migration
		wantErr string
	}{
		{
			name:  "Ordered",
			steps: []Migration{{1, "a", noop}, {2, "b", noop}},
		},
		{
			name:    "Duplicate",
			steps:   []Migration{{1, "a", noop}, {1, "b", noop}},
			wantErr: "out of order",
		},
		{
			name:    "Descending",
			steps:   []Migration{{2, "a", noop}, {1, "b", noop}},
			wantErr: "out of order",
		},
		{
			name:    "MissingUp",
			steps:   []Migration{{1, "a", nil}},
			wantErr: "incomplete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(tt.steps)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAttemptUniquenessCoversLegacyStatus(t *testing.T) {
	for _, stmt := range attemptUniqueness {
		if strings.Contains(stmt, "completed") && !strings.Contains(stmt, "'submitted'") {
			t.Errorf("submitted index must cover legacy rows: %s", stmt)
		}
	}
}
