package attempt_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
)

func lockAttempt(f *fixture) {
	end := time.Now()
	score := 1.0
	a := attempt.Attempt{
		ID:        uuid.New(),
		ExamID:    f.exam.ID,
		StudentID: f.student.ID,
		StartTime: end.Add(-time.Minute),
		EndTime:   &end,
		Score:     &score,
		Status:    attempt.StatusCompleted,
	}
	f.store.st.attempts[a.ID] = a
}

func TestGateEvaluate(t *testing.T) {
	ctx := context.Background()
	otherSchool := uuid.New()

	tests := []struct {
		name    string
		setup   func(f *fixture, req *attempt.Request)
		outcome attempt.Outcome
		reason  attempt.Reason
	}{
		{
			name:    "QuickStartAllowed",
			setup:   func(f *fixture, req *attempt.Request) {},
			outcome: attempt.OutcomeStartImmediately,
		},
		{
			name:    "UnknownExamCode",
			setup:   func(f *fixture, req *attempt.Request) { req.ExamCode = "999999" },
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonNotFound,
		},
		{
			name: "InactiveExam",
			setup: func(f *fixture, req *attempt.Request) {
				f.updateExam(func(e *exam.Exam) { e.IsActive = false })
			},
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonNotFound,
		},
		{
			name:    "WrongTenant",
			setup:   func(f *fixture, req *attempt.Request) { req.RequesterTenant = &otherSchool },
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonWrongTenant,
		},
		{
			name: "WrongTenantBeforeLock",
			setup: func(f *fixture, req *attempt.Request) {
				lockAttempt(f)
				req.RequesterTenant = &otherSchool
			},
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonWrongTenant,
		},
		{
			name: "RestrictedSchool",
			setup: func(f *fixture, req *attempt.Request) {
				s := f.store.st.schools[f.school.ID]
				s.Restricted = true
				f.store.st.schools[f.school.ID] = s
			},
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonRestricted,
		},
		{
			name:    "AlreadyLocked",
			setup:   func(f *fixture, req *attempt.Request) { lockAttempt(f) },
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonAlreadyLocked,
		},
		{
			name: "QuickStartNotAllowedWithoutCode",
			setup: func(f *fixture, req *attempt.Request) {
				f.updateExam(func(e *exam.Exam) { e.AllowQuickStart = false })
			},
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonInvalidOrMissingCode,
		},
		{
			name: "QuickStartWithIssuedCode",
			setup: func(f *fixture, req *attempt.Request) {
				f.updateExam(func(e *exam.Exam) { e.AllowQuickStart = false })
				f.addCode("654321", true)
			},
			outcome: attempt.OutcomeStartImmediately,
		},
		{
			name: "DirectValidCode",
			setup: func(f *fixture, req *attempt.Request) {
				f.addCode("654321", false)
				req.AccessCode = "654321"
			},
			outcome: attempt.OutcomeStartImmediately,
		},
		{
			name: "DirectWrongCode",
			setup: func(f *fixture, req *attempt.Request) {
				f.addCode("654321", false)
				req.AccessCode = "111111"
			},
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonInvalidOrMissingCode,
		},
		{
			name: "DirectConsumedCode",
			setup: func(f *fixture, req *attempt.Request) {
				f.addCode("654321", true)
				req.AccessCode = "654321"
			},
			outcome: attempt.OutcomeDenied,
			reason:  attempt.ReasonInvalidOrMissingCode,
		},
		{
			name: "ConfirmationRequired",
			setup: func(f *fixture, req *attempt.Request) {
				f.updateExam(func(e *exam.Exam) { e.AutoStartOnCode = false })
			},
			outcome: attempt.OutcomeRequireConfirmation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := f.request()
			tt.setup(f, &req)

			d, err := attempt.NewGate(f.store).Evaluate(ctx, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Outcome != tt.outcome {
				t.Fatalf("expected outcome %s, got %s (reason %s)", tt.outcome, d.Outcome, d.Reason)
			}
			if d.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, d.Reason)
			}
		})
	}
}

func TestGateMatchesDirectCode(t *testing.T) {
	f := newFixture()
	code := f.addCode("654321", false)
	req := f.request()
	req.AccessCode = " 654321 "

	d, err := attempt.NewGate(f.store).Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Code == nil || d.Code.ID != code.ID {
		t.Fatalf("expected matched code %s, got %+v", code.ID, d.Code)
	}
}

func TestGateUnscopedRequester(t *testing.T) {
	f := newFixture()
	req := f.request()
	req.RequesterTenant = nil

	d, err := attempt.NewGate(f.store).Evaluate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Denied() {
		t.Fatalf("expected entry, got denial %s", d.Reason)
	}
	if !tenancy.SameTenant(d.Exam.SchoolID, &f.school.ID) {
		t.Errorf("expected exam of fixture school")
	}
}
