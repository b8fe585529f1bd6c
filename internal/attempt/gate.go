package attempt

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
)

// Request is one student's bid to enter an exam. An empty AccessCode selects
// quick mode; a non-empty one selects direct mode.
type Request struct {
	Student         *user.User
	ExamCode        string
	AccessCode      string
	RequesterTenant *uuid.UUID
}

func (r Request) direct() bool {
	return r.AccessCode != ""
}

type Decision struct {
	Outcome Outcome
	Reason  Reason
	Exam    *exam.Exam
	// Code is the access code matched in direct mode.
	Code *exam.AccessCode
}

func (d Decision) Denied() bool {
	return d.Outcome == OutcomeDenied
}

func deny(reason Reason, e *exam.Exam) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason, Exam: e}
}

// Gate decides whether a request may open an attempt. It never writes.
type Gate struct {
	reader Reader
}

func NewGate(reader Reader) *Gate {
	return &Gate{reader: reader}
}

func (g *Gate) Evaluate(ctx context.Context, req Request) (Decision, error) {
	return evaluate(ctx, g.reader, req)
}

// evaluate applies the entry checks in order; the first failing check names
// the denial.
func evaluate(ctx context.Context, r Reader, req Request) (Decision, error) {
	e, err := r.FindExamByCode(ctx, strings.TrimSpace(req.ExamCode))
	if err != nil {
		return Decision{}, err
	}
	if e == nil || !e.IsActive {
		return deny(ReasonNotFound, nil), nil
	}

	if req.RequesterTenant != nil && !tenancy.SameTenant(req.RequesterTenant, e.SchoolID) {
		return deny(ReasonWrongTenant, e), nil
	}
	if req.Student.SchoolID != nil {
		school, err := r.FindSchool(ctx, *req.Student.SchoolID)
		if err != nil {
			return Decision{}, err
		}
		if school != nil && school.Restricted {
			return deny(ReasonRestricted, e), nil
		}
	}

	locked, err := r.HasTerminalAttempt(ctx, e.ID, req.Student.ID)
	if err != nil {
		return Decision{}, err
	}
	if locked {
		return deny(ReasonAlreadyLocked, e), nil
	}

	codes, err := r.ListAccessCodes(ctx, e.ID, req.Student.ID)
	if err != nil {
		return Decision{}, err
	}
	d := Decision{Exam: e}
	if req.direct() {
		supplied := strings.TrimSpace(req.AccessCode)
		for i := range codes {
			if codes[i].Code == supplied && !codes[i].Consumed() {
				d.Code = &codes[i]
				break
			}
		}
		if d.Code == nil {
			return deny(ReasonInvalidOrMissingCode, e), nil
		}
	} else if !e.AllowQuickStart && len(codes) == 0 {
		return deny(ReasonInvalidOrMissingCode, e), nil
	}

	if e.AutoStartOnCode {
		d.Outcome = OutcomeStartImmediately
	} else {
		d.Outcome = OutcomeRequireConfirmation
	}
	return d, nil
}
