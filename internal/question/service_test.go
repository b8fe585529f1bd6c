package question_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
)

type fakeRepo struct {
	subjects  map[uuid.UUID]*question.Subject
	questions map[uuid.UUID]*question.Question
	locked    map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subjects:  map[uuid.UUID]*question.Subject{},
		questions: map[uuid.UUID]*question.Question{},
		locked:    map[uuid.UUID]bool{},
	}
}

func (f *fakeRepo) CreateSubject(_ context.Context, s *question.Subject) error {
	f.subjects[s.ID] = s
	return nil
}

func (f *fakeRepo) ListSubjects(_ context.Context, tenant *uuid.UUID) ([]question.Subject, error) {
	var out []question.Subject
	for _, s := range f.subjects {
		if tenant == nil || (s.SchoolID != nil && *s.SchoolID == *tenant) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindSubject(_ context.Context, id uuid.UUID) (*question.Subject, error) {
	return f.subjects[id], nil
}

func (f *fakeRepo) CreateQuestion(_ context.Context, q *question.Question) error {
	f.questions[q.ID] = q
	return nil
}

func (f *fakeRepo) FindQuestion(_ context.Context, id uuid.UUID) (*question.Question, error) {
	if q, ok := f.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeRepo) UpdateQuestion(_ context.Context, q *question.Question) error {
	f.questions[q.ID] = q
	return nil
}

func (f *fakeRepo) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	delete(f.questions, id)
	return nil
}

func (f *fakeRepo) InTerminalAttempt(_ context.Context, id uuid.UUID) (bool, error) {
	return f.locked[id], nil
}

func (f *fakeRepo) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]question.Question, error) {
	var out []question.Question
	for _, q := range f.questions {
		if q.SubjectID == subjectID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]question.Question, error) {
	out := map[uuid.UUID]question.Question{}
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out[id] = *q
		}
	}
	return out, nil
}

func adminCtx(school uuid.UUID) context.Context {
	return auth.WithClaims(context.Background(), &auth.Claims{
		UserID:   uuid.NewString(),
		Role:     auth.RoleAdmin,
		TenantID: school.String(),
	})
}

func validDTO() question.QuestionDTO {
	return question.QuestionDTO{
		Text: "2 + 2 = ?",
		Options: []question.OptionDTO{
			{Label: "a", Text: " 3 "},
			{Label: "B", Text: "4"},
			{Label: "C", Text: ""},
		},
		CorrectAnswer: " b",
	}
}

func TestAddQuestion(t *testing.T) {
	school := uuid.New()
	repo := newFakeRepo()
	svc := question.NewService(repo)
	ctx := adminCtx(school)

	subject, err := svc.CreateSubject(ctx, question.CreateSubjectDTO{Name: "Math"})
	if err != nil {
		t.Fatalf("CreateSubject failed: %v", err)
	}

	t.Run("NormalizesAndDefaultsMarks", func(t *testing.T) {
		q, err := svc.AddQuestion(ctx, subject.ID, validDTO())
		if err != nil {
			t.Fatalf("AddQuestion failed: %v", err)
		}
		if q.CorrectAnswer != "B" {
			t.Errorf("CorrectAnswer = %q, want B", q.CorrectAnswer)
		}
		if q.Marks != 1 {
			t.Errorf("Marks = %d, want default 1", q.Marks)
		}
		if opts := q.OptionList(); len(opts) != 2 || opts[0].Label != "A" || opts[0].Text != "3" {
			t.Errorf("options = %+v, want A and B only, trimmed", opts)
		}
		if _, ok := q.OptionText("C"); ok {
			t.Errorf("empty option C should be dropped")
		}
	})

	t.Run("RejectsInvalidQuestions", func(t *testing.T) {
		missingB := validDTO()
		missingB.Options = []question.OptionDTO{{Label: "A", Text: "x"}, {Label: "C", Text: "y"}}

		badLabel := validDTO()
		badLabel.Options = append(badLabel.Options, question.OptionDTO{Label: "F", Text: "z"})

		absentCorrect := validDTO()
		absentCorrect.CorrectAnswer = "C"

		tests := []struct {
			name string
			dto  question.QuestionDTO
			want error
		}{
			{"MissingB", missingB, question.ErrMissingRequiredOption},
			{"UnknownLabel", badLabel, question.ErrUnknownLabel},
			{"CorrectNotPresent", absentCorrect, question.ErrCorrectNotPresent},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := svc.AddQuestion(ctx, subject.ID, tt.dto); !errors.Is(err, tt.want) {
					t.Errorf("got %v, want %v", err, tt.want)
				}
			})
		}
	})

	t.Run("ForeignTenantCannotSeeSubject", func(t *testing.T) {
		if _, err := svc.AddQuestion(adminCtx(uuid.New()), subject.ID, validDTO()); !errors.Is(err, question.ErrSubjectNotFound) {
			t.Errorf("got %v, want ErrSubjectNotFound", err)
		}
	})
}

func TestQuestionImmutableOnceSubmitted(t *testing.T) {
	school := uuid.New()
	repo := newFakeRepo()
	svc := question.NewService(repo)
	ctx := adminCtx(school)

	subject, _ := svc.CreateSubject(ctx, question.CreateSubjectDTO{Name: "Science"})
	q, err := svc.AddQuestion(ctx, subject.ID, validDTO())
	if err != nil {
		t.Fatalf("AddQuestion failed: %v", err)
	}

	repo.locked[q.ID] = true

	if _, err := svc.UpdateQuestion(ctx, q.ID, validDTO()); !errors.Is(err, question.ErrQuestionLocked) {
		t.Errorf("got %v, want ErrQuestionLocked", err)
	}
	if err := svc.DeleteQuestion(ctx, q.ID); err != nil {
		t.Errorf("delete should still be allowed: %v", err)
	}
}
