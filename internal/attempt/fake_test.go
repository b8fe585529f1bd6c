package attempt_test

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
)

type state struct {
	exams    map[uuid.UUID]exam.Exam
	schools  map[uuid.UUID]tenancy.School
	users    map[uuid.UUID]user.User
	codes    map[uuid.UUID]exam.AccessCode
	attempts map[uuid.UUID]attempt.Attempt
	slots    map[uuid.UUID]attempt.AnswerSlot
}

func (s state) clone() state {
	return state{
		exams:    maps.Clone(s.exams),
		schools:  maps.Clone(s.schools),
		users:    maps.Clone(s.users),
		codes:    maps.Clone(s.codes),
		attempts: maps.Clone(s.attempts),
		slots:    maps.Clone(s.slots),
	}
}

// fakeStore keeps everything in memory. Transactions run one at a time and
// roll back by restoring a snapshot.
type fakeStore struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
}

func newFakeStore() *fakeStore {
	return &fakeStore{st: state{
		exams:    map[uuid.UUID]exam.Exam{},
		schools:  map[uuid.UUID]tenancy.School{},
		users:    map[uuid.UUID]user.User{},
		codes:    map[uuid.UUID]exam.AccessCode{},
		attempts: map[uuid.UUID]attempt.Attempt{},
		slots:    map[uuid.UUID]attempt.AnswerSlot{},
	}}
}

func (f *fakeStore) Transaction(_ context.Context, fn func(tx attempt.Repository) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := f.st.clone()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.st = snapshot
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) FindExamByCode(_ context.Context, code string) (*exam.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.st.exams {
		if e.Code == code {
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindExamByID(_ context.Context, id uuid.UUID) (*exam.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.st.exams[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (f *fakeStore) FindSchool(_ context.Context, id uuid.UUID) (*tenancy.School, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.st.schools[id]; ok {
		return &s, nil
	}
	return nil, nil
}

func (f *fakeStore) ListAccessCodes(_ context.Context, examID, studentID uuid.UUID) ([]exam.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []exam.AccessCode
	for _, c := range f.st.codes {
		if c.ExamID == examID && c.StudentID == studentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) HasTerminalAttempt(_ context.Context, examID, studentID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.st.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Status.IsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FindStudentByUsername(_ context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.st.users {
		if u.Username == username && u.Role == auth.RoleStudent {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindStudentByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.st.users[id]; ok && u.Role == auth.RoleStudent {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeStore) LockStudent(context.Context, uuid.UUID) error {
	return nil
}

func (f *fakeStore) ConsumeAccessCode(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.st.codes[id]
	if !ok || c.UsedAt != nil {
		return false, nil
	}
	c.UsedAt = &at
	f.st.codes[id] = c
	return true, nil
}

func (f *fakeStore) DeleteInProgress(_ context.Context, examID, studentID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, a := range f.st.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Status == attempt.StatusInProgress {
			f.deleteAttemptLocked(id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CreateAttempt(_ context.Context, a *attempt.Attempt, slots []attempt.AnswerSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.attempts[a.ID] = *a
	for _, s := range slots {
		f.st.slots[s.ID] = s
	}
	return nil
}

func (f *fakeStore) FindAttempt(_ context.Context, id uuid.UUID, _ bool) (*attempt.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.st.attempts[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *fakeStore) ListSlots(_ context.Context, attemptID uuid.UUID) ([]attempt.AnswerSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attempt.AnswerSlot
	for _, s := range f.st.slots {
		if s.AttemptID == attemptID {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b attempt.AnswerSlot) int { return a.Position - b.Position })
	return out, nil
}

func (f *fakeStore) SaveSlot(_ context.Context, slot *attempt.AnswerSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.slots[slot.ID] = *slot
	return nil
}

func (f *fakeStore) SaveAttempt(_ context.Context, a *attempt.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st.attempts[a.ID] = *a
	return nil
}

func (f *fakeStore) DeleteAttempt(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteAttemptLocked(id)
	return nil
}

func (f *fakeStore) deleteAttemptLocked(id uuid.UUID) {
	delete(f.st.attempts, id)
	for sid, s := range f.st.slots {
		if s.AttemptID == id {
			delete(f.st.slots, sid)
		}
	}
}

func (f *fakeStore) ListResults(_ context.Context, filter attempt.ResultFilter) ([]attempt.ResultRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attempt.ResultRow
	for _, a := range f.st.attempts {
		if !a.Status.IsTerminal() {
			continue
		}
		e := f.st.exams[a.ExamID]
		u := f.st.users[a.StudentID]
		if filter.StudentID != nil && a.StudentID != *filter.StudentID {
			continue
		}
		if filter.ExamID != nil && a.ExamID != *filter.ExamID {
			continue
		}
		if filter.Tenant != nil && !tenancy.SameTenant(e.SchoolID, filter.Tenant) {
			continue
		}
		out = append(out, attempt.ResultRow{
			AttemptID:  a.ID,
			ExamID:     a.ExamID,
			ExamTitle:  e.Title,
			TotalMarks: e.TotalMarks,
			SchoolID:   e.SchoolID,
			StudentID:  a.StudentID,
			Username:   u.Username,
			FullName:   u.FullName,
			Score:      a.Score,
			Status:     a.Status,
			StartTime:  a.StartTime,
			EndTime:    a.EndTime,
		})
	}
	return out, nil
}

// inProgress counts open attempts of the pair.
func (f *fakeStore) inProgress(examID, studentID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.st.attempts {
		if a.ExamID == examID && a.StudentID == studentID && a.Status == attempt.StatusInProgress {
			n++
		}
	}
	return n
}

type fakeBank struct {
	mu        sync.Mutex
	questions map[uuid.UUID]question.Question
}

func newFakeBank() *fakeBank {
	return &fakeBank{questions: map[uuid.UUID]question.Question{}}
}

func (b *fakeBank) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]question.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []question.Question
	for _, q := range b.questions {
		if q.SubjectID == subjectID {
			out = append(out, q)
		}
	}
	slices.SortFunc(out, func(a, b question.Question) int { return strings.Compare(a.ID.String(), b.ID.String()) })
	return out, nil
}

func (b *fakeBank) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]question.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := map[uuid.UUID]question.Question{}
	for _, id := range ids {
		if q, ok := b.questions[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (b *fakeBank) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.questions, id)
}

// fixture is one school with one subject, one exam and one student.
type fixture struct {
	store   *fakeStore
	bank    *fakeBank
	school  tenancy.School
	student user.User
	exam    exam.Exam
	q1, q2  question.Question
}

func newFixture() *fixture {
	f := &fixture{store: newFakeStore(), bank: newFakeBank()}

	f.school = tenancy.School{ID: uuid.New(), Name: "North High", RegistrationCode: "NORTH"}
	f.store.st.schools[f.school.ID] = f.school

	f.student = user.User{
		ID:       uuid.New(),
		Username: "ana",
		FullName: "Ana Souza",
		Role:     auth.RoleStudent,
		SchoolID: &f.school.ID,
	}
	f.store.st.users[f.student.ID] = f.student

	subjectID := uuid.New()
	f.q1 = newQuestion(subjectID, "A", 1)
	f.q2 = newQuestion(subjectID, "B", 2)
	f.bank.questions[f.q1.ID] = f.q1
	f.bank.questions[f.q2.ID] = f.q2

	f.exam = exam.Exam{
		ID:              uuid.New(),
		SubjectID:       subjectID,
		SchoolID:        &f.school.ID,
		Title:           "Algebra I",
		Code:            "123456",
		DurationMinutes: 30,
		TotalMarks:      3,
		IsActive:        true,
		AutoStartOnCode: true,
		AllowQuickStart: true,
	}
	f.store.st.exams[f.exam.ID] = f.exam
	return f
}

func newQuestion(subjectID uuid.UUID, correct string, marks int) question.Question {
	return question.Question{
		ID:            uuid.New(),
		SubjectID:     subjectID,
		Text:          "Pick " + correct,
		Options:       []byte(`[{"label":"A","text":"Paris"},{"label":"B","text":"Rome"},{"label":"C","text":"Lima"}]`),
		CorrectAnswer: correct,
		Marks:         marks,
	}
}

func (f *fixture) updateExam(mutate func(e *exam.Exam)) {
	e := f.store.st.exams[f.exam.ID]
	mutate(&e)
	f.store.st.exams[f.exam.ID] = e
	f.exam = e
}

func (f *fixture) addCode(code string, used bool) exam.AccessCode {
	c := exam.AccessCode{ID: uuid.New(), ExamID: f.exam.ID, StudentID: f.student.ID, Code: code}
	if used {
		at := time.Now()
		c.UsedAt = &at
	}
	f.store.st.codes[c.ID] = c
	return c
}

func (f *fixture) studentCtx() context.Context {
	return auth.WithClaims(context.Background(), &auth.Claims{
		UserID:   f.student.ID.String(),
		Role:     auth.RoleStudent,
		TenantID: f.school.ID.String(),
		Scope:    auth.ScopeFull,
	})
}

func (f *fixture) request() attempt.Request {
	return attempt.Request{
		Student:         &f.student,
		ExamCode:        f.exam.Code,
		RequesterTenant: f.student.SchoolID,
	}
}
