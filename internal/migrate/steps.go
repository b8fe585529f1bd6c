package migrate

import (
	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
	"gorm.io/gorm"
)

// Steps is the full schema history. Append only.
func Steps() []Migration {
	return []Migration{
		{Version: 1, Name: "base_schema", Up: baseSchema},
		{Version: 2, Name: "cascade_foreign_keys", Up: exec(cascadeForeignKeys...)},
		{Version: 3, Name: "attempt_uniqueness", Up: exec(attemptUniqueness...)},
	}
}

func exec(statements ...string) func(tx *gorm.DB) error {
	return func(tx *gorm.DB) error {
		for _, stmt := range statements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	}
}

func baseSchema(tx *gorm.DB) error {
	if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return err
	}
	return tx.AutoMigrate(
		&tenancy.School{},
		&user.User{},
		&question.Subject{},
		&question.Question{},
		&exam.Exam{},
		&exam.AccessCode{},
		&attempt.Attempt{},
		&attempt.AnswerSlot{},
	)
}

// Deleting a school, student or exam removes everything hanging off it.
// Answer slots keep no key on questions: a deleted question scores as wrong.
var cascadeForeignKeys = []string{
	`ALTER TABLE users ADD CONSTRAINT fk_users_school
		FOREIGN KEY (school_id) REFERENCES schools(id) ON DELETE CASCADE`,
	`ALTER TABLE subjects ADD CONSTRAINT fk_subjects_school
		FOREIGN KEY (school_id) REFERENCES schools(id) ON DELETE CASCADE`,
	`ALTER TABLE exams ADD CONSTRAINT fk_exams_subject
		FOREIGN KEY (subject_id) REFERENCES subjects(id) ON DELETE CASCADE`,
	`ALTER TABLE exams ADD CONSTRAINT fk_exams_school
		FOREIGN KEY (school_id) REFERENCES schools(id) ON DELETE CASCADE`,
	`ALTER TABLE exam_access_codes ADD CONSTRAINT fk_access_codes_exam
		FOREIGN KEY (exam_id) REFERENCES exams(id) ON DELETE CASCADE`,
	`ALTER TABLE exam_access_codes ADD CONSTRAINT fk_access_codes_student
		FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE`,
	`ALTER TABLE exam_sessions ADD CONSTRAINT fk_exam_sessions_exam
		FOREIGN KEY (exam_id) REFERENCES exams(id) ON DELETE CASCADE`,
	`ALTER TABLE exam_sessions ADD CONSTRAINT fk_exam_sessions_student
		FOREIGN KEY (student_id) REFERENCES users(id) ON DELETE CASCADE`,
}

// One open and one submitted attempt per student and exam at most.
var attemptUniqueness = []string{
	`CREATE UNIQUE INDEX ux_exam_sessions_open
		ON exam_sessions (exam_id, student_id) WHERE status = 'in_progress'`,
	`CREATE UNIQUE INDEX ux_exam_sessions_submitted
		ON exam_sessions (exam_id, student_id) WHERE status IN ('completed', 'submitted')`,
}
