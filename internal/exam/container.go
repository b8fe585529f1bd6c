package exam

import (
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
	"gorm.io/gorm"
)

type ExamContainer struct {
	Repo    Repository
	Service ExamService
	Handler *Handler
}

func NewExamContainer(db *gorm.DB, subjects question.Service, bank question.Bank, users user.UserRepository) *ExamContainer {
	repo := NewRepository(db)
	service := NewService(repo, subjects, bank, users)
	handler := NewHandler(service)

	return &ExamContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
