package user

import (
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"gorm.io/gorm"
)

type UserContainer struct {
	Repo    UserRepository
	Service UserService
	Handler *Handler
}

func NewUserContainer(db *gorm.DB, schools tenancy.SchoolRepository) *UserContainer {
	repo := NewRepository(db)
	service := NewService(repo, schools)
	handler := NewHandler(service)

	return &UserContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
