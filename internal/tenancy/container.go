package tenancy

import "gorm.io/gorm"

type TenancyContainer struct {
	Repo    SchoolRepository
	Service Service
	Handler *Handler
}

func NewTenancyContainer(db *gorm.DB) *TenancyContainer {
	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(service)

	return &TenancyContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
