package attempt

import (
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"gorm.io/gorm"
)

type AttemptContainer struct {
	Repo    Repository
	Service Service
	Handler *Handler
}

func NewAttemptContainer(db *gorm.DB, bank question.Bank, rdb *redis.Client) *AttemptContainer {
	repo := NewRepository(db)
	service := NewService(repo, bank)
	window := config.GetDuration("START_RATE_WINDOW", time.Minute)
	handler := NewHandler(service,
		NewLimiter(rdb, config.GetInt("START_RATE_LIMIT", 300), window),
		NewLimiter(rdb, config.GetInt("START_ENTRY_RATE_LIMIT", 10), window),
	)

	return &AttemptContainer{
		Repo:    repo,
		Service: service,
		Handler: handler,
	}
}
