package container

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/saulo-duarte/examgate-lambda/internal/attempt"
	"github.com/saulo-duarte/examgate-lambda/internal/auth"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/exam"
	"github.com/saulo-duarte/examgate-lambda/internal/question"
	"github.com/saulo-duarte/examgate-lambda/internal/tenancy"
	"github.com/saulo-duarte/examgate-lambda/internal/user"
)

type Container struct {
	TenancyContainer  *tenancy.TenancyContainer
	UserContainer     *user.UserContainer
	QuestionContainer *question.QuestionContainer
	ExamContainer     *exam.ExamContainer
	AttemptContainer  *attempt.AttemptContainer
	AuthHandler       *auth.Handler
	Redis             *redis.Client
}

func New(ctx context.Context) *Container {
	config.Init()
	auth.Init()
	config.InitCrypto()
	log := config.WithContext(ctx)

	if err := config.Connect(ctx, config.GetEnv("DATABASE_DSN")); err != nil {
		log.WithError(err).Fatal("Failed to connect to DB")
	}

	rdb, err := config.ConnectRedis(ctx, config.GetEnv("REDIS_URL"))
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, entry rate limiting disabled")
		rdb = nil
	}

	tenancyContainer := tenancy.NewTenancyContainer(config.DB)
	userContainer := user.NewUserContainer(config.DB, tenancyContainer.Repo)
	questionContainer := question.NewQuestionContainer(config.DB)
	examContainer := exam.NewExamContainer(
		config.DB,
		questionContainer.Service,
		questionContainer.Repo,
		userContainer.Repo,
	)
	attemptContainer := attempt.NewAttemptContainer(config.DB, questionContainer.Repo, rdb)

	return &Container{
		TenancyContainer:  tenancyContainer,
		UserContainer:     userContainer,
		QuestionContainer: questionContainer,
		ExamContainer:     examContainer,
		AttemptContainer:  attemptContainer,
		AuthHandler:       auth.NewHandler(),
		Redis:             rdb,
	}
}

// Close releases connections held by the container.
func (c *Container) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if config.DB != nil {
		if sqlDB, err := config.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
