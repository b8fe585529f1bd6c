// @title                       Examgate API
// @version                     1.0
// @description                 Proctored exam attempts for schools.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	_ "github.com/saulo-duarte/examgate-lambda/docs"
	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/container"
	"github.com/saulo-duarte/examgate-lambda/internal/router"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := container.New(ctx)
	defer c.Close()

	handler := router.New(router.RouterConfig{
		AuthHandler:     c.AuthHandler,
		TenancyHandler:  c.TenancyContainer.Handler,
		UserHandler:     c.UserContainer.Handler,
		QuestionHandler: c.QuestionContainer.Handler,
		ExamHandler:     c.ExamContainer.Handler,
		AttemptHandler:  c.AttemptContainer.Handler,
	})

	if config.IsLambda() {
		adapter := httpadapter.NewV2(handler)
		lambda.Start(adapter.ProxyWithContext)
		return
	}

	log := config.WithContext(ctx)
	addr := config.GetEnv("ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", addr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("HTTP server stopped")
}
