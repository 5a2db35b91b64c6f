package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jask/scholaradmin/internal/config"
	"github.com/jask/scholaradmin/internal/logging"
	"github.com/jask/scholaradmin/internal/mockapi"
)

const tokenTTL = 24 * time.Hour

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mockbackend: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewConsole(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mockbackend: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := serve(cfg, logger); err != nil {
		logger.Fatal("mock backend stopped", zap.Error(err))
	}
}

func serve(cfg config.Config, logger *zap.Logger) error {
	store, err := mockapi.DefaultStore()
	if err != nil {
		return err
	}
	token, err := mockapi.IssueToken(cfg.Mock.JWTSecret, "admin", tokenTTL)
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.Mock.Addr,
		Handler:           mockapi.New(store, cfg.Mock.JWTSecret, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("mock backend listening", zap.String("addr", cfg.Mock.Addr))
		errCh <- srv.ListenAndServe()
	}()
	fmt.Printf("development token (valid %s):\n%s\n\nscholaradmin token set %s\n", tokenTTL, token, token)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
