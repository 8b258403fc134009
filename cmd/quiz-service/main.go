package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"csv-quiz/internal/config"
	"csv-quiz/internal/httpapi"
	"csv-quiz/internal/loader"
	"csv-quiz/internal/logging"
	"csv-quiz/internal/quiz"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config failed")
	}

	addr := flag.String("addr", cfg.ServerAddress, "HTTP listen address")
	file := flag.String("file", cfg.QuestionFile, "question file to load at start")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		logrus.WithError(err).Fatal("logger setup failed")
	}

	hub := httpapi.NewHub(logger)
	engine := quiz.NewEngine(hub,
		quiz.WithLogger(logger),
		quiz.WithTimerOptions(quiz.WithTickInterval(cfg.TickInterval)),
	)
	defer engine.Close()
	files := loader.New(engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *file != "" {
		if _, err := files.LoadFile(ctx, *file); err != nil {
			logger.WithError(err).WithField("file", *file).Error("initial load failed")
		}
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           httpapi.NewRouter(engine, files, hub, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("shutdown failed")
		}
	}()

	logger.WithField("addr", *addr).Info("quiz-service listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("server failed")
	}
}
