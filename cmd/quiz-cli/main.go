package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"csv-quiz/internal/cli"
	"csv-quiz/internal/config"
	"csv-quiz/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	file := flag.String("file", cfg.QuestionFile, "question file to load at start")
	flag.Parse()

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = cli.Run(ctx, os.Stdin, os.Stdout, cli.Config{
		File:         *file,
		DialogTitle:  cfg.DialogTitle,
		TickInterval: cfg.TickInterval,
		Logger:       logger,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
