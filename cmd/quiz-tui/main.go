package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"csv-quiz/internal/config"
	"csv-quiz/internal/logging"
	"csv-quiz/internal/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	file := flag.String("file", cfg.QuestionFile, "question file to load at start")
	logFile := flag.String("log", "", "write logs to this file (the screen is owned by the quiz)")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = tui.Run(ctx, tui.Config{
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
