package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"csv-quiz/internal/userclient"
)

func main() {
	defaultServer := os.Getenv("QUIZ_SERVER")
	if defaultServer == "" {
		defaultServer = "http://127.0.0.1:8080"
	}

	server := flag.String("server", defaultServer, "quiz-service base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP request timeout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := userclient.Run(ctx, os.Stdin, os.Stdout, userclient.Config{
		ServerURL:   *server,
		HTTPTimeout: *timeout,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
