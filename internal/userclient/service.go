package userclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultServer      = "http://127.0.0.1:8080"
	defaultHTTPTimeout = 5 * time.Second
)

type Config struct {
	ServerURL   string
	HTTPTimeout time.Duration
}

// Run plays against a quiz-service from a command prompt.
func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	serverURL := strings.TrimSpace(cfg.ServerURL)
	if serverURL == "" {
		serverURL = defaultServer
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	client := NewHTTPClient(serverURL, &http.Client{Timeout: timeout})
	reader := bufio.NewReader(in)

	fmt.Fprintf(out, "quiz-remote\nserver=%s\n\n", serverURL)
	printHelp(out)

	for {
		fmt.Fprint(out, "\n> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				fmt.Fprintln(out)
				return nil
			}
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])
		rest := strings.TrimSpace(strings.TrimPrefix(line, args[0]))

		if command == "exit" || command == "quit" {
			return nil
		}
		if err := runCommand(ctx, out, client, command, args, rest); err != nil {
			fmt.Fprintf(out, "error: %v\n", describeClientError(err, serverURL))
		}

		if eof {
			fmt.Fprintln(out)
			return nil
		}
	}
}

func runCommand(ctx context.Context, out io.Writer, client *HTTPClient, command string, args []string, rest string) error {
	switch command {
	case "help":
		printHelp(out)
	case "state":
		state, err := client.State(ctx)
		if err != nil {
			return err
		}
		printState(out, state)
	case "a", "b", "c", "d":
		answer, err := client.Answer(ctx, command)
		if err != nil {
			return err
		}
		printResult(out, answer)
	case "next", "n":
		return showState(out)(client.Next(ctx))
	case "prev", "p":
		return showState(out)(client.Previous(ctx))
	case "show":
		if len(args) != 2 {
			fmt.Fprintln(out, "usage: show <question number>")
			return nil
		}
		number, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(out, "usage: show <question number>")
			return nil
		}
		return showState(out)(client.Show(ctx, number-1))
	case "group":
		if rest == "" {
			fmt.Fprintln(out, "usage: group <label>")
			return nil
		}
		return showState(out)(client.Group(ctx, rest))
	case "load":
		if rest == "" {
			fmt.Fprintln(out, "usage: load <server path or url>")
			return nil
		}
		loaded, err := client.Load(ctx, rest)
		if err != nil {
			return err
		}
		printLoaded(out, loaded)
	case "upload":
		if rest == "" {
			fmt.Fprintln(out, "usage: upload <local csv file>")
			return nil
		}
		return upload(ctx, out, client, rest)
	case "reset":
		score, err := client.ResetScore(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Score: %d correct, %d incorrect (%d questions)\n", score.Correct, score.Incorrect, score.Total)
	default:
		fmt.Fprintln(out, "unknown command. type 'help' for usage.")
	}
	return nil
}

func upload(ctx context.Context, out io.Writer, client *HTTPClient, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	loaded, err := client.Upload(ctx, filepath.Base(path), file)
	if err != nil {
		return err
	}
	printLoaded(out, loaded)
	return nil
}
