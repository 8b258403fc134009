package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"csv-quiz/internal/loader"
	"csv-quiz/internal/quiz"
)

type Config struct {
	// File is loaded before the first prompt when set.
	File         string
	DialogTitle  string
	TickInterval time.Duration
	Logger       logrus.FieldLogger
}

func Run(ctx context.Context, in io.Reader, out io.Writer, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	surface := NewSurface(out)
	engine := quiz.NewEngine(surface,
		quiz.WithLogger(logger),
		quiz.WithTimerOptions(quiz.WithTickInterval(cfg.TickInterval)),
	)
	defer engine.Close()
	files := loader.New(engine, logger)
	reader := bufio.NewReader(in)
	dialog := &quiz.Dialog{
		Picker:     newPromptPicker(reader, surface),
		Open:       files.OpenFile,
		Title:      cfg.DialogTitle,
		Extensions: loader.Extensions,
		Logger:     logger,
	}

	surface.Printf("csv-quiz\n\n")
	printHelp(surface)

	if cfg.File != "" {
		// Load failures are already reported through the surface.
		_ = files.OpenFile(ctx, cfg.File)
	}

	for {
		surface.Printf("\n[%s] > ", surface.Elapsed())
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)

		line = strings.TrimSpace(line)
		if line == "" {
			if eof {
				surface.Printf("\n")
				return nil
			}
			continue
		}

		args := strings.Fields(line)
		command := strings.ToLower(args[0])
		rest := strings.TrimSpace(strings.TrimPrefix(line, args[0]))

		switch command {
		case "help", "?":
			printHelp(surface)
		case "exit", "quit", "q":
			return nil
		case "a", "b", "c", "d":
			answer(engine, surface, command)
		case "n", "next":
			engine.Next()
		case "p", "prev", "previous":
			engine.Previous()
		case "show":
			showCommand(engine, surface, args)
		case "open":
			if rest != "" {
				_ = files.OpenFile(ctx, rest)
				break
			}
			_ = dialog.RequestFile(ctx)
		case "groups":
			printGroups(surface, engine.Groups())
		case "group":
			if rest == "" {
				surface.Printf("usage: group <label>\n")
				break
			}
			engine.ApplyGroupFilter(rest)
		case "score":
			surface.ShowScore(engine.Score())
		case "reset":
			engine.ResetScore()
		case "time":
			surface.Printf("Elapsed: %s\n", quiz.FormatElapsed(engine.Elapsed()))
		default:
			surface.Printf("unknown command. type 'help' for usage.\n")
		}

		if eof {
			surface.Printf("\n")
			return nil
		}
	}
}

func answer(engine *quiz.Engine, surface *Surface, letter string) {
	switch engine.AnswerOnce(letter).Status {
	case quiz.StatusNoQuestion:
		surface.Printf("No question loaded. Use 'open' first.\n")
	case quiz.StatusAlreadyAnswered:
		surface.Printf("Already answered. Use 'next' or 'prev'.\n")
	}
}

func showCommand(engine *quiz.Engine, surface *Surface, args []string) {
	if len(args) < 2 {
		engine.Show(engine.CurrentIndex())
		return
	}

	number, err := strconv.Atoi(args[1])
	if err != nil {
		surface.Printf("usage: show [question number]\n")
		return
	}
	engine.Show(number - 1)
}

func printHelp(surface *Surface) {
	surface.Printf("Commands:\n")
	surface.Printf("  open [path]      load a question file (prompts when no path is given)\n")
	surface.Printf("  a | b | c | d    answer the current question\n")
	surface.Printf("  next | prev      move between questions\n")
	surface.Printf("  show [n]         show question n, or the current one again\n")
	surface.Printf("  groups           list question groups\n")
	surface.Printf("  group <label>    play only one group (%s for every question)\n", quiz.AllGroups)
	surface.Printf("  score | reset    show or clear the score\n")
	surface.Printf("  time             show the elapsed time\n")
	surface.Printf("  exit\n")
}
