package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"csv-quiz/internal/quiz"
	"csv-quiz/internal/quiz/remote"
	"csv-quiz/internal/quiz/sqlite"
	"csv-quiz/internal/quiz/xlsx"
)

var ErrUnsupportedSource = errors.New("unsupported question file")

// Extensions lists every file type Open understands, for file picker filters.
var Extensions = []string{".csv", ".txt", ".xlsx", ".db", ".sqlite", ".sqlite3"}

// Open picks a record source from the file extension. http and https URLs are fetched.
func Open(path string, logger logrus.FieldLogger) (quiz.RecordSource, error) {
	if isURL(path) {
		return remote.Source{URL: path, Logger: logger}, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt", "":
		return quiz.CSVSource{Path: path, Logger: logger}, nil
	case ".xlsx":
		return xlsx.Source{Path: path}, nil
	case ".db", ".sqlite", ".sqlite3":
		return sqlite.Source{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, filepath.Base(path))
	}
}

func isURL(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Loader reads and validates a whole question file before anything is installed, so a
// failed read leaves the engine untouched.
type Loader struct {
	Engine *quiz.Engine
	Logger logrus.FieldLogger
}

func New(engine *quiz.Engine, logger logrus.FieldLogger) *Loader {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Loader{Engine: engine, Logger: logger}
}

// LoadFile reads path and installs its questions. It returns the installed set.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]*quiz.Question, error) {
	source, err := Open(path, l.Logger)
	if err != nil {
		return nil, err
	}
	return l.load(ctx, source, path)
}

// LoadReader installs questions parsed from delimited text, e.g. an uploaded body.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader, name string) ([]*quiz.Question, error) {
	records, err := quiz.ParseRecords(r, l.Logger)
	if err != nil {
		return nil, err
	}
	return l.install(records, name), nil
}

// OpenFile matches quiz.OpenFunc so a Loader can back a quiz.Dialog.
func (l *Loader) OpenFile(ctx context.Context, path string) error {
	_, err := l.LoadFile(ctx, path)
	if err != nil && l.Engine != nil {
		l.Engine.Notify(quiz.NoticeError, fmt.Sprintf("Could not load %s: %v", filepath.Base(path), err))
	}
	return err
}

func (l *Loader) load(ctx context.Context, source quiz.RecordSource, name string) ([]*quiz.Question, error) {
	records, err := source.ReadRecords(ctx)
	if err != nil {
		l.Logger.WithFields(logrus.Fields{
			"file":  name,
			"error": err.Error(),
		}).Error("question file could not be read")
		return nil, err
	}
	return l.install(records, name), nil
}

func (l *Loader) install(records []quiz.RawRecord, name string) []*quiz.Question {
	questions := quiz.BuildQuestions(records, l.Logger.WithField("file", name))

	l.Logger.WithFields(logrus.Fields{
		"file":     name,
		"rows":     len(records),
		"accepted": len(questions),
	}).Info("question file parsed")

	if l.Engine == nil {
		return questions
	}
	return l.Engine.Load(questions)
}
