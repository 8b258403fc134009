package quiz

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Positional header schema shared by every record source. Files carry no header row.
const (
	FieldQuestionText  = "questionText"
	FieldOption1       = "option1"
	FieldOption2       = "option2"
	FieldOption3       = "option3"
	FieldOption4       = "option4"
	FieldCorrectAnswer = "correctAnswer"
	FieldGroup         = "group"
)

var Header = []string{
	FieldQuestionText,
	FieldOption1,
	FieldOption2,
	FieldOption3,
	FieldOption4,
	FieldCorrectAnswer,
	FieldGroup,
}

var requiredFields = Header[:6]

// ErrRead marks a source that could not be opened or read. Loads failing with it install
// nothing.
var ErrRead = errors.New("read questions")

// RawRecord is one input row keyed by Header. Short rows simply lack the trailing keys.
type RawRecord map[string]string

// RecordSource produces the raw rows of one question file.
type RecordSource interface {
	ReadRecords(ctx context.Context) ([]RawRecord, error)
}

// NewRawRecord maps fields positionally onto Header, ignoring anything past the last column.
func NewRawRecord(fields []string) RawRecord {
	rec := make(RawRecord, len(Header))
	for idx, value := range fields {
		if idx >= len(Header) {
			break
		}
		rec[Header[idx]] = value
	}
	return rec
}

// DetectDelimiter picks ';' when the content contains one, ',' otherwise.
func DetectDelimiter(content []byte) rune {
	if bytes.ContainsRune(content, ';') {
		return ';'
	}
	return ','
}

// ParseRecords reads delimited text into raw records. Rows the csv reader cannot make
// sense of are logged and skipped; they never abort the parse.
func ParseRecords(r io.Reader, logger logrus.FieldLogger) ([]RawRecord, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = DetectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records []RawRecord
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				logger.WithFields(logrus.Fields{
					"line":  parseErr.Line,
					"error": parseErr.Err.Error(),
				}).Warn("skipping unparseable csv line")
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
		records = append(records, NewRawRecord(fields))
	}
	return records, nil
}

// CSVSource reads questions from a comma or semicolon delimited file.
type CSVSource struct {
	Path   string
	Logger logrus.FieldLogger
}

func (s CSVSource) ReadRecords(_ context.Context) ([]RawRecord, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	defer file.Close()

	return ParseRecords(file, s.Logger)
}
