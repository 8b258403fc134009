package quiz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// AllGroups is the catch-all group label. Questions without a group belong to it and
// selecting it removes any filter.
const AllGroups = "All"

const (
	StatusCorrect       = "correct"
	StatusIncorrect     = "incorrect"
	StatusInvalidLetter = "invalid_letter"
	StatusNoQuestion    = "no_question"
)

// Refusals from Engine.AnswerOnce and Engine.AnswerAt.
const (
	StatusAlreadyAnswered = "already_answered"
	StatusStale           = "stale_question"
)

// Letters maps option positions to their labels.
var Letters = [4]string{"A", "B", "C", "D"}

var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidAnswer = errors.New("invalid answer letter")
)

// Question is one validated quiz item. Everything except Answered is fixed at load time.
type Question struct {
	Text          string    `json:"text"`
	Options       [4]string `json:"options"`
	CorrectAnswer string    `json:"correct_answer"`
	Group         string    `json:"group"`
	Answered      bool      `json:"answered"`
}

// OptionText returns the option text labeled by letter, or "" for an unknown letter.
func (q *Question) OptionText(letter string) string {
	idx := LetterIndex(letter)
	if idx < 0 {
		return ""
	}
	return q.Options[idx]
}

// LetterIndex returns the option position for a canonical letter, or -1.
func LetterIndex(letter string) int {
	for idx, candidate := range Letters {
		if candidate == letter {
			return idx
		}
	}
	return -1
}

// NormalizeLetter trims and upper-cases a single letter answer. It returns "" unless the
// result is exactly one of A-D.
func NormalizeLetter(answer string) string {
	letter := strings.ToUpper(strings.TrimSpace(answer))
	if LetterIndex(letter) < 0 {
		return ""
	}
	return letter
}

// Validate turns one raw record into a normalized Question.
func Validate(rec RawRecord) (*Question, error) {
	for _, field := range requiredFields {
		if strings.TrimSpace(rec[field]) == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, field)
		}
	}

	answer := strings.ToUpper(strings.TrimSpace(rec[FieldCorrectAnswer]))
	if LetterIndex(answer) < 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAnswer, rec[FieldCorrectAnswer])
	}

	group := strings.TrimSpace(rec[FieldGroup])
	if group == "" {
		group = AllGroups
	}

	return &Question{
		Text: strings.TrimSpace(rec[FieldQuestionText]),
		Options: [4]string{
			strings.TrimSpace(rec[FieldOption1]),
			strings.TrimSpace(rec[FieldOption2]),
			strings.TrimSpace(rec[FieldOption3]),
			strings.TrimSpace(rec[FieldOption4]),
		},
		CorrectAnswer: answer,
		Group:         group,
	}, nil
}

// BuildQuestions validates every record, logging and skipping the rejected ones.
// Duplicate questions are kept.
func BuildQuestions(records []RawRecord, logger logrus.FieldLogger) []*Question {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	questions := make([]*Question, 0, len(records))
	for idx, rec := range records {
		question, err := Validate(rec)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"row":    idx + 1,
				"reason": err.Error(),
			}).Warn("skipping invalid question row")
			continue
		}
		questions = append(questions, question)
	}
	return questions
}

// GroupIndex lists AllGroups followed by every other group label in first-seen order.
func GroupIndex(questions []*Question) []string {
	groups := []string{AllGroups}
	seen := map[string]bool{AllGroups: true}
	for _, question := range questions {
		if seen[question.Group] {
			continue
		}
		seen[question.Group] = true
		groups = append(groups, question.Group)
	}
	return groups
}

// FilterByGroup keeps the questions labeled with group, in their original order.
// AllGroups returns a copy of the full set.
func FilterByGroup(questions []*Question, group string) []*Question {
	if group == AllGroups {
		return append([]*Question(nil), questions...)
	}

	filtered := make([]*Question, 0, len(questions))
	for _, question := range questions {
		if question.Group == group {
			filtered = append(filtered, question)
		}
	}
	return filtered
}
