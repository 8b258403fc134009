package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"mime"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"csv-quiz/internal/quiz"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 10 << 20
)

// TriviaQuestion mirrors one entry of an Open Trivia DB style payload.
type TriviaQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type triviaResponse struct {
	ResponseCode int              `json:"response_code"`
	Results      []TriviaQuestion `json:"results"`
}

type Client struct {
	httpClient *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{httpClient: httpClient}
}

// Fetch downloads url and returns the body with its media type.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", err
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	return body, mediaType, nil
}

// Source reads questions from an http(s) URL. CSV bodies are parsed like files; JSON bodies
// are read as trivia payloads.
type Source struct {
	URL    string
	Client *Client
	Logger logrus.FieldLogger
}

func (s Source) ReadRecords(ctx context.Context) ([]quiz.RawRecord, error) {
	client := s.Client
	if client == nil {
		client = NewClient(nil)
	}
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	body, mediaType, err := client.Fetch(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}

	if !isJSON(mediaType, body) {
		return quiz.ParseRecords(bytes.NewReader(body), logger)
	}

	var payload triviaResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", quiz.ErrRead, err)
	}
	if payload.ResponseCode != 0 {
		return nil, fmt.Errorf("%w: response_code=%d", quiz.ErrRead, payload.ResponseCode)
	}
	return TriviaRecords(payload.Results, logger), nil
}

func isJSON(mediaType string, body []byte) bool {
	if mediaType == "application/json" {
		return true
	}
	return bytes.HasPrefix(bytes.TrimSpace(body), []byte("{"))
}

// TriviaRecords converts trivia entries into raw records. Options are sorted so the same
// payload always yields the same letters. Entries without exactly four answers are skipped.
func TriviaRecords(questions []TriviaQuestion, logger logrus.FieldLogger) []quiz.RawRecord {
	records := make([]quiz.RawRecord, 0, len(questions))
	for _, question := range questions {
		correct := html.UnescapeString(question.CorrectAnswer)
		options := []string{correct}
		for _, answer := range question.IncorrectAnswers {
			options = append(options, html.UnescapeString(answer))
		}
		if len(options) != len(quiz.Letters) {
			logger.WithFields(logrus.Fields{
				"question": question.Question,
				"answers":  len(options),
			}).Debug("skipping trivia question without four answers")
			continue
		}
		sort.Strings(options)

		letter := ""
		for idx, option := range options {
			if option == correct {
				letter = quiz.Letters[idx]
				break
			}
		}

		fields := []string{html.UnescapeString(question.Question)}
		fields = append(fields, options...)
		fields = append(fields, letter, strings.TrimSpace(html.UnescapeString(question.Category)))
		records = append(records, quiz.NewRawRecord(fields))
	}
	return records
}
