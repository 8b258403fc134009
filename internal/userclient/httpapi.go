package userclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"csv-quiz/internal/quiz"
)

var ErrServiceUnavailable = errors.New("quiz service unavailable")

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// HTTPClient drives a running quiz-service.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

type LoadResult struct {
	SessionID string   `json:"session_id"`
	Loaded    int      `json:"loaded"`
	Groups    []string `json:"groups"`
}

type AnswerResult struct {
	Result quiz.Result `json:"result"`
	Score  quiz.Score  `json:"score"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPClient(baseURL string, httpClient *http.Client) *HTTPClient {
	baseURL = strings.TrimSpace(baseURL)
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultServer
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *HTTPClient) State(ctx context.Context) (quiz.State, error) {
	var state quiz.State
	err := c.doJSON(ctx, http.MethodGet, "/state", nil, &state)
	return state, err
}

// Load asks the service to read a question file or URL it can reach.
func (c *HTTPClient) Load(ctx context.Context, path string) (LoadResult, error) {
	var result LoadResult
	err := c.doJSON(ctx, http.MethodPost, "/load", map[string]string{"path": path}, &result)
	return result, err
}

// Upload sends local question text for the service to parse.
func (c *HTTPClient) Upload(ctx context.Context, name string, content io.Reader) (LoadResult, error) {
	var result LoadResult
	path := "/upload?name=" + url.QueryEscape(name)
	err := c.do(ctx, http.MethodPost, path, "text/csv", content, &result)
	return result, err
}

func (c *HTTPClient) Answer(ctx context.Context, letter string) (AnswerResult, error) {
	var result AnswerResult
	err := c.doJSON(ctx, http.MethodPost, "/answer", map[string]string{"letter": letter}, &result)
	return result, err
}

func (c *HTTPClient) Next(ctx context.Context) (quiz.State, error) {
	var state quiz.State
	err := c.doJSON(ctx, http.MethodPost, "/next", nil, &state)
	return state, err
}

func (c *HTTPClient) Previous(ctx context.Context) (quiz.State, error) {
	var state quiz.State
	err := c.doJSON(ctx, http.MethodPost, "/previous", nil, &state)
	return state, err
}

// Show moves to the zero-based index.
func (c *HTTPClient) Show(ctx context.Context, index int) (quiz.State, error) {
	var state quiz.State
	err := c.doJSON(ctx, http.MethodPost, "/show", map[string]int{"index": index}, &state)
	return state, err
}

func (c *HTTPClient) Group(ctx context.Context, label string) (quiz.State, error) {
	var state quiz.State
	err := c.doJSON(ctx, http.MethodPost, "/group", map[string]string{"label": label}, &state)
	return state, err
}

func (c *HTTPClient) ResetScore(ctx context.Context) (quiz.Score, error) {
	var payload struct {
		Score quiz.Score `json:"score"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/score/reset", nil, &payload)
	return payload.Score, err
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	if requestBody == nil {
		return c.do(ctx, method, path, "", nil, responseBody)
	}

	encoded, err := json.Marshal(requestBody)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, "application/json", bytes.NewReader(encoded), responseBody)
}

func (c *HTTPClient) do(ctx context.Context, method, path, contentType string, body io.Reader, responseBody any) error {
	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}
