package httpapi

import "csv-quiz/internal/quiz"

type loadRequest struct {
	Path string `json:"path"`
}

type loadResponse struct {
	SessionID string   `json:"session_id"`
	Loaded    int      `json:"loaded"`
	Groups    []string `json:"groups"`
}

type answerRequest struct {
	Letter string `json:"letter"`
}

type answerResponse struct {
	Result quiz.Result `json:"result"`
	Score  quiz.Score  `json:"score"`
}

type showRequest struct {
	Index *int `json:"index"`
}

type groupRequest struct {
	Label string `json:"label"`
}

type groupsResponse struct {
	Active string   `json:"active"`
	Groups []string `json:"groups"`
}

type scoreResponse struct {
	Score quiz.Score `json:"score"`
}

// Event is one websocket message. Data holds the render payload named by Type.
type Event struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Data      any    `json:"data"`
}

// command is what websocket clients send back: an option selection or navigation. An answer
// carrying session_id and index is only scored if that question is still current.
type command struct {
	Action    string `json:"action"`
	Letter    string `json:"letter,omitempty"`
	Index     *int   `json:"index,omitempty"`
	Label     string `json:"label,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}
