package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"csv-quiz/internal/loader"
	"csv-quiz/internal/quiz"
)

const maxRequestBytes = 10 << 20

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loader.ErrUnsupportedSource):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
	case errors.Is(err, quiz.ErrRead):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question file could not be read"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "request failed"})
	}
}

// decodeJSON reads an optional JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	defer r.Body.Close()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return false
	}
	return true
}

func writeMethodNotAllowed(w http.ResponseWriter, allowedMethod string) {
	w.Header().Set("Allow", allowedMethod)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
