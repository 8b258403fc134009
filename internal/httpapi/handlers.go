package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"csv-quiz/internal/quiz"
)

const uploadName = "upload.csv"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, a.engine.Snapshot())
}

func (a *API) HandleGroups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	state := a.engine.Snapshot()
	writeJSON(w, http.StatusOK, groupsResponse{Active: state.Group, Groups: state.Groups})
}

func (a *API) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req loadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
		return
	}

	if _, err := a.files.LoadFile(r.Context(), path); err != nil {
		a.logger.WithError(err).WithField("path", path).Warn("load request failed")
		writeServiceError(w, err)
		return
	}
	a.writeLoaded(w)
}

// HandleUpload loads the raw request body as delimited question text.
func (a *API) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = uploadName
	}
	if _, err := a.files.LoadReader(r.Context(), http.MaxBytesReader(w, r.Body, maxRequestBytes), name); err != nil {
		a.logger.WithError(err).WithField("name", name).Warn("upload failed")
		writeServiceError(w, err)
		return
	}
	a.writeLoaded(w)
}

func (a *API) writeLoaded(w http.ResponseWriter) {
	state := a.engine.Snapshot()
	writeJSON(w, http.StatusOK, loadResponse{
		SessionID: state.SessionID,
		Loaded:    state.Loaded,
		Groups:    state.Groups,
	})
}

func (a *API) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result := a.engine.AnswerOnce(req.Letter)
	switch result.Status {
	case quiz.StatusNoQuestion:
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no question loaded"})
		return
	case quiz.StatusAlreadyAnswered:
		writeJSON(w, http.StatusConflict, errorResponse{Error: "question already answered"})
		return
	case quiz.StatusInvalidLetter:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid answer letter %q", req.Letter)})
		return
	}
	writeJSON(w, http.StatusOK, answerResponse{Result: result, Score: a.engine.Score()})
}

func (a *API) HandleNext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	a.engine.Next()
	writeJSON(w, http.StatusOK, a.engine.Snapshot())
}

func (a *API) HandlePrevious(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	a.engine.Previous()
	writeJSON(w, http.StatusOK, a.engine.Snapshot())
}

func (a *API) HandleShow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req showRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "index is required"})
		return
	}

	a.engine.Show(*req.Index)
	writeJSON(w, http.StatusOK, a.engine.Snapshot())
}

func (a *API) HandleGroup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var req groupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "label is required"})
		return
	}

	a.engine.ApplyGroupFilter(label)
	writeJSON(w, http.StatusOK, a.engine.Snapshot())
}

func (a *API) HandleResetScore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	a.engine.ResetScore()
	writeJSON(w, http.StatusOK, scoreResponse{Score: a.engine.Score()})
}

// HandleEvents upgrades to a websocket that streams renders and accepts commands.
func (a *API) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	if a.hub == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "event stream unavailable"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	state := a.engine.Snapshot()
	c := a.hub.attach(conn, Event{Type: EventState, SessionID: state.SessionID, Data: state})
	defer a.hub.detach(c)

	conn.SetReadLimit(4096)
	for {
		var cmd command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.logger.WithError(err).Debug("websocket read failed")
			}
			return
		}
		a.dispatch(cmd)
	}
}

// dispatch applies a websocket command. Results reach clients through the hub.
func (a *API) dispatch(cmd command) {
	switch strings.ToLower(cmd.Action) {
	case "answer":
		result := a.answerCommand(cmd)
		switch result.Status {
		case quiz.StatusAlreadyAnswered:
			a.engine.Notify(quiz.NoticeInfo, "Already answered.")
		case quiz.StatusStale:
			a.engine.Notify(quiz.NoticeInfo, "The question changed before your answer arrived.")
		}
	case "next":
		a.engine.Next()
	case "previous", "prev":
		a.engine.Previous()
	case "show":
		if cmd.Index != nil {
			a.engine.Show(*cmd.Index)
		}
	case "group":
		if label := strings.TrimSpace(cmd.Label); label != "" {
			a.engine.ApplyGroupFilter(label)
		}
	case "reset":
		a.engine.ResetScore()
	default:
		a.logger.WithField("action", cmd.Action).Debug("unknown websocket command")
	}
}

// answerCommand scores against the question the client saw when it names one.
func (a *API) answerCommand(cmd command) quiz.Result {
	if cmd.SessionID != "" && cmd.Index != nil {
		return a.engine.AnswerAt(cmd.SessionID, *cmd.Index, cmd.Letter)
	}
	return a.engine.AnswerOnce(cmd.Letter)
}
