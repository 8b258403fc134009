package httpapi

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"csv-quiz/internal/quiz"
)

const (
	EventQuestion = "question"
	EventScore    = "score"
	EventGroups   = "groups"
	EventNotice   = "notice"
	EventElapsed  = "elapsed"
	EventState    = "state"

	clientBuffer = 64
	writeWait    = 10 * time.Second
)

// Hub fans engine renders out to websocket clients. It implements quiz.Surface and never
// blocks: a client whose buffer is full is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	logger  logrus.FieldLogger
	last    *quiz.Notice
}

type client struct {
	conn *websocket.Conn
	send chan Event
	once sync.Once
}

func NewHub(logger logrus.FieldLogger) *Hub {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) ShowQuestion(view quiz.QuestionView) {
	h.broadcast(Event{Type: EventQuestion, SessionID: view.SessionID, Data: view})
}

func (h *Hub) ShowScore(score quiz.Score) {
	h.broadcast(Event{Type: EventScore, Data: score})
}

func (h *Hub) ShowGroups(groups []string) {
	h.broadcast(Event{Type: EventGroups, Data: groups})
}

func (h *Hub) Notify(notice quiz.Notice) {
	h.mu.Lock()
	h.last = &notice
	h.mu.Unlock()
	h.broadcast(Event{Type: EventNotice, Data: notice})
}

func (h *Hub) ShowElapsed(display string) {
	h.broadcast(Event{Type: EventElapsed, Data: display})
}

// LastNotice returns the most recent notice, if any.
func (h *Hub) LastNotice() (quiz.Notice, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return quiz.Notice{}, false
	}
	return *h.last, true
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.logger.WithField("event", event.Type).Warn("websocket client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// attach registers conn and starts its writer. initial is queued ahead of any broadcast.
func (h *Hub) attach(conn *websocket.Conn, initial Event) *client {
	c := &client{conn: conn, send: make(chan Event, clientBuffer)}
	c.send <- initial

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Info("websocket client connected")
	go h.writeLoop(c)
	return c
}

func (h *Hub) detach(c *client) {
	h.mu.Lock()
	removed := h.removeLocked(c)
	count := len(h.clients)
	h.mu.Unlock()

	if removed {
		h.logger.WithField("clients", count).Info("websocket client disconnected")
	}
}

func (h *Hub) removeLocked(c *client) bool {
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	c.once.Do(func() { close(c.send) })
	return true
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for event := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(event); err != nil {
			h.logger.WithError(err).Debug("websocket write failed")
			h.detach(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
