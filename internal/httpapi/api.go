package httpapi

import (
	"github.com/sirupsen/logrus"

	"csv-quiz/internal/loader"
	"csv-quiz/internal/quiz"
)

type API struct {
	engine *quiz.Engine
	files  *loader.Loader
	hub    *Hub
	logger logrus.FieldLogger
}

// NewAPI wires handlers to an engine. hub should be the engine's surface so websocket
// clients see every render; it may be nil when no event stream is wanted.
func NewAPI(engine *quiz.Engine, files *loader.Loader, hub *Hub, logger logrus.FieldLogger) *API {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if files == nil {
		files = loader.New(engine, logger)
	}
	return &API{
		engine: engine,
		files:  files,
		hub:    hub,
		logger: logger,
	}
}
