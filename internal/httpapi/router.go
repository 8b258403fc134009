package httpapi

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"csv-quiz/internal/loader"
	"csv-quiz/internal/quiz"
)

func NewRouter(engine *quiz.Engine, files *loader.Loader, hub *Hub, logger logrus.FieldLogger) http.Handler {
	api := NewAPI(engine, files, hub, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", api.HandleHealth)
	mux.HandleFunc("/state", api.HandleState)
	mux.HandleFunc("/groups", api.HandleGroups)
	mux.HandleFunc("/load", api.HandleLoad)
	mux.HandleFunc("/upload", api.HandleUpload)
	mux.HandleFunc("/answer", api.HandleAnswer)
	mux.HandleFunc("/next", api.HandleNext)
	mux.HandleFunc("/previous", api.HandlePrevious)
	mux.HandleFunc("/show", api.HandleShow)
	mux.HandleFunc("/group", api.HandleGroup)
	mux.HandleFunc("/score/reset", api.HandleResetScore)
	mux.HandleFunc("/events", api.HandleEvents)

	return Logging(api.logger)(mux)
}
