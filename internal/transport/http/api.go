package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// QuestionCounter reports the size of the question bank.
type QuestionCounter interface {
	Count(ctx context.Context) (int, error)
}

// RoomCounter reports the number of non-finished rooms.
type RoomCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// API serves the read-only diagnostics endpoints.
type API struct {
	questions QuestionCounter
	rooms     RoomCounter
	log       *zap.Logger
}

func NewAPI(questions QuestionCounter, rooms RoomCounter, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{questions: questions, rooms: rooms, log: logger}
}

// Register mounts the endpoints on mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", a.health)
	mux.HandleFunc("/api/questions/count", a.questionCount)
	mux.HandleFunc("/api/rooms/active", a.activeRooms)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "OK",
		"message": "Quiz duel server is running",
	})
}

func (a *API) questionCount(w http.ResponseWriter, r *http.Request) {
	n, err := a.questions.Count(r.Context())
	if err != nil {
		a.serverError(w, "count questions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (a *API) activeRooms(w http.ResponseWriter, r *http.Request) {
	n, err := a.rooms.CountActive(r.Context())
	if err != nil {
		a.serverError(w, "count active rooms", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"activeRooms": n})
}

func (a *API) serverError(w http.ResponseWriter, msg string, err error) {
	a.log.Error(msg, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
