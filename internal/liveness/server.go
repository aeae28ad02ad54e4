// Package liveness serves the keep-alive HTTP endpoints that let an
// external supervisor confirm the process is running. It shares no mutable
// state with the notification loop beyond the schedule snapshot, which is
// read through an atomic pointer.
package liveness

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/zain-malik9246/prayer-time-bot/internal/prayer"
)

// NewRouter creates the Chi router for the liveness endpoints. snapshot
// returns the current schedule, or nil before the first computation.
func NewRouter(snapshot func() *prayer.Schedule, loc *time.Location) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	c := corslib.New(corslib.Options{
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("🕌 Prayer time bot is running\n"))
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/times", func(w http.ResponseWriter, _ *http.Request) {
		sched := snapshot()
		if sched == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status": "schedule not yet computed",
			})
			return
		}

		windows := make(map[string]map[string]string, len(sched.Windows))
		for _, name := range prayer.Names() {
			win := sched.Window(name)
			windows[string(name)] = map[string]string{
				"start": win.Start.In(loc).Format(time.RFC3339),
				"end":   win.End.In(loc).Format(time.RFC3339),
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"date":    sched.Day.Format("2006-01-02"),
			"method":  sched.Method,
			"windows": windows,
		})
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
