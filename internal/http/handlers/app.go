package handlers

import (
	"encoding/json"
	"net/http"

	"videogenhost/internal/infra"
	"videogenhost/internal/jobs"
	"videogenhost/internal/orchestrator"
	"videogenhost/internal/storage"
)

// Credentials maps usernames to passwords for the demo login. The session
// store is deliberately this thin; real identity lives outside this service.
type Credentials map[string]string

// App carries the handler dependencies.
type App struct {
	Logger       infra.Logger
	Registry     *jobs.Registry
	Orchestrator *orchestrator.Orchestrator
	Store        *storage.VideoStore
	CookieSecret string
	Users        Credentials
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, msg string) {
	a.json(w, code, map[string]any{"error": errCode, "message": msg})
}
