package handlers

import (
	"net/http"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
)

type styleInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	AI   string `json:"ai"`
}

type healthResponse struct {
	Status      string      `json:"status"`
	Timestamp   string      `json:"timestamp"`
	AIProviders []string    `json:"aiProviders"`
	Styles      []styleInfo `json:"styles"`
}

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	list := a.Generator.Registry().List()
	out := healthResponse{
		Status:      "ok",
		Timestamp:   a.Now().UTC().Format(time.RFC3339Nano),
		AIProviders: a.Generator.Providers(),
		Styles:      make([]styleInfo, 0, len(list)),
	}
	for _, s := range list {
		out.Styles = append(out.Styles, styleInfo{ID: s.ID, Name: s.DisplayName, AI: s.Provider})
	}
	a.json(w, http.StatusOK, out)
}

// NotFound answers unknown routes with the JSON envelope.
func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusNotFound, i18n.NotFound)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusMethodNotAllowed, i18n.NotFound)
}
