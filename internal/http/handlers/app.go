package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/chat"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/dispatch"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/styles"
)

// Generator produces images for the endpoints. *dispatch.Dispatcher
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, req dispatch.Request) (dispatch.Result, error)
	Registry() *styles.Registry
	Providers() []string
}

// Chatter answers chat messages. *chat.Service satisfies it.
type Chatter interface {
	Available() bool
	Reply(ctx context.Context, req chat.Request) (chat.Reply, error)
}

// App holds the dependencies shared by every handler.
type App struct {
	Generator    Generator
	Chat         Chatter
	MaxBodyBytes int64
	Now          func() time.Time
}

// NewApp builds the handler container. chat may be nil.
func NewApp(gen Generator, chat Chatter, maxBodyBytes int64) *App {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 10 << 20
	}
	return &App{Generator: gen, Chat: chat, MaxBodyBytes: maxBodyBytes, Now: time.Now}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body no larger than MaxBodyBytes into v.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, a.MaxBodyBytes)
	defer body.Close()
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errBodyTooLarge
		}
		return errBadBody
	}
	return nil
}
