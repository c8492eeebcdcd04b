package handlers

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/middleware"
)

var (
	errBadBody      = &domain.ValidationError{Key: i18n.InvalidBody}
	errBodyTooLarge = &domain.ValidationError{Key: i18n.InvalidBody, Detail: "body too large"}
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// error writes a localized failure envelope.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, key string) {
	a.json(w, code, errorResponse{Success: false, Error: i18n.T(middleware.LocaleFromContext(r.Context()), key)})
}

// fail maps err onto a status code and localized message. Provider details
// are logged, never returned.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	log := zerolog.Ctx(r.Context())
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, errBodyTooLarge):
		a.error(w, r, http.StatusRequestEntityTooLarge, i18n.InvalidBody)
	case errors.As(err, &verr):
		a.error(w, r, http.StatusBadRequest, verr.Key)
	case errors.Is(err, domain.ErrInvalidImageInput):
		a.error(w, r, http.StatusBadRequest, i18n.ImageInvalid)
	case errors.Is(err, domain.ErrConfiguration):
		log.Error().Err(err).Msg("configuration error")
		a.error(w, r, http.StatusBadRequest, i18n.ConfigurationErr)
	case errors.Is(err, domain.ErrChatUnavailable):
		a.error(w, r, http.StatusInternalServerError, i18n.ChatUnavailable)
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrProviderFailure):
		log.Error().Err(err).Msg("generation failed")
		a.error(w, r, http.StatusInternalServerError, i18n.GenerationFailed)
	default:
		log.Error().Err(err).Msg("unhandled error")
		a.error(w, r, http.StatusInternalServerError, i18n.InternalError)
	}
}

// Recoverer turns a panic in a handler into the JSON 500 envelope.
// http.ErrAbortHandler is re-raised so the server can drop the connection.
func (a *App) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			a.error(w, r, http.StatusInternalServerError, i18n.InternalError)
		}()
		next.ServeHTTP(w, r)
	})
}
