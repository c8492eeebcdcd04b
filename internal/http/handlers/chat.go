package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/chat"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/middleware"
)

type chatRequest struct {
	Message    string      `json:"message"`
	History    []chat.Turn `json:"history"`
	Image      string      `json:"image"`
	MIMEType   string      `json:"mimeType"`
	Style      string      `json:"style"`
	ImageModel string      `json:"imageModel"`
}

type imageGeneration struct {
	ImageURL  string `json:"imageUrl"`
	Model     string `json:"model"`
	Style     string `json:"style"`
	StyleName string `json:"styleName"`
	Fallback  bool   `json:"fallback"`
}

type chatResponse struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	Model           string           `json:"model"`
	ImageGeneration *imageGeneration `json:"imageGeneration,omitempty"`
	ImageError      string           `json:"imageError,omitempty"`
}

func (a *App) ChatMessage(w http.ResponseWriter, r *http.Request) {
	if a.Chat == nil || !a.Chat.Available() {
		a.error(w, r, http.StatusInternalServerError, i18n.ChatUnavailable)
		return
	}
	var req chatRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.error(w, r, http.StatusBadRequest, i18n.MessageRequired)
		return
	}
	var src *domain.SourceImage
	if strings.TrimSpace(req.Image) != "" {
		parsed, err := domain.ParseImageData(req.Image)
		if err != nil {
			a.fail(w, r, err)
			return
		}
		if req.MIMEType != "" {
			parsed.MIMEType = req.MIMEType
		}
		src = parsed
	}

	reply, err := a.Chat.Reply(r.Context(), chat.Request{
		Message:   req.Message,
		History:   req.History,
		Image:     src,
		StyleID:   req.Style,
		Provider:  req.ImageModel,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	out := chatResponse{Success: true, Message: reply.Message, Model: reply.Model}
	if g := reply.Generation; g != nil {
		out.ImageGeneration = &imageGeneration{
			ImageURL:  g.Ref.String(),
			Model:     g.ReportedModel,
			Style:     g.StyleID,
			StyleName: g.StyleName,
			Fallback:  g.UsedFallback || g.Substituted,
		}
	} else if reply.GenerationErr != nil && errors.Is(reply.GenerationErr, domain.ErrGenerationFailed) {
		out.ImageError = i18n.T(middleware.LocaleFromContext(r.Context()), i18n.GenerationFailed)
	}
	a.json(w, http.StatusOK, out)
}
