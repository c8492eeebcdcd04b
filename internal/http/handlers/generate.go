package handlers

import (
	"net/http"
	"strings"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/dispatch"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/middleware"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/styles"
)

type generateRequest struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
}

type convertRequest struct {
	ImageData string `json:"imageData"`
	Style     string `json:"style"`
}

type generateResponse struct {
	Success   bool   `json:"success"`
	ImageURL  string `json:"imageUrl"`
	Style     string `json:"style"`
	StyleName string `json:"styleName"`
	Model     string `json:"model"`
	Prompt    string `json:"prompt,omitempty"`
	Fallback  bool   `json:"fallback"`
	Note      string `json:"note,omitempty"`
}

func newGenerateResponse(res dispatch.Result) generateResponse {
	return generateResponse{
		Success:   true,
		ImageURL:  res.Ref.String(),
		Style:     res.StyleID,
		StyleName: res.StyleName,
		Model:     res.ReportedModel,
		Fallback:  res.UsedFallback || res.Substituted,
	}
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, r, http.StatusBadRequest, i18n.PromptRequired)
		return
	}
	res, err := a.Generator.Generate(r.Context(), dispatch.Request{
		Prompt:    req.Prompt,
		StyleID:   req.Style,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := newGenerateResponse(res)
	out.Prompt = req.Prompt
	a.json(w, http.StatusOK, out)
}

func (a *App) Convert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest
	if err := a.decode(w, r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if strings.TrimSpace(req.ImageData) == "" {
		a.error(w, r, http.StatusBadRequest, i18n.ImageRequired)
		return
	}
	src, err := domain.ParseImageData(req.ImageData)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	res, err := a.Generator.Generate(r.Context(), dispatch.Request{
		Prompt:      styles.ConvertSubject,
		StyleID:     req.Style,
		SourceImage: src,
		RequestID:   middleware.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	out := newGenerateResponse(res)
	out.Note = i18n.T(i18n.English, i18n.ConvertNote)
	a.json(w, http.StatusOK, out)
}
