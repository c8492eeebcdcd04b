// Package chat runs the conversational variant of the studio: a text model
// talks with the user and asks for an image by emitting a marker.
package chat

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/dispatch"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/providers/genai"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/styles"
)

// maxHistory bounds the transcript forwarded to the model.
const maxHistory = 20

// SystemInstruction tells the model how to request an image.
const SystemInstruction = `You are the assistant of AI Kirie Studio, a paper-cut (kirie) art generator.
Reply in the user's language, briefly and warmly.
When the user wants a picture, describe it in one short English sentence and end your reply with
[GENERATE: <english description of the subject>]
Use the marker at most once. Never use it when the user is only chatting.`

var generateMarker = regexp.MustCompile(`\[GENERATE:\s*([^\]]+?)\s*\]`)

type model interface {
	Chat(ctx context.Context, req genai.ChatRequest) (string, error)
	HasCredentials() bool
	ChatModel() string
}

type generator interface {
	Generate(ctx context.Context, req dispatch.Request) (dispatch.Result, error)
	Registry() *styles.Registry
}

// Service answers chat messages and triggers generations.
type Service struct {
	model     model
	generator generator
	logger    *infra.Logger
}

// Turn is one prior message of the conversation.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Request is one user message plus context.
type Request struct {
	Message   string
	History   []Turn
	Image     *domain.SourceImage
	StyleID   string
	Provider  string
	RequestID string
}

// Reply carries the cleaned model text and, when requested, the image.
type Reply struct {
	Message    string
	Model      string
	Generation *dispatch.Result
	// GenerationErr is set when the model asked for an image but every
	// provider failed. The text reply is still returned.
	GenerationErr error
}

// NewService wires the chat model with the dispatcher.
func NewService(m model, g generator, logger *infra.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{model: m, generator: g, logger: logger}
}

// Available reports whether the chat model is configured.
func (s *Service) Available() bool {
	return s != nil && s.model != nil && s.model.HasCredentials()
}

// Reply sends the message to the model and runs any generation it asks for.
func (s *Service) Reply(ctx context.Context, req Request) (Reply, error) {
	if !s.Available() {
		return Reply{}, domain.ErrChatUnavailable
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return Reply{}, &domain.ValidationError{Key: i18n.MessageRequired}
	}

	history := req.History
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	turns := make([]genai.Turn, 0, len(history))
	for _, h := range history {
		turns = append(turns, genai.Turn{Role: h.Role, Text: h.Text})
	}

	text, err := s.model.Chat(ctx, genai.ChatRequest{
		System:  SystemInstruction,
		History: turns,
		Message: message,
		Image:   req.Image,
	})
	if err != nil {
		return Reply{}, domain.NewProviderError("gemini", "chat", genai.StatusCode(err), err)
	}

	cleaned, subject, found := ExtractGenerate(text)
	out := Reply{Message: cleaned, Model: s.model.ChatModel()}
	if !found || s.generator == nil {
		return out, nil
	}

	styleID := s.pickStyle(req.StyleID, req.Provider)
	res, err := s.generator.Generate(ctx, dispatch.Request{
		Prompt:      subject,
		StyleID:     styleID,
		SourceImage: req.Image,
		RequestID:   req.RequestID,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", req.RequestID).Msg("chat generation failed")
		out.GenerationErr = fmt.Errorf("chat generation: %w", err)
		if errors.Is(err, domain.ErrConfiguration) {
			return Reply{}, err
		}
		return out, nil
	}
	out.Generation = &res
	return out, nil
}

// pickStyle prefers an explicit style, then the first style served by the
// requested provider.
func (s *Service) pickStyle(styleID, provider string) string {
	if strings.TrimSpace(styleID) != "" || strings.TrimSpace(provider) == "" {
		return styleID
	}
	for _, st := range s.generator.Registry().List() {
		if strings.EqualFold(st.Provider, provider) {
			return st.ID
		}
	}
	return styleID
}

// ExtractGenerate removes the first generate marker from text and returns the
// subject it carried.
func ExtractGenerate(text string) (cleaned, subject string, found bool) {
	m := generateMarker.FindStringSubmatchIndex(text)
	if m == nil {
		return strings.TrimSpace(text), "", false
	}
	subject = strings.TrimSpace(text[m[2]:m[3]])
	cleaned = strings.TrimSpace(text[:m[0]] + text[m[1]:])
	cleaned = generateMarker.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	if subject == "" {
		return cleaned, "", false
	}
	return cleaned, subject, true
}
