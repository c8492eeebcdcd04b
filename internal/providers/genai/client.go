package genai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
)

// ErrMissingAPIKey is returned by every call when no key was configured.
var ErrMissingAPIKey = errors.New("genai: missing api key")

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey      string
	ImageModel  string
	ChatModel   string
	ImagenModel string
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Models is the subset of the SDK's model service used by the studio.
// *genai.Models satisfies it.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*sdk.Content, config *sdk.GenerateContentConfig) (*sdk.GenerateContentResponse, error)
	GenerateImages(ctx context.Context, model, prompt string, config *sdk.GenerateImagesConfig) (*sdk.GenerateImagesResponse, error)
}

// Client wraps the Gemini SDK for the image, Imagen and chat calls the
// providers need.
type Client struct {
	models      Models
	imageModel  string
	chatModel   string
	imagenModel string
	logger      *infra.Logger
}

// ImageRequest represents the information required to generate one image.
type ImageRequest struct {
	Prompt string
	Source *domain.SourceImage
}

// ImageAsset is the normalized image returned by the client.
type ImageAsset struct {
	Data     []byte
	MIMEType string
	Text     string
}

// Turn is one message of a chat transcript.
type Turn struct {
	Role string
	Text string
}

// ChatRequest carries a chat exchange.
type ChatRequest struct {
	System  string
	History []Turn
	Message string
	Image   *domain.SourceImage
}

// NewClient constructs a Gemini client with sane defaults. An empty API key
// yields a client whose calls fail with ErrMissingAPIKey.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	c := newClient(nil, opts)
	key := strings.TrimSpace(opts.APIKey)
	if key == "" {
		return c, nil
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	inner, err := sdk.NewClient(ctx, &sdk.ClientConfig{
		APIKey:     key,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("genai: create client: %w", err)
	}
	c.models = inner.Models
	return c, nil
}

// NewClientWithModels builds a client over an existing model service.
func NewClientWithModels(models Models, opts Options) *Client {
	return newClient(models, opts)
}

func newClient(models Models, opts Options) *Client {
	imageModel := opts.ImageModel
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	chatModel := opts.ChatModel
	if chatModel == "" {
		chatModel = "gemini-2.5-flash"
	}
	imagenModel := opts.ImagenModel
	if imagenModel == "" {
		imagenModel = "imagen-3.0-generate-002"
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}

	return &Client{
		models:      models,
		imageModel:  imageModel,
		chatModel:   chatModel,
		imagenModel: imagenModel,
		logger:      logger,
	}
}

// HasCredentials reports whether calls can reach the API.
func (c *Client) HasCredentials() bool {
	return c != nil && c.models != nil
}

// Model returns the configured Gemini image model identifier.
func (c *Client) Model() string { return c.imageModel }

// ChatModel returns the configured chat model identifier.
func (c *Client) ChatModel() string { return c.chatModel }

// ImagenModel returns the configured Imagen model identifier.
func (c *Client) ImagenModel() string { return c.imagenModel }

// GenerateImage asks the Gemini image model for a single image. The source
// image, when present, is sent inline ahead of the prompt.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	var parts []*sdk.Part
	if req.Source != nil && len(req.Source.Data) > 0 {
		parts = append(parts, &sdk.Part{InlineData: &sdk.Blob{MIMEType: req.Source.MIMEType, Data: req.Source.Data}})
	}
	parts = append(parts, sdk.NewPartFromText(req.Prompt))
	contents := []*sdk.Content{sdk.NewContentFromParts(parts, sdk.RoleUser)}

	cfg := &sdk.GenerateContentConfig{ResponseModalities: []string{"TEXT", "IMAGE"}}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.imageModel, contents, cfg)
	if err != nil {
		return nil, err
	}
	asset, err := imageFromResponse(resp)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("model", c.imageModel).
		Str("mime", asset.MIMEType).
		Int("bytes", len(asset.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("gemini image generated")
	return asset, nil
}

// GenerateImagen asks Imagen for a single image.
func (c *Client) GenerateImagen(ctx context.Context, prompt, aspectRatio string) (*ImageAsset, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}
	resp, err := c.models.GenerateImages(ctx, c.imagenModel, prompt, &sdk.GenerateImagesConfig{
		AspectRatio: aspectRatio,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("empty imagen response")
	}
	for _, img := range resp.GeneratedImages {
		if img == nil || img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}
		mime := img.Image.MIMEType
		if mime == "" {
			mime = http.DetectContentType(img.Image.ImageBytes)
		}
		return &ImageAsset{Data: img.Image.ImageBytes, MIMEType: mime}, nil
	}
	return nil, errors.New("imagen returned no image")
}

// Chat sends the transcript plus the new message and returns the reply text.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	contents := make([]*sdk.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		var role sdk.Role = sdk.RoleUser
		if turn.Role == "model" || turn.Role == "assistant" {
			role = sdk.RoleModel
		}
		contents = append(contents, sdk.NewContentFromParts([]*sdk.Part{sdk.NewPartFromText(text)}, role))
	}
	var parts []*sdk.Part
	if req.Image != nil && len(req.Image.Data) > 0 {
		parts = append(parts, &sdk.Part{InlineData: &sdk.Blob{MIMEType: req.Image.MIMEType, Data: req.Image.Data}})
	}
	parts = append(parts, sdk.NewPartFromText(req.Message))
	contents = append(contents, sdk.NewContentFromParts(parts, sdk.RoleUser))

	cfg := &sdk.GenerateContentConfig{Temperature: sdk.Ptr(float32(0.8))}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = sdk.NewContentFromText(req.System, sdk.RoleUser)
	}

	resp, err := c.models.GenerateContent(ctx, c.chatModel, contents, cfg)
	if err != nil {
		return "", err
	}
	text := textFromResponse(resp)
	if text == "" {
		return "", errors.New("chat model returned no text")
	}
	return text, nil
}

// StatusCode extracts the HTTP status carried by an SDK error, or 0.
func StatusCode(err error) int {
	var apiErr sdk.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func imageFromResponse(resp *sdk.GenerateContentResponse) (*ImageAsset, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, errors.New("no candidates returned from model")
	}
	candidate := resp.Candidates[0]
	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mime := part.InlineData.MIMEType
				if mime == "" {
					mime = http.DetectContentType(part.InlineData.Data)
				}
				return &ImageAsset{Data: part.InlineData.Data, MIMEType: mime, Text: strings.TrimSpace(text.String())}, nil
			}
			text.WriteString(part.Text)
		}
	}
	if candidate.FinishReason != sdk.FinishReasonUnspecified && candidate.FinishReason != sdk.FinishReasonStop {
		return nil, fmt.Errorf("generation stopped: %s", candidate.FinishReason)
	}
	return nil, errors.New("no image data returned from model")
}

func textFromResponse(resp *sdk.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
