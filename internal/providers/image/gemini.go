package image

import (
	"context"
	"fmt"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/providers/genai"
)

type geminiImageClient interface {
	GenerateImage(context.Context, genai.ImageRequest) (*genai.ImageAsset, error)
	GenerateImagen(ctx context.Context, prompt, aspectRatio string) (*genai.ImageAsset, error)
	HasCredentials() bool
	Model() string
	ImagenModel() string
}

// GeminiGenerator renders images with the Gemini image model ("nanobanana").
// It forwards an uploaded source image inline.
type GeminiGenerator struct {
	id     string
	client geminiImageClient
}

// NewGeminiGenerator wires a Gemini client under the given provider id.
func NewGeminiGenerator(id string, client geminiImageClient) *GeminiGenerator {
	return &GeminiGenerator{id: id, client: client}
}

func (g *GeminiGenerator) Name() string { return g.id }

// Available reports whether an API key is configured.
func (g *GeminiGenerator) Available() bool {
	return g != nil && g.client != nil && g.client.HasCredentials()
}

// Generate fulfils the Generator interface.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	if !g.Available() {
		return Result{}, domain.NewProviderError(g.id, "generate", 0, genai.ErrMissingAPIKey)
	}
	asset, err := g.client.GenerateImage(ctx, genai.ImageRequest{Prompt: req.Prompt, Source: req.SourceImage})
	if err != nil {
		return Result{}, domain.NewProviderError(g.id, "generate", genai.StatusCode(err), err)
	}
	if err := checkAsset(g.id, asset); err != nil {
		return Result{}, err
	}
	return Result{
		Provider:  g.id,
		Requested: g.id,
		Model:     g.client.Model(),
		Ref:       domain.InlineRef(asset.Data, asset.MIMEType),
	}, nil
}

var _ Generator = (*GeminiGenerator)(nil)

// ImagenGenerator renders images with Imagen. It is text-to-image only.
type ImagenGenerator struct {
	id          string
	client      geminiImageClient
	aspectRatio string
}

// NewImagenGenerator wires a Gemini client's Imagen endpoint under id.
func NewImagenGenerator(id string, client geminiImageClient) *ImagenGenerator {
	return &ImagenGenerator{id: id, client: client, aspectRatio: "1:1"}
}

func (g *ImagenGenerator) Name() string { return g.id }

// Available reports whether an API key is configured.
func (g *ImagenGenerator) Available() bool {
	return g != nil && g.client != nil && g.client.HasCredentials()
}

// Generate fulfils the Generator interface.
func (g *ImagenGenerator) Generate(ctx context.Context, req Request) (Result, error) {
	if !g.Available() {
		return Result{}, domain.NewProviderError(g.id, "generate", 0, genai.ErrMissingAPIKey)
	}
	asset, err := g.client.GenerateImagen(ctx, req.Prompt, g.aspectRatio)
	if err != nil {
		return Result{}, domain.NewProviderError(g.id, "generate", genai.StatusCode(err), err)
	}
	if err := checkAsset(g.id, asset); err != nil {
		return Result{}, err
	}
	return Result{
		Provider:  g.id,
		Requested: g.id,
		Model:     g.client.ImagenModel(),
		Ref:       domain.InlineRef(asset.Data, asset.MIMEType),
	}, nil
}

var _ Generator = (*ImagenGenerator)(nil)

// checkAsset rejects missing or undersized images so the dispatcher moves on
// to the next provider.
func checkAsset(provider string, asset *genai.ImageAsset) error {
	if asset == nil || len(asset.Data) == 0 {
		return domain.NewProviderError(provider, "read image", 0, fmt.Errorf("empty payload"))
	}
	if len(asset.Data) < MinInlinePayload {
		return domain.NewProviderError(provider, "read image", 0, fmt.Errorf("payload too small (%d bytes)", len(asset.Data)))
	}
	return nil
}
