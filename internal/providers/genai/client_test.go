package genai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sdk "google.golang.org/genai"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
)

type stubModels struct {
	content      *sdk.GenerateContentResponse
	images       *sdk.GenerateImagesResponse
	err          error
	lastModel    string
	lastContents []*sdk.Content
	lastConfig   *sdk.GenerateContentConfig
	lastPrompt   string
	calls        int
}

func (s *stubModels) GenerateContent(ctx context.Context, model string, contents []*sdk.Content, config *sdk.GenerateContentConfig) (*sdk.GenerateContentResponse, error) {
	s.calls++
	s.lastModel = model
	s.lastContents = contents
	s.lastConfig = config
	return s.content, s.err
}

func (s *stubModels) GenerateImages(ctx context.Context, model, prompt string, config *sdk.GenerateImagesConfig) (*sdk.GenerateImagesResponse, error) {
	s.calls++
	s.lastModel = model
	s.lastPrompt = prompt
	return s.images, s.err
}

func partsResponse(parts ...*sdk.Part) *sdk.GenerateContentResponse {
	return &sdk.GenerateContentResponse{
		Candidates: []*sdk.Candidate{{Content: &sdk.Content{Role: "model", Parts: parts}}},
	}
}

func TestClientWithoutKeyReportsMissingCredentials(t *testing.T) {
	c, err := NewClient(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.HasCredentials() {
		t.Fatalf("client without key should not report credentials")
	}
	if _, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "x"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := c.Chat(context.Background(), ChatRequest{Message: "x"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if c.Model() != "gemini-2.5-flash-image" || c.ChatModel() != "gemini-2.5-flash" || c.ImagenModel() != "imagen-3.0-generate-002" {
		t.Fatalf("unexpected default models: %s %s %s", c.Model(), c.ChatModel(), c.ImagenModel())
	}
}

func TestGenerateImageReturnsInlinePart(t *testing.T) {
	models := &stubModels{content: partsResponse(
		sdk.NewPartFromText("here you go"),
		&sdk.Part{InlineData: &sdk.Blob{MIMEType: "image/png", Data: []byte("png-bytes")}},
	)}
	c := NewClientWithModels(models, Options{})

	src := &domain.SourceImage{Data: []byte("src"), MIMEType: "image/jpeg"}
	asset, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "a crane", Source: src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(asset.Data) != "png-bytes" || asset.MIMEType != "image/png" {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if asset.Text != "here you go" {
		t.Fatalf("expected accompanying text, got %q", asset.Text)
	}
	if models.lastModel != "gemini-2.5-flash-image" {
		t.Fatalf("unexpected model %q", models.lastModel)
	}
	if len(models.lastContents) != 1 || len(models.lastContents[0].Parts) != 2 {
		t.Fatalf("expected source image and prompt parts, got %#v", models.lastContents)
	}
	if models.lastContents[0].Parts[0].InlineData == nil || models.lastContents[0].Parts[1].Text != "a crane" {
		t.Fatalf("source image should precede the prompt")
	}
	if got := models.lastConfig.ResponseModalities; len(got) != 2 || got[1] != "IMAGE" {
		t.Fatalf("unexpected modalities %v", got)
	}
}

func TestGenerateImageWithoutImagePart(t *testing.T) {
	models := &stubModels{content: partsResponse(sdk.NewPartFromText("I cannot draw that"))}
	c := NewClientWithModels(models, Options{})
	if _, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error when no image part is returned")
	}
}

func TestGenerateImageSafetyStop(t *testing.T) {
	models := &stubModels{content: &sdk.GenerateContentResponse{
		Candidates: []*sdk.Candidate{{FinishReason: sdk.FinishReasonSafety}},
	}}
	c := NewClientWithModels(models, Options{})
	_, err := c.GenerateImage(context.Background(), ImageRequest{Prompt: "x"})
	if err == nil {
		t.Fatalf("expected error for safety stop")
	}
}

func TestGenerateImagen(t *testing.T) {
	models := &stubModels{images: &sdk.GenerateImagesResponse{
		GeneratedImages: []*sdk.GeneratedImage{
			{Image: &sdk.Image{}},
			{Image: &sdk.Image{ImageBytes: []byte("jpeg"), MIMEType: "image/jpeg"}},
		},
	}}
	c := NewClientWithModels(models, Options{ImagenModel: "imagen-test"})
	asset, err := c.GenerateImagen(context.Background(), "paper lantern", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(asset.Data) != "jpeg" || asset.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if models.lastModel != "imagen-test" || models.lastPrompt != "paper lantern" {
		t.Fatalf("unexpected call: %s %q", models.lastModel, models.lastPrompt)
	}
}

func TestChatBuildsTranscript(t *testing.T) {
	models := &stubModels{content: partsResponse(sdk.NewPartFromText(" hello there "))}
	c := NewClientWithModels(models, Options{})
	reply, err := c.Chat(context.Background(), ChatRequest{
		System: "be kind",
		History: []Turn{
			{Role: "user", Text: "hi"},
			{Role: "assistant", Text: "hello"},
			{Role: "user", Text: "  "},
		},
		Message: "draw a fox",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "hello there" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if len(models.lastContents) != 3 {
		t.Fatalf("expected 3 contents (blank turn dropped), got %d", len(models.lastContents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, want := range wantRoles {
		if got := models.lastContents[i].Role; got != want {
			t.Fatalf("content %d: role %q, want %q", i, got, want)
		}
	}
	if models.lastConfig.SystemInstruction == nil {
		t.Fatalf("expected system instruction")
	}
}

func TestStatusCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", sdk.APIError{Code: 429, Message: "quota"})
	if got := StatusCode(err); got != 429 {
		t.Fatalf("expected 429, got %d", got)
	}
	if got := StatusCode(errors.New("plain")); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
