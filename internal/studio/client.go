package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/i18n"
)

// Generation is the API's answer to a generate or convert call.
type Generation struct {
	Success   bool   `json:"success"`
	ImageURL  string `json:"imageUrl"`
	Style     string `json:"style"`
	StyleName string `json:"styleName"`
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Fallback  bool   `json:"fallback"`
	Note      string `json:"note"`
}

// Style is one entry of the health listing.
type Style struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	AI   string `json:"ai"`
}

// Health is the API's status document.
type Health struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	AIProviders []string `json:"aiProviders"`
	Styles      []Style  `json:"styles"`
}

// APIError is a failed API call. Server side failures carry the localized
// generic message rather than anything the server returned.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrValidation:
		return e.Status >= 400 && e.Status < 500
	case domain.ErrGenerationFailed:
		return e.Status == 0 || e.Status >= 500
	}
	return false
}

// Client talks to the kirie HTTP API.
type Client struct {
	baseURL    string
	locale     string
	httpClient *http.Client
}

// NewClient returns a client for the API at baseURL speaking locale.
func NewClient(baseURL, locale string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		locale:     i18n.Normalize(locale),
		httpClient: httpClient,
	}
}

// Generate asks for a paper-cut image of prompt in style.
func (c *Client) Generate(ctx context.Context, prompt, style string) (*Generation, error) {
	var out Generation
	err := c.post(ctx, "/api/generate", map[string]string{"prompt": prompt, "style": style}, &out)
	if err != nil {
		return nil, err
	}
	out.Prompt = prompt
	return &out, nil
}

// Convert turns a photo (data URI or base64) into a paper-cut image.
func (c *Client) Convert(ctx context.Context, imageData, style string) (*Generation, error) {
	var out Generation
	body := map[string]string{"imageData": imageData}
	if style != "" {
		body["style"] = style
	}
	if err := c.post(ctx, "/api/convert", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches the style listing and provider status.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return nil, err
	}
	var out Health
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept-Language", c.locale)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return c.failure(0)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return c.failure(0)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		msg := strings.TrimSpace(envelope.Error)
		if msg == "" {
			msg = fmt.Sprintf("%s (%d)", i18n.T(c.locale, i18n.InvalidBody), resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if resp.StatusCode != http.StatusOK {
		return c.failure(resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return c.failure(resp.StatusCode)
	}
	if g, ok := out.(*Generation); ok && (!g.Success || g.ImageURL == "") {
		return c.failure(resp.StatusCode)
	}
	return nil
}

func (c *Client) failure(status int) error {
	return &APIError{Status: status, Message: i18n.T(c.locale, i18n.GenerationFailed)}
}
