package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
)

const (
	// MinInlinePayload is the smallest body accepted as a real image.
	MinInlinePayload = 1024
	maxInlinePayload = 20 << 20
	defaultImageSize = 1024
)

// PollinationsOptions configures a Pollinations-backed generator.
type PollinationsOptions struct {
	BaseURL string
	// Inline makes the generator download the image and return its bytes
	// instead of the URL.
	Inline     bool
	HTTPClient *http.Client
	Logger     *infra.Logger
	Now        func() time.Time
}

// Pollinations synthesizes Pollinations image URLs for one upstream model.
type Pollinations struct {
	id         string
	model      string
	baseURL    string
	inline     bool
	httpClient *http.Client
	logger     *infra.Logger
	now        func() time.Time
}

// NewPollinations returns the generator registered as id, rendering with the
// given Pollinations model (flux, turbo).
func NewPollinations(id, model string, opts PollinationsOptions) *Pollinations {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pollinations{
		id:         id,
		model:      model,
		baseURL:    baseURL,
		inline:     opts.Inline,
		httpClient: client,
		logger:     loggerOrDiscard(opts.Logger),
		now:        now,
	}
}

func (p *Pollinations) Name() string { return p.id }

// Generate fulfils the Generator interface.
func (p *Pollinations) Generate(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, domain.NewProviderError(p.id, "generate", 0, err)
	}
	seed := req.Seed
	if seed == 0 {
		seed = p.now().UnixMilli()
	}
	imageURL := p.BuildURL(req.Prompt, seed)
	res := Result{Provider: p.id, Requested: p.id, Model: p.model}
	if !p.inline {
		res.Ref = domain.URLRef(imageURL)
		return res, nil
	}
	data, mime, err := p.fetch(ctx, imageURL)
	if err != nil {
		return Result{}, err
	}
	res.Ref = domain.InlineRef(data, mime)
	return res, nil
}

// BuildURL renders the request URL for prompt. No network I/O happens.
func (p *Pollinations) BuildURL(prompt string, seed int64) string {
	q := url.Values{}
	q.Set("width", strconv.Itoa(defaultImageSize))
	q.Set("height", strconv.Itoa(defaultImageSize))
	q.Set("model", p.model)
	q.Set("nologo", "true")
	q.Set("enhance", "true")
	q.Set("seed", strconv.FormatInt(seed, 10))
	return p.baseURL + "/prompt/" + url.PathEscape(prompt) + "?" + q.Encode()
}

func (p *Pollinations) fetch(ctx context.Context, imageURL string) ([]byte, string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", domain.NewProviderError(p.id, "build request", 0, err)
	}
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, "", domain.NewProviderError(p.id, "fetch", 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, "", domain.NewProviderError(p.id, "fetch", resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInlinePayload+1))
	if err != nil {
		return nil, "", domain.NewProviderError(p.id, "read body", resp.StatusCode, err)
	}
	if len(data) > maxInlinePayload {
		return nil, "", domain.NewProviderError(p.id, "read body", resp.StatusCode, errors.New("payload too large"))
	}
	if len(data) < MinInlinePayload {
		return nil, "", domain.NewProviderError(p.id, "read body", resp.StatusCode, fmt.Errorf("payload too small (%d bytes)", len(data)))
	}
	mime := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(mime, "image/") {
		mime = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, "", domain.NewProviderError(p.id, "read body", resp.StatusCode, fmt.Errorf("unexpected content type %q", mime))
	}
	p.logger.Debug().Str("provider", p.id).Int("bytes", len(data)).Msg("pollinations image inlined")
	return data, mime, nil
}

var _ Generator = (*Pollinations)(nil)

func loggerOrDiscard(l *infra.Logger) *infra.Logger {
	if l != nil {
		return l
	}
	discard := zerolog.New(io.Discard)
	return &discard
}
