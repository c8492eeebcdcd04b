package image

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
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
)

// ReplicateOptions configures the Replicate predictions client.
type ReplicateOptions struct {
	Token        string
	Model        string
	BaseURL      string
	HTTPClient   *http.Client
	PollInterval time.Duration
	Logger       *infra.Logger
}

// Replicate runs a hosted model through Replicate's predictions API and
// returns the hosted output URL.
type Replicate struct {
	id           string
	token        string
	model        string
	baseURL      string
	httpClient   *http.Client
	pollInterval time.Duration
	logger       *infra.Logger
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output any             `json:"output"`
	Error  json.RawMessage `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// NewReplicate returns the generator registered as id.
func NewReplicate(id string, opts ReplicateOptions) *Replicate {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	model := strings.Trim(strings.TrimSpace(opts.Model), "/")
	if model == "" {
		model = "black-forest-labs/flux-schnell"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Replicate{
		id:           id,
		token:        strings.TrimSpace(opts.Token),
		model:        model,
		baseURL:      baseURL,
		httpClient:   client,
		pollInterval: interval,
		logger:       loggerOrDiscard(opts.Logger),
	}
}

func (r *Replicate) Name() string { return r.id }

// Available reports whether an API token is configured.
func (r *Replicate) Available() bool { return r.token != "" }

// Generate fulfils the Generator interface.
func (r *Replicate) Generate(ctx context.Context, req Request) (Result, error) {
	if !r.Available() {
		return Result{}, domain.NewProviderError(r.id, "generate", 0, errors.New("missing api token"))
	}
	input := map[string]any{
		"prompt":        req.Prompt,
		"aspect_ratio":  "1:1",
		"output_format": "png",
	}
	if req.Seed != 0 {
		input["seed"] = req.Seed % 2147483647
	}
	body, err := json.Marshal(map[string]any{"input": input})
	if err != nil {
		return Result{}, domain.NewProviderError(r.id, "encode request", 0, err)
	}

	endpoint := fmt.Sprintf("%s/models/%s/predictions", r.baseURL, r.model)
	pred, err := r.do(ctx, http.MethodPost, endpoint, body, "create prediction")
	if err != nil {
		return Result{}, err
	}

	for !terminalStatus(pred.Status) {
		if pred.URLs.Get == "" {
			return Result{}, domain.NewProviderError(r.id, "poll prediction", 0, errors.New("prediction has no poll url"))
		}
		select {
		case <-ctx.Done():
			return Result{}, domain.NewProviderError(r.id, "poll prediction", 0, ctx.Err())
		case <-time.After(r.pollInterval):
		}
		pred, err = r.do(ctx, http.MethodGet, pred.URLs.Get, nil, "poll prediction")
		if err != nil {
			return Result{}, err
		}
	}

	if pred.Status != "succeeded" {
		return Result{}, domain.NewProviderError(r.id, "prediction "+pred.Status, 0, errors.New(predictionError(pred.Error)))
	}
	imageURL := firstOutputURL(pred.Output)
	if imageURL == "" {
		return Result{}, domain.NewProviderError(r.id, "read output", 0, errors.New("prediction returned no image url"))
	}
	r.logger.Debug().Str("provider", r.id).Str("prediction", pred.ID).Msg("replicate prediction succeeded")
	return Result{Provider: r.id, Requested: r.id, Model: r.model, Ref: domain.URLRef(imageURL)}, nil
}

func (r *Replicate) do(ctx context.Context, method, endpoint string, body []byte, op string) (*replicatePrediction, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, domain.NewProviderError(r.id, op, 0, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+r.token)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Prefer", "wait")
	}
	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewProviderError(r.id, op, 0, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, domain.NewProviderError(r.id, op, resp.StatusCode, err)
	}
	if resp.StatusCode >= 300 {
		return nil, domain.NewProviderError(r.id, op, resp.StatusCode, errors.New(summarize(payload)))
	}
	var pred replicatePrediction
	if err := json.Unmarshal(payload, &pred); err != nil {
		return nil, domain.NewProviderError(r.id, op, resp.StatusCode, fmt.Errorf("decode prediction: %w", err))
	}
	return &pred, nil
}

func terminalStatus(status string) bool {
	switch status {
	case "succeeded", "failed", "canceled":
		return true
	default:
		return false
	}
}

func firstOutputURL(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func predictionError(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "no error detail"
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return summarize(raw)
}

func summarize(payload []byte) string {
	var env struct {
		Detail string `json:"detail"`
		Title  string `json:"title"`
	}
	if err := json.Unmarshal(payload, &env); err == nil {
		if env.Detail != "" {
			return env.Detail
		}
		if env.Title != "" {
			return env.Title
		}
	}
	msg := strings.TrimSpace(string(payload))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	if msg == "" {
		msg = "empty response"
	}
	return msg
}

var _ Generator = (*Replicate)(nil)
