// Package dispatch turns a style and a prompt into one image by choosing a
// provider, retrying it, and walking the fallback chain when it keeps failing.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/domain"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/providers/image"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/styles"
)

const (
	defaultMaxAttempts    = 2
	maxAttemptsCeiling    = 3
	defaultAttemptTimeout = 15 * time.Second
	defaultBudget         = 25 * time.Second
	defaultBackoffBase    = time.Second
	maxBackoff            = 3 * time.Second

	fallbackSuffix = " (Fallback)"
)

// Options wires a Dispatcher.
type Options struct {
	Registry   *styles.Registry
	Generators image.Set
	// Baseline is the provider tried once after the style's provider is
	// exhausted. Empty disables the step.
	Baseline string
	// Procedural enables the SVG generator as the last resort.
	Procedural     bool
	MaxAttempts    int
	AttemptTimeout time.Duration
	Budget         time.Duration
	BackoffBase    time.Duration
	Logger         *infra.Logger
}

// Request is one generation or conversion.
type Request struct {
	Prompt      string
	StyleID     string
	SourceImage *domain.SourceImage
	RequestID   string
}

// Result is what the endpoint layer reports back to the client.
type Result struct {
	Ref           domain.ImageRef
	Provider      string
	Requested     string
	ReportedModel string
	StyleID       string
	StyleName     string
	Prompt        string
	Attempts      int
	UsedFallback  bool
	Substituted   bool
}

// Dispatcher is safe for concurrent use; it holds no per-request state.
type Dispatcher struct {
	registry       *styles.Registry
	generators     image.Set
	baseline       string
	procedural     image.Generator
	maxAttempts    int
	attemptTimeout time.Duration
	budget         time.Duration
	backoffBase    time.Duration
	logger         *infra.Logger
}

// New validates opts and returns a dispatcher.
func New(opts Options) (*Dispatcher, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("%w: dispatcher requires a style registry", domain.ErrConfiguration)
	}
	if len(opts.Generators) == 0 {
		return nil, fmt.Errorf("%w: dispatcher requires at least one generator", domain.ErrConfiguration)
	}
	d := &Dispatcher{
		registry:       opts.Registry,
		generators:     opts.Generators,
		baseline:       strings.ToLower(strings.TrimSpace(opts.Baseline)),
		maxAttempts:    opts.MaxAttempts,
		attemptTimeout: opts.AttemptTimeout,
		budget:         opts.Budget,
		backoffBase:    opts.BackoffBase,
		logger:         opts.Logger,
	}
	if d.maxAttempts <= 0 {
		d.maxAttempts = defaultMaxAttempts
	}
	if d.maxAttempts > maxAttemptsCeiling {
		d.maxAttempts = maxAttemptsCeiling
	}
	if d.attemptTimeout <= 0 {
		d.attemptTimeout = defaultAttemptTimeout
	}
	if d.budget <= 0 {
		d.budget = defaultBudget
	}
	if d.backoffBase < 0 {
		d.backoffBase = defaultBackoffBase
	}
	if d.logger == nil {
		nop := zerolog.Nop()
		d.logger = &nop
	}
	if opts.Procedural {
		gen, ok := opts.Generators.Get(styles.ProviderProcedural)
		if !ok {
			return nil, fmt.Errorf("%w: procedural fallback enabled without a procedural generator", domain.ErrConfiguration)
		}
		d.procedural = gen
	}
	if d.baseline != "" {
		if _, ok := opts.Generators.Get(d.baseline); !ok {
			return nil, fmt.Errorf("%w: baseline provider %q is not registered", domain.ErrConfiguration, d.baseline)
		}
	}
	return d, nil
}

// Registry exposes the style registry the dispatcher resolves against.
func (d *Dispatcher) Registry() *styles.Registry { return d.registry }

// Providers lists provider ids that can currently serve requests.
func (d *Dispatcher) Providers() []string { return d.generators.Available() }

// Generate resolves the style, builds the prompt and produces one image.
// Failures after the whole chain wrap domain.ErrGenerationFailed.
func (d *Dispatcher) Generate(ctx context.Context, req Request) (Result, error) {
	style, ok := d.registry.Resolve(req.StyleID)
	if !ok {
		return Result{}, fmt.Errorf("%w: baseline style %q is not registered", domain.ErrConfiguration, d.registry.Baseline())
	}
	prompt := styles.BuildPrompt(req.Prompt, style)

	log := d.logger.With().
		Str("style", style.ID).
		Str("request_id", req.RequestID).
		Logger()

	budgetCtx, cancel := context.WithTimeout(ctx, d.budget)
	defer cancel()

	ireq := image.Request{Prompt: prompt, SourceImage: req.SourceImage, RequestID: req.RequestID}
	out := Result{StyleID: style.ID, StyleName: style.DisplayName, Prompt: prompt, Requested: style.Provider}

	var lastErr error
	if gen, found := d.generators.Get(style.Provider); found {
		res, n, err := d.attempt(budgetCtx, gen, ireq, d.maxAttempts, &log)
		out.Attempts += n
		if err == nil {
			return d.finish(out, res, false, &log), nil
		}
		lastErr = err
	} else {
		lastErr = domain.NewProviderError(style.Provider, "resolve", 0, domain.ErrUnknownProvider)
		log.Error().Str("provider", style.Provider).Msg("style references an unregistered provider")
	}

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, errors.Join(lastErr, err))
	}

	if d.baseline != "" && d.baseline != strings.ToLower(style.Provider) {
		gen, _ := d.generators.Get(d.baseline)
		log.Warn().Err(lastErr).Str("provider", d.baseline).Msg("falling back to baseline provider")
		res, n, err := d.attempt(budgetCtx, gen, ireq, 1, &log)
		out.Attempts += n
		if err == nil {
			return d.finish(out, res, true, &log), nil
		}
		lastErr = err
	}

	if d.procedural != nil {
		log.Warn().Err(lastErr).Msg("falling back to procedural artwork")
		res, err := d.procedural.Generate(context.WithoutCancel(budgetCtx), ireq)
		out.Attempts++
		if err == nil && !res.Ref.IsZero() {
			return d.finish(out, res, true, &log), nil
		}
		if err != nil {
			lastErr = err
		}
	}

	log.Error().Err(lastErr).Int("attempts", out.Attempts).Msg("generation failed")
	return Result{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, lastErr)
}

// attempt calls gen up to tries times with linear backoff between calls.
func (d *Dispatcher) attempt(ctx context.Context, gen image.Generator, req image.Request, tries int, log *infra.Logger) (image.Result, int, error) {
	var (
		res     image.Result
		lastErr error
		n       int
	)
	op := func() error {
		n++
		attemptCtx, cancel := context.WithTimeout(ctx, d.attemptTimeout)
		defer cancel()
		r, err := gen.Generate(attemptCtx, req)
		if err == nil && r.Ref.IsZero() {
			err = domain.NewProviderError(gen.Name(), "generate", 0, errors.New("empty image reference"))
		}
		if err == nil {
			res = r
			return nil
		}
		lastErr = err
		log.Warn().Err(err).Str("provider", gen.Name()).Int("attempt", n).Msg("provider attempt failed")
		if a, ok := gen.(image.Availability); ok && !a.Available() {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: d.backoffBase, max: maxBackoff}, uint64(tries-1)),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		if lastErr == nil {
			lastErr = domain.NewProviderError(gen.Name(), "generate", 0, err)
		}
		return image.Result{}, n, lastErr
	}
	return res, n, nil
}

func (d *Dispatcher) finish(out Result, res image.Result, fallback bool, log *infra.Logger) Result {
	out.Ref = res.Ref
	out.Provider = res.Provider
	out.UsedFallback = fallback
	out.Substituted = res.Substituted
	out.ReportedModel = Label(res.Provider)
	if fallback || res.Substituted || !strings.EqualFold(res.Provider, out.Requested) {
		out.ReportedModel += fallbackSuffix
	}
	log.Info().
		Str("provider", res.Provider).
		Str("requested", out.Requested).
		Bool("fallback", fallback).
		Bool("substituted", res.Substituted).
		Int("attempts", out.Attempts).
		Str("kind", string(res.Ref.Kind)).
		Msg("image generated")
	return out
}

// Label renders a provider id the way clients display it.
func Label(provider string) string {
	return cases.Upper(language.Und).String(provider)
}

// linearBackOff waits attempt × base, capped at max.
type linearBackOff struct {
	base time.Duration
	max  time.Duration
	n    int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.n++
	wait := time.Duration(b.n) * b.base
	if wait > b.max {
		wait = b.max
	}
	return wait
}

func (b *linearBackOff) Reset() { b.n = 0 }
