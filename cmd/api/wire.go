package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/chat"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/dispatch"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/providers/genai"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/providers/image"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/styles"
)

type services struct {
	dispatcher *dispatch.Dispatcher
	chat       *chat.Service
}

func buildServices(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*services, error) {
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout + cfg.ProviderTimeout/2}

	gemini, err := genai.NewClient(ctx, genai.Options{
		APIKey:      cfg.GeminiAPIKey,
		ImageModel:  cfg.GeminiImageModel,
		ChatModel:   cfg.GeminiChatModel,
		ImagenModel: cfg.ImagenModel,
		Logger:      &logger,
	})
	if err != nil {
		return nil, err
	}

	set := buildGenerators(cfg, gemini, httpClient, logger)
	set, skipped := image.ApplySubstitutions(set, cfg.ProviderSubstitutions, &logger)
	for _, id := range skipped {
		logger.Warn().Str("provider", id).Msg("substitution names an unknown provider, ignored")
	}

	baseline := cfg.BaselineProvider
	if baseline == "none" {
		baseline = ""
	}
	d, err := dispatch.New(dispatch.Options{
		Registry:       styles.Default(),
		Generators:     set,
		Baseline:       baseline,
		Procedural:     cfg.ProceduralFallback,
		MaxAttempts:    cfg.MaxAttempts,
		AttemptTimeout: cfg.ProviderTimeout,
		Budget:         cfg.GenerationBudget,
		BackoffBase:    cfg.BackoffBase,
		Logger:         &logger,
	})
	if err != nil {
		return nil, err
	}

	if !gemini.HasCredentials() {
		logger.Warn().Msg("GEMINI_API_KEY not set; gemini styles fall back and chat is disabled")
	}
	logger.Info().Strs("providers", d.Providers()).Strs("registered", set.Names()).Msg("image providers ready")

	return &services{
		dispatcher: d,
		chat:       chat.NewService(gemini, d, &logger),
	}, nil
}

func buildGenerators(cfg *infra.Config, gemini *genai.Client, httpClient *http.Client, logger zerolog.Logger) image.Set {
	pollOpts := image.PollinationsOptions{
		BaseURL:    cfg.PollinationsBaseURL,
		Inline:     cfg.InlineRemoteImages,
		HTTPClient: httpClient,
		Logger:     &logger,
	}
	return image.NewSet(
		image.NewPollinations(styles.ProviderFlux, "flux", pollOpts),
		image.NewPollinations(styles.ProviderTurbo, "turbo", pollOpts),
		image.NewGeminiGenerator(styles.ProviderNanoBanana, gemini),
		image.NewImagenGenerator(styles.ProviderImagen, gemini),
		image.NewReplicate(styles.ProviderReplicate, image.ReplicateOptions{
			Token:      cfg.ReplicateAPIToken,
			Model:      cfg.ReplicateModel,
			HTTPClient: httpClient,
			Logger:     &logger,
		}),
		image.NewProcedural(styles.ProviderProcedural),
	)
}
