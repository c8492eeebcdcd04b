package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/http/handlers"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/http/httpapi"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra"
	"github.com/Ryuya330/AI-Kirie-Studio-App/internal/infra/geoip"
)

func main() {
	_, _ = infra.LoadDotEnv(".env.local", ".env")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildServices(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build services")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	app := handlers.NewApp(svc.dispatcher, svc.chat, cfg.MaxBodyBytes)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		Country:        resolver.Lookup(),
		RateLimit:      cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)
	logger.Info().Str("addr", server.Addr()).Msg("API listening")
	if err := server.Run(ctx, cfg.HTTPIdleTimeout); err != nil {
		logger.Error().Err(err).Msg("http server stopped with error")
		return
	}
	logger.Info().Msg("server stopped")
}
