package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"trend-collector/config"
	"trend-collector/repositories"
	"trend-collector/services"
)

func main() {
	godotenv.Load()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	browser := repositories.NewBrowserManager(cfg, log)
	defer browser.Close()

	svc := services.NewTrendService(
		services.WithBrowser(browser),
		services.WithLogger(log),
		services.WithIterationDelay(cfg.IterationDelay),
		services.WithScrollPause(cfg.ScrollPause),
		services.WithScrollBudget(cfg.ExploreScrolls, cfg.MaxSearchScrolls),
		services.WithSearchLimits(cfg.SearchLimit, cfg.SearchFallbackLimit),
	)

	// SIGINT/SIGTERM stops scheduling further iterations; the in-flight page
	// navigation is allowed to finish.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
		cancel()
	}()

	log.Info().
		Strs("keywords", cfg.Keywords).
		Strs("hashtags", cfg.Hashtags).
		Msg("starting trend collection")

	result := svc.CollectTrends(ctx, services.CollectOptions{
		Keywords:       cfg.Keywords,
		Hashtags:       cfg.Hashtags,
		IncludeExplore: true,
	})
	if !result.Success {
		log.Error().Str("error", result.Error).Msg("collection produced no trends")
		os.Exit(1)
	}

	writer := &repositories.TrendWriter{FilePath: cfg.OutputPath}
	if err := writer.Append(result); err != nil {
		log.Error().Err(err).Msg("failed to write trend log")
	}
	if err := services.WriteTrendReport(cfg.ReportPath, result); err != nil {
		log.Error().Err(err).Msg("failed to write trend report")
	}

	log.Info().
		Int("trends", len(result.Trends)).
		Str("output", cfg.OutputPath).
		Str("report", cfg.ReportPath).
		Msg("collection complete")
}
