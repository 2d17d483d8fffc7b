package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/goosegrocer/backend/config"
	httpDelivery "github.com/goosegrocer/backend/internal/delivery/http"
	"github.com/goosegrocer/backend/internal/domain"
	"github.com/goosegrocer/backend/internal/infrastructure/ai"
	"github.com/goosegrocer/backend/internal/infrastructure/cache"
	"github.com/goosegrocer/backend/internal/infrastructure/catalog"
	"github.com/goosegrocer/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.InitLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zap.L().Sync()

	zap.L().Info("starting goosegrocer backend",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Catalog store
	store, err := catalog.NewSQLite(cfg.Catalog.Path)
	if err != nil {
		zap.L().Fatal("open catalog", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		zap.L().Fatal("migrate catalog", zap.Error(err))
	}

	if cfg.Catalog.SeedPath != "" {
		if _, err := os.Stat(cfg.Catalog.SeedPath); err == nil {
			if _, err := store.SeedFromCSV(ctx, cfg.Catalog.SeedPath); err != nil {
				zap.L().Fatal("load seed data", zap.Error(err))
			}
		} else {
			zap.L().Warn("seed file not found, starting with existing catalog",
				zap.String("path", cfg.Catalog.SeedPath),
			)
		}
	}

	// AI services. Without an API key the matcher still works in
	// exact/fuzzy mode and meal expansion falls back to raw text.
	var (
		expander  *ai.Expander
		resolver  *ai.Resolver
		extractor *ai.FlyerVision
	)
	if cfg.Anthropic.APIKey != "" {
		client := ai.NewClient(cfg.Anthropic.APIKey, cfg.Anthropic.RequestsPerMinute)
		expander = ai.NewExpander(client, cfg.Anthropic)
		resolver = ai.NewResolver(client, cfg.Anthropic)
		extractor = ai.NewFlyerVision(client, cfg.Anthropic)
		zap.L().Info("ai services configured", zap.String("model", cfg.Anthropic.Model))
	} else {
		zap.L().Warn("no ai api key configured, meal expansion and ambiguous matching disabled")
	}

	matchCache := cache.NewMatchCache(cfg.Cache.TTL)

	// Usecase layer. Nil interface values must stay nil, hence the
	// explicit wrapping of the optional AI services.
	normalizer := usecase.NewNormalizer(nilableExpander(expander))
	matcher := usecase.NewMatcher(store, nilableResolver(resolver), matchCache, usecase.MatchConfig{
		FuzzyThreshold:      cfg.Matching.FuzzyThreshold,
		AIFloor:             cfg.Matching.AIFloor,
		AIDefaultConfidence: cfg.Matching.AIDefaultConfidence,
		MaxCandidates:       cfg.Matching.MaxCandidates,
	})
	comparator := usecase.NewComparator(cfg.Comparison.UnmatchedTolerance)
	comparisons := usecase.NewComparisonService(normalizer, matcher, comparator)
	deals := usecase.NewDealService(nilableExtractor(extractor), store)

	handler := httpDelivery.NewHandler(comparisons, deals, store, store)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zap.L().Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

// A nil *T stored in an interface is not a nil interface; these keep the
// "service disabled" checks in the usecase layer working.

func nilableExpander(e *ai.Expander) domain.MealExpander {
	if e == nil {
		return nil
	}
	return e
}

func nilableResolver(r *ai.Resolver) domain.MatchResolver {
	if r == nil {
		return nil
	}
	return r
}

func nilableExtractor(f *ai.FlyerVision) domain.FlyerExtractor {
	if f == nil {
		return nil
	}
	return f
}
