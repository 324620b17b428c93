// cmd/planner/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"trip-planner/internal/common/config"
	"trip-planner/internal/common/database"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/observability"
	"trip-planner/internal/models"
	"trip-planner/internal/pipeline"
	"trip-planner/internal/preferences"
	"trip-planner/internal/providers/llm"
	"trip-planner/internal/providers/travel"
	"trip-planner/internal/providers/websearch"
	checkfeasibility "trip-planner/internal/stages/check-feasibility"
	classifyrequest "trip-planner/internal/stages/classify-request"
	extractparameters "trip-planner/internal/stages/extract-parameters"
	filterconstraints "trip-planner/internal/stages/filter-constraints"
	generatecandidates "trip-planner/internal/stages/generate-candidates"
	validaterequirements "trip-planner/internal/stages/validate-requirements"
	"trip-planner/internal/storage"
	"trip-planner/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	showProgress := flag.Bool("progress", false, "print progress events while researching")
	showHistory := flag.Bool("history", false, "print recent research runs and exit")
	showStages := flag.Bool("stages", false, "print the stage catalog and exit")
	flag.Parse()

	if *showStages {
		printed, err := json.MarshalIndent(registry.Builtin(), "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(printed))
		return
	}

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting trip planner...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("trip-planner")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry (history store) ---
	var pg *database.PostgresClient
	if cfg.Pipeline.HistoryEnabled {
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Init Elasticsearch with retry (audit log) ---
	var esClient *database.ElasticsearchClient
	if cfg.Pipeline.AuditEnabled {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Init Redis with retry (travel offer cache) ---
	var redis *database.RedisClient
	if cfg.APIs.Travel.CacheTTL > 0 {
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, travel offers will not be cached", zap.Error(err))
			redis = nil
		} else {
			defer redis.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	if *showHistory {
		if pg == nil {
			zapLog.Fatal("history requires pipeline.history_enabled and a postgres connection")
		}
		printHistory(ctx, pg, log, zapLog)
		return
	}

	request := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if request == "" {
		fmt.Fprintln(os.Stderr, "usage: planner [flags] <travel request>")
		os.Exit(2)
	}

	coordinator := buildCoordinator(cfg, pg, esClient, redis, log)

	var progress models.ProgressFunc
	if *showProgress {
		progress = func(event models.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "[%s] %s %s\n", event.Type, event.Step, event.Message)
		}
	}

	started := time.Now()
	result, err := coordinator.ResearchWithFeasibility(ctx, request, progress)
	obs.RecordRunDuration(ctx, time.Since(started), statusOf(err))
	obs.RecordRunProcessed(ctx, statusOf(err))
	if err != nil {
		zapLog.Fatal("research failed", zap.Error(err))
	}

	printed, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		zapLog.Fatal("result encoding failed", zap.Error(err))
	}
	fmt.Println(string(printed))
}

// buildCoordinator wires the six stage handlers with the configured
// providers. The travel layer is mock or live per apis.travel.mode, with an
// optional Redis read-through cache in front of either.
func buildCoordinator(cfg *config.Config, pg *database.PostgresClient, es *database.ElasticsearchClient, rdb *database.RedisClient, log logger.Logger) *pipeline.Coordinator {
	completer := llm.NewClient(&llm.Config{
		BaseURL: cfg.APIs.GenAI.BaseURL,
		APIKey:  cfg.APIs.GenAI.APIKey,
		Model:   cfg.APIs.GenAI.Model,
		Timeout: config.GetDuration(cfg.APIs.GenAI.Timeout),
	}, log)

	searcher := websearch.NewClient(&websearch.Config{
		BaseURL:  cfg.APIs.WebSearch.BaseURL,
		APIKey:   cfg.APIs.WebSearch.APIKey,
		EngineID: cfg.APIs.WebSearch.EngineID,
		Timeout:  config.GetDuration(cfg.APIs.WebSearch.Timeout),
	}, log)

	var flights travel.FlightProvider
	var hotels travel.HotelProvider
	if cfg.APIs.Travel.Mode == "live" {
		amadeus := travel.NewAmadeusClient(&travel.AmadeusConfig{
			BaseURL:   cfg.APIs.Travel.BaseURL,
			APIKey:    cfg.APIs.Travel.APIKey,
			APISecret: cfg.APIs.Travel.APISecret,
			Timeout:   config.GetDuration(cfg.APIs.Travel.Timeout),
		}, log)
		flights = amadeus
		hotels = travel.AmadeusHotelAdapter{Client: amadeus}
	} else {
		mock := travel.NewMockProvider()
		flights = mock
		hotels = travel.MockHotelAdapter{Provider: mock}
	}
	if rdb != nil {
		ttl := time.Duration(cfg.APIs.Travel.CacheTTL) * time.Second
		flights = travel.NewCachingFlightProvider(flights, rdb.GetClient(), ttl, log)
		hotels = travel.NewCachingHotelProvider(hotels, rdb.GetClient(), ttl, log)
	}

	prefs := preferences.NewFileStore(cfg.Preferences.Path, log)

	feasibilityConfig := checkfeasibility.LoadConfig()
	feasibilityConfig.MinScore = cfg.Budget.MinScore
	feasibilityConfig.FlightShare = cfg.Budget.FlightShare
	feasibilityConfig.HotelShare = cfg.Budget.HotelShare
	feasibilityConfig.DefaultBudget = cfg.Budget.DefaultAmount
	feasibilityConfig.Buffer = cfg.Budget.Buffer

	generatorConfig := generatecandidates.LoadConfig()
	generatorConfig.MaxCandidates = cfg.Pipeline.MaxCandidates
	generatorConfig.PrimaryCount = cfg.Pipeline.PrimaryCandidates

	stages := pipeline.Stages{
		Extractor:   extractparameters.NewHandler(extractparameters.LoadConfig(), completer, log),
		Validator:   validaterequirements.NewHandler(validaterequirements.LoadConfig(), prefs, log),
		Classifier:  classifyrequest.NewHandler(classifyrequest.LoadConfig(), completer, log),
		Generator:   generatecandidates.NewHandler(generatorConfig, completer, searcher, log),
		Filter:      filterconstraints.NewHandler(filterconstraints.LoadConfig(), log),
		Feasibility: checkfeasibility.NewHandler(feasibilityConfig, flights, hotels, log),
	}

	options := pipeline.Options{
		MaxBacktrackAttempts: cfg.Pipeline.MaxBacktrackAttempts,
		MinFeasibilityScore:  cfg.Budget.MinScore,
	}
	if pg != nil {
		options.History = storage.NewHistoryStore(pg.GetDB(), log)
	}
	if es != nil {
		options.Audit = storage.NewAuditLog(es.GetClient(), log)
	}

	return pipeline.NewCoordinator(stages, options, log)
}

func printHistory(ctx context.Context, pg *database.PostgresClient, log logger.Logger, zapLog *zap.Logger) {
	store := storage.NewHistoryStore(pg.GetDB(), log)
	runs, err := store.RecentRuns(ctx, 20)
	if err != nil {
		zapLog.Fatal("history query failed", zap.Error(err))
	}
	printed, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		zapLog.Fatal("history encoding failed", zap.Error(err))
	}
	fmt.Println(string(printed))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
