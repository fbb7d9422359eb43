package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/assemble"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/classify"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/config"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/ledger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/metrics"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/pipeline"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/source"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/summarize"
)

func main() {
	logger.Init()

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	if err := run(); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	sf, err := config.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		return fmt.Errorf("load sources config: %w", err)
	}

	ctx := context.Background()

	store, err := openLedger(cfg)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer store.Close()

	backend, cleanup, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open summarization backend: %w", err)
	}
	defer cleanup()

	extractor := source.NewExtractor(cfg.FetchTimeout, cfg.SummaryMaxInputChars)
	connectors := make([]source.Connector, 0, len(sf.Sources))
	for _, s := range sf.Sources {
		var opts []source.RSSOption
		if s.ExtractFull {
			opts = append(opts, source.WithFullExtraction(extractor, cfg.ExtractMinBodyRunes))
		}
		connectors = append(connectors, source.NewRSSConnector(s.ID, s.URL, &http.Client{Timeout: cfg.FetchTimeout}, opts...))
	}

	rules := make([]classify.Rule, 0, len(sf.Categories))
	for _, c := range sf.Categories {
		rules = append(rules, classify.Rule{
			Name:     c.Name,
			Keywords: c.Keywords,
			Phrases:  c.Phrases,
			Weight:   c.Weight,
		})
	}

	orchestrator := pipeline.New(pipeline.Deps{
		Connectors: connectors,
		Ledger:     store,
		Classifier: classify.New(classify.NewKeywordScorer(rules, sf.ExcludeKeywords), cfg.RelevanceThreshold),
		Summarizer: summarize.New(backend, summarize.Config{
			Workers:           cfg.SummaryWorkers,
			CallTimeout:       cfg.SummaryTimeout,
			MaxAttempts:       cfg.SummaryMaxAttempts,
			RetryDelay:        cfg.SummaryRetryDelay,
			MaxRetryDelay:     cfg.SummaryMaxRetryDelay,
			MaxInputChars:     cfg.SummaryMaxInputChars,
			MaxSummaryChars:   cfg.SummaryMaxChars,
			RequestsPerMinute: cfg.SummaryRequestsPerMinute,
			RequestBudget:     cfg.MaxSummaryRequests,
		}, summarize.NewCache(time.Duration(cfg.SummaryCacheTTLHours)*time.Hour)),
		Assembler:           assemble.New(sf.DisplayOrder),
		SimilarityThreshold: cfg.SimilarityThreshold,
		FetchTimeout:        cfg.FetchTimeout,
		RunDeadline:         cfg.RunDeadline,
	})

	now := time.Now()
	window := newsletter.TimeRange{
		Start: now.Add(-time.Duration(cfg.WindowHours) * time.Hour),
		End:   now,
	}

	result, report, err := orchestrator.Run(ctx, window)
	if err != nil {
		return err
	}

	switch os.Getenv("OUTPUT_FORMAT") {
	case "markdown":
		fmt.Println(assemble.Markdown(result))
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("encode newsletter: %w", err)
		}
	}

	reportJSON, _ := json.Marshal(report)
	logger.Info("run report", "report", string(reportJSON))
	return nil
}

func openLedger(cfg *config.Config) (ledger.Store, error) {
	if cfg.DatabaseURL != "" {
		return ledger.NewPostgresStore(cfg.DatabaseURL, cfg.LedgerRetention())
	}
	logger.Info("DATABASE_URL not set, using file ledger", "path", cfg.LedgerPath)
	return ledger.NewFileStore(cfg.LedgerPath, cfg.LedgerRetention())
}

func openBackend(ctx context.Context, cfg *config.Config) (summarize.Backend, func(), error) {
	switch cfg.SummaryBackend {
	case "openai":
		return summarize.NewOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel), func() {}, nil
	default:
		backend, err := summarize.NewGeminiBackend(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil
	}
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
