// Command server starts Case Nexus's Analysis Orchestrator behind a
// control WebSocket and a read-only HTTP surface (spec §6). Exit code 0
// on clean shutdown, non-zero on startup failure.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/internal/agent"
	"github.com/eliBenven/case-nexus/internal/api"
	"github.com/eliBenven/case-nexus/internal/caselaw"
	"github.com/eliBenven/case-nexus/internal/citation"
	ctxbuilder "github.com/eliBenven/case-nexus/internal/context"
	"github.com/eliBenven/case-nexus/internal/corpus"
	"github.com/eliBenven/case-nexus/internal/eventbus"
	"github.com/eliBenven/case-nexus/internal/gate"
	"github.com/eliBenven/case-nexus/internal/graph"
	"github.com/eliBenven/case-nexus/internal/insight"
	"github.com/eliBenven/case-nexus/internal/legalvec"
	"github.com/eliBenven/case-nexus/internal/llm"
	"github.com/eliBenven/case-nexus/internal/metrics"
	"github.com/eliBenven/case-nexus/internal/tokens"
	"github.com/eliBenven/case-nexus/internal/tools"
	"github.com/eliBenven/case-nexus/internal/workflow"
	"github.com/eliBenven/case-nexus/pkg/config"
	applogger "github.com/eliBenven/case-nexus/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := applogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer applogger.Sync()

	applogger.Info("starting case nexus")
	metrics.Init()

	store, err := corpus.Open(cfg.SQLite.Path)
	if err != nil {
		applogger.Fatal("failed to open corpus store", zap.Error(err))
	}
	defer store.Close()

	bus := eventbus.NewBus()
	acct := tokens.NewAccountant(bus)

	provider := llm.NewOpenAICompat(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.EmbeddingModel, cfg.LLM.Temperature)
	runner := llm.NewRunner(provider, bus, acct)

	var graphClient *graph.Client
	if gc, gerr := graph.NewClient(cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, cfg.Neo4j.Database); gerr != nil {
		applogger.Warn("neo4j unavailable, health check will skip deterministic shared-actor connections", zap.Error(gerr))
	} else {
		graphClient = gc
		defer graphClient.Close(context.Background())
	}

	var legalClient *legalvec.Client
	if lc, lerr := legalvec.NewClient(cfg.Zilliz.Endpoint, cfg.Zilliz.APIKey, cfg.Zilliz.CollectionName, cfg.Zilliz.VectorDim); lerr != nil {
		applogger.Warn("zilliz unavailable, legal context falls back to corpus substring search", zap.Error(lerr))
	} else {
		legalClient = lc
		defer legalClient.Close()
	}

	insights := insight.New(store.DB())
	builder := ctxbuilder.NewBuilder(store, insights, legalClient, provider)

	searchClient := caselaw.NewClient(cfg.Search.SerpAPIKey, caselaw.NewLLMOptimizer(provider), cfg.Search.MaxResults)
	if !cfg.Search.Enabled {
		searchClient = nil
	}
	verifier := citation.NewVerifier(store, searchClient)

	registry := tools.NewRegistry(store, builder, insights, searchClient, verifier)
	loop := agent.NewLoop(runner, registry, bus)
	gt := gate.NewGate()

	engine := workflow.NewEngine(store, builder, runner, loop, registry, insights, bus, gt, verifier, graphClient, cfg.Workflow)

	app := api.NewServer(store, bus, engine, registry, insights, acct, "./data/demo_caseload.json", cfg.Server.BodyLimit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	applogger.Info("server starting", zap.String("address", addr))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- app.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		applogger.Error("server failed to start", zap.Error(err))
		os.Exit(1)
	case <-quit:
		applogger.Info("shutting down gracefully")
	}

	shutdownDone := make(chan struct{})
	go func() {
		_ = app.Shutdown()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
	case <-time.After(10 * time.Second):
		applogger.Warn("shutdown timed out")
	}

	applogger.Info("server stopped")
}
