// Command server runs the call analysis API: audio uploads, job submission,
// and the background transcription/analysis pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/skillsenselab/callinsight/analysis"
	"github.com/skillsenselab/callinsight/api"
	"github.com/skillsenselab/callinsight/config"
	"github.com/skillsenselab/callinsight/jobs"
	"github.com/skillsenselab/callinsight/llm/gemini"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/observability"
	"github.com/skillsenselab/callinsight/server"
	"github.com/skillsenselab/callinsight/server/middleware"
	"github.com/skillsenselab/callinsight/transcription/assemblyai"
	"github.com/skillsenselab/callinsight/util"
	"github.com/skillsenselab/callinsight/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Base.Name)
	log.Info("starting", logger.Fields(
		"version", version.GetShortVersion(),
		"environment", cfg.Base.Environment,
	))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Observability.Enabled {
		shutdown, err := observability.Init(ctx, observability.Config{
			ServiceName: cfg.Base.Name,
			Environment: cfg.Base.Environment,
			Endpoint:    cfg.Observability.Endpoint,
			Insecure:    cfg.Observability.Insecure,
			SampleRate:  cfg.Observability.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("init observability: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("observability shutdown", logger.Fields(logger.FieldError, err.Error()))
			}
		}()
	}

	// Uploads are scratch space scoped to the process, like job state.
	if err := os.RemoveAll(cfg.Uploads.Dir); err != nil {
		return fmt.Errorf("clear uploads dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	log.Debug("providers configured", logger.Fields(
		"stt_key", util.MaskSecret(cfg.STT.APIKey, 4),
		"llm_key", util.MaskSecret(cfg.LLM.APIKey, 4),
		"llm_model", cfg.LLM.Model,
	))

	stt := assemblyai.NewProvider(assemblyai.Config{
		BaseURL:      cfg.STT.BaseURL,
		APIKey:       cfg.STT.APIKey,
		PollInterval: cfg.STT.PollInterval,
		PollTimeout:  cfg.STT.PollTimeout,
	}, log)

	llmProvider := gemini.NewProvider(gemini.Config{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})

	engine := analysis.NewEngine(llmProvider, analysis.DefaultRegistry(), analysis.EngineConfig{
		MaxRetries:   cfg.Analysis.MaxRetries,
		RetryBackoff: cfg.Analysis.RetryBackoff,
	}, log)

	store := jobs.NewMemoryStore()
	orchestrator := jobs.NewOrchestrator(store, stt, engine, jobs.Config{
		Language:      cfg.Pipeline.Language,
		Diarization:   cfg.Pipeline.Diarization,
		SourceTimeout: cfg.Pipeline.SourceTimeout,
	}, log)

	srvCfg := server.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		CORS:         middleware.CORSConfig{AllowedOrigins: cfg.Server.CORSOrigins},
	}
	srvCfg.ApplyDefaults()
	if err := srvCfg.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	srv := server.New(srvCfg, log)
	srv.ApplyMiddleware()

	handler := api.NewHandler(orchestrator, cfg.Uploads.Dir, cfg.Base.Name, stt, llmProvider, log)
	handler.RegisterRoutes(srv.Engine())

	if err := srv.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info("shutdown signal received")
	return srv.Stop(context.Background())
}
