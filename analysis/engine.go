// Package analysis runs registry-defined tasks over a transcript through a
// language model, repairing malformed model output with a bounded
// self-correction retry loop.
package analysis

import (
	"context"
	"encoding/json"
	"time"

	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/llm"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/resilience"
	"github.com/skillsenselab/callinsight/transcript"
)

const (
	// DefaultMaxRetries is the number of repair attempts after the first call.
	DefaultMaxRetries = 2
	// DefaultRetryBackoff is the fixed delay before each repair attempt.
	DefaultRetryBackoff = time.Second
)

// Result is the validated parse of model output for one task: arbitrary
// string-keyed JSON. Syntactic validity is the only enforced contract.
type Result map[string]any

// Analyzer turns (transcript, task identifier) into a validated result.
type Analyzer interface {
	Analyze(ctx context.Context, tr *transcript.TranscriptionResult, taskID string) (Result, error)
}

// EngineConfig configures the analysis engine.
type EngineConfig struct {
	// MaxRetries is the number of repair attempts after the initial call.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
	// RetryBackoff is the fixed delay before each repair attempt.
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"`
}

// Engine implements Analyzer over any llm.Provider.
type Engine struct {
	provider llm.Provider
	tasks    Registry
	cfg      EngineConfig
	log      *logger.Logger
}

// NewEngine creates an analysis engine backed by the given model provider
// and task registry.
func NewEngine(provider llm.Provider, tasks Registry, cfg EngineConfig, log *logger.Logger) *Engine {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = DefaultRetryBackoff
	}
	return &Engine{
		provider: provider,
		tasks:    tasks,
		cfg:      cfg,
		log:      log.WithComponent("analysis"),
	}
}

// Analyze performs the named task on the transcript. An unknown task fails
// immediately; a malformed model response is fed back to the model via a
// repair prompt until the retry budget is exhausted, at which point the call
// fails with the last raw response retained for diagnostics.
func (e *Engine) Analyze(ctx context.Context, tr *transcript.TranscriptionResult, taskID string) (Result, error) {
	task, ok := e.tasks.Lookup(taskID)
	if !ok {
		return nil, apperrors.UnknownTask(taskID)
	}

	originalPrompt := buildPrompt(task, tr)
	prompt := originalPrompt
	attempts := 0
	lastRaw := ""

	retryCfg := resilience.RetryConfig{
		MaxAttempts:    e.cfg.MaxRetries + 1,
		InitialBackoff: e.cfg.RetryBackoff,
		MaxBackoff:     e.cfg.RetryBackoff,
		BackoffFactor:  1.0,
		// Only malformed output is repairable; transport errors and
		// cancellations propagate immediately.
		RetryIf: func(err error) bool {
			return apperrors.HasCode(err, apperrors.ErrCodeMalformedOutput)
		},
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			e.log.Warn("model response was not valid JSON, requesting correction",
				logger.Fields(logger.FieldTask, taskID, "attempt", attempt, "backoff", backoff.String()))
		},
	}

	result, err := resilience.Retry(ctx, retryCfg, func() (Result, error) {
		attempts++
		resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
			Prompt:       prompt,
			JSONResponse: true,
		})
		if err != nil {
			// Providers report an absent completion under the malformed
			// code; it goes through the same repair loop with an empty
			// invalid-response section.
			if apperrors.HasCode(err, apperrors.ErrCodeMalformedOutput) {
				lastRaw = ""
				prompt = buildRepairPrompt(originalPrompt, "")
			}
			return nil, err
		}
		lastRaw = resp.Content

		var parsed Result
		if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &parsed); err != nil {
			// The next attempt asks the model to repair this exact response.
			prompt = buildRepairPrompt(originalPrompt, resp.Content)
			return nil, apperrors.MalformedOutput(resp.Content, err)
		}
		return parsed, nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeMalformedOutput) {
			return nil, apperrors.GenerationFailed(attempts, lastRaw).WithCause(err)
		}
		return nil, err
	}
	return result, nil
}
