package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/skillsenselab/callinsight/analysis"
	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/observability"
	"github.com/skillsenselab/callinsight/transcription"
)

// coreTasks are the analyses run for every source, fanned out concurrently
// against the same transcript.
var coreTasks = []string{
	analysis.TaskSummarization,
	analysis.TaskSentimentAnalysis,
	analysis.TaskActionItemExtraction,
}

// Config configures job orchestration.
type Config struct {
	// Language is passed through to the transcription provider.
	Language string
	// Diarization enables speaker labels on transcription.
	Diarization bool
	// SourceTimeout bounds the whole pipeline for a single audio source.
	// Zero means no bound.
	SourceTimeout time.Duration
}

// Orchestrator manages job lifecycle and drives background execution.
// It is the only writer of the Store.
type Orchestrator struct {
	store    Store
	stt      transcription.Provider
	analyzer analysis.Analyzer
	cfg      Config
	log      *logger.Logger

	jobsCreated      metric.Int64Counter
	sourcesProcessed metric.Int64Counter
}

// NewOrchestrator creates an orchestrator over the given store and providers.
func NewOrchestrator(store Store, stt transcription.Provider, analyzer analysis.Analyzer, cfg Config, log *logger.Logger) *Orchestrator {
	meter := observability.Meter()
	jobsCreated, _ := meter.Int64Counter("jobs.created",
		metric.WithDescription("Total number of jobs created"))
	sourcesProcessed, _ := meter.Int64Counter("jobs.sources.processed",
		metric.WithDescription("Total number of audio sources processed"))

	return &Orchestrator{
		store:            store,
		stt:              stt,
		analyzer:         analyzer,
		cfg:              cfg,
		log:              log.WithComponent("orchestrator"),
		jobsCreated:      jobsCreated,
		sourcesProcessed: sourcesProcessed,
	}
}

// CreateJob allocates a fresh job in Queued state and schedules background
// execution. It never blocks on the pipeline and never reports pipeline
// failures synchronously; failures surface only through subsequent reads.
func (o *Orchestrator) CreateJob(ctx context.Context, audioSources []string) Job {
	job := Job{
		ID:        "job_" + uuid.NewString(),
		Status:    StatusQueued,
		CreatedAt: time.Now().UTC(),
	}
	o.store.Put(job)
	o.jobsCreated.Add(ctx, 1)
	o.log.Info("job created", logger.Fields(logger.FieldJobID, job.ID, "sources", len(audioSources)))

	// Execution outlives the submitting request; only cancellation is
	// detached, trace context still propagates.
	go o.run(context.WithoutCancel(ctx), job.ID, audioSources)

	return job
}

// GetJob returns the current snapshot of the record.
func (o *Orchestrator) GetJob(id string) (Job, error) {
	job, ok := o.store.Get(id)
	if !ok {
		return Job{}, apperrors.NotFound("job", id)
	}
	return job, nil
}

// run is the background execution path: one instance per job. Sources are
// processed in submission order; a source failure never aborts its siblings.
func (o *Orchestrator) run(ctx context.Context, jobID string, audioSources []string) {
	ctx, span := observability.StartSpan(ctx, "jobs.run")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID), attribute.Int("job.sources", len(audioSources)))

	job, ok := o.store.Get(jobID)
	if !ok {
		// Orchestration-level fault: nothing to transition.
		o.log.Error("job record missing at execution start", logger.Fields(logger.FieldJobID, jobID))
		return
	}

	job.Status = StatusProcessing
	o.store.Put(job)

	results := make([]AnalysisReport, 0, len(audioSources))
	for _, source := range audioSources {
		report := o.processSource(ctx, jobID, source)
		o.sourcesProcessed.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", string(report.Status))))
		results = append(results, report)
	}

	now := time.Now().UTC()
	job.Status = StatusCompleted
	job.CompletedAt = &now
	job.Results = results
	// Status, completedAt, and results are published together.
	o.store.Put(job)

	o.log.Info("job completed", logger.Fields(
		logger.FieldJobID, jobID,
		"sources", len(results),
		logger.FieldDuration, now.Sub(job.CreatedAt).Milliseconds(),
	))
}

// processSource runs transcription and the three core analyses for a single
// audio source, composing its report. All failures are captured here.
func (o *Orchestrator) processSource(ctx context.Context, jobID, source string) AnalysisReport {
	if o.cfg.SourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.SourceTimeout)
		defer cancel()
	}
	ctx, span := observability.StartSpan(ctx, "jobs.source")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID), attribute.String("job.source", source))

	log := o.log.WithFields(logger.Fields(logger.FieldJobID, jobID, logger.FieldSource, source))

	tr, err := o.stt.Transcribe(ctx, transcription.Request{
		AudioSource:   source,
		SpeakerLabels: o.cfg.Diarization,
		Language:      o.cfg.Language,
	})
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.Error("transcription failed", logger.Fields(logger.FieldError, err.Error()))
		return AnalysisReport{SourceURL: source, Status: ReportFailed, ErrorMessage: err.Error()}
	}

	// Fan out the three analyses against the same transcript and join on
	// all of them; first-to-finish is not sufficient.
	outcomes := make([]analysis.Result, len(coreTasks))
	errs := make([]error, len(coreTasks))
	var wg sync.WaitGroup
	for i, taskID := range coreTasks {
		wg.Add(1)
		go func(i int, taskID string) {
			defer wg.Done()
			outcomes[i], errs[i] = o.analyzer.Analyze(ctx, tr, taskID)
		}(i, taskID)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			observability.SetSpanError(ctx, err)
			log.Error("analysis failed", logger.Fields(logger.FieldTask, coreTasks[i], logger.FieldError, err.Error()))
			return AnalysisReport{SourceURL: source, Status: ReportFailed, ErrorMessage: err.Error()}
		}
	}

	log.Info("source analyzed")
	return AnalysisReport{
		SourceURL:     source,
		Status:        ReportSuccess,
		Transcription: tr,
		Summary:       outcomes[0],
		Sentiment:     outcomes[1],
		ActionItems:   outcomes[2],
	}
}
