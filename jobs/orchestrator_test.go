package jobs

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillsenselab/callinsight/analysis"
	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/transcript"
	"github.com/skillsenselab/callinsight/transcription"
)

type stubSTT struct {
	transcribe func(ctx context.Context, req transcription.Request) (*transcript.TranscriptionResult, error)
}

func (s *stubSTT) Name() string                        { return "stub" }
func (s *stubSTT) IsAvailable(_ context.Context) bool  { return true }
func (s *stubSTT) Transcribe(ctx context.Context, req transcription.Request) (*transcript.TranscriptionResult, error) {
	return s.transcribe(ctx, req)
}

type stubAnalyzer struct {
	analyze func(ctx context.Context, tr *transcript.TranscriptionResult, taskID string) (analysis.Result, error)
}

func (s *stubAnalyzer) Analyze(ctx context.Context, tr *transcript.TranscriptionResult, taskID string) (analysis.Result, error) {
	return s.analyze(ctx, tr, taskID)
}

func okTranscript() *transcript.TranscriptionResult {
	return &transcript.TranscriptionResult{
		FullText: "Hello there.",
		Utterances: []transcript.Utterance{
			{Speaker: "A", Start: 0, End: 1.2, Text: "Hello there."},
		},
	}
}

func okSTT() *stubSTT {
	return &stubSTT{transcribe: func(_ context.Context, _ transcription.Request) (*transcript.TranscriptionResult, error) {
		return okTranscript(), nil
	}}
}

func okAnalyzer() *stubAnalyzer {
	return &stubAnalyzer{analyze: func(_ context.Context, _ *transcript.TranscriptionResult, taskID string) (analysis.Result, error) {
		return analysis.Result{"task": taskID}, nil
	}}
}

func newTestOrchestrator(t *testing.T, store Store, stt transcription.Provider, analyzer analysis.Analyzer) *Orchestrator {
	t.Helper()
	return NewOrchestrator(store, stt, analyzer, Config{Diarization: true}, logger.NewDefault("test"))
}

// waitForCompleted polls the store until the job leaves its transient states.
func waitForCompleted(t *testing.T, store Store, id string) Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := store.Get(id)
		if ok && (job.Status == StatusCompleted || job.Status == StatusFailed) {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal status in time", id)
	return Job{}
}

func TestCreateJobReturnsQueuedImmediately(t *testing.T) {
	store := NewMemoryStore()
	block := make(chan struct{})
	stt := &stubSTT{transcribe: func(ctx context.Context, _ transcription.Request) (*transcript.TranscriptionResult, error) {
		<-block
		return okTranscript(), nil
	}}
	o := newTestOrchestrator(t, store, stt, okAnalyzer())

	before := time.Now().UTC()
	job := o.CreateJob(context.Background(), []string{"a.mp3"})

	if !strings.HasPrefix(job.ID, "job_") {
		t.Errorf("expected job_ prefixed id, got %q", job.ID)
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if job.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("createdAt %v not near submission time", job.CreatedAt)
	}
	if job.CompletedAt != nil || len(job.Results) != 0 {
		t.Error("fresh job must not carry results or completedAt")
	}

	// Stored snapshot matches what was returned.
	stored, ok := store.Get(job.ID)
	if !ok {
		t.Fatal("job not visible in store after CreateJob returned")
	}
	if stored.Status != StatusQueued {
		t.Errorf("stored status %q, want %q", stored.Status, StatusQueued)
	}
	close(block)
	waitForCompleted(t, store, job.ID)
}

func TestJobCompletesWithReportPerSource(t *testing.T) {
	store := NewMemoryStore()
	o := newTestOrchestrator(t, store, okSTT(), okAnalyzer())

	sources := []string{"a.mp3", "https://example.com/b.wav", "c.flac"}
	job := o.CreateJob(context.Background(), sources)
	done := waitForCompleted(t, store, job.ID)

	if done.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q", StatusCompleted, done.Status)
	}
	if done.CompletedAt == nil {
		t.Fatal("expected completedAt on a completed job")
	}
	if done.CompletedAt.Before(done.CreatedAt) {
		t.Errorf("completedAt %v precedes createdAt %v", done.CompletedAt, done.CreatedAt)
	}
	if len(done.Results) != len(sources) {
		t.Fatalf("expected %d reports, got %d", len(sources), len(done.Results))
	}
	for i, report := range done.Results {
		if report.SourceURL != sources[i] {
			t.Errorf("report %d: source %q, want %q (submission order)", i, report.SourceURL, sources[i])
		}
		if report.Status != ReportSuccess {
			t.Errorf("report %d: status %q, want %q", i, report.Status, ReportSuccess)
		}
		if report.Transcription == nil {
			t.Errorf("report %d: missing transcription", i)
		}
		if report.Summary == nil || report.Sentiment == nil || report.ActionItems == nil {
			t.Errorf("report %d: missing analysis payloads", i)
		}
		if report.ErrorMessage != "" {
			t.Errorf("report %d: unexpected error message %q", i, report.ErrorMessage)
		}
	}
}

func TestSourceFailureDoesNotAbortSiblings(t *testing.T) {
	store := NewMemoryStore()
	stt := &stubSTT{transcribe: func(_ context.Context, req transcription.Request) (*transcript.TranscriptionResult, error) {
		if req.AudioSource == "bad.mp3" {
			return nil, apperrors.TranscriptionFailed("audio duration is too short")
		}
		return okTranscript(), nil
	}}
	o := newTestOrchestrator(t, store, stt, okAnalyzer())

	job := o.CreateJob(context.Background(), []string{"bad.mp3", "good.mp3"})
	done := waitForCompleted(t, store, job.ID)

	if done.Status != StatusCompleted {
		t.Fatalf("expected status %q even with a failed source, got %q", StatusCompleted, done.Status)
	}
	if len(done.Results) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(done.Results))
	}

	failed := done.Results[0]
	if failed.Status != ReportFailed {
		t.Errorf("bad source: status %q, want %q", failed.Status, ReportFailed)
	}
	if !strings.Contains(failed.ErrorMessage, "audio duration is too short") {
		t.Errorf("bad source: error message %q lost the provider detail", failed.ErrorMessage)
	}
	if failed.Transcription != nil || failed.Summary != nil {
		t.Error("failed report must not carry analysis payloads")
	}

	if done.Results[1].Status != ReportSuccess {
		t.Errorf("good source: status %q, want %q", done.Results[1].Status, ReportSuccess)
	}
}

func TestAllSourcesFailedStillCompletes(t *testing.T) {
	store := NewMemoryStore()
	stt := &stubSTT{transcribe: func(_ context.Context, _ transcription.Request) (*transcript.TranscriptionResult, error) {
		return nil, apperrors.SourceNotFound("x.mp3")
	}}
	o := newTestOrchestrator(t, store, stt, okAnalyzer())

	job := o.CreateJob(context.Background(), []string{"x.mp3", "y.mp3"})
	done := waitForCompleted(t, store, job.ID)

	if done.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q", StatusCompleted, done.Status)
	}
	for i, report := range done.Results {
		if report.Status != ReportFailed {
			t.Errorf("report %d: status %q, want %q", i, report.Status, ReportFailed)
		}
	}
}

func TestAnalysisFailureFailsOnlyThatSource(t *testing.T) {
	store := NewMemoryStore()
	analyzer := &stubAnalyzer{analyze: func(_ context.Context, _ *transcript.TranscriptionResult, taskID string) (analysis.Result, error) {
		if taskID == analysis.TaskSentimentAnalysis {
			return nil, apperrors.GenerationFailed(3, "not json")
		}
		return analysis.Result{"task": taskID}, nil
	}}
	o := newTestOrchestrator(t, store, okSTT(), analyzer)

	job := o.CreateJob(context.Background(), []string{"a.mp3"})
	done := waitForCompleted(t, store, job.ID)

	report := done.Results[0]
	if report.Status != ReportFailed {
		t.Fatalf("expected status %q, got %q", ReportFailed, report.Status)
	}
	if report.ErrorMessage == "" {
		t.Error("expected error message on failed report")
	}
	if report.Summary != nil || report.ActionItems != nil {
		t.Error("failed report must not expose partial analysis results")
	}
}

func TestAnalysesRunConcurrentlyPerSource(t *testing.T) {
	store := NewMemoryStore()

	// Each task signals arrival and then blocks until all three are
	// in flight; a sequential fan-out would never release the barrier.
	arrived := make(chan string, 3)
	release := make(chan struct{})
	analyzer := &stubAnalyzer{analyze: func(ctx context.Context, _ *transcript.TranscriptionResult, taskID string) (analysis.Result, error) {
		arrived <- taskID
		select {
		case <-release:
		case <-time.After(3 * time.Second):
			return nil, fmt.Errorf("task %s never saw its siblings", taskID)
		}
		return analysis.Result{"task": taskID}, nil
	}}
	o := newTestOrchestrator(t, store, okSTT(), analyzer)

	job := o.CreateJob(context.Background(), []string{"a.mp3"})

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		select {
		case id := <-arrived:
			seen[id] = true
		case <-time.After(3 * time.Second):
			t.Fatalf("only %d analyses started concurrently, want 3", len(seen))
		}
	}
	close(release)

	for _, want := range []string{analysis.TaskSummarization, analysis.TaskSentimentAnalysis, analysis.TaskActionItemExtraction} {
		if !seen[want] {
			t.Errorf("task %s never started", want)
		}
	}

	done := waitForCompleted(t, store, job.ID)
	if done.Results[0].Status != ReportSuccess {
		t.Errorf("expected report status %q, got %q", ReportSuccess, done.Results[0].Status)
	}
}

func TestNoPartialReportObservable(t *testing.T) {
	store := NewMemoryStore()
	analyzer := &stubAnalyzer{analyze: func(_ context.Context, _ *transcript.TranscriptionResult, taskID string) (analysis.Result, error) {
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
		return analysis.Result{"task": taskID}, nil
	}}
	o := newTestOrchestrator(t, store, okSTT(), analyzer)

	job := o.CreateJob(context.Background(), []string{"a.mp3", "b.mp3"})

	// Every snapshot read while the job runs must be internally
	// consistent: results appear only on completed jobs, all at once.
	var done bool
	for !done {
		snap, ok := store.Get(job.ID)
		if !ok {
			t.Fatal("job disappeared from the store")
		}
		switch snap.Status {
		case StatusQueued, StatusProcessing:
			if len(snap.Results) != 0 {
				t.Fatalf("observed %d results on a %s job", len(snap.Results), snap.Status)
			}
			if snap.CompletedAt != nil {
				t.Fatalf("observed completedAt on a %s job", snap.Status)
			}
		case StatusCompleted:
			if len(snap.Results) != 2 {
				t.Fatalf("completed job exposed %d of 2 results", len(snap.Results))
			}
			for i, r := range snap.Results {
				if r.Status == ReportSuccess && (r.Summary == nil || r.Sentiment == nil || r.ActionItems == nil) {
					t.Fatalf("report %d published without all payloads", i)
				}
			}
			done = true
		}
	}
}

func TestSourcesProcessedSequentially(t *testing.T) {
	store := NewMemoryStore()
	var inFlight, maxInFlight int32
	stt := &stubSTT{transcribe: func(_ context.Context, _ transcription.Request) (*transcript.TranscriptionResult, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			cur := atomic.LoadInt32(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt32(&maxInFlight, cur, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return okTranscript(), nil
	}}
	o := newTestOrchestrator(t, store, stt, okAnalyzer())

	job := o.CreateJob(context.Background(), []string{"a.mp3", "b.mp3", "c.mp3"})
	waitForCompleted(t, store, job.ID)

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("observed %d concurrent transcriptions, sources must run one at a time", got)
	}
}

func TestGetJobUnknownID(t *testing.T) {
	store := NewMemoryStore()
	o := newTestOrchestrator(t, store, okSTT(), okAnalyzer())

	_, err := o.GetJob("job_nope")
	if err == nil {
		t.Fatal("expected error for unknown job id")
	}
	if !apperrors.HasCode(err, apperrors.ErrCodeNotFound) {
		t.Errorf("expected code %s, got %v", apperrors.ErrCodeNotFound, err)
	}
}

func TestGetJobReadsAreIdempotent(t *testing.T) {
	store := NewMemoryStore()
	o := newTestOrchestrator(t, store, okSTT(), okAnalyzer())

	job := o.CreateJob(context.Background(), []string{"a.mp3"})
	waitForCompleted(t, store, job.ID)

	first, err := o.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	second, err := o.GetJob(job.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if first.Status != second.Status || !first.CompletedAt.Equal(*second.CompletedAt) {
		t.Error("repeated reads of a terminal job returned different snapshots")
	}
	if len(first.Results) != len(second.Results) {
		t.Error("repeated reads returned different result counts")
	}
}
