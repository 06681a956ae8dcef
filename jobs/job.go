// Package jobs owns the analysis job lifecycle: the in-memory store, the
// orchestrator that drives background execution, and the report model.
package jobs

import (
	"time"

	"github.com/skillsenselab/callinsight/analysis"
	"github.com/skillsenselab/callinsight/transcript"
)

// Status is the lifecycle state of a job.
type Status string

// Job lifecycle states. Queued and Processing are transient; Completed is
// the normal terminal state even when individual sources failed. Failed is
// reserved for orchestration-level faults.
const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ReportStatus is the outcome of one audio source's pipeline.
type ReportStatus string

const (
	ReportSuccess ReportStatus = "SUCCESS"
	ReportFailed  ReportStatus = "FAILED"
)

// AnalysisReport is the consolidated result for one audio source.
type AnalysisReport struct {
	SourceURL     string                          `json:"sourceUrl"`
	Status        ReportStatus                    `json:"status"`
	ErrorMessage  string                          `json:"errorMessage,omitempty"`
	Transcription *transcript.TranscriptionResult `json:"transcription,omitempty"`
	Summary       analysis.Result                 `json:"summary,omitempty"`
	Sentiment     analysis.Result                 `json:"sentiment,omitempty"`
	ActionItems   analysis.Result                 `json:"actionItems,omitempty"`
}

// Job is one submitted analysis job. Records are created by CreateJob and
// thereafter mutated only by the background execution path, always by
// replacing the whole record, so any snapshot a reader holds is internally
// consistent.
type Job struct {
	ID          string           `json:"id"`
	Status      Status           `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	CompletedAt *time.Time       `json:"completedAt"`
	Results     []AnalysisReport `json:"results"`
	Error       string           `json:"error,omitempty"`
}
