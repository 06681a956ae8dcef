// Package api implements the HTTP handlers for the analysis service:
// job submission and retrieval, audio uploads, and health.
package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/callinsight/jobs"
	"github.com/skillsenselab/callinsight/llm"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/transcription"
)

// JobService is the orchestration surface the handlers depend on.
type JobService interface {
	CreateJob(ctx context.Context, audioSources []string) jobs.Job
	GetJob(id string) (jobs.Job, error)
}

// Handler holds the dependencies shared by all routes.
type Handler struct {
	service     JobService
	uploadsDir  string
	serviceName string
	stt         transcription.Provider
	llm         llm.Provider
	log         *logger.Logger
}

// NewHandler creates the API handler. stt and llm are only consulted by the
// deep health check and may be nil in tests.
func NewHandler(service JobService, uploadsDir, serviceName string, stt transcription.Provider, llmProvider llm.Provider, log *logger.Logger) *Handler {
	return &Handler{
		service:     service,
		uploadsDir:  uploadsDir,
		serviceName: serviceName,
		stt:         stt,
		llm:         llmProvider,
		log:         log.WithComponent("api"),
	}
}

// RegisterRoutes mounts all v1 routes on the engine.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	v1 := engine.Group("/v1")
	v1.POST("/uploads", h.UploadFile)
	v1.GET("/files/:filename", h.GetFile)
	v1.POST("/jobs", h.CreateJob)
	v1.GET("/jobs/:id", h.GetJob)
	v1.GET("/health", h.Health)
}
