package api

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/server"
	"github.com/skillsenselab/callinsight/validation"
)

// CreateJobRequest is the body of POST /v1/jobs.
type CreateJobRequest struct {
	AudioURLs []string `json:"audioUrls" validate:"required,min=1,dive,required"`
}

// CreateJob accepts a batch of audio sources and responds 202 with the
// queued job record. The pipeline runs in the background; submission never
// waits on providers.
func (h *Handler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("request body must be valid JSON").WithCause(err))
		return
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	job := h.service.CreateJob(c.Request.Context(), req.AudioURLs)
	server.RespondAccepted(c, job)
}

// GetJob returns the current snapshot of a job record.
func (h *Handler) GetJob(c *gin.Context) {
	job, err := h.service.GetJob(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.Debug("job fetched", logger.Fields(logger.FieldJobID, job.ID, logger.FieldStatus, string(job.Status)))
	server.RespondOK(c, job)
}
