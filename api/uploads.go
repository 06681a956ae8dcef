package api

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/skillsenselab/callinsight/errors"
	"github.com/skillsenselab/callinsight/logger"
	"github.com/skillsenselab/callinsight/server"
)

// UploadResponse is the body of a successful POST /v1/uploads.
type UploadResponse struct {
	UploadURL string `json:"uploadUrl"`
}

// UploadFile stores a multipart audio file under a collision-free name and
// returns the URL it is served back from, suitable for use as an audioUrl
// in a job submission.
func (h *Handler) UploadFile(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		server.RespondWithError(c, apperrors.MissingField("file").WithCause(err))
		return
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(h.uploadsDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		server.RespondWithError(c, apperrors.Internal(fmt.Errorf("save upload: %w", err)))
		return
	}

	h.log.Info("file uploaded", logger.Fields(
		"filename", filename,
		"size", file.Size,
	))

	url := fmt.Sprintf("%s://%s/v1/files/%s", requestScheme(c), c.Request.Host, filename)
	server.RespondCreated(c, UploadResponse{UploadURL: url})
}

// GetFile serves a previously uploaded file.
func (h *Handler) GetFile(c *gin.Context) {
	filename := c.Param("filename")
	// Names are always generated server-side; anything that does not look
	// like a bare filename is a traversal attempt.
	if filename == "" || filename != filepath.Base(filename) {
		server.RespondWithError(c, apperrors.NotFound("file", filename))
		return
	}

	path := filepath.Join(h.uploadsDir, filename)
	if _, err := os.Stat(path); err != nil {
		server.RespondWithError(c, apperrors.NotFound("file", filename))
		return
	}
	c.File(path)
}

func requestScheme(c *gin.Context) string {
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if c.Request.TLS != nil {
		return "https"
	}
	return "http"
}
