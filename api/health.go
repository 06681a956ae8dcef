package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/callinsight/server"
	"github.com/skillsenselab/callinsight/version"
)

// HealthResponse is the body of GET /v1/health.
type HealthResponse struct {
	Status  string          `json:"status"`
	Service string          `json:"service"`
	Version string          `json:"version"`
	Checks  map[string]bool `json:"checks,omitempty"`
}

// Health reports service liveness. With ?deep=1 it also probes the
// transcription and language model backends; any unreachable backend turns
// the response into a 503.
func (h *Handler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:  "ok",
		Service: h.serviceName,
		Version: version.GetShortVersion(),
	}

	if c.Query("deep") == "1" && h.stt != nil && h.llm != nil {
		ctx := c.Request.Context()
		resp.Checks = map[string]bool{
			h.stt.Name(): h.stt.IsAvailable(ctx),
			h.llm.Name(): h.llm.IsAvailable(ctx),
		}
		for _, up := range resp.Checks {
			if !up {
				resp.Status = "degraded"
				c.JSON(http.StatusServiceUnavailable, resp)
				return
			}
		}
	}

	server.RespondOK(c, resp)
}
