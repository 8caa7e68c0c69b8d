package claims

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/claimguard/pkg/common"
)

// Handler exposes the pipeline trigger over HTTP
type Handler struct {
	dispatcher Submitter
}

// NewHandler creates a new claims handler
func NewHandler(dispatcher Submitter) *Handler {
	return &Handler{dispatcher: dispatcher}
}

// ProcessClaim queues a submitted claim for adjudication
func (h *Handler) ProcessClaim(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid claim id")
		return
	}

	if err := h.dispatcher.Submit(c.Request.Context(), claimID); err != nil {
		if errors.Is(err, ErrShuttingDown) {
			common.ErrorResponse(c, http.StatusServiceUnavailable, "service is shutting down")
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to queue claim")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"claim_id": claimID.String(),
		"status":   "processing",
	})
}

// RegisterRoutes registers claim pipeline routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	claims := rg.Group("/claims")
	{
		claims.POST("/:id/process", h.ProcessClaim)
	}
}
