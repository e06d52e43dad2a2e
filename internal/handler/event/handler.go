package event

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commexhq/comms-api/internal/handler"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/service/event"
)

// Handler exposes the event simulation surface used to exercise the broker
// path end to end without an upstream print or logistics system.
type Handler struct {
	publisher *event.Publisher
}

func NewHandler(publisher *event.Publisher) *Handler {
	return &Handler{publisher: publisher}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("/simulate-status-change", h.SimulateStatusChange)
	}
}

type simulateRequest struct {
	CommunicationID int64   `json:"communication_id" binding:"required"`
	NewStatus       string  `json:"newStatus" binding:"required,code"`
	Notes           *string `json:"notes"`
}

// SimulateStatusChange publishes a status-change event as if an external
// system had emitted it. The consumer applies it through the same path as
// real broker traffic.
func (h *Handler) SimulateStatusChange(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.publisher.PublishStatusChanged(c.Request.Context(), req.CommunicationID, req.NewStatus, model.SourceSimulator, req.Notes); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusAccepted, handler.NewSuccessResponse(gin.H{
		"communication_id": req.CommunicationID,
		"newStatus":        req.NewStatus,
		"source":           model.SourceSimulator,
	}))
}
