package communication

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/commexhq/comms-api/internal/handler"
	"github.com/commexhq/comms-api/internal/middleware"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/service/commtype"
	"github.com/commexhq/comms-api/internal/service/communication"
)

// Publisher is the outbound event surface the handler notifies after a
// create commits. Publish failures never fail the request. Manual status
// changes are deliberately not published: the in-process consumer binds
// communication.*, so a self-published change event would be re-consumed
// and applied a second time, duplicating the history row.
type Publisher interface {
	PublishCreated(ctx context.Context, comm *model.Communication, typeCode, source string) error
}

type Handler struct {
	service     *communication.Service
	typeService *commtype.Service
	publisher   Publisher
	logger      zerolog.Logger
}

func NewHandler(service *communication.Service, typeService *commtype.Service, publisher Publisher, logger zerolog.Logger) *Handler {
	return &Handler{
		service:     service,
		typeService: typeService,
		publisher:   publisher,
		logger:      logger.With().Str("component", "communication_handler").Logger(),
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	comms := r.Group("/communications")
	{
		comms.POST("", h.CreateCommunication)
		comms.GET("", h.ListCommunications)
		comms.GET("/:id", h.GetCommunication)
		comms.PUT("/:id", h.UpdateCommunication)
		comms.DELETE("/:id", h.DeleteCommunication)

		comms.POST("/:id/status", h.ChangeStatus)
		comms.GET("/:id/status-history", h.GetStatusHistory)
	}
}

type createRequest struct {
	Title         string  `json:"title" binding:"required"`
	TypeID        int64   `json:"type_id" binding:"required"`
	MemberID      int64   `json:"member_id" binding:"required"`
	SourceFileURL *string `json:"source_file_url"`
	InitialStatus string  `json:"initial_status"`
}

type updateRequest struct {
	Title         *string `json:"title"`
	MemberID      *int64  `json:"member_id"`
	SourceFileURL *string `json:"source_file_url"`
}

type changeStatusRequest struct {
	NewStatus string  `json:"newStatus" binding:"required,code"`
	Notes     *string `json:"notes"`
}

func (h *Handler) CreateCommunication(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	comm, err := h.service.Create(c.Request.Context(), communication.CreateParams{
		Title:             req.Title,
		TypeID:            req.TypeID,
		MemberID:          req.MemberID,
		SourceFileURL:     req.SourceFileURL,
		InitialStatusCode: req.InitialStatus,
		CreatedBy:         middleware.UserIDFromContext(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	if ct, err := h.typeService.Get(c.Request.Context(), comm.TypeID); err == nil {
		if err := h.publisher.PublishCreated(c.Request.Context(), comm, ct.Code, model.SourceManual); err != nil {
			h.logger.Error().Err(err).Int64("communication_id", comm.ID).Msg("created event publish failed")
		}
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(comm))
}

func (h *Handler) ListCommunications(c *gin.Context) {
	comms, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(comms))
}

func (h *Handler) GetCommunication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid communication ID"))
		return
	}

	comm, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(comm))
}

func (h *Handler) UpdateCommunication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid communication ID"))
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	comm, err := h.service.Update(c.Request.Context(), id, communication.UpdateParams{
		Title:         req.Title,
		MemberID:      req.MemberID,
		SourceFileURL: req.SourceFileURL,
		UpdatedBy:     middleware.UserIDFromContext(c),
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(comm))
}

// DeleteCommunication soft-deletes by default; ?hard=true removes the row
// and its history.
func (h *Handler) DeleteCommunication(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid communication ID"))
		return
	}

	if c.Query("hard") == "true" {
		err = h.service.HardDelete(c.Request.Context(), id)
	} else {
		err = h.service.SoftDelete(c.Request.Context(), id)
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

// ChangeStatus applies a manual status transition. The committed change is
// not echoed to the broker; broker traffic flows inbound only on this path.
func (h *Handler) ChangeStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid communication ID"))
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	comm, err := h.service.Transition(c.Request.Context(), id, req.NewStatus, model.SourceManual, req.Notes, middleware.UserIDFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(comm))
}

func (h *Handler) GetStatusHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid communication ID"))
		return
	}

	history, err := h.service.History(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(history))
}
