package status

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/commexhq/comms-api/internal/handler"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/service/status"
)

type Handler struct {
	service *status.Service
}

func NewHandler(service *status.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	statuses := r.Group("/statuses")
	{
		statuses.GET("", h.ListStatuses)
		statuses.GET("/:id", h.GetStatus)
		statuses.POST("", h.CreateStatus)
		statuses.PUT("/:id", h.UpdateStatus)
		statuses.DELETE("/:id", h.DeactivateStatus)
	}
}

type createStatusRequest struct {
	Code        string `json:"code" binding:"required,code"`
	DisplayName string `json:"display_name" binding:"required"`
	Description string `json:"description"`
	Phase       string `json:"phase" binding:"required"`
}

type updateStatusRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	Description string `json:"description"`
	Phase       string `json:"phase" binding:"required"`
	IsActive    *bool  `json:"is_active"`
}

// ListStatuses returns the catalog. Deactivated entries are included only
// when ?include_inactive=true.
func (h *Handler) ListStatuses(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	statuses, err := h.service.List(c.Request.Context(), !includeInactive)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(statuses))
}

func (h *Handler) GetStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid status ID"))
		return
	}

	st, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(st))
}

func (h *Handler) CreateStatus(c *gin.Context) {
	var req createStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	st := &model.GlobalStatus{
		Code:        req.Code,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Phase:       model.StatusPhase(req.Phase),
	}
	if err := h.service.Create(c.Request.Context(), st); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(st))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid status ID"))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	st, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	st.DisplayName = req.DisplayName
	st.Description = req.Description
	st.Phase = model.StatusPhase(req.Phase)
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}

	if err := h.service.Update(c.Request.Context(), st); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(st))
}

func (h *Handler) DeactivateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid status ID"))
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}
