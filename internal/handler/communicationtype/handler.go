package communicationtype

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/commexhq/comms-api/internal/handler"
	"github.com/commexhq/comms-api/internal/model"
	"github.com/commexhq/comms-api/internal/service/commtype"
)

type Handler struct {
	service *commtype.Service
}

func NewHandler(service *commtype.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	types := r.Group("/communication-types")
	{
		types.GET("", h.ListTypes)
		types.GET("/:id", h.GetType)
		types.POST("", h.CreateType)
		types.PUT("/:id", h.UpdateType)

		types.GET("/:id/statuses", h.GetValidStatuses)
		types.PUT("/:id/statuses", h.SetStatusMappings)
	}
}

type typeRequest struct {
	Code        string `json:"code" binding:"required,code"`
	DisplayName string `json:"display_name" binding:"required"`
	Description string `json:"description"`
}

type setMappingsRequest struct {
	StatusIDs []int64 `json:"status_ids" binding:"required"`
}

func (h *Handler) ListTypes(c *gin.Context) {
	types, err := h.service.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(types))
}

func (h *Handler) GetType(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid type ID"))
		return
	}

	ct, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ct))
}

func (h *Handler) CreateType(c *gin.Context) {
	var req typeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ct := &model.CommunicationType{
		Code:        req.Code,
		DisplayName: req.DisplayName,
		Description: req.Description,
	}
	if err := h.service.Create(c.Request.Context(), ct); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(ct))
}

func (h *Handler) UpdateType(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid type ID"))
		return
	}

	var req typeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	ct, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	ct.Code = req.Code
	ct.DisplayName = req.DisplayName
	ct.Description = req.Description

	if err := h.service.Update(c.Request.Context(), ct); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(ct))
}

// GetValidStatuses lists the active status allow-list for the type.
func (h *Handler) GetValidStatuses(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid type ID"))
		return
	}

	views, err := h.service.GetValidStatuses(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(views))
}

// SetStatusMappings replaces the type's allow-list with the requested set.
// The operation is idempotent: resubmitting the same set is a no-op.
func (h *Handler) SetStatusMappings(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid type ID"))
		return
	}

	var req setMappingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.SetMappings(c.Request.Context(), id, req.StatusIDs); err != nil {
		c.Error(err)
		return
	}

	views, err := h.service.GetValidStatuses(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(views))
}
