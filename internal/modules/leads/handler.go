package leads

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salescrm/internal/middleware"
	"salescrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	leads := protected.Group("/leads")
	{
		leads.GET("", h.List)
		leads.GET("/:id", h.Get)
		leads.POST("", h.Create)
		leads.PATCH("/:id", h.Update)
		leads.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) List(c *gin.Context) {
	var f ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query")
		return
	}
	rows, err := h.service.List(c.Request.Context(), middleware.Principal(c), f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, rows)
}

func (h *Handler) Get(c *gin.Context) {
	lead, err := h.service.Get(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	lead, err := h.service.Create(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, lead)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	lead, err := h.service.Update(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Lead deleted successfully"})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FromError(c, err)
}
