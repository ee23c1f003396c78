package opportunities

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
	opps := protected.Group("/opportunities")
	{
		opps.GET("", h.List)
		opps.GET("/:id", h.Get)
		opps.POST("", h.Create)
		opps.PATCH("/:id", h.Update)
		opps.DELETE("/:id", h.Delete)
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
	opp, err := h.service.Get(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, opp)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	opp, err := h.service.Create(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, opp)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	opp, err := h.service.Update(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, opp)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Opportunity deleted successfully"})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FromError(c, err)
}
