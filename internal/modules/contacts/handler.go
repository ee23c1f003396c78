package contacts

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
	contacts := protected.Group("/contacts")
	{
		contacts.GET("", h.List)
		contacts.GET("/options", h.Options)
		contacts.GET("/:id", h.Get)
		contacts.POST("", h.Create)
		contacts.PATCH("/:id", h.Update)
		contacts.DELETE("/:id", h.Delete)
	}
}

// List accepts q and status query filters.
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

func (h *Handler) Options(c *gin.Context) {
	refs, err := h.service.Options(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, refs)
}

func (h *Handler) Get(c *gin.Context) {
	contact, err := h.service.Get(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, contact)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	contact, err := h.service.Create(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, contact)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	contact, err := h.service.Update(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, contact)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Contact deleted successfully"})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FromError(c, err)
}
