package accounts

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

// RegisterRoutes mounts the account endpoints on a group guarded by
// middleware.RequireSession.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	accounts := protected.Group("/accounts")
	{
		accounts.GET("", h.List)
		accounts.GET("/options", h.Options)
		accounts.GET("/:id", h.Get)
		accounts.POST("", h.Create)
		accounts.PATCH("/:id", h.Update)
		accounts.DELETE("/:id", h.Delete)
	}
}

// List returns the caller's accounts, newest first.
//
// @Summary List accounts
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param q query string false "Name search"
// @Param type query string false "prospect, customer, partner, vendor or all"
// @Router /accounts [get]
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
	a, err := h.service.Get(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	a, err := h.service.Create(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, a)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	a, err := h.service.Update(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, a)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	response.FromError(c, err)
}
