package dashboard

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
	protected.GET("/dashboard", h.Get)
}

func (h *Handler) Get(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		_ = c.Error(err)
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}
