package conversion

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salescrm/internal/middleware"
	"salescrm/internal/pkg/apperr"
	"salescrm/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.POST("/leads/:id/convert", h.Convert)
}

// Convert godoc
// @Summary Convert a lead into an account and a contact
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lead ID"
// @Success 200 {object} Result
// @Failure 401 "No active session"
// @Failure 404 "Lead not found"
// @Failure 409 "Already converted, conversion in progress, or partial conversion"
// @Failure 502 "Data store rejected a write"
// @Router /leads/{id}/convert [post]
func (h *Handler) Convert(c *gin.Context) {
	res, err := h.service.Convert(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func writeError(c *gin.Context, err error) {
	var partial *PartialConversionError
	var remote *apperr.RemoteError
	switch {
	case errors.As(err, &partial):
		response.ErrorWithDetails(c, http.StatusConflict, "PARTIAL_CONVERSION", err.Error(), partial)
	case errors.Is(err, ErrAlreadyConverted):
		response.Error(c, http.StatusConflict, "ALREADY_CONVERTED", err.Error())
	case errors.Is(err, ErrConversionInFlight):
		response.Error(c, http.StatusConflict, "CONVERSION_IN_FLIGHT", err.Error())
	case errors.As(err, &remote):
		response.Error(c, http.StatusBadGateway, "REMOTE_ERROR", remote.Error())
	default:
		response.FromError(c, err)
	}
}
