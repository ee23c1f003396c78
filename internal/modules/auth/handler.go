package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salescrm/internal/modules/session"
	"salescrm/internal/pkg/response"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signup", h.SignUp)
		authGroup.POST("/signin", h.SignIn)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/confirm", h.ConfirmEmail)
		authGroup.POST("/confirm/resend", h.ResendConfirmation)
	}
}

// RegisterProtectedRoutes expects the auth middleware to have placed the
// principal on the context.
func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup, principal func(*gin.Context) session.Principal) {
	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/signout", func(c *gin.Context) { h.SignOut(c, principal(c)) })
		authGroup.GET("/session", h.CurrentSession)
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	if errors.Is(err, ErrInvalidConfirmationToken) {
		response.Error(c, http.StatusBadRequest, "INVALID_TOKEN", err.Error())
		return
	}
	response.FromError(c, err)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess, "message": msgSignedIn})
}

func (h *Handler) ConfirmEmail(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.ConfirmEmail(c.Request.Context(), req.Token)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess, "message": msgEmailConfirmed})
}

func (h *Handler) ResendConfirmation(c *gin.Context) {
	var req ResendConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	msg, err := h.service.ResendConfirmation(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"message": msg})
}

func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sess, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

func (h *Handler) SignOut(c *gin.Context, p session.Principal) {
	if err := h.service.SignOut(c.Request.Context(), p); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msgSignedOut})
}

func (h *Handler) CurrentSession(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", msgNoActiveSession)
		return
	}
	d, err := h.service.CurrentSession(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, d)
}

func bearerToken(c *gin.Context) string {
	const prefix = "Bearer "
	h := c.GetHeader("Authorization")
	if len(h) > len(prefix) && h[:len(prefix)] == prefix {
		return h[len(prefix):]
	}
	return ""
}
