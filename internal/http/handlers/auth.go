package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/supporthub/backend/internal/auth"
	"github.com/supporthub/backend/internal/http/middleware"
)

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// @Summary Register an agent account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "registration"
// @Success 201 {object} map[string]any
// @Failure 403 {object} map[string]any
// @Router /api/auth/signup [post]
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	user, err := h.Auth.SignUp(c.Request.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		if errors.Is(err, auth.ErrDomainNotAllowed) {
			writeError(c, http.StatusForbidden, "DOMAIN_NOT_ALLOWED", "Only company email addresses may register", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create account", err.Error())
		return
	}
	h.Logger.Info().Str("user_id", user.ID).Msg("account created")
	c.JSON(http.StatusCreated, gin.H{"user_id": user.ID, "email": user.Email})
}

// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignInRequest true "credentials"
// @Success 200 {object} auth.Identity
// @Failure 401 {object} map[string]any
// @Router /api/auth/login [post]
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ident, err := h.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrDomainNotAllowed):
			writeError(c, http.StatusForbidden, "DOMAIN_NOT_ALLOWED", "Only company email addresses may sign in", nil)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password", nil)
		default:
			writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to sign in", err.Error())
		}
		return
	}
	c.JSON(http.StatusOK, ident)
}

// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/auth/logout [post]
func (h *Handler) SignOut(c *gin.Context) {
	ident := middleware.MustIdentity(c)
	token := middleware.BearerToken(c.GetHeader("Authorization"))
	if err := h.Auth.SignOut(c.Request.Context(), token); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to sign out", err.Error())
		return
	}
	h.Logger.Info().Str("user_id", ident.UserID).Msg("signed out")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Current identity
// @Tags auth
// @Produce json
// @Success 200 {object} auth.Identity
// @Router /api/auth/me [get]
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.MustIdentity(c))
}
