package server

import (
	"net/http"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/users"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/validation"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type authResponsePayload struct {
	User        authUserPayload `json:"user"`
	AccessToken string          `json:"access_token"`
}

func (h *httpHandler) handleRegister(c *gin.Context) {
	var request registerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeValidationError(c, []validation.FieldError{{Path: "general", Message: "Invalid request body"}})
		return
	}
	if fields := validateRegisterRequest(request); len(fields) > 0 {
		writeValidationError(c, fields)
		return
	}

	user, err := h.users.Register(c.Request.Context(), users.RegisterInput{
		Email:    request.Email,
		Username: request.Username,
		Password: request.Password,
	})
	if err != nil {
		writeServiceError(c, err, "")
		return
	}

	token, _, err := h.tokens.IssueToken(c.Request.Context(), user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, authResponsePayload{
		User:        newAuthUserPayload(user),
		AccessToken: token,
	})
}

func (h *httpHandler) handleLogin(c *gin.Context) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeValidationError(c, []validation.FieldError{{Path: "general", Message: "Invalid request body"}})
		return
	}
	if fields := validateLoginRequest(request); len(fields) > 0 {
		writeValidationError(c, fields)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		writeServiceError(c, err, "")
		return
	}

	token, _, err := h.tokens.IssueToken(c.Request.Context(), user.ID, user.Username)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		writeError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, authResponsePayload{
		User:        newAuthUserPayload(user),
		AccessToken: token,
	})
}

func (h *httpHandler) handleProfile(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		abortUnauthorized(c)
		return
	}
	c.JSON(http.StatusOK, newProfilePayload(user))
}
