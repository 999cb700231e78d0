package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/auth"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/recipes"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	userIDContextKey = "flavorai_user_id"
	userContextKey   = "flavorai_user"
)

var (
	errMissingTokenManager   = errors.New("token manager dependency required")
	errMissingUsersService   = errors.New("users service dependency required")
	errMissingRecipesService = errors.New("recipes service dependency required")
)

// TokenManager issues and validates bearer tokens for API access.
type TokenManager interface {
	IssueToken(ctx context.Context, userID, username string) (string, int64, error)
	ValidateToken(token string) (auth.TokenClaims, error)
}

// Dependencies lists the collaborators the HTTP boundary needs.
type Dependencies struct {
	TokenManager   TokenManager
	UsersService   *users.Service
	RecipesService *recipes.Service
	Logger         *zap.Logger
}

// NewHTTPHandler wires the API routes onto a gin engine.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.TokenManager == nil {
		return nil, errMissingTokenManager
	}
	if deps.UsersService == nil {
		return nil, errMissingUsersService
	}
	if deps.RecipesService == nil {
		return nil, errMissingRecipesService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		tokens:  deps.TokenManager,
		users:   deps.UsersService,
		recipes: deps.RecipesService,
		logger:  logger,
	}

	api := router.Group("/api")
	api.POST("/auth/register", handler.handleRegister)
	api.POST("/auth/login", handler.handleLogin)

	protected := api.Group("/")
	protected.Use(handler.authorizeRequest)
	protected.GET("/auth/profile", handler.handleProfile)
	protected.POST("/recipes", handler.handleCreateRecipe)
	protected.GET("/recipes", handler.handleListRecipes)
	protected.GET("/recipes/my-recipes", handler.handleListMyRecipes)
	protected.GET("/recipes/:id", handler.handleGetRecipe)
	protected.PATCH("/recipes/:id", handler.handleUpdateRecipe)
	protected.DELETE("/recipes/:id", handler.handleDeleteRecipe)
	protected.POST("/recipes/:id/rate", handler.handleRateRecipe)
	protected.POST("/recipes/:id/notes", handler.handleAddNote)
	protected.GET("/recipes/:id/notes", handler.handleGetUserNote)

	return router, nil
}

type httpHandler struct {
	tokens  TokenManager
	users   *users.Service
	recipes *recipes.Service
	logger  *zap.Logger
}

// authorizeRequest verifies the bearer token and resolves its subject to a
// live account before protected handlers run.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		abortUnauthorized(c)
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		abortUnauthorized(c)
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			h.logger.Info("token validation failed", zap.Error(err))
		} else {
			h.logger.Warn("token validation failed", zap.Error(err))
		}
		abortUnauthorized(c)
		return
	}

	user, err := h.users.FindByID(c.Request.Context(), claims.Subject)
	if err != nil {
		h.logger.Error("failed to resolve token subject", zap.Error(err))
		abortUnauthorized(c)
		return
	}
	if user == nil {
		abortUnauthorized(c)
		return
	}

	c.Set(userIDContextKey, user.ID)
	c.Set(userContextKey, user)
	c.Next()
}

func currentUser(c *gin.Context) *users.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, ok := value.(*users.User)
	if !ok {
		return nil
	}
	return user
}
