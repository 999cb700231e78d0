package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/recipes"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/users"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/validation"
	"github.com/gin-gonic/gin"
)

type errorPayload struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

type validationErrorPayload struct {
	StatusCode int                     `json:"statusCode"`
	Message    string                  `json:"message"`
	Errors     []validation.FieldError `json:"errors"`
}

func writeValidationError(c *gin.Context, fields []validation.FieldError) {
	c.JSON(http.StatusBadRequest, validationErrorPayload{
		StatusCode: http.StatusBadRequest,
		Message:    "Validation failed",
		Errors:     fields,
	})
}

func writeError(c *gin.Context, status int, message string) {
	c.JSON(status, errorPayload{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorPayload{
		StatusCode: http.StatusUnauthorized,
		Message:    "Unauthorized",
		Error:      http.StatusText(http.StatusUnauthorized),
	})
}

// writeServiceError maps domain errors from the services onto the error
// taxonomy; anything unanticipated becomes a 500.
func writeServiceError(c *gin.Context, err error, forbiddenMessage string) {
	var validationErr *validation.Error
	switch {
	case errors.As(err, &validationErr):
		writeValidationError(c, validationErr.Fields)
	case errors.Is(err, recipes.ErrRecipeNotFound):
		writeError(c, http.StatusNotFound, "Recipe not found")
	case errors.Is(err, recipes.ErrNotRecipeOwner):
		writeError(c, http.StatusForbidden, forbiddenMessage)
	default:
		writeError(c, http.StatusInternalServerError, "Internal server error")
	}
}

type userSummaryPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type authUserPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

type profilePayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ratingPayload struct {
	ID     string              `json:"id"`
	Rating int                 `json:"rating"`
	UserID string              `json:"userId"`
	User   *userSummaryPayload `json:"user,omitempty"`
}

type recipePayload struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Instructions string              `json:"instructions"`
	Ingredients  []string            `json:"ingredients"`
	CookTime     *int                `json:"cookTime"`
	ImageURL     string              `json:"imageUrl"`
	AuthorID     string              `json:"authorId"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Author       *userSummaryPayload `json:"author,omitempty"`
}

type ratedRecipePayload struct {
	recipePayload
	Ratings       []ratingPayload `json:"ratings"`
	AverageRating float64         `json:"averageRating"`
	RatingsCount  int             `json:"ratingsCount"`
}

type recipeListPayload struct {
	Data       []ratedRecipePayload `json:"data"`
	Pagination recipes.Pagination   `json:"pagination"`
}

type notePayload struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RecipeID  string    `json:"recipeId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newAuthUserPayload(user *users.User) authUserPayload {
	return authUserPayload{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
	}
}

func newProfilePayload(user *users.User) profilePayload {
	return profilePayload{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func newUserSummaryPayload(user *users.User) *userSummaryPayload {
	if user == nil {
		return nil
	}
	return &userSummaryPayload{ID: user.ID, Username: user.Username}
}

func newRecipePayload(recipe *recipes.Recipe) recipePayload {
	return recipePayload{
		ID:           recipe.ID,
		Title:        recipe.Title,
		Description:  recipe.Description,
		Instructions: recipe.Instructions,
		Ingredients:  recipe.Ingredients,
		CookTime:     recipe.CookTime,
		ImageURL:     recipe.ImageURL,
		AuthorID:     recipe.AuthorID,
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
		Author:       newUserSummaryPayload(recipe.Author),
	}
}

func newRatedRecipePayload(rated recipes.RatedRecipe) ratedRecipePayload {
	ratings := make([]ratingPayload, 0, len(rated.Recipe.Ratings))
	for _, rating := range rated.Recipe.Ratings {
		ratings = append(ratings, ratingPayload{
			ID:     rating.ID,
			Rating: rating.Value,
			UserID: rating.UserID,
			User:   newUserSummaryPayload(rating.User),
		})
	}
	return ratedRecipePayload{
		recipePayload: newRecipePayload(&rated.Recipe),
		Ratings:       ratings,
		AverageRating: rated.AverageRating,
		RatingsCount:  rated.RatingsCount,
	}
}

func newNotePayload(note *recipes.RecipeNote) notePayload {
	return notePayload{
		ID:        note.ID,
		UserID:    note.UserID,
		RecipeID:  note.RecipeID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
