package server

import (
	"net/http"
	"strconv"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/recipes"
	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/validation"
	"github.com/gin-gonic/gin"
)

func (h *httpHandler) handleCreateRecipe(c *gin.Context) {
	var request createRecipeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeValidationError(c, []validation.FieldError{{Path: "general", Message: "Invalid request body"}})
		return
	}
	if fields := validateCreateRecipeRequest(request); len(fields) > 0 {
		writeValidationError(c, fields)
		return
	}

	input := recipes.CreateInput{
		Title:        request.Title,
		Instructions: request.Instructions,
		Ingredients:  request.Ingredients,
		CookTime:     request.CookTime,
	}
	if request.Description != nil {
		input.Description = *request.Description
	}
	if request.ImageURL != nil {
		input.ImageURL = *request.ImageURL
	}

	recipe, err := h.recipes.Create(c.Request.Context(), input, c.GetString(userIDContextKey))
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, newRecipePayload(recipe))
}

func (h *httpHandler) handleListRecipes(c *gin.Context) {
	page, err := h.recipes.FindAll(c.Request.Context(), listQueryFromRequest(c))
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newRecipeListPayload(page))
}

func (h *httpHandler) handleListMyRecipes(c *gin.Context) {
	page, err := h.recipes.FindByUser(c.Request.Context(), c.GetString(userIDContextKey), listQueryFromRequest(c))
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newRecipeListPayload(page))
}

func (h *httpHandler) handleGetRecipe(c *gin.Context) {
	rated, err := h.recipes.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, newRatedRecipePayload(*rated))
}

func (h *httpHandler) handleUpdateRecipe(c *gin.Context) {
	var request updateRecipeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeValidationError(c, []validation.FieldError{{Path: "general", Message: "Invalid request body"}})
		return
	}
	if fields := validateUpdateRecipeRequest(request); len(fields) > 0 {
		writeValidationError(c, fields)
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), c.Param("id"), recipes.UpdateInput{
		Title:        request.Title,
		Description:  request.Description,
		Instructions: request.Instructions,
		Ingredients:  request.Ingredients,
		CookTime:     request.CookTime,
		ImageURL:     request.ImageURL,
	}, c.GetString(userIDContextKey))
	if err != nil {
		writeServiceError(c, err, "You can only update your own recipes")
		return
	}
	c.JSON(http.StatusOK, newRecipePayload(recipe))
}

func (h *httpHandler) handleDeleteRecipe(c *gin.Context) {
	recipe, err := h.recipes.Remove(c.Request.Context(), c.Param("id"), c.GetString(userIDContextKey))
	if err != nil {
		writeServiceError(c, err, "You can only delete your own recipes")
		return
	}
	c.JSON(http.StatusOK, newRecipePayload(recipe))
}

func (h *httpHandler) handleRateRecipe(c *gin.Context) {
	var request rateRecipeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeValidationError(c, []validation.FieldError{{Path: "rating", Message: "Rating must be an integer"}})
		return
	}
	if fields := validateRateRecipeRequest(request); len(fields) > 0 {
		writeValidationError(c, fields)
		return
	}

	summary, err := h.recipes.Rate(c.Request.Context(), c.Param("id"), c.GetString(userIDContextKey), *request.Rating)
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Recipe rated successfully",
		"averageRating": summary.AverageRating,
		"ratingsCount":  summary.RatingsCount,
	})
}

func (h *httpHandler) handleAddNote(c *gin.Context) {
	var request noteRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		writeValidationError(c, []validation.FieldError{{Path: "general", Message: "Invalid request body"}})
		return
	}
	if fields := validateNoteRequest(request); len(fields) > 0 {
		writeValidationError(c, fields)
		return
	}

	note, err := h.recipes.AddNote(c.Request.Context(), c.Param("id"), c.GetString(userIDContextKey), request.Content)
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	c.JSON(http.StatusCreated, newNotePayload(note))
}

func (h *httpHandler) handleGetUserNote(c *gin.Context) {
	note, err := h.recipes.UserNote(c.Request.Context(), c.Param("id"), c.GetString(userIDContextKey))
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	if note == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusOK, newNotePayload(note))
}

func listQueryFromRequest(c *gin.Context) recipes.ListQuery {
	query := recipes.ListQuery{Search: c.Query("search")}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		query.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		query.Limit = limit
	}
	return query
}

func newRecipeListPayload(page *recipes.RecipePage) recipeListPayload {
	data := make([]ratedRecipePayload, 0, len(page.Recipes))
	for _, rated := range page.Recipes {
		data = append(data, newRatedRecipePayload(rated))
	}
	return recipeListPayload{Data: data, Pagination: page.Pagination}
}
