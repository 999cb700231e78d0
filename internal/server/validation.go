package server

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/validation"
)

type registerRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createRecipeRequest struct {
	Title        string   `json:"title"`
	Description  *string  `json:"description"`
	Instructions string   `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
	CookTime     *int     `json:"cookTime"`
	ImageURL     *string  `json:"imageUrl"`
}

type updateRecipeRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Instructions *string  `json:"instructions"`
	Ingredients  []string `json:"ingredients"`
	CookTime     *int     `json:"cookTime"`
	ImageURL     *string  `json:"imageUrl"`
}

type rateRecipeRequest struct {
	Rating *int `json:"rating"`
}

type noteRequest struct {
	Content string `json:"content"`
}

func validateRegisterRequest(req registerRequest) []validation.FieldError {
	var fields []validation.FieldError
	if fieldErr := validation.CheckEmail("email", req.Email); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if fieldErr := validation.CheckUsername("username", req.Username); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if fieldErr := validation.CheckPassword("password", req.Password); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		fields = append(fields, validation.FieldError{Path: "confirmPassword", Message: "Passwords don't match"})
	}
	return fields
}

func validateLoginRequest(req loginRequest) []validation.FieldError {
	var fields []validation.FieldError
	if fieldErr := validation.CheckEmail("email", req.Email); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if req.Password == "" {
		fields = append(fields, validation.FieldError{Path: "password", Message: "Password is required"})
	}
	return fields
}

func validateCreateRecipeRequest(req createRecipeRequest) []validation.FieldError {
	var fields []validation.FieldError
	if fieldErr := validation.CheckString("title", req.Title, 1, 200); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if req.Description != nil {
		if fieldErr := validation.CheckString("description", *req.Description, 0, 1000); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	if fieldErr := validation.CheckString("instructions", req.Instructions, 1, 5000); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	fields = append(fields, checkIngredients("ingredients", req.Ingredients)...)
	if fieldErr := validation.CheckPositiveInt("cookTime", req.CookTime); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if req.ImageURL != nil {
		if fieldErr := validation.CheckURL("imageUrl", *req.ImageURL); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	return fields
}

func validateUpdateRecipeRequest(req updateRecipeRequest) []validation.FieldError {
	if req.Title == nil && req.Description == nil && req.Instructions == nil &&
		req.Ingredients == nil && req.CookTime == nil && req.ImageURL == nil {
		return []validation.FieldError{{Path: "general", Message: "At least one field must be provided for update"}}
	}

	var fields []validation.FieldError
	if req.Title != nil {
		if fieldErr := validation.CheckString("title", *req.Title, 1, 200); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	if req.Description != nil {
		if fieldErr := validation.CheckString("description", *req.Description, 0, 1000); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	if req.Instructions != nil {
		if fieldErr := validation.CheckString("instructions", *req.Instructions, 1, 5000); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	if req.Ingredients != nil {
		fields = append(fields, checkIngredients("ingredients", req.Ingredients)...)
	}
	if fieldErr := validation.CheckPositiveInt("cookTime", req.CookTime); fieldErr != nil {
		fields = append(fields, *fieldErr)
	}
	if req.ImageURL != nil {
		if fieldErr := validation.CheckURL("imageUrl", *req.ImageURL); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	return fields
}

func validateRateRecipeRequest(req rateRecipeRequest) []validation.FieldError {
	if req.Rating == nil {
		return []validation.FieldError{{Path: "rating", Message: "Rating must be at least 1"}}
	}
	if fieldErr := validation.CheckRating("rating", *req.Rating); fieldErr != nil {
		return []validation.FieldError{*fieldErr}
	}
	return nil
}

func validateNoteRequest(req noteRequest) []validation.FieldError {
	if fieldErr := validation.CheckString("content", req.Content, 1, 1000); fieldErr != nil {
		return []validation.FieldError{*fieldErr}
	}
	return nil
}

func checkIngredients(path string, ingredients []string) []validation.FieldError {
	if len(ingredients) < 1 {
		return []validation.FieldError{{Path: path, Message: "Must have at least 1 items"}}
	}
	if len(ingredients) > 100 {
		return []validation.FieldError{{Path: path, Message: "Cannot have more than 100 items"}}
	}
	var fields []validation.FieldError
	for index, ingredient := range ingredients {
		if fieldErr := validation.CheckString(indexedPath(path, index), ingredient, 1, 200); fieldErr != nil {
			fields = append(fields, *fieldErr)
		}
	}
	return fields
}

func indexedPath(path string, index int) string {
	return fmt.Sprintf("%s.%d", path, index)
}
