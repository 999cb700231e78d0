package recipes

import (
	"time"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/users"
)

// Recipe models a persisted recipe. AuthorID is immutable after creation;
// ingredients keep their authoring order through the JSON serializer.
type Recipe struct {
	ID           string      `gorm:"column:id;primaryKey;size:36;not null"`
	Title        string      `gorm:"column:title;size:200;not null"`
	Description  string      `gorm:"column:description;size:1000"`
	Instructions string      `gorm:"column:instructions;type:text;not null"`
	Ingredients  []string    `gorm:"column:ingredients;type:text;serializer:json;not null"`
	CookTime     *int        `gorm:"column:cook_time_minutes"`
	ImageURL     string      `gorm:"column:image_url;size:512"`
	AuthorID     string      `gorm:"column:author_id;size:36;not null;index:idx_recipes_author"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime;index:idx_recipes_created"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
	Author       *users.User `gorm:"foreignKey:AuthorID"`
	Ratings      []Rating    `gorm:"foreignKey:RecipeID"`
}

// TableName provides the explicit table binding for GORM.
func (Recipe) TableName() string {
	return "recipes"
}

// Rating stores one user's rating of one recipe. The (user, recipe) pair is
// unique; re-rating overwrites in place.
type Rating struct {
	ID        string      `gorm:"column:id;primaryKey;size:36;not null"`
	UserID    string      `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_ratings_user_recipe,priority:1"`
	RecipeID  string      `gorm:"column:recipe_id;size:36;not null;uniqueIndex:idx_ratings_user_recipe,priority:2;index:idx_ratings_recipe"`
	Value     int         `gorm:"column:rating;not null"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
	User      *users.User `gorm:"foreignKey:UserID"`
}

// TableName provides the explicit table binding for GORM.
func (Rating) TableName() string {
	return "recipe_ratings"
}

// RecipeNote stores one user's private note on one recipe, upserted by the
// unique (user, recipe) pair like Rating.
type RecipeNote struct {
	ID        string    `gorm:"column:id;primaryKey;size:36;not null"`
	UserID    string    `gorm:"column:user_id;size:36;not null;uniqueIndex:idx_notes_user_recipe,priority:1"`
	RecipeID  string    `gorm:"column:recipe_id;size:36;not null;uniqueIndex:idx_notes_user_recipe,priority:2;index:idx_notes_recipe"`
	Content   string    `gorm:"column:content;size:1000;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (RecipeNote) TableName() string {
	return "recipe_notes"
}

// RatedRecipe pairs a recipe with its rating aggregate for list and detail
// views. AverageRating here is rounded to one decimal.
type RatedRecipe struct {
	Recipe        Recipe
	AverageRating float64
	RatingsCount  int
}

// Pagination describes an offset-paginated result window.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// RecipePage is one page of rated recipes.
type RecipePage struct {
	Recipes    []RatedRecipe
	Pagination Pagination
}

// ListQuery bounds a paginated listing. Search, when set, matches title or
// description case-insensitively.
type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

// RatingSummary reports the aggregate after a rating upsert. AverageRating
// here is the raw arithmetic mean, not the rounded view value.
type RatingSummary struct {
	AverageRating float64
	RatingsCount  int
}

// CreateInput carries the already-validated recipe creation fields.
type CreateInput struct {
	Title        string
	Description  string
	Instructions string
	Ingredients  []string
	CookTime     *int
	ImageURL     string
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title        *string
	Description  *string
	Instructions *string
	Ingredients  []string
	CookTime     *int
	ImageURL     *string
}
