package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/flavorai/backend/internal/identifier"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()

	// ErrRecipeNotFound indicates the requested recipe does not exist.
	ErrRecipeNotFound = errors.New("recipes: recipe not found")
	// ErrNotRecipeOwner indicates the caller does not own the recipe.
	ErrNotRecipeOwner = errors.New("recipes: not the recipe owner")
	// ErrEmptyUpdate indicates an update carrying no fields.
	ErrEmptyUpdate = errors.New("recipes: update has no fields")
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

const (
	opServiceNew = "recipes.service.new"
	opCreate     = "recipes.create"
	opFindAll    = "recipes.find_all"
	opFindByUser = "recipes.find_by_user"
	opFindOne    = "recipes.find_one"
	opUpdate     = "recipes.update"
	opRemove     = "recipes.remove"
	opRate       = "recipes.rate"
	opAddNote    = "recipes.add_note"
	opUserNote   = "recipes.user_note"
)

// ServiceError wraps recipe service failures with an operation code.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig describes the dependencies required for recipe management.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider identifier.Provider
	Logger     *zap.Logger
}

// Service manages recipes with their ratings and per-user notes.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider identifier.Provider
	logger     *zap.Logger
}

// NewService constructs the recipe service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// Create inserts a recipe owned by authorID and returns it with the author
// association loaded.
func (s *Service) Create(ctx context.Context, input CreateInput, authorID string) (*Recipe, error) {
	recipeID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opCreate, "id_generation_failed", err)
		return nil, newServiceError(opCreate, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	recipe := Recipe{
		ID:           recipeID,
		Title:        input.Title,
		Description:  input.Description,
		Instructions: input.Instructions,
		Ingredients:  input.Ingredients,
		CookTime:     input.CookTime,
		ImageURL:     input.ImageURL,
		AuthorID:     authorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.db.WithContext(ctx).Create(&recipe).Error; err != nil {
		s.logError(opCreate, "recipe_create_failed", err, zap.String("author_id", authorID))
		return nil, newServiceError(opCreate, "recipe_create_failed", err)
	}

	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", recipe.ID).First(&recipe).Error; err != nil {
		s.logError(opCreate, "recipe_reload_failed", err, zap.String("recipe_id", recipe.ID))
		return nil, newServiceError(opCreate, "recipe_reload_failed", err)
	}
	return &recipe, nil
}

// FindAll returns one page of recipes, newest first, each with its rating
// aggregate computed from the full rating set.
func (s *Service) FindAll(ctx context.Context, query ListQuery) (*RecipePage, error) {
	return s.listRecipes(ctx, opFindAll, query, "")
}

// FindByUser returns one page of the given author's recipes.
func (s *Service) FindByUser(ctx context.Context, authorID string, query ListQuery) (*RecipePage, error) {
	return s.listRecipes(ctx, opFindByUser, query, authorID)
}

func (s *Service) listRecipes(ctx context.Context, operation string, query ListQuery, authorID string) (*RecipePage, error) {
	page := query.Page
	if page < 1 {
		page = defaultPage
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	applyFilters := func(db *gorm.DB) *gorm.DB {
		if authorID != "" {
			db = db.Where("author_id = ?", authorID)
		}
		if search := strings.TrimSpace(query.Search); search != "" {
			pattern := "%" + escapeLikePattern(strings.ToLower(search)) + "%"
			db = db.Where(`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
		}
		return db
	}

	var total int64
	if err := applyFilters(s.db.WithContext(ctx).Model(&Recipe{})).Count(&total).Error; err != nil {
		s.logError(operation, "count_failed", err)
		return nil, newServiceError(operation, "count_failed", err)
	}

	var found []Recipe
	err := applyFilters(s.db.WithContext(ctx).Model(&Recipe{})).
		Preload("Author").
		Preload("Ratings").
		Preload("Ratings.User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&found).Error
	if err != nil {
		s.logError(operation, "query_failed", err)
		return nil, newServiceError(operation, "query_failed", err)
	}

	rated := make([]RatedRecipe, 0, len(found))
	for _, recipe := range found {
		average, count := ratingAggregate(recipe.Ratings)
		rated = append(rated, RatedRecipe{
			Recipe:        recipe,
			AverageRating: roundToOneDecimal(average),
			RatingsCount:  count,
		})
	}

	return &RecipePage{
		Recipes: rated,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + int64(limit) - 1) / int64(limit),
		},
	}, nil
}

// FindOne returns a recipe with its author, full rating list, and rounded
// rating aggregate. Returns ErrRecipeNotFound when absent.
func (s *Service) FindOne(ctx context.Context, recipeID string) (*RatedRecipe, error) {
	var recipe Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ratings").
		Preload("Ratings.User").
		Where("id = ?", recipeID).
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		s.logError(opFindOne, "query_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opFindOne, "query_failed", err)
	}

	average, count := ratingAggregate(recipe.Ratings)
	return &RatedRecipe{
		Recipe:        recipe,
		AverageRating: roundToOneDecimal(average),
		RatingsCount:  count,
	}, nil
}

// Update applies a partial update to a recipe the caller owns. Existence is
// checked before ownership.
func (s *Service) Update(ctx context.Context, recipeID string, input UpdateInput, userID string) (*Recipe, error) {
	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Instructions != nil {
		updates["instructions"] = *input.Instructions
	}
	if input.Ingredients != nil {
		updates["ingredients"] = ingredientsJSON(input.Ingredients)
	}
	if input.CookTime != nil {
		updates["cook_time_minutes"] = *input.CookTime
	}
	if input.ImageURL != nil {
		updates["image_url"] = *input.ImageURL
	}
	if len(updates) == 0 {
		return nil, ErrEmptyUpdate
	}
	updates["updated_at"] = s.clock().UTC()

	if err := s.checkOwnership(ctx, opUpdate, recipeID, userID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&Recipe{}).Where("id = ?", recipeID).Updates(updates).Error; err != nil {
		s.logError(opUpdate, "update_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opUpdate, "update_failed", err)
	}

	var recipe Recipe
	if err := s.db.WithContext(ctx).Preload("Author").Where("id = ?", recipeID).First(&recipe).Error; err != nil {
		s.logError(opUpdate, "recipe_reload_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opUpdate, "recipe_reload_failed", err)
	}
	return &recipe, nil
}

// Remove deletes a recipe the caller owns, together with its ratings and
// notes, and returns the deleted row. Existence is checked before ownership.
func (s *Service) Remove(ctx context.Context, recipeID, userID string) (*Recipe, error) {
	var recipe Recipe
	err := s.db.WithContext(ctx).Where("id = ?", recipeID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecipeNotFound
	}
	if err != nil {
		s.logError(opRemove, "recipe_lookup_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opRemove, "recipe_lookup_failed", err)
	}
	if recipe.AuthorID != userID {
		return nil, ErrNotRecipeOwner
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&RecipeNote{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", recipeID).Delete(&Recipe{}).Error
	})
	if txErr != nil {
		s.logError(opRemove, "delete_failed", txErr, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opRemove, "delete_failed", txErr)
	}
	return &recipe, nil
}

// Rate upserts the caller's rating and returns the recomputed aggregate.
// The returned average is the raw mean, not rounded.
func (s *Service) Rate(ctx context.Context, recipeID, userID string, value int) (*RatingSummary, error) {
	if err := s.checkRecipeExists(ctx, opRate, recipeID); err != nil {
		return nil, err
	}

	ratingID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opRate, "id_generation_failed", err)
		return nil, newServiceError(opRate, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	rating := Rating{
		ID:        ratingID,
		UserID:    userID,
		RecipeID:  recipeID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"rating": value, "updated_at": now}),
	}).Create(&rating).Error
	if err != nil {
		s.logError(opRate, "rating_upsert_failed", err,
			zap.String("recipe_id", recipeID),
			zap.String("user_id", userID))
		return nil, newServiceError(opRate, "rating_upsert_failed", err)
	}

	var ratings []Rating
	if err := s.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Find(&ratings).Error; err != nil {
		s.logError(opRate, "ratings_query_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opRate, "ratings_query_failed", err)
	}

	average, count := ratingAggregate(ratings)
	return &RatingSummary{AverageRating: average, RatingsCount: count}, nil
}

// AddNote upserts the caller's note on a recipe and returns the stored row.
func (s *Service) AddNote(ctx context.Context, recipeID, userID, content string) (*RecipeNote, error) {
	if err := s.checkRecipeExists(ctx, opAddNote, recipeID); err != nil {
		return nil, err
	}

	noteID, err := s.idProvider.NewID()
	if err != nil {
		s.logError(opAddNote, "id_generation_failed", err)
		return nil, newServiceError(opAddNote, "id_generation_failed", err)
	}

	now := s.clock().UTC()
	note := RecipeNote{
		ID:        noteID,
		UserID:    userID,
		RecipeID:  recipeID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"content": content, "updated_at": now}),
	}).Create(&note).Error
	if err != nil {
		s.logError(opAddNote, "note_upsert_failed", err,
			zap.String("recipe_id", recipeID),
			zap.String("user_id", userID))
		return nil, newServiceError(opAddNote, "note_upsert_failed", err)
	}

	var stored RecipeNote
	if err := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&stored).Error; err != nil {
		s.logError(opAddNote, "note_reload_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opAddNote, "note_reload_failed", err)
	}
	return &stored, nil
}

// UserNote returns the caller's note for a recipe, or nil when the caller
// has not written one. The recipe itself must exist.
func (s *Service) UserNote(ctx context.Context, recipeID, userID string) (*RecipeNote, error) {
	if err := s.checkRecipeExists(ctx, opUserNote, recipeID); err != nil {
		return nil, err
	}

	var note RecipeNote
	err := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logError(opUserNote, "note_query_failed", err, zap.String("recipe_id", recipeID))
		return nil, newServiceError(opUserNote, "note_query_failed", err)
	}
	return &note, nil
}

func (s *Service) checkRecipeExists(ctx context.Context, operation, recipeID string) error {
	var recipe Recipe
	err := s.db.WithContext(ctx).Select("id").Where("id = ?", recipeID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecipeNotFound
	}
	if err != nil {
		s.logError(operation, "recipe_lookup_failed", err, zap.String("recipe_id", recipeID))
		return newServiceError(operation, "recipe_lookup_failed", err)
	}
	return nil
}

func (s *Service) checkOwnership(ctx context.Context, operation, recipeID, userID string) error {
	var recipe Recipe
	err := s.db.WithContext(ctx).Select("id", "author_id").Where("id = ?", recipeID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecipeNotFound
	}
	if err != nil {
		s.logError(operation, "recipe_lookup_failed", err, zap.String("recipe_id", recipeID))
		return newServiceError(operation, "recipe_lookup_failed", err)
	}
	if recipe.AuthorID != userID {
		return ErrNotRecipeOwner
	}
	return nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("recipes service error", attrs...)
}

// ingredientsJSON encodes the slice the same way the model's JSON serializer
// does, since map-based Updates bypass field serializers.
func ingredientsJSON(values []string) string {
	encoded, _ := json.Marshal(values)
	return string(encoded)
}

var likePatternReplacer = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLikePattern neutralizes LIKE wildcards so search terms match
// literally.
func escapeLikePattern(value string) string {
	return likePatternReplacer.Replace(value)
}

func ratingAggregate(ratings []Rating) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, rating := range ratings {
		sum += rating.Value
	}
	return float64(sum) / float64(len(ratings)), len(ratings)
}

func roundToOneDecimal(value float64) float64 {
	return math.Round(value*10) / 10
}
