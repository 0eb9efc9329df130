package gorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// ErrRecipeNotFound is returned when a catalog entry does not exist.
var ErrRecipeNotFound = errors.New("recipe not found")

// RecipeRepository implements outbound.RecipeRepository using GORM.
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a recipe repository.
func NewRecipeRepository(db *gorm.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

var _ outbound.RecipeRepository = (*RecipeRepository)(nil)

// Create persists a new catalog entry.
func (r *RecipeRepository) Create(ctx context.Context, rec *outbound.CatalogRecipe) error {
	model := RecipeToModel(rec)
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("create recipe: %w", result.Error)
	}
	return nil
}

// FindByID finds a catalog entry by ID.
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*outbound.CatalogRecipe, error) {
	var model RecipeModel
	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, result.Error
	}
	return ModelToRecipe(&model), nil
}

// FindFeatured returns featured entries, newest first.
func (r *RecipeRepository) FindFeatured(ctx context.Context, limit int) ([]*outbound.CatalogRecipe, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("featured = ?", true).Order("created_at DESC"), limit)
}

// FindNewest returns the most recently created entries.
func (r *RecipeRepository) FindNewest(ctx context.Context, limit int) ([]*outbound.CatalogRecipe, error) {
	return r.list(ctx, r.db.WithContext(ctx).Order("created_at DESC"), limit)
}

// FindTopRated returns the highest-rated entries.
func (r *RecipeRepository) FindTopRated(ctx context.Context, limit int) ([]*outbound.CatalogRecipe, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("average_rating > 0").Order("average_rating DESC"), limit)
}

// FindByAuthor returns a user's entries, newest first.
func (r *RecipeRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*outbound.CatalogRecipe, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("author_id = ?", authorID).Order("created_at DESC"), limit)
}

// Search matches the query against title, description and tags.
func (r *RecipeRepository) Search(ctx context.Context, query string, limit int) ([]*outbound.CatalogRecipe, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC")
	return r.list(ctx, q, limit)
}

func (r *RecipeRepository) list(ctx context.Context, q *gorm.DB, limit int) ([]*outbound.CatalogRecipe, error) {
	var models []RecipeModel
	if limit > 0 {
		q = q.Limit(limit)
	}
	if result := q.Find(&models); result.Error != nil {
		return nil, result.Error
	}

	out := make([]*outbound.CatalogRecipe, 0, len(models))
	for i := range models {
		out = append(out, ModelToRecipe(&models[i]))
	}
	return out, nil
}

// TaxonomyRepository implements outbound.TaxonomyRepository using GORM.
type TaxonomyRepository struct {
	db *gorm.DB
}

// NewTaxonomyRepository creates a taxonomy repository.
func NewTaxonomyRepository(db *gorm.DB) *TaxonomyRepository {
	return &TaxonomyRepository{db: db}
}

var _ outbound.TaxonomyRepository = (*TaxonomyRepository)(nil)

// ListCategories returns all categories ordered by name.
func (r *TaxonomyRepository) ListCategories(ctx context.Context) ([]*outbound.Category, error) {
	var models []CategoryModel
	if result := r.db.WithContext(ctx).Order("name").Find(&models); result.Error != nil {
		return nil, result.Error
	}

	out := make([]*outbound.Category, 0, len(models))
	for _, m := range models {
		out = append(out, &outbound.Category{ID: m.ID, Name: m.Name, Slug: m.Slug, Description: m.Description})
	}
	return out, nil
}

// ListTags returns all tags ordered by name.
func (r *TaxonomyRepository) ListTags(ctx context.Context) ([]*outbound.Tag, error) {
	var models []TagModel
	if result := r.db.WithContext(ctx).Order("name").Find(&models); result.Error != nil {
		return nil, result.Error
	}

	out := make([]*outbound.Tag, 0, len(models))
	for _, m := range models {
		out = append(out, &outbound.Tag{ID: m.ID, Name: m.Name, Slug: m.Slug})
	}
	return out, nil
}
