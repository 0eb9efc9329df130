package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecipeDTO is the catalog representation served to clients.
type RecipeDTO struct {
	ID              uuid.UUID `json:"id"`
	AuthorName      string    `json:"user_name"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"image,omitempty"`
	Ingredients     []string  `json:"ingredients,omitempty"`
	Directions      []string  `json:"directions,omitempty"`
	PrepTimeMinutes int       `json:"prep_time_min"`
	CookTimeMinutes int       `json:"cook_time_min"`
	Servings        int       `json:"servings,omitempty"`
	Difficulty      string    `json:"difficulty"`
	Categories      []string  `json:"categories"`
	Tags            []string  `json:"tags"`
	AverageRating   float64   `json:"average_rating"`
	CreatedAt       time.Time `json:"created_at"`
}

// CategoryDTO mirrors the taxonomy entries served to the creation form.
type CategoryDTO struct {
	ID          uuid.UUID `json:"_id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
}

// TagDTO is a catalog tag.
type TagDTO struct {
	ID   uuid.UUID `json:"_id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CreateRecipeCommand carries the recipe-creation form payload,
// including drafts imported from an analysis session.
type CreateRecipeCommand struct {
	AuthorID        uuid.UUID
	Title           string   `json:"title" validate:"required,min=3,max=200"`
	Description     string   `json:"description" validate:"max=2000"`
	ImageURL        string   `json:"image,omitempty"`
	Ingredients     []string `json:"ingredients" validate:"required,min=1"`
	Directions      []string `json:"directions" validate:"required,min=1"`
	PrepTimeMinutes int      `json:"prep_time_min" validate:"gte=0"`
	CookTimeMinutes int      `json:"cook_time_min" validate:"gte=0"`
	Servings        int      `json:"servings" validate:"gte=0"`
	Difficulty      string   `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Categories      []string `json:"categories"`
	Tags            []string `json:"tags"`
}

// CatalogService is the recipe catalog use-case surface: listings for
// the home page, search, and recipe creation.
type CatalogService interface {
	CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (*RecipeDTO, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*RecipeDTO, error)
	ListFeatured(ctx context.Context, limit int) ([]*RecipeDTO, error)
	ListNewest(ctx context.Context, limit int) ([]*RecipeDTO, error)
	ListTopRated(ctx context.Context, limit int) ([]*RecipeDTO, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*RecipeDTO, error)
	Search(ctx context.Context, query string, limit int) ([]*RecipeDTO, error)
	ListCategories(ctx context.Context) ([]*CategoryDTO, error)
	ListTags(ctx context.Context) ([]*TagDTO, error)
}
