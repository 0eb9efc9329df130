// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"time"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/user"
	"github.com/google/uuid"
)

// CatalogRecipe is the persisted form of a catalog entry. Unlike the
// analysis recipe it carries authorship and social metadata because the
// catalog pages (featured, new, high-rated) are built from it.
type CatalogRecipe struct {
	ID              uuid.UUID
	AuthorID        uuid.UUID
	AuthorName      string
	Title           string
	Description     string
	ImageURL        string
	Ingredients     []string
	Directions      []string
	PrepTimeMinutes int
	CookTimeMinutes int
	Servings        int
	Difficulty      string
	Categories      []string
	Tags            []string
	AverageRating   float64
	Featured        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RecipeRepository defines the interface for catalog persistence.
type RecipeRepository interface {
	Create(ctx context.Context, rec *CatalogRecipe) error
	FindByID(ctx context.Context, id uuid.UUID) (*CatalogRecipe, error)
	FindFeatured(ctx context.Context, limit int) ([]*CatalogRecipe, error)
	FindNewest(ctx context.Context, limit int) ([]*CatalogRecipe, error)
	FindTopRated(ctx context.Context, limit int) ([]*CatalogRecipe, error)
	FindByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*CatalogRecipe, error)
	Search(ctx context.Context, query string, limit int) ([]*CatalogRecipe, error)
}

// Category is a catalog taxonomy entry.
type Category struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
}

// Tag is a free-form catalog label.
type Tag struct {
	ID   uuid.UUID
	Name string
	Slug string
}

// TaxonomyRepository serves the category and tag listings used by the
// recipe-creation form.
type TaxonomyRepository interface {
	ListCategories(ctx context.Context) ([]*Category, error)
	ListTags(ctx context.Context) ([]*Tag, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
