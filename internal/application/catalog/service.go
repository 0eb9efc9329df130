// Package catalog provides the recipe catalog use cases: home-page
// listings, search, taxonomy, and recipe creation (including drafts
// imported from an analysis session).
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
	apperrors "github.com/Shunsena-Jian/kasalo-kusina/pkg/errors"
)

const (
	listingCacheTTL  = 5 * time.Minute
	taxonomyCacheTTL = 30 * time.Minute
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service implements inbound.CatalogService.
type Service struct {
	recipes  outbound.RecipeRepository
	taxonomy outbound.TaxonomyRepository
	users    outbound.UserRepository
	cache    outbound.CacheRepository
	logger   *zap.Logger

	// listingKeys records every listing cache key handed out so a
	// create can invalidate all of them, whatever limits were served.
	mu          sync.Mutex
	listingKeys map[string]struct{}
}

// NewService creates a catalog service.
func NewService(
	recipes outbound.RecipeRepository,
	taxonomy outbound.TaxonomyRepository,
	users outbound.UserRepository,
	cache outbound.CacheRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		recipes:     recipes,
		taxonomy:    taxonomy,
		users:       users,
		cache:       cache,
		logger:      logger.Named("catalog-service"),
		listingKeys: make(map[string]struct{}),
	}
}

var _ inbound.CatalogService = (*Service)(nil)

// CreateRecipe saves a new catalog entry. Imported analysis drafts come
// through here too, carrying the analysis image reference.
func (s *Service) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	authorName := "Guest"
	if author, err := s.users.FindByID(ctx, cmd.AuthorID); err == nil && author != nil {
		authorName = author.Name()
	}

	rec := &outbound.CatalogRecipe{
		ID:              uuid.New(),
		AuthorID:        cmd.AuthorID,
		AuthorName:      authorName,
		Title:           strings.TrimSpace(cmd.Title),
		Description:     strings.TrimSpace(cmd.Description),
		ImageURL:        cmd.ImageURL,
		Ingredients:     cmd.Ingredients,
		Directions:      cmd.Directions,
		PrepTimeMinutes: cmd.PrepTimeMinutes,
		CookTimeMinutes: cmd.CookTimeMinutes,
		Servings:        cmd.Servings,
		Difficulty:      cmd.Difficulty,
		Categories:      cmd.Categories,
		Tags:            cmd.Tags,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.recipes.Create(ctx, rec); err != nil {
		return nil, apperrors.NewDatabase("create recipe", err)
	}

	// New entries shift the listings.
	s.invalidateListings(ctx)

	s.logger.Info("Recipe created",
		zap.String("recipe_id", rec.ID.String()),
		zap.String("title", rec.Title),
		zap.String("author_id", rec.AuthorID.String()),
	)

	return toDTO(rec), nil
}

// GetRecipe returns one catalog entry.
func (s *Service) GetRecipe(ctx context.Context, id uuid.UUID) (*inbound.RecipeDTO, error) {
	rec, err := s.recipes.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.NewRecipeNotFound(id.String()).WithCause(err)
	}
	return toDTO(rec), nil
}

// ListFeatured returns the featured recipes for the home page.
func (s *Service) ListFeatured(ctx context.Context, limit int) ([]*inbound.RecipeDTO, error) {
	return s.cachedListing(ctx, "featured", limit, s.recipes.FindFeatured)
}

// ListNewest returns the most recently created recipes.
func (s *Service) ListNewest(ctx context.Context, limit int) ([]*inbound.RecipeDTO, error) {
	return s.cachedListing(ctx, "newest", limit, s.recipes.FindNewest)
}

// ListTopRated returns the highest-rated recipes.
func (s *Service) ListTopRated(ctx context.Context, limit int) ([]*inbound.RecipeDTO, error) {
	return s.cachedListing(ctx, "top-rated", limit, s.recipes.FindTopRated)
}

// ListByAuthor returns a user's own recipes for the profile page.
func (s *Service) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*inbound.RecipeDTO, error) {
	recs, err := s.recipes.FindByAuthor(ctx, authorID, clampLimit(limit))
	if err != nil {
		return nil, apperrors.NewDatabase("list recipes by author", err)
	}
	return toDTOs(recs), nil
}

// Search runs a text search over titles, descriptions and tags.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*inbound.RecipeDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*inbound.RecipeDTO{}, nil
	}
	recs, err := s.recipes.Search(ctx, query, clampLimit(limit))
	if err != nil {
		return nil, apperrors.NewDatabase("search recipes", err)
	}
	return toDTOs(recs), nil
}

// ListCategories returns the taxonomy categories for the creation form.
func (s *Service) ListCategories(ctx context.Context) ([]*inbound.CategoryDTO, error) {
	var cached []*inbound.CategoryDTO
	if s.fromCache(ctx, "catalog:categories", &cached) {
		return cached, nil
	}

	cats, err := s.taxonomy.ListCategories(ctx)
	if err != nil {
		return nil, apperrors.NewDatabase("list categories", err)
	}

	out := make([]*inbound.CategoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, &inbound.CategoryDTO{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description})
	}
	s.toCache(ctx, "catalog:categories", out, taxonomyCacheTTL)
	return out, nil
}

// ListTags returns the catalog tags.
func (s *Service) ListTags(ctx context.Context) ([]*inbound.TagDTO, error) {
	var cached []*inbound.TagDTO
	if s.fromCache(ctx, "catalog:tags", &cached) {
		return cached, nil
	}

	tags, err := s.taxonomy.ListTags(ctx)
	if err != nil {
		return nil, apperrors.NewDatabase("list tags", err)
	}

	out := make([]*inbound.TagDTO, 0, len(tags))
	for _, tag := range tags {
		out = append(out, &inbound.TagDTO{ID: tag.ID, Name: tag.Name, Slug: tag.Slug})
	}
	s.toCache(ctx, "catalog:tags", out, taxonomyCacheTTL)
	return out, nil
}

// cachedListing serves a home-page listing through the cache.
func (s *Service) cachedListing(
	ctx context.Context,
	name string,
	limit int,
	fetch func(context.Context, int) ([]*outbound.CatalogRecipe, error),
) ([]*inbound.RecipeDTO, error) {
	limit = clampLimit(limit)
	key := fmt.Sprintf("catalog:listing:%s:%d", name, limit)

	s.mu.Lock()
	s.listingKeys[key] = struct{}{}
	s.mu.Unlock()

	var cached []*inbound.RecipeDTO
	if s.fromCache(ctx, key, &cached) {
		return cached, nil
	}

	recs, err := fetch(ctx, limit)
	if err != nil {
		return nil, apperrors.NewDatabase("list "+name+" recipes", err)
	}

	out := toDTOs(recs)
	s.toCache(ctx, key, out, listingCacheTTL)
	return out, nil
}

func (s *Service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		s.logger.Warn("Corrupt cache entry dropped", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *Service) toCache(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) invalidateListings(ctx context.Context) {
	s.mu.Lock()
	keys := make([]string, 0, len(s.listingKeys))
	for key := range s.listingKeys {
		keys = append(keys, key)
	}
	s.listingKeys = make(map[string]struct{})
	s.mu.Unlock()

	for _, key := range keys {
		_ = s.cache.Delete(ctx, key)
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func toDTO(rec *outbound.CatalogRecipe) *inbound.RecipeDTO {
	return &inbound.RecipeDTO{
		ID:              rec.ID,
		AuthorName:      rec.AuthorName,
		Title:           rec.Title,
		Description:     rec.Description,
		ImageURL:        rec.ImageURL,
		Ingredients:     rec.Ingredients,
		Directions:      rec.Directions,
		PrepTimeMinutes: rec.PrepTimeMinutes,
		CookTimeMinutes: rec.CookTimeMinutes,
		Servings:        rec.Servings,
		Difficulty:      rec.Difficulty,
		Categories:      rec.Categories,
		Tags:            rec.Tags,
		AverageRating:   rec.AverageRating,
		CreatedAt:       rec.CreatedAt,
	}
}

func toDTOs(recs []*outbound.CatalogRecipe) []*inbound.RecipeDTO {
	out := make([]*inbound.RecipeDTO, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDTO(rec))
	}
	return out
}
