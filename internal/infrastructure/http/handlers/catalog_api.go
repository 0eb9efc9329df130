package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/http/middleware"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
)

// CatalogAPIHandler serves the recipe catalog: home-page listings,
// search, taxonomy, and recipe creation.
type CatalogAPIHandler struct {
	catalog  inbound.CatalogService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewCatalogAPIHandler(catalog inbound.CatalogService, logger *zap.Logger) *CatalogAPIHandler {
	return &CatalogAPIHandler{
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger.Named("catalog-api"),
	}
}

// CreateRecipe handles POST /api/v1/recipes.
func (h *CatalogAPIHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var cmd inbound.CreateRecipeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cmd.AuthorID = userID

	if err := h.validate.Struct(cmd); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	dto, err := h.catalog.CreateRecipe(r.Context(), cmd)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: dto})
}

// GetRecipe handles GET /api/v1/recipes/{id}.
func (h *CatalogAPIHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid recipe ID")
		return
	}

	dto, err := h.catalog.GetRecipe(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dto})
}

// ListFeatured handles GET /api/v1/recipes/featured.
func (h *CatalogAPIHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	h.writeListing(w, r, h.catalog.ListFeatured)
}

// ListNewest handles GET /api/v1/recipes/newest.
func (h *CatalogAPIHandler) ListNewest(w http.ResponseWriter, r *http.Request) {
	h.writeListing(w, r, h.catalog.ListNewest)
}

// ListTopRated handles GET /api/v1/recipes/top-rated.
func (h *CatalogAPIHandler) ListTopRated(w http.ResponseWriter, r *http.Request) {
	h.writeListing(w, r, h.catalog.ListTopRated)
}

// ListMine handles GET /api/v1/recipes/mine.
func (h *CatalogAPIHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	recipes, err := h.catalog.ListByAuthor(r.Context(), userID, queryLimit(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recipes})
}

// Search handles GET /api/v1/recipes/search?q=adobo.
func (h *CatalogAPIHandler) Search(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"), queryLimit(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recipes})
}

// ListCategories handles GET /api/v1/categories.
func (h *CatalogAPIHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: categories})
}

// ListTags handles GET /api/v1/tags.
func (h *CatalogAPIHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalog.ListTags(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: tags})
}

func (h *CatalogAPIHandler) writeListing(
	w http.ResponseWriter,
	r *http.Request,
	fetch func(ctx context.Context, limit int) ([]*inbound.RecipeDTO, error),
) {
	recipes, err := fetch(r.Context(), queryLimit(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: recipes})
}

// queryLimit parses the optional "limit" query parameter. Zero means
// "use the service default".
func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
