package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/application/kitchen"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/http/middleware"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// KitchenAPIHandler serves the dish-analysis and chat endpoints. Every
// route requires an authenticated session because the rate limiter and
// conversation state are keyed by the token's session ID.
type KitchenAPIHandler struct {
	kitchen       inbound.KitchenService
	catalog       inbound.CatalogService
	maxImageBytes int64
	logger        *zap.Logger
}

func NewKitchenAPIHandler(svc inbound.KitchenService, catalog inbound.CatalogService, maxImageBytes int64, logger *zap.Logger) *KitchenAPIHandler {
	return &KitchenAPIHandler{
		kitchen:       svc,
		catalog:       catalog,
		maxImageBytes: maxImageBytes,
		logger:        logger.Named("kitchen-api"),
	}
}

type analyzeJSONRequest struct {
	Description   string `json:"description"`
	ImageBase64   string `json:"image_base64,omitempty"`
	ImageMIMEType string `json:"image_mime_type,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

// Analyze handles POST /api/v1/kitchen/analyze. It accepts either a
// multipart form with an "image" file and "description" field, or a
// JSON body with a base64-encoded image.
func (h *KitchenAPIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Session required")
		return
	}

	image, description, err := h.readAnalyzeInput(r)
	if err != nil {
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := h.kitchen.Analyze(r.Context(), sessionID, image, description)
	if err != nil {
		h.writeKitchenError(w, snapshot, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snapshot})
}

// Chat handles POST /api/v1/kitchen/chat.
func (h *KitchenAPIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	snapshot, err := h.kitchen.SendMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		h.writeKitchenError(w, snapshot, err)
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snapshot})
}

// Session handles GET /api/v1/kitchen/session.
func (h *KitchenAPIHandler) Session(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Session required")
		return
	}

	snapshot := h.kitchen.Snapshot(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snapshot})
}

// Reset handles POST /api/v1/kitchen/reset.
func (h *KitchenAPIHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Session required")
		return
	}

	snapshot := h.kitchen.Reset(r.Context(), sessionID)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: snapshot})
}

// ImportRecipe handles POST /api/v1/kitchen/import. It saves the
// session's current recipe into the catalog under the caller's account.
func (h *KitchenAPIHandler) ImportRecipe(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := middleware.GetSessionIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Session required")
		return
	}
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeErrorJSON(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	snapshot := h.kitchen.Snapshot(r.Context(), sessionID)
	if snapshot.Recipe == nil || !snapshot.Recipe.Identified() {
		writeErrorJSON(w, http.StatusConflict, "No recipe to import in this session")
		return
	}

	rec := snapshot.Recipe
	dto, err := h.catalog.CreateRecipe(r.Context(), inbound.CreateRecipeCommand{
		AuthorID:        userID,
		Title:           rec.DishName,
		ImageURL:        rec.ImageURL,
		Ingredients:     rec.Ingredients,
		Directions:      rec.Directions,
		PrepTimeMinutes: rec.PrepTimeMinutes,
		CookTimeMinutes: rec.CookTimeMinutes,
		Servings:        rec.Servings,
		Difficulty:      rec.Difficulty,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: dto})
}

// readAnalyzeInput extracts the image and description from either a
// multipart upload or a JSON body.
func (h *KitchenAPIHandler) readAnalyzeInput(r *http.Request) (*outbound.ImagePayload, string, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(h.maxImageBytes + 1024); err != nil {
			return nil, "", errors.New("Invalid multipart form")
		}
		description := r.FormValue("description")

		file, header, err := r.FormFile("image")
		if err == http.ErrMissingFile {
			return nil, description, nil
		}
		if err != nil {
			return nil, "", errors.New("Invalid image upload")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, h.maxImageBytes+1))
		if err != nil {
			return nil, "", errors.New("Failed to read image upload")
		}
		if int64(len(data)) > h.maxImageBytes {
			return nil, "", errors.New("Image exceeds the maximum allowed size")
		}

		mimeType := header.Header.Get("Content-Type")
		return &outbound.ImagePayload{Data: data, MIMEType: mimeType}, description, nil
	}

	var req analyzeJSONRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "", errors.New("Invalid request body")
	}
	if req.ImageBase64 == "" {
		return nil, req.Description, nil
	}

	data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		return nil, "", errors.New("Invalid base64 image data")
	}
	if int64(len(data)) > h.maxImageBytes {
		return nil, "", errors.New("Image exceeds the maximum allowed size")
	}

	return &outbound.ImagePayload{Data: data, MIMEType: req.ImageMIMEType}, req.Description, nil
}

// writeKitchenError maps the kitchen service's sentinel errors to
// client-facing statuses. Snapshots accompany in-flight rejections so
// the client can re-render current state.
func (h *KitchenAPIHandler) writeKitchenError(w http.ResponseWriter, snapshot *inbound.KitchenSnapshot, err error) {
	switch {
	case errors.Is(err, kitchen.ErrEmptyAnalysisRequest):
		writeErrorJSON(w, http.StatusBadRequest, "Provide a photo or a description of the dish")
	case errors.Is(err, kitchen.ErrEmptyMessage):
		writeErrorJSON(w, http.StatusBadRequest, "Message cannot be empty")
	case errors.Is(err, kitchen.ErrNoActiveRecipe):
		writeErrorJSON(w, http.StatusConflict, "Analyze a dish before starting a conversation")
	case errors.Is(err, kitchen.ErrRequestInFlight):
		writeJSON(w, http.StatusConflict, APIResponse{
			Success: false,
			Error:   "A request is already in progress for this session",
			Data:    snapshot,
		})
	default:
		h.logger.Error("Kitchen request failed", zap.Error(err))
		writeErrorJSON(w, http.StatusInternalServerError, "Internal server error")
	}
}
