package outbound

import (
	"context"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
)

// ImagePayload is the binary image attached to an analysis request.
type ImagePayload struct {
	Data     []byte
	MIMEType string
}

// TurnResult is the outcome of one conversation turn. UpdatedRecipe is
// non-nil if and only if RecipeUpdated is true; when present it is a
// complete replacement for the current recipe (the provider does not
// send diffs).
type TurnResult struct {
	ResponseText  string
	RecipeUpdated bool
	UpdatedRecipe *recipe.Recipe
}

// DishAnalyzer is the boundary to the generative-AI provider.
//
// Failures are signaled as ordinary errors; there is no structured
// error-code contract with the provider, so the error message text must
// carry whatever the provider said (status codes, "quota", "billing",
// ...) for the application layer to classify.
type DishAnalyzer interface {
	// AnalyzeDish identifies a Filipino dish from an optional image
	// and/or free-text description and returns a full recipe. An
	// unidentifiable dish is reported as a recipe whose DishName is
	// the "Unknown Dish" sentinel with empty lists, not as an error.
	AnalyzeDish(ctx context.Context, image *ImagePayload, description string) (*recipe.Recipe, error)

	// ContinueConversation runs one refinement turn against the
	// current recipe, given the full transcript and the new message.
	ContinueConversation(ctx context.Context, current *recipe.Recipe, history chat.Transcript, newMessage string) (*TurnResult, error)
}
