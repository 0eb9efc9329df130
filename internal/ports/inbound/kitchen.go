// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the use cases the HTTP layer invokes.
package inbound

import (
	"context"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// KitchenSnapshot is the serializable view of one kitchen session's
// state. Handlers render it directly; it never aliases live session
// memory.
type KitchenSnapshot struct {
	Recipe             *recipe.Recipe  `json:"recipe,omitempty"`
	Transcript         chat.Transcript `json:"transcript"`
	Analyzing          bool            `json:"analyzing"`
	AwaitingReply      bool            `json:"awaitingReply"`
	ImageInputDisabled bool            `json:"imageInputDisabled"`
	Notice             string          `json:"notice,omitempty"`
	RateLimited        bool            `json:"rateLimited"`
	CooldownMessage    string          `json:"cooldownMessage,omitempty"`
}

// KitchenService is the conversational recipe-discovery core: dish
// analysis, chat refinement, and the session state both operate on.
type KitchenService interface {
	// Analyze identifies a dish from an image and/or description and
	// starts a fresh conversation. Both inputs empty is a no-op error
	// before any request is dispatched.
	Analyze(ctx context.Context, sessionID string, image *outbound.ImagePayload, description string) (*KitchenSnapshot, error)

	// SendMessage runs one chat turn against the session's current
	// recipe. No recipe set or blank text is a no-op.
	SendMessage(ctx context.Context, sessionID string, text string) (*KitchenSnapshot, error)

	// Snapshot returns the current session state without mutating it.
	Snapshot(ctx context.Context, sessionID string) *KitchenSnapshot

	// Reset clears the session's recipe, transcript and notices. The
	// rate limiter and the image-input flag survive a reset: both are
	// per-session penalties, not per-conversation state.
	Reset(ctx context.Context, sessionID string) *KitchenSnapshot
}
