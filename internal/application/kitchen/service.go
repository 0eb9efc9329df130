// Package kitchen implements the conversational recipe-discovery core:
// dish analysis, chat refinement, and the per-session state and rate
// limiting both operate on.
package kitchen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/monitoring"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// Input validation errors. These are caller mistakes, not provider
// failures: they surface before any request is dispatched.
var (
	ErrEmptyAnalysisRequest = errors.New("analysis requires an image or a description")
	ErrNoActiveRecipe       = errors.New("no recipe to chat about")
	ErrEmptyMessage         = errors.New("chat message is empty")
	ErrRequestInFlight      = errors.New("another request is already in flight")
)

// User-facing message strings. The chat messages and notices the
// frontend renders verbatim.
const (
	welcomeMessageFmt = "I've found a recipe for %s! Feel free to ask me any questions or suggest changes."

	unidentifiedNotice = "I couldn't identify this dish. Please try another photo or a more specific description of a Filipino dish."
	billingNotice      = "Image analysis failed. This feature may require a Gemini API key with billing enabled. You can continue using text descriptions."
	analysisErrNotice  = "An error occurred while analyzing your request. Please try again."
	quotaNotice        = "The AI service's free-tier rate limit was reached. Requests will be rate limited for the rest of this session. Please try again in a moment."

	chatErrorMessage = "Sorry, I encountered an error. Please try that again."
	chatQuotaMessage = "Sorry, the AI service's free-tier rate limit was reached. Requests will be rate limited for the rest of this session. Please wait a moment and try that again."
)

// Service implements inbound.KitchenService on top of a session store
// and the DishAnalyzer provider boundary.
type Service struct {
	sessions *SessionStore
	analyzer outbound.DishAnalyzer
	metrics  *monitoring.KitchenMetrics
	logger   *zap.Logger
}

// NewService creates the kitchen service.
func NewService(
	sessions *SessionStore,
	analyzer outbound.DishAnalyzer,
	metrics *monitoring.KitchenMetrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		analyzer: analyzer,
		metrics:  metrics,
		logger:   logger.Named("kitchen"),
	}
}

var _ inbound.KitchenService = (*Service)(nil)

// Analyze identifies a dish and starts a fresh conversation. It makes
// exactly one provider call; the welcome message on success is
// fabricated locally, never fetched.
func (s *Service) Analyze(ctx context.Context, sessionID string, image *outbound.ImagePayload, description string) (*inbound.KitchenSnapshot, error) {
	description = strings.TrimSpace(description)
	if image == nil && description == "" {
		return nil, ErrEmptyAnalysisRequest
	}

	sess := s.sessions.Get(sessionID)

	sess.mu.Lock()
	if sess.analyzing || sess.awaitingReply {
		snap := sess.snapshot()
		sess.mu.Unlock()
		return snap, ErrRequestInFlight
	}

	// Once image input is disabled for the session the image is
	// silently dropped, steering the request down the text path.
	if sess.imageInputDisabled && image != nil {
		image = nil
		if description == "" {
			snap := sess.snapshot()
			sess.mu.Unlock()
			return snap, ErrEmptyAnalysisRequest
		}
	}

	// A rejected request is never dispatched; the current recipe and
	// conversation stay exactly as they were.
	if !sess.limiter.CheckAndRecord() {
		_, cooldown := sess.limiter.Gate()
		sess.notice = cooldown
		s.metrics.RateLimited.Inc()
		snap := sess.snapshot()
		sess.mu.Unlock()
		return snap, nil
	}

	// A fresh analysis always starts a new conversation.
	sess.recipe = nil
	sess.transcript = nil
	sess.notice = ""

	sess.analyzing = true
	sess.mu.Unlock()

	rec, err := s.analyzer.AnalyzeDish(ctx, image, description)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.analyzing = false

	if err != nil {
		s.logger.Warn("Dish analysis failed",
			zap.String("session_id", sessionID),
			zap.Bool("had_image", image != nil),
			zap.Error(err),
		)
		switch kind := classifyProviderError(err); {
		case kind == FailureQuota:
			s.constrainLimiter(sess)
			sess.notice = quotaNotice
			s.metrics.AnalysisRequests.WithLabelValues(monitoring.OutcomeQuota).Inc()
		case kind == FailureBilling && image != nil:
			sess.imageInputDisabled = true
			sess.notice = billingNotice
			s.metrics.AnalysisRequests.WithLabelValues(monitoring.OutcomeBilling).Inc()
		default:
			sess.notice = analysisErrNotice
			s.metrics.AnalysisRequests.WithLabelValues(monitoring.OutcomeError).Inc()
		}
		return sess.snapshot(), nil
	}

	if rec == nil || !rec.Identified() {
		sess.notice = unidentifiedNotice
		s.metrics.AnalysisRequests.WithLabelValues(monitoring.OutcomeUnidentified).Inc()
		return sess.snapshot(), nil
	}

	rec = rec.Clone()
	if image != nil && rec.ImageURL == "" {
		rec.ImageURL = imageDataURL(image)
	}
	sess.recipe = rec
	sess.transcript = sess.transcript.Append(chat.SenderAI, fmt.Sprintf(welcomeMessageFmt, rec.DishName))

	s.logger.Info("Dish identified",
		zap.String("session_id", sessionID),
		zap.String("dish", rec.DishName),
	)
	s.metrics.AnalysisRequests.WithLabelValues(monitoring.OutcomeIdentified).Inc()

	return sess.snapshot(), nil
}

// SendMessage runs one refinement turn. The user message is appended
// before the provider call, so it precedes the reply even on failure.
func (s *Service) SendMessage(ctx context.Context, sessionID string, text string) (*inbound.KitchenSnapshot, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	sess := s.sessions.Get(sessionID)

	sess.mu.Lock()
	if sess.recipe == nil {
		snap := sess.snapshot()
		sess.mu.Unlock()
		return snap, ErrNoActiveRecipe
	}
	if sess.analyzing || sess.awaitingReply {
		snap := sess.snapshot()
		sess.mu.Unlock()
		return snap, ErrRequestInFlight
	}

	sess.notice = ""

	// Rejected turns are never dispatched and leave the transcript
	// untouched; the cooldown notice is the only trace.
	if !sess.limiter.CheckAndRecord() {
		_, cooldown := sess.limiter.Gate()
		sess.notice = cooldown
		s.metrics.RateLimited.Inc()
		snap := sess.snapshot()
		sess.mu.Unlock()
		return snap, nil
	}

	// The provider gets the history as it stood before this message;
	// the new message rides in its own field.
	current := sess.recipe.Clone()
	history := sess.transcript.Clone()
	sess.transcript = sess.transcript.Append(chat.SenderUser, text)
	sess.awaitingReply = true
	sess.mu.Unlock()

	result, err := s.analyzer.ContinueConversation(ctx, current, history, text)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.awaitingReply = false

	if err != nil {
		s.logger.Warn("Chat turn failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		fallback := chatErrorMessage
		if classifyProviderError(err) == FailureQuota {
			s.constrainLimiter(sess)
			fallback = chatQuotaMessage
			s.metrics.ChatRequests.WithLabelValues(monitoring.OutcomeQuota).Inc()
		} else {
			s.metrics.ChatRequests.WithLabelValues(monitoring.OutcomeError).Inc()
		}
		sess.transcript = sess.transcript.Append(chat.SenderAI, fallback)
		sess.notice = fallback
		return sess.snapshot(), nil
	}

	sess.transcript = sess.transcript.Append(chat.SenderAI, result.ResponseText)

	if result.RecipeUpdated && result.UpdatedRecipe != nil {
		updated := result.UpdatedRecipe.Clone()
		// Chat-driven edits never regenerate images; the replacement
		// keeps the reference of the recipe it replaces.
		updated.ImageURL = sess.recipe.ImageURL
		sess.recipe = updated
		s.metrics.ChatRequests.WithLabelValues(monitoring.OutcomeUpdated).Inc()
	} else {
		s.metrics.ChatRequests.WithLabelValues(monitoring.OutcomeReply).Inc()
	}

	return sess.snapshot(), nil
}

// Snapshot returns the session state without mutating it.
func (s *Service) Snapshot(ctx context.Context, sessionID string) *inbound.KitchenSnapshot {
	sess := s.sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot()
}

// Reset clears the conversation. The rate limiter mode and the
// image-input flag are per-session penalties and survive.
func (s *Service) Reset(ctx context.Context, sessionID string) *inbound.KitchenSnapshot {
	sess := s.sessions.Get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.recipe = nil
	sess.transcript = nil
	sess.notice = ""
	sess.analyzing = false
	sess.awaitingReply = false

	return sess.snapshot()
}

// constrainLimiter flips the session limiter into constrained mode,
// counting the activation only on the first flip.
func (s *Service) constrainLimiter(sess *Session) {
	if sess.limiter.Mode() != ModeConstrained {
		s.metrics.LimiterActivated.Inc()
	}
	sess.limiter.ActivateConstrainedMode()
}

// imageDataURL renders the uploaded image as a data URL so the recipe
// keeps a reference to the exact image the user analyzed.
func imageDataURL(p *outbound.ImagePayload) string {
	mime := p.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}
