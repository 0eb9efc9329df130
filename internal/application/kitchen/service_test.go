package kitchen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/monitoring"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// MockDishAnalyzer is a mock implementation of the AI provider boundary
type MockDishAnalyzer struct {
	mock.Mock
}

func (m *MockDishAnalyzer) AnalyzeDish(ctx context.Context, image *outbound.ImagePayload, description string) (*recipe.Recipe, error) {
	args := m.Called(ctx, image, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*recipe.Recipe), args.Error(1)
}

func (m *MockDishAnalyzer) ContinueConversation(ctx context.Context, current *recipe.Recipe, history chat.Transcript, newMessage string) (*outbound.TurnResult, error) {
	args := m.Called(ctx, current, history, newMessage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.TurnResult), args.Error(1)
}

// Test utilities

func newTestService(t *testing.T, clock func() time.Time) (*Service, *MockDishAnalyzer, *SessionStore) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	analyzer := &MockDishAnalyzer{}
	metrics := monitoring.NewKitchenMetrics(prometheus.NewRegistry())
	store := NewSessionStore(time.Hour, func() *RateLimiter {
		return NewRateLimiter(DefaultWindowMax, DefaultWindowSize, clock)
	}, logger)

	return NewService(store, analyzer, metrics, logger), analyzer, store
}

func adoboRecipe() *recipe.Recipe {
	return &recipe.Recipe{
		DishName:    "Chicken Adobo",
		Ingredients: []string{"1 kg chicken"},
		Directions:  []string{"Marinate", "Simmer"},
	}
}

func TestAnalyzeEmptyInputIsNoOp(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "   ")

	assert.ErrorIs(t, err, ErrEmptyAnalysisRequest)
	assert.Nil(t, snap)
	analyzer.AssertNotCalled(t, "AnalyzeDish")
}

func TestAnalyzeIdentifiesDishAndSeedsWelcome(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, (*outbound.ImagePayload)(nil), "chicken adobo").
		Return(adoboRecipe(), nil).Once()

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")

	require.NoError(t, err)
	require.NotNil(t, snap.Recipe)
	assert.Equal(t, "Chicken Adobo", snap.Recipe.DishName)
	require.Len(t, snap.Transcript, 1, "exactly one synthetic welcome message")
	assert.Equal(t, chat.SenderAI, snap.Transcript[0].Sender)
	assert.Equal(t, "I've found a recipe for Chicken Adobo! Feel free to ask me any questions or suggest changes.", snap.Transcript[0].Text)
	assert.False(t, snap.Analyzing)
	assert.Empty(t, snap.Notice)
	analyzer.AssertExpectations(t)
}

func TestAnalyzeUnknownDishIsSoftFailure(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(&recipe.Recipe{DishName: "unknown dish"}, nil).Once()

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "mystery stew")

	require.NoError(t, err)
	assert.Nil(t, snap.Recipe, "sentinel response must not set a recipe")
	assert.Empty(t, snap.Transcript)
	assert.Equal(t, unidentifiedNotice, snap.Notice)
}

func TestAnalyzeClearsPreviousConversation(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, "chicken adobo").
		Return(adoboRecipe(), nil).Once()
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, "sinigang").
		Return(&recipe.Recipe{DishName: "Sinigang", Ingredients: []string{"pork"}, Directions: []string{"Boil"}}, nil).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "sinigang")
	require.NoError(t, err)

	assert.Equal(t, "Sinigang", snap.Recipe.DishName)
	require.Len(t, snap.Transcript, 1, "a fresh analysis starts a new conversation")
	assert.Contains(t, snap.Transcript[0].Text, "Sinigang")
}

func TestAnalyzeBillingErrorWithImageDisablesImageInput(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	image := &outbound.ImagePayload{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}
	analyzer.On("AnalyzeDish", mock.Anything, image, "").
		Return(nil, errors.New("403 permission denied")).Once()

	snap, err := svc.Analyze(context.Background(), "sess-1", image, "")

	require.NoError(t, err)
	assert.Nil(t, snap.Recipe)
	assert.True(t, snap.ImageInputDisabled)
	assert.Contains(t, snap.Notice, "billing")

	// A later image-only request has nothing left to send once the
	// image is dropped.
	_, err = svc.Analyze(context.Background(), "sess-1", image, "")
	assert.ErrorIs(t, err, ErrEmptyAnalysisRequest)
	analyzer.AssertNumberOfCalls(t, "AnalyzeDish", 1)
}

func TestAnalyzeBillingErrorWithoutImageIsGeneric(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, (*outbound.ImagePayload)(nil), "adobo").
		Return(nil, errors.New("billing account missing")).Once()

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "adobo")

	require.NoError(t, err)
	assert.False(t, snap.ImageInputDisabled)
	assert.Equal(t, analysisErrNotice, snap.Notice)
}

func TestAnalyzeQuotaErrorConstrainsLimiter(t *testing.T) {
	svc, analyzer, store := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("429 RESOURCE_EXHAUSTED: quota exceeded")).Once()

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "adobo")

	require.NoError(t, err)
	assert.Equal(t, quotaNotice, snap.Notice)
	assert.Contains(t, snap.Notice, "free-tier rate limit")
	assert.Equal(t, ModeConstrained, store.Get("sess-1").limiter.Mode())
}

func TestAnalyzeRateLimitedReturnsCooldownWithoutDispatch(t *testing.T) {
	clock := newFakeClock()
	svc, analyzer, store := newTestService(t, clock.Now)

	sess := store.Get("sess-1")
	sess.limiter.ActivateConstrainedMode()
	for i := 0; i < DefaultWindowMax; i++ {
		require.True(t, sess.limiter.CheckAndRecord())
	}

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "adobo")

	require.NoError(t, err)
	assert.True(t, snap.RateLimited)
	assert.Contains(t, snap.CooldownMessage, "Rate limit reached. Please wait ")
	assert.Equal(t, snap.CooldownMessage, snap.Notice)
	analyzer.AssertNotCalled(t, "AnalyzeDish")
}

func TestAnalyzeRateLimitedKeepsPreviousConversation(t *testing.T) {
	clock := newFakeClock()
	svc, analyzer, store := newTestService(t, clock.Now)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()

	first, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)
	require.NotNil(t, first.Recipe)

	sess := store.Get("sess-1")
	sess.limiter.ActivateConstrainedMode()
	for i := 0; i < DefaultWindowMax; i++ {
		require.True(t, sess.limiter.CheckAndRecord())
	}

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "sinigang")

	require.NoError(t, err)
	assert.True(t, snap.RateLimited)
	require.NotNil(t, snap.Recipe, "a gated analyze keeps the current recipe")
	assert.Equal(t, "Chicken Adobo", snap.Recipe.DishName)
	assert.Len(t, snap.Transcript, 1, "a gated analyze keeps the transcript")
	analyzer.AssertNumberOfCalls(t, "AnalyzeDish", 1)
}

func TestSendMessageWithoutRecipeIsNoOp(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)

	_, err := svc.SendMessage(context.Background(), "sess-1", "make it spicier")

	assert.ErrorIs(t, err, ErrNoActiveRecipe)
	analyzer.AssertNotCalled(t, "ContinueConversation")
}

func TestSendMessageBlankTextIsNoOp(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)

	_, err := svc.SendMessage(context.Background(), "sess-1", "  \n ")

	assert.ErrorIs(t, err, ErrEmptyMessage)
	analyzer.AssertNotCalled(t, "ContinueConversation")
}

func TestSendMessageReplyWithoutRecipeUpdate(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()
	analyzer.On("ContinueConversation", mock.Anything, mock.Anything, mock.Anything, "Why vinegar?").
		Return(&outbound.TurnResult{ResponseText: "It balances the soy sauce."}, nil).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	snap, err := svc.SendMessage(context.Background(), "sess-1", "Why vinegar?")

	require.NoError(t, err)
	require.Len(t, snap.Transcript, 3)
	assert.Equal(t, chat.SenderUser, snap.Transcript[1].Sender)
	assert.Equal(t, "Why vinegar?", snap.Transcript[1].Text)
	assert.Equal(t, chat.SenderAI, snap.Transcript[2].Sender)
	assert.Equal(t, "It balances the soy sauce.", snap.Transcript[2].Text)
	assert.Equal(t, "Chicken Adobo", snap.Recipe.DishName, "recipe unchanged without an update")
}

func TestSendMessageRecipeUpdatePreservesImageReference(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	image := &outbound.ImagePayload{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}
	analyzer.On("AnalyzeDish", mock.Anything, image, mock.Anything).
		Return(adoboRecipe(), nil).Once()
	analyzer.On("ContinueConversation", mock.Anything, mock.Anything, mock.Anything, "Make it spicier").
		Return(&outbound.TurnResult{
			ResponseText:  "Added chili!",
			RecipeUpdated: true,
			UpdatedRecipe: &recipe.Recipe{
				DishName:    "Spicy Chicken Adobo",
				Ingredients: []string{"1 kg chicken", "5 red chilies"},
				Directions:  []string{"Marinate", "Simmer with chilies"},
			},
		}, nil).Once()

	first, err := svc.Analyze(context.Background(), "sess-1", image, "chicken adobo")
	require.NoError(t, err)
	require.NotEmpty(t, first.Recipe.ImageURL)

	snap, err := svc.SendMessage(context.Background(), "sess-1", "Make it spicier")

	require.NoError(t, err)
	require.Len(t, snap.Transcript, 3, "welcome, user message, reply")
	assert.Contains(t, snap.Recipe.Ingredients, "5 red chilies")
	assert.Equal(t, first.Recipe.ImageURL, snap.Recipe.ImageURL, "replacement keeps the image of the recipe it replaces")
}

func TestSendMessageFailureAppendsUserThenApology(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()
	analyzer.On("ContinueConversation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("upstream timeout")).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	snap, err := svc.SendMessage(context.Background(), "sess-1", "Make it spicier")

	require.NoError(t, err)
	require.Len(t, snap.Transcript, 3)
	assert.Equal(t, chat.SenderUser, snap.Transcript[1].Sender, "user message precedes the reply even on failure")
	assert.Equal(t, chatErrorMessage, snap.Transcript[2].Text)
	assert.Equal(t, "Chicken Adobo", snap.Recipe.DishName, "failed turn leaves the recipe alone")
}

func TestSendMessageHistoryExcludesTheNewMessage(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()
	analyzer.On("ContinueConversation", mock.Anything, mock.Anything,
		mock.MatchedBy(func(history chat.Transcript) bool {
			// Only the welcome message; the new text rides separately.
			return len(history) == 1 && history[0].Sender == chat.SenderAI
		}), "Make it spicier").
		Return(&outbound.TurnResult{ResponseText: "Sure."}, nil).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), "sess-1", "Make it spicier")
	require.NoError(t, err)
	analyzer.AssertExpectations(t)
}

func TestSendMessageQuotaFailureConstrainsLimiter(t *testing.T) {
	svc, analyzer, store := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()
	analyzer.On("ContinueConversation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("429 too many requests")).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	snap, err := svc.SendMessage(context.Background(), "sess-1", "Make it spicier")

	require.NoError(t, err)
	assert.Equal(t, ModeConstrained, store.Get("sess-1").limiter.Mode())

	fallback := snap.Transcript[len(snap.Transcript)-1]
	assert.Equal(t, chat.SenderAI, fallback.Sender)
	assert.Equal(t, chatQuotaMessage, fallback.Text)
	assert.Contains(t, fallback.Text, "rate limit", "quota fallback names the rate limit")
	assert.NotEqual(t, chatErrorMessage, fallback.Text)
}

func TestSendMessageGenericFailureGetsGenericFallback(t *testing.T) {
	svc, analyzer, store := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()
	analyzer.On("ContinueConversation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("500 internal error")).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	snap, err := svc.SendMessage(context.Background(), "sess-1", "Make it spicier")

	require.NoError(t, err)
	assert.Equal(t, ModeStandard, store.Get("sess-1").limiter.Mode())
	assert.Equal(t, chatErrorMessage, snap.Transcript[len(snap.Transcript)-1].Text)
}

func TestResetKeepsSessionPenalties(t *testing.T) {
	svc, analyzer, store := newTestService(t, nil)
	image := &outbound.ImagePayload{Data: []byte{0xff, 0xd8}, MIMEType: "image/jpeg"}
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("permission denied: billing required")).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", image, "adobo")
	require.NoError(t, err)
	store.Get("sess-1").limiter.ActivateConstrainedMode()

	snap := svc.Reset(context.Background(), "sess-1")

	assert.Nil(t, snap.Recipe)
	assert.Empty(t, snap.Transcript)
	assert.Empty(t, snap.Notice)
	assert.True(t, snap.ImageInputDisabled, "image-input penalty survives a reset")
	assert.Equal(t, ModeConstrained, store.Get("sess-1").limiter.Mode(), "limiter mode survives a reset")
}

func TestSessionsAreIsolated(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()

	_, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	other := svc.Snapshot(context.Background(), "sess-2")
	assert.Nil(t, other.Recipe)
	assert.Empty(t, other.Transcript)
}

func TestSnapshotDoesNotAliasSessionState(t *testing.T) {
	svc, analyzer, _ := newTestService(t, nil)
	analyzer.On("AnalyzeDish", mock.Anything, mock.Anything, mock.Anything).
		Return(adoboRecipe(), nil).Once()

	snap, err := svc.Analyze(context.Background(), "sess-1", nil, "chicken adobo")
	require.NoError(t, err)

	snap.Recipe.DishName = "tampered"
	snap.Transcript[0].Text = strings.Repeat("x", 3)

	fresh := svc.Snapshot(context.Background(), "sess-1")
	assert.Equal(t, "Chicken Adobo", fresh.Recipe.DishName)
	assert.Contains(t, fresh.Transcript[0].Text, "Chicken Adobo")
}
