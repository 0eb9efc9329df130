package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/config"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.GeminiConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gemini-2.5-flash",
		Timeout: 5 * time.Second,
	}, zaptest.NewLogger(t))

	return client, server
}

func candidateResponse(text string) []byte {
	body, _ := json.Marshal(map[string]interface{}{
		"candidates": []map[string]interface{}{
			{"content": map[string]interface{}{
				"parts": []map[string]string{{"text": text}},
			}},
		},
	})
	return body
}

func TestAnalyzeDishParsesRecipe(t *testing.T) {
	var gotPath string
	var gotReq generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(candidateResponse(`{"dishName":"Chicken Adobo","ingredients":["1 kg chicken"],"directions":["Marinate","Simmer"]}`))
	})

	rec, err := client.AnalyzeDish(context.Background(), nil, "chicken adobo")

	require.NoError(t, err)
	assert.Equal(t, "Chicken Adobo", rec.DishName)
	assert.Equal(t, []string{"1 kg chicken"}, rec.Ingredients)
	assert.Equal(t, "/models/gemini-2.5-flash:generateContent", gotPath)
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 1, "no image part for a text-only request")
	assert.Contains(t, gotReq.Contents[0].Parts[0].Text, "chicken adobo")
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMIMEType)
}

func TestAnalyzeDishSendsImageAsInlineData(t *testing.T) {
	var gotReq generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(candidateResponse(`{"dishName":"Sinigang","ingredients":["pork"],"directions":["Boil"]}`))
	})

	image := &outbound.ImagePayload{Data: []byte{0xff, 0xd8, 0xff}, MIMEType: "image/jpeg"}
	_, err := client.AnalyzeDish(context.Background(), image, "")

	require.NoError(t, err)
	require.Len(t, gotReq.Contents[0].Parts, 2)
	require.NotNil(t, gotReq.Contents[0].Parts[0].InlineData)
	assert.Equal(t, "image/jpeg", gotReq.Contents[0].Parts[0].InlineData.MIMEType)
	assert.Contains(t, gotReq.Contents[0].Parts[1].Text, "No description provided.")
}

func TestAnalyzeDishSentinelPassesValidation(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse(`{"dishName":"Unknown Dish","ingredients":[],"directions":[]}`))
	})

	rec, err := client.AnalyzeDish(context.Background(), nil, "mystery stew")

	require.NoError(t, err, "the sentinel is a successful response, not an error")
	assert.False(t, rec.Identified())
}

func TestProviderErrorCarriesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Quota exceeded for requests per minute"}}`))
	})

	_, err := client.AnalyzeDish(context.Background(), nil, "adobo")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "Quota exceeded")
}

func TestContinueConversationFlattensHistory(t *testing.T) {
	var gotReq generateRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write(candidateResponse(`{"responseText":"Added chili!","recipeUpdated":true,"updatedRecipe":{"dishName":"Spicy Adobo","ingredients":["chicken","chili"],"directions":["Simmer"]}}`))
	})

	current := &recipe.Recipe{DishName: "Chicken Adobo", Ingredients: []string{"chicken"}, Directions: []string{"Simmer"}}
	history := chat.Transcript{
		{Sender: chat.SenderAI, Text: "I've found a recipe for Chicken Adobo!"},
		{Sender: chat.SenderUser, Text: "Looks good"},
	}

	result, err := client.ContinueConversation(context.Background(), current, history, "Make it spicier")

	require.NoError(t, err)
	assert.True(t, result.RecipeUpdated)
	require.NotNil(t, result.UpdatedRecipe)
	assert.Equal(t, "Spicy Adobo", result.UpdatedRecipe.DishName)

	prompt := gotReq.Contents[0].Parts[0].Text
	assert.Contains(t, prompt, "AI: I've found a recipe for Chicken Adobo!")
	assert.Contains(t, prompt, "User: Looks good")
	assert.Contains(t, prompt, `"Make it spicier"`)
}

func TestContinueConversationWithoutUpdate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write(candidateResponse(`{"responseText":"Vinegar balances the soy sauce.","recipeUpdated":false}`))
	})

	current := &recipe.Recipe{DishName: "Chicken Adobo", Ingredients: []string{"chicken"}, Directions: []string{"Simmer"}}
	result, err := client.ContinueConversation(context.Background(), current, nil, "Why vinegar?")

	require.NoError(t, err)
	assert.False(t, result.RecipeUpdated)
	assert.Nil(t, result.UpdatedRecipe)
}
