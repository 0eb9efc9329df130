// Package gemini provides the Gemini REST API adapter for dish
// analysis and recipe conversation.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/config"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// Client implements outbound.DishAnalyzer against the Gemini
// generateContent endpoint.
//
// Provider failures are returned as plain errors whose message embeds
// the HTTP status and response body verbatim. The application layer
// classifies failures by that text, so nothing here may swallow or
// rephrase what the provider said.
type Client struct {
	baseURL   string
	apiKey    string
	model     string
	maxTokens int
	client    *http.Client
	logger    *zap.Logger
}

// NewClient creates a Gemini client from configuration.
func NewClient(cfg config.GeminiConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	logger.Info("Gemini client initialized",
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
		zap.Duration("timeout", timeout))

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: timeout},
		logger:    logger.Named("gemini-client"),
	}
}

var _ outbound.DishAnalyzer = (*Client)(nil)

// Gemini API structures

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
	MaxOutputTokens  int             `json:"maxOutputTokens,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Response schemas passed to the provider so it answers in strict JSON.
var recipeSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "dishName": {"type": "STRING", "description": "The name of the Filipino dish."},
    "ingredients": {
      "type": "ARRAY",
      "items": {"type": "STRING", "description": "An ingredient for the recipe, including quantity."},
      "description": "A list of all ingredients required for the dish."
    },
    "directions": {
      "type": "ARRAY",
      "items": {"type": "STRING", "description": "A single step in the cooking instructions."},
      "description": "The step-by-step cooking directions."
    }
  },
  "required": ["dishName", "ingredients", "directions"]
}`)

var chatResponseSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "responseText": {"type": "STRING", "description": "A conversational, helpful response to the user's message."},
    "recipeUpdated": {"type": "BOOLEAN", "description": "Set to true only if the user's request resulted in a change to the recipe's ingredients or directions."},
    "updatedRecipe": {
      "type": "OBJECT",
      "description": "The complete, updated recipe object. Provide this field ONLY if recipeUpdated is true.",
      "properties": {
        "dishName": {"type": "STRING"},
        "ingredients": {"type": "ARRAY", "items": {"type": "STRING"}},
        "directions": {"type": "ARRAY", "items": {"type": "STRING"}}
      },
      "required": ["dishName", "ingredients", "directions"]
    }
  },
  "required": ["responseText", "recipeUpdated"]
}`)

type recipePayload struct {
	DishName    string   `json:"dishName"`
	Ingredients []string `json:"ingredients"`
	Directions  []string `json:"directions"`
}

type chatPayload struct {
	ResponseText  string         `json:"responseText"`
	RecipeUpdated bool           `json:"recipeUpdated"`
	UpdatedRecipe *recipePayload `json:"updatedRecipe"`
}

// AnalyzeDish identifies a Filipino dish from an optional image and/or
// free-text description.
func (c *Client) AnalyzeDish(ctx context.Context, image *outbound.ImagePayload, description string) (*recipe.Recipe, error) {
	parts := make([]part, 0, 2)
	if image != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}
	parts = append(parts, part{Text: buildAnalysisPrompt(description)})

	text, err := c.generate(ctx, parts, recipeSchema)
	if err != nil {
		return nil, err
	}

	var payload recipePayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("gemini returned malformed recipe JSON: %w", err)
	}

	rec := &recipe.Recipe{
		DishName:    payload.DishName,
		Ingredients: payload.Ingredients,
		Directions:  payload.Directions,
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("gemini returned incomplete recipe for %q: %w", payload.DishName, err)
	}
	return rec, nil
}

// ContinueConversation runs one refinement turn against the current
// recipe.
func (c *Client) ContinueConversation(ctx context.Context, current *recipe.Recipe, history chat.Transcript, newMessage string) (*outbound.TurnResult, error) {
	prompt, err := buildChatPrompt(current, history, newMessage)
	if err != nil {
		return nil, err
	}

	text, err := c.generate(ctx, []part{{Text: prompt}}, chatResponseSchema)
	if err != nil {
		return nil, err
	}

	var payload chatPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("gemini returned malformed chat JSON: %w", err)
	}

	result := &outbound.TurnResult{ResponseText: payload.ResponseText}
	if payload.RecipeUpdated && payload.UpdatedRecipe != nil {
		result.RecipeUpdated = true
		result.UpdatedRecipe = &recipe.Recipe{
			DishName:    payload.UpdatedRecipe.DishName,
			Ingredients: payload.UpdatedRecipe.Ingredients,
			Directions:  payload.UpdatedRecipe.Directions,
		}
	}
	return result, nil
}

// generate performs one generateContent call and returns the text of
// the first candidate part.
func (c *Client) generate(ctx context.Context, parts []part, schema json.RawMessage) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   schema,
			MaxOutputTokens:  c.maxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	c.logger.Debug("Gemini request completed",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode != http.StatusOK {
		// The body text rides along unmodified: downstream failure
		// classification matches on it ("429", "quota", "billing",
		// "permission denied").
		return "", fmt.Errorf("gemini request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var gen generateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response contained no candidates")
	}

	return strings.TrimSpace(gen.Candidates[0].Content.Parts[0].Text), nil
}

func buildAnalysisPrompt(description string) string {
	if strings.TrimSpace(description) == "" {
		description = "No description provided."
	}
	return fmt.Sprintf(`You are Chef Maria, an expert in Filipino cuisine.
Analyze the user's request to identify a Filipino dish.
User's text description: %q

1. Identify the specific name of the dish from the image and/or text.
2. Provide a comprehensive list of authentic ingredients with quantities.
3. Provide detailed, step-by-step cooking directions that respect traditional Filipino cooking methods.

Return the response in JSON format. If you cannot confidently identify the dish as Filipino cuisine, return a JSON object with a "dishName" of "Unknown Dish" and empty arrays for ingredients and directions.`, description)
}

func buildChatPrompt(current *recipe.Recipe, history chat.Transcript, newMessage string) (string, error) {
	ingredients, err := json.Marshal(current.Ingredients)
	if err != nil {
		return "", fmt.Errorf("failed to encode ingredients: %w", err)
	}
	directions, err := json.Marshal(current.Directions)
	if err != nil {
		return "", fmt.Errorf("failed to encode directions: %w", err)
	}

	var b strings.Builder
	for _, msg := range history {
		label := "AI"
		if msg.Sender == chat.SenderUser {
			label = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, msg.Text)
	}

	return fmt.Sprintf(`You are "Chef Maria", a warm and expert Filipino chef. You are having a conversation with a user about a recipe for %q.

Current Recipe:
- Ingredients: %s
- Directions: %s

Conversation History:
%s
User's new message: %q

Your tasks:
1. Analyze the user's message to understand their intent.
2. Formulate a helpful, conversational responseText. Be encouraging and helpful, like a mentor.
3. If the user's request requires changing the recipe:
    a. Determine if the change is feasible.
    b. If it is, create a complete, updated version of the recipe. Integrate the change naturally into the ingredients and directions.
    c. Set recipeUpdated to true and provide the full updatedRecipe object.
4. If the user is just asking a question or the request doesn't change the recipe, set recipeUpdated to false.

Respond STRICTLY in the JSON format defined by the schema.`,
		current.DishName, ingredients, directions, b.String(), newMessage), nil
}
