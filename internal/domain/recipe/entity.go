// Package recipe contains the core domain model for dish recipes.
// A Recipe is what the analysis service produces and what the chat
// refinement loop mutates; it is a plain serializable value so it can
// cross the AI boundary and the HTTP boundary unchanged.
package recipe

import "strings"

// UnknownDishName is the sentinel dish name the AI returns when it
// cannot confidently identify the dish as Filipino cuisine. A recipe
// carrying it must never be treated as identified, regardless of what
// its ingredient or direction lists contain.
const UnknownDishName = "Unknown Dish"

// Recipe represents a generated recipe for a Filipino dish.
type Recipe struct {
	DishName    string   `json:"dishName"`
	Ingredients []string `json:"ingredients"`
	Directions  []string `json:"directions"`

	// Optional metadata, populated when the AI or the user provides it.
	PrepTimeMinutes int    `json:"prepTimeMinutes,omitempty"`
	CookTimeMinutes int    `json:"cookTimeMinutes,omitempty"`
	Servings        int    `json:"servings,omitempty"`
	Difficulty      string `json:"difficulty,omitempty"`

	// ImageURL references the image the user supplied for analysis.
	// Chat-driven edits never regenerate it; a replacement recipe
	// carries the reference forward from the recipe it replaces.
	ImageURL string `json:"imageUrl,omitempty"`
}

// Identified reports whether the recipe names an actual dish. The
// sentinel comparison is case-insensitive.
func (r *Recipe) Identified() bool {
	if r == nil {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(r.DishName), UnknownDishName)
}

// Validate checks the invariant for identified recipes: both the
// ingredient list and the direction list must be non-empty.
func (r *Recipe) Validate() error {
	if !r.Identified() {
		return nil
	}
	if len(r.Ingredients) == 0 {
		return ErrNoIngredients
	}
	if len(r.Directions) == 0 {
		return ErrNoDirections
	}
	return nil
}

// Clone returns a deep copy so callers can hand out snapshots without
// sharing the underlying slices.
func (r *Recipe) Clone() *Recipe {
	if r == nil {
		return nil
	}
	out := *r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Directions = append([]string(nil), r.Directions...)
	return &out
}
