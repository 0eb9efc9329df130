// Package testutils provides test data factories for consistent test
// data generation.
package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/user"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

var filipinoDishes = []string{
	"Chicken Adobo",
	"Sinigang na Baboy",
	"Kare-Kare",
	"Pancit Canton",
	"Lumpiang Shanghai",
	"Lechon Kawali",
	"Bicol Express",
	"Halo-Halo",
}

// RecipeFactory builds domain recipes with seeded fake data.
type RecipeFactory struct {
	faker *gofakeit.Faker
}

// NewRecipeFactory creates a recipe factory with a seeded faker so
// tests stay deterministic.
func NewRecipeFactory(seed int64) *RecipeFactory {
	return &RecipeFactory{faker: gofakeit.New(seed)}
}

// Recipe returns a fully populated identified recipe.
func (f *RecipeFactory) Recipe() *recipe.Recipe {
	dish := filipinoDishes[f.faker.IntRange(0, len(filipinoDishes)-1)]

	ingredients := make([]string, f.faker.IntRange(4, 8))
	for i := range ingredients {
		ingredients[i] = fmt.Sprintf("%d cups %s", f.faker.IntRange(1, 3), f.faker.Vegetable())
	}

	directions := make([]string, f.faker.IntRange(3, 6))
	for i := range directions {
		directions[i] = f.faker.Sentence(8)
	}

	return &recipe.Recipe{
		DishName:        dish,
		Ingredients:     ingredients,
		Directions:      directions,
		PrepTimeMinutes: f.faker.IntRange(5, 45),
		CookTimeMinutes: f.faker.IntRange(10, 120),
		Servings:        f.faker.IntRange(2, 8),
		Difficulty:      f.faker.RandomString([]string{"easy", "medium", "hard"}),
	}
}

// UnidentifiedRecipe returns the soft-failure recipe the analyzer
// produces when it cannot name the dish.
func (f *RecipeFactory) UnidentifiedRecipe() *recipe.Recipe {
	return &recipe.Recipe{DishName: recipe.UnknownDishName}
}

// CatalogRecipe returns a persisted-catalog-shaped recipe.
func (f *RecipeFactory) CatalogRecipe() *outbound.CatalogRecipe {
	dish := f.Recipe()
	now := time.Now().UTC()

	return &outbound.CatalogRecipe{
		ID:              uuid.New(),
		AuthorID:        uuid.New(),
		AuthorName:      f.faker.Name(),
		Title:           dish.DishName,
		Description:     f.faker.Sentence(12),
		Ingredients:     dish.Ingredients,
		Directions:      dish.Directions,
		PrepTimeMinutes: dish.PrepTimeMinutes,
		CookTimeMinutes: dish.CookTimeMinutes,
		Servings:        dish.Servings,
		Difficulty:      dish.Difficulty,
		Categories:      []string{"main-dishes"},
		Tags:            []string{"filipino"},
		AverageRating:   f.faker.Float64Range(3.0, 5.0),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// UserFactory builds domain users.
type UserFactory struct {
	faker *gofakeit.Faker
}

// NewUserFactory creates a user factory with a seeded faker.
func NewUserFactory(seed int64) *UserFactory {
	return &UserFactory{faker: gofakeit.New(seed)}
}

// User returns a registered user with a bcrypt-hashed random password.
func (f *UserFactory) User() (*user.User, error) {
	return user.NewUser(
		f.faker.Email(),
		f.faker.Name(),
		f.faker.Password(true, true, true, false, false, 12),
	)
}
