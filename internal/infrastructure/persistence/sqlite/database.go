// Package sqlite provides SQLite database setup and seeding.
package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	gormModels "github.com/Shunsena-Jian/kasalo-kusina/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the SQLite database and runs auto-migration.
func SetupDatabase(dbPath string, logLevel logger.LogLevel) (*gorm.DB, error) {
	if dbPath == "" {
		dbPath = ":memory:"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&gormModels.UserModel{},
		&gormModels.RecipeModel{},
		&gormModels.CategoryModel{},
		&gormModels.TagModel{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedDatabase populates an empty database with the category and tag
// taxonomy plus a handful of catalog entries for the home page.
func SeedDatabase(db *gorm.DB) error {
	var userCount int64
	db.Model(&gormModels.UserModel{}).Count(&userCount)
	if userCount > 0 {
		return nil
	}

	// bcrypt hash of "password"
	demoHash := "$2a$10$92IXUNpkjO0rOQ5byMi.Ye4oKoEa3Ro9llC/.og/at2.uheWG/igi"

	chef := gormModels.UserModel{
		ID:           uuid.New(),
		Email:        "maria@kasalokusina.ph",
		Name:         "Chef Maria",
		PasswordHash: demoHash,
		IsActive:     true,
	}
	if err := db.Create(&chef).Error; err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}

	categories := []gormModels.CategoryModel{
		{ID: uuid.New(), Name: "Main Dishes", Slug: "main-dishes", Description: "Hearty ulam to pair with rice"},
		{ID: uuid.New(), Name: "Soups & Stews", Slug: "soups-stews", Description: "Sinigang, tinola, and other comforting broths"},
		{ID: uuid.New(), Name: "Street Food", Slug: "street-food", Description: "Merienda favorites from the streets"},
		{ID: uuid.New(), Name: "Desserts", Slug: "desserts", Description: "Kakanin and sweet endings"},
	}
	for _, c := range categories {
		if err := db.Create(&c).Error; err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}
	}

	tags := []gormModels.TagModel{
		{ID: uuid.New(), Name: "chicken", Slug: "chicken"},
		{ID: uuid.New(), Name: "pork", Slug: "pork"},
		{ID: uuid.New(), Name: "seafood", Slug: "seafood"},
		{ID: uuid.New(), Name: "vegetarian", Slug: "vegetarian"},
		{ID: uuid.New(), Name: "festive", Slug: "festive"},
		{ID: uuid.New(), Name: "quick", Slug: "quick"},
	}
	for _, tag := range tags {
		if err := db.Create(&tag).Error; err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
	}

	now := time.Now()
	recipes := []gormModels.RecipeModel{
		{
			ID:          uuid.New(),
			AuthorID:    chef.ID,
			AuthorName:  chef.Name,
			Title:       "Chicken Adobo",
			Description: "The classic Filipino braise of chicken in soy sauce, vinegar, garlic, and bay leaves.",
			Ingredients: gormModels.StringSlice{
				"1 kg chicken, cut into serving pieces",
				"1/2 cup soy sauce",
				"1/2 cup cane vinegar",
				"1 head garlic, crushed",
				"3 bay leaves",
				"1 tsp whole peppercorns",
			},
			Directions: gormModels.StringSlice{
				"Marinate the chicken in soy sauce and garlic for 30 minutes.",
				"Brown the chicken in a hot pan.",
				"Add the marinade, vinegar, bay leaves, and peppercorns. Do not stir until it boils.",
				"Simmer uncovered until the sauce reduces and the chicken is tender, about 35 minutes.",
			},
			PrepTimeMinutes: 40,
			CookTimeMinutes: 45,
			Servings:        4,
			Difficulty:      "easy",
			Categories:      gormModels.StringSlice{"main-dishes"},
			Tags:            gormModels.StringSlice{"chicken"},
			AverageRating:   4.8,
			Featured:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			ID:          uuid.New(),
			AuthorID:    chef.ID,
			AuthorName:  chef.Name,
			Title:       "Sinigang na Baboy",
			Description: "Sour tamarind soup with pork ribs, kangkong, and vegetables.",
			Ingredients: gormModels.StringSlice{
				"1 kg pork ribs",
				"1 pack tamarind soup base or 200 g fresh tamarind",
				"2 tomatoes, quartered",
				"1 onion, quartered",
				"1 bundle kangkong",
				"2 pieces gabi, halved",
				"1 radish, sliced",
			},
			Directions: gormModels.StringSlice{
				"Boil the pork with onion and tomatoes until tender, about 1 hour.",
				"Add gabi and simmer until it starts to thicken the broth.",
				"Season with the tamarind base and fish sauce.",
				"Add radish, then the kangkong last. Serve hot with rice.",
			},
			PrepTimeMinutes: 15,
			CookTimeMinutes: 80,
			Servings:        6,
			Difficulty:      "medium",
			Categories:      gormModels.StringSlice{"soups-stews"},
			Tags:            gormModels.StringSlice{"pork"},
			AverageRating:   4.7,
			Featured:        true,
			CreatedAt:       now.Add(-24 * time.Hour),
			UpdatedAt:       now.Add(-24 * time.Hour),
		},
		{
			ID:          uuid.New(),
			AuthorID:    chef.ID,
			AuthorName:  chef.Name,
			Title:       "Halo-Halo",
			Description: "Layered shaved-ice dessert with sweet beans, fruits, leche flan, and ube.",
			Ingredients: gormModels.StringSlice{
				"2 cups shaved ice",
				"1/2 cup sweetened red beans",
				"1/2 cup nata de coco",
				"1/2 cup macapuno",
				"1 slice leche flan",
				"1 scoop ube ice cream",
				"1/2 cup evaporated milk",
			},
			Directions: gormModels.StringSlice{
				"Layer the sweetened beans and fruits at the bottom of a tall glass.",
				"Pack the glass with shaved ice.",
				"Top with leche flan and ube ice cream.",
				"Pour over evaporated milk and serve immediately.",
			},
			PrepTimeMinutes: 15,
			CookTimeMinutes: 0,
			Servings:        1,
			Difficulty:      "easy",
			Categories:      gormModels.StringSlice{"desserts"},
			Tags:            gormModels.StringSlice{"festive", "quick"},
			AverageRating:   4.9,
			Featured:        false,
			CreatedAt:       now.Add(-48 * time.Hour),
			UpdatedAt:       now.Add(-48 * time.Hour),
		},
	}
	for _, rec := range recipes {
		if err := db.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create demo recipe: %w", err)
		}
	}

	return nil
}
