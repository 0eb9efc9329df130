package gorm

import (
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/user"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
)

// RecipeToModel converts a catalog recipe to its persisted form.
func RecipeToModel(rec *outbound.CatalogRecipe) *RecipeModel {
	return &RecipeModel{
		ID:              rec.ID,
		AuthorID:        rec.AuthorID,
		AuthorName:      rec.AuthorName,
		Title:           rec.Title,
		Description:     rec.Description,
		ImageURL:        rec.ImageURL,
		Ingredients:     StringSlice(rec.Ingredients),
		Directions:      StringSlice(rec.Directions),
		PrepTimeMinutes: rec.PrepTimeMinutes,
		CookTimeMinutes: rec.CookTimeMinutes,
		Servings:        rec.Servings,
		Difficulty:      rec.Difficulty,
		Categories:      StringSlice(rec.Categories),
		Tags:            StringSlice(rec.Tags),
		AverageRating:   rec.AverageRating,
		Featured:        rec.Featured,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
}

// ModelToRecipe converts a persisted recipe back to the port form.
func ModelToRecipe(model *RecipeModel) *outbound.CatalogRecipe {
	return &outbound.CatalogRecipe{
		ID:              model.ID,
		AuthorID:        model.AuthorID,
		AuthorName:      model.AuthorName,
		Title:           model.Title,
		Description:     model.Description,
		ImageURL:        model.ImageURL,
		Ingredients:     model.Ingredients,
		Directions:      model.Directions,
		PrepTimeMinutes: model.PrepTimeMinutes,
		CookTimeMinutes: model.CookTimeMinutes,
		Servings:        model.Servings,
		Difficulty:      model.Difficulty,
		Categories:      model.Categories,
		Tags:            model.Tags,
		AverageRating:   model.AverageRating,
		Featured:        model.Featured,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// UserToModel converts a user entity to its persisted form.
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
		IsActive:     u.IsActive(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}
}

// ModelToUser rehydrates a user entity from its persisted form.
func ModelToUser(model *UserModel) *user.User {
	return user.Restore(
		model.ID,
		model.Email,
		model.Name,
		model.PasswordHash,
		model.IsActive,
		model.CreatedAt,
		model.UpdatedAt,
		model.LastLoginAt,
	)
}
