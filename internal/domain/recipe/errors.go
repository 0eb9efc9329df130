package recipe

import "errors"

// Domain errors for recipe values

var (
	ErrNoIngredients = errors.New("identified recipe must have at least one ingredient")
	ErrNoDirections  = errors.New("identified recipe must have at least one direction step")
)
