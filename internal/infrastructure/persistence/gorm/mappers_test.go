package gorm

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shunsena-Jian/kasalo-kusina/test/testutils"
)

func TestRecipeModelRoundTrip(t *testing.T) {
	original := testutils.NewRecipeFactory(42).CatalogRecipe()

	restored := ModelToRecipe(RecipeToModel(original))

	assert.Equal(t, original, restored)
}

func TestUserModelRoundTrip(t *testing.T) {
	u, err := testutils.NewUserFactory(42).User()
	require.NoError(t, err)

	restored := ModelToUser(UserToModel(u))

	assert.Equal(t, u.ID(), restored.ID())
	assert.Equal(t, u.Email(), restored.Email())
	assert.Equal(t, u.Name(), restored.Name())
	assert.True(t, restored.IsActive())
}

func TestStringSliceScanHandlesNull(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
}

func TestStringSliceValueEmptyIsJSONArray(t *testing.T) {
	var s StringSlice
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, driver.Value("[]"), v)
}

func TestStringSliceScanFromBytes(t *testing.T) {
	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["soy sauce","vinegar"]`)))
	assert.Equal(t, StringSlice{"soy sauce", "vinegar"}, s)
}
