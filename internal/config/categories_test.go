package config_test

import (
	"strings"
	"testing"

	"tulumreporta/backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryByKey(t *testing.T) {
	c, ok := config.CategoryByKey("3")
	require.True(t, ok)
	assert.Equal(t, "Basura y Residuos ♻️", c.Name)
	assert.Len(t, c.Subcategories, 6)

	_, ok = config.CategoryByKey("8")
	assert.False(t, ok)
	_, ok = config.CategoryByKey("basura")
	assert.False(t, ok)
}

func TestFreeFormCategoryHasNoSubcategories(t *testing.T) {
	c, ok := config.CategoryByKey("0")
	require.True(t, ok)
	assert.Empty(t, c.Subcategories)
}

func TestCategoryByName(t *testing.T) {
	c, ok := config.CategoryByName("Agua y Drenaje 💧")
	require.True(t, ok)
	assert.Equal(t, "4", c.Key)

	_, ok = config.CategoryByName("Agua")
	assert.False(t, ok)
}

func TestCategoryMenuOrder(t *testing.T) {
	menu := config.CategoryMenu()
	lines := strings.Split(menu, "\n")
	require.Len(t, lines, len(config.Categories))

	assert.True(t, strings.HasPrefix(lines[0], "1. "))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "0. "), "free-form option goes last")
}

func TestSubcategoryMenu(t *testing.T) {
	c, ok := config.CategoryByKey("1")
	require.True(t, ok)

	menu := c.SubcategoryMenu()
	lines := strings.Split(menu, "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "1. Hoyo en la calle", lines[0])
	assert.Equal(t, "0. Otro problema", lines[6])
}

func TestSubcategoryChoice(t *testing.T) {
	c, ok := config.CategoryByKey("5")
	require.True(t, ok)

	got, ok := c.Subcategory(1)
	require.True(t, ok)
	assert.Equal(t, "Luminaria fallando", got)

	got, ok = c.Subcategory(0)
	require.True(t, ok)
	assert.Equal(t, "Otro problema", got)

	_, ok = c.Subcategory(7)
	assert.False(t, ok)
	_, ok = c.Subcategory(-1)
	assert.False(t, ok)
}

func TestTulumBoundsContains(t *testing.T) {
	assert.True(t, config.TulumBounds.Contains(20.2, -87.46), "downtown Tulum")
	assert.False(t, config.TulumBounds.Contains(21.16, -86.85), "Cancún is outside")
	assert.False(t, config.TulumBounds.Contains(20.2, -99.0))
	assert.False(t, config.TulumBounds.Contains(0, 0))
}
