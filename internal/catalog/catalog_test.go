package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aashu2252/Fraud-Gaurd-AI/internal/validation"
)

func TestProducts_ReturnsCopy(t *testing.T) {
	a := Products()
	require.NotEmpty(t, a)

	a[0].Name = "mutated"
	b := Products()
	assert.NotEqual(t, "mutated", b[0].Name)
}

func TestByCategory(t *testing.T) {
	clothing := ByCategory("Clothing")
	require.Len(t, clothing, 2)
	for _, p := range clothing {
		assert.Equal(t, "Clothing", p.Category)
	}

	assert.Len(t, ByCategory("All"), len(Products()))
	assert.Len(t, ByCategory(""), len(Products()))
	assert.Empty(t, ByCategory("Garden"))
}

func TestProductByID(t *testing.T) {
	p, ok := ProductByID("PROD_E01")
	require.True(t, ok)
	assert.Equal(t, "Quantum Earbuds Pro", p.Name)
	assert.Equal(t, int64(12999), p.Price)
	assert.False(t, p.HasSizes())

	tee, ok := ProductByID("PROD_T01")
	require.True(t, ok)
	assert.True(t, tee.HasSizes())

	_, ok = ProductByID("PROD_X99")
	assert.False(t, ok)
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Equal(t, []string{"Clothing", "Electronics", "Footwear", "Accessories", "Books"}, cats)
}

func TestProfiles_HashesAreWellFormed(t *testing.T) {
	ps := Profiles()
	require.Len(t, ps, 3)
	for _, p := range ps {
		assert.True(t, validation.IsValidUserHash(p.Hash), "profile %s has malformed hash", p.ID)
	}
}

func TestProfileByHash(t *testing.T) {
	ps := Profiles()
	got, ok := ProfileByHash(ps[2].Hash)
	require.True(t, ok)
	assert.Equal(t, "high_risk", got.ID)

	_, ok = ProfileByHash("ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	assert.False(t, ok)
}
