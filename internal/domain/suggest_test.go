package domain

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestPersonal(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := Suggest("maria", ClassPersonal, rng)

	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 10)
	assert.Contains(t, got, "mariaofficial")
	assert.Contains(t, got, "mariapro")
	assert.Contains(t, got, "the-maria")
	for _, s := range got {
		_, err := ValidateLabel(s, ClassPersonal)
		assert.NoError(t, err, "suggestion %q must be a valid personal name", s)
		assert.NotEqual(t, "maria", s)
	}
}

func TestSuggestNumeric(t *testing.T) {
	got := Suggest("100", ClassNumeric, rand.New(rand.NewSource(1)))

	assert.Contains(t, got, "101")
	assert.Contains(t, got, "99")
	assert.Contains(t, got, "105")
	assert.Contains(t, got, "95")
	for _, s := range got {
		_, err := ValidateLabel(s, ClassNumeric)
		assert.NoError(t, err)
	}
}

func TestSuggestNumericNoNegatives(t *testing.T) {
	got := Suggest("2", ClassNumeric, rand.New(rand.NewSource(1)))
	for _, s := range got {
		assert.False(t, strings.HasPrefix(s, "-"), "got negative suggestion %q", s)
	}
}

func TestSuggestQuickAccess(t *testing.T) {
	got := Suggest("xk42", ClassQuickAccess, rand.New(rand.NewSource(42)))

	require.NotEmpty(t, got)
	for _, s := range got {
		assert.Len(t, s, 4)
		_, err := ValidateLabel(s, ClassQuickAccess)
		assert.NoError(t, err)
	}
}
