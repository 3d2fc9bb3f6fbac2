package captions

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuggestAlwaysFromPool(t *testing.T) {
	s := NewSuggester(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		assert.Contains(t, Defaults, s.Suggest())
	}
}

func TestSuggestDeterministicWithSeed(t *testing.T) {
	a := NewSuggester(rand.NewSource(42))
	b := NewSuggester(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Suggest(), b.Suggest())
	}
}

func TestAllReturnsCopy(t *testing.T) {
	s := NewSuggester(nil)
	all := s.All()
	assert.Len(t, all, 5)
	all[0] = "changed"
	assert.NotEqual(t, "changed", Defaults[0])
}
