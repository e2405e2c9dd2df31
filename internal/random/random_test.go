package random

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSameSeedSameOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	a, err := New(42)
	require.NoError(t, err)
	b, err := New(42)
	require.NoError(t, err)

	assert.Equal(t, Shuffled(a, items), Shuffled(b, items))
}

func TestShuffledIsPermutationAndLeavesInputAlone(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	r, err := New(7)
	require.NoError(t, err)

	out := Shuffled(r, items)
	assert.Equal(t, []string{"a", "b", "c", "d"}, items)

	sorted := slices.Clone(out)
	slices.Sort(sorted)
	assert.Equal(t, items, sorted)
}

func TestSample(t *testing.T) {
	r, err := New(3)
	require.NoError(t, err)

	got, err := Sample(r, []int{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Len(t, slices.Compact(slices.Sorted(slices.Values(got))), 3)

	_, err = Sample(r, []int{1, 2}, 3)
	assert.Error(t, err)
}

func TestNewWithZeroSeedUsesEntropy(t *testing.T) {
	r, err := New(0)
	require.NoError(t, err)
	assert.NotNil(t, r)
}
