package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatToUint64(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(5_000_000), FloatToUint64(5e6))
	})

	t.Run("truncates_fraction", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(42), FloatToUint64(42.9))
	})

	t.Run("negative_is_zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(0), FloatToUint64(-1))
	})

	t.Run("nan_is_zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(0), FloatToUint64(math.NaN()))
	})

	t.Run("saturates", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint64(math.MaxUint64), FloatToUint64(math.Inf(1)))
	})
}

func TestIntToUint64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(500), IntToUint64(500))
	assert.Equal(t, uint64(0), IntToUint64(-3))
}
