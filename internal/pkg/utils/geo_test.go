package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	t.Run("identical points", func(t *testing.T) {
		points := [][2]float64{
			{0, 0},
			{52.5163, 13.3777},
			{-33.8688, 151.2093},
			{89.9, -170},
		}
		for _, p := range points {
			assert.Zero(t, HaversineDistance(p[0], p[1], p[0], p[1]))
		}
	})

	t.Run("symmetry", func(t *testing.T) {
		d1 := HaversineDistance(52.5163, 13.3777, -33.8688, 151.2093)
		d2 := HaversineDistance(-33.8688, 151.2093, 52.5163, 13.3777)
		assert.InDelta(t, d1, d2, 1e-6)
	})

	t.Run("longitude degenerate at the poles", func(t *testing.T) {
		assert.Less(t, HaversineDistance(90, 0, 90, 179), 1.0)
		assert.Less(t, HaversineDistance(-90, -45, -90, 120), 1.0)
	})

	t.Run("one degree of longitude at the equator", func(t *testing.T) {
		d := HaversineDistance(0, 0, 0, 1)
		assert.Greater(t, d, 110000.0)
		assert.Less(t, d, 112000.0)
	})

	t.Run("no antimeridian special case", func(t *testing.T) {
		// 2° разницы долготы поперек антимеридиана - та же дистанция,
		// что и 2° вдали от него
		across := HaversineDistance(0, 179, 0, -179)
		plain := HaversineDistance(0, 0, 0, 2)
		assert.InDelta(t, plain, across, 1.0)
	})

	t.Run("berlin city block", func(t *testing.T) {
		d := HaversineDistance(52.5163, 13.3777, 52.5186, 13.3762)
		assert.Greater(t, d, 250.0)
		assert.Less(t, d, 300.0)
	})
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(0, 0))
	assert.True(t, ValidateCoordinates(90, 180))
	assert.True(t, ValidateCoordinates(-90, -180))
	assert.False(t, ValidateCoordinates(90.0001, 0))
	assert.False(t, ValidateCoordinates(0, -180.0001))
}

func TestValidateRadius(t *testing.T) {
	assert.True(t, ValidateRadius(100))
	assert.True(t, ValidateRadius(5000))
	assert.True(t, ValidateRadius(100000))
	assert.False(t, ValidateRadius(99))
	assert.False(t, ValidateRadius(100001))
}
