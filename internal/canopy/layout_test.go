package canopy

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateZeroCount(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(1)))
	assert.Empty(t, g.Generate(0))
}

func TestGenerateExactCountWithinBounds(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(42)))

	positions := g.Generate(20)
	assert.Len(t, positions, 20)

	for i, p := range positions {
		assert.GreaterOrEqual(t, p.Left, 0.0, "position %d", i)
		assert.GreaterOrEqual(t, p.Top, 0.0, "position %d", i)
		assert.LessOrEqual(t, p.Left, float64(Width-LeafSize), "position %d", i)
		assert.LessOrEqual(t, p.Top, float64(Height-LeafSize), "position %d", i)
	}
}

func TestGenerateKeepsMinimumGapAtLowDensity(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(7)))

	positions := g.Generate(20)
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			dx := positions[i].Left - positions[j].Left
			dy := positions[i].Top - positions[j].Top
			dist := math.Sqrt(dx*dx + dy*dy)
			assert.GreaterOrEqual(t, dist, float64(MinGap), "leaves %d and %d overlap", i, j)
		}
	}
}

func TestGenerateDegradesGracefullyAtHighDensity(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewSource(99)))

	// Far more leaves than the gap constraint can satisfy; placement must
	// still return one position per leaf instead of failing.
	positions := g.Generate(500)
	assert.Len(t, positions, 500)
	for _, p := range positions {
		assert.LessOrEqual(t, p.Left, float64(Width-LeafSize))
		assert.LessOrEqual(t, p.Top, float64(Height-LeafSize))
	}
}
