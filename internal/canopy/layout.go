package canopy

import (
	"math"
	"math/rand"
	"time"
)

// Canvas geometry shared with the presentation layer. Leaves are placed
// by their top-left corner inside a fixed 800x580 zone.
const (
	Width    = 800
	Height   = 580
	LeafSize = 48

	// Minimum center-to-center distance between two leaves, roughly
	// 1-2cm on a typical screen.
	MinGap = 50

	maxAttempts = 800
)

// Position is a leaf offset in pixels, paired 1:1 by index with the
// session's question pool.
type Position struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// Generator places leaves by rejection sampling.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator builds a generator backed by the given random source, or a
// time-seeded one when rnd is nil.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Generate returns exactly count non-overlapping positions inside the
// canvas. Each position gets up to maxAttempts uniform draws; if none
// clears the gap constraint the last resort is a single unconstrained
// draw, so dense canopies degrade to overlap instead of failing.
func (g *Generator) Generate(count int) []Position {
	positions := make([]Position, 0, count)
	maxLeft := float64(Width - LeafSize)
	maxTop := float64(Height - LeafSize)

	for i := 0; i < count; i++ {
		placed := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			candidate := Position{
				Left: g.rnd.Float64() * maxLeft,
				Top:  g.rnd.Float64() * maxTop,
			}
			if !tooClose(candidate, positions) {
				positions = append(positions, candidate)
				placed = true
				break
			}
		}
		if !placed {
			positions = append(positions, Position{
				Left: g.rnd.Float64() * maxLeft,
				Top:  g.rnd.Float64() * maxTop,
			})
		}
	}
	return positions
}

func tooClose(candidate Position, placed []Position) bool {
	cx := candidate.Left + LeafSize/2
	cy := candidate.Top + LeafSize/2
	for _, p := range placed {
		dx := cx - (p.Left + LeafSize/2)
		dy := cy - (p.Top + LeafSize/2)
		if math.Sqrt(dx*dx+dy*dy) < MinGap {
			return true
		}
	}
	return false
}
