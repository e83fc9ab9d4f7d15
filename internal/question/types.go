package question

// Difficulty tiers. Rare leaves are worth double points.
const (
	DifficultyNormal = "normal"
	DifficultyRare   = "rare"
)

// Point values per difficulty.
const (
	PointsNormal = 10
	PointsRare   = 20
)

// Question is the normalized record delivered to the session engine.
// CorrectAnswer is resolved once at transform time and carried on the
// value itself, so a regenerated pool can never observe a stale answer
// looked up by id.
type Question struct {
	ID            string   `json:"id"`
	Difficulty    string   `json:"difficulty"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// Playable reports whether the question may enter an active pool.
func (q Question) Playable() bool {
	return q.Text != "" && len(q.Options) > 0
}

// Points returns the score awarded for answering correctly.
func (q Question) Points() int {
	if q.Difficulty == DifficultyRare {
		return PointsRare
	}
	return PointsNormal
}
