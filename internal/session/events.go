package session

// Scene identifies the top-level screen. Scenes progress strictly forward
// (intro → transition → play) except on an explicit restart.
type Scene string

const (
	SceneIntro      Scene = "intro"
	SceneTransition Scene = "transition"
	ScenePlay       Scene = "play"
)

// EventType tags engine notifications.
type EventType string

const (
	EventSceneChanged   EventType = "scene_changed"
	EventPoolLoaded     EventType = "pool_loaded"
	EventQuestionOpened EventType = "question_opened"
	EventQuestionClosed EventType = "question_closed"
	EventTick           EventType = "tick"
	EventAnswerResult   EventType = "answer_result"
	EventScoreChanged   EventType = "score_changed"
	EventFinished       EventType = "finished"
)

// Event notifies the presentation layer of a state change worth a
// re-render. Only the fields relevant to the type are set.
type Event struct {
	Type       EventType
	Scene      Scene
	QuestionID string
	Remaining  int
	Correct    bool
	Score      int
	PoolSize   int
}
