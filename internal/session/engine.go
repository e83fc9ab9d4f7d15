package session

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/historycanopy/game/internal/canopy"
	"github.com/historycanopy/game/internal/metrics"
	"github.com/historycanopy/game/internal/question"
)

// Store is the persistence contract the engine expects from the remote
// players/questions store. Registration may fail (the session degrades to
// local-only); question fetches never do, they fall back internally.
type Store interface {
	RegisterPlayer(ctx context.Context, name string) (string, error)
	PushScore(ctx context.Context, playerID, name string, score int) error
	FetchQuestions(ctx context.Context) []question.Raw
}

// Player identifies who is playing. RemoteID is empty when the store is
// unconfigured or registration failed; scores then stay local.
type Player struct {
	Name     string
	RemoteID string
}

// Options tunes engine timing and pool size. Zero values take defaults;
// tests shrink the intervals.
type Options struct {
	QuestionSeconds int           // countdown start, default 15
	TickInterval    time.Duration // countdown tick, default 1s
	RevealDelay     time.Duration // dialog linger after an answer, default 800ms
	MaxPoolSize     int           // default 20
	EventBuffer     int           // default 256
	Rand            *rand.Rand    // shuffle source, default time-seeded
}

// Engine owns one player's session: scene transitions, the question pool,
// the per-question countdown, scoring, leaf consumption and completion.
// All methods are safe for concurrent use; internally everything mutates
// under one lock, so the state machine behaves as if single-threaded.
type Engine struct {
	store   Store
	layout  *canopy.Generator
	metrics *metrics.Metrics
	logger  zerolog.Logger
	opts    Options

	events chan Event

	mu         sync.Mutex
	id         string
	player     Player
	loggedIn   bool
	scene      Scene
	score      int
	pool       []question.Question
	positions  []canopy.Position
	used       map[string]struct{}
	active     *question.Question
	remaining  int
	selected   string
	finished   bool
	generation uint64 // bumped on restart, discards stale pool loads
	timerGen   uint64 // bumped whenever the active question changes
	timerStop  chan struct{}
	rnd        *rand.Rand
}

// New constructs an engine in the intro scene.
func New(store Store, layout *canopy.Generator, logger zerolog.Logger, m *metrics.Metrics, opts Options) *Engine {
	if opts.QuestionSeconds <= 0 {
		opts.QuestionSeconds = 15
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.RevealDelay <= 0 {
		opts.RevealDelay = 800 * time.Millisecond
	}
	if opts.MaxPoolSize <= 0 {
		opts.MaxPoolSize = 20
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = 256
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if layout == nil {
		layout = canopy.NewGenerator(nil)
	}
	return &Engine{
		store:   store,
		layout:  layout,
		metrics: m,
		logger:  logger.With().Str("component", "session").Logger(),
		opts:    opts,
		events:  make(chan Event, opts.EventBuffer),
		id:      uuid.NewString(),
		scene:   SceneIntro,
		used:    make(map[string]struct{}),
		rnd:     rnd,
	}
}

// Events is the consumer-facing notification stream. A consumer that
// falls behind loses events rather than stalling the game.
func (e *Engine) Events() <-chan Event {
	return e.events
}

func (e *Engine) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
	}
}

// Login authenticates the player by name and registers a remote record
// when the store is configured. Registration failure degrades to a
// local-only session; login itself always succeeds for a non-empty name.
func (e *Engine) Login(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	remoteID, err := e.store.RegisterPlayer(ctx, name)
	if err != nil {
		e.logger.Warn().Err(err).Msg("player registration failed, score sync disabled")
		remoteID = ""
	}

	e.mu.Lock()
	e.player = Player{Name: name, RemoteID: remoteID}
	e.loggedIn = true
	player := e.player
	score := e.score
	e.mu.Unlock()

	e.pushScoreAsync(player, score)
	return true
}

// StartTransition moves intro → transition on user interaction. No-op
// unless the player has logged in.
func (e *Engine) StartTransition() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene != SceneIntro || !e.loggedIn {
		return
	}
	e.scene = SceneTransition
	e.emit(Event{Type: EventSceneChanged, Scene: SceneTransition})
}

// CompleteTransition is signalled by the presentation layer when the
// transition animation ends. It enters play and loads a fresh pool.
func (e *Engine) CompleteTransition(ctx context.Context) {
	e.mu.Lock()
	if e.scene != SceneTransition {
		e.mu.Unlock()
		return
	}
	e.scene = ScenePlay
	gen := e.generation
	e.emit(Event{Type: EventSceneChanged, Scene: ScenePlay})
	e.mu.Unlock()

	go e.loadPool(ctx, gen)
}

// loadPool runs the fetch → transform → filter → shuffle → truncate
// pipeline and regenerates leaf positions to match the final pool. Loads
// tagged with an older generation are discarded: a restart that happened
// while the fetch was in flight wins.
func (e *Engine) loadPool(ctx context.Context, gen uint64) {
	records := e.store.FetchQuestions(ctx)

	playable := make([]question.Question, 0, len(records))
	for _, r := range records {
		if q := question.Transform(r); q.Playable() {
			playable = append(playable, q)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.generation {
		e.logger.Debug().Msg("discarding stale pool load")
		return
	}
	e.rnd.Shuffle(len(playable), func(i, j int) {
		playable[i], playable[j] = playable[j], playable[i]
	})
	if len(playable) > e.opts.MaxPoolSize {
		playable = playable[:e.opts.MaxPoolSize]
	}
	e.pool = playable
	e.positions = e.layout.Generate(len(playable))
	e.emit(Event{Type: EventPoolLoaded, PoolSize: len(playable)})
}

// OpenQuestion opens the answer dialog for a leaf. Consumed leaves are a
// strict no-op: the active question does not change.
func (e *Engine) OpenQuestion(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scene != ScenePlay {
		return false
	}
	if _, consumed := e.used[id]; consumed {
		return false
	}
	for i := range e.pool {
		if e.pool[i].ID == id {
			e.beginQuestionLocked(e.pool[i])
			return true
		}
	}
	return false
}

func (e *Engine) beginQuestionLocked(q question.Question) {
	e.stopTimerLocked()
	e.active = &q
	e.remaining = e.opts.QuestionSeconds
	e.selected = ""
	e.timerGen++
	stop := make(chan struct{})
	e.timerStop = stop
	go e.runCountdown(e.timerGen, stop)
	e.emit(Event{Type: EventQuestionOpened, QuestionID: q.ID, Remaining: e.remaining})
}

// runCountdown decrements once per tick and closes the dialog when the
// clock reaches zero. The generation check makes a superseded countdown
// exit even when a tick was already in flight as the stop channel closed,
// so at most one countdown ever mutates the clock.
func (e *Engine) runCountdown(gen uint64, stop <-chan struct{}) {
	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			if gen != e.timerGen || e.active == nil {
				e.mu.Unlock()
				return
			}
			if e.remaining > 0 {
				e.remaining--
			}
			remaining := e.remaining
			e.emit(Event{Type: EventTick, QuestionID: e.active.ID, Remaining: remaining})
			if remaining == 0 {
				e.closeQuestionLocked()
				e.mu.Unlock()
				return
			}
			e.mu.Unlock()
		}
	}
}

// SubmitAnswer records the choice for the open question. The leaf is
// consumed whether or not the answer is correct; a correct answer scores
// the question's point value. The dialog stays up for the reveal delay so
// the result state can render, then closes on its own.
func (e *Engine) SubmitAnswer(option string) bool {
	e.mu.Lock()
	if e.active == nil || e.remaining == 0 || e.selected != "" {
		e.mu.Unlock()
		return false
	}
	q := *e.active
	e.selected = option
	e.used[q.ID] = struct{}{}

	correct := option == q.CorrectAnswer
	if correct {
		e.score += q.Points()
		e.metrics.IncAnswer(metrics.ResultCorrect)
		e.emit(Event{Type: EventScoreChanged, Score: e.score})
	} else {
		e.metrics.IncAnswer(metrics.ResultWrong)
	}
	e.emit(Event{Type: EventAnswerResult, QuestionID: q.ID, Correct: correct, Score: e.score})

	e.checkFinishedLocked()

	player := e.player
	score := e.score
	gen := e.timerGen
	time.AfterFunc(e.opts.RevealDelay, func() {
		e.mu.Lock()
		if gen == e.timerGen && e.active != nil && e.active.ID == q.ID {
			e.closeQuestionLocked()
		}
		e.mu.Unlock()
	})
	e.mu.Unlock()

	if correct {
		e.pushScoreAsync(player, score)
	}
	return true
}

// CloseQuestion dismisses the dialog without consuming the leaf.
func (e *Engine) CloseQuestion() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return
	}
	e.closeQuestionLocked()
}

func (e *Engine) closeQuestionLocked() {
	e.stopTimerLocked()
	e.timerGen++
	if e.active != nil {
		e.emit(Event{Type: EventQuestionClosed, QuestionID: e.active.ID})
	}
	e.active = nil
	e.selected = ""
}

func (e *Engine) stopTimerLocked() {
	if e.timerStop != nil {
		close(e.timerStop)
		e.timerStop = nil
	}
}

func (e *Engine) checkFinishedLocked() {
	if e.finished || len(e.pool) == 0 {
		return
	}
	if len(e.used) < len(e.pool) {
		return
	}
	e.finished = true
	e.metrics.IncSessionFinished()
	e.emit(Event{Type: EventFinished, Score: e.score})
}

// PlayAgain resets to a freshly constructed session and jumps straight
// back into play, skipping the intro and transition screens.
func (e *Engine) PlayAgain(ctx context.Context) {
	e.mu.Lock()
	e.closeQuestionLocked()
	e.score = 0
	e.used = make(map[string]struct{})
	e.pool = nil
	e.positions = nil
	e.finished = false
	e.generation++
	gen := e.generation
	if e.scene != ScenePlay {
		e.scene = ScenePlay
		e.emit(Event{Type: EventSceneChanged, Scene: ScenePlay})
	}
	e.emit(Event{Type: EventScoreChanged, Score: 0})
	e.mu.Unlock()

	go e.loadPool(ctx, gen)
}

// Close cancels pending timers and invalidates in-flight loads. The
// engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.timerGen++
	e.generation++
}

func (e *Engine) pushScoreAsync(p Player, score int) {
	if p.RemoteID == "" {
		return
	}
	go func() {
		if err := e.store.PushScore(context.Background(), p.RemoteID, p.Name, score); err != nil {
			e.logger.Debug().Err(err).Msg("score push failed")
		}
	}()
}

// Snapshot is an immutable view of session state for rendering.
type Snapshot struct {
	SessionID string
	Player    Player
	LoggedIn  bool
	Scene     Scene
	Score     int
	Pool      []question.Question
	Positions []canopy.Position
	UsedIDs   map[string]bool
	Active    *question.Question
	Remaining int
	Selected  string
	Finished  bool
}

// Snapshot copies the current state under the lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	used := make(map[string]bool, len(e.used))
	for id := range e.used {
		used[id] = true
	}
	var active *question.Question
	if e.active != nil {
		q := *e.active
		active = &q
	}
	return Snapshot{
		SessionID: e.id,
		Player:    e.player,
		LoggedIn:  e.loggedIn,
		Scene:     e.scene,
		Score:     e.score,
		Pool:      append([]question.Question(nil), e.pool...),
		Positions: append([]canopy.Position(nil), e.positions...),
		UsedIDs:   used,
		Active:    active,
		Remaining: e.remaining,
		Selected:  e.selected,
		Finished:  e.finished,
	}
}
