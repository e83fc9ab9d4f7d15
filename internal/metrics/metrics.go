package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the game core.
type Metrics struct {
	AnswersTotal     *prometheus.CounterVec
	PoolsLoadedTotal *prometheus.CounterVec
	ScorePushesTotal *prometheus.CounterVec
	LeaderboardReads *prometheus.CounterVec
	SessionsFinished prometheus.Counter
}

// New registers the game collectors on the default registry.
func New(appName string) *Metrics {
	return &Metrics{
		AnswersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Subsystem: appName,
				Name:      "answers_total",
				Help:      "Answers submitted, labelled by result",
			},
			[]string{"result"},
		),
		PoolsLoadedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Subsystem: appName,
				Name:      "pools_loaded_total",
				Help:      "Question pools loaded, labelled by source",
			},
			[]string{"source"},
		),
		ScorePushesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Subsystem: appName,
				Name:      "score_pushes_total",
				Help:      "Best-effort score pushes, labelled by status",
			},
			[]string{"status"},
		),
		LeaderboardReads: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Subsystem: appName,
				Name:      "leaderboard_reads_total",
				Help:      "Leaderboard fetches, labelled by outcome",
			},
			[]string{"outcome"},
		),
		SessionsFinished: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: "canopy",
				Subsystem: appName,
				Name:      "sessions_finished_total",
				Help:      "Sessions where every leaf was consumed",
			},
		),
	}
}

// The increment helpers tolerate a nil receiver so components can run
// without metrics wired (tests, library embedding).

func (m *Metrics) IncAnswer(result string) {
	if m == nil {
		return
	}
	m.AnswersTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncPoolLoaded(source string) {
	if m == nil {
		return
	}
	m.PoolsLoadedTotal.WithLabelValues(source).Inc()
}

func (m *Metrics) IncScorePush(status string) {
	if m == nil {
		return
	}
	m.ScorePushesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncLeaderboardRead(outcome string) {
	if m == nil {
		return
	}
	m.LeaderboardReads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncSessionFinished() {
	if m == nil {
		return
	}
	m.SessionsFinished.Inc()
}

// Label values used across components.
const (
	ResultCorrect = "correct"
	ResultWrong   = "wrong"

	SourceRemote   = "remote"
	SourceFallback = "fallback"

	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)
