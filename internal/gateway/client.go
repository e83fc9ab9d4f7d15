package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/historycanopy/game/internal/metrics"
	"github.com/historycanopy/game/internal/question"
)

// Client talks to the flat players/questions REST store. An empty base
// URL means the store is unconfigured and every call degrades to its
// local behavior: registration succeeds without a remote id, score pushes
// are skipped, the leaderboard reads empty and questions come from the
// bundled fallback set. Gameplay never blocks on the store.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	sf         singleflight.Group
	topN       int
}

// Options configures optional client collaborators.
type Options struct {
	Cache   Cache
	Metrics *metrics.Metrics
	TopN    int
}

// NewClient builds a store client. httpClient may be nil for a default
// with a 5s timeout.
func NewClient(baseURL string, httpClient *http.Client, logger zerolog.Logger, opts Options) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		logger:     logger.With().Str("component", "gateway").Logger(),
		topN:       topN,
	}
}

// Configured reports whether a remote store base URL is set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

type playerPayload struct {
	Name  string `json:"name"`
	Score int    `json:"Score"`
}

// RegisterPlayer creates a remote record with score 0 and returns its id.
// An unconfigured store yields an empty id with no error; the session
// stays local and the score simply does not sync.
func (c *Client) RegisterPlayer(ctx context.Context, name string) (string, error) {
	if !c.Configured() {
		return "", nil
	}

	body, err := json.Marshal(playerPayload{Name: name, Score: 0})
	if err != nil {
		return "", fmt.Errorf("marshal player: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/players", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("players store non-2xx: %d", resp.StatusCode)
	}

	var payload struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode player: %w", err)
	}
	return rawString(payload.ID), nil
}

// PushScore updates the remote record. It is fire-and-forget from the
// session's point of view; callers log and drop the returned error.
func (c *Client) PushScore(ctx context.Context, playerID, name string, score int) error {
	if !c.Configured() || playerID == "" {
		c.metrics.IncScorePush(metrics.StatusSkipped)
		return nil
	}

	body, err := json.Marshal(playerPayload{Name: name, Score: score})
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/players/"+playerID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncScorePush(metrics.StatusFailed)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		c.metrics.IncScorePush(metrics.StatusFailed)
		return fmt.Errorf("players store non-2xx: %d", resp.StatusCode)
	}
	c.metrics.IncScorePush(metrics.StatusOK)
	return nil
}

// FetchQuestions returns the raw question records, falling back to the
// bundled set on any failure. The entire set is fetched at once; the
// store has no pagination.
func (c *Client) FetchQuestions(ctx context.Context) []question.Raw {
	if !c.Configured() {
		c.metrics.IncPoolLoaded(metrics.SourceFallback)
		return question.Fallback()
	}

	if c.cache != nil {
		if cached, err := c.cache.GetQuestions(ctx); err == nil && cached != nil {
			c.metrics.IncPoolLoaded(metrics.SourceRemote)
			return cached
		}
	}

	records, err := c.fetchQuestions(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("question fetch failed, using fallback set")
		c.metrics.IncPoolLoaded(metrics.SourceFallback)
		return question.Fallback()
	}

	if c.cache != nil {
		if err := c.cache.SetQuestions(ctx, records); err != nil {
			c.logger.Debug().Err(err).Msg("question cache write failed")
		}
	}
	c.metrics.IncPoolLoaded(metrics.SourceRemote)
	return records
}

func (c *Client) fetchQuestions(ctx context.Context) ([]question.Raw, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/questions", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("questions store non-2xx: %d", resp.StatusCode)
	}

	var records []question.Raw
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return records, nil
}

// rawString renders a JSON id field whether the store sent a number or a
// string.
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
