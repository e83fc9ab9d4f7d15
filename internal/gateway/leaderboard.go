package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/historycanopy/game/internal/metrics"
)

// Entry is one row of the ranked leaderboard snapshot.
type Entry struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// playerRecord tolerates both score field casings the store has shipped.
// encoding/json falls back to case-insensitive matching, so the Score tag
// captures "score" as well.
type playerRecord struct {
	ID    json.RawMessage `json:"id"`
	Name  string          `json:"name"`
	Score json.RawMessage `json:"Score"`
}

// FetchLeaderboard returns the top entries sorted by descending score.
// Failures and an unconfigured store yield an empty board; the UI never
// sees an error here. Concurrent calls collapse into one store read.
func (c *Client) FetchLeaderboard(ctx context.Context) []Entry {
	if !c.Configured() {
		c.metrics.IncLeaderboardRead(metrics.StatusSkipped)
		return nil
	}

	if c.cache != nil {
		if cached, err := c.cache.GetLeaderboard(ctx); err == nil && cached != nil {
			c.metrics.IncLeaderboardRead(metrics.StatusOK)
			return cached
		}
	}

	v, err, _ := c.sf.Do("leaderboard", func() (interface{}, error) {
		return c.fetchLeaderboard(ctx)
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("leaderboard fetch failed")
		c.metrics.IncLeaderboardRead(metrics.StatusFailed)
		return nil
	}

	entries := v.([]Entry)
	if c.cache != nil {
		if cacheErr := c.cache.SetLeaderboard(ctx, entries); cacheErr != nil {
			c.logger.Debug().Err(cacheErr).Msg("leaderboard cache write failed")
		}
	}
	c.metrics.IncLeaderboardRead(metrics.StatusOK)
	return entries
}

func (c *Client) fetchLeaderboard(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/players", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("players store non-2xx: %d", resp.StatusCode)
	}

	var records []playerRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return c.rank(records), nil
}

// rank coerces scores, sorts descending and truncates to the top N.
func (c *Client) rank(records []playerRecord) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{
			ID:    rawString(rec.ID),
			Name:  rec.Name,
			Score: coerceScore(rec.Score),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	if len(entries) > c.topN {
		entries = entries[:c.topN]
	}
	return entries
}

// coerceScore parses a score that may arrive as a JSON number, a numeric
// string, or garbage. Anything non-numeric counts as 0.
func coerceScore(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(f)
		}
	}
	return 0
}
