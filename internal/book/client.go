// Package book queries the Lichess opening-explorer database to decide
// whether a position is still inside known opening theory.
package book

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// defaultBaseURL is the Lichess opening explorer endpoint.
const defaultBaseURL = "https://explorer.lichess.ovh"

// minGames is the qualifying-game threshold: a position reached in at
// least this many rated games counts as in theory.
const minGames = 10

// Retry policy for transient failures before reporting "unknown".
const (
	maxRetries   = 2
	retryBackoff = 2 * time.Second
)

// explorerResponse holds the fields we need from the /lichess endpoint.
type explorerResponse struct {
	White int `json:"white"`
	Draws int `json:"draws"`
	Black int `json:"black"`
}

// Client is a rate-limited opening-explorer client. The limiter is the
// injected throttle state: it paces every outgoing call, shared across
// the whole analysis run.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a client that spaces calls at least minSpacing apart.
func NewClient(minSpacing time.Duration) *Client {
	if minSpacing <= 0 {
		minSpacing = 50 * time.Millisecond
	}
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(minSpacing), 1),
	}
}

// InTheory reports whether the position reached by the given UCI move
// sequence (from the starting position) appears in at least minGames
// rated games. Transient failures are retried a bounded number of times
// with backoff; a final failure is returned as an error so the caller can
// record "unknown" rather than "not in theory".
func (c *Client) InTheory(ctx context.Context, moves []string) (bool, error) {
	q := url.Values{}
	q.Set("variant", "standard")
	q.Set("play", strings.Join(moves, ","))
	q.Set("speeds", "blitz,rapid,classical")
	q.Set("modes", "rated")
	endpoint := c.baseURL + "/lichess?" + q.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * retryBackoff):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}
		// The throttle runs before every call, retries included.
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}

		total, err := c.query(ctx, endpoint)
		if err == nil {
			return total >= minGames, nil
		}
		lastErr = err
	}
	return false, fmt.Errorf("opening lookup failed after %d attempts: %w", maxRetries+1, lastErr)
}

func (c *Client) query(ctx context.Context, endpoint string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "chessforensics/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("GET %s: HTTP %d", c.baseURL, resp.StatusCode)
	}
	var er explorerResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return 0, err
	}
	return er.White + er.Draws + er.Black, nil
}
