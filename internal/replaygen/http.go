package replaygen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

var errNotReady = errors.New("summary not ready")

// Client talks to the replay service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

type submitResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

// SummaryView is the part of the match document verification reads.
type SummaryView struct {
	GameID            string  `json:"GameId"`
	TotalEliminations uint64  `json:"TotalEliminations"`
	TotalSpawns       uint64  `json:"TotalSpawns"`
	Winner            *string `json:"winner"`
	Players           map[string]struct {
		Kills  uint64 `json:"Kills"`
		Deaths uint64 `json:"Deaths"`
	} `json:"Players"`
}

// Healthy checks GET /healthz.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

// Submit posts a capture and returns the job id.
func (c *Client) Submit(ctx context.Context, capture []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/replays", bytes.NewReader(capture))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read submit response: %w", err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("submit returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var ack submitResponse
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	return ack.JobID, nil
}

func (c *Client) summary(ctx context.Context, gameID string) (*SummaryView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/matches/"+gameID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errNotReady
	default:
		return nil, fmt.Errorf("fetch summary returned %d", resp.StatusCode)
	}
	var s SummaryView
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	return &s, nil
}

// AwaitSummary polls until the match is stored or wait elapses.
func (c *Client) AwaitSummary(ctx context.Context, gameID string, wait time.Duration) (*SummaryView, error) {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		s, err := c.summary(ctx, gameID)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, errNotReady) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("game %s: %w", gameID, ctx.Err())
		case <-ticker.C:
		}
	}
}
