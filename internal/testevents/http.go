package testevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Submitter posts generated events to the service concurrently.
type Submitter struct {
	baseURL string
	client  *http.Client
	workers int
}

// NewSubmitter creates a submitter for the service at baseURL.
func NewSubmitter(baseURL string, workers int, timeout time.Duration) *Submitter {
	return &Submitter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		workers: workers,
	}
}

// Stats summarizes a submission run.
type Stats struct {
	Accepted   int64
	Duplicates int64
	Rejected   int64
	Failed     int64
}

// Submit posts all events using the configured worker count and returns
// per-outcome counts.
func (s *Submitter) Submit(ctx context.Context, events []Event) Stats {
	var stats Stats
	jobs := make(chan Event)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range jobs {
				s.post(ctx, e, &stats)
			}
		}()
	}

	for _, e := range events {
		select {
		case jobs <- e:
		case <-ctx.Done():
		}
	}
	close(jobs)
	wg.Wait()
	return stats
}

func (s *Submitter) post(ctx context.Context, e Event, stats *Stats) {
	payload, err := json.Marshal(e)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/events", bytes.NewReader(payload))
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		atomic.AddInt64(&stats.Failed, 1)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		atomic.AddInt64(&stats.Accepted, 1)
	case http.StatusOK:
		atomic.AddInt64(&stats.Duplicates, 1)
	case http.StatusTooManyRequests:
		atomic.AddInt64(&stats.Rejected, 1)
	default:
		atomic.AddInt64(&stats.Failed, 1)
	}
}

// Leaderboard fetches the top n ranking entries.
func (s *Submitter) Leaderboard(ctx context.Context, n int) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/leaderboard?limit=%d", s.baseURL, n)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build leaderboard request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("leaderboard returned status %d", resp.StatusCode)
	}
	var entries []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode leaderboard: %w", err)
	}
	return entries, nil
}
