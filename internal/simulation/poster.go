package simulation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Poster drains the simulation queue by POSTing each staged event to the
// events API, preserving the queue's chronological order.
type Poster struct {
	client  *redis.Client
	baseURL string
	http    *http.Client
}

// NewPoster creates a poster targeting the events API at baseURL.
func NewPoster(client *redis.Client, baseURL string, timeout time.Duration) *Poster {
	return &Poster{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Drain pops events until the queue is empty. A failed POST is logged and
// skipped, matching the at-least-effort contract of a test-data feeder;
// posting stops early only when the context is cancelled.
func (p *Poster) Drain(ctx context.Context) (posted int, failed int, err error) {
	for {
		if err := ctx.Err(); err != nil {
			return posted, failed, err
		}

		payload, err := p.client.LPop(ctx, QueueKey).Bytes()
		if errors.Is(err, redis.Nil) {
			slog.Info("[Simulation] Queue drained", "posted", posted, "failed", failed)
			return posted, failed, nil
		}
		if err != nil {
			return posted, failed, fmt.Errorf("dequeue event: %w", err)
		}

		if err := p.post(ctx, payload); err != nil {
			failed++
			slog.Error("[Simulation] Failed to post event", "error", err)
			continue
		}
		posted++
	}
}

func (p *Poster) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/v1/events", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("events API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
