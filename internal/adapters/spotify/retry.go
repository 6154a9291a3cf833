package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const (
	maxRetries  = 3
	baseBackoff = 500 * time.Millisecond
)

// doRequestWithRetry retries 429 and 5xx responses with exponential
// backoff, honoring Retry-After when the API sends one. Requests here
// are GETs without bodies, so the request can be reused as-is.
func (c *Client) doRequestWithRetry(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("spotify: request canceled: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		retryAfter, retry := shouldRetry(resp, err)
		if !retry {
			return resp, err
		}

		if err != nil {
			c.log.Warn("retrying request", "attempt", attempt+1, "max", maxRetries, "error", err)
		} else {
			c.log.Warn("retrying request", "attempt", attempt+1, "max", maxRetries, "status", resp.StatusCode)
			_ = resp.Body.Close()
		}

		if attempt == maxRetries-1 {
			break
		}

		backoff := baseBackoff << attempt
		if retryAfter > 0 {
			backoff = retryAfter
		}
		if err := sleepWithContext(ctx, backoff); err != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("spotify: request failed after %d attempts", maxRetries)
}

func shouldRetry(resp *http.Response, err error) (time.Duration, bool) {
	if err != nil {
		return 0, true
	}
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return parseRetryAfter(resp), true
	}
	return 0, false
}

func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if when, err := http.ParseTime(retryAfter); err == nil {
		if until := time.Until(when); until > 0 {
			return until
		}
	}
	return 0
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("spotify: request canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
