package spotify

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetry(t *testing.T) {
	t.Run("transport error retries", func(t *testing.T) {
		_, retry := shouldRetry(nil, errors.New("dial tcp: refused"))
		assert.True(t, retry)
	})

	t.Run("success does not retry", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
		_, retry := shouldRetry(resp, nil)
		assert.False(t, retry)
	})

	t.Run("client error does not retry", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}}
		_, retry := shouldRetry(resp, nil)
		assert.False(t, retry)
	})

	t.Run("rate limit retries with retry-after", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "2")
		resp := &http.Response{StatusCode: http.StatusTooManyRequests, Header: header}
		delay, retry := shouldRetry(resp, nil)
		assert.True(t, retry)
		assert.Equal(t, 2*time.Second, delay)
	})

	t.Run("server error retries", func(t *testing.T) {
		resp := &http.Response{StatusCode: http.StatusBadGateway, Header: http.Header{}}
		_, retry := shouldRetry(resp, nil)
		assert.True(t, retry)
	})
}

func TestParseRetryAfter(t *testing.T) {
	t.Run("seconds", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "5")
		resp := &http.Response{Header: header}
		assert.Equal(t, 5*time.Second, parseRetryAfter(resp))
	})

	t.Run("absent", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		assert.Zero(t, parseRetryAfter(resp))
	})

	t.Run("http date in the future", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", time.Now().Add(10*time.Second).UTC().Format(http.TimeFormat))
		resp := &http.Response{Header: header}
		delay := parseRetryAfter(resp)
		assert.Greater(t, delay, 5*time.Second)
		assert.LessOrEqual(t, delay, 10*time.Second)
	})

	t.Run("garbage", func(t *testing.T) {
		header := http.Header{}
		header.Set("Retry-After", "soon")
		resp := &http.Response{Header: header}
		assert.Zero(t, parseRetryAfter(resp))
	})
}
