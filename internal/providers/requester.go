package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	maxBodyBytes  = 4 << 20
	snippetLength = 200
)

// HTTPClient is satisfied by *http.Client; tests inject their own.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryConfig controls adapter-level retries of transport failures.
// Rejected responses are never retried.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 0,
		RetryDelays: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			400 * time.Millisecond,
		},
	}
}

type requester struct {
	name   string
	client HTTPClient
	retry  RetryConfig
}

func newRequester(name string, client HTTPClient, timeout time.Duration, retry RetryConfig) *requester {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &requester{
		name:   name,
		client: client,
		retry:  retry,
	}
}

func (r *requester) getJSON(ctx context.Context, req *http.Request, action string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= r.retry.MaxRetries; attempt++ {
		if attempt > 0 && len(r.retry.RetryDelays) > 0 {
			delayIdx := attempt - 1
			if delayIdx >= len(r.retry.RetryDelays) {
				delayIdx = len(r.retry.RetryDelays) - 1
			}

			select {
			case <-time.After(r.retry.RetryDelays[delayIdx]):
			case <-ctx.Done():
				return NewTransportError(r.name, ctx.Err())
			}
		}

		err := r.do(req.Clone(ctx), action, out)
		if err == nil {
			return nil
		}

		var te *TransportError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func (r *requester) do(req *http.Request, action string, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return NewTransportError(r.name, fmt.Errorf("%s: %w", action, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return NewTransportError(r.name, fmt.Errorf("reading response while %s: %w", action, err))
	}

	if resp.StatusCode >= 400 {
		return NewProviderError(r.name, fmt.Errorf("%s error %d while %s: %s",
			r.name, resp.StatusCode, action, snippet(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || len(body) == 0 {
			contentType := resp.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "unknown"
			}
			return NewProviderError(r.name, fmt.Errorf(
				"%s returned a non-JSON response while %s (status %d, content-type %s): %s",
				r.name, action, resp.StatusCode, contentType, snippet(body)))
		}
		return NewProviderError(r.name, fmt.Errorf("unexpected %s payload while %s: %w", r.name, action, err))
	}

	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if s == "" {
		return "<empty body>"
	}
	if len(s) > snippetLength {
		return s[:snippetLength]
	}
	return s
}
