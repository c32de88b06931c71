package providers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	calls     int
	responses []func() (*http.Response, error)
}

func (s *stubClient) Do(req *http.Request) (*http.Response, error) {
	idx := s.calls
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	s.calls++
	return s.responses[idx]()
}

func okResponse(body string) func() (*http.Response, error) {
	return func() (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func failure() (*http.Response, error) {
	return nil, errors.New("connection reset by peer")
}

func TestRequesterRetriesTransportErrors(t *testing.T) {
	client := &stubClient{responses: []func() (*http.Response, error){failure, failure, okResponse(`{"ok": true}`)}}
	r := newRequester("Test", client, 0, RetryConfig{MaxRetries: 2, RetryDelays: []time.Duration{time.Millisecond}})

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	var out struct{ OK bool }
	require.NoError(t, r.getJSON(context.Background(), req, "testing", &out))
	assert.True(t, out.OK)
	assert.Equal(t, 3, client.calls)
}

func TestRequesterGivesUpAfterMaxRetries(t *testing.T) {
	client := &stubClient{responses: []func() (*http.Response, error){failure}}
	r := newRequester("Test", client, 0, RetryConfig{MaxRetries: 1, RetryDelays: []time.Duration{time.Millisecond}})

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	var out struct{}
	err = r.getJSON(context.Background(), req, "testing", &out)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Test: network error testing: connection reset by peer", te.Error())
}

func TestRequesterDoesNotRetryRejectedResponses(t *testing.T) {
	calls := 0
	client := &stubClient{responses: []func() (*http.Response, error){func() (*http.Response, error) {
		calls++
		return &http.Response{
			StatusCode: http.StatusBadRequest,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(strings.Repeat("x", 500))),
		}, nil
	}}}
	r := newRequester("Test", client, 0, RetryConfig{MaxRetries: 3})

	req, err := http.NewRequest(http.MethodGet, "http://example.invalid/", nil)
	require.NoError(t, err)

	var out struct{}
	err = r.getJSON(context.Background(), req, "testing", &out)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Test error 400 while testing: "+strings.Repeat("x", 200), pe.Err.Error())
}
