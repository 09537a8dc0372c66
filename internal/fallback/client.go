// Package fallback sends queries the local index cannot answer to the
// remote reasoning endpoint and post-processes the returned rich text into
// renderable content.
//
// The exchange is a single opaque request/response. Failures degrade softly:
// callers map ErrNotConfigured and ErrUnavailable to static help messages,
// never to a user-visible error.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured means the endpoint answered 503: the reasoning service is
// not set up. A soft failure, not surfaced verbatim to the user.
var ErrNotConfigured = errors.New("fallback: reasoning endpoint not configured")

// ErrUnavailable covers transport failures, malformed responses, and
// responses without an answer. All are treated identically downstream.
var ErrUnavailable = errors.New("fallback: reasoning endpoint unavailable")

// RequestTimeout bounds one reasoning call; remote reasoning is slow but a
// stuck widget is worse.
const RequestTimeout = 60 * time.Second

// MaxAnswerBytes caps the response body.
const MaxAnswerBytes = 2 * 1024 * 1024

// DefaultContextTokens is the token budget for local results attached to a
// request (cl100k_base tokens, see tokens.go).
const DefaultContextTokens = 800

var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		Dial:                  (&net.Dialer{Timeout: 10 * time.Second}).Dial,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: RequestTimeout,
		DisableKeepAlives:     true,
	},
}

// request is the wire body of POST <endpoint>.
type request struct {
	Query         string   `json:"query"`
	IncludeLocal  bool     `json:"include_local,omitempty"`
	LocalResults  []string `json:"local_results,omitempty"`
	PreviousQuery string   `json:"previous_query,omitempty"`
}

// response is the wire answer, or an error envelope.
type response struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
	Error   string   `json:"error"`
}

// Answer is a post-processed reasoning reply ready for rendering.
type Answer struct {
	// HTML is an escaped renderable fragment.
	HTML string
	// Sources lists reference labels the endpoint returned, if any.
	Sources []string
}

// Client talks to the remote reasoning endpoint.
type Client struct {
	// Endpoint is the full URL of the reasoning service. Empty behaves as
	// not configured.
	Endpoint string

	// ContextTokens bounds the local results context (default
	// DefaultContextTokens).
	ContextTokens int

	// HTTPClient overrides the shared client (tests).
	HTTPClient *http.Client
}

// Ask sends one unanswered query. localResults carries rendered summaries of
// the best local matches (may be nil); previousQuery gives the endpoint
// follow-up context. The returned answer is already post-processed into a
// renderable fragment.
func (c *Client) Ask(ctx context.Context, query, previousQuery string, localResults []string) (*Answer, error) {
	if c.Endpoint == "" {
		return nil, ErrNotConfigured
	}

	budget := c.ContextTokens
	if budget <= 0 {
		budget = DefaultContextTokens
	}

	body := request{
		Query:         query,
		PreviousQuery: previousQuery,
	}
	if len(localResults) > 0 {
		body.IncludeLocal = true
		body.LocalResults = clipResults(localResults, budget)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "metodobot/0.1")

	client := c.HTTPClient
	if client == nil {
		client = httpClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		slog.Debug("reasoning endpoint not configured (503)")
		return nil, ErrNotConfigured
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAnswerBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	var wire response
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}
	if wire.Error != "" {
		slog.Debug("reasoning endpoint returned error envelope", "error", wire.Error)
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, wire.Error)
	}
	if resp.StatusCode != http.StatusOK || strings.TrimSpace(wire.Answer) == "" {
		return nil, fmt.Errorf("%w: no answer (status %d)", ErrUnavailable, resp.StatusCode)
	}

	htmlFragment, err := Renderable(wire.Answer)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &Answer{HTML: htmlFragment, Sources: wire.Sources}, nil
}

// clipResults trims the local results list to the token budget, keeping
// whole entries first and truncating the entry that crosses the budget.
func clipResults(results []string, budget int) []string {
	counter := sharedCounter()

	var kept []string
	used := 0
	for _, r := range results {
		n := counter.Count(r)
		if used+n <= budget {
			kept = append(kept, r)
			used += n
			continue
		}
		if remaining := budget - used; remaining > 0 {
			if partial := counter.Clip(r, remaining); partial != "" {
				kept = append(kept, partial)
			}
		}
		break
	}
	return kept
}
