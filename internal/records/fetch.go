package records

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// MaxPayloadBytes caps record payloads; the methodology table is small and
// anything beyond this is a misconfigured source.
const MaxPayloadBytes = 10 * 1024 * 1024

// HTTPRequestTimeout bounds one fetch attempt end to end.
const HTTPRequestTimeout = 15 * time.Second

// phase timeouts derived from HTTPRequestTimeout
var (
	httpDialTimeout           = HTTPRequestTimeout / 3
	httpTLSTimeout            = HTTPRequestTimeout / 3
	httpResponseHeaderTimeout = HTTPRequestTimeout / 2
)

// httpClient is shared across load attempts; safe for concurrent use.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		Dial: (&net.Dialer{
			Timeout: httpDialTimeout,
		}).Dial,
		TLSHandshakeTimeout:   httpTLSTimeout,
		ResponseHeaderTimeout: httpResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// Loader acquires the record set with a bounded retry policy. Source order:
// the records API (retried), then the rendered table page, then a local
// JSON file. When every source fails, Load returns ErrNoData so the caller
// can distinguish "nothing searchable" from "nothing found".
type Loader struct {
	// APIURL is the JSON endpoint (GET, array of records). Empty disables it.
	APIURL string
	// TablePage is a URL or file path of an HTML page carrying the rendered
	// methodology table. Empty disables the scrape fallback.
	TablePage string
	// LocalFile is a JSON file used as the last resort, or "-" for stdin.
	LocalFile string

	// MaxAttempts bounds API retries (default 3). Backoff is linear:
	// Backoff, 2*Backoff, ... between attempts (default 1s steps).
	MaxAttempts int
	Backoff     time.Duration
}

// Load fetches, decodes, and validates the record set from the first source
// that yields records. ctx cancels in-flight requests and backoff waits.
func (l *Loader) Load(ctx context.Context) ([]Record, error) {
	attempts := l.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := l.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var firstErr error

	if l.APIURL != "" {
		recs, err := l.loadAPI(ctx, attempts, backoff)
		if err == nil && len(recs) > 0 {
			slog.Debug("records loaded from API", "count", len(recs))
			return recs, nil
		}
		firstErr = err
		slog.Debug("API source exhausted", "error", err)
	}

	if l.TablePage != "" {
		recs, err := l.loadTable(ctx)
		if err == nil && len(recs) > 0 {
			slog.Debug("records scraped from table page", "count", len(recs))
			return recs, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		slog.Debug("table source exhausted", "error", err)
	}

	if l.LocalFile != "" {
		recs, err := l.loadFile()
		if err == nil && len(recs) > 0 {
			slog.Debug("records loaded from local file", "count", len(recs))
			return recs, nil
		}
		if firstErr == nil {
			firstErr = err
		}
		slog.Debug("local file source exhausted", "error", err)
	}

	if firstErr != nil {
		return nil, fmt.Errorf("%w (last error: %v)", ErrNoData, firstErr)
	}
	return nil, ErrNoData
}

// loadAPI fetches the JSON endpoint with linear backoff between attempts.
func (l *Loader) loadAPI(ctx context.Context, attempts int, backoff time.Duration) ([]Record, error) {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt-1) * backoff
			slog.Debug("retrying records API", "attempt", attempt, "wait", wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		data, err := fetchBody(ctx, l.APIURL)
		if err != nil {
			lastErr = err
			continue
		}

		recs, err := DecodeRecords(data)
		if err != nil {
			// a non-array payload will not improve on retry
			return nil, err
		}
		return recs, nil
	}
	return nil, fmt.Errorf("records API failed after %d attempts: %w", attempts, lastErr)
}

func (l *Loader) loadTable(ctx context.Context) ([]Record, error) {
	reader, err := openSource(ctx, l.TablePage)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return ScrapeTable(reader)
}

func (l *Loader) loadFile() ([]Record, error) {
	var data []byte
	var err error
	if l.LocalFile == "-" {
		data, err = io.ReadAll(io.LimitReader(os.Stdin, MaxPayloadBytes))
	} else {
		data, err = os.ReadFile(l.LocalFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %q: %w", l.LocalFile, err)
	}
	return DecodeRecords(data)
}

// openSource returns a reader for a URL or local path.
func openSource(ctx context.Context, source string) (io.ReadCloser, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request for %q: %w", source, err)
		}
		req.Header.Set("User-Agent", "metodobot/0.1")

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %q: %w", source, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %d fetching %q", resp.StatusCode, source)
		}
		return readCloser{Reader: io.LimitReader(resp.Body, MaxPayloadBytes), Closer: resp.Body}, nil
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", source, err)
	}
	return f, nil
}

// fetchBody reads a full URL body within the payload cap.
func fetchBody(ctx context.Context, url string) ([]byte, error) {
	reader, err := openSource(ctx, url)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %q: %w", url, err)
	}
	return data, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
