package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/rankedinc-cli/internal/company"
	"github.com/KaramelBytes/rankedinc-cli/internal/logger"
)

// DefaultSheetName is the worksheet holding the French company table.
const DefaultSheetName = "EntrepriseFR"

// FetchError reports a non-2xx response from the sheet export endpoint.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fetch %s: status=%d body=%s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s: status=%d", e.URL, e.StatusCode)
}

// Fetcher downloads CSV exports over HTTP with bounded retries on 429, 5xx
// and transient network errors.
type Fetcher struct {
	httpClient       *http.Client
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	baseURL          string
}

// NewFetcher returns a Fetcher; non-positive arguments fall back to defaults
// (60s timeout, 3 attempts, 500ms base delay, 4s delay cap).
func NewFetcher(httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *Fetcher {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	return &Fetcher{
		httpClient:       &http.Client{Timeout: httpTimeout},
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
		baseURL:          "https://docs.google.com",
	}
}

// WithBaseURL points sheet URLs at another host (used in tests).
func (f *Fetcher) WithBaseURL(base string) *Fetcher {
	cp := *f
	cp.baseURL = strings.TrimRight(base, "/")
	return &cp
}

// SheetURL builds the CSV export URL of a published Google Sheet.
func (f *Fetcher) SheetURL(sheetID, sheetName string) string {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	q := url.Values{}
	q.Set("tqx", "out:csv")
	q.Set("sheet", sheetName)
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s", f.baseURL, url.PathEscape(sheetID), q.Encode())
}

// FetchSheet resolves the sheet ID through locate and downloads the table.
func (f *Fetcher) FetchSheet(ctx context.Context, locate LocatorFunc, sheetName string) (company.RawTable, error) {
	id, err := locate()
	if err != nil {
		return company.RawTable{}, err
	}
	return f.FetchCSV(ctx, f.SheetURL(id, sheetName))
}

// FetchCSV downloads and parses a CSV document.
func (f *Fetcher) FetchCSV(ctx context.Context, rawURL string) (company.RawTable, error) {
	body, err := f.get(ctx, rawURL)
	if err != nil {
		return company.RawTable{}, err
	}
	return ReadCSV(bytes.NewReader(body), 0)
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	log := logger.WithComponent("source")
	backoff := f.retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= f.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := f.httpClient.Do(req)
		if err != nil {
			if isRetryableNetErr(err) && attempt < f.retryMaxAttempts {
				lastErr = err
				log.Debug("retrying fetch", "attempt", attempt, "error", err)
				if err := f.sleep(ctx, backoff, 0); err != nil {
					return nil, err
				}
				backoff *= 2
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if readErr != nil {
				return nil, fmt.Errorf("read body: %w", readErr)
			}
			return body, nil
		}

		snippet := string(body)
		if len(snippet) > 512 {
			snippet = snippet[:512]
		}
		lastErr = &FetchError{URL: rawURL, StatusCode: resp.StatusCode, Body: snippet}
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt == f.retryMaxAttempts {
			break
		}
		log.Debug("retrying fetch", "attempt", attempt, "status", resp.StatusCode)
		if err := f.sleep(ctx, backoff, retryAfter(resp.Header.Get("Retry-After"))); err != nil {
			return nil, err
		}
		backoff *= 2
	}
	return nil, lastErr
}

// sleep waits for the Retry-After hint when given, otherwise for backoff
// capped at the configured maximum.
func (f *Fetcher) sleep(ctx context.Context, backoff, hint time.Duration) error {
	d := backoff
	if hint > 0 {
		d = hint
	}
	if d > f.retryMaxDelay {
		d = f.retryMaxDelay
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if s, err := strconv.Atoi(v); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
