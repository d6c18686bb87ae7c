/*
Package isdayoff implements calendar.Provider on top of the isdayoff.ru API.

PROTOCOL:
  GET {base}/api/getdata?year=2026&month=11&pre=1
    -> "0001100000110000011000001100000"   one digit per day
  GET {base}/api/getdata?year=2026&month=11&day=4&pre=1
    -> "1"

  Day codes:  0 working, 1 non-working, 2 shortened (working),
              4 working (pandemic-era code, still served for 2020).
  Error codes (whole body): 100 bad date, 101 no data, 199 service error.

RETRIES:
  429 and 5xx responses and transport errors are retried with exponential
  backoff. Other non-200 statuses fail immediately. The caller's context
  bounds the whole exchange, retries included.

SEE ALSO:
  - calendar/store.go: Provider interface
  - calendar/cache.go: how failures are absorbed
*/
package isdayoff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/warp/payday-engine/calendar"
)

const (
	// DefaultBaseURL is the public isdayoff.ru endpoint.
	DefaultBaseURL = "https://isdayoff.ru"

	// DefaultRetries is the number of attempts per request.
	DefaultRetries = 3

	// maxResponseSize caps the body; a month is at most 31 bytes.
	maxResponseSize = 4 * 1024

	userAgent = "payday-engine/1.0"
)

// retryBaseDelay is the base delay between retry attempts (variable for testing).
var retryBaseDelay = 200 * time.Millisecond

var (
	// ErrServiceCode is returned when the API answers with an error code.
	ErrServiceCode = errors.New("isdayoff error code")

	// ErrUnexpectedBody is returned for bodies that are neither day codes nor error codes.
	ErrUnexpectedBody = errors.New("unexpected isdayoff response")
)

// StatusError is a non-200 HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return calendar.ErrProvider }

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to isdayoff.ru.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Retries    int
	Logger     *zap.Logger
}

// New creates a client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, httpClient *http.Client, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
		Retries:    DefaultRetries,
		Logger:     logger,
	}
}

var _ calendar.Provider = (*Client)(nil)

// FetchMonth returns one working flag per day of the month.
func (c *Client) FetchMonth(ctx context.Context, year int, month time.Month) ([]bool, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("month", fmt.Sprintf("%02d", int(month)))
	q.Set("pre", "1")

	body, err := c.get(ctx, "month", q)
	if err != nil {
		return nil, err
	}
	days, err := parseDays(body)
	if err != nil {
		return nil, fmt.Errorf("month %s: %w", calendar.MonthKey(year, month), err)
	}
	if err := calendar.ValidateMonth(year, month, days); err != nil {
		return nil, err
	}
	return days, nil
}

// FetchDay reports whether d is a working day.
func (c *Client) FetchDay(ctx context.Context, d calendar.Date) (bool, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(d.Year()))
	q.Set("month", fmt.Sprintf("%02d", int(d.Month())))
	q.Set("day", fmt.Sprintf("%02d", d.Day()))
	q.Set("pre", "1")

	body, err := c.get(ctx, "day", q)
	if err != nil {
		return false, err
	}
	days, err := parseDays(body)
	if err != nil {
		return false, fmt.Errorf("day %s: %w", d.Key(), err)
	}
	if len(days) != 1 {
		return false, fmt.Errorf("day %s: %w: %d codes", d.Key(), ErrUnexpectedBody, len(days))
	}
	return days[0], nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (string, error) {
	target := c.BaseURL + "/api/getdata?" + q.Encode()
	start := time.Now()

	body, err := c.getWithRetry(ctx, target)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	requestDuration.WithLabelValues(endpoint, outcome).Observe(time.Since(start).Seconds())
	return body, err
}

func (c *Client) getWithRetry(ctx context.Context, target string) (string, error) {
	attempts := c.Retries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			c.Logger.Debug("retrying isdayoff request",
				zap.String("url", target), zap.Duration("delay", delay), zap.Int("attempt", attempt+1))
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %w", calendar.ErrProvider, ctx.Err())
			case <-time.After(delay):
			}
		}

		body, err := c.do(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return "", err
		}
		if ctx.Err() != nil {
			return "", err
		}
	}
	return "", lastErr
}

func (c *Client) do(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %w", calendar.ErrProvider, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{URL: target, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %w", calendar.ErrProvider, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// =============================================================================
// DECODING
// =============================================================================

// parseDays decodes a string of day codes.
func parseDays(body string) ([]bool, error) {
	switch body {
	case "100", "101", "199":
		return nil, fmt.Errorf("%w %s", ErrServiceCode, body)
	case "":
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedBody)
	}

	days := make([]bool, len(body))
	for i, code := range body {
		switch code {
		case '0', '2', '4':
			days[i] = true
		case '1':
			days[i] = false
		default:
			return nil, fmt.Errorf("%w: code %q at position %d", ErrUnexpectedBody, code, i+1)
		}
	}
	return days, nil
}
