// Package httpclient builds the retrying HTTP clients used for the portal and
// species services.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dbsmedya/gisadmin/internal/logger"
)

// UserAgent is sent with every request.
const UserAgent = "gisadmin"

// maxErrorBody bounds how much of a failed response is quoted in errors.
const maxErrorBody = 512

// New returns a client that retries connection errors and 5xx/429 responses
// up to retryMax times. Once retries run out the last response is returned,
// so Do reports it as a *StatusError. A non-positive timeout leaves requests
// unbounded.
func New(timeout time.Duration, retryMax int, log *logger.Logger) *retryablehttp.Client {
	if log == nil {
		log = logger.NewNop()
	}

	c := retryablehttp.NewClient()
	c.RetryMax = retryMax
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 5 * time.Second
	c.CheckRetry = retryablehttp.ErrorPropagatedRetryPolicy
	c.ErrorHandler = retryablehttp.PassthroughErrorHandler
	c.Logger = leveledLogger{log}
	if timeout > 0 {
		c.HTTPClient.Timeout = timeout
	}
	return c
}

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// GetJSON fetches url and decodes the JSON body into out.
func GetJSON(ctx context.Context, c *retryablehttp.Client, url string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return Do(c, req, out)
}

// Do sends req and decodes a 2xx JSON response into out. Other statuses,
// including a 5xx that outlasted the retries, return a *StatusError.
func Do(c *retryablehttp.Client, req *retryablehttp.Request, out interface{}) error {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if resp == nil {
		if err == nil {
			err = fmt.Errorf("no response from %s", req.URL.Redacted())
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: req.URL.Redacted(), StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Redacted(), err)
	}
	return nil
}

// leveledLogger routes retryablehttp's logging to zap.
type leveledLogger struct {
	l *logger.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.l.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.l.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.l.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.l.Warnw(msg, keysAndValues...)
}

var _ retryablehttp.LeveledLogger = leveledLogger{}
