package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultHTTPTimeout bounds a single engine round trip. A picker user is
// waiting on it, so it is much shorter than a batch translator would use.
const DefaultHTTPTimeout = 15 * time.Second

// newHTTPClient returns the client shared by the HTTP engines.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// statusError is returned for non-2xx engine responses.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Body)
}

// postJSON sends payload to url as JSON and decodes the response into out.
func postJSON(ctx context.Context, hc *http.Client, logger *logrus.Entry, url string, header http.Header, payload, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return do(hc, logger, req, out)
}

// do executes req and decodes a JSON body into out.
func do(hc *http.Client, logger *logrus.Entry, req *http.Request, out any) error {
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		logger.WithError(err).WithField("url", req.URL.Redacted()).Debug("Engine request failed")
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	logger.WithFields(logrus.Fields{
		"status_code": resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("Engine request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &statusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get issues a GET and decodes a JSON body into out (which may be nil).
func get(ctx context.Context, hc *http.Client, logger *logrus.Entry, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return do(hc, logger, req, out)
}
