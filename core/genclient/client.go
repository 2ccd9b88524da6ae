// Package genclient implements the asynchronous job protocol shared by
// submit-then-poll generation backends: POST a generation request, poll
// its status until terminal, download the produced asset. The "done"
// predicate stays with the caller because every vendor encodes
// completion differently; only the loop lives here.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

var (
	// ErrSubmission indicates the vendor rejected the generation request
	// or returned no generation identifier.
	ErrSubmission = errors.New("generation submission failed")

	// ErrPollTimeout indicates the polling attempt budget was exhausted
	// before the completion predicate held.
	ErrPollTimeout = errors.New("generation polling timed out")

	// ErrDownload indicates the asset fetch failed.
	ErrDownload = errors.New("asset download failed")
)

// Client talks to one submit/poll/download backend. It keeps no state
// between calls beyond the pooled HTTP connection, so a single instance
// may be shared across requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the given API base URL. The key is sent as a
// bearer token on every request.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetTimeout overrides the per-request HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// Submit posts a generation payload and returns the vendor-assigned
// generation id, found under "id" or "generation_id" in the response.
func (c *Client) Submit(ctx context.Context, endpoint string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", ErrSubmission, resp.StatusCode, truncate(respBody, 512))
	}

	var decoded Status
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrSubmission, err)
	}

	id := decoded.FirstString("id", "generation_id")
	if id == "" {
		return "", fmt.Errorf("%w: no generation id in response", ErrSubmission)
	}
	return id, nil
}

// PollStatus performs a single status check for a generation id. No retry.
func (c *Client) PollStatus(ctx context.Context, endpoint, id string) (Status, error) {
	u := c.baseURL + endpoint + "?generation_id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll status: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("poll status %s: status %d: %s", id, resp.StatusCode, truncate(respBody, 512))
	}

	var decoded Status
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return decoded, nil
}

// WaitForCompletion polls until done(status) holds, sleeping interval
// between attempts. The sleep observes ctx, so a concurrent sync over
// other jobs is never blocked and the caller holds an external abort.
// After maxAttempts unsatisfied polls it fails with ErrPollTimeout.
func (c *Client) WaitForCompletion(ctx context.Context, endpoint, id string, done func(Status) bool, interval time.Duration, maxAttempts int) (Status, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			}
		}

		status, err := c.PollStatus(ctx, endpoint, id)
		if err != nil {
			return nil, err
		}
		if done(status) {
			return status, nil
		}
	}
	return nil, fmt.Errorf("%w: %s not complete after %d attempts", ErrPollTimeout, id, maxAttempts)
}

// DownloadFile fetches the asset at url fully into memory.
func (c *Client) DownloadFile(ctx context.Context, assetURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d fetching %s", ErrDownload, resp.StatusCode, assetURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrDownload, err)
	}
	return data, nil
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
