package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-hubspace/internal/device"
)

const (
	// maxRetries bounds attempts per request; rate-limited attempts
	// pause retryBackoff times the attempt number before retrying.
	maxRetries   = 3
	retryBackoff = 250 * time.Millisecond

	defaultTimeout = 30 * time.Second
)

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// tokenSource supplies access tokens for requests.
type tokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures optional client behavior. The zero value selects
// production endpoints and a default HTTP client.
type Options struct {
	Endpoints  Endpoints
	HTTPClient *http.Client
}

// Client talks to the cloud service on behalf of one account.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	auth      tokenSource
	endpoints Endpoints
	http      *http.Client
	log       Logger

	mu        sync.Mutex
	accountID string
}

// NewClient builds a client for the given login. Pass nil opts for
// production defaults.
func NewClient(username, password string, opts *Options) *Client {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.Endpoints == (Endpoints{}) {
		o.Endpoints = DefaultEndpoints()
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		auth:      NewAuthenticator(username, password, o.Endpoints, o.HTTPClient),
		endpoints: o.Endpoints,
		http:      o.HTTPClient,
		log:       noopLogger{},
	}
}

// SetLogger sets the logger for request diagnostics.
func (c *Client) SetLogger(log Logger) {
	c.log = log
	if auth, ok := c.auth.(*Authenticator); ok {
		auth.SetLogger(log)
	}
}

// AccountID returns the account behind the login, querying the
// service once and caching the answer.
func (c *Client) AccountID(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.accountID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	c.log.Debug("querying service for account id")
	status, body, err := c.request(ctx, http.MethodGet, c.endpoints.AccountURL, c.endpoints.AccountHost, nil, "")
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("%w: account lookup returned status %d", ErrInvalidResponse, status)
	}

	var payload struct {
		AccountAccess []struct {
			Account struct {
				AccountID string `json:"accountId"`
			} `json:"account"`
		} `json:"accountAccess"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode account response: %w", ErrInvalidResponse, err)
	}
	if len(payload.AccountAccess) == 0 || payload.AccountAccess[0].Account.AccountID == "" {
		return "", fmt.Errorf("%w: login has no account access", ErrInvalidResponse)
	}

	c.mu.Lock()
	c.accountID = payload.AccountAccess[0].Account.AccountID
	cached = c.accountID
	c.mu.Unlock()
	return cached, nil
}

// FetchSnapshots retrieves the full device fleet with expanded state.
func (c *Client) FetchSnapshots(ctx context.Context) ([]*device.Snapshot, error) {
	accountID, err := c.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	c.log.Debug("querying service for all devices")
	url := c.endpoints.MetadevicesURL(accountID) + "?expansions=state"
	status, body, err := c.request(ctx, http.MethodGet, url, c.endpoints.DataHost, nil, "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: metadevice listing returned status %d", ErrInvalidResponse, status)
	}

	snaps, err := device.DecodeSnapshots(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return snaps, nil
}

// stateUpdate is the wire shape of a state push.
type stateUpdate struct {
	MetadeviceID string         `json:"metadeviceId"`
	Values       []device.State `json:"values"`
}

// PushState applies state values to one device and returns the states
// the service reports back as applied.
func (c *Client) PushState(ctx context.Context, deviceID string, values []device.State) ([]device.State, error) {
	accountID, err := c.AccountID(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(stateUpdate{MetadeviceID: deviceID, Values: values})
	if err != nil {
		return nil, fmt.Errorf("encode state update: %w", err)
	}

	c.log.Debug("pushing state", "device_id", deviceID, "values", len(values))
	status, body, err := c.request(ctx, http.MethodPut,
		c.endpoints.StateURL(accountID, deviceID), c.endpoints.DataHost,
		payload, "application/json; charset=utf-8")
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: state update rejected", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: device %s", ErrNotFound, deviceID)
	default:
		return nil, fmt.Errorf("%w: state update returned status %d", ErrInvalidResponse, status)
	}

	var applied struct {
		Values []device.State `json:"values"`
	}
	if err := json.Unmarshal(body, &applied); err != nil {
		return nil, fmt.Errorf("%w: decode state response: %w", ErrInvalidResponse, err)
	}
	return applied.Values, nil
}

// request performs one authenticated call with the service's retry
// discipline. Rate-limit (429) and unavailable (503) answers retry
// with a growing pause; 403 fails immediately as an auth error;
// network faults surface as transient without retry, the next poll
// covers them.
func (c *Client) request(ctx context.Context, method, rawURL, host string, body []byte, contentType string) (int, []byte, error) {
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			wait := time.Duration(attempt) * retryBackoff
			c.log.Debug("retrying request", "url", rawURL, "attempt", attempt, "wait", wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			}
		}

		token, err := c.auth.Token(ctx)
		if err != nil {
			return 0, nil, err
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", defaultUserAgent)
		req.Header.Set("Authorization", "Bearer "+token)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if host != "" {
			req.Host = host
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %s %s: %w", ErrTransient, method, rawURL, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			continue
		}
		if resp.StatusCode == http.StatusForbidden {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return 0, nil, fmt.Errorf("%w: service returned status 403", ErrInvalidAuth)
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return 0, nil, fmt.Errorf("%w: read response: %w", ErrTransient, err)
		}
		return resp.StatusCode, data, nil
	}
	return 0, nil, ErrExceededRetries
}
