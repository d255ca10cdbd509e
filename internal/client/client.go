// Package client talks to the game API: it submits bot programs, logs users
// in and lists submissions. Every call is a single request; nothing is
// retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"pacman/internal/contract"
	"pacman/internal/logging"
)

// Requests slower than this are logged as warnings.
const slowRequestThreshold = 2 * time.Second

// Config configures a Client.
type Config struct {
	// BaseURL is the scheme and host of the game server, e.g. http://localhost:8000.
	BaseURL string
	// Timeout bounds each request. Zero leaves the transport default.
	Timeout time.Duration
}

// Client is a game API client. It keeps the credential cookies handed out by
// Authenticate and replays them on later requests.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client with its own cookie jar.
func New(cfg Config) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
	}, nil
}

// BaseURL returns the server address requests go to.
func (c *Client) BaseURL() string { return c.baseURL }

// endpoint resolves path against the base URL. Only absolute http(s) URLs
// are accepted.
func (c *Client) endpoint(path string) (string, *RequestError) {
	raw := c.baseURL + path
	u, err := url.Parse(raw)
	if err != nil {
		return raw, &RequestError{Kind: KindBadURL, URL: raw, Err: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return raw, &RequestError{Kind: KindBadURL, URL: raw}
	}
	return u.String(), nil
}

// do sends one request and returns the body of a 2xx response. Any other
// outcome is a *RequestError.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	target, reqErr := c.endpoint(path)
	if reqErr != nil {
		return nil, reqErr
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, &RequestError{Kind: KindBadURL, URL: target, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	timer := logging.StartTimer(logging.CategoryAPI, method+" "+path)
	defer timer.StopWithThreshold(slowRequestThreshold)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.APIWarn("%s %s failed: %v", method, target, err)
		return nil, transportError(target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.APIWarn("%s %s: reading body failed: %v", method, target, err)
		return nil, transportError(target, err)
	}

	logging.APIDebug("%s %s -> %d (%d bytes)", method, target, resp.StatusCode, len(data))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Kind: KindBadStatus, URL: target, Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// Authenticate logs in. On success the server's credential cookies are
// stored for later calls; a 401 yields ErrIncorrectCredentials.
func (c *Client) Authenticate(ctx context.Context, user, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/authenticate", contract.Authenticate{
		User:     user,
		Password: password,
	})
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) && reqErr.Kind == KindBadStatus && reqErr.Status == http.StatusUnauthorized {
			logging.Login("authentication rejected for %q", user)
			return ErrIncorrectCredentials
		}
		return err
	}
	logging.Login("authenticated as %q", user)
	return nil
}

// Submissions fetches the submission log.
func (c *Client) Submissions(ctx context.Context) (*contract.Submissions, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/submissions", nil)
	if err != nil {
		return nil, err
	}
	var subs contract.Submissions
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, &RequestError{Kind: KindBadBody, Body: err.Error(), Err: err}
	}
	return &subs, nil
}
