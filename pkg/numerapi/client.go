// Package numerapi is a Go client for the Numerai tournament GraphQL API.
//
// A Client carries the shared operations (account, models, rounds, stake,
// datasets); NumerAPI, SignalsAPI, QuantAPI and CryptoAPI wrap it with the
// per-tournament operations. Most read operations work unauthenticated;
// anything touching your account needs a credential pair, either passed
// via WithCredentials or read from the NUMERAI_PUBLIC_ID and
// NUMERAI_SECRET_KEY environment variables.
package numerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/uuazed/numerapi-go/internal/download"
)

// APITournamentURL is the fixed GraphQL endpoint.
const APITournamentURL = "https://api-tournament.numer.ai"

// defaultTimeout bounds a GraphQL round trip so a hung server cannot
// block a non-cancelled call forever.
const defaultTimeout = 10 * time.Minute

// Environment variables consulted when credentials are not passed
// explicitly.
const (
	EnvPublicID  = "NUMERAI_PUBLIC_ID"
	EnvSecretKey = "NUMERAI_SECRET_KEY"
)

// Credentials is the two-part API token generated at
// numer.ai -> Account -> Custom API keys.
type Credentials struct {
	PublicID  string
	SecretKey string
}

// Client talks to the tournament GraphQL endpoint. Construct it with
// NewClient, or through one of the flavor constructors.
type Client struct {
	url          string
	creds        *Credentials
	httpClient   *http.Client
	logger       *slog.Logger
	showProgress bool
	tournamentID int
	dataDir      string

	retries      int
	retryDelay   time.Duration
	retryBackoff int

	downloader *download.Downloader
}

// Option configures a Client.
type Option func(*Client)

// WithCredentials sets the credential pair explicitly, overriding the
// environment.
func WithCredentials(publicID, secretKey string) Option {
	return func(c *Client) { c.creds = &Credentials{PublicID: publicID, SecretKey: secretKey} }
}

// WithBaseURL overrides the GraphQL endpoint, mainly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient replaces the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithProgressBars toggles download progress rendering.
func WithProgressBars(show bool) Option {
	return func(c *Client) { c.showProgress = show }
}

// WithRetries tunes the 5xx retry policy: number of attempts, initial
// delay and the multiplier applied to the delay after each failure.
func WithRetries(retries int, delay time.Duration, backoff int) Option {
	return func(c *Client) {
		c.retries = retries
		c.retryDelay = delay
		c.retryBackoff = backoff
	}
}

// NewClient builds a Client with the default endpoint and retry policy.
func NewClient(opts ...Option) *Client {
	c := &Client{
		url:          APITournamentURL,
		logger:       slog.Default(),
		showProgress: true,
		dataDir:      ".",
		retries:      3,
		retryDelay:   5 * time.Second,
		retryBackoff: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.creds == nil {
		c.creds = credentialsFromEnv()
	}
	// both parts or nothing, never one alone
	if c.creds != nil && (c.creds.PublicID == "" || c.creds.SecretKey == "") {
		c.logger.Warn("you need to supply both a public id and a secret key")
		c.creds = nil
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
		// downloads stream files larger than any whole-request timeout
		// allows, so their client only bounds the response headers
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.ResponseHeaderTimeout = defaultTimeout
		c.downloader = download.New(&http.Client{Transport: tr}, c.logger)
	} else {
		c.downloader = download.New(c.httpClient, c.logger)
	}
	return c
}

func credentialsFromEnv() *Credentials {
	publicID := os.Getenv(EnvPublicID)
	secretKey := os.Getenv(EnvSecretKey)
	if publicID == "" && secretKey == "" {
		return nil
	}
	return &Credentials{PublicID: publicID, SecretKey: secretKey}
}

// Token returns the configured credential pair, or nil when the client is
// unauthenticated.
func (c *Client) Token() *Credentials { return c.creds }

// TournamentID returns the tournament this client addresses.
func (c *Client) TournamentID() int { return c.tournamentID }

// SetGlobalDataDir sets the directory used for file downloads, creating it
// if necessary.
func (c *Client) SetGlobalDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir %s: %w", dir, err)
	}
	c.dataDir = dir
	return nil
}

// RawQuery sends a raw GraphQL query to the tournament API and returns the
// decoded body. Build your own queries with it, or use the typed
// operations.
//
// With authorization set, the credential pair is attached as a composite
// Authorization header; a missing pair fails with ErrAPIKeysRequired
// before any network call. Server errors (5xx) are retried per the
// client's retry policy. Any transport failure is returned as an error;
// an errors payload in the body is returned as *APIError.
func (c *Client) RawQuery(ctx context.Context, query string, variables map[string]any, authorization bool) (map[string]any, error) {
	var auth string
	if authorization {
		if c.creds == nil {
			return nil, ErrAPIKeysRequired
		}
		auth = fmt.Sprintf("Token %s$%s", c.creds.PublicID, c.creds.SecretKey)
	}

	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	c.logger.Debug("raw query", "body", string(body))

	return c.post(ctx, body, auth)
}

// post performs the HTTP exchange, retrying 5xx responses with an
// increasing delay.
func (c *Client) post(ctx context.Context, body []byte, auth string) (map[string]any, error) {
	delay := c.retryDelay
	attempts := c.retries
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("post query: %w", err)
		}

		if resp.StatusCode >= 500 && resp.StatusCode < 600 && attempts > 1 {
			resp.Body.Close()
			attempts--
			c.logger.Warn("server error, retrying",
				"status", resp.StatusCode, "delay", delay, "attempts_left", attempts)
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("post query: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= time.Duration(c.retryBackoff)
			continue
		}

		result, err := decodeResponse(resp)
		if err != nil {
			return nil, err
		}
		if errs, ok := result["errors"]; ok {
			return nil, apiError(errs)
		}
		return result, nil
	}
}

func decodeResponse(resp *http.Response) (map[string]any, error) {
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("post query: unexpected status %s", resp.Status)
	}
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}

// dataPath walks result["data"] down the given keys.
func dataPath(result map[string]any, keys ...string) (any, error) {
	var cur any = result
	path := append([]string{"data"}, keys...)
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected response shape at %q", key)
		}
		cur = m[key]
	}
	return cur, nil
}

// dataMap is dataPath for a mapping leaf.
func dataMap(result map[string]any, keys ...string) (map[string]any, error) {
	v, err := dataPath(result, keys...)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected object at %q", keys[len(keys)-1])
	}
	return m, nil
}

// dataList is dataPath for a list-of-mappings leaf.
func dataList(result map[string]any, keys ...string) ([]map[string]any, error) {
	v, err := dataPath(result, keys...)
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list at %q", keys[len(keys)-1])
	}
	items := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object inside %q", keys[len(keys)-1])
		}
		items = append(items, m)
	}
	return items, nil
}

// IsValidUUID reports whether val parses as a UUID. Model identifiers are
// UUIDs, so this is handy for validating them before a round trip.
func IsValidUUID(val string) bool {
	_, err := uuid.Parse(val)
	return err == nil
}
