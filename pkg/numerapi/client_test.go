package numerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// graphqlStub serves queued JSON responses and records every request it
// sees: the decoded GraphQL body and the Authorization header.
type graphqlStub struct {
	t *testing.T

	mu        sync.Mutex
	responses []stubResponse
	requests  []stubRequest
}

type stubResponse struct {
	status int
	body   map[string]any
}

type stubRequest struct {
	query         string
	variables     map[string]any
	authorization string
}

func newGraphQLStub(t *testing.T) *graphqlStub {
	return &graphqlStub{t: t}
}

func (g *graphqlStub) respond(body map[string]any) {
	g.respondStatus(http.StatusOK, body)
}

func (g *graphqlStub) respondStatus(status int, body map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.responses = append(g.responses, stubResponse{status: status, body: body})
}

func (g *graphqlStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	defer g.mu.Unlock()

	var payload struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	require.NoError(g.t, json.NewDecoder(r.Body).Decode(&payload))
	g.requests = append(g.requests, stubRequest{
		query:         payload.Query,
		variables:     payload.Variables,
		authorization: r.Header.Get("Authorization"),
	})

	require.NotEmpty(g.t, g.responses, "stub has no response queued")
	next := g.responses[0]
	g.responses = g.responses[1:]

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(next.status)
	if next.body != nil {
		require.NoError(g.t, json.NewEncoder(w).Encode(next.body))
	}
}

func (g *graphqlStub) requestCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *graphqlStub) request(i int) stubRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	require.Less(g.t, i, len(g.requests))
	return g.requests[i]
}

func data(inner map[string]any) map[string]any {
	return map[string]any{"data": inner}
}

// stubUploadTarget accepts a single signed-URL PUT, recording the body and
// the compute id header.
func stubUploadTarget(t *testing.T, body, computeID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*body = string(raw)
		*computeID = r.Header.Get("x_compute_id")
		w.WriteHeader(http.StatusOK)
	})
}

// stubFileServer serves the same content for every GET.
func stubFileServer(content string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(content)))
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, content)
	})
}

// newStubClient wires a Client to a stub server; extra options apply on
// top of the test defaults.
func newStubClient(t *testing.T, opts ...Option) (*Client, *graphqlStub) {
	stub := newGraphQLStub(t)
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	base := []Option{
		WithBaseURL(srv.URL),
		WithLogger(quietLogger()),
		WithProgressBars(false),
		WithRetries(3, time.Millisecond, 2),
	}
	return NewClient(append(base, opts...)...), stub
}

func TestNewClientDefaultTimeout(t *testing.T) {
	c := NewClient(WithLogger(quietLogger()))
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)

	// a caller-supplied client is used as-is
	custom := &http.Client{}
	c = NewClient(WithHTTPClient(custom), WithLogger(quietLogger()))
	assert.Same(t, custom, c.httpClient)
	assert.Zero(t, c.httpClient.Timeout)
}

func TestNewClientCredentials(t *testing.T) {
	t.Run("from options", func(t *testing.T) {
		c := NewClient(WithCredentials("pub", "sec"), WithLogger(quietLogger()))
		require.NotNil(t, c.Token())
		assert.Equal(t, "pub", c.Token().PublicID)
		assert.Equal(t, "sec", c.Token().SecretKey)
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv(EnvPublicID, "env-pub")
		t.Setenv(EnvSecretKey, "env-sec")
		c := NewClient(WithLogger(quietLogger()))
		require.NotNil(t, c.Token())
		assert.Equal(t, "env-pub", c.Token().PublicID)
		assert.Equal(t, "env-sec", c.Token().SecretKey)
	})

	t.Run("half a pair is dropped", func(t *testing.T) {
		t.Setenv(EnvPublicID, "env-pub")
		t.Setenv(EnvSecretKey, "")
		c := NewClient(WithLogger(quietLogger()))
		assert.Nil(t, c.Token())
	})

	t.Run("no credentials", func(t *testing.T) {
		t.Setenv(EnvPublicID, "")
		t.Setenv(EnvSecretKey, "")
		c := NewClient(WithLogger(quietLogger()))
		assert.Nil(t, c.Token())
	})
}

func TestRawQueryAuthorization(t *testing.T) {
	t.Run("missing keys fail before the network", func(t *testing.T) {
		t.Setenv(EnvPublicID, "")
		t.Setenv(EnvSecretKey, "")
		c, stub := newStubClient(t)

		_, err := c.RawQuery(context.Background(), "query { account { id } }", nil, true)
		require.ErrorIs(t, err, ErrAPIKeysRequired)
		assert.Equal(t, 0, stub.requestCount())
	})

	t.Run("token header carries both parts", func(t *testing.T) {
		c, stub := newStubClient(t, WithCredentials("pub", "sec"))
		stub.respond(data(map[string]any{"account": map[string]any{"id": "x"}}))

		_, err := c.RawQuery(context.Background(), "query { account { id } }", nil, true)
		require.NoError(t, err)
		assert.Equal(t, "Token pub$sec", stub.request(0).authorization)
	})

	t.Run("unauthorized queries send no header", func(t *testing.T) {
		c, stub := newStubClient(t, WithCredentials("pub", "sec"))
		stub.respond(data(map[string]any{"rounds": []any{}}))

		_, err := c.RawQuery(context.Background(), "query { rounds { number } }", nil, false)
		require.NoError(t, err)
		assert.Empty(t, stub.request(0).authorization)
	})
}

func TestRawQueryErrors(t *testing.T) {
	t.Run("errors payload becomes APIError with first message", func(t *testing.T) {
		c, stub := newStubClient(t)
		stub.respond(map[string]any{"errors": []any{
			map[string]any{"message": "first problem"},
			map[string]any{"message": "second problem"},
		}})

		_, err := c.RawQuery(context.Background(), "query {}", nil, false)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "first problem", apiErr.Message)
	})

	t.Run("detail object becomes APIError", func(t *testing.T) {
		c, stub := newStubClient(t)
		stub.respond(map[string]any{"errors": map[string]any{"detail": "not found"}})

		_, err := c.RawQuery(context.Background(), "query {}", nil, false)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "not found", apiErr.Message)
	})

	t.Run("4xx status is an error", func(t *testing.T) {
		c, stub := newStubClient(t)
		stub.respondStatus(http.StatusForbidden, nil)

		_, err := c.RawQuery(context.Background(), "query {}", nil, false)
		require.Error(t, err)
		var apiErr *APIError
		assert.False(t, errors.As(err, &apiErr))
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c := NewClient(WithBaseURL(srv.URL), WithLogger(quietLogger()))

		_, err := c.RawQuery(context.Background(), "query {}", nil, false)
		require.Error(t, err)
	})
}

func TestRawQueryRetriesServerErrors(t *testing.T) {
	t.Run("retries until success", func(t *testing.T) {
		c, stub := newStubClient(t)
		stub.respondStatus(http.StatusInternalServerError, nil)
		stub.respondStatus(http.StatusBadGateway, nil)
		stub.respond(data(map[string]any{"rounds": []any{}}))

		result, err := c.RawQuery(context.Background(), "query {}", nil, false)
		require.NoError(t, err)
		assert.Contains(t, result, "data")
		assert.Equal(t, 3, stub.requestCount())
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		c, stub := newStubClient(t, WithRetries(2, time.Millisecond, 2))
		stub.respondStatus(http.StatusInternalServerError, nil)
		stub.respondStatus(http.StatusInternalServerError, nil)

		_, err := c.RawQuery(context.Background(), "query {}", nil, false)
		require.Error(t, err)
		assert.Equal(t, 2, stub.requestCount())
	})

	t.Run("cancelled context stops the retry loop", func(t *testing.T) {
		c, stub := newStubClient(t, WithRetries(3, time.Minute, 2))
		stub.respondStatus(http.StatusInternalServerError, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.RawQuery(ctx, "query {}", nil, false)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, stub.requestCount())
	})
}

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("31a707d7-d8a4-4b4e-9b2e-00417bc2fbd3"))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID(""))
}

func TestSetGlobalDataDir(t *testing.T) {
	c := NewClient(WithLogger(quietLogger()))
	dir := t.TempDir() + "/nested/data"
	require.NoError(t, c.SetGlobalDataDir(dir))
	assert.DirExists(t, dir)
}
