package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphqlEndpoint answers every query with the given body and records
// the last request payload.
func graphqlEndpoint(t *testing.T, body map[string]any) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastVariables map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		lastVariables = payload.Variables
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &lastVariables
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLeaderboardCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv, variables := graphqlEndpoint(t, map[string]any{
		"data": map[string]any{"v2Leaderboard": []any{
			map[string]any{"username": "integration_test", "rank": 1, "nmrStaked": "1.5"},
		}},
	})

	out, err := runCommand(t, "leaderboard", "--limit", "1", "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "integration_test")
	assert.Contains(t, out, `"nmrStaked": "1.5"`)
	assert.Equal(t, 1.0, (*variables)["limit"])
}

func TestCurrentRoundCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv, _ := graphqlEndpoint(t, map[string]any{
		"data": map[string]any{"rounds": []any{map[string]any{"number": 712}}},
	})

	out, err := runCommand(t, "current-round", "--endpoint", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "712\n", out)
}

func TestEndpointFromProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	srv, _ := graphqlEndpoint(t, map[string]any{
		"data": map[string]any{"rounds": []any{map[string]any{"number": 5}}},
	})
	require.NoError(t, SaveUserConfig(&UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{"default": {Endpoint: srv.URL}},
	}))

	out, err := runCommand(t, "current-round")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)
}

func TestVerbosityIsValidated(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := runCommand(t, "current-round", "--verbosity", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported verbosity")
}

func TestVersionCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "numerapi version")
}

func TestAuthenticatedCommandWithoutKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NUMERAI_PUBLIC_ID", "")
	t.Setenv("NUMERAI_SECRET_KEY", "")
	srv, _ := graphqlEndpoint(t, map[string]any{"data": map[string]any{}})

	_, err := runCommand(t, "account", "--endpoint", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api keys required")
}
