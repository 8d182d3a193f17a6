package numerapi

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubQuantAPI(t *testing.T) (*QuantAPI, *graphqlStub) {
	stub := newGraphQLStub(t)
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	api := NewQuantAPI(
		WithBaseURL(srv.URL),
		WithLogger(quietLogger()),
		WithProgressBars(false),
		WithRetries(3, time.Millisecond, 2),
		WithCredentials("pub", "sec"),
	)
	return api, stub
}

func TestQuantGetLeaderboard(t *testing.T) {
	api, stub := newStubQuantAPI(t)
	stub.respond(data(map[string]any{"quantLeaderboard": []any{
		map[string]any{"username": "quant_test", "rank": 2.0, "sharpe": 1.1},
	}}))

	entries, err := api.GetLeaderboard(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "quant_test", entries[0]["username"])
}

func TestQuantUploadPredictions(t *testing.T) {
	api, stub := newStubQuantAPI(t)

	var putBody, putComputeID string
	upstream := httptest.NewServer(stubUploadTarget(t, &putBody, &putComputeID))
	t.Cleanup(upstream.Close)

	stub.respond(data(map[string]any{"submissionUploadQuantAuth": map[string]any{
		"filename": "1234_quant.csv",
		"url":      upstream.URL + "/signed",
	}}))
	stub.respond(data(map[string]any{"createQuantSubmission": map[string]any{"id": "quant-1"}}))

	id, err := api.UploadPredictionsFrom(context.Background(),
		strings.NewReader("ticker,signal\nA US,0.5\n"), "quant.csv", "model-id")
	require.NoError(t, err)
	assert.Equal(t, "quant-1", id)
	require.Equal(t, 2, stub.requestCount())
	assert.Equal(t, "1234_quant.csv", stub.request(1).variables["filename"])
}

func TestQuantPublicUserProfile(t *testing.T) {
	api, stub := newStubQuantAPI(t)
	stub.respond(data(map[string]any{"quantUserProfile": map[string]any{
		"username":  "quant_test",
		"startDate": "2021-03-01T00:00:00Z",
	}}))

	profile, err := api.PublicUserProfile(context.Background(), "quant_test")
	require.NoError(t, err)
	_, ok := profile["startDate"].(time.Time)
	assert.True(t, ok)
}

func TestCryptoTournamentID(t *testing.T) {
	api := NewCryptoAPI(WithLogger(quietLogger()))
	assert.Equal(t, 12, api.TournamentID())
}
