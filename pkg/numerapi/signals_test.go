package numerapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubSignalsAPI(t *testing.T, opts ...Option) (*SignalsAPI, *graphqlStub) {
	stub := newGraphQLStub(t)
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	base := []Option{
		WithBaseURL(srv.URL),
		WithLogger(quietLogger()),
		WithProgressBars(false),
		WithRetries(3, time.Millisecond, 2),
		WithCredentials("pub", "sec"),
	}
	return NewSignalsAPI(append(base, opts...)...), stub
}

func TestSignalsTournamentID(t *testing.T) {
	api, _ := newStubSignalsAPI(t)
	assert.Equal(t, 11, api.TournamentID())
}

func TestSignalsGetLeaderboard(t *testing.T) {
	api, stub := newStubSignalsAPI(t)
	stub.respond(data(map[string]any{"signalsLeaderboard": []any{
		map[string]any{"username": "signals_test", "rank": 4.0, "nmrStaked": "3.3"},
	}}))

	entries, err := api.GetLeaderboard(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	staked, ok := entries[0]["nmrStaked"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, staked.Equal(decimal.RequireFromString("3.3")))
}

func TestSignalsUploadPredictions(t *testing.T) {
	api, stub := newStubSignalsAPI(t)

	var putBody, putComputeID string
	upstream := httptest.NewServer(stubUploadTarget(t, &putBody, &putComputeID))
	t.Cleanup(upstream.Close)

	stub.respond(data(map[string]any{"submissionUploadSignalsAuth": map[string]any{
		"filename": "1234_signals.csv",
		"url":      upstream.URL + "/signed",
	}}))
	stub.respond(data(map[string]any{"createSignalsSubmission": map[string]any{"id": "sig-1"}}))

	t.Setenv(EnvTriggerID, "trigger-7")

	id, err := api.UploadPredictionsFrom(context.Background(),
		strings.NewReader("ticker,signal\nA US,0.5\n"), "signals.csv", "model-id")
	require.NoError(t, err)
	assert.Equal(t, "sig-1", id)
	assert.Equal(t, "ticker,signal\nA US,0.5\n", putBody)

	require.Equal(t, 2, stub.requestCount())
	// signals auth takes no tournament argument
	_, hasTournament := stub.request(0).variables["tournament"]
	assert.False(t, hasTournament)
	assert.Equal(t, "1234_signals.csv", stub.request(1).variables["filename"])
	assert.Equal(t, "trigger-7", stub.request(1).variables["triggerId"])
}

func TestSignalsSubmissionStatus(t *testing.T) {
	api, stub := newStubSignalsAPI(t)
	stub.respond(data(map[string]any{"model": map[string]any{
		"latestSignalsSubmission": map[string]any{
			"id":                 "sig-1",
			"filename":           "signals.csv",
			"firstEffectiveDate": "2025-02-03T00:00:00Z",
			"submittedCount":     1000.0,
			"filteredCount":      12.0,
		},
	}}))

	status, err := api.SubmissionStatus(context.Background(), "model-id")
	require.NoError(t, err)
	assert.Equal(t, "sig-1", status["id"])
	_, ok := status["firstEffectiveDate"].(time.Time)
	assert.True(t, ok)
}

func TestSignalsPublicUserProfile(t *testing.T) {
	api, stub := newStubSignalsAPI(t)
	stub.respond(data(map[string]any{"v2SignalsProfile": map[string]any{
		"username":  "signals_test",
		"startDate": "2020-06-01T00:00:00Z",
		"nmrStaked": "1.5",
	}}))

	profile, err := api.PublicUserProfile(context.Background(), "signals_test")
	require.NoError(t, err)
	_, ok := profile["startDate"].(time.Time)
	assert.True(t, ok)
	staked, ok := profile["nmrStaked"].(decimal.Decimal)
	require.True(t, ok)
	assert.True(t, staked.Equal(decimal.RequireFromString("1.5")))
}

func TestSignalsStakeGet(t *testing.T) {
	api, stub := newStubSignalsAPI(t)
	stub.respond(data(map[string]any{"v2SignalsProfile": map[string]any{"nmrStaked": "2.75"}}))

	stake, err := api.StakeGet(context.Background(), "signals_test")
	require.NoError(t, err)
	assert.True(t, stake.Equal(decimal.RequireFromString("2.75")))
}

func TestTickerUniverse(t *testing.T) {
	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest_universe.csv", r.URL.Path)
		io.WriteString(w, "bloomberg_ticker\nAAPL US\nMSFT US\n")
	}))
	t.Cleanup(files.Close)

	api, _ := newStubSignalsAPI(t)
	api.publicDataURL = files.URL

	tickers, err := api.TickerUniverse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL US", "MSFT US"}, tickers)
}

func TestSignalsDownloadValidationData(t *testing.T) {
	files := httptest.NewServer(stubFileServer("ticker,target\nAAPL US,1\n"))
	t.Cleanup(files.Close)

	api, _ := newStubSignalsAPI(t)
	api.publicDataURL = files.URL
	dir := t.TempDir()
	require.NoError(t, api.SetGlobalDataDir(dir))

	dest, err := api.DownloadValidationData(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "signals_train_val_bbg.csv"), dest)
	assert.FileExists(t, dest)
}
