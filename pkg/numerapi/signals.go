package numerapi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// SignalsPublicDataURL is the public bucket holding the signals ticker
// universe and historical data files.
const SignalsPublicDataURL = "https://numerai-signals-public-data.s3-us-west-2.amazonaws.com"

// SignalsAPI is the client for the Numerai Signals tournament.
type SignalsAPI struct {
	*Client
	publicDataURL string
}

// NewSignalsAPI creates a signals-tournament client.
func NewSignalsAPI(opts ...Option) *SignalsAPI {
	c := NewClient(opts...)
	c.tournamentID = tournamentSignals
	return &SignalsAPI{Client: c, publicDataURL: SignalsPublicDataURL}
}

// GetLeaderboard fetches the current signals leaderboard.
func (s *SignalsAPI) GetLeaderboard(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return s.leaderboard(ctx, leaderboardSpec{
		field: "signalsLeaderboard",
		columns: []string{
			"prevRank", "rank", "sharpe", "today", "username",
			"mmc", "mmcRank", "nmrStaked", "icRank", "icRep",
			"tcRep", "tcRank",
		},
		conversions: fieldConversions{"nmrStaked": convert.Decimal},
	}, limit, offset)
}

func (s *SignalsAPI) uploadPredictionsSpec() uploadSpec {
	return uploadSpec{
		authField: "submissionUploadSignalsAuth",
		createQuery: `
	    mutation($filename: String!
	             $modelId: String
	             $triggerId: String) {
	        createSignalsSubmission(filename: $filename
	                                modelId: $modelId
	                                triggerId: $triggerId
	                                source: "numerapi") {
	            id
	            firstEffectiveDate
	        }
	    }`,
		createField: "createSignalsSubmission",
		createArgs: func(filename, modelID string) map[string]any {
			return map[string]any{
				"filename":  filename,
				"modelId":   modelID,
				"triggerId": os.Getenv(EnvTriggerID),
			}
		},
	}
}

// UploadPredictions uploads a signals predictions file and returns
// the submission id. Repeated calls create distinct submissions.
func (s *SignalsAPI) UploadPredictions(ctx context.Context, filePath, modelID string) (string, error) {
	if err := validateUploadPath(filePath); err != nil {
		return "", err
	}
	s.logger.Info("uploading signals predictions", "path", filePath)
	return s.uploadFromPath(ctx, s.uploadPredictionsSpec(), filePath, modelID)
}

// UploadPredictionsFrom is UploadPredictions for in-memory data.
func (s *SignalsAPI) UploadPredictionsFrom(ctx context.Context, r io.Reader, filename, modelID string) (string, error) {
	if err := validateUploadPath(filename); err != nil {
		return "", err
	}
	s.logger.Info("uploading signals predictions", "filename", filename)
	return s.upload(ctx, s.uploadPredictionsSpec(), r, filename, modelID)
}

// SubmissionStatus fetches evaluation details of the model's latest
// signals submission.
func (s *SignalsAPI) SubmissionStatus(ctx context.Context, modelID string) (map[string]any, error) {
	query := `
	    query($modelId: String) {
	      model(modelId: $modelId) {
	        latestSignalsSubmission {
	          id
	          filename
	          firstEffectiveDate
	          userId
	          submissionIp
	          submittedCount
	          filteredCount
	          invalidTickers
	          hasHistoric
	          historicMean
	          historicStd
	          historicSharpe
	          historicMaxDrawdown
	        }
	      }
	    }`
	args := map[string]any{"modelId": modelID}
	result, err := s.RawQuery(ctx, query, args, true)
	if err != nil {
		return nil, err
	}
	status, err := dataMap(result, "model", "latestSignalsSubmission")
	if err != nil {
		return nil, err
	}
	convert.Replace(status, "firstEffectiveDate", convert.DateTime)
	return status, nil
}

// PublicUserProfile fetches the public signals profile of a user.
func (s *SignalsAPI) PublicUserProfile(ctx context.Context, username string) (map[string]any, error) {
	return s.publicProfile(ctx, profileSpec{
		field:   "v2SignalsProfile",
		arg:     "modelName",
		columns: []string{"id", "startDate", "username", "bio", "nmrStaked"},
		conversions: fieldConversions{
			"startDate": convert.DateTime,
			"nmrStaked": convert.Decimal,
		},
	}, username)
}

// DailyModelPerformances fetches the daily signals performance history
// of a model.
func (s *SignalsAPI) DailyModelPerformances(ctx context.Context, username string) ([]map[string]any, error) {
	return s.dailyModelPerformances(ctx, dailyPerformanceSpec{
		profileField: "v2SignalsProfile",
		columns: []string{
			"date", "corrRep", "corrRank", "mmcRep", "mmcRank",
			"icRep", "icRank", "tcRep", "tcRank",
			"corr60Rep", "corr60Rank", "mmc20dRep", "mmc20dRank",
		},
	}, username)
}

// StakeGet returns the current signals stake of a model.
func (s *SignalsAPI) StakeGet(ctx context.Context, modelName string) (decimal.Decimal, error) {
	query := `
	  query($modelname: String!) {
	    v2SignalsProfile(modelName: $modelname) {
	       nmrStaked
	    }
	  }`
	args := map[string]any{"modelname": modelName}
	result, err := s.RawQuery(ctx, query, args, false)
	if err != nil {
		return decimal.Zero, err
	}
	profile, err := dataMap(result, "v2SignalsProfile")
	if err != nil {
		return decimal.Zero, err
	}
	stake, ok := convert.Decimal(profile["nmrStaked"]).(decimal.Decimal)
	if !ok {
		return decimal.Zero, nil
	}
	return stake, nil
}

// TickerUniverse fetches the list of tickers eligible for signals
// submissions.
func (s *SignalsAPI) TickerUniverse(ctx context.Context) ([]string, error) {
	url := s.publicDataURL + "/latest_universe.csv"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build ticker universe request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ticker universe: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch ticker universe: unexpected status %s", resp.Status)
	}

	var tickers []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line == "bloomberg_ticker" {
			continue
		}
		tickers = append(tickers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ticker universe: %w", err)
	}
	return tickers, nil
}

// DownloadValidationData downloads the historical signals data with
// train and validation targets. destPath defaults to the data directory.
func (s *SignalsAPI) DownloadValidationData(ctx context.Context, destPath string) (string, error) {
	const filename = "signals_train_val_bbg.csv"
	if destPath == "" {
		destPath = filepath.Join(s.dataDir, filename)
	}
	url := s.publicDataURL + "/" + filename
	s.logger.Info("downloading signals validation data", "dest", destPath)
	if err := s.downloader.Fetch(ctx, url, destPath, s.showProgress); err != nil {
		return "", err
	}
	return destPath, nil
}
