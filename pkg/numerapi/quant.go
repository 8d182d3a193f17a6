package numerapi

import (
	"context"
	"io"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// QuantAPI is the client for the Numerai Quant tournament.
type QuantAPI struct {
	*Client
}

// NewQuantAPI creates a quant-tournament client.
func NewQuantAPI(opts ...Option) *QuantAPI {
	c := NewClient(opts...)
	return &QuantAPI{Client: c}
}

// GetLeaderboard fetches the current quant leaderboard.
func (q *QuantAPI) GetLeaderboard(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return q.leaderboard(ctx, leaderboardSpec{
		field:   "quantLeaderboard",
		columns: []string{"prevRank", "rank", "sharpe", "today", "username"},
	}, limit, offset)
}

func (q *QuantAPI) uploadPredictionsSpec() uploadSpec {
	return uploadSpec{
		authField: "submissionUploadQuantAuth",
		createQuery: `
	    mutation($filename: String!
	             $modelId: String) {
	        createQuantSubmission(filename: $filename
	                              modelId: $modelId
	                              source: "numerapi") {
	            id
	            firstEffectiveDate
	        }
	    }`,
		createField: "createQuantSubmission",
		createArgs: func(filename, modelID string) map[string]any {
			return map[string]any{
				"filename": filename,
				"modelId":  modelID,
			}
		},
	}
}

// UploadPredictions uploads a quant predictions file and returns the
// submission id.
func (q *QuantAPI) UploadPredictions(ctx context.Context, filePath, modelID string) (string, error) {
	if err := validateUploadPath(filePath); err != nil {
		return "", err
	}
	q.logger.Info("uploading quant predictions", "path", filePath)
	return q.uploadFromPath(ctx, q.uploadPredictionsSpec(), filePath, modelID)
}

// UploadPredictionsFrom is UploadPredictions for in-memory data.
func (q *QuantAPI) UploadPredictionsFrom(ctx context.Context, r io.Reader, filename, modelID string) (string, error) {
	if err := validateUploadPath(filename); err != nil {
		return "", err
	}
	q.logger.Info("uploading quant predictions", "filename", filename)
	return q.upload(ctx, q.uploadPredictionsSpec(), r, filename, modelID)
}

// PublicUserProfile fetches the public quant profile of a user.
func (q *QuantAPI) PublicUserProfile(ctx context.Context, username string) (map[string]any, error) {
	return q.publicProfile(ctx, profileSpec{
		field:   "quantUserProfile",
		arg:     "username",
		columns: []string{"id", "startDate", "username", "bio"},
		conversions: fieldConversions{
			"startDate": convert.DateTime,
		},
	}, username)
}
