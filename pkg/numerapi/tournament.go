package numerapi

import (
	"context"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// Tournament identifiers as the API knows them.
const (
	tournamentClassic = 8
	tournamentSignals = 11
	tournamentCrypto  = 12
)

// NumerAPI is the client for the classic Numerai tournament.
type NumerAPI struct {
	*Client
}

// NewNumerAPI creates a classic-tournament client.
func NewNumerAPI(opts ...Option) *NumerAPI {
	c := NewClient(opts...)
	c.tournamentID = tournamentClassic
	return &NumerAPI{Client: c}
}

// GetCompetitions retrieves information about all rounds.
func (n *NumerAPI) GetCompetitions(ctx context.Context) ([]map[string]any, error) {
	n.logger.Info("getting rounds")
	query := `
	    query($tournament: Int!) {
	      rounds(tournament: $tournament) {
	        number
	        resolveTime
	        openTime
	        resolvedGeneral
	        resolvedStaking
	      }
	    }`
	args := map[string]any{"tournament": n.tournamentID}
	result, err := n.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	rounds, err := dataList(result, "rounds")
	if err != nil {
		return nil, err
	}
	for _, round := range rounds {
		convert.Replace(round, "openTime", convert.DateTime)
		convert.Replace(round, "resolveTime", convert.DateTime)
	}
	return rounds, nil
}

// SubmissionFilename names one selected submission of a model.
type SubmissionFilename struct {
	RoundNum   int    `json:"round_num"`
	Tournament int    `json:"tournament"`
	Filename   string `json:"filename"`
}

// GetSubmissionFilenames lists the selected submissions of a model,
// optionally filtered by tournament and round number (0 means no filter).
func (n *NumerAPI) GetSubmissionFilenames(ctx context.Context, tournament, roundNum int, modelID string) ([]SubmissionFilename, error) {
	query := `
	  query($modelId: String) {
	    model(modelId: $modelId) {
	      submissions {
	        filename
	        selected
	        round {
	           tournament
	           number
	        }
	      }
	    }
	  }`
	args := map[string]any{"modelId": modelID}
	result, err := n.RawQuery(ctx, query, args, true)
	if err != nil {
		return nil, err
	}
	submissions, err := dataList(result, "model", "submissions")
	if err != nil {
		return nil, err
	}

	var filenames []SubmissionFilename
	for _, sub := range submissions {
		if selected, _ := sub["selected"].(bool); !selected {
			continue
		}
		round, _ := sub["round"].(map[string]any)
		num, _ := round["number"].(float64)
		tourn, _ := round["tournament"].(float64)
		name, _ := sub["filename"].(string)
		entry := SubmissionFilename{
			RoundNum:   int(num),
			Tournament: int(tourn),
			Filename:   name,
		}
		if roundNum != 0 && entry.RoundNum != roundNum {
			continue
		}
		if tournament != 0 && entry.Tournament != tournament {
			continue
		}
		filenames = append(filenames, entry)
	}
	sort.Slice(filenames, func(i, j int) bool {
		if filenames[i].RoundNum != filenames[j].RoundNum {
			return filenames[i].RoundNum < filenames[j].RoundNum
		}
		return filenames[i].Tournament < filenames[j].Tournament
	})
	return filenames, nil
}

// GetLeaderboard fetches the current model leaderboard. The nmrStaked
// field is returned as a decimal.
func (n *NumerAPI) GetLeaderboard(ctx context.Context, limit, offset int) ([]map[string]any, error) {
	return n.leaderboard(ctx, leaderboardSpec{
		field: "v2Leaderboard",
		columns: []string{
			"nmrStaked", "rank", "username",
			"corr20Rep", "corr20V2Rep", "corj60Rep",
			"fncRep", "fncV3Rep", "tcRep", "mmcRep", "bmcRep",
			"team", "return_1_day", "return_52_weeks", "return_13_weeks",
		},
		conversions: fieldConversions{"nmrStaked": convert.Decimal},
	}, limit, offset)
}

// PublicUserProfile fetches the public profile of a user.
func (n *NumerAPI) PublicUserProfile(ctx context.Context, username string) (map[string]any, error) {
	return n.publicProfile(ctx, profileSpec{
		field:       "v3UserProfile",
		arg:         "model_name",
		columns:     []string{"id", "startDate", "username", "bio", "nmrStaked"},
		conversions: fieldConversions{"startDate": convert.DateTime},
	}, username)
}

// DailyModelPerformances fetches the daily performance history of a model.
func (n *NumerAPI) DailyModelPerformances(ctx context.Context, username string) ([]map[string]any, error) {
	return n.dailyModelPerformances(ctx, dailyPerformanceSpec{
		profileField: "v3UserProfile",
		columns: []string{
			"date", "corrRep", "corrRank", "mmcRep", "mmcRank",
			"fncRep", "fncRank", "fncV3Rep", "fncV3Rank", "tcRep", "tcRank",
		},
	}, username)
}

// StakeGet returns the current stake of a model, including projected NMR
// earnings from open rounds.
func (n *NumerAPI) StakeGet(ctx context.Context, modelName string) (decimal.Decimal, error) {
	query := `
	  query($modelname: String!) {
	    v3UserProfile(modelName: $modelname) {
	       stakeValue
	    }
	  }`
	args := map[string]any{"modelname": modelName}
	result, err := n.RawQuery(ctx, query, args, false)
	if err != nil {
		return decimal.Zero, err
	}
	profile, err := dataMap(result, "v3UserProfile")
	if err != nil {
		return decimal.Zero, err
	}
	stake, ok := convert.Decimal(profile["stakeValue"]).(decimal.Decimal)
	if !ok {
		return decimal.Zero, nil
	}
	return stake, nil
}

// StakeSet moves the model's stake to exactly nmr by issuing an increase
// or decrease relative to the current stake. The read and the change are
// two separate API calls with no version check, so a stake change made
// concurrently elsewhere can be clobbered. Returns nil when the stake is
// already at the requested value.
func (n *NumerAPI) StakeSet(ctx context.Context, nmr decimal.Decimal, modelID string) (map[string]any, error) {
	modelName, err := n.ModelIDToModelName(ctx, modelID)
	if err != nil {
		return nil, err
	}
	current, err := n.StakeGet(ctx, modelName)
	if err != nil {
		return nil, err
	}
	switch {
	case nmr.LessThan(current):
		return n.StakeDecrease(ctx, current.Sub(nmr), modelID)
	case nmr.GreaterThan(current):
		return n.StakeIncrease(ctx, nmr.Sub(current), modelID)
	default:
		n.logger.Info("stake already at desired value, nothing to do")
		return nil, nil
	}
}

func (n *NumerAPI) uploadPredictionsSpec() uploadSpec {
	return uploadSpec{
		authField: "submissionUploadAuth",
		createQuery: `
	    mutation($filename: String!
	             $tournament: Int!
	             $modelId: String) {
	        createSubmission(filename: $filename
	                         tournament: $tournament
	                         modelId: $modelId
	                         source: "numerapi") {
	            id
	        }
	    }`,
		createField: "createSubmission",
		createArgs: func(filename, modelID string) map[string]any {
			return map[string]any{
				"filename":   filename,
				"tournament": n.tournamentID,
				"modelId":    modelID,
			}
		},
		tournament: true,
	}
}

// UploadPredictions uploads a predictions file and returns the submission
// id. Repeated calls create distinct submissions.
func (n *NumerAPI) UploadPredictions(ctx context.Context, filePath, modelID string) (string, error) {
	if err := validateUploadPath(filePath); err != nil {
		return "", err
	}
	n.logger.Info("uploading predictions", "path", filePath)
	return n.uploadFromPath(ctx, n.uploadPredictionsSpec(), filePath, modelID)
}

// UploadPredictionsFrom is UploadPredictions for in-memory data.
func (n *NumerAPI) UploadPredictionsFrom(ctx context.Context, r io.Reader, filename, modelID string) (string, error) {
	if err := validateUploadPath(filename); err != nil {
		return "", err
	}
	n.logger.Info("uploading predictions", "filename", filename)
	return n.upload(ctx, n.uploadPredictionsSpec(), r, filename, modelID)
}
