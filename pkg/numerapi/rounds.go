package numerapi

import (
	"context"
	"errors"
	"time"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// GetCurrentRound returns the number of the currently active round, or 0
// when no round is active.
func (c *Client) GetCurrentRound(ctx context.Context) (int, error) {
	// round number zero is an alias for the current round
	query := `
	    query($tournament: Int!) {
	      rounds(tournament: $tournament
	             number: 0) {
	        number
	      }
	    }`
	args := map[string]any{"tournament": c.tournamentID}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return 0, err
	}
	rounds, err := dataList(result, "rounds")
	if err != nil || len(rounds) == 0 {
		return 0, err
	}
	number, _ := rounds[0]["number"].(float64)
	return int(number), nil
}

// currentRound fetches the current round with the given extra columns.
// Between rounds the API answers the number-0 alias with an error, which
// callers treat as "no open round".
func (c *Client) currentRound(ctx context.Context, columns string) (map[string]any, error) {
	query := `
	    query($tournament: Int!) {
	      rounds(tournament: $tournament
	             number: 0) {
	        ` + columns + `
	      }
	    }`
	args := map[string]any{"tournament": c.tournamentID}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	rounds, err := dataList(result, "rounds")
	if err != nil {
		return nil, err
	}
	if len(rounds) == 0 {
		return nil, nil
	}
	return rounds[0], nil
}

// CheckRoundOpen reports whether a round is currently open for
// submissions.
func (c *Client) CheckRoundOpen(ctx context.Context) (bool, error) {
	round, err := c.currentRound(ctx, "number\n        openTime\n        closeStakingTime")
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if round == nil {
		return false, nil
	}
	openTime, ok := convert.DateTime(round["openTime"]).(time.Time)
	if !ok {
		return false, nil
	}
	deadline, ok := convert.DateTime(round["closeStakingTime"]).(time.Time)
	if !ok {
		return false, nil
	}
	now := time.Now().UTC()
	return openTime.Before(now) && now.Before(deadline), nil
}

// CheckNewRound reports whether a new round has started within the last
// `hours`.
func (c *Client) CheckNewRound(ctx context.Context, hours int) (bool, error) {
	round, err := c.currentRound(ctx, "number\n        openTime")
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if round == nil {
		return false, nil
	}
	openTime, ok := convert.DateTime(round["openTime"]).(time.Time)
	if !ok {
		return false, nil
	}
	return openTime.After(time.Now().UTC().Add(-time.Duration(hours) * time.Hour)), nil
}
