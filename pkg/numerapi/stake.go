package numerapi

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// stakeDrainAmount is deliberately larger than any stake can be.
var stakeDrainAmount = decimal.NewFromInt(11_000_000)

// StakeChange changes the model's stake by nmr NMR. action is "increase"
// or "decrease".
func (c *Client) StakeChange(ctx context.Context, nmr decimal.Decimal, action, modelID string) (map[string]any, error) {
	query := `
	  mutation($value: String!
	           $type: String!
	           $tournamentNumber: Int!
	           $modelId: String) {
	      v2ChangeStake(value: $value
	                    type: $type
	                    modelId: $modelId
	                    tournamentNumber: $tournamentNumber) {
	        dueDate
	        requestedAmount
	        status
	        type
	      }
	  }`
	args := map[string]any{
		"value":            nmr.String(),
		"type":             action,
		"modelId":          modelID,
		"tournamentNumber": c.tournamentID,
	}
	result, err := c.RawQuery(ctx, query, args, true)
	if err != nil {
		return nil, err
	}
	stake, err := dataMap(result, "v2ChangeStake")
	if err != nil {
		return nil, err
	}
	convert.Replace(stake, "requestedAmount", convert.Decimal)
	convert.Replace(stake, "dueDate", convert.DateTime)
	return stake, nil
}

// StakeIncrease increases the model's stake by nmr NMR.
func (c *Client) StakeIncrease(ctx context.Context, nmr decimal.Decimal, modelID string) (map[string]any, error) {
	return c.StakeChange(ctx, nmr, "increase", modelID)
}

// StakeDecrease decreases the model's stake by nmr NMR.
func (c *Client) StakeDecrease(ctx context.Context, nmr decimal.Decimal, modelID string) (map[string]any, error) {
	return c.StakeChange(ctx, nmr, "decrease", modelID)
}

// StakeDrain removes the model's entire stake.
func (c *Client) StakeDrain(ctx context.Context, modelID string) (map[string]any, error) {
	return c.StakeDecrease(ctx, stakeDrainAmount, modelID)
}

// SetStakeType changes how a model's payouts are computed: the corr and
// TC multipliers and whether profits are taken to the wallet instead of
// compounding.
func (c *Client) SetStakeType(ctx context.Context, modelID string, corrMultiplier, tcMultiplier float64, takeProfit bool) (map[string]any, error) {
	query := `
	    mutation($corrMultiplier: Float!
	             $modelId: String!
	             $takeProfit: Boolean!
	             $tcMultiplier: Float!
	             $tournamentNumber: Int!) {
	        v2ChangePayoutSelection(corrMultiplier: $corrMultiplier
	                                modelId: $modelId
	                                takeProfit: $takeProfit
	                                tcMultiplier: $tcMultiplier
	                                tournamentNumber: $tournamentNumber)
	    }`
	args := map[string]any{
		"modelId":          modelID,
		"corrMultiplier":   corrMultiplier,
		"tcMultiplier":     tcMultiplier,
		"takeProfit":       takeProfit,
		"tournamentNumber": c.tournamentID,
	}
	return c.RawQuery(ctx, query, args, true)
}
