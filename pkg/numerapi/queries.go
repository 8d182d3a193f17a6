package numerapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// The three tournament flavors expose the same leaderboard / profile /
// performance operations against differently named GraphQL fields with
// slightly different column sets. Each flavor supplies a small spec and
// the generic helpers below do the work, so the control flow exists once.

// fieldConversions maps response field names to their normalizing
// converter.
type fieldConversions map[string]func(any) any

func normalize(m map[string]any, conv fieldConversions) {
	for field, fn := range conv {
		convert.Replace(m, field, fn)
	}
}

// leaderboardSpec describes one flavor's leaderboard query.
type leaderboardSpec struct {
	field       string
	columns     []string
	conversions fieldConversions
}

func (c *Client) leaderboard(ctx context.Context, spec leaderboardSpec, limit, offset int) ([]map[string]any, error) {
	query := fmt.Sprintf(`
	    query($limit: Int!
	          $offset: Int!) {
	      %s(limit: $limit
	         offset: $offset) {
	        %s
	      }
	    }`, spec.field, strings.Join(spec.columns, "\n        "))
	args := map[string]any{"limit": limit, "offset": offset}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	entries, err := dataList(result, spec.field)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		normalize(entry, spec.conversions)
	}
	return entries, nil
}

// profileSpec describes one flavor's public user profile query.
type profileSpec struct {
	field       string
	arg         string // GraphQL argument name, e.g. modelName
	columns     []string
	conversions fieldConversions
}

func (c *Client) publicProfile(ctx context.Context, spec profileSpec, username string) (map[string]any, error) {
	query := fmt.Sprintf(`
	    query($username: String!) {
	      %s(%s: $username) {
	        %s
	      }
	    }`, spec.field, spec.arg, strings.Join(spec.columns, "\n        "))
	args := map[string]any{"username": username}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	profile, err := dataMap(result, spec.field)
	if err != nil {
		return nil, err
	}
	normalize(profile, spec.conversions)
	return profile, nil
}

// dailyPerformanceSpec describes one flavor's daily model performance
// query, nested under its profile field.
type dailyPerformanceSpec struct {
	profileField string
	columns      []string
}

func (c *Client) dailyModelPerformances(ctx context.Context, spec dailyPerformanceSpec, username string) ([]map[string]any, error) {
	query := fmt.Sprintf(`
	    query($username: String!) {
	      %s(modelName: $username) {
	        dailyModelPerformances {
	          %s
	        }
	      }
	    }`, spec.profileField, strings.Join(spec.columns, "\n          "))
	args := map[string]any{"username": username}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	performances, err := dataList(result, spec.profileField, "dailyModelPerformances")
	if err != nil {
		return nil, err
	}
	for _, perf := range performances {
		convert.Replace(perf, "date", convert.DateTime)
	}
	return performances, nil
}

// RoundModelPerformances fetches a model's per-round performance history.
// Only the classic and signals tournaments expose it.
func (c *Client) RoundModelPerformances(ctx context.Context, username string) ([]map[string]any, error) {
	var endpoint string
	switch c.tournamentID {
	case tournamentClassic:
		endpoint = "v3UserProfile"
	case tournamentSignals:
		endpoint = "v2SignalsProfile"
	default:
		return nil, fmt.Errorf("round model performances not available for tournament %d", c.tournamentID)
	}

	query := fmt.Sprintf(`
	    query($username: String!) {
	      %s(modelName: $username) {
	        roundModelPerformances {
	          corr
	          corr20V2
	          corr20V2Percentile
	          corr20d
	          corr20dPercentile
	          corrMultiplier
	          corrPercentile
	          corrWMetamodel
	          tc
	          tcPercentile
	          ic
	          icPercentile
	          fnc
	          fncPercentile
	          fncV3
	          fncV3Percentile
	          mmc
	          mmc20d
	          mmc20dPercentile
	          mmcMultiplier
	          mmcPercentile
	          payout
	          roundNumber
	          roundOpenTime
	          roundPayoutFactor
	          roundResolveTime
	          roundResolved
	          roundTarget
	          selectedStakeValue
	        }
	      }
	    }`, endpoint)
	args := map[string]any{"username": username}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	performances, err := dataList(result, endpoint, "roundModelPerformances")
	if err != nil {
		return nil, err
	}
	for _, perf := range performances {
		normalize(perf, fieldConversions{
			"roundOpenTime":      convert.DateTime,
			"roundResolveTime":   convert.DateTime,
			"payout":             convert.Decimal,
			"roundPayoutFactor":  convert.Decimal,
			"selectedStakeValue": convert.Decimal,
		})
	}
	return performances, nil
}
