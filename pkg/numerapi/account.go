package numerapi

import (
	"context"

	"github.com/uuazed/numerapi-go/internal/convert"
)

// GetAccount fetches everything about your account: wallet, models,
// API tokens. Requires credentials.
func (c *Client) GetAccount(ctx context.Context) (map[string]any, error) {
	query := `
	  query {
	    account {
	      username
	      walletAddress
	      availableNmr
	      email
	      id
	      mfaEnabled
	      status
	      insertedAt
	      models {
	        id
	        name
	        submissions {
	          id
	          filename
	        }
	        v2Stake {
	          status
	          txHash
	        }
	      }
	      apiTokens {
	        name
	        public_id
	        scopes
	      }
	    }
	  }`
	result, err := c.RawQuery(ctx, query, nil, true)
	if err != nil {
		return nil, err
	}
	account, err := dataMap(result, "account")
	if err != nil {
		return nil, err
	}
	convert.Replace(account, "insertedAt", convert.DateTime)
	convert.Replace(account, "availableNmr", convert.Decimal)
	return account, nil
}

// GetModels returns the account's model-name to model-id mapping for the
// client's tournament.
func (c *Client) GetModels(ctx context.Context) (map[string]string, error) {
	query := `
	  query {
	    account {
	      models {
	        id
	        name
	        tournament
	      }
	    }
	  }`
	result, err := c.RawQuery(ctx, query, nil, true)
	if err != nil {
		return nil, err
	}
	models, err := dataList(result, "account", "models")
	if err != nil {
		return nil, err
	}
	mapping := make(map[string]string, len(models))
	for _, model := range models {
		tournament, _ := model["tournament"].(float64)
		if int(tournament) != c.tournamentID {
			continue
		}
		name, _ := model["name"].(string)
		id, _ := model["id"].(string)
		mapping[name] = id
	}
	return mapping, nil
}

// WalletTransactions lists all deposits and withdrawals of your wallet.
func (c *Client) WalletTransactions(ctx context.Context) ([]map[string]any, error) {
	query := `
	  query {
	    account {
	      walletTxns {
	        amount
	        from
	        status
	        to
	        time
	        tournament
	        txHash
	        type
	      }
	    }
	  }`
	result, err := c.RawQuery(ctx, query, nil, true)
	if err != nil {
		return nil, err
	}
	txns, err := dataList(result, "account", "walletTxns")
	if err != nil {
		return nil, err
	}
	for _, txn := range txns {
		convert.Replace(txn, "time", convert.DateTime)
		convert.Replace(txn, "amount", convert.Decimal)
	}
	return txns, nil
}

// GetAccountTransactions is a deprecated alias of WalletTransactions.
func (c *Client) GetAccountTransactions(ctx context.Context) ([]map[string]any, error) {
	c.logger.Warn("GetAccountTransactions is deprecated, use WalletTransactions")
	return c.WalletTransactions(ctx)
}

// SetBio sets the bio field of a model.
func (c *Client) SetBio(ctx context.Context, modelID, bio string) (bool, error) {
	mutation := `
	    mutation($value: String!
	             $modelId: String) {
	        setUserBio(value: $value
	                   modelId: $modelId)
	    }`
	args := map[string]any{"value": bio, "modelId": modelID}
	result, err := c.RawQuery(ctx, mutation, args, true)
	if err != nil {
		return false, err
	}
	v, err := dataPath(result, "setUserBio")
	if err != nil {
		return false, err
	}
	ok, _ := v.(bool)
	return ok, nil
}

// SetLink sets the link field of a model.
func (c *Client) SetLink(ctx context.Context, modelID, linkText, link string) (bool, error) {
	mutation := `
	    mutation($linkUrl: String!
	             $linkText: String
	             $modelId: String) {
	        setUserLink(linkText: $linkText
	                    linkUrl: $linkUrl
	                    modelId: $modelId)
	    }`
	args := map[string]any{"linkUrl": link, "linkText": linkText, "modelId": modelID}
	result, err := c.RawQuery(ctx, mutation, args, true)
	if err != nil {
		return false, err
	}
	v, err := dataPath(result, "setUserLink")
	if err != nil {
		return false, err
	}
	ok, _ := v.(bool)
	return ok, nil
}

// SetSubmissionWebhook sets a model's submission webhook used by Numerai
// Compute.
func (c *Client) SetSubmissionWebhook(ctx context.Context, modelID, webhook string) (bool, error) {
	mutation := `
	  mutation (
	    $modelId: String!
	    $newSubmissionWebhook: String
	  ) {
	    setSubmissionWebhook(
	      modelId: $modelId
	      newSubmissionWebhook: $newSubmissionWebhook
	    )
	  }`
	args := map[string]any{"modelId": modelID, "newSubmissionWebhook": webhook}
	result, err := c.RawQuery(ctx, mutation, args, true)
	if err != nil {
		return false, err
	}
	v, err := dataPath(result, "setSubmissionWebhook")
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// ModelIDToModelName resolves a model UUID to its name.
func (c *Client) ModelIDToModelName(ctx context.Context, modelID string) (string, error) {
	query := `
	    query($modelId: String!) {
	        model(modelId: $modelId) {
	            name
	        }
	    }`
	args := map[string]any{"modelId": modelID}
	result, err := c.RawQuery(ctx, query, args, true)
	if err != nil {
		return "", err
	}
	model, err := dataMap(result, "model")
	if err != nil {
		return "", err
	}
	name, _ := model["name"].(string)
	return name, nil
}
