package numerapi

import (
	"context"
	"io"

	"github.com/uuazed/numerapi-go/internal/convert"
)

func (c *Client) diagnosticsUploadSpec() uploadSpec {
	return uploadSpec{
		authField: "diagnosticsUploadAuth",
		createQuery: `
	    mutation($filename: String!
	             $tournament: Int!
	             $modelId: String) {
	        createDiagnostics(filename: $filename
	                          tournament: $tournament
	                          modelId: $modelId) {
	            id
	        }
	    }`,
		createField: "createDiagnostics",
		createArgs: func(filename, modelID string) map[string]any {
			return map[string]any{
				"filename":   filename,
				"tournament": c.tournamentID,
				"modelId":    modelID,
			}
		},
		tournament: true,
	}
}

// UploadDiagnostics uploads a predictions file for a diagnostics run and
// returns the diagnostics id.
func (c *Client) UploadDiagnostics(ctx context.Context, filePath, modelID string) (string, error) {
	if err := validateUploadPath(filePath); err != nil {
		return "", err
	}
	c.logger.Info("uploading diagnostics", "path", filePath)
	return c.uploadFromPath(ctx, c.diagnosticsUploadSpec(), filePath, modelID)
}

// UploadDiagnosticsFrom is UploadDiagnostics for in-memory data: r holds
// the file bytes and filename names them.
func (c *Client) UploadDiagnosticsFrom(ctx context.Context, r io.Reader, filename, modelID string) (string, error) {
	if err := validateUploadPath(filename); err != nil {
		return "", err
	}
	c.logger.Info("uploading diagnostics", "filename", filename)
	return c.upload(ctx, c.diagnosticsUploadSpec(), r, filename, modelID)
}

// Diagnostics fetches the results of a diagnostics run. With an empty
// diagnosticsID the most recent run for the model is returned.
func (c *Client) Diagnostics(ctx context.Context, modelID, diagnosticsID string) (map[string]any, error) {
	query := `
	    query($id: String
	          $modelId: String!) {
	      diagnostics(id: $id
	                  modelId: $modelId) {
	        erasAcceptedCount
	        examplePredsCorrMean
	        message
	        perEraDiagnostics {
	            era
	            examplePredsCorr
	            validationCorr
	            validationCorrV4
	            validationFeatureCorrMax
	            validationFeatureNeutralCorr
	            validationFeatureNeutralCorrV3
	            validationMmc
	            validationFncV4
	            validationIcV2
	            validationRic
	        }
	        status
	        trainedOnVal
	        updatedAt
	        validationCorrMean
	        validationCorrMeanRating
	        validationCorrPlusMmcMean
	        validationCorrPlusMmcMeanRating
	        validationCorrPlusMmcSharpe
	        validationCorrPlusMmcSharpeDiff
	        validationCorrPlusMmcSharpeDiffRating
	        validationCorrPlusMmcSharpeRating
	        validationCorrPlusMmcStd
	        validationCorrPlusMmcStdRating
	        validationCorrSharpe
	        validationCorrSharpeRating
	        validationCorrStd
	        validationCorrStdRating
	        validationFeatureCorrMax
	        validationFeatureCorrMaxRating
	        validationFeatureNeutralCorrMean
	        validationFeatureNeutralCorrMeanRating
	        validationMaxDrawdown
	        validationMaxDrawdownRating
	        validationMmcMean
	        validationMmcMeanRating
	        validationMmcSharpe
	        validationMmcSharpeRating
	        validationMmcStd
	        validationMmcStdRating
	        validationAdjustedSharpe
	        validationApy
	        validationAutocorr
	        validationCorrCorrWExamplePreds
	        validationCorrMaxDrawdown
	        validationCorrV4CorrWExamplePreds
	        validationCorrV4MaxDrawdown
	        validationCorrV4Mean
	        validationCorrV4Sharpe
	        validationCorrV4Std
	        validationFeatureNeutralCorrV3Mean
	        validationFeatureNeutralCorrV3MeanRating
	        validationFncV4CorrWExamplePreds
	        validationFncV4MaxDrawdown
	        validationFncV4Mean
	        validationFncV4Sharpe
	        validationFncV4Std
	        validationIcV2CorrWExamplePreds
	        validationIcV2MaxDrawdown
	        validationIcV2Mean
	        validationIcV2Sharpe
	        validationIcV2Std
	        validationRicCorrWExamplePreds
	        validationRicMaxDrawdown
	        validationRicMean
	        validationRicSharpe
	        validationRicStd
	      }
	    }`
	args := map[string]any{"modelId": modelID}
	if diagnosticsID != "" {
		args["id"] = diagnosticsID
	}
	result, err := c.RawQuery(ctx, query, args, true)
	if err != nil {
		return nil, err
	}
	diagnostics, err := dataMap(result, "diagnostics")
	if err != nil {
		return nil, err
	}
	convert.Replace(diagnostics, "updatedAt", convert.DateTime)
	return diagnostics, nil
}
