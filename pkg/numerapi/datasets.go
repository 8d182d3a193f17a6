package numerapi

import (
	"context"
	"fmt"
	"path/filepath"
)

// ListDatasets returns the data files available for the given round, or
// for the current round when roundNum is 0.
func (c *Client) ListDatasets(ctx context.Context, roundNum int) ([]string, error) {
	query := `
	    query($round: Int) {
	        listDatasets(round: $round)
	    }`
	args := map[string]any{}
	if roundNum > 0 {
		args["round"] = roundNum
	}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return nil, err
	}
	v, err := dataPath(result, "listDatasets")
	if err != nil {
		return nil, err
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list at %q", "listDatasets")
	}
	names := make([]string, 0, len(raw))
	for _, e := range raw {
		if s, ok := e.(string); ok {
			names = append(names, s)
		}
	}
	return names, nil
}

// DatasetURL fetches the download URL of a data file, for the given round
// or the current one when roundNum is 0.
func (c *Client) DatasetURL(ctx context.Context, filename string, roundNum int) (string, error) {
	query := `
	    query($filename: String!
	          $round: Int) {
	        dataset(filename: $filename
	                round: $round)
	    }`
	args := map[string]any{"filename": filename}
	if roundNum > 0 {
		args["round"] = roundNum
	}
	result, err := c.RawQuery(ctx, query, args, false)
	if err != nil {
		return "", err
	}
	v, err := dataPath(result, "dataset")
	if err != nil {
		return "", err
	}
	url, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected url string at %q", "dataset")
	}
	return url, nil
}

// DownloadDataset downloads a data file for the given round (0 for the
// current one) to destPath, resuming a partial download if one exists.
// When destPath is empty the file lands in the global data dir under its
// own name.
func (c *Client) DownloadDataset(ctx context.Context, filename, destPath string, roundNum int) (string, error) {
	if destPath == "" {
		destPath = filepath.Join(c.dataDir, filepath.Base(filename))
	}
	url, err := c.DatasetURL(ctx, filename, roundNum)
	if err != nil {
		return "", err
	}
	if err := c.downloader.Fetch(ctx, url, destPath, c.showProgress); err != nil {
		return "", err
	}
	return destPath, nil
}
