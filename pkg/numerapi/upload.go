package numerapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// EnvComputeID names the environment variable carrying the Numerai
// Compute cluster identifier, attached to upload PUTs when present.
const EnvComputeID = "NUMERAI_COMPUTE_ID"

// EnvTriggerID names the environment variable carrying the trigger id of a
// Numerai Compute run, recorded on signals submissions when present.
const EnvTriggerID = "TRIGGER_ID"

// allowedUploadExtensions are the prediction file formats the API accepts.
var allowedUploadExtensions = []string{".csv", ".parquet"}

func validateUploadPath(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range allowedUploadExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported file extension %q: expected one of %s",
		ext, strings.Join(allowedUploadExtensions, ", "))
}

// uploadSpec describes one flavor's three-step upload: an authorization
// query returning a signed URL, a raw PUT of the bytes, and a creation
// mutation returning the submission id.
type uploadSpec struct {
	authField   string // e.g. submissionUploadSignalsAuth
	createQuery string
	createField string // e.g. createSignalsSubmission
	createArgs  func(filename, modelID string) map[string]any
	tournament  bool // whether the auth query takes a tournament argument
}

// upload runs the three steps. A failure at any step aborts the whole
// upload; repeated calls create distinct submissions.
func (c *Client) upload(ctx context.Context, spec uploadSpec, r io.Reader, filename, modelID string) (string, error) {
	auth, err := c.uploadAuth(ctx, spec, filename, modelID)
	if err != nil {
		return "", err
	}
	url, _ := auth["url"].(string)
	remoteName, _ := auth["filename"].(string)
	if url == "" || remoteName == "" {
		return "", fmt.Errorf("upload auth response missing url or filename")
	}

	if err := c.putFile(ctx, url, r); err != nil {
		return "", err
	}

	result, err := c.RawQuery(ctx, spec.createQuery, spec.createArgs(remoteName, modelID), true)
	if err != nil {
		return "", err
	}
	created, err := dataMap(result, spec.createField)
	if err != nil {
		return "", err
	}
	id, _ := created["id"].(string)
	if id == "" {
		return "", fmt.Errorf("submission id missing from %s response", spec.createField)
	}
	return id, nil
}

// uploadAuth requests a short-lived signed upload URL.
func (c *Client) uploadAuth(ctx context.Context, spec uploadSpec, filename, modelID string) (map[string]any, error) {
	args := map[string]any{
		"filename": filepath.Base(filename),
		"modelId":  modelID,
	}
	var query string
	if spec.tournament {
		query = fmt.Sprintf(`
	    query($filename: String!
	          $tournament: Int!
	          $modelId: String) {
	        %s(filename: $filename
	           tournament: $tournament
	           modelId: $modelId) {
	            filename
	            url
	        }
	    }`, spec.authField)
		args["tournament"] = c.tournamentID
	} else {
		query = fmt.Sprintf(`
	    query($filename: String!
	          $modelId: String) {
	        %s(filename: $filename
	           modelId: $modelId) {
	            filename
	            url
	        }
	    }`, spec.authField)
	}
	result, err := c.RawQuery(ctx, query, args, true)
	if err != nil {
		return nil, err
	}
	return dataMap(result, spec.authField)
}

// putFile PUTs raw bytes to a signed URL. The only custom header is the
// optional compute identifier read from the environment.
func (c *Client) putFile(ctx context.Context, url string, r io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, r)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	if computeID := os.Getenv(EnvComputeID); computeID != "" {
		req.Header.Set("x_compute_id", computeID)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("upload file: unexpected status %s", resp.Status)
	}
	return nil
}

// uploadFromPath opens filePath and runs the upload flow on its contents.
func (c *Client) uploadFromPath(ctx context.Context, spec uploadSpec, filePath, modelID string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()
	return c.upload(ctx, spec, f, filePath, modelID)
}
