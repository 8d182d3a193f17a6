package numerapi

import "errors"

// ErrAPIKeysRequired is returned when an operation requires authorization
// but the client has no credential pair configured. It is raised before
// any network call is made.
var ErrAPIKeysRequired = errors.New("api keys required for this action")

// APIError is a GraphQL-level failure: the HTTP exchange succeeded but the
// response body carried an errors payload. Message holds the first
// human-readable message extracted from that payload.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

// apiError extracts the first readable message from a GraphQL errors
// payload, which is either a list of {message} objects or a {detail}
// object.
func apiError(errs any) error {
	switch v := errs.(type) {
	case []any:
		for _, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			if msg, ok := m["message"].(string); ok {
				return &APIError{Message: msg}
			}
		}
	case map[string]any:
		if detail, ok := v["detail"].(string); ok {
			return &APIError{Message: detail}
		}
	}
	return &APIError{Message: "unknown api error"}
}
