package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// printJSON pretty-prints a value as indented JSON. Decimals render as
// quoted strings and timestamps as RFC 3339, both via their marshalers.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
