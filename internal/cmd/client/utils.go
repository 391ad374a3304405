package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

// printJSONResponse decodes a JSON response body and pretty-prints it to
// the command's stdout. Non-2xx statuses become errors carrying the
// server's error message when one is present.
func printJSONResponse(cmd *cobra.Command, resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("http error: %s: %s", resp.Status, apiErr.Error)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("http error: %s", resp.Status)
	}
	var data any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
