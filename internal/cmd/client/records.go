package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// BaseURLFunc provides the base HTTP API URL (e.g., from env or flag).
type BaseURLFunc func() string

// NewRecordsCommand constructs the `records` command group: thin HTTP
// clients over the hub's record endpoints.
func NewRecordsCommand(baseURL BaseURLFunc) *cobra.Command {
	recordsCmd := &cobra.Command{Use: "records", Short: "Stored telemetry record operations"}

	recordsCmd.AddCommand(
		newRecordsListCommand(baseURL),
		newRecordsGetCommand(baseURL),
		newRecordsDeleteCommand(baseURL),
		newRecordsPurgeCommand(baseURL),
	)
	return recordsCmd
}

// newRecordsListCommand constructs the `records list` subcommand.
func newRecordsListCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := http.Get(baseURL() + "/v1/telemetry/records")
			if err != nil {
				return err
			}
			return printJSONResponse(cmd, resp)
		},
	}
}

// newRecordsGetCommand constructs the `records get` subcommand.
func newRecordsGetCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch one record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := http.Get(baseURL() + "/v1/telemetry/records/" + args[0])
			if err != nil {
				return err
			}
			return printJSONResponse(cmd, resp)
		},
	}
}

// newRecordsDeleteCommand constructs the `records delete` subcommand.
func newRecordsDeleteCommand(baseURL BaseURLFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodDelete,
				baseURL()+"/v1/telemetry/records/"+args[0], nil)
			if err != nil {
				return err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return err
			}
			return printJSONResponse(cmd, resp)
		},
	}
}

// newRecordsPurgeCommand constructs the `records purge` subcommand.
func newRecordsPurgeCommand(baseURL BaseURLFunc) *cobra.Command {
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove records captured before a cutoff",
		RunE: func(cmd *cobra.Command, _ []string) error {
			olderThan, _ := cmd.Flags().GetString("older-than")
			cutoff, err := time.Parse(time.RFC3339, olderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than; use RFC3339, e.g. 2024-05-01T00:00:00Z")
			}
			body, _ := json.Marshal(map[string]any{"older_than": cutoff})
			resp, err := http.Post(baseURL()+"/v1/telemetry/records/purge",
				"application/json", bytes.NewReader(body))
			if err != nil {
				return err
			}
			return printJSONResponse(cmd, resp)
		},
	}
	purgeCmd.Flags().String("older-than", "", "Cutoff timestamp (RFC3339); records strictly older are removed")
	_ = purgeCmd.MarkFlagRequired("older-than")
	return purgeCmd
}
