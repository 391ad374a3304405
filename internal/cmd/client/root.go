package client

import (
	"github.com/spf13/cobra"
)

// NewRoot constructs a root Cobra command for the IES client.
// It registers the records command group.
func NewRoot(baseURL BaseURLFunc) *cobra.Command {
	root := &cobra.Command{
		Use:   "ies",
		Short: "IES client commands",
	}
	root.AddCommand(NewRecordsCommand(baseURL))
	return root
}
