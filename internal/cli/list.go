package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/ledgerbox/internal/output"
)

// listCmd lists archived backups.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived backups",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cc := GetCmdContext(cmd)
		ctx := cmd.Context()

		svc, err := cc.backups(ctx)
		if err != nil {
			return err
		}
		names, err := svc.List(ctx)
		if err != nil {
			return err
		}
		if names == nil {
			names = []string{}
		}
		return cc.Fmt.Print(output.ListView{Backups: names})
	},
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(listCmd)
}
