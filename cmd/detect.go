package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// detectCmd exposes the locator on its own, making the backend
// precedence observable: it prints which kind won and at which root.
var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Show which repository governs a path",
	Long: `Walk parent directories from the given path (default: the current
directory) and print the detected backend kind and repository root.
When one directory carries markers of several backends the configured
detect.order decides; this command shows the outcome of that rule.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := "."
		if len(args) > 0 {
			start = args[0]
		}
		handle, err := promptSvc.Locate(start)
		if err != nil {
			// Includes domain.ErrNotARepository, mapped to exit 1.
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", handle.Kind, handle.Root)
		return nil
	},
}
