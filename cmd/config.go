package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration in effect after merging defaults, the config
file and VCSP_* environment overrides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := appConfig

		fmt.Fprintln(out)
		fmt.Fprintln(out, "  Effective configuration:")
		fmt.Fprintln(out)
		fmt.Fprintf(out, "    format.default        %q\n", cfg.Format.Default)
		fmt.Fprintf(out, "    format.strict         %v\n", cfg.Format.Strict)
		fmt.Fprintf(out, "    output.fallback       %q\n", cfg.Output.Fallback)
		fmt.Fprintf(out, "    output.color          %v\n", cfg.Output.Color)
		fmt.Fprintf(out, "    dirty.mode            %s\n", cfg.DirtyMode())
		fmt.Fprintf(out, "    dirty.max_entries     %d\n", cfg.Dirty.MaxEntries)
		fmt.Fprintf(out, "    dirty.marker          %q\n", cfg.Dirty.Marker)
		fmt.Fprintf(out, "    dirty.unknown_marker  %q\n", cfg.Dirty.UnknownMarker)
		fmt.Fprintf(out, "    dirty.show_unknown    %v\n", cfg.Dirty.ShowUnknown)
		fmt.Fprintf(out, "    divergence.ahead_marker   %q\n", cfg.Divergence.AheadMarker)
		fmt.Fprintf(out, "    divergence.behind_marker  %q\n", cfg.Divergence.BehindMarker)
		fmt.Fprintf(out, "    detect.order          %s\n", orderString(cfg.Detect.Order))
		fmt.Fprintf(out, "    locate.max_depth      %d\n", cfg.Locate.MaxDepth)
		fmt.Fprintf(out, "    symbols.git           %q\n", cfg.Symbols.Git)
		fmt.Fprintf(out, "    symbols.hg            %q\n", cfg.Symbols.Hg)
		fmt.Fprintln(out)
		return nil
	},
}

func orderString(order []string) string {
	if len(order) == 0 {
		return "(default)"
	}
	return strings.Join(order, ", ")
}
