package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-data/prism/internal/loader"
)

// NewRoutesCommand creates the routes command.
func NewRoutesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the loader routing table",
		Long: `Print the loader routing table in consideration order.

Conditioned entries list first and are tried in registration order; the
unconditioned entries after them are the fallbacks for their signature
class. The first entry whose gates and condition accept a call wins.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(rootOpts, cmd)
		},
	}
	return cmd
}

func runRoutes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	routes := loader.New().Routes()
	if opts.Format == "json" {
		return formatter.Success(routes)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-3s %-15s %-30s %-15s %s\n", "#", "HANDLER", "SIGNATURE", "CONDITION", "TYPES")
	for i, r := range routes {
		condition := r.Condition
		if condition == "" {
			condition = "-"
		}
		fmt.Fprintf(out, "%-3d %-15s %-30s %-15s %d\n",
			i+1, r.Handler, r.Signature, condition, r.Constraints)
	}
	return nil
}
