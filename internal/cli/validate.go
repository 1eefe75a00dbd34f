package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prism-data/prism/internal/manifest"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest-dir>",
		Short: "Validate instrument manifests",
		Long: `Validate CUE instrument manifests without building a loader.

Performs syntax checking and per-instrument field validation, collecting
every error instead of stopping at the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	errs := manifest.Validate(dir)
	result := ValidationResult{Valid: len(errs) == 0}
	for _, err := range errs {
		result.Errors = append(result.Errors, err.Error())
	}

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintln(cmd.OutOrStdout(), "manifests valid")
	} else {
		for _, msg := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "Error [%s]: %s\n", ErrCodeInvalid, msg)
		}
	}

	if !result.Valid {
		return WrapExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)), nil)
	}
	return nil
}
