package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/prism-data/prism/internal/catalog"
	"github.com/prism-data/prism/internal/loader"
)

// IngestOptions holds flags for the ingest command.
type IngestOptions struct {
	*RootOptions
	DB string
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &IngestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ingest --db <path> <series.yaml...>",
		Short: "Index series files into the archive catalog",
		Long: `Read series files and index their instrument and time coverage into
the catalog, making them reachable through range loading. Re-ingesting
an already indexed file is a no-op.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "catalog database path (required)")
	cmd.MarkFlagRequired("db")

	return cmd
}

// IngestResult is the payload reported by the ingest command.
type IngestResult struct {
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
}

func runIngest(opts *IngestOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cat, err := catalog.Open(opts.DB)
	if err != nil {
		return WrapExitError(ExitCommandError, "opening catalog", err)
	}
	defer cat.Close()

	ctx := context.Background()
	result := IngestResult{}
	for _, path := range args {
		s, err := loader.ReadFile(path)
		if err != nil {
			formatter.Error(ErrCodeLoadFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, "reading series", err)
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "resolving path", err)
		}
		id, err := cat.WriteEntry(ctx, s.Instrument, s.Start, s.End, abs)
		if err != nil {
			return WrapExitError(ExitCommandError, "indexing series", err)
		}
		if id == "" {
			result.Skipped++
			formatter.VerboseLog("skipped (already indexed): %s", abs)
			continue
		}
		result.Indexed++
		formatter.VerboseLog("indexed %s as %s", abs, id)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d file(s), skipped %d\n", result.Indexed, result.Skipped)
	return nil
}
