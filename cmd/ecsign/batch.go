package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/LedgerHQ/nanos-secure-sdk-sub002/pkg/verifier"
)

type batchOptions struct {
	workers int
	format  string
}

func newBatchCommand(a *app) *cobra.Command {
	opts := &batchOptions{workers: -1}
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Verify every signature of a JSON or CSV job file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd, a, opts, args[0])
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&opts.workers, "workers", "w", -1, "Parallel workers (0 = one per CPU, default from config)")
	flags.StringVar(&opts.format, "format", "", "Job file format: json or csv (default from extension)")
	return cmd
}

func runBatch(ctx context.Context, cmd *cobra.Command, a *app, opts *batchOptions, source string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	workers := opts.workers
	if workers < 0 {
		workers = a.cfg.Workers
	}
	client := verifier.NewClient().WithWorkers(workers).WithLogger(a.logger)
	switch opts.format {
	case "":
	case "json":
		client.WithParser(&verifier.JSONParser{})
	case "csv":
		client.WithParser(&verifier.CSVParser{})
	default:
		return errors.Errorf("--format must be json or csv, got %q", opts.format)
	}

	results, err := client.VerifyFile(ctx, source)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "job %d: error: %v\n", r.Index, r.Err)
		case r.Verified:
			fmt.Fprintf(out, "job %d: valid\n", r.Index)
		default:
			fmt.Fprintf(out, "job %d: invalid\n", r.Index)
		}
	}
	verified, rejected, failed := verifier.Tally(results)
	fmt.Fprintf(out, "%d valid, %d invalid, %d errors\n", verified, rejected, failed)
	if rejected+failed > 0 {
		return errors.Errorf("%d of %d signatures did not verify", rejected+failed, len(results))
	}
	return nil
}
