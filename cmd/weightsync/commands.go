package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"weightsync/internal"
	"weightsync/internal/di"
	"weightsync/internal/structures"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

var errOffline = errors.New("remote is unreachable, records stay pending (use --force to try anyway)")

type toolkitFactory func(flags *structures.CliFlags) (*internal.Toolkit, error)

func newRootCmd() *cobra.Command {
	return buildRootCmd(di.InitToolkit)
}

func buildRootCmd(initToolkit toolkitFactory) *cobra.Command {
	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:           "weightsync",
		Short:         "Offline-first weight log store with background sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&flags.DebugMode, "debug", "d", false, "log to the console as well")

	withToolkit := func(run func(cmd *cobra.Command, tk *internal.Toolkit) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			tk, err := initToolkit(flags)
			if err != nil {
				return err
			}
			defer func() { _ = tk.Close() }()
			return run(cmd, tk)
		}
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the sync daemon and HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := di.InitApp(flags)
			if err != nil {
				return err
			}
			return app.Run()
		},
	}

	var force bool
	drainCmd := &cobra.Command{
		Use:   "drain",
		Short: "Push every pending record once and print the result",
		RunE: withToolkit(func(cmd *cobra.Command, tk *internal.Toolkit) error {
			return runDrain(cmd.Context(), cmd.OutOrStdout(), tk, force)
		}),
	}
	drainCmd.Flags().BoolVar(&force, "force", false, "drain even when the connectivity probe fails")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show storage accounting",
		RunE: withToolkit(func(cmd *cobra.Command, tk *internal.Toolkit) error {
			stats, err := tk.Store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		}),
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove structurally invalid records",
		RunE: withToolkit(func(cmd *cobra.Command, tk *internal.Toolkit) error {
			removed, err := tk.Store.ValidateAndCleanup(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed %d invalid records\n", removed)
			return err
		}),
	}

	var yes bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all offline data, including unsynced records",
		RunE: withToolkit(func(cmd *cobra.Command, tk *internal.Toolkit) error {
			if !yes {
				return errors.New("refusing to delete offline data without --yes")
			}
			if err := tk.Store.ClearAll(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "offline data cleared")
			return err
		}),
	}
	clearCmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	root.AddCommand(serveCmd, drainCmd, statusCmd, cleanupCmd, clearCmd)
	return root
}

func runDrain(ctx context.Context, out io.Writer, tk *internal.Toolkit, force bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !tk.Prober.Probe(ctx) && !force {
		return errOffline
	}
	result, err := tk.Driver.DrainPendingQueue(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%d synced, %d failed\n", result.Synced, result.Failed)
	return err
}

func printJSON(out io.Writer, v any) error {
	gson, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(gson))
	return err
}
