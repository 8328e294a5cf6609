package cli

import (
	"context"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jseaddons/sleevecut/internal/diag"
	"github.com/jseaddons/sleevecut/internal/engine"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/jseaddons/sleevecut/internal/snapshot"
)

// placeOpts holds the shared flags of the run and cluster commands.
type placeOpts struct {
	out    string // output path, input path if empty
	dryRun bool   // compute without saving
}

func (o *placeOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.out, "out", "o", "", "write the updated snapshot to this path instead of overwriting the input")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "report what would be placed without saving the snapshot")
}

// newRunCmd creates the run command: one placement invocation over a
// snapshot.
func newRunCmd() *cobra.Command {
	opts := placeOpts{}

	cmd := &cobra.Command{
		Use:   "run <snapshot.json>",
		Short: "Place sleeve openings where runs cross hosts",
		Long: `Place sleeve openings at every run/host crossing in the snapshot.

Existing openings suppress duplicates, so running twice is safe.

Examples:
  sleevecut run block-a.json
  sleevecut run block-a.json --dry-run
  sleevecut run block-a.json -o block-a-placed.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlacement(cmd.Context(), args[0], opts, func(ctx context.Context, e *engine.Engine) (model.Summary, error) {
				return e.Run(ctx)
			})
		},
	}

	opts.register(cmd)
	return cmd
}

// newClusterCmd creates the cluster command: replace dense groups of
// individual openings with single rectangular openings.
func newClusterCmd() *cobra.Command {
	opts := placeOpts{}

	cmd := &cobra.Command{
		Use:   "cluster <snapshot.json>",
		Short: "Merge dense opening groups into rectangular openings",
		Long: `Group tolerance-connected individual openings per host and orientation,
and replace each group with one rectangular opening enveloping its members.

Clustering only consumes individual openings, so running twice is safe.

Examples:
  sleevecut cluster block-a.json
  sleevecut cluster block-a.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlacement(cmd.Context(), args[0], opts, func(ctx context.Context, e *engine.Engine) (model.Summary, error) {
				return e.Cluster(ctx)
			})
		},
	}

	opts.register(cmd)
	return cmd
}

// runPlacement loads a snapshot, runs one engine invocation against it, and
// saves the mutated snapshot unless --dry-run is set.
func runPlacement(ctx context.Context, path string, opts placeOpts, invoke func(context.Context, *engine.Engine) (model.Summary, error)) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	snap, err := snapshot.Load(path)
	if err != nil {
		return err
	}

	provider := snapshot.NewProvider(snap)
	eng, err := engine.New(provider, provider, provider, snap.Oracle(),
		diag.NewLoggerSink(logger), effectiveSettings(snap, logger))
	if err != nil {
		return err
	}

	summary, err := invoke(ctx, eng)
	if err != nil {
		return err
	}

	prog.done(summary.String())
	for _, f := range summary.Failures() {
		logger.Warnf("run %s / host %s: %s %s", f.RunID, f.HostID, f.Reason, f.Detail)
	}

	if opts.dryRun {
		logger.Info("Dry run, snapshot not saved")
		return nil
	}

	out := opts.out
	if out == "" {
		out = path
	}
	if err := snap.Save(out); err != nil {
		return err
	}
	logger.Infof("Saved %s (%d openings)", out, len(snap.Openings))
	return rememberSnapshot(out, logger)
}

// effectiveSettings resolves the settings for an invocation: the snapshot's
// embedded settings win, then the user's config file, then the defaults.
func effectiveSettings(snap *snapshot.Snapshot, logger *charmlog.Logger) model.Settings {
	if snap.Settings != nil {
		return *snap.Settings
	}
	cfg, err := snapshot.LoadAppConfig(snapshot.DefaultConfigPath())
	if err != nil {
		logger.Warnf("Cannot read config, using defaults: %v", err)
		return model.DefaultSettings()
	}
	return cfg.Settings
}

// rememberSnapshot records a snapshot path in the user's recent list.
// Config write failures are reported but never fail the command.
func rememberSnapshot(path string, logger *charmlog.Logger) error {
	cfgPath := snapshot.DefaultConfigPath()
	cfg, err := snapshot.LoadAppConfig(cfgPath)
	if err != nil {
		logger.Debugf("Cannot read config: %v", err)
		return nil
	}
	cfg.AddRecentSnapshot(path)
	if err := snapshot.SaveAppConfig(cfgPath, cfg); err != nil {
		logger.Debugf("Cannot update config: %v", err)
	}
	return nil
}
