package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jseaddons/sleevecut/internal/importer"
	"github.com/jseaddons/sleevecut/internal/snapshot"
)

// importOpts holds the flags of the import command.
type importOpts struct {
	snapshotPath string  // snapshot to create or extend
	name         string  // snapshot name when creating
	elevation    float64 // DXF centerline elevation in mm
	diameter     float64 // DXF run diameter in mm
}

// newImportCmd creates the import command with runs and hosts subcommands.
func newImportCmd() *cobra.Command {
	opts := importOpts{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import run and host schedules into a snapshot",
		Long: `Import service runs or structural hosts from CSV, Excel, or DXF files
into a snapshot, creating it when it does not exist.

CSV delimiters and column order are detected automatically.

Examples:
  sleevecut import runs pipes.csv -s block-a.json
  sleevecut import runs plan.dxf -s block-a.json --elevation 1200 --diameter 110
  sleevecut import hosts walls.xlsx -s block-a.json`,
	}

	cmd.PersistentFlags().StringVarP(&opts.snapshotPath, "snapshot", "s", "", "snapshot file to create or extend (required)")
	cmd.PersistentFlags().StringVar(&opts.name, "name", "", "snapshot name when creating a new one (default: file name)")

	runs := &cobra.Command{
		Use:   "runs <schedule.csv|schedule.xlsx|plan.dxf>",
		Short: "Import service runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importFile(cmd, args[0], opts, importRuns)
		},
	}
	runs.Flags().Float64Var(&opts.elevation, "elevation", 0, "centerline elevation in mm for DXF imports")
	runs.Flags().Float64Var(&opts.diameter, "diameter", 0, "run diameter in mm for DXF imports")

	hosts := &cobra.Command{
		Use:   "hosts <schedule.csv|schedule.xlsx>",
		Short: "Import structural hosts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return importFile(cmd, args[0], opts, importHosts)
		},
	}

	cmd.AddCommand(runs)
	cmd.AddCommand(hosts)
	return cmd
}

// importFile runs one import against the snapshot named by the flags,
// creating the snapshot when missing.
func importFile(cmd *cobra.Command, path string, opts importOpts, parse func(string, importOpts) (importer.ImportResult, error)) error {
	logger := loggerFromContext(cmd.Context())

	if opts.snapshotPath == "" {
		return fmt.Errorf("--snapshot is required")
	}

	snap, err := loadOrCreateSnapshot(opts)
	if err != nil {
		return err
	}

	result, err := parse(path, opts)
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	for _, e := range result.Errors {
		logger.Error(e)
	}
	if len(result.Runs) == 0 && len(result.Hosts) == 0 {
		return fmt.Errorf("nothing imported from %s", path)
	}

	snap.Runs = append(snap.Runs, result.Runs...)
	snap.Hosts = append(snap.Hosts, result.Hosts...)
	snap.Insulated = append(snap.Insulated, result.Insulated...)

	if err := snap.Save(opts.snapshotPath); err != nil {
		return err
	}
	logger.Infof("Imported %d runs, %d hosts into %s",
		len(result.Runs), len(result.Hosts), opts.snapshotPath)
	return rememberSnapshot(opts.snapshotPath, logger)
}

// importRuns dispatches a run import by file extension.
func importRuns(path string, opts importOpts) (importer.ImportResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return importer.ImportRunsCSV(path), nil
	case ".xlsx", ".xls":
		return importer.ImportRunsExcel(path), nil
	case ".dxf":
		if opts.diameter <= 0 {
			return importer.ImportResult{}, fmt.Errorf("--diameter is required for DXF imports")
		}
		return importer.ImportDXFRuns(path, opts.elevation, opts.diameter), nil
	}
	return importer.ImportResult{}, fmt.Errorf("unsupported run schedule format: %s", filepath.Ext(path))
}

// importHosts dispatches a host import by file extension.
func importHosts(path string, opts importOpts) (importer.ImportResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return importer.ImportHostsCSV(path), nil
	case ".xlsx", ".xls":
		return importer.ImportHostsExcel(path), nil
	}
	return importer.ImportResult{}, fmt.Errorf("unsupported host schedule format: %s", filepath.Ext(path))
}

// loadOrCreateSnapshot opens the snapshot named by the flags, creating a
// fresh one when the file does not exist.
func loadOrCreateSnapshot(opts importOpts) (*snapshot.Snapshot, error) {
	if _, err := os.Stat(opts.snapshotPath); os.IsNotExist(err) {
		name := opts.name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(opts.snapshotPath), filepath.Ext(opts.snapshotPath))
		}
		return snapshot.New(name), nil
	}
	return snapshot.Load(opts.snapshotPath)
}
