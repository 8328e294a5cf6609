package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jseaddons/sleevecut/internal/export"
	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/jseaddons/sleevecut/internal/snapshot"
)

// newExportCmd creates the export command with one subcommand per format.
func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export placement results to DXF, PDF, Excel, or labels",
		Long: `Render a snapshot's hosts, runs, and openings to a deliverable:

  dxf     plan-view coordination drawing (layers HOSTS, RUNS, OPENINGS)
  pdf     placement report with plan page and opening schedule
  xlsx    Excel opening schedule with per-candidate outcomes
  labels  QR-coded sleeve labels on an Avery 5160 sheet

Examples:
  sleevecut export dxf block-a.json -o block-a.dxf
  sleevecut export labels block-a.json`,
	}

	cmd.PersistentFlags().StringVarP(&out, "out", "o", "", "output path (default: snapshot name with the format's extension)")

	formats := []struct {
		name  string
		short string
		ext   string
		write func(string, export.Plan, model.Summary) error
	}{
		{"dxf", "Export a plan-view coordination drawing", ".dxf",
			func(path string, plan export.Plan, _ model.Summary) error {
				return export.ExportDXF(path, plan)
			}},
		{"pdf", "Export a placement report", ".pdf", export.ExportPDF},
		{"xlsx", "Export an Excel opening schedule", ".xlsx", export.ExportXLSX},
		{"labels", "Export QR-coded sleeve labels", ".labels.pdf",
			func(path string, plan export.Plan, _ model.Summary) error {
				return export.ExportLabels(path, plan.Openings)
			}},
	}

	for _, f := range formats {
		f := f
		cmd.AddCommand(&cobra.Command{
			Use:   f.name + " <snapshot.json>",
			Short: f.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runExport(cmd, args[0], out, f.ext, f.write)
			},
		})
	}

	return cmd
}

// runExport loads a snapshot and hands its plan to one format writer.
func runExport(cmd *cobra.Command, snapPath, out, ext string, write func(string, export.Plan, model.Summary) error) error {
	logger := loggerFromContext(cmd.Context())
	prog := newProgress(logger)

	snap, err := snapshot.Load(snapPath)
	if err != nil {
		return err
	}

	if out == "" {
		out = strings.TrimSuffix(snapPath, filepath.Ext(snapPath)) + ext
	}

	plan := export.Plan{
		Name:     snap.Name,
		Hosts:    snap.Hosts,
		Runs:     snap.Runs,
		Openings: snap.Openings,
	}

	if err := write(out, plan, model.Summary{}); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	prog.done(fmt.Sprintf("Wrote %s", out))
	return nil
}
