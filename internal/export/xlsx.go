package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jseaddons/sleevecut/internal/model"
)

// ExportXLSX writes the opening schedule and invocation outcomes to an
// Excel workbook. The Openings sheet matches the column layout the
// importer accepts for host schedules, so exported data round-trips.
func ExportXLSX(path string, plan Plan, summary model.Summary) error {
	if len(plan.Openings) == 0 && len(summary.Outcomes) == 0 {
		return fmt.Errorf("nothing to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	const openingsSheet = "Openings"
	if err := f.SetSheetName(f.GetSheetName(0), openingsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := []interface{}{
		"ID", "Kind", "Host", "Host Kind", "Orientation",
		"X", "Y", "Z", "Width", "Height", "Depth",
	}
	if err := f.SetSheetRow(openingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, o := range plan.Openings {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			o.ID, o.Kind.String(), o.HostID, o.HostKind.String(), o.Orientation.String(),
			o.Center.X, o.Center.Y, o.Center.Z, o.Width, o.Height, o.Depth,
		}
		if err := f.SetSheetRow(openingsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write opening row: %w", err)
		}
	}

	if len(summary.Outcomes) > 0 {
		const outcomesSheet = "Outcomes"
		if _, err := f.NewSheet(outcomesSheet); err != nil {
			return fmt.Errorf("failed to add sheet: %w", err)
		}

		outcomeHeader := []interface{}{"Run", "Host", "Outcome", "Detail"}
		if err := f.SetSheetRow(outcomesSheet, "A1", &outcomeHeader); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}

		for i, o := range summary.Outcomes {
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			row := []interface{}{o.RunID, o.HostID, o.Reason.String(), o.Detail}
			if err := f.SetSheetRow(outcomesSheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write outcome row: %w", err)
			}
		}
	}

	return f.SaveAs(path)
}
