// Package importer reads run and host schedules from CSV and Excel files.
// It supports automatic delimiter detection, flexible column mapping, and
// case-insensitive header recognition, so schedules exported from different
// authoring tools import without manual reshaping.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jseaddons/sleevecut/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of an import operation. Rows that fail to
// parse are reported in Errors without aborting the rest of the file.
type ImportResult struct {
	Runs      []model.LinearRun
	Hosts     []model.StructuralHost
	Insulated []string // IDs of imported runs flagged as insulated
	Errors    []string
	Warnings  []string
}

// runColumns maps semantic run-schedule column roles to their indices.
type runColumns struct {
	Label     int
	Shape     int
	Diameter  int
	Width     int
	Height    int
	StartX    int
	StartY    int
	StartZ    int
	EndX      int
	EndY      int
	EndZ      int
	Insulated int
}

// hostColumns maps semantic host-schedule column roles to their indices.
type hostColumns struct {
	Label     int
	Kind      int
	MinX      int
	MinY      int
	MinZ      int
	MaxX      int
	MaxY      int
	MaxZ      int
	Thickness int
}

// runHeaderAliases maps canonical run column names to accepted aliases,
// all lowercase.
var runHeaderAliases = map[string][]string{
	"label":     {"label", "name", "run", "mark", "service", "item", "description"},
	"shape":     {"shape", "profile", "type", "form", "section"},
	"diameter":  {"diameter", "dia", "od", "nominal diameter", "size"},
	"width":     {"width", "w", "duct width"},
	"height":    {"height", "h", "duct height"},
	"startx":    {"start x", "x1", "sx", "from x"},
	"starty":    {"start y", "y1", "sy", "from y"},
	"startz":    {"start z", "z1", "sz", "from z", "start elevation"},
	"endx":      {"end x", "x2", "ex", "to x"},
	"endy":      {"end y", "y2", "ey", "to y"},
	"endz":      {"end z", "z2", "ez", "to z", "end elevation"},
	"insulated": {"insulated", "insulation", "ins", "lagged"},
}

// hostHeaderAliases maps canonical host column names to accepted aliases.
var hostHeaderAliases = map[string][]string{
	"label":     {"label", "name", "host", "mark", "element", "description"},
	"kind":      {"kind", "category", "type", "host kind"},
	"minx":      {"min x", "x min", "x1"},
	"miny":      {"min y", "y min", "y1"},
	"minz":      {"min z", "z min", "z1"},
	"maxx":      {"max x", "x max", "x2"},
	"maxy":      {"max y", "y max", "y2"},
	"maxz":      {"max z", "z max", "z2"},
	"thickness": {"thickness", "width", "depth", "b"},
}

// DetectCSVDelimiter determines the most likely delimiter for the given CSV
// content. It tries comma, semicolon, tab, and pipe; the candidate producing
// the most consistent multi-column split across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	best := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			best = delim
		}
	}

	return best
}

// matchHeader resolves a header cell against an alias table, returning the
// canonical role name or "".
func matchHeader(cell string, aliases map[string][]string) string {
	normalized := strings.ToLower(strings.TrimSpace(cell))
	for role, names := range aliases {
		for _, alias := range names {
			if normalized == alias {
				return role
			}
		}
	}
	return ""
}

// detectRunColumns examines a header row and returns a runColumns mapping.
// Returns the mapping and true if a header was detected, or a positional
// mapping and false otherwise.
func detectRunColumns(row []string) (runColumns, bool) {
	m := runColumns{
		Label: -1, Shape: -1, Diameter: -1, Width: -1, Height: -1,
		StartX: -1, StartY: -1, StartZ: -1,
		EndX: -1, EndY: -1, EndZ: -1,
		Insulated: -1,
	}

	isHeader := false
	for i, cell := range row {
		role := matchHeader(cell, runHeaderAliases)
		if role == "" {
			continue
		}
		isHeader = true
		set := func(dst *int) {
			if *dst == -1 {
				*dst = i
			}
		}
		switch role {
		case "label":
			set(&m.Label)
		case "shape":
			set(&m.Shape)
		case "diameter":
			set(&m.Diameter)
		case "width":
			set(&m.Width)
		case "height":
			set(&m.Height)
		case "startx":
			set(&m.StartX)
		case "starty":
			set(&m.StartY)
		case "startz":
			set(&m.StartZ)
		case "endx":
			set(&m.EndX)
		case "endy":
			set(&m.EndY)
		case "endz":
			set(&m.EndZ)
		case "insulated":
			set(&m.Insulated)
		}
	}

	if !isHeader {
		// Positional fallback:
		// Label, Shape, Diameter, Width, Height, X1..Z1, X2..Z2, Insulated
		return runColumns{
			Label: 0, Shape: 1, Diameter: 2, Width: 3, Height: 4,
			StartX: 5, StartY: 6, StartZ: 7,
			EndX: 8, EndY: 9, EndZ: 10,
			Insulated: 11,
		}, false
	}

	return m, true
}

// detectHostColumns examines a header row and returns a hostColumns mapping,
// or a positional mapping when no header is recognized.
func detectHostColumns(row []string) (hostColumns, bool) {
	m := hostColumns{
		Label: -1, Kind: -1,
		MinX: -1, MinY: -1, MinZ: -1,
		MaxX: -1, MaxY: -1, MaxZ: -1,
		Thickness: -1,
	}

	isHeader := false
	for i, cell := range row {
		role := matchHeader(cell, hostHeaderAliases)
		if role == "" {
			continue
		}
		isHeader = true
		set := func(dst *int) {
			if *dst == -1 {
				*dst = i
			}
		}
		switch role {
		case "label":
			set(&m.Label)
		case "kind":
			set(&m.Kind)
		case "minx":
			set(&m.MinX)
		case "miny":
			set(&m.MinY)
		case "minz":
			set(&m.MinZ)
		case "maxx":
			set(&m.MaxX)
		case "maxy":
			set(&m.MaxY)
		case "maxz":
			set(&m.MaxZ)
		case "thickness":
			set(&m.Thickness)
		}
	}

	if !isHeader {
		return hostColumns{
			Label: 0, Kind: 1,
			MinX: 2, MinY: 3, MinZ: 4,
			MaxX: 5, MaxY: 6, MaxZ: 7,
			Thickness: 8,
		}, false
	}

	return m, true
}

// getCell safely retrieves a trimmed cell value by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseFloat reads a required numeric cell, reporting the field name on error.
func parseFloat(row []string, idx int, field, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: missing %s value", rowLabel, field)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: invalid %s '%s'", rowLabel, field, s)
	}
	return v, ""
}

// parseBool interprets schedule truthy strings like yes/y/true/1.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "x":
		return true
	}
	return false
}

// parseRunRow extracts a run from a row. Returns the run, whether it is
// insulated, and an error message for unusable rows.
func parseRunRow(row []string, m runColumns, rowLabel string, runCount int) (model.LinearRun, bool, string) {
	label := getCell(row, m.Label)
	if label == "" {
		label = fmt.Sprintf("Run %d", runCount+1)
	}

	sx, errMsg := parseFloat(row, m.StartX, "start x", rowLabel)
	if errMsg != "" {
		return model.LinearRun{}, false, errMsg
	}
	sy, errMsg := parseFloat(row, m.StartY, "start y", rowLabel)
	if errMsg != "" {
		return model.LinearRun{}, false, errMsg
	}
	sz, errMsg := parseFloat(row, m.StartZ, "start z", rowLabel)
	if errMsg != "" {
		return model.LinearRun{}, false, errMsg
	}
	ex, errMsg := parseFloat(row, m.EndX, "end x", rowLabel)
	if errMsg != "" {
		return model.LinearRun{}, false, errMsg
	}
	ey, errMsg := parseFloat(row, m.EndY, "end y", rowLabel)
	if errMsg != "" {
		return model.LinearRun{}, false, errMsg
	}
	ez, errMsg := parseFloat(row, m.EndZ, "end z", rowLabel)
	if errMsg != "" {
		return model.LinearRun{}, false, errMsg
	}

	start := model.Point3D{X: sx, Y: sy, Z: sz}
	end := model.Point3D{X: ex, Y: ey, Z: ez}
	if start.DistanceTo(end) < 1e-9 {
		return model.LinearRun{}, false, fmt.Sprintf("%s: start and end coincide", rowLabel)
	}

	shape := strings.ToLower(getCell(row, m.Shape))
	diaStr := getCell(row, m.Diameter)

	var run model.LinearRun
	switch {
	case shape == "rectangular" || shape == "rect" || shape == "duct":
		w, errMsg := parseFloat(row, m.Width, "width", rowLabel)
		if errMsg != "" {
			return model.LinearRun{}, false, errMsg
		}
		h, errMsg := parseFloat(row, m.Height, "height", rowLabel)
		if errMsg != "" {
			return model.LinearRun{}, false, errMsg
		}
		if w <= 0 || h <= 0 {
			return model.LinearRun{}, false, fmt.Sprintf("%s: width and height must be positive", rowLabel)
		}
		run = model.NewRectangularRun(label, w, h, start, end)

	case shape == "circular" || shape == "round" || shape == "pipe" || (shape == "" && diaStr != ""):
		dia, errMsg := parseFloat(row, m.Diameter, "diameter", rowLabel)
		if errMsg != "" {
			return model.LinearRun{}, false, errMsg
		}
		if dia <= 0 {
			return model.LinearRun{}, false, fmt.Sprintf("%s: diameter must be positive", rowLabel)
		}
		run = model.NewCircularRun(label, dia, start, end)

	default:
		return model.LinearRun{}, false, fmt.Sprintf("%s: unknown shape '%s'", rowLabel, shape)
	}

	return run, parseBool(getCell(row, m.Insulated)), ""
}

// parseHostRow extracts a host from a row. Hosts import as axis-aligned box
// solids; walls get a centerline along their long plan axis so centering and
// end-fit decisions work on imported geometry.
func parseHostRow(row []string, m hostColumns, rowLabel string, hostCount int) (model.StructuralHost, string) {
	label := getCell(row, m.Label)
	if label == "" {
		label = fmt.Sprintf("Host %d", hostCount+1)
	}

	kind, ok := parseHostKind(getCell(row, m.Kind))
	if !ok {
		return model.StructuralHost{}, fmt.Sprintf("%s: unknown host kind '%s'", rowLabel, getCell(row, m.Kind))
	}

	var box model.BoundingBox
	var errMsg string
	if box.Min.X, errMsg = parseFloat(row, m.MinX, "min x", rowLabel); errMsg != "" {
		return model.StructuralHost{}, errMsg
	}
	if box.Min.Y, errMsg = parseFloat(row, m.MinY, "min y", rowLabel); errMsg != "" {
		return model.StructuralHost{}, errMsg
	}
	if box.Min.Z, errMsg = parseFloat(row, m.MinZ, "min z", rowLabel); errMsg != "" {
		return model.StructuralHost{}, errMsg
	}
	if box.Max.X, errMsg = parseFloat(row, m.MaxX, "max x", rowLabel); errMsg != "" {
		return model.StructuralHost{}, errMsg
	}
	if box.Max.Y, errMsg = parseFloat(row, m.MaxY, "max y", rowLabel); errMsg != "" {
		return model.StructuralHost{}, errMsg
	}
	if box.Max.Z, errMsg = parseFloat(row, m.MaxZ, "max z", rowLabel); errMsg != "" {
		return model.StructuralHost{}, errMsg
	}
	if box.Max.X <= box.Min.X || box.Max.Y <= box.Min.Y || box.Max.Z <= box.Min.Z {
		return model.StructuralHost{}, fmt.Sprintf("%s: box max must exceed min on every axis", rowLabel)
	}

	host := model.NewHost(label, kind, model.BoxSolid(box))

	if thickStr := getCell(row, m.Thickness); thickStr != "" {
		thick, errMsg := parseFloat(row, m.Thickness, "thickness", rowLabel)
		if errMsg != "" {
			return model.StructuralHost{}, errMsg
		}
		switch kind {
		case model.HostWall:
			host.Params = map[string]float64{model.ParamWidth: thick}
		case model.HostFloor:
			host.Params = map[string]float64{model.ParamThickness: thick}
		case model.HostFraming:
			host.Params = map[string]float64{model.ParamFramingWidth: thick}
		}
	}

	if kind == model.HostWall {
		host.Centerline = wallCenterline(box)
	}
	if kind == model.HostFraming {
		host.SpanDirection = framingSpan(box)
	}

	return host, ""
}

// parseHostKind maps schedule category strings to a HostKind.
func parseHostKind(s string) (model.HostKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wall", "walls":
		return model.HostWall, true
	case "floor", "floors", "slab", "slabs":
		return model.HostFloor, true
	case "framing", "beam", "beams", "structural framing":
		return model.HostFraming, true
	}
	return model.HostUnknown, false
}

// wallCenterline derives a two-point centerline through the middle of a box
// along its longer plan axis.
func wallCenterline(box model.BoundingBox) []model.Point3D {
	midY := (box.Min.Y + box.Max.Y) / 2
	midX := (box.Min.X + box.Max.X) / 2
	midZ := (box.Min.Z + box.Max.Z) / 2
	if box.Max.X-box.Min.X >= box.Max.Y-box.Min.Y {
		return []model.Point3D{
			{X: box.Min.X, Y: midY, Z: midZ},
			{X: box.Max.X, Y: midY, Z: midZ},
		}
	}
	return []model.Point3D{
		{X: midX, Y: box.Min.Y, Z: midZ},
		{X: midX, Y: box.Max.Y, Z: midZ},
	}
}

// framingSpan picks the longer plan axis of a box as the member's span.
func framingSpan(box model.BoundingBox) model.Vector3 {
	if box.Max.X-box.Min.X >= box.Max.Y-box.Min.Y {
		return model.Vector3{X: 1}
	}
	return model.Vector3{Y: 1}
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// readCSV parses CSV bytes with delimiter autodetection.
func readCSV(data []byte) ([][]string, []string, error) {
	var warnings []string

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("file is empty")
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read CSV: %w", err)
	}
	return records, warnings, nil
}

// readExcel reads the first sheet of an Excel workbook as string rows.
func readExcel(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read Excel data: %w", err)
	}
	return rows, nil
}

// ImportRunsCSV imports a run schedule from a CSV file. The delimiter and
// column order are detected automatically.
func ImportRunsCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	rows, warnings, err := readCSV(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Warnings = warnings
	return importRunRows(rows, "Line", result.Warnings)
}

// ImportRunsFromReader imports a run schedule from a CSV reader with a known
// delimiter.
func ImportRunsFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importRunRows(records, "Line", nil)
}

// ImportRunsExcel imports a run schedule from the first sheet of an Excel
// workbook.
func ImportRunsExcel(path string) ImportResult {
	result := ImportResult{}
	rows, err := readExcel(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	return importRunRows(rows, "Row", nil)
}

// ImportHostsCSV imports a host schedule from a CSV file.
func ImportHostsCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	rows, warnings, err := readCSV(data)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Warnings = warnings
	return importHostRows(rows, "Line", result.Warnings)
}

// ImportHostsFromReader imports a host schedule from a CSV reader with a
// known delimiter.
func ImportHostsFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	return importHostRows(records, "Line", nil)
}

// ImportHostsExcel imports a host schedule from the first sheet of an Excel
// workbook.
func ImportHostsExcel(path string) ImportResult {
	result := ImportResult{}
	rows, err := readExcel(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	return importHostRows(rows, "Row", nil)
}

// importRunRows is the shared run-schedule logic for CSV and Excel data.
func importRunRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := detectRunColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.StartX == -1 || mapping.StartY == -1 || mapping.StartZ == -1 {
			missing = append(missing, "start coordinates")
		}
		if mapping.EndX == -1 || mapping.EndY == -1 || mapping.EndZ == -1 {
			missing = append(missing, "end coordinates")
		}
		if mapping.Diameter == -1 && (mapping.Width == -1 || mapping.Height == -1) {
			missing = append(missing, "diameter or width/height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		run, insulated, errMsg := parseRunRow(row, mapping, rowLabel, len(result.Runs))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Runs = append(result.Runs, run)
		if insulated {
			result.Insulated = append(result.Insulated, run.ID)
		}
	}

	return result
}

// importHostRows is the shared host-schedule logic for CSV and Excel data.
func importHostRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := detectHostColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Kind == -1 {
			missing = append(missing, "Kind")
		}
		if mapping.MinX == -1 || mapping.MinY == -1 || mapping.MinZ == -1 ||
			mapping.MaxX == -1 || mapping.MaxY == -1 || mapping.MaxZ == -1 {
			missing = append(missing, "box coordinates")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		host, errMsg := parseHostRow(row, mapping, rowLabel, len(result.Hosts))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}

		result.Hosts = append(result.Hosts, host)
	}

	return result
}
