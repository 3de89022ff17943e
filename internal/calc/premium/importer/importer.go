package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"Pumpsizer/internal/calc/pump"

	"github.com/xuri/excelize/v2"
)

// Columns is the fixed column order of an import sheet. The first row of the
// sheet is a header and is not read.
var Columns = []string{
	"flow_rate",
	"fluid_sg",
	"pump_efficiency",
	"suction_static_head",
	"discharge_static_head",
	"suction_pressure",
	"discharge_pressure",
	"suction_pipe_length",
	"suction_pipe_id",
	"suction_c_factor",
	"discharge_pipe_length",
	"discharge_pipe_id",
	"discharge_c_factor",
	"suction_fittings",
	"discharge_fittings",
}

type Row struct {
	Line    int         `json:"line"`
	Input   pump.Input  `json:"input"`
	Result  pump.Result `json:"result"`
	Summary []string    `json:"summary"`
}

type Skip struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Output struct {
	UnitSystem pump.UnitSystem `json:"unit_system"`
	Count      int             `json:"count"`
	Rows       []Row           `json:"rows"`
	Skipped    []Skip          `json:"skipped,omitempty"`
}

// Import sizes every data row of the first sheet. Rows that cannot be parsed
// or sized are recorded in Skipped and do not stop the import.
func Import(r io.Reader, unit string) (Output, error) {
	units, err := pump.ParseUnitSystem(unit)
	if err != nil {
		return Output{}, err
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Output{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return Output{}, fmt.Errorf("read sheet: %w", err)
	}
	if len(rows) < 2 {
		return Output{}, fmt.Errorf("empty sheet")
	}

	out := Output{UnitSystem: units}
	for i := 1; i < len(rows); i++ {
		line := i + 1
		if blank(rows[i]) {
			continue
		}
		in, err := parseRow(rows[i])
		if err == nil {
			err = in.Validate()
		}
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Line: line, Reason: err.Error()})
			continue
		}
		res, err := pump.Size(string(units), in, nil)
		if err != nil {
			out.Skipped = append(out.Skipped, Skip{Line: line, Reason: err.Error()})
			continue
		}
		out.Rows = append(out.Rows, Row{Line: line, Input: in, Result: res, Summary: pump.NewResponse(res).Summary})
	}
	out.Count = len(out.Rows)
	return out, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow turns one sheet row into an input over the defaults. Blank cells
// keep the default value.
func parseRow(row []string) (pump.Input, error) {
	patch := make(map[string]any, len(Columns))
	for i, col := range Columns {
		if i >= len(row) {
			break
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" {
			continue
		}
		if strings.HasSuffix(col, "_fittings") {
			m, err := ParseFittings(cell)
			if err != nil {
				return pump.Input{}, fmt.Errorf("%s: %w", col, err)
			}
			patch[col] = m
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return pump.Input{}, fmt.Errorf("%s: invalid number %q", col, cell)
		}
		patch[col] = v
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return pump.Input{}, err
	}
	return pump.DecodeInput(bytes.NewReader(data), pump.DefaultInput())
}

// ParseFittings reads a fittings cell of the form "tag=qty;tag=qty".
func ParseFittings(s string) (map[string]int, error) {
	out := map[string]int{}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, qty, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("fitting %q is not tag=qty", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("fitting %q: invalid quantity", part)
		}
		out[strings.TrimSpace(tag)] += n
	}
	return out, nil
}

var resultHeader = []any{"line", "flow_rate", "tdh", "required_power", "power_unit", "hf_suction", "hf_discharge", "hf_total", "head_unit", "unsatisfiable", "warnings"}

func cellValue(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return pump.FormatValue(v)
	}
	return v
}

// WriteResults writes the sized rows as an xlsx workbook with a single
// "Results" sheet.
func WriteResults(w io.Writer, out Output) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Results"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &resultHeader); err != nil {
		return err
	}
	for i, row := range out.Rows {
		flow := 0.0
		if row.Input.FlowRate != nil {
			flow = *row.Input.FlowRate
		}
		res := row.Result
		values := []any{
			row.Line,
			flow,
			cellValue(res.TDH),
			cellValue(res.RequiredPower),
			res.PowerUnit,
			cellValue(res.SuctionFriction),
			cellValue(res.DischargeFriction),
			cellValue(res.TotalFriction),
			res.HeadUnit,
			res.Unsatisfiable,
			strings.Join(res.Warnings, "; "),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}
