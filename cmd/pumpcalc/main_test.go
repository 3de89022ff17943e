package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Pumpsizer/internal/calc/premium/importer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const systemYAML = `
flow_rate: 100
pump_efficiency: 0.75
suction_static_head: 5
discharge_static_head: 50
suction_pipe_length: 20
suction_pipe_id: 6
suction_c_factor: 130
discharge_pipe_length: 100
discharge_pipe_id: 4
`

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSize(t *testing.T) {
	path := writeFile(t, "system.yaml", systemYAML)
	pdf := filepath.Join(t.TempDir(), "report.pdf")

	out, _, err := execute(t, "size", "-u", "imperial", "-f", path, "--pdf", pdf)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "Total Dynamic Head (TDH): 76.90 feet", lines[1])
	assert.Equal(t, "Required Power: 2.59 BHP", lines[2])

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestSize_JSONInputAndOutput(t *testing.T) {
	path := writeFile(t, "system.json", `{"flow_rate": 20, "suction_static_head": 2, "discharge_static_head": 30,
		"suction_pipe_length": 10, "suction_pipe_id": 0.15, "discharge_pipe_length": 80, "discharge_pipe_id": 0.1,
		"discharge_fittings": {"90_elbow_std": 4}}`)

	out, _, err := execute(t, "size", "-u", "si", "-f", path, "--json")
	require.NoError(t, err)
	var resp struct {
		Result struct {
			HeadUnit  string `json:"head_unit"`
			PowerUnit string `json:"power_unit"`
		} `json:"result"`
		Summary []string `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "meters", resp.Result.HeadUnit)
	assert.Equal(t, "kW", resp.Result.PowerUnit)
	assert.Len(t, resp.Summary, 8)
}

func TestSize_UnsatisfiableWarns(t *testing.T) {
	path := writeFile(t, "system.yml", strings.Replace(systemYAML, "suction_c_factor: 130", "suction_c_factor: 0", 1))
	out, logs, err := execute(t, "size", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Total Dynamic Head (TDH): +Inf feet")
	assert.Contains(t, out, "Warning: Friction Loss Error (suction): C-Factor cannot be zero.")
	assert.Contains(t, logs, `"msg":"friction loss error"`)
}

func TestSize_Errors(t *testing.T) {
	good := writeFile(t, "system.yaml", systemYAML)
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"units", []string{"size", "-u", "metric", "-f", good}, "Unit system must be 'imperial' or 'si'"},
		{"missing", []string{"size", "-f", writeFile(t, "a.yaml", "flow_rate: 5\n")}, "Input for 'suction static head' is missing."},
		{"unknown key", []string{"size", "-f", writeFile(t, "b.yaml", "flowrate: 5\n")}, "flowrate"},
		{"invalid", []string{"size", "-f", writeFile(t, "c.yaml", "fluid_sg: -1\n")}, "fluid sg must be > 0"},
		{"no file", []string{"size", "-f", filepath.Join(t.TempDir(), "nope.yaml")}, "nope.yaml"},
		{"log level", []string{"size", "--log-level", "loud", "-f", good}, "unknown log level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, stderr, err := execute(t, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
			assert.NotContains(t, stderr, "Error:", "main reports the error once")
		})
	}
}

func TestBatch(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := make([]any, len(importer.Columns))
	for i, c := range importer.Columns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{100, "", 0.75, 5, 50, "", "", 20, 6, 130, 100, 4}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"", "", 0.75, 5, 50}))
	in := filepath.Join(t.TempDir(), "systems.xlsx")
	require.NoError(t, f.SaveAs(in))
	require.NoError(t, f.Close())

	results := filepath.Join(t.TempDir(), "results.xlsx")
	out, _, err := execute(t, "batch", "-u", "imperial", "-f", in, "-o", results)
	require.NoError(t, err)
	assert.Contains(t, out, "TDH (feet)")
	assert.Contains(t, out, "76.90")
	assert.Contains(t, out, "skipped: Input for 'flow rate' is missing.")

	wb, err := excelize.OpenFile(results)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("Results")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFittings(t *testing.T) {
	out, _, err := execute(t, "fittings")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "TAG"))
	assert.Contains(t, out, "Globe Valve Open")
}
