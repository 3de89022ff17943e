package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"Pumpsizer/internal/calc/premium/importer"
	"Pumpsizer/internal/calc/pump"
	"Pumpsizer/internal/calc/report"
	"Pumpsizer/internal/logging"

	"github.com/spf13/cobra"
)

type opts struct {
	unit     string
	file     string
	pdf      string
	asJSON   bool
	out      string
	logLevel string
	project  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o opts
	root := &cobra.Command{
		Use:   "pumpcalc",
		Short: "Pump sizing from the command line",
		Long: `pumpcalc sizes a centrifugal pump for a single-line system: total dynamic
head from static lift, pressure difference and Hazen-Williams friction, then
the required shaft power.

Examples:
  pumpcalc size -u imperial -f system.yaml
  pumpcalc size -u si -f system.json --pdf report.pdf
  pumpcalc batch -u si -f systems.xlsx -o results.xlsx
  pumpcalc fittings`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&o.unit, "units", "u", "imperial", "unit system: imperial or si")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	size := &cobra.Command{
		Use:   "size",
		Short: "Size one system from a YAML or JSON input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, o)
			if err != nil {
				return err
			}
			return runSize(cmd.OutOrStdout(), logger, o)
		},
	}
	size.Flags().StringVarP(&o.file, "file", "f", "", "input file (.yaml, .yml or .json); - reads YAML from stdin")
	size.Flags().StringVar(&o.pdf, "pdf", "", "also write a PDF report to this path")
	size.Flags().StringVar(&o.project, "project", "", "project name for the PDF report")
	size.Flags().BoolVar(&o.asJSON, "json", false, "print the result as JSON")
	_ = size.MarkFlagRequired("file")

	batch := &cobra.Command{
		Use:   "batch",
		Short: "Size every row of an xlsx sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, o)
			if err != nil {
				return err
			}
			return runBatch(cmd.OutOrStdout(), logger, o)
		},
	}
	batch.Flags().StringVarP(&o.file, "file", "f", "", "xlsx workbook, columns: "+strings.Join(importer.Columns, ", "))
	batch.Flags().StringVarP(&o.out, "output", "o", "", "write a results workbook to this path")
	_ = batch.MarkFlagRequired("file")

	fittings := &cobra.Command{
		Use:   "fittings",
		Short: "List the fitting catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printFittings(cmd.OutOrStdout())
		},
	}

	root.AddCommand(size, batch, fittings)
	return root
}

func newLogger(cmd *cobra.Command, o opts) (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewStructuredLogger(cmd.ErrOrStderr(), level), nil
}

func readInput(path string) (pump.Input, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return pump.Input{}, err
		}
		defer f.Close()
		r = f
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return pump.DecodeInput(r, pump.DefaultInput())
	}
	return pump.DecodeInputYAML(r, pump.DefaultInput())
}

func runSize(w io.Writer, logger *slog.Logger, o opts) error {
	units, err := pump.ParseUnitSystem(o.unit)
	if err != nil {
		return err
	}
	in, err := readInput(o.file)
	if err != nil {
		return fmt.Errorf("read %s: %w", o.file, err)
	}
	if err := in.Validate(); err != nil {
		return err
	}
	res, err := pump.Size(string(units), in, pump.LogDiagnostics(logger))
	if err != nil {
		return err
	}

	if o.pdf != "" {
		f, err := os.Create(o.pdf)
		if err != nil {
			return err
		}
		err = report.Render(f, report.Document{Project: o.project, Units: units, Input: in, Result: res})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", o.pdf)
	}

	if o.asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pump.NewResponse(res))
	}
	for line := range pump.Summary(&res) {
		fmt.Fprintln(w, line)
	}
	for _, msg := range res.Warnings {
		fmt.Fprintln(w, "Warning:", msg)
	}
	return nil
}

func runBatch(w io.Writer, logger *slog.Logger, o opts) error {
	f, err := os.Open(o.file)
	if err != nil {
		return err
	}
	defer f.Close()

	out, err := importer.Import(f, o.unit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	units := out.UnitSystem
	fmt.Fprintf(tw, "LINE\tTDH (%s)\tPOWER (%s)\tSTATUS\n", units.HeadUnit(), units.PowerUnit())
	for _, row := range out.Rows {
		status := "ok"
		if row.Result.Unsatisfiable {
			status = "unsatisfiable"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", row.Line, pump.FormatValue(row.Result.TDH), pump.FormatValue(row.Result.RequiredPower), status)
	}
	for _, s := range out.Skipped {
		fmt.Fprintf(tw, "%d\t-\t-\tskipped: %s\n", s.Line, s.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	logger.Info("batch sized", "rows", out.Count, "skipped", len(out.Skipped))

	if o.out == "" {
		return nil
	}
	dst, err := os.Create(o.out)
	if err != nil {
		return err
	}
	if err := importer.WriteResults(dst, out); err != nil {
		dst.Close()
		return fmt.Errorf("write results: %w", err)
	}
	return dst.Close()
}

func printFittings(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TAG\tFITTING\tL/D")
	for _, f := range pump.Fittings() {
		fmt.Fprintf(tw, "%s\t%s\t%g\n", f.Tag, f.Title, f.LD)
	}
	return tw.Flush()
}
