package report

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"Pumpsizer/internal/calc/pump"

	"github.com/phpdave11/gofpdf"
)

// Document is one sizing rendered as a single A4 page.
type Document struct {
	Title   string
	Project string
	Author  string
	Notes   string
	Date    time.Time
	Units   pump.UnitSystem
	Input   pump.Input
	Result  pump.Result
}

type row struct {
	label string
	value string
}

func number(v *float64, unit string) string {
	if v == nil {
		return "-"
	}
	if unit == "" {
		return pump.FormatValue(*v)
	}
	return pump.FormatValue(*v) + " " + unit
}

func fittings(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(m))
	for _, tag := range slices.Sorted(maps.Keys(m)) {
		parts = append(parts, fmt.Sprintf("%s x%d", tag, m[tag]))
	}
	return strings.Join(parts, ", ")
}

func inputRows(u pump.UnitSystem, in pump.Input) []row {
	head, press, dia := u.LengthUnit(), u.PressureUnit(), u.DiameterUnit()
	return []row{
		{"Flow rate", number(in.FlowRate, u.FlowUnit())},
		{"Fluid SG", number(in.FluidSG, "")},
		{"Pump efficiency", number(in.PumpEfficiency, "")},
		{"Suction static head", number(in.SuctionStaticHead, head)},
		{"Discharge static head", number(in.DischargeStaticHead, head)},
		{"Suction pressure", number(in.SuctionPressure, press)},
		{"Discharge pressure", number(in.DischargePressure, press)},
		{"Suction pipe length", number(in.SuctionPipeLength, head)},
		{"Suction pipe ID", number(in.SuctionPipeID, dia)},
		{"Suction C-factor", number(in.SuctionCFactor, "")},
		{"Suction fittings", fittings(in.SuctionFittings)},
		{"Discharge pipe length", number(in.DischargePipeLength, head)},
		{"Discharge pipe ID", number(in.DischargePipeID, dia)},
		{"Discharge C-factor", number(in.DischargeCFactor, "")},
		{"Discharge fittings", fittings(in.DischargeFittings)},
	}
}

// Render writes the PDF for doc to w.
func Render(w io.Writer, doc Document) error {
	if doc.Title == "" {
		doc.Title = "Pump Sizing Report"
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, false)
	pdf.SetAuthor(doc.Author, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, doc.Title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Project: %s", doc.Project))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Author: %s", doc.Author))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", doc.Date.Format("2006-01-02")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Unit system: %s", doc.Units))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Inputs")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range inputRows(doc.Units, doc.Input) {
		pdf.CellFormat(60, 6, r.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, r.value, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	for line := range pump.Summary(&doc.Result) {
		switch line {
		case "---":
			pdf.Ln(3)
			continue
		case "Calculation Results", "Head Breakdown":
			pdf.SetFont("Helvetica", "B", 12)
			pdf.Cell(0, 8, line)
			pdf.Ln(8)
			pdf.SetFont("Helvetica", "", 11)
			continue
		}
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}

	if len(doc.Result.Warnings) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(180, 0, 0)
		pdf.Cell(0, 6, "Warnings")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		for _, msg := range doc.Result.Warnings {
			pdf.MultiCell(0, 5, msg, "", "L", false)
		}
		pdf.SetTextColor(0, 0, 0)
	}

	if doc.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 6, "Notes")
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, doc.Notes, "", "L", false)
	}

	return pdf.Output(w)
}
