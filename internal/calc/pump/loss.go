package pump

import (
	"context"
	"log/slog"
	"math"
)

type Segment string

const (
	SuctionLine   Segment = "suction"
	DischargeLine Segment = "discharge"
)

// Loss is the friction loss of one segment: a finite head, or unsatisfiable
// when the line parameters make the Hazen-Williams formula undefined.
type Loss struct {
	value float64
	err   *DomainError
}

func finiteLoss(hf float64) Loss { return Loss{value: hf} }

func unsatisfiable(err *DomainError) Loss { return Loss{err: err} }

// Head is the loss in head units; +Inf when unsatisfiable.
func (l Loss) Head() float64 {
	if l.err != nil {
		return math.Inf(1)
	}
	return l.value
}

func (l Loss) Unsatisfiable() bool { return l.err != nil }

// Err returns the domain error behind an unsatisfiable loss.
func (l Loss) Err() error {
	if l.err == nil {
		return nil
	}
	return l.err
}

// Diagnostics receives domain errors that do not abort a calculation.
type Diagnostics interface {
	Report(err error)
}

// DiagnosticsFunc adapts a function to Diagnostics.
type DiagnosticsFunc func(err error)

func (f DiagnosticsFunc) Report(err error) { f(err) }

type discard struct{}

func (discard) Report(error) {}

// LogDiagnostics reports domain errors as warnings on logger.
func LogDiagnostics(logger *slog.Logger) Diagnostics {
	return DiagnosticsFunc(func(err error) {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "friction loss error",
			slog.String("error", err.Error()),
			slog.String("component", "pump_engine"))
	})
}

// WarningList collects domain errors for callers that return them to a user.
type WarningList struct {
	Errors []error
}

func (w *WarningList) Report(err error) { w.Errors = append(w.Errors, err) }

// Messages returns the collected errors as strings.
func (w *WarningList) Messages() []string {
	out := make([]string, 0, len(w.Errors))
	for _, err := range w.Errors {
		out = append(out, err.Error())
	}
	return out
}
