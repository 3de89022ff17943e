package pump

import (
	"encoding/json"
	"math"
)

// Result is one sizing pass. Heads are in HeadUnit, power in PowerUnit.
// Infinite values mean the configuration cannot be satisfied.
type Result struct {
	SuctionPressureHead   float64  `json:"p1_head"`
	DischargePressureHead float64  `json:"p2_head"`
	SuctionFriction       float64  `json:"hf_suction"`
	DischargeFriction     float64  `json:"hf_discharge"`
	TotalFriction         float64  `json:"hf_total"`
	TDH                   float64  `json:"tdh"`
	RequiredPower         float64  `json:"required_power"`
	PowerUnit             string   `json:"power_unit"`
	HeadUnit              string   `json:"head_unit"`
	Unsatisfiable         bool     `json:"unsatisfiable"`
	Warnings              []string `json:"warnings,omitempty"`
}

// MarshalJSON writes infinite values as null; JSON has no infinity.
func (r Result) MarshalJSON() ([]byte, error) {
	type wire struct {
		SuctionPressureHead   *float64 `json:"p1_head"`
		DischargePressureHead *float64 `json:"p2_head"`
		SuctionFriction       *float64 `json:"hf_suction"`
		DischargeFriction     *float64 `json:"hf_discharge"`
		TotalFriction         *float64 `json:"hf_total"`
		TDH                   *float64 `json:"tdh"`
		RequiredPower         *float64 `json:"required_power"`
		PowerUnit             string   `json:"power_unit"`
		HeadUnit              string   `json:"head_unit"`
		Unsatisfiable         bool     `json:"unsatisfiable"`
		Warnings              []string `json:"warnings,omitempty"`
	}
	return json.Marshal(wire{
		SuctionPressureHead:   finite(r.SuctionPressureHead),
		DischargePressureHead: finite(r.DischargePressureHead),
		SuctionFriction:       finite(r.SuctionFriction),
		DischargeFriction:     finite(r.DischargeFriction),
		TotalFriction:         finite(r.TotalFriction),
		TDH:                   finite(r.TDH),
		RequiredPower:         finite(r.RequiredPower),
		PowerUnit:             r.PowerUnit,
		HeadUnit:              r.HeadUnit,
		Unsatisfiable:         r.Unsatisfiable,
		Warnings:              r.Warnings,
	})
}

func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

type Engine struct {
	units  UnitSystem
	consts constants
	diag   Diagnostics
	input  Input
	result *Result
}

type Option func(*Engine)

// WithDiagnostics sets the sink for friction-loss domain errors.
// Without it they are dropped; the Result still records them.
func WithDiagnostics(d Diagnostics) Option {
	return func(e *Engine) {
		if d != nil {
			e.diag = d
		}
	}
}

// WithInput starts the engine from in instead of DefaultInput.
func WithInput(in Input) Option {
	return func(e *Engine) { e.input = in.clone() }
}

func NewEngine(unit string, opts ...Option) (*Engine, error) {
	u, err := ParseUnitSystem(unit)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		units:  u,
		consts: u.constants(),
		diag:   discard{},
		input:  DefaultInput(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

func (e *Engine) Units() UnitSystem { return e.units }

// Inputs returns a copy of the held configuration.
func (e *Engine) Inputs() Input { return e.input.clone() }

// SetInputs merges the non-nil fields of patch into the held configuration.
func (e *Engine) SetInputs(patch Input) {
	e.input = e.input.Merge(patch)
}

// FrictionLoss computes the Hazen-Williams loss of one line at flow rate q,
// fittings included as equivalent lengths.
func (e *Engine) FrictionLoss(seg Segment, q float64, line PipeLine) Loss {
	// Only a missing C-factor short-circuits to zero. A present C <= 0 falls
	// through to the domain error below and makes the loss unsatisfiable.
	if q == 0 || line.ID == nil || *line.ID <= 0 || line.CFactor == nil {
		return finiteLoss(0)
	}
	id, c := *line.ID, *line.CFactor
	d := id / e.consts.diameterDiv // same unit as pipe length

	le := 0.0
	if line.Length != nil {
		le = *line.Length
	}
	for tag, qty := range line.Fittings {
		ld, ok := EquivalentLength(tag)
		if !ok || ld == 0 || qty <= 0 {
			continue
		}
		le += float64(qty) * ld * d
	}

	if c <= 0 {
		return e.domainError(seg, "C-Factor cannot be zero.")
	}
	if d == 0 {
		return e.domainError(seg, "Pipe ID cannot be zero.")
	}
	qhw := q / e.consts.flowDiv
	hf := e.consts.hwK * le * math.Pow(qhw/c, flowExponent) / math.Pow(d, diameterExponent)
	return finiteLoss(hf)
}

func (e *Engine) domainError(seg Segment, reason string) Loss {
	err := &DomainError{Segment: seg, Reason: reason}
	e.diag.Report(err)
	return unsatisfiable(err)
}

// Calculate sizes the pump from the held configuration and keeps the
// result, replacing the previous one.
func (e *Engine) Calculate() (Result, error) {
	e.result = nil
	in := e.input
	if field, ok := in.missing(); ok {
		return Result{}, &MissingInputError{Field: field}
	}
	q, sg, eff := *in.FlowRate, *in.FluidSG, *in.PumpEfficiency

	conv := e.consts.pressureHead / sg
	p1 := *in.SuctionPressure * conv
	p2 := *in.DischargePressure * conv

	suction := e.FrictionLoss(SuctionLine, q, in.Suction())
	discharge := e.FrictionLoss(DischargeLine, q, in.Discharge())
	hf := suction.Head() + discharge.Head()

	tdh := (*in.DischargeStaticHead - *in.SuctionStaticHead) + (p2 - p1) + hf

	res := Result{
		SuctionPressureHead:   p1,
		DischargePressureHead: p2,
		SuctionFriction:       suction.Head(),
		DischargeFriction:     discharge.Head(),
		TotalFriction:         hf,
		TDH:                   tdh,
		RequiredPower:         e.power(q, tdh, sg, eff),
		PowerUnit:             e.consts.powerUnit,
		HeadUnit:              e.consts.headUnit,
	}
	for _, l := range []Loss{suction, discharge} {
		if l.Unsatisfiable() {
			res.Unsatisfiable = true
			res.Warnings = append(res.Warnings, l.Err().Error())
		}
	}
	e.result = &res
	return res, nil
}

// power converts flow on its own; it does not reuse the friction-loss flow.
func (e *Engine) power(q, tdh, sg, eff float64) float64 {
	if eff <= 0 {
		return math.Inf(1)
	}
	if e.units == SI {
		qm3s := q / 3600
		return qm3s * tdh * (sg * 1000) * 9.81 / (eff * 1000)
	}
	return q * tdh * sg / (3960 * eff)
}

// Result returns the last calculated result, if any.
func (e *Engine) Result() (Result, bool) {
	if e.result == nil {
		return Result{}, false
	}
	return *e.result, true
}

// Size builds an engine for one input record and calculates it.
func Size(unit string, in Input, diag Diagnostics) (Result, error) {
	e, err := NewEngine(unit, WithInput(in), WithDiagnostics(diag))
	if err != nil {
		return Result{}, err
	}
	return e.Calculate()
}
