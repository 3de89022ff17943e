package autodesign

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"Pumpsizer/internal/calc/pump"
)

var ErrNoCandidate = errors.New("no candidate diameter keeps friction within budget")

// Candidate is one pipe size offered to the search.
type Candidate struct {
	Nominal string  `json:"nominal"`
	ID      float64 `json:"id"`
}

// Schedule 40 steel, internal diameters in inches.
var schedule40 = []Candidate{
	{`1"`, 1.049}, {`1-1/4"`, 1.380}, {`1-1/2"`, 1.610}, {`2"`, 2.067},
	{`2-1/2"`, 2.469}, {`3"`, 3.068}, {`4"`, 4.026}, {`5"`, 5.047},
	{`6"`, 6.065}, {`8"`, 7.981}, {`10"`, 10.020}, {`12"`, 11.938},
}

// The same pipes by DN, internal diameters in meters.
var schedule40DN = []Candidate{
	{"DN25", 0.0266}, {"DN32", 0.0351}, {"DN40", 0.0409}, {"DN50", 0.0525},
	{"DN65", 0.0627}, {"DN80", 0.0779}, {"DN100", 0.1023}, {"DN125", 0.1282},
	{"DN150", 0.1541}, {"DN200", 0.2027}, {"DN250", 0.2545}, {"DN300", 0.3032},
}

// Candidates returns the default candidate list for a unit system, smallest first.
func Candidates(u pump.UnitSystem) []Candidate {
	if u == pump.SI {
		return slices.Clone(schedule40DN)
	}
	return slices.Clone(schedule40)
}

type PipeInput struct {
	UnitSystem  string         `json:"unit_system"`
	FlowRate    float64        `json:"flow_rate"`
	Length      float64        `json:"pipe_length"`
	CFactor     float64        `json:"c_factor"`
	Fittings    map[string]int `json:"fittings"`
	MaxFriction float64        `json:"max_friction"`
	Candidates  []float64      `json:"candidates,omitempty"`
}

type PipeResult struct {
	Nominal  string  `json:"nominal,omitempty"`
	ID       float64 `json:"id"`
	Friction float64 `json:"friction"`
	HeadUnit string  `json:"head_unit"`
	Velocity float64 `json:"velocity"`
	Tried    int     `json:"tried"`
	Notes    string  `json:"notes"`
}

// Pipe returns the smallest candidate whose Hazen-Williams loss over the line
// is at most MaxFriction. Custom candidates replace the default list.
func Pipe(in PipeInput) (PipeResult, error) {
	units, err := pump.ParseUnitSystem(in.UnitSystem)
	if err != nil {
		return PipeResult{}, err
	}
	if in.CFactor == 0 {
		in.CFactor = 120
	}
	switch {
	case !(in.FlowRate > 0):
		return PipeResult{}, fmt.Errorf("flow rate must be > 0")
	case in.Length < 0:
		return PipeResult{}, fmt.Errorf("pipe length must be >= 0")
	case in.CFactor < 0:
		return PipeResult{}, fmt.Errorf("c factor must be > 0")
	case !(in.MaxFriction > 0):
		return PipeResult{}, fmt.Errorf("max friction must be > 0")
	}

	candidates := Candidates(units)
	if len(in.Candidates) > 0 {
		candidates = make([]Candidate, 0, len(in.Candidates))
		for _, id := range in.Candidates {
			if !(id > 0) {
				return PipeResult{}, fmt.Errorf("candidate diameter must be > 0, got %g", id)
			}
			candidates = append(candidates, Candidate{ID: id})
		}
		slices.SortFunc(candidates, func(a, b Candidate) int {
			switch {
			case a.ID < b.ID:
				return -1
			case a.ID > b.ID:
				return 1
			}
			return 0
		})
	}

	e, err := pump.NewEngine(string(units))
	if err != nil {
		return PipeResult{}, err
	}
	best := math.Inf(1)
	for i, c := range candidates {
		loss := e.FrictionLoss(pump.DischargeLine, in.FlowRate, pump.PipeLine{
			Length:   pump.Float(in.Length),
			ID:       pump.Float(c.ID),
			CFactor:  pump.Float(in.CFactor),
			Fittings: in.Fittings,
		})
		hf := loss.Head()
		best = min(best, hf)
		if hf <= in.MaxFriction {
			return PipeResult{
				Nominal:  c.Nominal,
				ID:       c.ID,
				Friction: hf,
				HeadUnit: units.HeadUnit(),
				Velocity: velocity(units, in.FlowRate, c.ID),
				Tried:    i + 1,
				Notes:    "Smallest candidate diameter within the friction budget.",
			}, nil
		}
	}
	return PipeResult{}, fmt.Errorf("%w: lowest loss %s %s", ErrNoCandidate, pump.FormatValue(best), units.HeadUnit())
}

// velocity is the mean flow velocity in ft/s or m/s.
func velocity(u pump.UnitSystem, q, id float64) float64 {
	if u == pump.SI {
		return (q / 3600) / (math.Pi * id * id / 4)
	}
	d := id / 12
	return q * 0.002228 / (math.Pi * d * d / 4) // GPM -> ft3/s
}
