package pump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"reflect"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// Input is the full sizing configuration. Fields are pointers so that a
// partial record can be merged over defaults; a nil field at calculation
// time is a missing input. Field order is the order inputs are checked in.
//
// Units:
//   - FlowRate: GPM (imperial) or m3/hr (SI)
//   - static heads, pipe lengths: ft or m
//   - pressures: psi or kPa (gauge)
//   - pipe IDs: inches (imperial) or meters (SI)
type Input struct {
	FluidSG             *float64       `json:"fluid_sg" yaml:"fluid_sg"`
	PumpEfficiency      *float64       `json:"pump_efficiency" yaml:"pump_efficiency"`
	FlowRate            *float64       `json:"flow_rate" yaml:"flow_rate"`
	SuctionStaticHead   *float64       `json:"suction_static_head" yaml:"suction_static_head"`
	DischargeStaticHead *float64       `json:"discharge_static_head" yaml:"discharge_static_head"`
	SuctionPressure     *float64       `json:"suction_pressure" yaml:"suction_pressure"`
	DischargePressure   *float64       `json:"discharge_pressure" yaml:"discharge_pressure"`
	SuctionPipeLength   *float64       `json:"suction_pipe_length" yaml:"suction_pipe_length"`
	SuctionPipeID       *float64       `json:"suction_pipe_id" yaml:"suction_pipe_id"`
	SuctionCFactor      *float64       `json:"suction_c_factor" yaml:"suction_c_factor"`
	SuctionFittings     map[string]int `json:"suction_fittings" yaml:"suction_fittings"`
	DischargePipeLength *float64       `json:"discharge_pipe_length" yaml:"discharge_pipe_length"`
	DischargePipeID     *float64       `json:"discharge_pipe_id" yaml:"discharge_pipe_id"`
	DischargeCFactor    *float64       `json:"discharge_c_factor" yaml:"discharge_c_factor"`
	DischargeFittings   map[string]int `json:"discharge_fittings" yaml:"discharge_fittings"`
}

// PipeLine is one line segment as seen by the friction-loss routine.
type PipeLine struct {
	Length   *float64
	ID       *float64
	CFactor  *float64
	Fittings map[string]int
}

// Float returns a pointer to v, for building inputs in code.
func Float(v float64) *float64 { return &v }

// DefaultInput returns the reference defaults. Flow rate, static heads and
// pipe IDs have no default and stay nil.
func DefaultInput() Input {
	return Input{
		FluidSG:             Float(1.0),
		PumpEfficiency:      Float(0.70),
		SuctionPressure:     Float(0),
		DischargePressure:   Float(0),
		SuctionPipeLength:   Float(0),
		SuctionCFactor:      Float(120),
		SuctionFittings:     map[string]int{},
		DischargePipeLength: Float(0),
		DischargeCFactor:    Float(120),
		DischargeFittings:   map[string]int{},
	}
}

func (in Input) Suction() PipeLine {
	return PipeLine{Length: in.SuctionPipeLength, ID: in.SuctionPipeID, CFactor: in.SuctionCFactor, Fittings: in.SuctionFittings}
}

func (in Input) Discharge() PipeLine {
	return PipeLine{Length: in.DischargePipeLength, ID: in.DischargePipeID, CFactor: in.DischargeCFactor, Fittings: in.DischargeFittings}
}

// Merge returns in with every non-nil field of patch laid over it.
// Fitting maps are replaced, not merged key by key.
func (in Input) Merge(patch Input) Input {
	out := in.clone()
	dst := reflect.ValueOf(&out).Elem()
	src := reflect.ValueOf(patch)
	for i := 0; i < src.NumField(); i++ {
		if f := src.Field(i); !f.IsNil() {
			dst.Field(i).Set(cloneValue(f))
		}
	}
	return out
}

func (in Input) clone() Input {
	out := in
	v := reflect.ValueOf(&out).Elem()
	for i := 0; i < v.NumField(); i++ {
		if f := v.Field(i); !f.IsNil() {
			f.Set(cloneValue(f))
		}
	}
	return out
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Map:
		return reflect.ValueOf(maps.Clone(v.Interface().(map[string]int)))
	case reflect.Ptr:
		p := reflect.New(v.Elem().Type())
		p.Elem().Set(v.Elem())
		return p
	}
	return v
}

// missing returns the human-readable name of the first nil field.
func (in Input) missing() (string, bool) {
	v := reflect.ValueOf(in)
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if v.Field(i).IsNil() {
			return humanName(jsonName(t.Field(i))), true
		}
	}
	return "", false
}

// clear sets the field tagged key to nil. Unknown keys are ignored; the
// decoders reject them before clear is reached.
func (in *Input) clear(key string) {
	v := reflect.ValueOf(in).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if jsonName(t.Field(i)) == key {
			v.Field(i).Set(reflect.Zero(t.Field(i).Type))
			return
		}
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name
}

func humanName(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// DecodeInput reads a partial JSON record and merges it over base. Unknown
// keys are rejected; an explicit null clears the field, which makes the
// calculation fail with a missing input.
func DecodeInput(r io.Reader, base Input) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, err
	}
	var patch Input
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	// encoding/json folds case when matching tags; keys must match exactly.
	for key := range raw {
		if !knownKey(key) {
			return Input{}, fmt.Errorf("decode input: json: unknown field %q", key)
		}
	}
	return applyPatch(base, patch, raw), nil
}

func knownKey(key string) bool {
	t := reflect.TypeOf(Input{})
	for i := 0; i < t.NumField(); i++ {
		if jsonName(t.Field(i)) == key {
			return true
		}
	}
	return false
}

// DecodeInputYAML is DecodeInput for YAML documents.
func DecodeInputYAML(r io.Reader, base Input) (Input, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Input{}, err
	}
	var patch Input
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&patch); err != nil && err != io.EOF {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Input{}, fmt.Errorf("decode input: %w", err)
	}
	return applyPatch(base, patch, raw), nil
}

func applyPatch(base, patch Input, raw map[string]any) Input {
	out := base.Merge(patch)
	for key, v := range raw {
		if v == nil {
			out.clear(key)
		}
	}
	return out
}

// Validate checks physical ranges of the fields that are set. Nil fields are
// left to Calculate, which reports them as missing.
func (in Input) Validate() error {
	var result *multierror.Error
	check := func(field string, v *float64, ok func(float64) bool, reason string) {
		if v == nil {
			return
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			result = multierror.Append(result, &ValidationError{Field: field, Reason: "must be finite"})
			return
		}
		if !ok(*v) {
			result = multierror.Append(result, &ValidationError{Field: field, Reason: reason})
		}
	}
	positive := func(v float64) bool { return v > 0 }
	nonNegative := func(v float64) bool { return v >= 0 }
	finite := func(float64) bool { return true }

	check("fluid sg", in.FluidSG, positive, "must be > 0")
	check("pump efficiency", in.PumpEfficiency, func(v float64) bool { return v > 0 && v <= 1 }, "must be in (0, 1]")
	check("flow rate", in.FlowRate, nonNegative, "must be >= 0")
	check("suction static head", in.SuctionStaticHead, finite, "")
	check("discharge static head", in.DischargeStaticHead, finite, "")
	check("suction pressure", in.SuctionPressure, finite, "")
	check("discharge pressure", in.DischargePressure, finite, "")
	check("suction pipe length", in.SuctionPipeLength, nonNegative, "must be >= 0")
	check("suction pipe id", in.SuctionPipeID, positive, "must be > 0")
	check("suction c factor", in.SuctionCFactor, nonNegative, "must be >= 0")
	check("discharge pipe length", in.DischargePipeLength, nonNegative, "must be >= 0")
	check("discharge pipe id", in.DischargePipeID, positive, "must be > 0")
	check("discharge c factor", in.DischargeCFactor, nonNegative, "must be >= 0")

	for _, line := range []struct {
		name     string
		fittings map[string]int
	}{{"suction fittings", in.SuctionFittings}, {"discharge fittings", in.DischargeFittings}} {
		for _, tag := range slices.Sorted(maps.Keys(line.fittings)) {
			qty := line.fittings[tag]
			if _, ok := EquivalentLength(tag); !ok {
				result = multierror.Append(result, &ValidationError{Field: line.name, Reason: fmt.Sprintf("has unknown fitting type %q", tag)})
			}
			if qty < 0 {
				result = multierror.Append(result, &ValidationError{Field: line.name, Reason: fmt.Sprintf("quantity of %q must be >= 0", tag)})
			}
		}
	}
	return result.ErrorOrNil()
}
