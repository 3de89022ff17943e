package batch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"Pumpsizer/internal/calc/pump"
)

var ErrNoItems = errors.New("no items")

// Input is a set of systems sized in one unit system. Each item is a
// partial record decoded over the defaults.
type Input struct {
	UnitSystem string
	Items      []pump.Input
}

func (in *Input) UnmarshalJSON(data []byte) error {
	var raw struct {
		UnitSystem string            `json:"unit_system"`
		Items      []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	in.UnitSystem = raw.UnitSystem
	in.Items = make([]pump.Input, 0, len(raw.Items))
	for i, item := range raw.Items {
		decoded, err := pump.DecodeInput(bytes.NewReader(item), pump.DefaultInput())
		if err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		in.Items = append(in.Items, decoded)
	}
	return nil
}

type Output struct {
	UnitSystem pump.UnitSystem `json:"unit_system"`
	Results    []pump.Response `json:"results"`
}

// Calculate sizes every item with its own engine. The first item that
// fails validation or is missing an input fails the batch.
func Calculate(in Input) (Output, error) {
	units, err := pump.ParseUnitSystem(in.UnitSystem)
	if err != nil {
		return Output{}, err
	}
	if len(in.Items) == 0 {
		return Output{}, ErrNoItems
	}
	out := Output{UnitSystem: units, Results: make([]pump.Response, 0, len(in.Items))}
	for i, item := range in.Items {
		if err := item.Validate(); err != nil {
			return Output{}, fmt.Errorf("item %d: %w", i, err)
		}
		res, err := pump.Size(string(units), item, nil)
		if err != nil {
			return Output{}, fmt.Errorf("item %d: %w", i, err)
		}
		out.Results = append(out.Results, pump.NewResponse(res))
	}
	return out, nil
}
