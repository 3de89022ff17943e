package recommend

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Pumpsizer/internal/calc/pump"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMotor(t *testing.T) {
	cases := []struct {
		name   string
		in     MotorInput
		rating float64
		unit   string
	}{
		{"imperial reference", MotorInput{UnitSystem: "imperial", RequiredPower: 2.5891774782830654}, 3, "HP"},
		{"si reference", MotorInput{UnitSystem: "si", RequiredPower: 3.324686921136446}, 4, "kW"},
		{"exact rating", MotorInput{UnitSystem: "imperial", RequiredPower: 5, ServiceFactor: 1}, 5, "HP"},
		{"custom service factor", MotorInput{UnitSystem: "SI", RequiredPower: 10, ServiceFactor: 1.25}, 15, "kW"},
		{"tiny", MotorInput{UnitSystem: "si", RequiredPower: 0.01}, 0.18, "kW"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Motor(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.rating, res.Rating)
			assert.Equal(t, tc.unit, res.Unit)
			assert.GreaterOrEqual(t, res.Rating, res.DesignPower)
			assert.InDelta(t, tc.in.RequiredPower/tc.rating, res.Loading, 1e-12)
		})
	}
}

func TestMotor_DefaultServiceFactor(t *testing.T) {
	res, err := Motor(MotorInput{UnitSystem: "imperial", RequiredPower: 10})
	require.NoError(t, err)
	assert.Equal(t, DefaultServiceFactor, res.ServiceFactor)
	assert.InDelta(t, 11.5, res.DesignPower, 1e-12)
	assert.Equal(t, 15.0, res.Rating)
}

func TestMotor_Errors(t *testing.T) {
	res, err := pump.Size("imperial", pump.DefaultInput().Merge(pump.Input{
		FlowRate: pump.Float(100), SuctionStaticHead: pump.Float(0), DischargeStaticHead: pump.Float(10),
		SuctionPipeLength: pump.Float(10), SuctionPipeID: pump.Float(4), SuctionCFactor: pump.Float(0),
		DischargePipeID: pump.Float(4),
	}), nil)
	require.NoError(t, err)
	require.True(t, res.Unsatisfiable)

	_, err = Motor(MotorInput{UnitSystem: "imperial", RequiredPower: res.RequiredPower})
	assert.ErrorIs(t, err, ErrUnsatisfiable)

	_, err = Motor(MotorInput{UnitSystem: "imperial", RequiredPower: 0})
	assert.Error(t, err)
	_, err = Motor(MotorInput{UnitSystem: "imperial", RequiredPower: 1, ServiceFactor: 0.9})
	assert.Error(t, err)
	_, err = Motor(MotorInput{UnitSystem: "imperial", RequiredPower: 600})
	assert.ErrorIs(t, err, ErrTooLarge)
	_, err = Motor(MotorInput{UnitSystem: "cgs", RequiredPower: 1})
	assert.ErrorIs(t, err, pump.ErrInvalidConfiguration)
}

func TestRatingsAreSortedCopies(t *testing.T) {
	for _, u := range []pump.UnitSystem{pump.Imperial, pump.SI} {
		r := Ratings(u)
		assert.IsIncreasing(t, r)
		r[0] = -1
		assert.Positive(t, Ratings(u)[0])
	}
}

func TestHandler_Motor(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		code   int
		rating float64
	}{
		{"power", `{"unit_system": "imperial", "required_power": 7}`, http.StatusOK, 10},
		{"sized first", `{"unit_system": "imperial", "inputs": {
			"flow_rate": 100, "pump_efficiency": 0.75,
			"suction_static_head": 5, "discharge_static_head": 50,
			"suction_pipe_length": 20, "suction_pipe_id": 6, "suction_c_factor": 130,
			"discharge_pipe_length": 100, "discharge_pipe_id": 4}}`, http.StatusOK, 3},
		{"unsatisfiable", `{"unit_system": "imperial", "inputs": {
			"flow_rate": 100, "suction_static_head": 0, "discharge_static_head": 10,
			"suction_pipe_id": 4, "discharge_pipe_id": 4, "discharge_c_factor": 0}}`, http.StatusUnprocessableEntity, 0},
		{"missing input", `{"unit_system": "si", "inputs": {"flow_rate": 1}}`, http.StatusBadRequest, 0},
		{"bad json", `{`, http.StatusBadRequest, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			(&Handler{}).Motor(rec, httptest.NewRequest(http.MethodPost, "/api/user/tools/pump/motor", strings.NewReader(tc.body)))
			require.Equal(t, tc.code, rec.Code, rec.Body.String())
			if tc.code != http.StatusOK {
				return
			}
			var res MotorResult
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&res))
			assert.Equal(t, tc.rating, res.Rating)
		})
	}
}
