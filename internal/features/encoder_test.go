package features

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLookup(t *testing.T, version string) *Schema {
	t.Helper()
	s, err := Lookup(version)
	require.NoError(t, err)
	return s
}

// negativeObservation is the "healthy defaults" scenario: every binary field
// on its 0 literal, hemoglobin 12.0, age 40, bp 80.
func negativeObservation() Observation {
	return NewObservation(map[string]string{
		"age": "40", "blood_pressure": "80", "specific_gravity": "1.020",
		"albumin": "0", "sugar": "0",
		"red_blood_cells": "normal", "pus_cell": "normal",
		"pus_cell_clumps": "notpresent", "bacteria": "notpresent",
		"blood_glucose_random": "100", "blood_urea": "40", "serum_creatinine": "1.0",
		"sodium": "135", "potassium": "4.0", "hemoglobin": "12.0",
		"packed_cell_volume": "40", "white_blood_cell_count": "8000", "red_blood_cell_count": "4.5",
		"hypertension": "no", "diabetes_mellitus": "no", "coronary_artery_disease": "no",
		"appetite": "good", "pedal_edema": "no", "anemia": "no",
	})
}

func TestEncode_NegativeScenario(t *testing.T) {
	s := mustLookup(t, SchemaRF1)
	vec, err := NewEncoder(s).Encode(negativeObservation())
	require.NoError(t, err)
	require.Len(t, vec, 24)

	for _, pos := range s.BinaryPositions() {
		assert.Equal(t, 0.0, vec[pos], "binary position %d (%s)", pos, s.Names()[pos])
	}
	assert.Equal(t, 40.0, vec[0])
	assert.Equal(t, 80.0, vec[1])
	assert.Equal(t, 12.0, vec[14])
}

func TestEncode_FixedOrder(t *testing.T) {
	s := mustLookup(t, SchemaRF1)
	want := []string{
		"age", "blood_pressure", "specific_gravity", "albumin", "sugar",
		"red_blood_cells", "pus_cell", "pus_cell_clumps", "bacteria",
		"blood_glucose_random", "blood_urea", "serum_creatinine", "sodium",
		"potassium", "hemoglobin", "packed_cell_volume", "white_blood_cell_count",
		"red_blood_cell_count", "hypertension", "diabetes_mellitus",
		"coronary_artery_disease", "appetite", "pedal_edema", "anemia",
	}
	assert.Equal(t, want, s.Names())
	assert.Equal(t, s.Names(), mustLookup(t, SchemaRF1Int).Names())
}

func TestEncode_Deterministic(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))
	obs := negativeObservation()
	a, err := enc.Encode(obs)
	require.NoError(t, err)
	b, err := enc.Encode(obs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEncode_TruthTables(t *testing.T) {
	s := mustLookup(t, SchemaRF1)
	enc := NewEncoder(s)

	tests := []struct {
		field string
		value string
		want  float64
	}{
		{"red_blood_cells", "abnormal", 1},
		{"red_blood_cells", "normal", 0},
		{"pus_cell", "abnormal", 1},
		{"pus_cell_clumps", "present", 1},
		{"pus_cell_clumps", "notpresent", 0},
		{"bacteria", "present", 1},
		{"hypertension", "yes", 1},
		{"hypertension", "no", 0},
		{"appetite", "poor", 1},
		{"appetite", "good", 0},
		{"pedal_edema", "YES", 1},
		{"anemia", " no ", 0},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			got, err := enc.EncodeField(tt.field, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_UnrecognisedLiteralRejected(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))
	for _, v := range []string{"maybe", "1", "absent", "not present"} {
		_, err := enc.EncodeField("bacteria", v)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "value %q", v)
		assert.Equal(t, "bacteria", verr.Field)
	}
}

func TestEncode_Bounds(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))

	tests := []struct {
		field   string
		value   string
		wantErr bool
	}{
		{"age", "1", false},
		{"age", "100", false},
		{"age", "0", true},
		{"age", "101", true},
		{"blood_pressure", "50", false},
		{"blood_pressure", "180", false},
		{"blood_pressure", "49", true},
		{"blood_pressure", "181", true},
		{"serum_creatinine", "0", false},
		{"serum_creatinine", "15.0", false},
		{"serum_creatinine", "16", true},
		{"serum_creatinine", "-1", true},
		{"white_blood_cell_count", "50000", false},
		{"white_blood_cell_count", "50001", true},
		{"albumin", "5", false},
		{"albumin", "6", true},
		{"albumin", "2.5", true},
		{"specific_gravity", "1.025", false},
		{"specific_gravity", "1.005", false},
		{"specific_gravity", "1.030", true},
		{"specific_gravity", "1.012", true},
		{"age", "40.5", true},
		{"age", "forty", true},
		{"hemoglobin", "NaN", true},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.value, func(t *testing.T) {
			_, err := enc.EncodeField(tt.field, tt.value)
			if tt.wantErr {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEncode_MissingField(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))

	_, err := enc.Encode(negativeObservation().With("hemoglobin", ""))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hemoglobin", verr.Field)
	assert.Contains(t, verr.Error(), "required")
}

func TestEncode_Aliases(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))
	obs := negativeObservation().With("hemoglobin", "").With("hemo", "9.5")
	vec, err := enc.Encode(obs)
	require.NoError(t, err)
	assert.Equal(t, 9.5, vec[14])
}

func TestEncode_IntVariant(t *testing.T) {
	s := mustLookup(t, SchemaRF1Int)
	enc := NewEncoder(s)

	sg := []struct {
		in   string
		want float64
	}{
		{"1.005", 1004},
		{"1.010", 1010},
		{"1.015", 1014},
		{"1.020", 1020},
		{"1.025", 1025},
	}
	for _, tt := range sg {
		got, err := enc.EncodeField("sg", tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "sg %s", tt.in)
	}

	vec, err := enc.Encode(negativeObservation())
	require.NoError(t, err)
	assert.Equal(t, 1020.0, vec[2])
	assert.Equal(t, 135.0, vec[12])
}

func TestEncode_RoundingRuleIsPerField(t *testing.T) {
	sg := Field{Name: "specific_gravity", Label: "Specific Gravity", Section: SectionBasic,
		Kind: KindDiscrete, Allowed: specificGravity, Scale: 1000, Cast: CastInt, Default: "1.020"}

	truncated := sg
	truncated.Round = RoundTruncate

	nearest, err := NewSchema("sg-nearest", "", []Field{sg})
	require.NoError(t, err)
	trunc, err := NewSchema("sg-trunc", "", []Field{truncated})
	require.NoError(t, err)

	got, err := NewEncoder(nearest).EncodeField("specific_gravity", "1.005")
	require.NoError(t, err)
	assert.Equal(t, 1005.0, got)
	assert.Equal(t, "round(x*1000)", sg.Encoding())

	got, err = NewEncoder(trunc).EncodeField("specific_gravity", "1.005")
	require.NoError(t, err)
	assert.Equal(t, 1004.0, got)
	assert.Equal(t, "int(x*1000)", truncated.Encoding())
}

func TestEncodeField_RejectsNonDecimalNotation(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))

	tests := []struct {
		field, raw, reason string
	}{
		{"age", "0x1p5", "not a number"},
		{"age", "4e1", "not a number"},
		{"age", "0x20", "not a number"},
		{"age", "40.5", "must be a whole number"},
		{"albumin", "1e0", "not a number"},
		{"hemoglobin", "0x1p3", "not a number"},
		{"hemoglobin", "1.2e1", "not a number"},
		{"hemoglobin", "Inf", "not a number"},
		{"hemoglobin", "NaN", "not a number"},
		{"specific_gravity", "1.02e0", "not a number"},
	}
	for _, tt := range tests {
		_, err := enc.EncodeField(tt.field, tt.raw)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "%s=%q: got %v", tt.field, tt.raw, err)
		assert.Equal(t, tt.reason, verr.Reason, "%s=%q", tt.field, tt.raw)
	}

	for _, ok := range []struct{ field, raw string }{
		{"age", "40"}, {"age", "+40"}, {"hemoglobin", "12."}, {"hemoglobin", ".5"},
	} {
		_, err := enc.EncodeField(ok.field, ok.raw)
		assert.NoError(t, err, "%s=%q", ok.field, ok.raw)
	}
}

func TestEncode_FloatVariantKeepsSpecificGravity(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))
	got, err := enc.EncodeField("specific_gravity", "1.015")
	require.NoError(t, err)
	assert.InDelta(t, 1.015, got, 1e-12)
}

func TestEncodeField_Unknown(t *testing.T) {
	enc := NewEncoder(mustLookup(t, SchemaRF1))
	_, err := enc.EncodeField("cholesterol", "200")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
}

func TestDefaultObservationEncodes(t *testing.T) {
	for _, v := range Versions() {
		s := mustLookup(t, v)
		vec, err := NewEncoder(s).Encode(DefaultObservation(s))
		require.NoError(t, err, "schema %s", v)
		assert.Len(t, vec, s.Len())
	}
}
