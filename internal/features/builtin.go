package features

import (
	"fmt"
	"sort"
	"sync"
)

// Built-in schema versions.
const (
	// SchemaRF1 passes measurements as floats and specific gravity unscaled.
	SchemaRF1 = "rf1"
	// SchemaRF1Int casts several measurements to integers and encodes
	// specific gravity as round(sg*1000).
	SchemaRF1Int = "rf1-int"
)

var (
	registryMu sync.RWMutex
	registry   = map[string]*Schema{}
)

// Register adds a schema to the process-wide registry. Registering a
// version twice is an error.
func Register(s *Schema) error {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[s.Version]; exists {
		return fmt.Errorf("schema %q already registered", s.Version)
	}
	registry[s.Version] = s
	return nil
}

// Lookup returns the registered schema for a version.
func Lookup(version string) (*Schema, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	s, ok := registry[version]
	if !ok {
		return nil, &UnknownSchemaError{Version: version}
	}
	return s, nil
}

// Versions lists registered schema versions, sorted.
func Versions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for v := range registry {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func init() {
	for _, s := range []*Schema{mustSchema(SchemaRF1, "random forest v1, float measurements", rf1Fields(false)),
		mustSchema(SchemaRF1Int, "random forest v1, integer measurements and sg*1000", rf1Fields(true))} {
		if err := Register(s); err != nil {
			panic(err)
		}
	}
}

func mustSchema(version, desc string, fields []Field) *Schema {
	s, err := NewSchema(version, desc, fields)
	if err != nil {
		panic(err)
	}
	return s
}

var (
	abnormalNormal   = &TruthTable{Positive: "abnormal", Negative: "normal"}
	presentAbsent    = &TruthTable{Positive: "present", Negative: "notpresent"}
	yesNo            = &TruthTable{Positive: "yes", Negative: "no"}
	poorGood         = &TruthTable{Positive: "poor", Negative: "good"}
	specificGravity  = []float64{1.005, 1.010, 1.015, 1.020, 1.025}
	zeroToFiveLevels = []float64{0, 1, 2, 3, 4, 5}
)

// rf1Fields returns the 24-field layout shared by both rf1 variants. The
// integer variant differs only in casts and the specific gravity scale,
// which truncates like int(sg*1000).
func rf1Fields(intVariant bool) []Field {
	measure := CastFloat
	sgScale, sgCast, sgRound := 0.0, CastFloat, RoundNearest
	if intVariant {
		measure = CastInt
		sgScale, sgCast, sgRound = 1000, CastInt, RoundTruncate
	}

	return []Field{
		{Name: "age", Label: "Age", Unit: "years", Section: SectionBasic,
			Kind: KindInteger, Min: 1, Max: 100, Cast: CastInt, Default: "40"},
		{Name: "blood_pressure", Aliases: []string{"bp"}, Label: "Blood Pressure", Unit: "mm/Hg", Section: SectionBasic,
			Kind: KindInteger, Min: 50, Max: 180, Cast: CastInt, Default: "80"},
		{Name: "specific_gravity", Aliases: []string{"sg"}, Label: "Specific Gravity", Section: SectionLaboratory,
			Kind: KindDiscrete, Allowed: specificGravity, Scale: sgScale, Cast: sgCast, Round: sgRound, Default: "1.020"},
		{Name: "albumin", Aliases: []string{"al"}, Label: "Albumin", Section: SectionLaboratory,
			Kind: KindOrdinal, Allowed: zeroToFiveLevels, Cast: CastInt, Default: "0"},
		{Name: "sugar", Aliases: []string{"su"}, Label: "Sugar", Section: SectionLaboratory,
			Kind: KindOrdinal, Allowed: zeroToFiveLevels, Cast: CastInt, Default: "0"},
		{Name: "red_blood_cells", Aliases: []string{"rbc"}, Label: "Red Blood Cells", Section: SectionHistory,
			Kind: KindBinary, Truth: abnormalNormal, Choices: []string{"normal", "abnormal"}, Cast: CastInt, Default: "normal"},
		{Name: "pus_cell", Aliases: []string{"pc"}, Label: "Pus Cell", Section: SectionHistory,
			Kind: KindBinary, Truth: abnormalNormal, Choices: []string{"normal", "abnormal"}, Cast: CastInt, Default: "normal"},
		{Name: "pus_cell_clumps", Aliases: []string{"pcc"}, Label: "Pus Cell Clumps", Section: SectionHistory,
			Kind: KindBinary, Truth: presentAbsent, Choices: []string{"present", "notpresent"}, Cast: CastInt, Default: "present"},
		{Name: "bacteria", Aliases: []string{"ba"}, Label: "Bacteria", Section: SectionHistory,
			Kind: KindBinary, Truth: presentAbsent, Choices: []string{"present", "notpresent"}, Cast: CastInt, Default: "present"},
		{Name: "blood_glucose_random", Aliases: []string{"bgr"}, Label: "Blood Glucose Random", Unit: "mgs/dl", Section: SectionLaboratory,
			Kind: KindInteger, Min: 0, Max: 500, Cast: CastInt, Default: "100"},
		{Name: "blood_urea", Aliases: []string{"bu"}, Label: "Blood Urea", Unit: "mgs/dl", Section: SectionLaboratory,
			Kind: KindInteger, Min: 0, Max: 200, Cast: measure, Default: "40"},
		{Name: "serum_creatinine", Aliases: []string{"sc"}, Label: "Serum Creatinine", Unit: "mgs/dl", Section: SectionLaboratory,
			Kind: KindFloat, Min: 0, Max: 15, Cast: CastFloat, Default: "1.0"},
		{Name: "sodium", Aliases: []string{"sod"}, Label: "Sodium", Unit: "mEq/L", Section: SectionLaboratory,
			Kind: KindInteger, Min: 0, Max: 200, Cast: measure, Default: "135"},
		{Name: "potassium", Aliases: []string{"pot"}, Label: "Potassium", Unit: "mEq/L", Section: SectionLaboratory,
			Kind: KindFloat, Min: 0, Max: 10, Cast: CastFloat, Default: "4.0"},
		{Name: "hemoglobin", Aliases: []string{"hemo"}, Label: "Hemoglobin", Unit: "gms", Section: SectionLaboratory,
			Kind: KindFloat, Min: 0, Max: 20, Cast: CastFloat, Default: "12.0"},
		{Name: "packed_cell_volume", Aliases: []string{"pcv"}, Label: "Packed Cell Volume", Unit: "%", Section: SectionLaboratory,
			Kind: KindInteger, Min: 0, Max: 60, Cast: measure, Default: "40"},
		{Name: "white_blood_cell_count", Aliases: []string{"wbcc"}, Label: "White Blood Cell Count", Unit: "cells/cumm", Section: SectionLaboratory,
			Kind: KindInteger, Min: 0, Max: 50000, Cast: CastFloat, Default: "8000"},
		{Name: "red_blood_cell_count", Aliases: []string{"rbcc"}, Label: "Red Blood Cell Count", Unit: "millions/cmm", Section: SectionLaboratory,
			Kind: KindFloat, Min: 0, Max: 8, Cast: CastFloat, Default: "4.5"},
		{Name: "hypertension", Aliases: []string{"htn"}, Label: "Hypertension", Section: SectionHistory,
			Kind: KindBinary, Truth: yesNo, Choices: []string{"yes", "no"}, Cast: CastInt, Default: "yes"},
		{Name: "diabetes_mellitus", Aliases: []string{"dm"}, Label: "Diabetes Mellitus", Section: SectionHistory,
			Kind: KindBinary, Truth: yesNo, Choices: []string{"yes", "no"}, Cast: CastInt, Default: "yes"},
		{Name: "coronary_artery_disease", Aliases: []string{"cad"}, Label: "Coronary Artery Disease", Section: SectionHistory,
			Kind: KindBinary, Truth: yesNo, Choices: []string{"yes", "no"}, Cast: CastInt, Default: "yes"},
		{Name: "appetite", Aliases: []string{"appet"}, Label: "Appetite", Section: SectionBasic,
			Kind: KindBinary, Truth: poorGood, Choices: []string{"good", "poor"}, Cast: CastInt, Default: "good"},
		{Name: "pedal_edema", Aliases: []string{"pe"}, Label: "Pedal Edema", Section: SectionBasic,
			Kind: KindBinary, Truth: yesNo, Choices: []string{"yes", "no"}, Cast: CastInt, Default: "yes"},
		{Name: "anemia", Aliases: []string{"ane"}, Label: "Anemia", Section: SectionBasic,
			Kind: KindBinary, Truth: yesNo, Choices: []string{"yes", "no"}, Cast: CastInt, Default: "yes"},
	}
}
