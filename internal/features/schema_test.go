package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinSchemasRegistered(t *testing.T) {
	assert.Equal(t, []string{SchemaRF1, SchemaRF1Int}, Versions())
	for _, v := range Versions() {
		s := mustLookup(t, v)
		assert.Equal(t, 24, s.Len())
		assert.Len(t, s.BinaryPositions(), 10)
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("xgb9")
	var unk *UnknownSchemaError
	require.ErrorAs(t, err, &unk)
	assert.Equal(t, "xgb9", unk.Version)
}

func TestRegisterDuplicate(t *testing.T) {
	s := mustLookup(t, SchemaRF1)
	require.Error(t, Register(s))
}

func TestFieldResolvesAliases(t *testing.T) {
	s := mustLookup(t, SchemaRF1)
	f, pos, ok := s.Field("PCV")
	require.True(t, ok)
	assert.Equal(t, "packed_cell_volume", f.Name)
	assert.Equal(t, 15, pos)

	_, _, ok = s.Field("cholesterol")
	assert.False(t, ok)
}

func TestNewSchemaRejectsBadFields(t *testing.T) {
	yn := &TruthTable{Positive: "yes", Negative: "no"}
	tests := []struct {
		name   string
		fields []Field
	}{
		{"empty", nil},
		{"no name", []Field{{Kind: KindFloat}}},
		{"inverted range", []Field{{Name: "a", Kind: KindFloat, Min: 5, Max: 1}}},
		{"ordinal without values", []Field{{Name: "a", Kind: KindOrdinal}}},
		{"binary without table", []Field{{Name: "a", Kind: KindBinary, Choices: []string{"yes", "no"}}}},
		{"binary same literal", []Field{{Name: "a", Kind: KindBinary,
			Truth: &TruthTable{Positive: "x", Negative: "x"}, Choices: []string{"x", "x"}}}},
		{"choice outside table", []Field{{Name: "a", Kind: KindBinary, Truth: yn, Choices: []string{"yes", "maybe"}}}},
		{"duplicate alias", []Field{
			{Name: "a", Kind: KindFloat, Max: 1},
			{Name: "b", Aliases: []string{"A"}, Kind: KindFloat, Max: 1},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema("test", "", tt.fields)
			assert.Error(t, err)
		})
	}
}

func TestFieldDescriptions(t *testing.T) {
	s := mustLookup(t, SchemaRF1Int)
	sg, _, _ := s.Field("sg")
	assert.Equal(t, "int(x*1000)", sg.Encoding())
	assert.Equal(t, "1.005, 1.010, 1.015, 1.020, 1.025", sg.Bounds())

	appet, _, _ := s.Field("appetite")
	assert.Equal(t, "poor=1 good=0", appet.Encoding())
	assert.Equal(t, "good | poor", appet.Bounds())

	age, _, _ := s.Field("age")
	assert.Equal(t, "1-100", age.Bounds())
}
