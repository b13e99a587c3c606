package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredicateString(t *testing.T) {
	assert.Equal(t, "<all>", Predicate{}.String())
	assert.Equal(t, "OBJECTID = 3", Equals("OBJECTID", 3).String())
	assert.Equal(t, "Zone IN [R1 R2]", Predicate{Field: "Zone", Values: []interface{}{"R1", "R2"}}.String())
	assert.True(t, Predicate{}.All())
	assert.False(t, Equals("OBJECTID", 3).All())
}

func TestTableString(t *testing.T) {
	assert.Equal(t, "parcels", Table{Name: "parcels", IDField: "OBJECTID"}.String())
}

func TestParsePredicate(t *testing.T) {
	tests := []struct {
		expr     string
		expected Predicate
	}{
		{"all", Predicate{}},
		{" ALL ", Predicate{}},
		{"OBJECTID=3", Predicate{Field: "OBJECTID", Values: []interface{}{"3"}}},
		{"Zone = R1, R2 ,", Predicate{Field: "Zone", Values: []interface{}{"R1", "R2"}}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := ParsePredicate(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestParsePredicate_Invalid(t *testing.T) {
	for _, expr := range []string{"", "OBJECTID", "=3", "Zone=", "Zone= , "} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParsePredicate(expr)
			assert.Error(t, err)
		})
	}
}
