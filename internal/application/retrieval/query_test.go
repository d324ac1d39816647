package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectQueryType(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantType QueryType
		wantTerm string
	}{
		{"what is question", "What is an alteration?", QueryTypeDefinition, "alteration"},
		{"define form", "Define extra-low voltage", QueryTypeDefinition, "extra-low voltage"},
		{"definition of form", "definition of damp situation", QueryTypeDefinition, "damp situation"},
		{"what does mean", "what does MEN mean in practice", QueryTypeDefinition, "men"},
		{"amendment query", "What has changed in the 2018 edition?", QueryTypeAmendment, ""},
		{"new requirements", "Are there new requirements for pools?", QueryTypeAmendment, ""},
		{"table query", "Show me Table 3 for conductor sizes", QueryTypeTable, ""},
		{"general query", "Minimum clearance above a stove", QueryTypeGeneral, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := DetectQueryType(tt.query)
			assert.Equal(t, tt.wantType, info.Type)
			if tt.wantTerm != "" {
				assert.Equal(t, tt.wantTerm, info.Term)
			}
			assert.Equal(t, tt.wantType == QueryTypeAmendment, info.FilterAmendments)
			assert.Equal(t, tt.wantType == QueryTypeTable, info.BoostTables)
		})
	}
}

func TestQueryExpander(t *testing.T) {
	expander := NewQueryExpander(map[string][]string{
		"RCD":            {"ELCB", "safety switch", "residual current device", "extra"},
		"RCD PROTECTION": {"earth leakage protection"},
	})

	t.Run("appends synonyms after the matched term", func(t *testing.T) {
		expanded, matched := expander.Expand("Is an RCD required in bathrooms?")
		assert.Contains(t, expanded, "RCD ELCB safety switch residual current device")
		assert.Equal(t, []string{"RCD"}, matched)
	})

	t.Run("caps synonyms per term", func(t *testing.T) {
		expanded, _ := expander.Expand("RCD rating")
		assert.NotContains(t, expanded, "extra")
	})

	t.Run("longest term matches first", func(t *testing.T) {
		_, matched := expander.Expand("RCD PROTECTION for socket outlets")
		assert.Equal(t, "RCD PROTECTION", matched[0])
	})

	t.Run("no match leaves query untouched", func(t *testing.T) {
		expanded, matched := expander.Expand("conductor clearance")
		assert.Equal(t, "conductor clearance", expanded)
		assert.Empty(t, matched)
	})

	t.Run("only first occurrence expanded", func(t *testing.T) {
		expanded, _ := expander.Expand("RCD and another RCD")
		assert.Equal(t, "RCD ELCB safety switch residual current device and another RCD", expanded)
	})
}
