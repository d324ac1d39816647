package milvus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentDeleteExpr(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{
			name: "single id covers chunk suffixes",
			ids:  []string{"c-3.4"},
			want: `id in ["c-3.4"] || id like "c-3.4#%"`,
		},
		{
			name: "multiple ids",
			ids:  []string{"a", "b"},
			want: `id in ["a", "b"] || id like "a#%" || id like "b#%"`,
		},
		{
			name: "blank ids skipped",
			ids:  []string{"  ", "x"},
			want: `id in ["x"] || id like "x#%"`,
		},
		{
			name: "all blank",
			ids:  []string{"", "  "},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, contentDeleteExpr(tt.ids))
		})
	}
}

func TestSearchFilterExpr(t *testing.T) {
	tests := []struct {
		name   string
		params *SearchParams
		want   string
	}{
		{
			name:   "content types only",
			params: &SearchParams{ContentTypes: []string{"text_chunk"}},
			want:   `(content_type == "text_chunk")`,
		},
		{
			name:   "multiple content types",
			params: &SearchParams{ContentTypes: []string{"structured_table", "visual_content"}},
			want:   `(content_type == "structured_table" || content_type == "visual_content")`,
		},
		{
			name:   "amendment filter combined with type filter",
			params: &SearchParams{ContentTypes: []string{"text_chunk"}, AmendmentsOnly: true},
			want:   `(content_type == "text_chunk") && is_amendment == true`,
		},
		{
			name:   "amendment filter alone",
			params: &SearchParams{AmendmentsOnly: true},
			want:   "is_amendment == true",
		},
		{
			name:   "no filter",
			params: &SearchParams{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchFilterExpr(tt.params))
		})
	}
}
