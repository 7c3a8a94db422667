package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampPages(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{0, DefaultPages},
		{-4, 1},
		{1, 1},
		{5, 5},
		{10, 10},
		{25, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPages(tt.in), "ClampPages(%d)", tt.in)
	}
}

func TestNewRunParams(t *testing.T) {
	tests := []struct {
		name      string
		company   string
		keywords  []string
		pages     int
		want      RunParams
		wantField string
	}{
		{
			name:     "valid",
			company:  "  Acme Corp ",
			keywords: []string{" navy", "army "},
			pages:    4,
			want:     RunParams{Company: "Acme Corp", Keywords: []string{"navy", "army"}, Pages: 4},
		},
		{
			name:     "pages clamped",
			company:  "Acme",
			keywords: []string{"navy"},
			pages:    50,
			want:     RunParams{Company: "Acme", Keywords: []string{"navy"}, Pages: 10},
		},
		{
			name:      "blank company",
			company:   "   ",
			keywords:  []string{"navy"},
			wantField: "company",
		},
		{
			name:      "no keywords",
			company:   "Acme",
			wantField: "keywords",
		},
		{
			name:      "blank keyword",
			company:   "Acme",
			keywords:  []string{"navy", "  "},
			wantField: "keywords",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRunParams(tt.company, tt.keywords, tt.pages)
			if tt.wantField != "" {
				var cfgErr *ConfigurationError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, tt.wantField, cfgErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
