package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-consolidator/internal/types"
)

func TestLocationValue(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		city    string
		region  string
		country string
		mode    types.WorkMode
	}{
		{
			name:    "city and country",
			raw:     "Berlin, Germany",
			city:    "berlin",
			country: "Germany",
			mode:    types.WorkModeUnknown,
		},
		{
			name:    "city region country",
			raw:     "Munich, Bavaria, Germany",
			city:    "munich",
			region:  "bavaria",
			country: "Germany",
			mode:    types.WorkModeUnknown,
		},
		{
			name: "remote with no city stays empty",
			raw:  "Remote",
			mode: types.WorkModeRemote,
		},
		{
			name: "home office is remote not on-site",
			raw:  "Home Office",
			mode: types.WorkModeRemote,
		},
		{
			name: "hybrid in parentheses",
			raw:  "Munich (Hybrid)",
			city: "munich",
			mode: types.WorkModeHybrid,
		},
		{
			name: "on-site variant",
			raw:  "Hamburg, on-site",
			city: "hamburg",
			mode: types.WorkModeOnSite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := LocationValue(tt.raw)
			require.Equal(t, types.KindLocation, v.Kind)
			require.NotNil(t, v.Location)
			assert.Equal(t, tt.city, v.Location.City)
			assert.Equal(t, tt.region, v.Location.Region)
			assert.Equal(t, tt.country, v.Location.Country)
			assert.Equal(t, tt.mode, v.Location.WorkMode)
		})
	}
}

func TestLocationValue_Unparsable(t *testing.T) {
	v := LocationValue("")
	assert.Equal(t, types.KindUnparsed, v.Kind)
}
