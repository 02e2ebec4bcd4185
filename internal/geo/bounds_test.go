package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInJapan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"kyoto", 35.0116, 135.7681, true},
		{"sapporo", 43.0618, 141.3545, true},
		{"naha", 26.2124, 127.6809, true},
		{"yonaguni", 24.4670, 122.9986, true},
		{"paris", 48.8566, 2.3522, false},
		{"seoul", 37.5665, 126.9780, false},
		{"sydney", -33.8688, 151.2093, false},
		{"null island", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, InJapan(tt.lat, tt.lon))
		})
	}
}
