package main

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "disk full", 60, "disk full"},
		{"exactly at limit", "abcde", 5, "abcde"},
		{"over limit", "abcdef", 5, "abcd…"},
		{"multibyte kept whole", "geocode: 下呂温泉 lookup failed", 12, "geocode: 下呂…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
