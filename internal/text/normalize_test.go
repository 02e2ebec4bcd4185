package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nbsp and accent", "Kyoto Ryokan\néclat", "Kyoto Ryokan eclat"},
		{"collapses whitespace", "Gero   Onsen \t Gassho", "Gero Onsen Gassho"},
		{"trims", "  Hakone Yumoto  ", "Hakone Yumoto"},
		{"newlines become single spaces", "525-1\nMyojincho\r\nGero", "525-1 Myojincho Gero"},
		{"accented vowels", "Café Ryokan Kinosaki", "Cafe Ryokan Kinosaki"},
		{"macron stripped", "Ōhara Sansō", "Ohara Sanso"},
		{"empty", "", ""},
		{"whitespace only", "   \n", ""},
		{"plain ascii untouched", "Nishimuraya Honkan", "Nishimuraya Honkan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_NoDoubleSpaceAfterNBSP(t *testing.T) {
	t.Parallel()
	// An NBSP adjacent to a regular space must not survive as two spaces.
	assert.Equal(t, "a b", Normalize("a  b"))
}
