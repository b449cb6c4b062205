package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorToCSS(t *testing.T) {
	tests := []struct {
		name     string
		color    int64
		expected string
	}{
		{"rgb value", 0x00FF5733, "#ff5733"},
		{"zero means no color", 0, ""},
		{"alpha channel masked off", 0x7700AAFF, "#00aaff"},
		{"negative android int", -15654349, "#112233"},
		{"opaque white", -1, "#ffffff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ColorToCSS(tt.color))
		})
	}
}
