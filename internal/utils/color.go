package utils

import "fmt"

// ColorToCSS converts Moon+ Reader's signed integer color to a CSS hex
// string. The value is an Android ARGB int; the low 24 bits are the RGB
// channels. Zero (or an absent column) means no explicit color and yields
// the empty string.
// Example: -15654349 -> "#112233".
func ColorToCSS(color int64) string {
	if color == 0 {
		return ""
	}
	return fmt.Sprintf("#%06x", uint32(color)&0xFFFFFF)
}
