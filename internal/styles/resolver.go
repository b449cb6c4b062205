// Package styles maps raw Moon+ Reader highlight attributes to a CSS style
// descriptor. Resolution is a pure function of the row's flags.
package styles

import (
	"strings"

	"github.com/mrlokans/moonexport/internal/utils"
)

// DefaultBackground is the pale yellow used when a plain highlight carries
// no explicit color.
const DefaultBackground = "#fff59d"

// Property is one CSS declaration. Order matters in the rendered style
// string, so Style is a slice rather than a map.
type Property struct {
	Name  string
	Value string
}

// Style is an ordered set of CSS declarations.
type Style []Property

// String renders the style for an inline style attribute.
func (s Style) String() string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		parts = append(parts, p.Name+": "+p.Value)
	}
	return strings.Join(parts, "; ")
}

// Resolve maps a highlight's color and decoration flags to a Style.
//
// Moon+ Reader has two mutually exclusive annotation modes and the split
// must be preserved exactly: with no decoration flags the highlight is a
// painted background (decoded color, pale yellow default); with any flag
// set it is decorated text and the background is forced transparent. The
// wavy flag renders as a wavy-styled underline; duplicate decorations
// (wavy plus explicit underline) are collapsed.
func Resolve(color int64, underline, strikethrough, wavy bool) Style {
	hexColor := utils.ColorToCSS(color)

	if !underline && !strikethrough && !wavy {
		background := hexColor
		if background == "" {
			background = DefaultBackground
		}
		return Style{
			{"background-color", background},
			{"color", "inherit"},
		}
	}

	var decorations []string
	lineStyle := "solid"
	if wavy {
		decorations = append(decorations, "underline")
		lineStyle = "wavy"
	}
	if underline {
		decorations = append(decorations, "underline")
	}
	if strikethrough {
		decorations = append(decorations, "line-through")
	}
	decorations = dedupe(decorations)

	style := Style{
		{"text-decoration", strings.Join(decorations, " ")},
		{"text-decoration-style", lineStyle},
	}
	if hexColor != "" {
		style = append(style,
			Property{"text-decoration-color", hexColor},
			Property{"text-decoration-thickness", "2px"},
		)
	}
	return append(style, Property{"background-color", "transparent"})
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
