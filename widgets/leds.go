package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderLED renders a single coloured LED, dim grey when off
func RenderLED(color [3]uint8) string {
	if color == [3]uint8{} {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#333333")).Render("○")
	}
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("●")
}

// RenderLEDRow renders the LED strip, wrapping every perRow LEDs
func RenderLEDRow(colors [][3]uint8, perRow int) string {
	if perRow <= 0 {
		perRow = len(colors)
	}
	var lines []string
	var line strings.Builder
	for i, c := range colors {
		if i > 0 && i%perRow == 0 {
			lines = append(lines, line.String())
			line.Reset()
		} else if i > 0 {
			line.WriteString(" ")
		}
		line.WriteString(RenderLED(c))
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
