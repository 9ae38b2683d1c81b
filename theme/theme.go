package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	LED      rune // ● lit LED
	Meter    rune // █ meter cell
	MeterOff rune // ░ empty meter cell
	Hold     rune // ▌ peak hold marker
	Balance  rune // ◆ balance position
	Track    rune // ─ balance track
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			LED:      '●',
			Meter:    '█',
			MeterOff: '░',
			Hold:     '▌',
			Balance:  '◆',
			Track:    '─',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG        = 0.0
	RoleSurface   = 0.1
	RoleMuted     = 0.25
	RoleFG        = 0.45
	RoleAccent    = 0.55
	RoleMeterLow  = 0.65
	RoleMeterHigh = 0.78
	RoleWarning   = 0.88
	RoleMeterOver = 1.0
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// MeterLow, MeterHigh and MeterOver colour the three peak meter zones
func (t *Theme) MeterLow() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMeterLow))
}

func (t *Theme) MeterHigh() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMeterHigh))
}

func (t *Theme) MeterOver() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMeterOver))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Hex returns the #rrggbb form of a palette position
func (t *Theme) Hex(norm float64) string {
	return string(t.Color(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

// RGBColor converts raw LED values for display
func RGBColor(r, g, b uint8) lipgloss.Color {
	return rgbToLipgloss(RGB{r, g, b})
}
