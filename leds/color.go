package leds

// Color is an 8-bit RGB LED value before brightness scaling
type Color struct {
	R, G, B uint8
}

// Named LED colours
var (
	Off       = Color{0, 0, 0}
	White     = Color{120, 120, 120}
	Red       = Color{140, 0, 0}
	Green     = Color{0, 220, 0}
	Yellow    = Color{160, 160, 0}
	Orange    = Color{190, 80, 0}
	Blue      = Color{0, 0, 220}
	BlueLight = Color{0, 130, 130}
	Purple    = Color{130, 0, 130}
	Low       = Color{0, 100, 0}
)

// Roles
var (
	Default = Blue
	Alt     = Purple
	Active  = Green
	Active2 = Orange
	Admin   = Red
)

var codes = map[Color]string{
	Off:    "0",
	Blue:   "B",
	Green:  "G",
	Red:    "R",
	Orange: "O",
	Yellow: "Y",
	Purple: "P",
}

// Code returns the one-letter code of a named colour, ok is false for
// anything else
func (c Color) Code() (string, bool) {
	s, ok := codes[c]
	return s, ok
}
