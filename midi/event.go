package midi

import (
	"time"

	"go-mixsurface/mixer"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Press thresholds used when a surface config leaves them at zero
const (
	DefaultBoldPress = 300 * time.Millisecond
	DefaultLongPress = 2 * time.Second
)

// SwitchEvent is a released encoder push switch
type SwitchEvent struct {
	Source string // controller ID
	Switch int    // surface.EncoderA..EncoderD
	Press  mixer.Press
}

// classify maps how long a switch was held onto a press class
func classify(held, bold, long time.Duration) mixer.Press {
	if bold <= 0 {
		bold = DefaultBoldPress
	}
	if long <= 0 {
		long = DefaultLongPress
	}
	switch {
	case held >= long:
		return mixer.PressLong
	case held >= bold:
		return mixer.PressBold
	}
	return mixer.PressShort
}

// relativeDelta decodes a two's complement relative encoder CC
func relativeDelta(v uint8) int {
	switch {
	case v == 0 || v == 64:
		return 0
	case v < 64:
		return int(v)
	}
	return int(v) - 128
}
