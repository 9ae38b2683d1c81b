// Package leds turns the navigation state into LED colours and pushes
// changed LEDs to the hardware.
package leds

// Revision selects the LED wiring table
type Revision int

const (
	V5 Revision = iota
	Z2
)

func (r Revision) String() string {
	if r == Z2 {
		return "z2"
	}
	return "v5"
}

// NumLEDs returns the strip length of a revision
func (r Revision) NumLEDs() int {
	if r == Z2 {
		return 25
	}
	return 20
}

// ParseRevision maps a config string onto a Revision
func ParseRevision(s string) (Revision, bool) {
	switch s {
	case "v5", "V5", "":
		return V5, true
	case "z2", "Z2":
		return Z2, true
	}
	return V5, false
}

// Screen names the current screen
type Screen string

const (
	ScreenMenu          Screen = "main_menu"
	ScreenAdmin         Screen = "admin"
	ScreenAudioMixer    Screen = "audio_mixer"
	ScreenALSAMixer     Screen = "alsa_mixer"
	ScreenControl       Screen = "control"
	ScreenAudioPlayer   Screen = "audio_player"
	ScreenPreset        Screen = "preset"
	ScreenBank          Screen = "bank"
	ScreenZS3           Screen = "zs3"
	ScreenSnapshot      Screen = "snapshot"
	ScreenZynpad        Screen = "zynpad"
	ScreenPatternEditor Screen = "pattern_editor"
	ScreenArranger      Screen = "arranger"
	ScreenTempo         Screen = "tempo"
	ScreenChainOptions  Screen = "layer_options"
)

// Flags is the navigation state the LEDs reflect
type Flags struct {
	Menu      bool // current screen is a menu
	Alt       bool
	PowerSave bool
	Metronome bool

	AudioRecording bool
	AudioPlaying   bool
	MIDIRecording  bool
	MIDIPlaying    bool

	MIDILearn      bool
	MIDILearnCtrl  bool // learning a specific control
	FavoritePreset bool

	Chains      int  // non-empty chains, FX chain included
	FXChain     bool // the last chain is the main FX chain
	ActiveChain int  // -1 for none
}

// LED is one output of the reducer
type LED struct {
	Index int
	Color Color
}

// Blink phases
const (
	blinkPeriod = 4
	savePeriod  = 64
	saveOn      = 44
	pulseStep   = 6
)

// Reduce computes every LED of rev for one tick. It has no side effects.
func Reduce(rev Revision, tick uint64, screen Screen, f Flags) []LED {
	out := make([]LED, rev.NumLEDs())
	for i := range out {
		out[i].Index = i
	}

	if f.PowerSave {
		out[0].Color = pulse(tick)
		return out
	}

	blink := tick%blinkPeriod > 1
	set := func(i int, c Color) { out[i].Color = c }
	blinkAt := func(i int, c Color) {
		if blink {
			out[i].Color = c
		}
	}

	if rev == Z2 {
		reduceZ2(screen, f, set, blinkAt)
	} else {
		reduceV5(screen, f, set, blinkAt)
	}
	return out
}

// pulse fades LED 0 in during the last 20 ticks of each save period and
// out again during the first 20 of the next
func pulse(tick uint64) Color {
	phase := int(tick % savePeriod)
	step := 0
	switch {
	case phase > saveOn:
		step = phase - saveOn
	case phase < savePeriod-saveOn:
		step = savePeriod - saveOn - 1 - phase
	}
	return Color{0, uint8(step * pulseStep), 0}
}

func pick(cond1 bool, c1 Color, cond2 bool, c2 Color) Color {
	switch {
	case cond1:
		return c1
	case cond2:
		return c2
	}
	return Default
}

func either(cond bool, c, otherwise Color) Color {
	if cond {
		return c
	}
	return otherwise
}

func in(s Screen, names ...Screen) bool {
	for _, n := range names {
		if s == n {
			return true
		}
	}
	return false
}

func reduceV5(s Screen, f Flags, set, blinkAt func(int, Color)) {
	set(0, pick(f.Menu, Active, s == ScreenAdmin, Active2))
	set(1, pick(s == ScreenAudioMixer, Active, s == ScreenALSAMixer, Active2))
	set(2, pick(in(s, ScreenControl, ScreenAudioPlayer), Active, in(s, ScreenPreset, ScreenBank), Active2))
	set(3, pick(s == ScreenZS3, Active, s == ScreenSnapshot, Active2))
	set(5, pick(s == ScreenZynpad, Active, s == ScreenPatternEditor, Active2))

	switch {
	case s == ScreenTempo:
		set(6, Active)
	case f.Metronome:
		blinkAt(6, Active)
	default:
		set(6, Default)
	}

	set(7, either(f.Alt, Alt, Default))
	transport(f, [3]int{8, 9, 10}, set)

	set(13, Green)
	set(15, Red)
	for _, i := range []int{14, 16, 17, 18} {
		set(i, Yellow)
	}

	fx := Default
	if f.Alt {
		fx = Alt
	}
	for _, i := range []int{4, 11, 12, 19} {
		set(i, fx)
	}
}

func reduceZ2(s Screen, f Flags, set, blinkAt func(int, Color)) {
	set(0, pick(f.Menu, Active, s == ScreenAdmin, Active2))

	light, offset := Default, 0
	if f.Alt {
		light, offset = Alt, 5
	}
	n := f.Chains
	if f.FXChain {
		n--
	}
	for i := 0; i < 5; i++ {
		if i+offset < n {
			set(1+i, light)
		}
	}
	if f.FXChain {
		set(6, Default)
	}
	if a := f.ActiveChain; a >= 0 {
		lit := func(i int) {
			if s == ScreenControl {
				set(i, Active)
			} else {
				// off between blinks
				set(i, Off)
				blinkAt(i, Active)
			}
		}
		switch {
		case f.FXChain && a == n:
			lit(6)
		case a-offset >= 0 && a-offset < 5:
			lit(1 + a - offset)
		}
	}

	switch {
	case f.MIDILearnCtrl || s == ScreenZS3:
		set(7, Yellow)
	case f.MIDILearn:
		set(7, Active)
	default:
		set(7, Default)
	}

	set(8, either(s == ScreenZynpad, Active, Default))
	set(9, pick(s == ScreenPatternEditor, Active, s == ScreenArranger, Active2))

	switch {
	case in(s, ScreenControl, ScreenAudioPlayer):
		set(10, Active)
	case in(s, ScreenPreset, ScreenBank) && f.FavoritePreset:
		blinkAt(10, Active2)
	case in(s, ScreenPreset, ScreenBank):
		set(10, Active2)
	default:
		set(10, Default)
	}

	set(11, pick(s == ScreenZS3, Active, s == ScreenSnapshot, Active2))
	set(12, Default)
	set(13, either(f.Alt, Alt, Default))
	transport(f, [3]int{14, 17, 15}, set)

	switch {
	case s == ScreenTempo:
		set(16, Active)
	case f.Metronome:
		blinkAt(16, Active)
	default:
		set(16, Default)
	}

	set(20, Green)
	set(18, Red)
	for _, i := range []int{19, 21, 22, 23} {
		set(i, Yellow)
	}
	set(24, pick(s == ScreenAudioMixer, Active, s == ScreenALSAMixer, Active2))
}

// transport lights the rec/stop/play buttons. Alt mode shows the MIDI
// recorder instead of the audio one.
func transport(f Flags, idx [3]int, set func(int, Color)) {
	rec, play := f.AudioRecording, f.AudioPlaying
	if f.Alt {
		rec, play = f.MIDIRecording, f.MIDIPlaying
	}
	if rec {
		set(idx[0], Red)
	} else {
		set(idx[0], Default)
	}
	set(idx[1], Default)
	if play {
		set(idx[2], Green)
	} else {
		set(idx[2], Default)
	}
}
