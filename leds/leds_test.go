package leds

import (
	"reflect"
	"testing"

	"go-mixsurface/surface"
)

func colorAt(frame []LED, i int) Color {
	return frame[i].Color
}

func TestReducePure(t *testing.T) {
	f := Flags{Alt: true, Metronome: true, Chains: 4, ActiveChain: 2, AudioPlaying: true}
	for _, rev := range []Revision{V5, Z2} {
		for tick := uint64(0); tick < 130; tick++ {
			a := Reduce(rev, tick, ScreenAudioMixer, f)
			b := Reduce(rev, tick, ScreenAudioMixer, f)
			if !reflect.DeepEqual(a, b) {
				t.Fatalf("%v tick %d: outputs differ", rev, tick)
			}
		}
	}
}

func TestReduceLength(t *testing.T) {
	tcs := []struct {
		rev  Revision
		want int
	}{
		{V5, 20},
		{Z2, 25},
	}
	for _, tc := range tcs {
		t.Run(tc.rev.String(), func(t *testing.T) {
			out := Reduce(tc.rev, 0, ScreenMenu, Flags{ActiveChain: -1})
			if len(out) != tc.want {
				t.Fatalf("len = %d, want %d", len(out), tc.want)
			}
			for i, led := range out {
				if led.Index != i {
					t.Errorf("led %d has index %d", i, led.Index)
				}
			}
		})
	}
}

func TestReduceV5Screens(t *testing.T) {
	tcs := []struct {
		screen Screen
		flags  Flags
		led    int
		want   Color
	}{
		{ScreenAudioMixer, Flags{}, 1, Active},
		{ScreenALSAMixer, Flags{}, 1, Active2},
		{ScreenControl, Flags{}, 1, Default},
		{ScreenPreset, Flags{}, 2, Active2},
		{ScreenSnapshot, Flags{}, 3, Active2},
		{ScreenAdmin, Flags{}, 0, Active2},
		{ScreenControl, Flags{Menu: true}, 0, Active},
		{ScreenControl, Flags{Alt: true}, 7, Alt},
		{ScreenControl, Flags{Alt: true}, 4, Alt},
		{ScreenControl, Flags{}, 19, Default},
		{ScreenControl, Flags{AudioRecording: true}, 8, Red},
		{ScreenControl, Flags{AudioPlaying: true}, 10, Green},
		{ScreenControl, Flags{AudioPlaying: true, Alt: true}, 10, Default},
		{ScreenControl, Flags{}, 13, Green},
		{ScreenControl, Flags{}, 15, Red},
		{ScreenTempo, Flags{}, 6, Active},
	}
	for _, tc := range tcs {
		t.Run(string(tc.screen), func(t *testing.T) {
			out := Reduce(V5, 0, tc.screen, tc.flags)
			if got := colorAt(out, tc.led); got != tc.want {
				t.Errorf("led %d = %v, want %v", tc.led, got, tc.want)
			}
		})
	}
}

func TestBlink(t *testing.T) {
	f := Flags{Metronome: true}
	want := []Color{Off, Off, Active, Active, Off}
	for tick, w := range want {
		if got := colorAt(Reduce(V5, uint64(tick), ScreenControl, f), 6); got != w {
			t.Errorf("tick %d: metronome led = %v, want %v", tick, got, w)
		}
	}
}

func TestPowerSave(t *testing.T) {
	f := Flags{PowerSave: true, Alt: true}
	for tick := uint64(0); tick < 64; tick++ {
		out := Reduce(V5, tick, ScreenAudioMixer, f)
		for i := 1; i < len(out); i++ {
			if out[i].Color != Off {
				t.Fatalf("tick %d: led %d lit in power save", tick, i)
			}
		}
	}
	if c := colorAt(Reduce(V5, 30, ScreenMenu, f), 0); c != Off {
		t.Errorf("pulse lit at phase 30: %v", c)
	}
	if c := colorAt(Reduce(V5, 50, ScreenMenu, f), 0); c.G != 36 {
		t.Errorf("pulse at phase 50 = %v, want green 36", c)
	}
	if a, b := colorAt(Reduce(V5, 63, ScreenMenu, f), 0), colorAt(Reduce(V5, 64, ScreenMenu, f), 0); b.G > a.G {
		t.Errorf("pulse should fade after the peak: %v then %v", a, b)
	}
}

func TestZ2Chains(t *testing.T) {
	tcs := []struct {
		name  string
		tick  uint64
		scr   Screen
		flags Flags
		want  []Color // leds 1..6
	}{
		{
			"three chains",
			0, ScreenAudioMixer,
			Flags{Chains: 3, ActiveChain: -1},
			[]Color{Default, Default, Default, Off, Off, Off},
		},
		{
			"active on control",
			0, ScreenControl,
			Flags{Chains: 3, ActiveChain: 1},
			[]Color{Default, Active, Default, Off, Off, Off},
		},
		{
			"active blinks off",
			0, ScreenAudioMixer,
			Flags{Chains: 3, ActiveChain: 1},
			[]Color{Default, Off, Default, Off, Off, Off},
		},
		{
			"active blinks on",
			2, ScreenAudioMixer,
			Flags{Chains: 3, ActiveChain: 1},
			[]Color{Default, Active, Default, Off, Off, Off},
		},
		{
			"fx chain",
			0, ScreenControl,
			Flags{Chains: 3, FXChain: true, ActiveChain: 2},
			[]Color{Default, Default, Off, Off, Off, Active},
		},
		{
			"alt offset",
			0, ScreenControl,
			Flags{Chains: 7, Alt: true, ActiveChain: 6},
			[]Color{Alt, Active, Off, Off, Off, Off},
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			out := Reduce(Z2, tc.tick, tc.scr, tc.flags)
			for i, w := range tc.want {
				if got := colorAt(out, i+1); got != w {
					t.Errorf("led %d = %v, want %v", i+1, got, w)
				}
			}
		})
	}
}

func TestZ2Mixer(t *testing.T) {
	out := Reduce(Z2, 0, ScreenAudioMixer, Flags{ActiveChain: -1})
	if colorAt(out, 24) != Active {
		t.Errorf("mixer led = %v", colorAt(out, 24))
	}
	out = Reduce(Z2, 0, ScreenZS3, Flags{ActiveChain: -1, MIDILearn: true})
	if colorAt(out, 7) != Yellow {
		t.Errorf("learn led = %v", colorAt(out, 7))
	}
}

func TestStateString(t *testing.T) {
	frame := []LED{{0, Blue}, {1, Green}, {2, Red}, {3, Off}, {4, White}, {5, Purple}}
	if got := StateString(frame); got != "B,G,R,0,P" {
		t.Errorf("state = %q", got)
	}
}

type countingSetter struct {
	writes int
	last   map[int][3]uint8
}

func (c *countingSetter) SetLED(i int, r, g, b uint8) error {
	c.writes++
	if c.last == nil {
		c.last = make(map[int][3]uint8)
	}
	c.last[i] = [3]uint8{r, g, b}
	return nil
}

func TestDriverSuppressesIdenticalFrames(t *testing.T) {
	out := &countingSetter{}
	d := NewDriver(out, 1)
	frame := Reduce(V5, 0, ScreenAudioMixer, Flags{})

	n, err := d.Update(frame)
	if err != nil {
		t.Fatal(err)
	}
	if n != 20 {
		t.Errorf("first frame wrote %d, want 20", n)
	}
	if n, _ := d.Update(frame); n != 0 || out.writes != 20 {
		t.Errorf("repeat frame wrote %d (total %d)", n, out.writes)
	}

	frame = Reduce(V5, 0, ScreenALSAMixer, Flags{})
	if n, _ := d.Update(frame); n != 1 {
		t.Errorf("one-LED change wrote %d", n)
	}
}

func TestDriverBrightness(t *testing.T) {
	out := &countingSetter{}
	d := NewDriver(out, 0.5)
	d.Update([]LED{{0, Green}})
	if got := out.last[0]; got != [3]uint8{0, 110, 0} {
		t.Errorf("half green = %v", got)
	}

	d.SetBrightness(1)
	d.Update([]LED{{0, Green}})
	if got := out.last[0]; got != [3]uint8{0, 220, 0} {
		t.Errorf("full green = %v", got)
	}
}

func TestDriverWritesToBank(t *testing.T) {
	bank := surface.NewBank(Z2.NumLEDs())
	d := NewDriver(bank, 1)
	if _, err := d.Update(Reduce(Z2, 0, ScreenAudioMixer, Flags{ActiveChain: -1})); err != nil {
		t.Fatal(err)
	}
	if got := bank.LEDs()[24]; got != [3]uint8{Active.R, Active.G, Active.B} {
		t.Errorf("bank led 24 = %v", got)
	}
}
