package mixer

import (
	"github.com/pkg/errors"

	"go-mixsurface/debug"
)

// Engine is the DSP mixer contract. Channels 0..MaxChannels-1 are chains,
// MaxChannels is the main bus.
type Engine interface {
	Level(ch int) (float64, error)
	SetLevel(ch int, level float64) error
	Balance(ch int) (float64, error)
	SetBalance(ch int, balance float64) error

	Mute(ch int) (bool, error)
	SetMute(ch int, on bool) error
	ToggleMute(ch int) error
	Solo(ch int) (bool, error)
	SetSolo(ch int, on bool) error
	ToggleSolo(ch int) error
	Mono(ch int) (bool, error)
	SetMono(ch int, on bool) error
	ToggleMono(ch int) error

	// Peak meter readings in dBFS, side 0 = left, 1 = right
	DPM(ch, side int) (float64, error)
	DPMHold(ch, side int) (float64, error)
	EnableDPM(on bool) error
}

// ChannelState is the persisted mixer record of one channel
type ChannelState struct {
	Level   float64 `json:"level"`
	Balance float64 `json:"balance"`
	Mute    bool    `json:"mute"`
	Solo    bool    `json:"solo"`
	Mono    bool    `json:"mono"`
}

// DefaultChannelState is what ResetState applies
var DefaultChannelState = ChannelState{Level: 0.8}

// guard wraps an Engine so that a failing call is logged and answered with
// the last value that was read or written successfully.
type guard struct {
	e    Engine
	last [MaxChannels + 1]ChannelState
	peak [MaxChannels + 1][2]float64
	hold [MaxChannels + 1][2]float64
}

func newGuard(e Engine) *guard {
	g := &guard{e: e}
	for ch := range g.last {
		g.last[ch] = DefaultChannelState
		for side := 0; side < 2; side++ {
			g.peak[ch][side] = MeterFloorDB
			g.hold[ch][side] = MeterFloorDB
		}
	}
	return g
}

func inRange(ch int) bool {
	return ch >= 0 && ch <= MaxChannels
}

func (g *guard) fail(err error, format string, args ...any) {
	debug.Error("engine", errors.Wrapf(err, format, args...))
}

func (g *guard) level(ch int) float64 {
	if !inRange(ch) {
		return 0
	}
	v, err := g.e.Level(ch)
	if err != nil {
		g.fail(err, "level %d", ch)
		return g.last[ch].Level
	}
	g.last[ch].Level = v
	return v
}

func (g *guard) setLevel(ch int, v float64) {
	if !inRange(ch) {
		return
	}
	if err := g.e.SetLevel(ch, v); err != nil {
		g.fail(err, "set level %d", ch)
		return
	}
	g.last[ch].Level = v
}

func (g *guard) balance(ch int) float64 {
	if !inRange(ch) {
		return 0
	}
	v, err := g.e.Balance(ch)
	if err != nil {
		g.fail(err, "balance %d", ch)
		return g.last[ch].Balance
	}
	g.last[ch].Balance = v
	return v
}

func (g *guard) setBalance(ch int, v float64) {
	if !inRange(ch) {
		return
	}
	if err := g.e.SetBalance(ch, v); err != nil {
		g.fail(err, "set balance %d", ch)
		return
	}
	g.last[ch].Balance = v
}

// flag reads one of the boolean parameters
func (g *guard) flag(ch int, name string, get func(int) (bool, error), last *bool) bool {
	v, err := get(ch)
	if err != nil {
		g.fail(err, "%s %d", name, ch)
		return *last
	}
	*last = v
	return v
}

func (g *guard) mute(ch int) bool {
	if !inRange(ch) {
		return false
	}
	return g.flag(ch, "mute", g.e.Mute, &g.last[ch].Mute)
}

func (g *guard) solo(ch int) bool {
	if !inRange(ch) {
		return false
	}
	return g.flag(ch, "solo", g.e.Solo, &g.last[ch].Solo)
}

func (g *guard) mono(ch int) bool {
	if !inRange(ch) {
		return false
	}
	return g.flag(ch, "mono", g.e.Mono, &g.last[ch].Mono)
}

func (g *guard) setMute(ch int, on bool) {
	if inRange(ch) {
		g.call(g.e.SetMute(ch, on), "set mute %d", ch)
	}
}

func (g *guard) setSolo(ch int, on bool) {
	if inRange(ch) {
		g.call(g.e.SetSolo(ch, on), "set solo %d", ch)
	}
}

func (g *guard) setMono(ch int, on bool) {
	if inRange(ch) {
		g.call(g.e.SetMono(ch, on), "set mono %d", ch)
	}
}

func (g *guard) toggleMute(ch int) {
	if inRange(ch) {
		g.call(g.e.ToggleMute(ch), "toggle mute %d", ch)
	}
}

func (g *guard) toggleSolo(ch int) {
	if inRange(ch) {
		g.call(g.e.ToggleSolo(ch), "toggle solo %d", ch)
	}
}

func (g *guard) toggleMono(ch int) {
	if inRange(ch) {
		g.call(g.e.ToggleMono(ch), "toggle mono %d", ch)
	}
}

func (g *guard) call(err error, format string, args ...any) {
	if err != nil {
		g.fail(err, format, args...)
	}
}

func (g *guard) dpm(ch, side int) (peak, hold float64) {
	if !inRange(ch) || side < 0 || side > 1 {
		return MeterFloorDB, MeterFloorDB
	}
	if v, err := g.e.DPM(ch, side); err != nil {
		debug.LogEvery(100, "engine", "dpm %d/%d: %v", ch, side, err)
	} else {
		g.peak[ch][side] = v
	}
	if v, err := g.e.DPMHold(ch, side); err != nil {
		debug.LogEvery(100, "engine", "dpm hold %d/%d: %v", ch, side, err)
	} else {
		g.hold[ch][side] = v
	}
	return g.peak[ch][side], g.hold[ch][side]
}

func (g *guard) enableDPM(on bool) {
	g.call(g.e.EnableDPM(on), "enable dpm %v", on)
}

func (g *guard) state(ch int) ChannelState {
	return ChannelState{
		Level:   g.level(ch),
		Balance: g.balance(ch),
		Mute:    g.mute(ch),
		Solo:    g.solo(ch),
		Mono:    g.mono(ch),
	}
}

func (g *guard) setState(ch int, s ChannelState) {
	g.setLevel(ch, s.Level)
	g.setBalance(ch, s.Balance)
	g.setMute(ch, s.Mute)
	g.setSolo(ch, s.Solo)
	g.setMono(ch, s.Mono)
}
