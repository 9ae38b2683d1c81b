// Package engine is a software mixer engine: levels, balance, mute, solo,
// mono and a decaying peak meter per channel.
package engine

import (
	"math"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Channel layout: 16 chains plus the main bus
const (
	NumChains   = 16
	MainChannel = NumChains
	NumChannels = NumChains + 1
)

// Meter ballistics
const (
	FloorDB      = -200.0
	DecayDBPerS  = 20.0
	HoldDuration = 1500 * time.Millisecond
)

// ErrChannel is returned for a channel outside 0..MainChannel
var ErrChannel = errors.New("channel out of range")

type channel struct {
	level   float64
	balance float64
	mute    bool
	solo    bool
	mono    bool

	peak     [2]float64
	hold     [2]float64
	holdLeft [2]time.Duration
}

// Memory is an in-process engine safe for concurrent use
type Memory struct {
	mu    sync.Mutex
	ch    [NumChannels]channel
	dpmOn bool
}

// NewMemory returns an engine with every channel at level 0.8
func NewMemory() *Memory {
	m := &Memory{}
	for i := range m.ch {
		m.ch[i].level = 0.8
		for side := 0; side < 2; side++ {
			m.ch[i].peak[side] = FloorDB
			m.ch[i].hold[side] = FloorDB
		}
	}
	return m
}

func (m *Memory) get(ch int) (*channel, error) {
	if ch < 0 || ch >= NumChannels {
		return nil, errors.Wrapf(ErrChannel, "channel %d", ch)
	}
	return &m.ch[ch], nil
}

func (m *Memory) Level(ch int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return 0, err
	}
	return c.level, nil
}

func (m *Memory) SetLevel(ch int, level float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return err
	}
	c.level = math.Max(0, math.Min(1, level))
	return nil
}

func (m *Memory) Balance(ch int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return 0, err
	}
	return c.balance, nil
}

func (m *Memory) SetBalance(ch int, balance float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return err
	}
	c.balance = math.Max(-1, math.Min(1, balance))
	return nil
}

// boolean parameters

func (m *Memory) flag(ch int, pick func(*channel) *bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return false, err
	}
	return *pick(c), nil
}

func (m *Memory) setFlag(ch int, pick func(*channel) *bool, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return err
	}
	*pick(c) = on
	return nil
}

func (m *Memory) toggleFlag(ch int, pick func(*channel) *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return err
	}
	p := pick(c)
	*p = !*p
	return nil
}

func muteOf(c *channel) *bool { return &c.mute }
func soloOf(c *channel) *bool { return &c.solo }
func monoOf(c *channel) *bool { return &c.mono }

func (m *Memory) Mute(ch int) (bool, error)     { return m.flag(ch, muteOf) }
func (m *Memory) SetMute(ch int, on bool) error { return m.setFlag(ch, muteOf, on) }
func (m *Memory) ToggleMute(ch int) error       { return m.toggleFlag(ch, muteOf) }
func (m *Memory) Solo(ch int) (bool, error)     { return m.flag(ch, soloOf) }
func (m *Memory) SetSolo(ch int, on bool) error { return m.setFlag(ch, soloOf, on) }
func (m *Memory) ToggleSolo(ch int) error       { return m.toggleFlag(ch, soloOf) }
func (m *Memory) Mono(ch int) (bool, error)     { return m.flag(ch, monoOf) }
func (m *Memory) SetMono(ch int, on bool) error { return m.setFlag(ch, monoOf, on) }
func (m *Memory) ToggleMono(ch int) error       { return m.toggleFlag(ch, monoOf) }

func (m *Memory) DPM(ch, side int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return FloorDB, err
	}
	if side < 0 || side > 1 {
		return FloorDB, errors.Errorf("side %d", side)
	}
	return c.peak[side], nil
}

func (m *Memory) DPMHold(ch, side int) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.get(ch)
	if err != nil {
		return FloorDB, err
	}
	if side < 0 || side > 1 {
		return FloorDB, errors.Errorf("side %d", side)
	}
	return c.hold[side], nil
}

func (m *Memory) EnableDPM(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dpmOn = on
	if !on {
		for i := range m.ch {
			m.ch[i].peak = [2]float64{FloorDB, FloorDB}
			m.ch[i].hold = [2]float64{FloorDB, FloorDB}
			m.ch[i].holdLeft = [2]time.Duration{}
		}
	}
	return nil
}

// DPMEnabled reports whether metering is running
func (m *Memory) DPMEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dpmOn
}

// audible reports whether ch reaches the main bus given the solo state
func (m *Memory) audible(ch int) bool {
	c := &m.ch[ch]
	if c.mute {
		return false
	}
	if ch == MainChannel {
		return true
	}
	for i := 0; i < NumChains; i++ {
		if m.ch[i].solo {
			return c.solo
		}
	}
	return true
}

// Trigger feeds a signal of linear amplitude amp (0..1) into ch. The meter
// sees it after level, balance and mute are applied, and the main bus sums it.
func (m *Memory) Trigger(ch int, amp float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.get(ch); err != nil {
		return err
	}
	if !m.dpmOn || !m.audible(ch) {
		return nil
	}
	gains := m.gains(ch, amp)
	m.feed(ch, gains)
	if ch != MainChannel && m.audible(MainChannel) {
		m.feed(MainChannel, m.gains(MainChannel, math.Max(gains[0], gains[1])))
	}
	return nil
}

func (m *Memory) gains(ch int, amp float64) [2]float64 {
	c := &m.ch[ch]
	a := amp * c.level
	l, r := a, a
	if c.balance > 0 {
		l *= 1 - c.balance
	} else if c.balance < 0 {
		r *= 1 + c.balance
	}
	if c.mono {
		avg := (l + r) / 2
		l, r = avg, avg
	}
	return [2]float64{l, r}
}

func (m *Memory) feed(ch int, gains [2]float64) {
	c := &m.ch[ch]
	for side, g := range gains {
		db := toDB(g)
		if db > c.peak[side] {
			c.peak[side] = db
		}
		if db >= c.hold[side] {
			c.hold[side] = db
			c.holdLeft[side] = HoldDuration
		}
	}
}

// Decay advances meter ballistics by dt
func (m *Memory) Decay(dt time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fall := DecayDBPerS * dt.Seconds()
	for i := range m.ch {
		c := &m.ch[i]
		for side := 0; side < 2; side++ {
			c.peak[side] = math.Max(FloorDB, c.peak[side]-fall)
			if c.holdLeft[side] > dt {
				c.holdLeft[side] -= dt
				continue
			}
			c.holdLeft[side] = 0
			c.hold[side] = math.Max(c.peak[side], c.hold[side]-fall)
		}
	}
}

// SetPeak forces a meter reading
func (m *Memory) SetPeak(ch, side int, peak, hold float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, err := m.get(ch); err == nil && side >= 0 && side < 2 {
		c.peak[side] = peak
		c.hold[side] = hold
	}
}

func toDB(amp float64) float64 {
	if amp <= 0 {
		return FloorDB
	}
	return math.Max(FloorDB, 20*math.Log10(amp))
}
