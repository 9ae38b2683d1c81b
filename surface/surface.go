// Package surface models the rotary encoder and LED registers of the control
// panel. Drivers write the registers from their own goroutines; the view reads
// them on the tick.
package surface

import (
	"sync"

	"github.com/pkg/errors"
)

// Logical encoders, left to right on the panel
const (
	EncoderA = iota // selected chain level
	EncoderB        // selected chain balance
	EncoderC        // main bus level
	EncoderD        // chain selection

	NumEncoders
)

// Flags modify register writes
type Flags uint8

const (
	FlagNone   Flags = 0
	FlagNotify Flags = 1 // raise the changed flag on write
)

// Adapter is the encoder/LED hardware contract used by the mixer view
type Adapter interface {
	SetupRangeScale(enc, min, max, value int, flags Flags) error
	Value(enc int) (int, error)
	SetValue(enc, value int, flags Flags) error
	ValueChanged(enc int) (bool, error)
	LEDSetter
}

// LEDSetter addresses one LED of the strip by index
type LEDSetter interface {
	SetLED(index int, r, g, b uint8) error
}

type register struct {
	min, max int
	value    int
	changed  bool
}

// Bank is an in-memory register file for encoders and LEDs
type Bank struct {
	mu   sync.Mutex
	regs [NumEncoders]register
	leds [][3]uint8
}

// NewBank creates a bank with numLEDs LED slots
func NewBank(numLEDs int) *Bank {
	b := &Bank{leds: make([][3]uint8, numLEDs)}
	for i := range b.regs {
		b.regs[i].max = 100
	}
	return b
}

func (b *Bank) reg(enc int) (*register, error) {
	if enc < 0 || enc >= NumEncoders {
		return nil, errors.Errorf("encoder %d out of range", enc)
	}
	return &b.regs[enc], nil
}

func (b *Bank) SetupRangeScale(enc, min, max, value int, flags Flags) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.reg(enc)
	if err != nil {
		return err
	}
	if max < min {
		min, max = max, min
	}
	r.min, r.max = min, max
	r.value = clamp(value, min, max)
	r.changed = flags&FlagNotify != 0
	return nil
}

// Value returns the register value and clears its changed flag
func (b *Bank) Value(enc int) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.reg(enc)
	if err != nil {
		return 0, err
	}
	r.changed = false
	return r.value, nil
}

func (b *Bank) SetValue(enc, value int, flags Flags) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.reg(enc)
	if err != nil {
		return err
	}
	v := clamp(value, r.min, r.max)
	if flags&FlagNotify != 0 && v != r.value {
		r.changed = true
	}
	r.value = v
	return nil
}

func (b *Bank) ValueChanged(enc int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.reg(enc)
	if err != nil {
		return false, err
	}
	return r.changed, nil
}

// Turn moves an encoder by delta detents, as the hardware does
func (b *Bank) Turn(enc, delta int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.reg(enc)
	if err != nil {
		return
	}
	v := clamp(r.value+delta, r.min, r.max)
	if v != r.value {
		r.value = v
		r.changed = true
	}
}

// Range returns the configured min/max of an encoder
func (b *Bank) Range(enc int) (min, max int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, err := b.reg(enc)
	if err != nil {
		return 0, 0
	}
	return r.min, r.max
}

func (b *Bank) SetLED(index int, r, g, bl uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if index < 0 || index >= len(b.leds) {
		return errors.Errorf("led %d out of range", index)
	}
	b.leds[index] = [3]uint8{r, g, bl}
	return nil
}

// LEDs returns a copy of the LED buffer
func (b *Bank) LEDs() [][3]uint8 {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([][3]uint8, len(b.leds))
	copy(out, b.leds)
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
