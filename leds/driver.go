package leds

import (
	"encoding/binary"
	"hash/fnv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"go-mixsurface/debug"
	"go-mixsurface/surface"
)

// Driver writes reducer frames to an LED setter, skipping frames and LEDs
// that did not change
type Driver struct {
	out        surface.LEDSetter
	brightness float64
	lastHash   uint64
	hashed     bool
	prev       map[int]Color
	lastState  string
}

// NewDriver creates a driver with brightness in 0..1
func NewDriver(out surface.LEDSetter, brightness float64) *Driver {
	d := &Driver{out: out, prev: make(map[int]Color)}
	d.SetBrightness(brightness)
	return d
}

// SetBrightness rescales every LED on the next frame
func (d *Driver) SetBrightness(b float64) {
	switch {
	case b < 0:
		b = 0
	case b > 1:
		b = 1
	}
	if b == d.brightness {
		return
	}
	d.brightness = b
	d.Reset()
}

func (d *Driver) Brightness() float64 {
	return d.brightness
}

// Reset forgets what the hardware shows so the next frame is written in full
func (d *Driver) Reset() {
	d.hashed = false
	d.prev = make(map[int]Color)
	d.lastState = ""
}

// Update writes frame and returns how many LEDs were set
func (d *Driver) Update(frame []LED) (int, error) {
	h := frameHash(frame)
	if d.hashed && h == d.lastHash {
		return 0, nil
	}

	written := 0
	var firstErr error
	for _, led := range frame {
		c := d.scale(led.Color)
		if old, ok := d.prev[led.Index]; ok && old == c {
			continue
		}
		if err := d.out.SetLED(led.Index, c.R, c.G, c.B); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		d.prev[led.Index] = c
		written++
	}

	// a failed LED is retried on the next frame
	if firstErr == nil {
		d.lastHash = h
		d.hashed = true
	} else {
		debug.Error("leds", firstErr)
	}

	if state := StateString(frame); state != d.lastState {
		d.lastState = state
		debug.Log("leds", "LEDSTATE:%s", state)
	}
	return written, firstErr
}

func (d *Driver) scale(c Color) Color {
	if d.brightness == 1 {
		return c
	}
	cc := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := cc.BlendRgb(colorful.Color{}, 1-d.brightness).RGB255()
	return Color{r, g, b}
}

func frameHash(frame []LED) uint64 {
	h := fnv.New64a()
	var buf [7]byte
	for _, led := range frame {
		binary.LittleEndian.PutUint32(buf[:4], uint32(led.Index))
		buf[4], buf[5], buf[6] = led.Color.R, led.Color.G, led.Color.B
		h.Write(buf[:])
	}
	return h.Sum64()
}

// StateString is the compact colour-code list of a frame, e.g. "B,G,R,0".
// Colours without a code are left out.
func StateString(frame []LED) string {
	codes := make([]string, 0, len(frame))
	for _, led := range frame {
		if c, ok := led.Color.Code(); ok {
			codes = append(codes, c)
		}
	}
	return strings.Join(codes, ",")
}
