package midi

import (
	"sync"
	"time"

	"go-mixsurface/surface"
)

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerSurface
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerSurface:
		return "surface"
	}
	return "unknown"
}

// Controller is a connected control surface. Input goes straight to the
// encoder registers and the switch channel; LEDs come back through SetLED.
type Controller interface {
	ID() string
	Type() ControllerType
	surface.LEDSetter
	Close() error
}

// Turner is the encoder register bank as seen by the input callbacks
type Turner interface {
	Turn(enc, delta int)
}

// sink is where input callbacks deliver their results
type sink struct {
	enc      Turner
	switches chan<- SwitchEvent
}

func (s sink) turn(enc, delta int) {
	if s.enc != nil && delta != 0 {
		s.enc.Turn(enc, delta)
	}
}

func (s sink) press(ev SwitchEvent) {
	select {
	case s.switches <- ev:
	default:
	}
}

// pressTracker times switch presses from note on to note off
type pressTracker struct {
	mu   sync.Mutex
	down map[int]time.Time
	now  func() time.Time
}

func newPressTracker() *pressTracker {
	return &pressTracker{down: make(map[int]time.Time), now: time.Now}
}

func (p *pressTracker) press(sw int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.down[sw] = p.now()
}

// release returns how long sw was held, ok is false without a press
func (p *pressTracker) release(sw int) (time.Duration, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.down[sw]
	if !ok {
		return 0, false
	}
	delete(p.down, sw)
	return p.now().Sub(t), true
}

// paletteColor is a velocity palette entry {velocity, R, G, B}
type paletteColor [4]uint8

// Launchpad X palette, approximate RGB values for the key colours
var launchpadPalette = []paletteColor{
	{0, 0, 0, 0},         // off
	{5, 255, 0, 0},       // red
	{6, 255, 80, 80},     // bright red
	{7, 180, 60, 60},     // dim red
	{9, 255, 100, 0},     // orange
	{11, 180, 80, 40},    // dim orange
	{13, 255, 200, 0},    // yellow
	{17, 0, 180, 0},      // green
	{19, 0, 100, 0},      // dim green
	{21, 0, 255, 0},      // bright green
	{37, 0, 200, 200},    // cyan
	{43, 40, 60, 120},    // dim blue
	{45, 0, 100, 255},    // blue
	{47, 80, 150, 255},   // bright blue
	{49, 150, 0, 200},    // purple
	{53, 255, 80, 180},   // pink
	{78, 100, 100, 255},  // light blue
	{84, 255, 150, 50},   // bright orange
	{87, 150, 255, 100},  // lime
	{97, 180, 180, 60},   // dim yellow
	{119, 255, 255, 255}, // white
}

// nearestVelocity finds the palette velocity closest to an RGB value
func nearestVelocity(r, g, b uint8) uint8 {
	best := uint8(0)
	bestDist := 1 << 30
	for _, p := range launchpadPalette {
		dr, dg, db := int(r)-int(p[1]), int(g)-int(p[2]), int(b)-int(p[3])
		dist := dr*dr + dg*dg + db*db
		if dist < bestDist {
			bestDist = dist
			best = p[0]
		}
	}
	return best
}
