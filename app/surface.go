package app

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"go-mixsurface/chain"
	"go-mixsurface/config"
	"go-mixsurface/debug"
	"go-mixsurface/engine"
	"go-mixsurface/leds"
	"go-mixsurface/midi"
	"go-mixsurface/mixer"
	"go-mixsurface/remote"
	"go-mixsurface/snapshot"
	"go-mixsurface/surface"
)

// Surface owns the mixer and everything that feeds it. Tick is the only
// entry point that mutates mixer state, so it must be called from one
// goroutine (the UI loop).
type Surface struct {
	Engine    *engine.Memory
	Chains    *chain.Manager
	Bank      *surface.Bank
	Mixer     *mixer.Controller
	Remote    *remote.Server
	LEDs      *leds.Driver
	Snapshots *snapshot.Store

	rev    leds.Revision
	demo   bool
	ledOut surface.Fanout

	nav      *Navigator
	flags    leds.Flags
	tick     uint64
	lastTick time.Time
	now      func() time.Time
}

// Frame is what one tick produced for the front-end
type Frame struct {
	Redraw  []*mixer.Strip
	Events  []mixer.Event
	Remote  int // OSC commands applied
	LEDsSet int
}

// New builds a surface from cfg with LEDs going to the internal bank only
func New(cfg *config.Config) (*Surface, error) {
	rev, ok := leds.ParseRevision(cfg.Revision)
	if !ok {
		return nil, errors.Errorf("unknown hardware revision %q", cfg.Revision)
	}

	s := &Surface{
		Engine: engine.NewMemory(),
		Chains: chain.NewManager(),
		Bank:   surface.NewBank(rev.NumLEDs()),
		rev:    rev,
		demo:   cfg.UI.Demo,
		nav:    NewNavigator(leds.ScreenAudioMixer),
		now:    time.Now,
	}
	s.flags.ActiveChain = -1

	for _, c := range cfg.Chains {
		if _, err := s.Chains.Add(c.Name, c.Audio); err != nil {
			return nil, errors.Wrapf(err, "add chain %q", c.Name)
		}
	}

	visible := cfg.UI.VisibleStrips
	if visible <= 0 {
		visible = mixer.AutoVisible(cfg.UI.DisplayWidth)
	}
	s.Mixer = mixer.NewController(s.Engine, s.Chains, s.Bank, visible)

	s.ledOut = surface.Fanout{s.Bank}
	s.LEDs = leds.NewDriver(s.ledOut, cfg.LEDBrightness)

	if cfg.OSC.Enabled {
		s.Remote = remote.NewServer(cfg.OSC.Listen, cfg.OSC.Root)
	}

	store, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		return nil, err
	}
	s.Snapshots = store

	s.Mixer.Show()
	return s, nil
}

// AddLEDOutput mirrors every LED write to out, starting with a full frame
func (s *Surface) AddLEDOutput(out surface.LEDSetter) {
	s.ledOut = append(s.ledOut, out)
	s.LEDs = leds.NewDriver(s.ledOut, s.LEDs.Brightness())
}

// Screen returns the screen on top of the navigation stack
func (s *Surface) Screen() leds.Screen {
	return s.nav.Current()
}

// ShowScreen pushes name. Leaving the mixer stops its meters.
func (s *Surface) ShowScreen(name leds.Screen) {
	if name == s.nav.Current() {
		return
	}
	s.nav.Push(name)
	s.syncMixer()
}

// Back returns to the previous screen
func (s *Surface) Back() {
	if s.nav.Pop() {
		s.syncMixer()
	}
}

func (s *Surface) syncMixer() {
	if s.nav.Current() == leds.ScreenAudioMixer {
		s.Mixer.Show()
	} else {
		s.Mixer.Hide()
	}
	debug.Log("app", "screen %s", s.nav.Current())
}

// Alt, PowerSave and friends are the navigation flags the LEDs show
func (s *Surface) Alt() bool       { return s.flags.Alt }
func (s *Surface) PowerSave() bool { return s.flags.PowerSave }

func (s *Surface) ToggleAlt() {
	s.flags.Alt = !s.flags.Alt
}

func (s *Surface) TogglePowerSave() {
	s.flags.PowerSave = !s.flags.PowerSave
	s.LEDs.Reset()
}

func (s *Surface) ToggleMetronome() {
	s.flags.Metronome = !s.flags.Metronome
}

// Revision is the LED wiring in use
func (s *Surface) Revision() leds.Revision {
	return s.rev
}

// Flags returns the LED flags for the current navigation state
func (s *Surface) Flags() leds.Flags {
	f := s.flags
	f.Menu = s.nav.Current() == leds.ScreenMenu
	f.Chains = s.Chains.Len()
	f.ActiveChain = s.Chains.Current()
	return f
}

// Tick runs one update in fixed order: remote queue, encoders, switches,
// chain reconcile, redraw collection, screen events, then LEDs.
func (s *Surface) Tick(switches []midi.SwitchEvent) Frame {
	var fr Frame
	now := s.now()

	if s.Remote != nil {
		fr.Remote = s.Remote.Drain(s.Mixer)
	}

	onMixer := s.nav.Current() == leds.ScreenAudioMixer
	if onMixer {
		s.Mixer.PollEncoders()
	}
	for _, ev := range switches {
		s.handleSwitch(ev)
	}

	s.Mixer.Reconcile()
	s.meters(now)
	fr.Redraw = s.Mixer.Refresh(false)

	fr.Events = s.Mixer.Events()
	for _, ev := range fr.Events {
		s.route(ev)
	}

	frame := leds.Reduce(s.rev, s.tick, s.nav.Current(), s.Flags())
	n, err := s.LEDs.Update(frame)
	if err != nil {
		debug.Error("leds", err)
	}
	fr.LEDsSet = n

	s.tick++
	s.lastTick = now
	return fr
}

func (s *Surface) handleSwitch(ev midi.SwitchEvent) {
	debug.Log("app", "switch %d %s from %s", ev.Switch, ev.Press, ev.Source)
	if s.flags.PowerSave {
		s.TogglePowerSave()
		return
	}
	if s.nav.Current() == leds.ScreenAudioMixer && s.Mixer.Switch(ev.Switch, ev.Press) {
		return
	}
	switch {
	case ev.Switch == surface.EncoderB:
		s.Back()
	case ev.Switch == surface.EncoderA && ev.Press == mixer.PressLong:
		s.TogglePowerSave()
	case ev.Switch == surface.EncoderA && ev.Press == mixer.PressBold:
		s.ShowScreen(leds.ScreenMenu)
	}
}

// route turns controller events into screen changes
func (s *Surface) route(ev mixer.Event) {
	switch ev.Kind {
	case mixer.EventOpenChain:
		s.Chains.SetCurrent(ev.Index)
		s.ShowScreen(leds.ScreenControl)
	case mixer.EventChainOptions:
		s.Chains.SetCurrent(ev.Index)
		s.ShowScreen(leds.ScreenChainOptions)
	case mixer.EventSnapshots:
		s.ShowScreen(leds.ScreenSnapshot)
	}
}

// meters advances meter ballistics and, in demo mode, feeds each chain a
// slow test tone
func (s *Surface) meters(now time.Time) {
	if s.lastTick.IsZero() {
		return
	}
	s.Engine.Decay(now.Sub(s.lastTick))
	if !s.demo {
		return
	}
	for i, c := range s.Chains.Chains() {
		if !c.Audio {
			continue
		}
		phase := float64(s.tick)/25 + float64(i)*1.7
		amp := 0.55 + 0.45*math.Sin(phase)
		if err := s.Engine.Trigger(c.Channel, amp*amp); err != nil {
			debug.Error("demo", err)
		}
	}
}

// SaveSnapshot writes the current mixer state
func (s *Surface) SaveSnapshot(name string) (string, error) {
	file, err := s.Snapshots.Save(name, s.Mixer.GetState())
	if err != nil {
		return "", err
	}
	debug.Log("snapshot", "saved %s", file)
	return file, nil
}

// LoadSnapshot restores a snapshot. An empty filename loads the newest.
func (s *Surface) LoadSnapshot(filename string) error {
	state, err := s.Snapshots.Load(filename)
	if err != nil {
		return err
	}
	if err := s.Mixer.SetState(state); err != nil {
		return errors.Wrapf(err, "apply snapshot %q", filename)
	}
	debug.Log("snapshot", "loaded %q", filename)
	return nil
}
