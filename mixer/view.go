package mixer

// StripView is what a front-end needs to draw one strip
type StripView struct {
	Slot        int
	Name        string
	Level       float64
	Balance     float64
	Mute        bool
	Solo        bool
	Mono        bool
	Audio       bool
	Hidden      bool
	Highlighted bool
	Main        bool
	AnySolo     bool // main strip only
}

// View reads the engine state behind a strip
func (c *Controller) View(s *Strip) StripView {
	v := StripView{
		Slot:        s.Slot(),
		Hidden:      s.Hidden(),
		Highlighted: s.Highlighted(),
		Main:        s.IsMain(),
	}
	if v.Hidden {
		return v
	}
	info := s.Chain()
	st := c.engine.state(info.Channel)
	v.Name = info.Name
	v.Level = st.Level
	v.Balance = st.Balance
	v.Mute = st.Mute
	v.Solo = st.Solo
	v.Mono = st.Mono
	v.Audio = info.Audio
	if v.Main {
		v.AnySolo = c.anySolo()
	}
	return v
}

func (c *Controller) anySolo() bool {
	for _, ch := range c.list {
		if c.engine.solo(ch.Channel) {
			return true
		}
	}
	return false
}

// Meters reads the peak meter of the strip in slot (MainSlot for the main
// strip)
func (c *Controller) Meters(slot int) Meter {
	s := c.stripAt(slot)
	if slot == MainSlot {
		s = c.main
	}
	if s == nil || s.Hidden() {
		return Meter{}
	}
	var m Meter
	ch := s.Chain().Channel
	for side := 0; side < 2; side++ {
		peak, hold := c.engine.dpm(ch, side)
		m.Peak[side] = MeterFraction(peak)
		m.Hold[side] = MeterFraction(hold)
	}
	m.Mono = c.engine.mono(ch)
	return m
}

// AutoVisible picks a strip count from the display width
func AutoVisible(width int) int {
	switch {
	case width <= 400:
		return 4
	case width <= 600:
		return 8
	case width <= 800:
		return 10
	case width <= 1024:
		return 12
	case width <= 1280:
		return 14
	}
	return 16
}
