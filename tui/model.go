package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-mixsurface/app"
	"go-mixsurface/debug"
	"go-mixsurface/leds"
	"go-mixsurface/midi"
	"go-mixsurface/mixer"
	"go-mixsurface/surface"
	"go-mixsurface/theme"
	"go-mixsurface/widgets"
)

// stripWidth is the column width of one strip
const stripWidth = 10

type Model struct {
	Surface   *app.Surface
	DeviceMgr *midi.DeviceManager // nil without hardware
	Theme     *theme.Theme

	strips   *widgets.StripRenderer
	cache    map[int]string // rendered strip bodies by slot
	help     help.Model
	snaps    *snapshotScreen
	tick     time.Duration
	pending  []midi.SwitchEvent
	devices  []string
	status   string
	quitting bool
}

type tickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

func NewModel(s *app.Surface, deviceMgr *midi.DeviceManager, th *theme.Theme, tick time.Duration) Model {
	return Model{
		Surface:   s,
		DeviceMgr: deviceMgr,
		Theme:     th,
		strips:    widgets.NewStripRenderer(th, stripWidth),
		cache:     make(map[int]string),
		help:      help.New(),
		snaps:     newSnapshotScreen(s),
		tick:      tick,
	}
}

func doTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{doTick(m.tick)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tickMsg:
		m.runTick()
		return m, doTick(m.tick)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			// new hardware shows whatever it had, so resend every LED
			m.Surface.LEDs.Reset()
			m.status = fmt.Sprintf("%s connected", event.ID)
		} else {
			m.status = fmt.Sprintf("%s disconnected", event.ID)
		}
		m.devices = m.DeviceMgr.Controllers()
		return m, ListenForDevices(m.DeviceMgr)
	}
	return m, nil
}

// runTick collects hardware switches, runs the surface and re-renders the
// strips it reported dirty
func (m *Model) runTick() {
	switches := m.pending
	m.pending = nil
	if m.DeviceMgr != nil {
	drain:
		for {
			select {
			case ev := <-m.DeviceMgr.Switches():
				switches = append(switches, ev)
			default:
				break drain
			}
		}
	}

	frame := m.Surface.Tick(switches)
	for _, s := range frame.Redraw {
		m.cache[s.Slot()] = m.strips.RenderStrip(m.Surface.Mixer.View(s))
	}
	for _, ev := range frame.Events {
		debug.Log("tui", "event %s index %d", ev.Kind, ev.Index)
		if ev.Kind == mixer.EventSnapshots {
			m.snaps.reload()
		}
	}
}

// press queues a switch as if it came from hardware
func (m *Model) press(sw int, p mixer.Press) {
	m.pending = append(m.pending, midi.SwitchEvent{Source: "keyboard", Switch: sw, Press: p})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if key.Matches(msg, keys.Help) {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	s := m.Surface
	if s.PowerSave() {
		s.TogglePowerSave()
		return m, nil
	}

	switch s.Screen() {
	case leds.ScreenAudioMixer:
		m.mixerKey(msg)
	case leds.ScreenSnapshot:
		m.status = m.snaps.key(msg)
	default:
		if key.Matches(msg, keys.Back) {
			s.Back()
		}
	}
	return m, nil
}

func (m *Model) mixerKey(msg tea.KeyMsg) {
	s := m.Surface
	c := s.Mixer
	switch {
	case key.Matches(msg, keys.Prev):
		c.Prev()
	case key.Matches(msg, keys.Next):
		c.Next()
	case key.Matches(msg, keys.LevelUp):
		c.Nudge(surface.EncoderA, 2)
	case key.Matches(msg, keys.LevelDown):
		c.Nudge(surface.EncoderA, -2)
	case key.Matches(msg, keys.PanLeft):
		c.Nudge(surface.EncoderB, -2)
	case key.Matches(msg, keys.PanRight):
		c.Nudge(surface.EncoderB, 2)
	case key.Matches(msg, keys.MainUp):
		c.Nudge(surface.EncoderC, 2)
	case key.Matches(msg, keys.MainDown):
		c.Nudge(surface.EncoderC, -2)
	case key.Matches(msg, keys.Mute):
		m.press(surface.EncoderA, mixer.PressShort)
	case key.Matches(msg, keys.Solo):
		m.press(surface.EncoderC, mixer.PressShort)
	case key.Matches(msg, keys.Mono):
		c.ToggleMono(mixer.Selected)
	case key.Matches(msg, keys.Reset):
		c.ResetVolume(mixer.Selected)
		c.ResetBalance(mixer.Selected)
	case key.Matches(msg, keys.Edit):
		if c.Mode() == mixer.ModeEdit {
			c.ExitEdit()
		} else {
			c.EnterEdit()
		}
	case key.Matches(msg, keys.Back):
		c.ExitEdit()
	case key.Matches(msg, keys.Open):
		m.press(surface.EncoderD, mixer.PressShort)
	case key.Matches(msg, keys.Options):
		m.press(surface.EncoderD, mixer.PressBold)
	case key.Matches(msg, keys.ScrollLeft):
		c.ScrollWheel(false)
	case key.Matches(msg, keys.ScrollRite):
		c.ScrollWheel(true)
	case key.Matches(msg, keys.Snapshots):
		m.press(surface.EncoderC, mixer.PressBold)
	case key.Matches(msg, keys.Save):
		if file, err := s.SaveSnapshot(""); err != nil {
			debug.Error("snapshot", err)
			m.status = "save failed: " + err.Error()
		} else {
			m.status = "saved " + file
		}
	case key.Matches(msg, keys.Alt):
		s.ToggleAlt()
	case key.Matches(msg, keys.PowerSave):
		s.TogglePowerSave()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Surface
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	hw := "no surface"
	if len(m.devices) > 0 {
		hw = strings.Join(m.devices, ", ")
	}
	header := headerStyle.Render(s.Mixer.Title()) +
		dimStyle.Render(fmt.Sprintf("  [%s]  %s  %s", s.Screen(), s.Revision(), hw))

	var body string
	switch s.Screen() {
	case leds.ScreenAudioMixer:
		body = m.mixerView()
	case leds.ScreenSnapshot:
		body = m.snaps.view(m.Theme)
	default:
		body = dimStyle.Render(fmt.Sprintf("%s screen for chain %d (esc to go back)", s.Screen(), s.Chains.Current()+1))
	}

	ledRow := widgets.RenderLEDRow(s.Bank.LEDs(), s.Revision().NumLEDs())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(body)
	out.WriteString("\n\n")
	out.WriteString(ledRow)
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(m.status))
	}
	out.WriteString("\n\n")
	out.WriteString(m.help.View(keys))
	return out.String()
}

func (m Model) mixerView() string {
	c := m.Surface.Mixer
	gap := lipgloss.NewStyle().Width(1).Render(" ")

	var cols []string
	for _, s := range c.Strips() {
		cols = append(cols, m.column(s), gap)
	}
	sep := lipgloss.NewStyle().Foreground(m.Theme.Surface()).
		Render(strings.TrimSuffix(strings.Repeat("│\n", widgets.StripHeight+widgets.MeterHeight+1), "\n"))
	cols = append(cols, sep, gap, m.column(c.MainStrip()))
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

// column draws the cached strip body above a live meter
func (m Model) column(s *mixer.Strip) string {
	body, ok := m.cache[s.Slot()]
	if !ok {
		body = m.strips.RenderStrip(m.Surface.Mixer.View(s))
	}
	meter := m.strips.RenderMeter(m.Surface.Mixer.Meters(s.Slot()), s.Hidden())
	return lipgloss.JoinVertical(lipgloss.Left, meter, "", body)
}
