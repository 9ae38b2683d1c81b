package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"go-mixsurface/mixer"
	"go-mixsurface/theme"
)

// Line counts of RenderStrip and RenderMeter
const (
	StripHeight = 5
	MeterHeight = 2
	MinWidth    = 8
)

// StripRenderer draws mixer strips with one shared fader bar
type StripRenderer struct {
	th    *theme.Theme
	width int
	fader progress.Model
	main  progress.Model
}

func NewStripRenderer(th *theme.Theme, width int) *StripRenderer {
	if width < MinWidth {
		width = MinWidth
	}
	r := &StripRenderer{th: th, width: width}
	r.fader = progress.New(
		progress.WithSolidFill(th.Hex(theme.RoleAccent)),
		progress.WithoutPercentage(),
		progress.WithWidth(width),
	)
	r.main = progress.New(
		progress.WithGradient(th.Hex(theme.RoleMeterLow), th.Hex(theme.RoleMeterHigh)),
		progress.WithoutPercentage(),
		progress.WithWidth(width),
	)
	return r
}

// Width is the column width of one strip
func (r *StripRenderer) Width() int {
	return r.width
}

// RenderStrip draws the name, fader, balance and flags of a strip
func (r *StripRenderer) RenderStrip(v mixer.StripView) string {
	box := lipgloss.NewStyle().Width(r.width)
	if v.Hidden {
		return box.Height(StripHeight).Render("")
	}

	nameStyle := lipgloss.NewStyle().Foreground(r.th.FG()).Width(r.width)
	if v.Highlighted {
		nameStyle = nameStyle.Background(r.th.Accent()).Foreground(r.th.BG()).Bold(true)
	}

	bar := r.fader
	if v.Main {
		bar = r.main
	}

	lines := []string{
		nameStyle.Render(truncate(v.Name, r.width)),
		bar.ViewAs(v.Level),
		box.Render(fmt.Sprintf("%3d%%", int(v.Level*100+0.5))),
		r.balance(v),
		r.flags(v),
	}
	return strings.Join(lines, "\n")
}

func (r *StripRenderer) balance(v mixer.StripView) string {
	if !v.Audio {
		return lipgloss.NewStyle().Foreground(r.th.Muted()).Width(r.width).Render("midi")
	}
	pos := int((v.Balance+1)/2*float64(r.width-1) + 0.5)
	track := []rune(strings.Repeat(string(r.th.Symbols.Track), r.width))
	track[clamp(pos, 0, r.width-1)] = r.th.Symbols.Balance
	return lipgloss.NewStyle().Foreground(r.th.Muted()).Render(string(track))
}

func (r *StripRenderer) flags(v mixer.StripView) string {
	on := lipgloss.NewStyle().Foreground(r.th.Warning()).Bold(true)
	off := lipgloss.NewStyle().Foreground(r.th.Muted())
	flag := func(set bool, s string) string {
		if set {
			return on.Render(s)
		}
		return off.Render(s)
	}
	solo := v.Solo
	if v.Main {
		solo = v.AnySolo
	}
	parts := []string{flag(v.Mute, "M"), flag(solo, "S")}
	if v.Audio {
		parts = append(parts, flag(v.Mono, "m"))
	}
	return lipgloss.NewStyle().Width(r.width).Render(strings.Join(parts, " "))
}

// RenderMeter draws the stereo peak meter (one line per side, or one for
// mono)
func (r *StripRenderer) RenderMeter(m mixer.Meter, hidden bool) string {
	if hidden {
		return lipgloss.NewStyle().Width(r.width).Height(MeterHeight).Render("")
	}
	left := r.meterLine(m.Peak[0], m.Hold[0])
	if m.Mono {
		return left + "\n" + lipgloss.NewStyle().Width(r.width).Render("")
	}
	return left + "\n" + r.meterLine(m.Peak[1], m.Hold[1])
}

func (r *StripRenderer) meterLine(peak, hold float64) string {
	cells := int(peak * float64(r.width))
	holdCell := int(hold*float64(r.width)) - 1

	var b strings.Builder
	for i := 0; i < r.width; i++ {
		frac := (float64(i) + 1) / float64(r.width)
		c := r.zoneColor(mixer.MeterZone(frac))
		switch {
		case i < cells:
			b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r.th.Symbols.Meter)))
		case i == holdCell && hold > 0:
			b.WriteString(lipgloss.NewStyle().Foreground(c).Render(string(r.th.Symbols.Hold)))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(r.th.Surface()).Render(string(r.th.Symbols.MeterOff)))
		}
	}
	return b.String()
}

func (r *StripRenderer) zoneColor(z mixer.Zone) lipgloss.Color {
	switch z {
	case mixer.ZoneOver:
		return r.th.MeterOver()
	case mixer.ZoneHigh:
		return r.th.MeterHigh()
	}
	return r.th.MeterLow()
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	if n <= 1 {
		return string(rs[:n])
	}
	return string(rs[:n-1]) + "…"
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
