package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-mixsurface/app"
	"go-mixsurface/debug"
	"go-mixsurface/snapshot"
	"go-mixsurface/theme"
)

var (
	snapUp     = bind("up", "up", "k")
	snapDown   = bind("down", "down", "j")
	snapLoad   = bind("load", "enter")
	snapSave   = bind("save new", "w", "n")
	snapDelete = bind("delete", "x", "delete")
)

// snapshotScreen lists saved mixer states, newest first
type snapshotScreen struct {
	surface *app.Surface
	list    []snapshot.Info
	cursor  int
	err     error
}

func newSnapshotScreen(s *app.Surface) *snapshotScreen {
	return &snapshotScreen{surface: s}
}

func (sc *snapshotScreen) reload() {
	sc.list, sc.err = sc.surface.Snapshots.List()
	if sc.err != nil {
		debug.Error("snapshot", sc.err)
	}
	if sc.cursor >= len(sc.list) {
		sc.cursor = max(len(sc.list)-1, 0)
	}
}

// key handles one key press and returns a status line
func (sc *snapshotScreen) key(msg tea.KeyMsg) string {
	switch {
	case key.Matches(msg, keys.Back):
		sc.surface.Back()
	case key.Matches(msg, snapUp):
		if sc.cursor > 0 {
			sc.cursor--
		}
	case key.Matches(msg, snapDown):
		if sc.cursor < len(sc.list)-1 {
			sc.cursor++
		}
	case key.Matches(msg, snapLoad):
		if len(sc.list) == 0 {
			return "nothing to load"
		}
		info := sc.list[sc.cursor]
		if err := sc.surface.LoadSnapshot(info.Filename); err != nil {
			return "load failed: " + err.Error()
		}
		sc.surface.Back()
		return "loaded " + info.Label()
	case key.Matches(msg, snapSave):
		file, err := sc.surface.SaveSnapshot("")
		if err != nil {
			return "save failed: " + err.Error()
		}
		sc.reload()
		return "saved " + file
	case key.Matches(msg, snapDelete):
		if len(sc.list) == 0 {
			return ""
		}
		info := sc.list[sc.cursor]
		if err := sc.surface.Snapshots.Delete(info.Filename); err != nil {
			return "delete failed: " + err.Error()
		}
		sc.reload()
		return "deleted " + info.Label()
	}
	return ""
}

func (sc *snapshotScreen) view(th *theme.Theme) string {
	title := lipgloss.NewStyle().Foreground(th.Accent()).Render("Snapshots")
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	sel := lipgloss.NewStyle().Foreground(th.BG()).Background(th.Accent())

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if sc.err != nil {
		b.WriteString(dim.Render(sc.err.Error()))
		return b.String()
	}
	if len(sc.list) == 0 {
		b.WriteString(dim.Render("no snapshots yet (w to save)"))
		return b.String()
	}
	for i, info := range sc.list {
		line := fmt.Sprintf(" %-24s %s ", info.Label(), info.Timestamp.Format("Jan 02 15:04"))
		if i == sc.cursor {
			line = sel.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(dim.Render("enter load  w save  x delete  esc back"))
	return b.String()
}
