package tui

import "github.com/charmbracelet/bubbles/key"

func bind(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Prev       key.Binding
	Next       key.Binding
	LevelUp    key.Binding
	LevelDown  key.Binding
	PanLeft    key.Binding
	PanRight   key.Binding
	MainUp     key.Binding
	MainDown   key.Binding
	Mute       key.Binding
	Solo       key.Binding
	Mono       key.Binding
	Reset      key.Binding
	Edit       key.Binding
	Open       key.Binding
	Options    key.Binding
	ScrollLeft key.Binding
	ScrollRite key.Binding
	Snapshots  key.Binding
	Save       key.Binding
	Alt        key.Binding
	PowerSave  key.Binding
	Back       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Prev:       bind("prev", "left", "h"),
	Next:       bind("next", "right", "l"),
	LevelUp:    bind("level+", "up", "k"),
	LevelDown:  bind("level-", "down", "j"),
	PanLeft:    bind("pan L", "["),
	PanRight:   bind("pan R", "]"),
	MainUp:     bind("main+", "+", "="),
	MainDown:   bind("main-", "-", "_"),
	Mute:       bind("mute", "m"),
	Solo:       bind("solo", "s"),
	Mono:       bind("mono", "o"),
	Reset:      bind("reset", "0"),
	Edit:       bind("edit", "e"),
	Open:       bind("open chain", "enter"),
	Options:    bind("options", "O"),
	ScrollLeft: bind("scroll", "<", ","),
	ScrollRite: bind("scroll", ">", "."),
	Snapshots:  bind("snapshots", "S"),
	Save:       bind("save", "w"),
	Alt:        bind("alt", "tab"),
	PowerSave:  bind("sleep", "z"),
	Back:       bind("back", "esc"),
	Help:       bind("help", "?"),
	Quit:       bind("quit", "q", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.LevelUp, k.Mute, k.Solo, k.Edit, k.Snapshots, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.ScrollLeft, k.ScrollRite, k.Edit, k.Back},
		{k.LevelUp, k.LevelDown, k.PanLeft, k.PanRight, k.MainUp, k.MainDown},
		{k.Mute, k.Solo, k.Mono, k.Reset},
		{k.Open, k.Options, k.Snapshots, k.Save, k.Alt, k.PowerSave, k.Quit},
	}
}
