package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-chordbox/widgets"
)

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	NextPane key.Binding
	PrevPane key.Binding
	Enter    key.Binding
	Remove   key.Binding
	Random   key.Binding
	Clear    key.Binding
	Play     key.Binding
	Repeat   key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add chord / pick type")),
		Remove:   key.NewBinding(key.WithKeys("x", "backspace", "delete"), key.WithHelp("x", "remove chord")),
		Random:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "random chord")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
		Play:     key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "play/stop")),
		Repeat:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		VolUp:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolDown:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is the one-line help under the panels
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPane, k.Enter, k.Random, k.Play, k.Repeat, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.NextPane, k.PrevPane},
		{k.Enter, k.Remove, k.Random, k.Clear},
		{k.Play, k.Repeat, k.VolUp, k.VolDown, k.Help, k.Quit},
	}
}

// sections turns the full help into the overlay shown by "?"
func (k keyMap) sections() []widgets.KeySection {
	titles := []string{"Navigate", "Edit", "Playback"}
	var out []widgets.KeySection
	for i, group := range k.FullHelp() {
		sec := widgets.KeySection{Title: titles[i]}
		for _, b := range group {
			h := b.Help()
			sec.Keys = append(sec.Keys, widgets.KeyBinding{Key: h.Key, Desc: h.Desc})
		}
		out = append(out, sec)
	}
	return out
}
