package internal

import (
	"github.com/charmbracelet/bubbles/key"

	"countdown/internal/timer"
)

type keyMap struct {
	Start   key.Binding
	Pause   key.Binding
	Stop    key.Binding
	Minutes key.Binding
	History key.Binding
	Suspend key.Binding
	Quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s", "enter"), key.WithHelp("s", "start")),
		Pause:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p", "pause")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		Minutes: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "minutes")),
		History: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "history")),
		Suspend: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "suspend")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// apply enables exactly the controls the state allows. Disabled bindings
// neither match key presses nor show up in help.
func (k *keyMap) apply(c timer.Controls, s timer.State) {
	k.Start.SetEnabled(c.Start)
	k.Pause.SetEnabled(c.Pause)
	k.Stop.SetEnabled(c.Stop)
	if s == timer.Paused {
		k.Start.SetHelp("s", "resume")
	} else {
		k.Start.SetHelp("s", "start")
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Stop, k.Minutes, k.History, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Suspend}}
}
