package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the simulator's keyboard bindings.
type keyMap struct {
	// Frame buttons
	ButtonA key.Binding
	ButtonB key.Binding
	ButtonC key.Binding
	ButtonD key.Binding
	ButtonE key.Binding

	// Device actions
	Launcher key.Binding
	Timer    key.Binding

	// Global
	ToggleLog  key.Binding
	CycleTheme key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		ButtonA: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Press A"),
		),
		ButtonB: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Press B"),
		),
		ButtonC: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Press C"),
		),
		ButtonD: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Press D"),
		),
		ButtonE: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Press E"),
		),

		Launcher: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Hold A+E and reboot"),
		),
		Timer: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Fire wake timer"),
		),

		ToggleLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Toggle log pane"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ButtonA, k.ButtonE, k.Timer, k.Launcher, k.Help, k.Quit}
}

// FullHelp returns key bindings grouped for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ButtonA, k.ButtonB, k.ButtonC, k.ButtonD, k.ButtonE},
		{k.Timer, k.Launcher},
		{k.ToggleLog, k.CycleTheme, k.Help, k.Quit},
	}
}
