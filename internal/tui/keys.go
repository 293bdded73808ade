package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Back      key.Binding
	Search    key.Binding
	Filter1   key.Binding
	Filter2   key.Binding
	Filter3   key.Binding
	Reset     key.Binding
	NewRecord key.Binding
	Board     key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "выход")),
		NextTab:   key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab", "раздел")),
		PrevTab:   key.NewBinding(key.WithKeys("shift+tab", "left")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑↓", "строка")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "карточка")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "назад")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "поиск")),
		Filter1:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f g h", "фильтры")),
		Filter2:   key.NewBinding(key.WithKeys("g")),
		Filter3:   key.NewBinding(key.WithKeys("h")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "сброс")),
		NewRecord: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "создать")),
		Board:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "доска")),
	}
}

// help lists the bindings shown in the footer.
func (k keyMap) help() []key.Binding {
	return []key.Binding{k.NextTab, k.Up, k.Search, k.Filter1, k.Reset, k.Select, k.NewRecord, k.Board, k.Back, k.Quit}
}
