package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/loft/internal/config"
	"github.com/san-kum/loft/internal/sim"
)

// Menu lists the presets and opens the chosen one in a live view. Esc in the live view
// returns to the list.
type Menu struct {
	presets []string
	cursor  int
	opts    []sim.Option
	styles  styles
	live    *Model
	err     error
}

func NewMenu(opts ...sim.Option) Menu {
	return Menu{presets: config.ListPresets(), opts: opts, styles: newStyles(Themes[0])}
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.live != nil {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(m.presets)-1, m.cursor+1)
	case "enter", " ":
		live, err := NewModel(config.GetPreset(m.presets[m.cursor]), m.opts...)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.live = &live
		return m, live.Init()
	}
	return m, nil
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	st := m.styles

	var b strings.Builder
	b.WriteString("\n\n    " + st.header.Render("LOFT") + "\n")
	b.WriteString("    " + st.muted.Render("rigid bodies under gravity") + "\n\n")
	for i, name := range m.presets {
		p := config.Presets[name]
		desc := fmt.Sprintf("%d bodies, %s", len(p.Bodies), formatDuration(p.Duration))
		if i == m.cursor {
			b.WriteString("    " + st.focus.Render(fmt.Sprintf("▸ %-14s", name)) + st.value.Render(desc) + "\n")
		} else {
			b.WriteString("    " + st.muted.Render(fmt.Sprintf("  %-14s%s", name, desc)) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n    " + st.failed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + st.muted.Render("j/k navigate  enter open  esc back  q quit") + "\n")
	return b.String()
}

// RunMenu runs the preset menu until the user quits.
func RunMenu(opts ...sim.Option) error {
	_, err := tea.NewProgram(NewMenu(opts...), tea.WithAltScreen()).Run()
	return err
}
