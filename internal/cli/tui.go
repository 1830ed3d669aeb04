package cli

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/respimg/pkg/section"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// SectionListModel - Interactive section selection
// =============================================================================

// SectionListModel is the bubbletea model for interactive section selection.
type SectionListModel struct {
	Sections []section.Definition
	Cursor   int
	Selected *section.Definition
	Height   int
	Offset   int
}

// NewSectionListModel creates a new section list model.
func NewSectionListModel(defs []section.Definition) SectionListModel {
	return SectionListModel{
		Sections: defs,
		Height:   15,
	}
}

func (m SectionListModel) Init() tea.Cmd {
	return nil
}

func (m SectionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Sections)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Sections) == 0 {
				return m, tea.Quit
			}
			def := m.Sections[m.Cursor]
			m.Selected = &def
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m SectionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Section"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Sections))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		def := m.Sections[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		upper := iconNone
		if r, ok := def.UpperBound(); ok {
			upper = fmt.Sprintf("≥ %s → %s", boundText(r.ScreenMinWidth), r.ContainerMaxWidth)
		}
		rows = append(rows, []string{cursor, def.ID, fmt.Sprint(len(def.Sizes)), upper})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Section", "Rules", "Widest").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				if col == 3 {
					return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
				}
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Sections))))

	return b.String()
}

// pickSection runs the section picker on in/out and returns the chosen id,
// or "" when the user quit without choosing.
func pickSection(defs []section.Definition, in io.Reader, out io.Writer) (string, error) {
	final, err := tea.NewProgram(NewSectionListModel(defs), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("section picker: %w", err)
	}
	if m, ok := final.(SectionListModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}
