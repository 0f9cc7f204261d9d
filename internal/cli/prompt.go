package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const customChoice = "!CUSTOM!"

var (
	pickerTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).MarginLeft(2)
	pickerIndex  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pickerRow    = lipgloss.NewStyle().PaddingLeft(2)
	pickerCursor = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	pickerHelp   = lipgloss.NewStyle().MarginLeft(2).Foreground(lipgloss.Color("241"))
)

// suggestion is one list entry of the query picker
type suggestion struct {
	text string
}

func (s suggestion) FilterValue() string { return s.text }
func (s suggestion) Title() string       { return s.text }
func (s suggestion) Description() string { return "" }

// pickerModel is the bubbletea model for picking a starting query
type pickerModel struct {
	list     list.Model
	choice   string
	quitting bool
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		// typed text goes to the list while filtering
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if s, ok := m.list.SelectedItem().(suggestion); ok {
				m.choice = s.text
			}
			return m, tea.Quit

		case "c":
			m.choice = customChoice
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}
	return "\n" + m.list.View() + "\n" + pickerHelp.Render("enter: analyze • c: type a query • /: filter • q: cancel")
}

// promptForQuery lets the user pick one of the suggested queries or type
// their own
func promptForQuery(suggestions []string) (string, error) {
	if len(suggestions) == 0 {
		return readQuery(os.Stdin, os.Stdout)
	}

	items := make([]list.Item, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, suggestion{text: s})
	}

	const listHeight = 14
	l := list.New(items, itemDelegate{}, defaultWidth, listHeight)
	l.Title = "Pick a query"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = pickerTitle

	finalModel, err := tea.NewProgram(pickerModel{list: l}).Run()
	if err != nil {
		return "", fmt.Errorf("error running selector: %w", err)
	}

	result := finalModel.(pickerModel)
	switch result.choice {
	case customChoice:
		return readQuery(os.Stdin, os.Stdout)
	case "":
		return "", fmt.Errorf("selection cancelled")
	}
	return result.choice, nil
}

// itemDelegate draws one suggestion per line with a cursor mark
type itemDelegate struct{}

func (itemDelegate) Height() int                         { return 1 }
func (itemDelegate) Spacing() int                        { return 0 }
func (itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	s, ok := item.(suggestion)
	if !ok {
		return
	}
	number := pickerIndex.Render(fmt.Sprintf("%2d ", index+1))
	if index == m.Index() {
		fmt.Fprint(w, pickerCursor.Render("▸ ")+number+pickerCursor.Render(s.text))
		return
	}
	fmt.Fprint(w, pickerRow.Render(number+s.text))
}

// readQuery reads one line of free text. Unlike fmt.Scanln it keeps spaces.
func readQuery(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "\nEnter your query: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
