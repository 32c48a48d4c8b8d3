package views

import (
	"strings"

	"duopane/internal/common"
	"duopane/internal/tui/components"
	"duopane/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Pane(i int) common.PaneReader
	Cursor(i int) int
	Focus() int
	Lock() (int, bool)
	Mode() common.Mode
	Size() (width, height int)

	// Footer parts, already rendered by their widgets.
	ProgressView() string
	PromptView() string
	StatusView() string
	HelpView() string
}

// footerHeight is the number of rows reserved below the panes.
const footerHeight = 4

func RenderMainView(m ModelReader) string {
	width, height := m.Size()
	paneWidth := width / 2
	paneHeight := height - footerHeight
	if paneHeight < 5 {
		paneHeight = 5
	}
	locked, isLocked := m.Lock()

	var panes []string
	for i := 0; i < common.PanelCount; i++ {
		fl := components.NewFileList(m.Pane(i))
		fl.SetCursor(m.Cursor(i))
		fl.SetSize(paneWidth, paneHeight)
		fl.SetActive(i == m.Focus())
		fl.SetLocked(isLocked && i == locked)
		panes = append(panes, fl.View())
	}

	var sb strings.Builder
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panes...))
	sb.WriteString("\n")
	sb.WriteString(renderModeLine(m))

	for _, part := range []string{m.ProgressView(), m.PromptView(), m.StatusView()} {
		if part != "" {
			sb.WriteString("\n" + part)
		}
	}
	sb.WriteString("\n" + m.HelpView())

	return styles.Theme.App.Render(sb.String())
}

func renderModeLine(m ModelReader) string {
	mode := m.Mode()
	if mode == common.Normal {
		return styles.Theme.Help.Render("NORMAL")
	}
	label := "MOVE"
	if mode == common.SelectForCopy {
		label = "COPY"
	}
	return styles.Theme.Mode.Render(label) + " " +
		styles.Theme.Help.Render("navigate the target pane, v to paste, esc to cancel")
}
