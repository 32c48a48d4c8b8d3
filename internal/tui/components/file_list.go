package components

import (
	"fmt"
	"strings"

	"duopane/internal/common"
	"duopane/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// FileList renders one pane. It reads the listing from a PaneReader on every
// View, so it never holds stale entries.
type FileList struct {
	pane   common.PaneReader
	cursor int
	width  int
	height int
	active bool
	locked bool
}

func NewFileList(pane common.PaneReader) *FileList {
	return &FileList{pane: pane, width: 40, height: 10}
}

func (fl *FileList) SetCursor(cursor int) { fl.cursor = cursor }

// SetSize sets the outer size of the pane, border included.
func (fl *FileList) SetSize(width, height int) {
	fl.width = width
	fl.height = height
}

func (fl *FileList) SetActive(active bool) { fl.active = active }

func (fl *FileList) SetLocked(locked bool) { fl.locked = locked }

// window returns the range of rows that keeps the cursor visible.
func window(cursor, n, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func (fl *FileList) View() string {
	innerWidth := fl.width - 2
	if innerWidth < 10 {
		innerWidth = 10
	}
	rows := fl.height - 3

	var s strings.Builder

	header := fl.pane.Path()
	if fl.locked {
		header = "[target] " + header
	}
	s.WriteString(styles.Theme.Title.Render(truncate(header, innerWidth)))
	s.WriteString("\n")

	entries := fl.pane.Entries()
	if len(entries) == 0 {
		s.WriteString(styles.Theme.Status.Render("(empty)"))
	}

	start, end := window(fl.cursor, len(entries), rows)
	for i := start; i < end; i++ {
		e := entries[i]

		mark := " "
		style := styles.Theme.Unselected
		switch {
		case e.IsSymlink:
			style = styles.Theme.Symlink
		case e.IsDir:
			style = styles.Theme.Directory
		}
		if fl.pane.IsChecked(e.Path) {
			mark = "*"
			style = styles.Theme.Selected
		}

		name := e.Name
		size := humanize.Bytes(uint64(e.Size))
		if e.IsDir {
			name += "/"
			size = "-"
		}
		details := fmt.Sprintf(" %s %8s", e.Mode, size)
		nameWidth := innerWidth - 2 - lipgloss.Width(details)
		if nameWidth < 4 {
			nameWidth = 4
			details = ""
		}
		line := fmt.Sprintf("%s %-*s%s", mark, nameWidth, truncate(name, nameWidth), details)

		if i == fl.cursor && fl.active {
			s.WriteString(styles.Theme.Cursor.Render(line))
		} else {
			s.WriteString(style.Render(line))
		}
		if i < end-1 {
			s.WriteString("\n")
		}
	}

	frame := styles.Theme.Pane
	switch {
	case fl.locked:
		frame = styles.Theme.LockedPane
	case fl.active:
		frame = styles.Theme.ActivePane
	}
	return frame.Width(innerWidth).Height(fl.height - 2).Render(s.String())
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "~"
}
