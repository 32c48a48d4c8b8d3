package tui

import (
	"context"
	"fmt"
	"path/filepath"

	"duopane/internal/common"
	"duopane/internal/controller"
	"duopane/internal/errors"
	"duopane/internal/log"
	"duopane/internal/opener"
	"duopane/internal/permissions"
	"duopane/internal/transaction"
	"duopane/internal/tui/components"
	"duopane/internal/tui/messages"
	"duopane/internal/tui/views"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptGlob
	promptChmod
	promptMakeDir
	promptRename
	promptConfirmDelete
)

var promptLabels = map[promptKind]string{
	promptGlob:          "check matching: ",
	promptChmod:         "permissions: ",
	promptMakeDir:       "new directory: ",
	promptRename:        "rename to: ",
	promptConfirmDelete: "delete? [y/N] ",
}

// run is an operation executing off the UI goroutine.
type run struct {
	description string
	progress    chan transaction.Progress
	done        chan error
	cancel      context.CancelFunc
}

// Option configures a Model.
type Option func(*Model)

// WithOpener sets how files are opened on enter.
func WithOpener(o *opener.Opener) Option {
	return func(m *Model) { m.opener = o }
}

// WithConfirmDelete asks before removing.
func WithConfirmDelete(confirm bool) Option {
	return func(m *Model) { m.confirmDelete = confirm }
}

type Model struct {
	ctrl          *controller.Controller
	opener        *opener.Opener
	confirmDelete bool

	focus   int
	cursors [common.PanelCount]int

	prompt       promptKind
	promptTarget string
	input        textinput.Model

	running  *run
	share    float64
	progress progress.Model
	status   *components.StatusBar

	keys     keyMap
	help     help.Model
	showHelp bool

	width  int
	height int
}

func New(ctrl *controller.Controller, opts ...Option) *Model {
	input := textinput.New()
	input.CharLimit = 255

	m := &Model{
		ctrl:          ctrl,
		confirmDelete: true,
		input:         input,
		progress:      progress.New(progress.WithDefaultGradient()),
		status:        components.NewStatusBar(),
		keys:          defaultKeyMap(),
		help:          help.New(),
		width:         100,
		height:        30,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.progress.Width = msg.Width - 4
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case messages.ProgressMsg:
		m.share = msg.Progress.Share()
		if m.running != nil {
			return m, m.running.wait()
		}
		return m, nil

	case messages.OperationDoneMsg:
		m.running = nil
		m.share = 0
		m.status.SetLoading(false)
		if msg.Err != nil {
			log.LogWithFields(log.F("operation", msg.Description)).WithError(msg.Err).Warn("operation failed")
			m.status.SetError(msg.Err)
		} else {
			m.status.SetText(msg.Description + ": done")
		}
		m.clampCursors()
		return m, nil

	case messages.OpenFinishedMsg:
		if msg.Err != nil {
			m.status.SetError(msg.Err)
		}
		return m, nil

	case messages.ErrorMsg:
		m.status.SetError(msg.Err)
		return m, nil

	case messages.RefreshMsg:
		m.clampCursors()
		return m, nil

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt != promptNone {
		return m.handlePromptKeys(msg)
	}
	if m.running != nil {
		if key.Matches(msg, m.keys.Quit) {
			m.running.cancel()
			return m, tea.Quit
		}
		return m, nil
	}
	return m.handleNormalKeys(msg)
}

func (m *Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pane := m.ctrl.Pane(m.focus)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Down):
		if m.cursors[m.focus] < len(pane.Entries())-1 {
			m.cursors[m.focus]++
		}

	case key.Matches(msg, m.keys.Up):
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}

	case key.Matches(msg, m.keys.Focus):
		if !m.ctrl.CanSwitchFocus() {
			m.status.SetText("target pane is locked until paste or cancel")
			return m, nil
		}
		m.focus ^= 1

	case key.Matches(msg, m.keys.Open):
		return m, m.open()

	case key.Matches(msg, m.keys.Back):
		if err := pane.StepUp(); err != nil {
			m.status.SetError(err)
		}
		m.cursors[m.focus] = 0

	case key.Matches(msg, m.keys.Check):
		if e, ok := m.current(); ok {
			pane.Toggle(e.Path)
			if m.cursors[m.focus] < len(pane.Entries())-1 {
				m.cursors[m.focus]++
			}
		}

	case key.Matches(msg, m.keys.Glob):
		m.openPrompt(promptGlob, "", "*")

	case key.Matches(msg, m.keys.Cut):
		m.begin(m.ctrl.Cut, "move")

	case key.Matches(msg, m.keys.Copy):
		m.begin(m.ctrl.Copy, "copy")

	case key.Matches(msg, m.keys.Paste):
		tx, ok := m.ctrl.PasteTransaction()
		if !ok {
			m.status.SetText("nothing to paste")
			return m, nil
		}
		return m, m.start(tx.Describe(), m.ctrl.Paste)

	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl.Mode() != common.Normal {
			m.ctrl.Cancel()
			m.status.SetText("cancelled")
		}

	case key.Matches(msg, m.keys.Delete):
		if m.ctrl.Mode() != common.Normal {
			m.status.SetText("finish or cancel the pending paste first")
			return m, nil
		}
		if pane.Selection().Empty() {
			if e, ok := m.current(); ok {
				pane.Toggle(e.Path)
			}
		}
		if m.confirmDelete {
			m.openPrompt(promptConfirmDelete, "", "")
			return m, nil
		}
		return m, m.remove()

	case key.Matches(msg, m.keys.Undo):
		desc := "undo"
		if e, ok := m.ctrl.History().Peek(); ok {
			desc = "undo " + e.Description
		}
		return m, m.start(desc, m.ctrl.Undo)

	case key.Matches(msg, m.keys.Chmod):
		if e, ok := m.current(); ok {
			perms, _ := permissions.Parse(e.Mode)
			m.openPrompt(promptChmod, e.Path, perms.String())
		}

	case key.Matches(msg, m.keys.MakeDir):
		m.openPrompt(promptMakeDir, "", "")

	case key.Matches(msg, m.keys.Rename):
		if e, ok := m.current(); ok {
			m.openPrompt(promptRename, e.Path, e.Name)
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.ctrl.Mode() == common.Normal {
			m.ctrl.Manager().RebuildAll()
			m.clampCursors()
		}

	case key.Matches(msg, m.keys.Hidden):
		if err := pane.SetShowHidden(!pane.ShowHidden()); err != nil {
			m.status.SetError(err)
		}
		m.clampCursors()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}

	return m, nil
}

// begin starts a cut or copy. With nothing checked the entry under the cursor
// is used. Focus moves to the locked target pane.
func (m *Model) begin(start func(panel int) error, verb string) {
	pane := m.ctrl.Pane(m.focus)
	if pane.Selection().Empty() {
		if e, ok := m.current(); ok {
			pane.Toggle(e.Path)
		}
	}
	if err := start(m.focus); err != nil {
		m.status.SetError(err)
		return
	}
	if target, ok := m.ctrl.Lock(); ok {
		m.focus = target
	}
	m.status.SetText(fmt.Sprintf("%s %d item(s): choose a directory and paste", verb, pane.Selection().Len()))
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.prompt

	if kind == promptConfirmDelete {
		m.closePrompt()
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.remove()
		}
		m.status.SetText("delete cancelled")
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		value := m.input.Value()
		target := m.promptTarget
		m.closePrompt()
		return m, m.submit(kind, target, value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(kind promptKind, target, value string) tea.Cmd {
	pane := m.ctrl.Pane(m.focus)

	switch kind {
	case promptGlob:
		n, err := pane.CheckMatching(value)
		if err != nil {
			m.status.SetError(err)
			return nil
		}
		m.status.SetText(fmt.Sprintf("checked %d entries", n))

	case promptChmod:
		perms, err := permissions.Parse(value)
		if err != nil {
			m.status.SetError(err)
			return nil
		}
		return m.start("chmod "+filepath.Base(target), func(ctx context.Context, _ transaction.ProgressFunc) error {
			return m.ctrl.ChangePermissions(ctx, target, perms)
		})

	case promptMakeDir:
		focus := m.focus
		return m.start("mkdir "+value, func(ctx context.Context, _ transaction.ProgressFunc) error {
			return m.ctrl.MakeDir(ctx, focus, value)
		})

	case promptRename:
		return m.start("rename "+filepath.Base(target), func(ctx context.Context, _ transaction.ProgressFunc) error {
			return m.ctrl.Rename(ctx, target, value)
		})
	}
	return nil
}

func (m *Model) remove() tea.Cmd {
	focus := m.focus
	tx := m.ctrl.RemoveTransaction(focus)
	return m.start(tx.Describe(), func(ctx context.Context, _ transaction.ProgressFunc) error {
		return m.ctrl.Remove(ctx, focus)
	})
}

func (m *Model) open() tea.Cmd {
	e, ok := m.current()
	if !ok {
		return nil
	}
	if e.IsDir {
		if err := m.ctrl.Pane(m.focus).Chdir(e.Path); err != nil {
			m.status.SetError(err)
			return nil
		}
		m.cursors[m.focus] = 0
		return nil
	}
	if m.opener == nil {
		m.status.SetError(errors.NewInvalidOperation("no opener configured", e.Path))
		return nil
	}
	cmd, err := m.opener.Command(e.Path)
	if err != nil {
		m.status.SetError(err)
		return nil
	}
	path := e.Path
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return messages.OpenFinishedMsg{Path: path, Err: err}
	})
}

// start runs fn off the UI goroutine and streams its progress back as
// messages until it finishes.
func (m *Model) start(description string, fn func(context.Context, transaction.ProgressFunc) error) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		description: description,
		progress:    make(chan transaction.Progress, 1),
		done:        make(chan error, 1),
		cancel:      cancel,
	}
	m.running = r
	m.share = 0
	m.status.SetText(description)

	go func() {
		defer cancel()
		r.done <- fn(ctx, r.publish)
	}()
	return tea.Batch(r.wait(), m.status.SetLoading(true))
}

// publish replaces any sample the UI has not read yet with p. It never
// blocks; the operation goroutine is the only sender.
func (r *run) publish(p transaction.Progress) {
	select {
	case <-r.progress:
	default:
	}
	r.progress <- p
}

// wait delivers a pending sample before the outcome, so the last reported
// share is always seen.
func (r *run) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case p := <-r.progress:
			return messages.ProgressMsg{Progress: p}
		default:
		}
		select {
		case p := <-r.progress:
			return messages.ProgressMsg{Progress: p}
		case err := <-r.done:
			return messages.OperationDoneMsg{Description: r.description, Err: err}
		}
	}
}

func (m *Model) openPrompt(kind promptKind, target, value string) {
	m.prompt = kind
	m.promptTarget = target
	m.input.Prompt = promptLabels[kind]
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

func (m *Model) closePrompt() {
	m.prompt = promptNone
	m.promptTarget = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) current() (common.Entry, bool) {
	entries := m.ctrl.Pane(m.focus).Entries()
	c := m.cursors[m.focus]
	if c < 0 || c >= len(entries) {
		return common.Entry{}, false
	}
	return entries[c], true
}

func (m *Model) clampCursors() {
	for i := range m.cursors {
		n := len(m.ctrl.Pane(i).Entries())
		if m.cursors[i] >= n {
			m.cursors[i] = n - 1
		}
		if m.cursors[i] < 0 {
			m.cursors[i] = 0
		}
	}
}

// Getters

func (m *Model) Pane(i int) common.PaneReader { return m.ctrl.Pane(i) }

func (m *Model) Cursor(i int) int { return m.cursors[i] }

func (m *Model) Focus() int { return m.focus }

func (m *Model) Lock() (int, bool) { return m.ctrl.Lock() }

func (m *Model) Mode() common.Mode { return m.ctrl.Mode() }

func (m *Model) Size() (int, int) { return m.width, m.height }

// Running reports whether an operation is in flight.
func (m *Model) Running() bool { return m.running != nil }

// Status returns the status line text.
func (m *Model) Status() string { return m.status.Text() }

func (m *Model) ProgressView() string {
	if m.running == nil {
		return ""
	}
	return m.progress.ViewAs(m.share)
}

func (m *Model) PromptView() string {
	if m.prompt == promptNone {
		return ""
	}
	if m.prompt == promptConfirmDelete {
		return promptLabels[promptConfirmDelete]
	}
	return m.input.View()
}

func (m *Model) StatusView() string { return m.status.View() }

func (m *Model) HelpView() string { return m.help.View(m.keys) }

var _ views.ModelReader = (*Model)(nil)
