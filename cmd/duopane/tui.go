package main

import (
	"fmt"
	"os"
	"path/filepath"

	"duopane/internal/controller"
	"duopane/internal/history"
	"duopane/internal/log"
	"duopane/internal/opener"
	"duopane/internal/tui"
	"duopane/internal/tui/messages"
	"duopane/internal/watch"
	"duopane/internal/workspace"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	left, right := a.cfg.Panes.Left, a.cfg.Panes.Right
	if len(args) > 0 {
		left = args[0]
	}
	if len(args) > 1 {
		right = args[1]
	}

	lw, err := openWorkspace(left, a.cfg.Panes.ShowHidden)
	if err != nil {
		return err
	}
	rw, err := openWorkspace(right, a.cfg.Panes.ShowHidden)
	if err != nil {
		return err
	}

	// The interface owns the terminal, so logs go to a file.
	logPath := a.logFile
	if logPath == "" {
		if logPath, err = defaultLogPath(); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	log.Configure(log.WithFile(logPath))
	defer log.Close()

	ctrl := controller.New(lw, rw, history.New(a.cfg.Operations.HistorySize), a.txOptions()...)

	op := opener.New(a.cfg.Openers.Extensions, a.cfg.Openers.Default)
	if a.cfg.Openers.Editor != "" {
		op.SetEditor(a.cfg.Openers.Editor)
	}

	m := tui.New(ctrl, tui.WithOpener(op), tui.WithConfirmDelete(a.cfg.Operations.ConfirmDelete))
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))

	var watcher *watch.Watcher
	if a.cfg.Watch.Enabled {
		watcher, err = watch.New(ctrl.Manager(), a.cfg.Debounce())
		if err != nil {
			log.LogError(err, "file watching disabled")
			watcher = nil
		}
	}

	follow := func() {
		if watcher == nil {
			return
		}
		if err := watcher.SetDirectories(lw.Path(), rw.Path()); err != nil {
			log.LogWithError(err).Debug("watch set incomplete")
		}
	}
	for _, ws := range []*workspace.Workspace{lw, rw} {
		ws.Subscribe(func() {
			follow()
			// Subscribers may run on the UI goroutine; Send would block there.
			go p.Send(messages.RefreshMsg{})
		})
	}

	if watcher != nil {
		follow()
		if err := watcher.Start(); err != nil {
			log.LogError(err, "file watching disabled")
		} else {
			defer watcher.Stop()
		}
	}

	log.LogWithFields(log.F("left", lw.Path()), log.F("right", rw.Path())).Info("starting")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running interface: %w", err)
	}
	return nil
}

func openWorkspace(dir string, showHidden bool) (*workspace.Workspace, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return workspace.New(abs, showHidden)
}
