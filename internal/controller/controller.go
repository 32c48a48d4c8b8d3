// Package controller turns user commands into transactions. It owns the
// paste mode and the panel lock, the two panes and the undo history.
package controller

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"duopane/internal/common"
	"duopane/internal/errors"
	"duopane/internal/history"
	"duopane/internal/log"
	"duopane/internal/permissions"
	"duopane/internal/transaction"
	"duopane/internal/workspace"
)

// Controller coordinates the panes and the transactions run on them.
type Controller struct {
	state   common.OperationState
	panes   [common.PanelCount]*workspace.Workspace
	manager *workspace.Manager
	history *history.History
	opts    []transaction.Option
}

// New builds a controller over the left and right panes. Every transaction it
// creates refreshes both panes on success and carries opts.
func New(left, right *workspace.Workspace, hist *history.History, opts ...transaction.Option) *Controller {
	if hist == nil {
		hist = history.New(0)
	}
	m := workspace.NewManager(left, right)
	all := append([]transaction.Option{transaction.WithNotifier(m)}, opts...)
	return &Controller{
		panes:   [common.PanelCount]*workspace.Workspace{left, right},
		manager: m,
		history: hist,
		opts:    all,
	}
}

// Pane returns the workspace at index i, or nil.
func (c *Controller) Pane(i int) *workspace.Workspace {
	if i < 0 || i >= len(c.panes) {
		return nil
	}
	return c.panes[i]
}

func (c *Controller) Manager() *workspace.Manager { return c.manager }

func (c *Controller) History() *history.History { return c.history }

func (c *Controller) Mode() common.Mode { return c.state.Mode() }

// Lock returns the panel a pending cut or copy will be pasted into.
func (c *Controller) Lock() (int, bool) { return c.state.Lock() }

func (c *Controller) Pending() (common.Pending, bool) { return c.state.Pending() }

// CanSwitchFocus is false while a panel is locked.
func (c *Controller) CanSwitchFocus() bool {
	_, locked := c.state.Lock()
	return !locked
}

// Cut starts a move of the panel's checked entries.
func (c *Controller) Cut(panel int) error {
	return c.begin(common.SelectForMove, panel)
}

// Copy starts a copy of the panel's checked entries.
func (c *Controller) Copy(panel int) error {
	return c.begin(common.SelectForCopy, panel)
}

func (c *Controller) begin(mode common.Mode, panel int) error {
	pane := c.Pane(panel)
	if pane == nil {
		return errors.NewInvalidOperation("no such panel", "")
	}
	if err := c.state.Begin(mode, panel, pane.Selection()); err != nil {
		return err
	}
	log.LogWithFields(log.F("mode", mode.String()), log.F("panel", panel)).Debug("paste pending")
	return nil
}

// Cancel drops a pending cut or copy.
func (c *Controller) Cancel() {
	c.state.Cancel()
}

// Paste moves or copies the pending selection into the locked panel's
// current directory. The mode and lock are cleared whether or not it
// succeeds.
func (c *Controller) Paste(ctx context.Context, progress transaction.ProgressFunc) error {
	p, ok := c.state.Claim()
	if !ok {
		return errors.NewInvalidOperation("nothing to paste", "")
	}
	defer c.state.Finish()

	target := c.panes[p.TargetPanel].Path()
	var tx transaction.Transaction
	switch p.Mode {
	case common.SelectForMove:
		tx = transaction.NewMove(p.Selection, target, c.opts...)
	case common.SelectForCopy:
		tx = transaction.NewCopy(p.Selection, target, c.opts...)
	default:
		return errors.NewInvalidOperation("unexpected mode "+p.Mode.String(), "")
	}

	if err := tx.Execute(ctx, progress); err != nil {
		return err
	}
	c.history.Push(tx)
	c.panes[p.SourcePanel].ClearChecks()
	return nil
}

// PasteTransaction describes what Paste would run, for confirmation prompts.
func (c *Controller) PasteTransaction() (transaction.Transaction, bool) {
	p, ok := c.state.Pending()
	if !ok {
		return nil, false
	}
	target := c.panes[p.TargetPanel].Path()
	if p.Mode == common.SelectForMove {
		return transaction.NewMove(p.Selection, target, c.opts...), true
	}
	return transaction.NewCopy(p.Selection, target, c.opts...), true
}

func (c *Controller) requireNormal(op string) error {
	if mode := c.state.Mode(); mode != common.Normal {
		return errors.NewInvalidOperation(op+" is not allowed during "+mode.String(), "")
	}
	return nil
}

// run executes tx and pushes it onto the history on success.
func (c *Controller) run(ctx context.Context, tx transaction.Transaction) error {
	if err := tx.Execute(ctx, nil); err != nil {
		return err
	}
	c.history.Push(tx)
	return nil
}

// Remove deletes the panel's checked entries.
func (c *Controller) Remove(ctx context.Context, panel int) error {
	if err := c.requireNormal("remove"); err != nil {
		return err
	}
	pane := c.Pane(panel)
	if pane == nil {
		return errors.NewInvalidOperation("no such panel", "")
	}
	if err := c.run(ctx, transaction.NewRemove(pane.Selection(), c.opts...)); err != nil {
		return err
	}
	pane.ClearChecks()
	return nil
}

// RemoveTransaction describes what Remove would run, for confirmation prompts.
func (c *Controller) RemoveTransaction(panel int) transaction.Transaction {
	pane := c.Pane(panel)
	if pane == nil {
		return transaction.NewDoNothing()
	}
	return transaction.NewRemove(pane.Selection(), c.opts...)
}

// ChangePermissions sets the permissions of path to perms.
func (c *Controller) ChangePermissions(ctx context.Context, path string, perms permissions.Permissions) error {
	if err := c.requireNormal("chmod"); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewNotFound(path, err)
		}
		return errors.NewPermissionError(errors.AccessRead, path, err)
	}
	return c.run(ctx, transaction.NewChangePermission(path, permissions.FromMode(info.Mode()), perms, c.opts...))
}

// MakeDir creates name inside the panel's directory.
func (c *Controller) MakeDir(ctx context.Context, panel int, name string) error {
	if err := c.requireNormal("mkdir"); err != nil {
		return err
	}
	pane := c.Pane(panel)
	if pane == nil {
		return errors.NewInvalidOperation("no such panel", "")
	}
	if err := validName(name); err != nil {
		return err
	}
	return c.run(ctx, transaction.NewMakeDir(filepath.Join(pane.Path(), name), c.opts...))
}

// Rename gives src a new base name inside its directory.
func (c *Controller) Rename(ctx context.Context, src, newName string) error {
	if err := c.requireNormal("rename"); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}
	dst := filepath.Join(filepath.Dir(src), newName)
	if dst == filepath.Clean(src) {
		return nil
	}
	return c.run(ctx, transaction.NewRename(src, dst, c.opts...))
}

// Undo executes the inverse of the newest history entry. An entry whose
// inverse does nothing stays on the history and InvalidOperation is returned.
func (c *Controller) Undo(ctx context.Context, progress transaction.ProgressFunc) error {
	if err := c.requireNormal("undo"); err != nil {
		return err
	}
	e, ok := c.history.Peek()
	if !ok {
		return errors.NewInvalidOperation("nothing to undo", "")
	}
	if !e.Undoable() {
		return errors.NewInvalidOperation("cannot undo "+e.Description, "")
	}
	if err := e.Transaction.Revert().Execute(ctx, progress); err != nil {
		return err
	}
	c.history.Pop()
	log.LogWithFields(log.F("id", e.ID.String()), log.F("description", e.Description)).Info("undone")
	return nil
}

func validName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return errors.NewInvalidOperation("invalid name "+`"`+name+`"`, "")
	case strings.ContainsRune(name, filepath.Separator):
		return errors.NewInvalidOperation("name cannot contain "+string(filepath.Separator), name)
	}
	return nil
}
