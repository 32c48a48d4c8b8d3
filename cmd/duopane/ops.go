package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"duopane/internal/log"
	"duopane/internal/permissions"
	"duopane/internal/selection"
	"duopane/internal/transaction"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCopyCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "cp SOURCE... DIRECTORY",
		Short: "Copy files and directories into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, dir, err := sourcesAndDir(args)
			if err != nil {
				return err
			}
			tx := transaction.NewCopy(sel, dir, a.txOptions()...)

			var progress transaction.ProgressFunc
			if !quiet {
				progress = progressPrinter(cmd.ErrOrStderr())
			}
			return a.execute(cmd, tx, progress)
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}

func newMoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv SOURCE... DIRECTORY",
		Short: "Move files and directories into a directory",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, dir, err := sourcesAndDir(args)
			if err != nil {
				return err
			}
			return a.execute(cmd, transaction.NewMove(sel, dir, a.txOptions()...), nil)
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm PATH...",
		Short: "Remove files and directories recursively",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := absPaths(args)
			if err != nil {
				return err
			}
			return a.execute(cmd, transaction.NewRemove(selection.New(paths), a.txOptions()...), nil)
		},
	}
}

func newChmodCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chmod PERMISSIONS PATH",
		Short: "Change permission bits, given as rwxr-x--- or 750",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			perms, err := permissions.Parse(args[0])
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[1])
			if err != nil {
				return err
			}
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			tx := transaction.NewChangePermission(path, permissions.FromMode(info.Mode()), perms, a.txOptions()...)
			return a.execute(cmd, tx, nil)
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return a.execute(cmd, transaction.NewMakeDir(path, a.txOptions()...), nil)
		},
	}
}

func (a *app) execute(cmd *cobra.Command, tx transaction.Transaction, progress transaction.ProgressFunc) error {
	desc := tx.Describe()
	log.LogWithFields(log.F("operation", desc)).Debug("executing")

	if err := tx.Execute(cmd.Context(), progress); err != nil {
		if progress != nil {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
		return err
	}
	if progress != nil {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	fmt.Fprintln(cmd.OutOrStdout(), successText(desc))
	return nil
}

// progressPrinter redraws a single status line on w.
func progressPrinter(w io.Writer) transaction.ProgressFunc {
	return func(p transaction.Progress) {
		fmt.Fprintf(w, "\r%3.0f%%  %s / %s", p.Share()*100,
			humanize.Bytes(uint64(p.Done)), humanize.Bytes(uint64(p.Total)))
	}
}

func sourcesAndDir(args []string) (selection.Selection, string, error) {
	paths, err := absPaths(args)
	if err != nil {
		return selection.Selection{}, "", err
	}
	last := len(paths) - 1
	return selection.New(paths[:last]), paths[last], nil
}

func absPaths(args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
