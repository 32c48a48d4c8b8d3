// Package opener decides which external program opens a file.
package opener

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"duopane/internal/errors"
	"duopane/internal/log"
)

// Placeholder in a command template that is replaced by the file path. A
// template without it gets the path appended.
const Placeholder = "{}"

// Opener maps files to commands: by extension first, then by detected MIME
// type. Text files go to $EDITOR, everything else to the default command.
type Opener struct {
	byExt      map[string]string
	defaultCmd string
	editor     string
}

// New builds an Opener. Extensions are matched case-insensitively, with or
// without the leading dot.
func New(byExt map[string]string, defaultCmd string) *Opener {
	o := &Opener{byExt: make(map[string]string, len(byExt)), defaultCmd: defaultCmd}
	for ext, cmd := range byExt {
		o.byExt[normalizeExt(ext)] = cmd
	}
	o.editor = os.Getenv("EDITOR")
	if o.editor == "" {
		o.editor = "vi"
	}
	return o
}

// SetEditor overrides $EDITOR.
func (o *Opener) SetEditor(editor string) {
	if editor != "" {
		o.editor = editor
	}
}

// Template returns the command template that would open path.
func (o *Opener) Template(path string) (string, error) {
	if cmd, ok := o.byExt[normalizeExt(filepath.Ext(path))]; ok {
		return cmd, nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFound(path, err)
		}
		return "", errors.NewPermissionError(errors.AccessRead, path, err)
	}
	log.LogWithFields(log.F("path", path), log.F("mime", mt.String())).Debug("detected content type")

	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return o.editor, nil
		}
	}
	if o.defaultCmd == "" {
		return "", errors.NewInvalidOperation("no opener configured for "+mt.String(), path)
	}
	return o.defaultCmd, nil
}

// Command builds the command that opens path.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	tmpl, err := o.Template(path)
	if err != nil {
		return nil, err
	}
	args := Expand(tmpl, path)
	if len(args) == 0 {
		return nil, errors.NewInvalidOperation("empty opener command", path)
	}
	return exec.Command(args[0], args[1:]...), nil
}

// Expand splits tmpl into arguments and substitutes path.
func Expand(tmpl, path string) []string {
	fields := strings.Fields(tmpl)
	substituted := false
	for i, f := range fields {
		if strings.Contains(f, Placeholder) {
			fields[i] = strings.ReplaceAll(f, Placeholder, path)
			substituted = true
		}
	}
	if !substituted && len(fields) > 0 {
		fields = append(fields, path)
	}
	return fields
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
