package install

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BinaryHost installs the running executable into a bin directory, the
// terminal counterpart of adding an app to the home screen.
type BinaryHost struct {
	Dir  string
	Name string
	exe  func() (string, error)
}

func NewBinaryHost(dir, name string) *BinaryHost {
	return &BinaryHost{Dir: dir, Name: name, exe: os.Executable}
}

// DefaultDir is ~/.local/bin
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "bin"), nil
}

func (h *BinaryHost) target() string {
	return filepath.Join(h.Dir, h.Name)
}

// Installable is false when already running from the install location or
// when a copy is already there.
func (h *BinaryHost) Installable() bool {
	if h.Dir == "" {
		return false
	}
	exe, err := h.exe()
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	if filepath.Dir(exe) == filepath.Clean(h.Dir) {
		return false
	}
	_, err = os.Stat(h.target())
	return os.IsNotExist(err)
}

// Prompt copies the executable. The confirmation already happened in the
// UI, so reaching here means the user accepted.
func (h *BinaryHost) Prompt(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Dismissed, err
	}
	exe, err := h.exe()
	if err != nil {
		return "", err
	}
	if err := copyFile(exe, h.target()); err != nil {
		return "", fmt.Errorf("install to %s: %w", h.Dir, err)
	}
	return Accepted, nil
}

func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
