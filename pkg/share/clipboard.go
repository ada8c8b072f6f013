package share

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoClipboard is returned when no clipboard tool is installed.
var ErrNoClipboard = errors.New("no clipboard tool found, install xclip, xsel, or wl-copy")

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error {
	name, args := clipboardCommand()
	if name == "" {
		return ErrNoClipboard
	}

	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard copy failed (%s): %w", name, err)
	}
	return nil
}

// clipboardCommand returns the clipboard command and args for the current platform.
func clipboardCommand() (string, []string) {
	if runtime.GOOS == "darwin" {
		return "pbcopy", nil
	}

	// wayland first, then X11
	for _, candidate := range []struct {
		name string
		args []string
	}{
		{"wl-copy", nil},
		{"xclip", []string{"-selection", "clipboard"}},
		{"xsel", []string{"--clipboard", "--input"}},
	} {
		if _, err := exec.LookPath(candidate.name); err == nil {
			return candidate.name, candidate.args
		}
	}

	return "", nil
}
