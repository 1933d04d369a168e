// Package editor hands assembled text to a local text editor.
package editor

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"go.uber.org/zap"
)

// defaultCommand picks a GUI editor for the platform; $EDITOR wins when set.
func defaultCommand() []string {
	if ed := os.Getenv("EDITOR"); ed != "" {
		return strings.Fields(ed)
	}
	switch runtime.GOOS {
	case "windows":
		return []string{"notepad"}
	case "darwin":
		return []string{"open", "-e"}
	default:
		return []string{"mousepad"}
	}
}

// OpenTemp writes text to a temporary file, opens it in an editor, and
// removes the file once the editor returns.
func OpenTemp(text string, logger *zap.Logger) error {
	tf, err := os.CreateTemp("", "gpt-helper-*.txt")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tf.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			logger.Warn("Failed to remove temp file", zap.String("file", path), zap.Error(err))
		}
	}()

	if _, err := tf.WriteString(text); err != nil {
		tf.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tf.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	return Open(path)
}

// Open opens an existing file in the platform editor and waits for it to
// close.
func Open(path string) error {
	cmdline := append(defaultCommand(), path)
	cmd := exec.Command(cmdline[0], cmdline[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %q failed: %w", cmdline[0], err)
	}
	return nil
}
