package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Viewer opens exported images in an external program
type Viewer struct {
	command string   // configured viewer command, empty for auto-detect
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

// candidateViewers defines the preferred viewer order for each platform.
// The system default handler is used when none is installed.
var candidateViewers = map[string][]string{
	"linux": {"feh", "sxiv", "nsxiv", "eog", "imv"},
}

// NewViewer creates a Viewer; an empty command auto-detects
func NewViewer(command string, args []string, logger *slog.Logger) *Viewer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Viewer{
		command:  command,
		args:     args,
		logger:   logger,
		lookPath: exec.LookPath,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
	}
}

// Open shows the file at path without waiting for the viewer to exit
func (v *Viewer) Open(path string) error {
	cmd := v.resolve(path)
	v.logger.Info("opening viewer", "command", cmd.Path, "args", cmd.Args[1:])
	if err := v.start(cmd); err != nil {
		return fmt.Errorf("failed to start viewer: %w", err)
	}
	return nil
}

// resolve picks the viewer command for path
func (v *Viewer) resolve(path string) *exec.Cmd {
	// Tier 1: User configured a specific viewer
	if v.command != "" {
		args := append(append([]string{}, v.args...), path)
		return exec.Command(v.command, args...)
	}

	// Tier 2: First installed candidate
	for _, name := range candidateViewers[runtime.GOOS] {
		if _, err := v.lookPath(name); err == nil {
			return exec.Command(name, path)
		}
		v.logger.Debug("viewer not available", "viewer", name)
	}

	// Tier 3: System default (open/xdg-open/start)
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", path)
	default:
		return exec.Command("xdg-open", path)
	}
}
