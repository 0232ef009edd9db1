package out

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	mediaout "tdrill/internal/modules/media/port/out"
)

// OSLauncher hands a file URL to the desktop's default viewer.
type OSLauncher struct{}

func NewOSLauncher() mediaout.Launcher {
	return &OSLauncher{}
}

func (l *OSLauncher) Open(_ context.Context, target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("opening media is not supported on %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch viewer: %w", err)
	}
	// reap the child without blocking the caller
	go func() { _ = cmd.Wait() }()
	return nil
}
