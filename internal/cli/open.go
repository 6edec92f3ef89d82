package cli

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// openFile shows path in the platform's default viewer. It does not wait
// for the viewer to exit.
func openFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
