package shared

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/log"
)

var getRuntime = func() string { return runtime.GOOS }

var startCommand = func(cmd *exec.Cmd) error { return cmd.Start() }

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := startCommand(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}

// BrowserNavigator sends page navigations (login redirects) to the system browser.
type BrowserNavigator struct {
	logger *log.Logger
	// Visited records every URL navigated to, most recent last.
	Visited []string
}

// NewBrowserNavigator creates a [BrowserNavigator] logging failures to logger.
func NewBrowserNavigator(logger *log.Logger) *BrowserNavigator {
	return &BrowserNavigator{logger: logger}
}

// Navigate opens url in the browser. Failures are logged, mirroring a page redirect that cannot report back.
func (n *BrowserNavigator) Navigate(url string) {
	n.Visited = append(n.Visited, url)
	if err := OpenBrowser(url); err != nil {
		n.logger.Warn("could not open browser", "url", url, "error", err)
	}
}
