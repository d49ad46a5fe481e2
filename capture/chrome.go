package capture

import (
	"os"
	"os/exec"
)

// Common Chrome/Chromium binary names probed on PATH.
var chromeNames = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

// ResolveChromePath picks the browser executable: the explicit path wins,
// then the CHROME_PATH environment variable, then a PATH probe. An empty
// result means "let the launcher find or fetch one".
func ResolveChromePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("CHROME_PATH"); p != "" {
		return p
	}
	for _, name := range chromeNames {
		if p, err := exec.LookPath(name); err == nil {
			return p
		}
	}
	return ""
}
