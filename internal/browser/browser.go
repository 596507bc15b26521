// Package browser hands listing images and advisory links to the desktop.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Check reports whether rawURL is safe to pass to the system opener.
func Check(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open URL with scheme %q (only http/https allowed)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("refusing to open URL without a host")
	}
	return nil
}

// command returns the opener for goos.
func command(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		// Use rundll32 instead of cmd /c start to avoid shell interpretation
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

// Open launches rawURL in the default browser or image viewer.
func Open(rawURL string) error {
	if err := Check(rawURL); err != nil {
		return err
	}
	name, args := command(runtime.GOOS, rawURL)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("opening %s: %w", rawURL, err)
	}
	return nil
}
