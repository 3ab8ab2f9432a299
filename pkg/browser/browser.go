// Package browser opens item links in the system browser.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Launcher starts the platform command that opens a validated URL.
type Launcher func(url string) error

// Opener validates URLs before handing them to a Launcher.
type Opener struct {
	launch Launcher
}

// NewOpener returns an Opener using launch, or the system browser when nil.
func NewOpener(launch Launcher) *Opener {
	if launch == nil {
		launch = systemLaunch
	}
	return &Opener{launch: launch}
}

// Open validates urlString and opens it. Only http and https are allowed.
func (o *Opener) Open(urlString string) error {
	if err := Validate(urlString); err != nil {
		return err
	}
	return o.launch(urlString)
}

// Open opens urlString in the default browser.
func Open(urlString string) error {
	return NewOpener(nil).Open(urlString)
}

// Validate rejects anything but absolute http(s) URLs with a host.
func Validate(urlString string) error {
	parsedURL, err := url.Parse(urlString)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https allowed)", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("invalid URL: missing host in %q", urlString)
	}
	return nil
}

func systemLaunch(urlString string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd":
		cmd = exec.Command("xdg-open", urlString) // #nosec G204 -- URL validated by Open
	case "darwin":
		cmd = exec.Command("open", urlString) // #nosec G204 -- URL validated by Open
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", urlString) // #nosec G204 -- URL validated by Open
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
