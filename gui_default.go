//go:build !console

package main

import (
	"fmt"

	webview "github.com/webview/webview_go"
	"go.uber.org/zap"
)

// runEmbeddedUI starts the web server and opens an embedded browser window
func runEmbeddedUI(config *Config, logger *zap.Logger) error {
	ws := NewWebServer(config, "localhost:0", logger)

	// Start server and get URL
	url, cleanup, err := ws.StartForEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer cleanup()

	// Create webview window (false = no debug mode)
	w := webview.New(false)
	defer w.Destroy()

	w.SetTitle("Loan Amortization Calculator")
	w.SetSize(1200, 800, webview.HintNone)
	w.Navigate(url)

	// Run blocks until window is closed
	w.Run()

	return nil
}

// runGUI starts the graphical user interface (uses embedded browser)
func runGUI(config *Config, logger *zap.Logger) error {
	return runEmbeddedUI(config, logger)
}
