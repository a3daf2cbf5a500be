// Command ledgerbridge mirrors FreeAgent contacts, projects and invoices.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/ledgerbridge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ledgerbridge/internal/adapters/driving/cli"
	"github.com/custodia-labs/ledgerbridge/internal/core/ports/driven"
	"github.com/custodia-labs/ledgerbridge/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	err := cli.Execute(context.Background(), cli.Options{
		Version:      version,
		Bootstrap:    bootstrap,
		OpenSettings: openSettings,
	})
	_ = logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

// settingsDir returns dir, or ~/.ledgerbridge when dir is empty.
func settingsDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, file.DefaultDirName), nil
}

func openSettings(dir string) (driven.ConfigStore, error) {
	dir, err := settingsDir(dir)
	if err != nil {
		return nil, err
	}
	return file.NewConfigStore(dir)
}
