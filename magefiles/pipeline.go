//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var binPath = filepath.Join(binDir, binName)

// Ingest builds the CLI and loads the configured dumps into the knowledge base.
func Ingest() error {
	mg.Deps(Init, Build)
	return sh.RunV(binPath, "ingest")
}

// Serve builds the CLI and starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}
