package main

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/clicfg"
	"github.com/solanumlabs/codelens/internal/store"
)

// openStore opens the project's store at cfg.StorePath, resolved
// relative to root when not already absolute.
func openStore(root string, cfg clicfg.Config, log *zap.Logger) (*store.Store, error) {
	path := cfg.StorePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	return store.Open(path, log)
}
