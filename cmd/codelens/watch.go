package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/clicfg"
	"github.com/solanumlabs/codelens/internal/indexer"
	"github.com/solanumlabs/codelens/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Index the project, then watch it for changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context())
		},
	}
}

func runWatch(ctx context.Context) error {
	log := buildLogger()
	defer log.Sync() //nolint:errcheck

	root, err := filepath.Abs(globals.projectPath)
	if err != nil {
		return argError{err}
	}
	cfg, err := clicfg.Load(root, globals.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := openStore(root, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	registry := defaultRegistry()
	idxCfg := indexer.Config{
		Root:        root,
		Walk:        cfg.Walk,
		SizeCeiling: cfg.SizeCeiling,
		Workers:     cfg.Workers,
	}
	ix := indexer.New(idxCfg, st, registry, log)

	fmt.Println(colorCyan("performing initial index..."))
	result, err := ix.IndexDirectory(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d indexed, %d skipped, %d errors\n", colorGreen("initial index complete:"),
		result.Indexed, result.Skipped, len(result.Errors))

	w, err := watcher.New(root, cfg.Walk, ix, log)
	if err != nil {
		return err
	}
	defer w.Stop() //nolint:errcheck

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go logWatchEvents(w, log)

	if err := w.Start(watchCtx); err != nil {
		return err
	}

	fmt.Println(colorCyan("watching for changes... (Ctrl+C to stop)"))
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println(colorYellow("stopping watcher..."))
	return nil
}

func logWatchEvents(w *watcher.Watcher, log *zap.Logger) {
	for ev := range w.Events() {
		log.Info("file changed", zap.String("path", ev.Path), zap.String("kind", string(ev.Kind)))
	}
}
