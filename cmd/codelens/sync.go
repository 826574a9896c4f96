package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/solanumlabs/codelens/internal/clicfg"
	"github.com/solanumlabs/codelens/internal/indexer"
	"github.com/solanumlabs/codelens/internal/retrieval"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one incremental index pass (sync_index)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context())
		},
	}
}

func runSync(ctx context.Context) error {
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

	idxCfg := indexer.Config{
		Root:        root,
		Walk:        cfg.Walk,
		SizeCeiling: cfg.SizeCeiling,
		Workers:     cfg.Workers,
	}
	ix := indexer.New(idxCfg, st, defaultRegistry(), log)

	svc := retrieval.New(st, nil, ix, root, log)
	result, err := svc.SyncIndex(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %d indexed, %d skipped, %d errors\n", colorGreen("sync complete:"),
		result.Indexed, result.Skipped, len(result.Errors))
	return nil
}
