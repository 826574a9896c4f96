package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/solanumlabs/codelens/internal/clicfg"
	"github.com/solanumlabs/codelens/internal/indexer"
	"github.com/solanumlabs/codelens/internal/parser"
	parserconfig "github.com/solanumlabs/codelens/internal/parser/config"
	"github.com/solanumlabs/codelens/internal/parser/python"
	"github.com/solanumlabs/codelens/internal/parser/typescript"
	"github.com/solanumlabs/codelens/internal/store"
)

func newIndexCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index (or re-index) the project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), full)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "force a full re-index even if checksums are unchanged")
	return cmd
}

func runIndex(ctx context.Context, full bool) error {
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

	var bar *progressbar.ProgressBar
	idxCfg := indexer.Config{
		Root:        root,
		Walk:        cfg.Walk,
		SizeCeiling: cfg.SizeCeiling,
		Workers:     cfg.Workers,
		Progress: func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "indexing")
			}
			_ = bar.Set(done)
		},
	}

	ix := indexer.New(idxCfg, st, registry, log)

	result, err := ix.IndexDirectory(ctx)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Printf("%s %d files found, %d indexed, %d skipped, %d errors\n",
		colorGreen("done:"), result.FilesFound, result.Indexed, result.Skipped, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Printf("  %s %s: %s\n", colorYellow("warn:"), e.Path, e.Message)
	}
	return nil
}

// defaultRegistry wires every language/config parser codelens ships.
func defaultRegistry() *parser.Registry {
	return parser.NewRegistry(typescript.New(), python.New(), parserconfig.New())
}
