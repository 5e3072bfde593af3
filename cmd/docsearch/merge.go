package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canonical/docsearch/internal/config"
	"github.com/canonical/docsearch/internal/search"
	"github.com/canonical/docsearch/internal/templating"
)

func newMergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge MODULE_DIR...",
		Short: "Combine the delayed search scripts of several modules",
		Long: `Merge reads scripts/pages.js of every module directory (relative to the
output directory), each built with delay_template_substitution, and writes
the combined search script to the output directory. Unless the index backend
is "none", the records are also indexed into the site-level search index
that serve reads.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if output != "" {
				cfg.OutputDir = output
			}
			if cfg.OutputDir == "" {
				return fmt.Errorf("no output directory; set output_dir in the config or pass --output")
			}

			merger := &templating.Merger{
				Precompress: cfg.Precompress,
				Workers:     cfg.Workers,
				Logger:      logger,
			}
			if cfg.Index.Backend != config.BackendNone {
				indexer, err := search.NewIndexer(cfg.Index.Backend, cfg.IndexPath())
				if err != nil {
					return fmt.Errorf("open site index: %w", err)
				}
				merger.Indexer = indexer
			}

			_, err = merger.Merge(cmd.Context(), cfg.OutputDir, args)
			if merger.Indexer != nil {
				if cerr := merger.Indexer.Close(); cerr != nil && err == nil {
					err = fmt.Errorf("close site index: %w", cerr)
				}
			}
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "Override the output directory")
	return cmd
}
