package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/canonical/docsearch/internal/config"
	"github.com/canonical/docsearch/internal/fetcher"
	"github.com/canonical/docsearch/internal/logging"
	"github.com/canonical/docsearch/internal/pipeline"
	"github.com/canonical/docsearch/internal/search"
	"github.com/canonical/docsearch/internal/searchbar"
	"github.com/canonical/docsearch/internal/sitemap"
	"github.com/canonical/docsearch/internal/storage"
)

func newBuildCmd() *cobra.Command {
	var (
		manifestPath string
		output       string
		force        bool
		delayed      bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render a documentation module and its search script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if manifestPath != "" {
				cfg.Manifest = manifestPath
			}
			if output != "" {
				cfg.OutputDir = output
			}
			if cmd.Flags().Changed("delayed") {
				cfg.DelayTemplateSubstitution = delayed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if cfg.Manifest == "" {
				return errors.New("no manifest given; set manifest in the config or pass --manifest")
			}

			if fetcher.IsRemote(cfg.Manifest) {
				workDir, err := os.MkdirTemp("", "docsearch-build-")
				if err != nil {
					return fmt.Errorf("create work dir: %w", err)
				}
				defer func() { _ = os.RemoveAll(workDir) }()
				f := fetcher.New(workDir)
				f.Logger = logger
				local, err := f.FetchManifest(cmd.Context(), cfg.Manifest)
				if err != nil {
					return err
				}
				cfg.Manifest = local
			}

			reporter := logging.NewReporter(logger)
			runner := &pipeline.Runner{
				Installer: &searchbar.Installer{
					Policy: &searchbar.DefaultPolicy{Reporter: reporter},
					Config: searchbar.Config{
						ModuleName:                cfg.ModuleName,
						DelayTemplateSubstitution: cfg.DelayTemplateSubstitution,
					},
				},
				Storage:      storage.NewFSStorage(cfg.OutputDir),
				Reporter:     reporter,
				Logger:       logger,
				Workers:      cfg.Workers,
				Precompress:  cfg.Precompress,
				ForceProcess: force,
			}

			if cfg.Index.Backend != config.BackendNone {
				backend, indexPath := cfg.Index.Backend, cfg.IndexPath()
				runner.OpenIndexer = func() (search.Indexer, error) {
					return search.NewIndexer(backend, indexPath)
				}
				runner.IndexID = string(backend) + ":" + indexPath
			}

			if site := cfg.SiteURL(); site != "" {
				runner.SitemapGenerator = &sitemap.SitemapGenerator{
					Root:    cfg.OutputDir,
					SiteURL: site,
					Logger:  logger,
				}
			}

			status, err := runner.Run(cmd.Context(), cfg.Manifest)
			if err != nil {
				return fmt.Errorf("build %s: %w", cfg.ModuleName, err)
			}
			logger.Info("build finished",
				"module", status.Module,
				"stage", status.Stage,
				"pages", status.ContentPages,
				"records", status.Records,
				"warnings", status.Warnings,
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "Override the input manifest path or http(s) URL")
	cmd.Flags().StringVar(&output, "output", "", "Override the output directory")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when the inputs are unchanged")
	cmd.Flags().BoolVar(&delayed, "delayed", false, "Emit a merge directive instead of the final search script")
	return cmd
}
