package main

import (
	"github.com/spf13/cobra"

	"github.com/canonical/docsearch/internal/search"
	"github.com/canonical/docsearch/internal/web"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a built site and its search API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			var searcher search.Searcher
			s, err := search.NewSearcher(cfg.Index.Backend, cfg.IndexPath())
			if err != nil {
				logger.Warn("search index unavailable", "error", err)
			} else {
				searcher = s
				defer func() { _ = s.Close() }()
			}

			server := web.NewServer(cfg, logger, searcher)
			return server.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP bind address")
	return cmd
}
