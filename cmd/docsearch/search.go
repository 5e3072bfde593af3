package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/canonical/docsearch/internal/search"
)

func newSearchCmd() *cobra.Command {
	var (
		module string
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Query the server-side search index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			searcher, err := search.NewSearcher(cfg.Index.Backend, cfg.IndexPath())
			if err != nil {
				return err
			}
			defer func() { _ = searcher.Close() }()

			resp, err := searcher.Search(cmd.Context(), strings.Join(args, " "), module, limit, 0)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			if len(resp.Results) == 0 {
				fmt.Println("no results")
				return nil
			}
			for _, r := range resp.Results {
				fmt.Printf("%s\t%s\t%s\n", r.Name, r.Description, r.Location)
			}
			fmt.Printf("%d of %d results\n", len(resp.Results), resp.Total)
			return nil
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "Restrict results to one module")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of results")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")
	return cmd
}
