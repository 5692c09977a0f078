package main

import (
	"os"

	"github.com/spf13/cobra"

	"shade-resolver/internal/fileio"
	"shade-resolver/internal/resolve/service"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Index the catalogue and print brand/entry/shade counts and collisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := service.LoadEngine(cfg.CataloguePath, cfg.Options(), logger)
			if err != nil {
				return err
			}
			idx := eng.Index()
			return fileio.WriteJSON(os.Stdout, map[string]any{
				"path":       cfg.CataloguePath,
				"stats":      idx.Stats(),
				"brands":     idx.Brands(),
				"collisions": idx.Collisions(),
			})
		},
	}
}
