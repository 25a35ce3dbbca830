package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookrec/bookrec/pkg/config"
	"github.com/bookrec/bookrec/pkg/logging"
	"github.com/bookrec/bookrec/pkg/store"
)

func newSeedCmd() *cobra.Command {
	var (
		configPath string
		csvPath    string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the book catalog from a CSV export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logging.Setup(logging.Config{
				Level:  logging.LogLevel(cfg.Log.Level),
				Pretty: cfg.Log.Pretty,
			})

			s, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := store.ImportCSV(cmd.Context(), s, csvPath)
			if err != nil {
				return err
			}

			fmt.Printf("Imported %d books into %s\n", n, cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	cmd.Flags().StringVar(&csvPath, "csv", "books.csv", "path to the catalog CSV")

	return cmd
}
