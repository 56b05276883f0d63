package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dtarnawsky/dust/internal/config"
	"github.com/dtarnawsky/dust/internal/dataset"
	"github.com/dtarnawsky/dust/internal/images"
	"github.com/dtarnawsky/dust/internal/ingest"
	"github.com/dtarnawsky/dust/internal/normalize"
	"github.com/dtarnawsky/dust/internal/platform/logger"
)

var rootCmd = &cobra.Command{
	Use:   "normalizer",
	Short: "Download, repair and publish the event dataset",
}

func main() {
	log := logger.New("normalizer")

	runCmd := &cobra.Command{
		Use:   "run YEAR [YEAR...]",
		Short: "Run the full ETL pass for one or more years",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			if err := cfg.RequireKey(); err != nil {
				// Fatal before any network call.
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := ingest.New(cfg.APIBaseURL, cfg.Key, log)
			writer := dataset.NewWriter(cfg.DataRoot, cfg.MirrorRoot, log)
			cache := images.New(cfg.ImageQuality, log)
			n := normalize.New(client, writer, cache, cfg.DatasetName, cfg.ConvertYears, log)

			log.Info().Strs("years", args).Msg("normalizer starting")
			return n.Run(ctx, args)
		},
	}
	rootCmd.AddCommand(runCmd)

	revisionCmd := &cobra.Command{
		Use:   "revision FOLDER",
		Short: "Print the current revision of a dataset folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.DataRoot, args[0], "revision.json")
			fmt.Fprintln(os.Stdout, dataset.ReadRevision(path))
			return nil
		},
	}
	rootCmd.AddCommand(revisionCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("normalizer failed")
		os.Exit(1)
	}
}
