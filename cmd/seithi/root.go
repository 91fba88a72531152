package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/seithi/internal/config"
	"github.com/Adda-Baaj/seithi/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     logger.Logger = logger.NopLogger{}
)

var rootCmd = &cobra.Command{
	Use:   "seithi",
	Short: "Tamil and English news aggregation service",
	Long: `seithi serves news feeds merged from a hosted news API and scraped publisher
pages, with a dedicated aggregator for six Tamil publishers.

Example usage:
  seithi serve                       # start the HTTP API
  seithi scrape --source bbc         # scrape one publisher and print the batch
  seithi search "chennai" -l ta      # run a search through the pipeline`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $SEITHI_CONFIG)")
	rootCmd.AddCommand(serveCmd, scrapeCmd, searchCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err = logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
