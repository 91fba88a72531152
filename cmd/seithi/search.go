package main

import (
	"strings"

	"github.com/spf13/cobra"
)

var searchLanguage string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search news through the pipeline and print the batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parts, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}
		batch, err := parts.news.Search(cmd.Context(), strings.Join(args, " "), searchLanguage)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), batch)
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchLanguage, "language", "l", "en", "search language (en, ta, ...)")
}
