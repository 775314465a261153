package main

import (
	"encoding/json"
	"fmt"

	"github.com/Abdurahmanit/reusehub/internal/config"
	"github.com/Abdurahmanit/reusehub/internal/disposal"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/listing/stats"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reusectl",
		Short:         "Operator tooling for the ReuseHub server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newKBCmd(), newWeightsCmd())
	return root
}

func newKBCmd() *cobra.Command {
	kb := &cobra.Command{
		Use:   "kb",
		Short: "Inspect disposal knowledge bases",
	}

	validate := &cobra.Command{
		Use:   "validate [file]",
		Short: "Parse a knowledge base file, or the embedded one when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			kb, err := loadKnowledgeBase(path)
			if err != nil {
				return err
			}
			covered := 0
			for _, c := range domain.Categories {
				if _, exact := kb.Lookup(c); exact {
					covered++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "knowledge base %s OK: %d/%d categories with dedicated guidance\n",
				kb.Version, covered, len(domain.Categories))
			return nil
		},
	}

	var file, item string
	show := &cobra.Command{
		Use:   "show <category>",
		Short: "Print the guidance a category resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, err := loadKnowledgeBase(file)
			if err != nil {
				return err
			}
			g, err := disposal.NewResolver(kb, logger.NewNop()).Resolve(item, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		},
	}
	show.Flags().StringVarP(&file, "file", "f", "", "knowledge base file (default: embedded)")
	show.Flags().StringVar(&item, "item", "", "item name to echo in the guidance")

	kb.AddCommand(validate, show)
	return kb
}

func newWeightsCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Print the effective per-category weight table in kilograms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			table, err := stats.ParseWeights(cfg.Stats.CategoryWeightsKg)
			if err != nil {
				return err
			}
			for _, c := range domain.Categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %6.2f\n", c, table[c])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the server config file")
	return cmd
}

func loadKnowledgeBase(path string) (*disposal.KnowledgeBase, error) {
	if path == "" {
		return disposal.DefaultKnowledgeBase(), nil
	}
	return disposal.LoadKnowledgeBase(path)
}
