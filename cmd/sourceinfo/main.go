package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sourceinfo",
		Short: "Rate news publishers and find credible opposite-lean sources",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(serveCmd())
	root.AddCommand(lookupCmd())
	root.AddCommand(counterCmd())
	root.AddCommand(scoreCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(analyzeCmd())
	root.AddCommand(feedCmd())
	root.AddCommand(usageCmd())
	root.AddCommand(importCmd())

	return root
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "server port (default: from config)")
	return cmd
}

func lookupCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup <url-or-domain>",
		Short: "Look up a publisher's catalogue entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func counterCmd() *cobra.Command {
	var (
		jsonOutput     bool
		minCredibility float64
		limit          int
		preferredLeans []int
	)

	cmd := &cobra.Command{
		Use:   "counter <url-or-domain>",
		Short: "Find credible opposite-lean sources for a publisher",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounter(args[0], jsonOutput, minCredibility, limit, preferredLeans)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().Float64Var(&minCredibility, "min-credibility", 0, "minimum candidate credibility (default: from config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max candidates (default: from config)")
	cmd.Flags().IntSliceVar(&preferredLeans, "lean", nil, "restrict candidates to these lean values (-2..2)")
	return cmd
}

func scoreCmd() *cobra.Command {
	var (
		jsonOutput bool
		claimType  string
		role       string
	)

	cmd := &cobra.Command{
		Use:   "score <url-or-domain>",
		Short: "Compute a publisher's weighted evidence score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(args[0], claimType, role, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	cmd.Flags().StringVar(&claimType, "claim", "", "claim type (political, economic, foreign_policy, scientific, general)")
	cmd.Flags().StringVar(&role, "role", "", "evidence role (support, refute, neutral)")
	return cmd
}

func statsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalogue distribution statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func analyzeCmd() *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Fetch and grade an article's quality with the configured LLM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], model)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model override (default: from config)")
	return cmd
}

func feedCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "feed <feed-url>",
		Short: "Sample recent articles from a publisher feed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 5, "max articles to list")
	return cmd
}

func usageCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show external API usage and cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "trailing period in days")
	return cmd
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import catalogue entries from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0])
		},
	}
	return cmd
}
