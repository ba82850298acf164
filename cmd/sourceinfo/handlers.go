package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sourceinfo/sourceinfo/internal/config"
	"github.com/sourceinfo/sourceinfo/internal/logger"
	"github.com/sourceinfo/sourceinfo/internal/store"
	"github.com/sourceinfo/sourceinfo/pkg/analyze"
	"github.com/sourceinfo/sourceinfo/pkg/evidence"
	"github.com/sourceinfo/sourceinfo/pkg/server"
	"github.com/sourceinfo/sourceinfo/pkg/source"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return db, nil
}

func buildEngine(cfg *config.Config, db store.Store) *evidence.Engine {
	return evidence.NewEngine(db, cfg.Matching.MinCredibility, cfg.Matching.Limit)
}

func buildAnalyzer(cfg *config.Config, db store.Store) (*analyze.Fetcher, *analyze.Analyzer) {
	fetcher := analyze.NewFetcher(cfg.Analysis.ReaderURL, cfg.Analysis.UserAgent, cfg.Analysis.ParseCacheTTL())
	if !cfg.Analysis.Enabled || cfg.Analysis.APIKey == "" {
		return fetcher, nil
	}
	analyzer := analyze.NewAnalyzer(
		cfg.Analysis.APIKey,
		cfg.Analysis.BaseURL,
		cfg.Analysis.Model,
		cfg.Analysis.MaxChars,
		cfg.Analysis.RatePerMin,
		db,
	)
	return fetcher, analyzer
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	log := logger.New("api")
	engine := buildEngine(cfg, db)
	fetcher, analyzer := buildAnalyzer(cfg, db)
	if analyzer == nil {
		fmt.Fprintln(os.Stderr, "analysis disabled (set OPENROUTER_API_KEY to enable)")
	}

	srv := server.New(db, engine, fetcher, analyzer, log, port)
	return srv.ListenAndServe()
}

func runLookup(input string, jsonOutput bool) error {
	domain, err := source.Normalize(input)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	src, err := db.GetByDomain(context.Background(), domain)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(src)
	}

	fmt.Printf("%s (%s)\n", src.Name, src.Domain)
	if cred, ok := src.Credibility(); ok {
		fmt.Printf("  credibility: %.0f/100 (%s)\n", cred, source.CredibilityTier(src.NewsguardScore))
	} else {
		fmt.Println("  credibility: unrated")
	}
	if lean, ok := src.Lean(); ok {
		fmt.Printf("  lean: %s (%+d)\n", source.LeanLabel(lean), lean)
	} else {
		fmt.Println("  lean: unknown")
	}
	fmt.Printf("  type: %s\n", src.SourceType)
	if src.Description != "" {
		fmt.Printf("  %s\n", src.Description)
	}
	return nil
}

func runCounter(input string, jsonOutput bool, minCredibility float64, limit int, preferredLeans []int) error {
	domain, err := source.Normalize(input)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := buildEngine(cfg, db)
	result, err := engine.Counternarratives(context.Background(), domain, evidence.Constraints{
		MinCredibility: minCredibility,
		Limit:          limit,
		PreferredLeans: preferredLeans,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}

	subjLean, _ := result.Source.Lean()
	fmt.Printf("%s is %s; %d counternarrative sources (%d before limit)\n",
		result.Source.Domain, source.LeanLabel(subjLean), len(result.Candidates), result.Total)
	if result.NonStrict {
		fmt.Println("note: source lean is Center or unknown, strict opposite-lean matching does not apply")
	}
	if len(result.Candidates) == 0 {
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tCRED\tLEAN\tDOMAIN\tNAME")
	for _, cand := range result.Candidates {
		cred, _ := cand.Source.Credibility()
		lean, _ := cand.Source.Lean()
		fmt.Fprintf(w, "%.1f\t%.0f\t%s\t%s\t%s\n",
			cand.WeightedScore, cred, source.LeanLabel(lean), cand.Source.Domain, cand.Source.Name)
	}
	return w.Flush()
}

func runScore(input, claimType, role string, jsonOutput bool) error {
	domain, err := source.Normalize(input)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := buildEngine(cfg, db)
	src, result, err := engine.Score(context.Background(), domain, evidence.Context{
		ClaimType:    evidence.ClaimType(claimType),
		EvidenceRole: evidence.Role(role),
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(map[string]any{"source": src, "score": result})
	}

	fmt.Printf("%s: %.1f/100 (%s)\n", src.Domain, result.WeightedScore, result.Recommendation)
	fmt.Printf("  %s\n", result.Breakdown.Explanation)
	return nil
}

func runStats(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := buildEngine(cfg, db)
	stats, err := engine.Stats(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(stats)
	}

	fmt.Printf("sources: %d (%d with credibility, %d with lean)\n",
		stats.TotalSources, stats.WithCredibility, stats.WithLean)
	fmt.Printf("tiers: high %d, medium %d, low %d\n",
		stats.CredibilityTiers.High, stats.CredibilityTiers.Medium, stats.CredibilityTiers.Low)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LEAN\tCOUNT")
	for _, lean := range []int{source.LeanLeft, source.LeanLeanLeft, source.LeanCenter, source.LeanLeanRight, source.LeanRight} {
		label := source.LeanLabel(lean)
		fmt.Fprintf(w, "%s\t%d\n", label, stats.LeanDistribution[label])
	}
	fmt.Fprintln(w, "\nTYPE\tCOUNT")
	for t, n := range stats.TypeDistribution {
		fmt.Fprintf(w, "%s\t%d\n", t, n)
	}
	return w.Flush()
}

func runAnalyze(articleURL, model string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	fetcher, analyzer := buildAnalyzer(cfg, db)
	if analyzer == nil {
		return fmt.Errorf("analysis disabled: set OPENROUTER_API_KEY")
	}

	ctx := context.Background()
	fmt.Fprintf(os.Stderr, "fetching %s...\n", articleURL)
	art, err := fetcher.Fetch(ctx, articleURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "fetched %d words via %s, analyzing...\n", art.WordCount, art.Method)

	result, err := analyzer.Analyze(ctx, articleURL, art.Content, model)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runFeed(feedURL string, limit int) error {
	articles, err := analyze.SampleFeed(context.Background(), nil, feedURL, limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PUBLISHED\tTITLE\tURL")
	for _, a := range articles {
		published := ""
		if !a.Published.IsZero() {
			published = a.Published.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", published, a.Title, a.URL)
	}
	return w.Flush()
}

func runUsage(days int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.UsageStats(context.Background(), days)
	if err != nil {
		return err
	}

	fmt.Printf("last %d days: %d calls, %d failures, $%.4f\n",
		stats.PeriodDays, stats.Totals.Calls, stats.Totals.Failures, stats.Totals.CostUSD)

	if len(stats.ByModel) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MODEL\tCALLS\tIN\tOUT\tCOST")
		for _, m := range stats.ByModel {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t$%.4f\n",
				m.Model, m.Calls, m.InputTokens, m.OutputTokens, m.CostUSD)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func runImport(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var raw []source.Source
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	imported := 0
	for i := range raw {
		domain, err := source.Normalize(raw[i].Domain)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping entry %d: %v\n", i, err)
			continue
		}
		raw[i].Domain = domain
		raw[i].SourceType = source.ParseType(string(raw[i].SourceType))
		if raw[i].PoliticalLean != nil {
			raw[i].PoliticalLeanLabel = source.LeanLabel(*raw[i].PoliticalLean)
		}
		if err := db.UpsertSource(ctx, &raw[i]); err != nil {
			return err
		}
		imported++
	}

	fmt.Fprintf(os.Stderr, "imported %d of %d entries\n", imported, len(raw))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
