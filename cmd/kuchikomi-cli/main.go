package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuchikomi-lab/kuchikomi/config"
	"github.com/kuchikomi-lab/kuchikomi/export"
	"github.com/kuchikomi-lab/kuchikomi/models"
	"github.com/kuchikomi-lab/kuchikomi/scraper"
	"github.com/kuchikomi-lab/kuchikomi/store"
)

var rootCmd = &cobra.Command{
	Use:   "kuchikomi-cli",
	Short: "Google Maps review scraper",
	Long:  `Scrapes Google Maps reviews for a place URL or a search query and writes them to CSV.`,
}

var (
	flagURL     string
	flagQuery   string
	flagCount   int
	flagOut     string
	flagVisible bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape reviews for one place",
	Long:  `Runs a single scrape synchronously. Provide either --url or --query; progress goes to stderr and the CSV to --out (or stdout).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScrape()
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&flagURL, "url", "", "Google Maps place URL")
	scrapeCmd.Flags().StringVar(&flagQuery, "query", "", "Search query (place name, address)")
	scrapeCmd.Flags().IntVar(&flagCount, "count", models.DefaultReviewCount, "Number of reviews to fetch")
	scrapeCmd.Flags().StringVar(&flagOut, "out", "", "Output CSV path (default: stdout)")
	scrapeCmd.Flags().BoolVar(&flagVisible, "visible", false, "Run the browser with a visible window")
	rootCmd.AddCommand(scrapeCmd)
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScrape() error {
	if (flagURL == "") == (flagQuery == "") {
		return fmt.Errorf("provide exactly one of --url or --query")
	}
	if flagCount < 1 || flagCount > models.MaxReviewCount {
		return fmt.Errorf("count must be between 1 and %d", models.MaxReviewCount)
	}

	cfg := config.Load()
	if flagVisible {
		cfg.Browser.Headless = false
	}

	catalog, err := scraper.LoadCatalog(cfg.Scraper.SelectorsPath)
	if err != nil {
		return fmt.Errorf("selector catalog: %w", err)
	}

	sc := scraper.New(cfg.Browser, cfg.Scraper, catalog)
	progress := func(message string, percent int) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, message)
	}

	var result *models.ScrapeResult
	if flagURL != "" {
		result, err = sc.Run(context.Background(), flagURL, flagCount, progress)
	} else {
		result, err = sc.RunSearch(context.Background(), flagQuery, flagCount, progress)
	}
	if err != nil {
		return err
	}

	if cfg.Store.DBPath != "" {
		st, err := store.Open(cfg.Store.DBPath)
		if err != nil {
			slog.Warn("review store unavailable", "error", err)
		} else {
			defer st.Close()
			if _, err := st.SaveResult(context.Background(), result); err != nil {
				slog.Warn("review store save failed", "error", err)
			}
		}
	}

	out := os.Stdout
	if flagOut != "" {
		f, err := os.Create(flagOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, result.Reviews, result.Place.Name); err != nil {
		return fmt.Errorf("write CSV: %w", err)
	}

	fmt.Fprintf(os.Stderr, "%d reviews for %s\n", len(result.Reviews), result.Place.Name)
	return nil
}
