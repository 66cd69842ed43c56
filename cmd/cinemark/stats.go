package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abdulachik/cinemark/internal/config"
	"github.com/abdulachik/cinemark/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	Long:  `Display statistics about stored analyses in the database.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()

	stats, err := st.Stats(ctx)
	if err != nil {
		return fmt.Errorf("query stats: %w", err)
	}

	fmt.Println("=== Cinemark Statistics ===")
	fmt.Println()
	fmt.Printf("Database: %s\n", cfg.DatabasePath)
	fmt.Println()
	fmt.Println("Analyses:")
	fmt.Printf("  Total: %d\n", stats.TotalAnalyses)
	fmt.Printf("  Total effects applied: %d\n", stats.TotalEffects)
	fmt.Printf("  Average effect density: %.4f\n", stats.AverageDensity)
	fmt.Println()

	if len(stats.ThemeCounts) > 0 {
		themes := make([]string, 0, len(stats.ThemeCounts))
		for theme := range stats.ThemeCounts {
			themes = append(themes, theme)
		}
		sort.Strings(themes)

		fmt.Println("  By theme:")
		for _, theme := range themes {
			fmt.Printf("    %s: %d\n", theme, stats.ThemeCounts[theme])
		}
		fmt.Println()
	}

	return nil
}
