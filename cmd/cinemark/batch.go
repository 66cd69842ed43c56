package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/config"
	"github.com/abdulachik/cinemark/internal/store"
)

var (
	batchOutputDir string
	batchSave      bool
	batchSeed      int64
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every parsed book JSON file in a directory",
	Long: `Run the annotation pipeline over all *.json files in a directory,
writing <name>.markup.json for each.

Examples:
  cinemark batch books/                     # Markup written next to inputs
  cinemark batch books/ -o out/ --save      # Separate output dir, persist all`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOutputDir, "output-dir", "o", "", "Directory for markup files (default: next to inputs)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "Persist each analysis to the database")
	batchCmd.Flags().Int64Var(&batchSeed, "seed", 0, "Seed for effect selection (0 = random)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(args[0], "*.json"))
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .json files in %s", args[0])
	}

	if batchOutputDir != "" {
		if err := os.MkdirAll(batchOutputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var st *store.Store
	var storeMu sync.Mutex
	if batchSave {
		st, err = store.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer st.Close()
	}

	slog.Info("starting batch analysis", "files", len(files), "workers", cfg.BatchWorkers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.BatchWorkers)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			parsed, err := book.LoadParsedBook(file)
			if err != nil {
				return fmt.Errorf("load %s: %w", file, err)
			}

			// Offset per file so seeded runs stay reproducible but
			// don't replay the same draw sequence for every book.
			seed := batchSeed
			if seed != 0 {
				seed += int64(i)
			}
			markup, err := newPipeline(cfg, seed).Run(parsed)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", file, err)
			}

			out := markupPath(file, batchOutputDir)
			if err := markup.WriteFile(out); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			if st != nil {
				storeMu.Lock()
				_, err := st.SaveAnalysis(gctx, markup)
				storeMu.Unlock()
				if err != nil {
					return fmt.Errorf("save %s: %w", file, err)
				}
			}

			slog.Info("book analyzed", "file", file, "effects", markup.EffectCount())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("batch analysis completed", "files", len(files))
	return nil
}

// markupPath derives the output path for an input book file.
func markupPath(file, outputDir string) string {
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file)) + ".markup.json"
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(file), base)
}
