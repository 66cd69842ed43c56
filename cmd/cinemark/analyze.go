package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/config"
	"github.com/abdulachik/cinemark/internal/pipeline"
	"github.com/abdulachik/cinemark/internal/store"
	"github.com/abdulachik/cinemark/internal/theme"
)

var (
	analyzeOutput  string
	analyzeSave    bool
	analyzeSeed    int64
	analyzeVerbose bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <book.json>",
	Short: "Analyze a parsed book and emit cinematic markup",
	Long: `Run the full annotation pipeline over a parsed book JSON file.

Examples:
  cinemark analyze book.json                   # Print markup to stdout
  cinemark analyze book.json -o markup.json    # Write markup to a file
  cinemark analyze book.json --save            # Also persist to the database
  cinemark analyze book.json --seed 42         # Reproducible effect selection`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write markup to file instead of stdout")
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "Persist the analysis to the database")
	analyzeCmd.Flags().Int64Var(&analyzeSeed, "seed", 0, "Seed for effect selection (0 = random)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Report the weighted theme classification alongside the markup")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	parsed, err := book.LoadParsedBook(args[0])
	if err != nil {
		return fmt.Errorf("load book: %w", err)
	}

	slog.Info("analyzing book", "title", parsed.Title, "chapters", len(parsed.Chapters))

	markup, err := newPipeline(cfg, analyzeSeed).Run(parsed)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}

	if analyzeVerbose {
		label, confidence := theme.NewClassifier().Predict(bookText(parsed))
		slog.Info("weighted theme classification",
			"label", label,
			"confidence", fmt.Sprintf("%.3f", confidence),
			"voted", markup.Theme,
		)
	}

	if analyzeSave {
		st, err := store.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer st.Close()

		id, err := st.SaveAnalysis(ctx, markup)
		if err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
		slog.Info("analysis saved", "id", id)
	}

	if analyzeOutput != "" {
		if err := markup.WriteFile(analyzeOutput); err != nil {
			return fmt.Errorf("write markup: %w", err)
		}
		slog.Info("markup written", "path", analyzeOutput)
		return nil
	}

	data, err := markup.MarshalJSONBytes()
	if err != nil {
		return fmt.Errorf("encode markup: %w", err)
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}

// bookText concatenates every segment for theme classification.
func bookText(b *book.ParsedBook) string {
	var sb strings.Builder
	for _, ch := range b.Chapters {
		for _, seg := range ch.Segments {
			sb.WriteString(seg.Text)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// newPipeline builds a pipeline from the tuning, optionally seeded for
// reproducible effect selection.
func newPipeline(cfg *config.Config, seed int64) *pipeline.Pipeline {
	pcfg := pipeline.Config{Tuning: &cfg.Tuning}
	if seed != 0 {
		pcfg.Rand = rand.New(rand.NewSource(seed))
	}
	return pipeline.New(pcfg)
}
