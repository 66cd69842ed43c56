package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/cinemark/internal/book"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "cinemark.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testMarkup(title, theme string) *book.Markup {
	return &book.Markup{
		BookTitle: title,
		Theme:     theme,
		Chapters: []book.AnnotatedChapter{{
			Title: "Chapter 1",
			Segments: []book.AnnotatedSegment{
				{
					Segment:        book.Segment{Text: "The battle began."},
					EmotionalScore: 0.8,
					Effects:        []book.Effect{{Kind: book.KindSound, Name: "swords_clash", Intensity: 0.7}},
				},
				{Segment: book.Segment{Text: "Then it was quiet."}},
			},
		}},
		Analysis: book.AnalysisMetadata{Status: book.StatusOK},
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.SaveAnalysis(ctx, testMarkup("War and Peace", "historical"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.GetAnalysis(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, id, got.ID)
	assert.Equal(t, "War and Peace", got.BookTitle)
	assert.Equal(t, "historical", got.Theme)
	assert.Equal(t, book.StatusOK, got.Status)
	assert.Equal(t, 1, got.EffectCount)
	assert.Equal(t, 2, got.SegmentCount)
	assert.False(t, got.CreatedAt.IsZero())

	require.NotNil(t, got.Markup)
	require.Len(t, got.Markup.Chapters, 1)
	assert.Equal(t, "The battle began.", got.Markup.Chapters[0].Segments[0].Text)
	assert.Equal(t, "swords_clash", got.Markup.Chapters[0].Segments[0].Effects[0].Name)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetAnalysis(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestAnalysis(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	_, err := s.SaveAnalysis(ctx, testMarkup("Anna Karenina", "romance"))
	require.NoError(t, err)
	second, err := s.SaveAnalysis(ctx, testMarkup("Anna Karenina", "historical"))
	require.NoError(t, err)
	_, err = s.SaveAnalysis(ctx, testMarkup("Other Book", "scifi"))
	require.NoError(t, err)

	got, err := s.LatestAnalysis(ctx, "Anna Karenina")
	require.NoError(t, err)
	assert.Equal(t, second, got.ID)
	assert.Equal(t, "historical", got.Theme)
}

func TestLatestAnalysis_UnknownBook(t *testing.T) {
	s := testStore(t)

	_, err := s.LatestAnalysis(context.Background(), "Nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Zero(t, stats.TotalAnalyses)
		assert.Zero(t, stats.TotalEffects)
		assert.Zero(t, stats.AverageDensity)
		assert.Empty(t, stats.ThemeCounts)
	})

	t.Run("aggregates across analyses", func(t *testing.T) {
		for _, m := range []*book.Markup{
			testMarkup("Book A", "historical"),
			testMarkup("Book B", "historical"),
			testMarkup("Book C", "romance"),
		} {
			_, err := s.SaveAnalysis(ctx, m)
			require.NoError(t, err)
		}

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalAnalyses)
		assert.Equal(t, 3, stats.TotalEffects)
		assert.InDelta(t, 0.5, stats.AverageDensity, 1e-9)
		assert.Equal(t, map[string]int{"historical": 2, "romance": 1}, stats.ThemeCounts)
	})
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "cinemark.db")

	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SaveAnalysis(context.Background(), testMarkup("Book", "general"))
	assert.NoError(t, err)
}
