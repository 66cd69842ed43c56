package pipeline

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/character"
	"github.com/abdulachik/cinemark/internal/structure"
)

func testBook() *book.ParsedBook {
	return &book.ParsedBook{
		Title: "The Winter Castle",
		Chapters: []book.Chapter{
			{
				Title: "Chapter 1",
				Segments: []book.Segment{
					{Text: "Anna walked through the ancient castle halls."},
					{Text: `"We cannot stay here," Anna said with fear in her voice.`},
					{Text: "The king's guards searched every room."},
					{Text: "Dmitri waited by the gate, heart pounding."},
				},
			},
			{
				Title: "Chapter 2",
				Segments: []book.Segment{
					{Text: "Suddenly the battle horns sounded across the valley."},
					{Text: "Dmitri drew his sword and ran toward the danger."},
					{Text: "The fight was over before dawn."},
				},
			},
		},
	}
}

type panicStage struct{}

func (panicStage) Analyze(*book.ParsedBook) (map[string]character.Profile, error) {
	panic("character index out of range")
}

type errStage struct{}

func (errStage) Analyze(*book.ParsedBook) (structure.Analysis, error) {
	return structure.Analysis{}, fmt.Errorf("structure: corrupt beat table")
}

func TestRun_NilBook(t *testing.T) {
	p := New(Config{})

	_, err := p.Run(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil book")
}

func TestRun_EmptyBook(t *testing.T) {
	p := New(Config{})

	m, err := p.Run(&book.ParsedBook{Title: "Empty"})
	require.NoError(t, err)
	assert.Equal(t, "Empty", m.BookTitle)
	assert.Equal(t, book.StatusOK, m.Analysis.Status)
	assert.Empty(t, m.Chapters)
	assert.Zero(t, m.EffectCount())
}

func TestRun_AnnotatesEverySegment(t *testing.T) {
	p := New(Config{Rand: rand.New(rand.NewSource(7))})
	b := testBook()

	m, err := p.Run(b)
	require.NoError(t, err)

	require.Len(t, m.Chapters, 2)
	assert.Equal(t, book.StatusOK, m.Analysis.Status)
	assert.Equal(t, "historical", m.Theme)

	for i, ch := range m.Chapters {
		require.Len(t, ch.Segments, len(b.Chapters[i].Segments))
		assert.Equal(t, b.Chapters[i].Title, ch.Title)
		assert.NotEmpty(t, ch.StructuralRole)
		for j, seg := range ch.Segments {
			assert.Equal(t, b.Chapters[i].Segments[j].Text, seg.Text, "segment order must survive")
			assert.GreaterOrEqual(t, seg.EmotionalScore, 0.0)
			assert.LessOrEqual(t, seg.EmotionalScore, 1.0)
			assert.NotEmpty(t, seg.Context.PrimaryEmotion)
			assert.LessOrEqual(t, len(seg.Effects), 3)
		}
	}
}

func TestRun_StageErrorContinues(t *testing.T) {
	p := New(Config{Structure: errStage{}})

	m, err := p.Run(testBook())
	require.NoError(t, err)

	// A failed stage degrades to its neutral output, it does not abort
	// the whole analysis.
	assert.Equal(t, book.StatusOK, m.Analysis.Status)
	assert.Len(t, m.Chapters, 2)
}

func TestRun_PanicYieldsFallback(t *testing.T) {
	p := New(Config{Character: panicStage{}})
	b := testBook()

	m, err := p.Run(b)
	require.NoError(t, err)

	assert.Equal(t, book.StatusFallback, m.Analysis.Status)
	assert.Contains(t, m.Analysis.Error, "analysis pipeline failed")
	require.Len(t, m.Chapters, 2)
	for i, ch := range m.Chapters {
		for j, seg := range ch.Segments {
			assert.Equal(t, b.Chapters[i].Segments[j].Text, seg.Text)
			assert.Empty(t, seg.Effects)
		}
	}
}

func TestRun_Reproducible(t *testing.T) {
	run := func() *book.Markup {
		p := New(Config{Rand: rand.New(rand.NewSource(42))})
		m, err := p.Run(testBook())
		require.NoError(t, err)
		return m
	}

	assert.Equal(t, run(), run())
}

func TestRun_MetadataCounts(t *testing.T) {
	p := New(Config{Rand: rand.New(rand.NewSource(42))})

	m, err := p.Run(testBook())
	require.NoError(t, err)

	assert.Equal(t, m.SegmentsWithEffects(), m.Analysis.TotalEffectsApplied)
	total := 0
	for _, n := range m.Analysis.EffectDistribution {
		total += n
	}
	assert.Equal(t, m.SegmentsWithEffects(), total)
	for name, n := range m.Analysis.CharacterEffectUsage {
		assert.NotEmpty(t, name)
		assert.GreaterOrEqual(t, n, 0)
	}
}

func TestFallbackMarkup(t *testing.T) {
	b := testBook()

	m := FallbackMarkup(b, "analysis pipeline failed: boom")

	assert.Equal(t, b.Title, m.BookTitle)
	assert.Equal(t, "general", m.Theme)
	assert.Equal(t, book.StatusFallback, m.Analysis.Status)
	assert.Equal(t, "analysis pipeline failed: boom", m.Analysis.Error)
	require.Len(t, m.Chapters, len(b.Chapters))
	for i, ch := range m.Chapters {
		assert.Equal(t, b.Chapters[i].Title, ch.Title)
		for _, seg := range ch.Segments {
			assert.Equal(t, book.NeutralContext(), seg.Context)
			assert.NotNil(t, seg.Effects)
			assert.Empty(t, seg.Effects)
		}
	}
}

func TestCharacterRelevance(t *testing.T) {
	profiles := map[string]character.Profile{
		"Anna":   {Name: "Anna"},
		"Dmitri": {Name: "Dmitri"},
	}

	rel := characterRelevance("anna looked across the river", profiles)
	assert.Equal(t, 0.8, rel["Anna"])
	assert.Equal(t, 0.1, rel["Dmitri"])

	assert.Nil(t, characterRelevance("some text", nil))
}

func TestChapterProfile(t *testing.T) {
	segments := []book.AnnotatedSegment{
		{EmotionalScore: 0.2},
		{EmotionalScore: 0.8},
		{EmotionalScore: 0.5},
	}

	profile := chapterProfile(segments)
	assert.InDelta(t, 0.5, profile.AverageIntensity, 1e-9)
	assert.Equal(t, 0.8, profile.PeakEmotion)
	assert.InDelta(t, 0.6, profile.EmotionalRange, 1e-9)
	assert.Greater(t, profile.EmotionalVariance, 0.0)
}

func TestChapterProfile_SingleSegmentHasNoRange(t *testing.T) {
	profile := chapterProfile([]book.AnnotatedSegment{{EmotionalScore: 0.4}})
	assert.Equal(t, 0.4, profile.AverageIntensity)
	assert.Zero(t, profile.EmotionalRange)
}

func TestChapterProfile_Empty(t *testing.T) {
	assert.Zero(t, chapterProfile(nil))
}
