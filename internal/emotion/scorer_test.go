package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/character"
	"github.com/abdulachik/cinemark/internal/structure"
)

func TestNew_Defaults(t *testing.T) {
	s := New(Config{})

	assert.Equal(t, 1.5, s.beatMultiplier)
	assert.Equal(t, 1.3, s.tensionMult)
	assert.Equal(t, DefaultWeights(), s.weights)
}

func TestScore_EmptyText(t *testing.T) {
	s := New(Config{})

	assert.Equal(t, 0.0, s.Score(book.Segment{Text: ""}, 0, 0, nil, nil))
	assert.Equal(t, 0.0, s.Score(book.Segment{Text: "   "}, 0, 0, nil, nil))
}

func TestScore_Clamped(t *testing.T) {
	s := New(Config{})
	seg := book.Segment{Text: `"Rage! Fury! Terror!" she screamed, full of hatred and panic.`}

	score := s.Score(seg, 0, 0, nil, nil)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScore_BeatAndTensionMultipliers(t *testing.T) {
	s := New(Config{})
	seg := book.Segment{Text: `"I hate this fight," she cried in rage.`}

	analysis := &structure.Analysis{
		StoryBeats:    []structure.StoryBeat{{Chapter: 0, Position: 0, Type: structure.BeatTurningPoint}},
		TensionPoints: []structure.TensionPoint{{Chapter: 0, Position: 0}},
	}

	plain := s.Score(seg, 1, 1, analysis, nil)
	amplified := s.Score(seg, 0, 0, analysis, nil)

	assert.InDelta(t, plain*1.5*1.3, amplified, 1e-9)
}

func TestDialogueIntensity(t *testing.T) {
	s := New(Config{})

	t.Run("non-dialogue floor", func(t *testing.T) {
		assert.Equal(t, NonDialogueFloor, s.DialogueIntensity("The road was long and empty."))
	})

	t.Run("dialogue with intensity words", func(t *testing.T) {
		// 1 high hit (rage) + 1 indicator hit (shouted) over 6 words.
		got := s.DialogueIntensity(`"Such rage," he shouted at them.`)
		assert.InDelta(t, (0.3+0.15)/6, got, 1e-9)
	})
}

func TestCharacterVulnerability(t *testing.T) {
	s := New(Config{})

	profiles := map[string]character.Profile{
		"Anna": {Name: "Anna", Signature: character.EmotionalSignature{PrimaryEmotion: "fear"}},
		"Ivan": {Name: "Ivan", Signature: character.EmotionalSignature{PrimaryEmotion: "anger"}},
	}

	t.Run("no profiles scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, s.characterVulnerability("she confessed everything", nil))
	})

	t.Run("vulnerable character bonus", func(t *testing.T) {
		withAnna := s.characterVulnerability("Anna stood in the doorway", profiles)
		withIvan := s.characterVulnerability("Ivan stood in the doorway", profiles)

		assert.InDelta(t, 0.3, withAnna, 1e-9)
		assert.Equal(t, 0.0, withIvan)
	})

	t.Run("clamped", func(t *testing.T) {
		text := "Anna confessed and admitted she trusted and hoped and feared and worried and doubted Anna"
		got := s.characterVulnerability(text, profiles)
		assert.LessOrEqual(t, got, 1.0)
	})
}

func TestContext_Neutral(t *testing.T) {
	s := New(Config{})

	ctx := s.Context(book.Segment{Text: ""})
	assert.Equal(t, book.NeutralContext(), ctx)

	ctx = s.Context(book.Segment{Text: "The table stood in the corner."})
	assert.Equal(t, "neutral", ctx.PrimaryEmotion)
	assert.Equal(t, "neutral", ctx.IntensityLevel)
	assert.Equal(t, "narrative", ctx.ContextType)
	assert.Equal(t, "description", ctx.NarrativeFunction)
}

func TestContext_Classification(t *testing.T) {
	s := New(Config{})

	ctx := s.Context(book.Segment{Text: "She was happy, full of joy, though a little sad."})

	assert.Equal(t, "joy", ctx.PrimaryEmotion)
	assert.Equal(t, "sadness", ctx.SecondaryEmotion)
	assert.Equal(t, "high", ctx.IntensityLevel) // "joy" is a high-intensity keyword
	assert.NotEmpty(t, ctx.Keywords)
}

func TestRankEmotions_TieOrder(t *testing.T) {
	s := New(Config{})

	// One hit each; joy precedes sadness in the taxonomy.
	primary, secondary := s.rankEmotions("a happy face and a single tears drop")
	assert.Equal(t, "joy", primary)
	assert.Equal(t, "sadness", secondary)
}

func TestIntensityLevel(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "high", text: "pure terror gripped him", expected: "high"},
		{name: "medium", text: "he was worried about her", expected: "medium"},
		{name: "low", text: "she spoke softly", expected: "low"},
		{name: "neutral", text: "the door opened", expected: "neutral"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.intensityLevel(tt.text))
		})
	}
}

func TestNarrativeFunction(t *testing.T) {
	s := New(Config{})

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{name: "dialogue wins", text: `"go," he said and ran`, expected: "dialogue"},
		{name: "action", text: "he ran and jumped the wall", expected: "action"},
		{name: "reflection", text: "she thought about the past", expected: "reflection"},
		{name: "sensory", text: "he heard the bells", expected: "sensory"},
		{name: "description", text: "the house was white", expected: "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.narrativeFunction(tt.text))
		})
	}
}

func TestContextType_FirstFamilyWins(t *testing.T) {
	s := New(Config{})

	// "suddenly" (climactic) and "said" (dialogue) both present.
	assert.Equal(t, "climactic", s.contextType(`suddenly he said nothing`))
	assert.Equal(t, "narrative", s.contextType("the walls were grey"))
}
