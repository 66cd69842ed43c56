package book

// ParsedBook is the pipeline input: a book already split into chapters
// and ordered text segments by an external parser. It is never mutated;
// every stage returns new annotated values.
type ParsedBook struct {
	Title    string    `json:"title"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter is an ordered run of segments. Position is reading order and is
// preserved end-to-end.
type Chapter struct {
	Title    string    `json:"title"`
	Segments []Segment `json:"content"`
}

// Segment is a single unit of text with an optional declared type
// (paragraph, dialogue, ...).
type Segment struct {
	Type string `json:"type,omitempty"`
	Text string `json:"text"`
}

// TotalSegments counts segments across all chapters.
func (b *ParsedBook) TotalSegments() int {
	total := 0
	for _, ch := range b.Chapters {
		total += len(ch.Segments)
	}
	return total
}

// EffectKind identifies the presentation channel of an effect.
type EffectKind string

const (
	KindTextStyle  EffectKind = "text_style"
	KindWordEffect EffectKind = "word_effect"
	KindSound      EffectKind = "sound"
)

// Valid reports whether the kind is one of the three known channels.
func (k EffectKind) Valid() bool {
	switch k {
	case KindTextStyle, KindWordEffect, KindSound:
		return true
	}
	return false
}

// Effect is a presentation hint attached to a segment.
type Effect struct {
	Kind      EffectKind `json:"type"`
	Name      string     `json:"name"`
	Intensity float64    `json:"intensity"`
	// Character is set when the effect is tied to a specific character.
	Character string `json:"character,omitempty"`
	// Word is the target word for word effects.
	Word string `json:"word,omitempty"`
	// Volume applies to sound effects only.
	Volume float64 `json:"volume,omitempty"`
}

// EmotionalContext is the per-segment emotion classification produced by
// the emotion scorer.
type EmotionalContext struct {
	PrimaryEmotion      string   `json:"primary_emotion"`
	SecondaryEmotion    string   `json:"secondary_emotion,omitempty"`
	EmotionalComplexity float64  `json:"emotional_complexity"`
	IntensityLevel      string   `json:"intensity_level"`
	ContextType         string   `json:"context_type"`
	Keywords            []string `json:"emotional_keywords,omitempty"`
	NarrativeFunction   string   `json:"narrative_function"`
}

// NeutralContext is the documented default when scoring fails or text is
// empty.
func NeutralContext() EmotionalContext {
	return EmotionalContext{
		PrimaryEmotion:    "neutral",
		IntensityLevel:    "low",
		ContextType:       "narrative",
		NarrativeFunction: "description",
	}
}
