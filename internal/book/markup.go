package book

// AnnotatedSegment is a segment carrying the annotations accumulated by
// the pipeline stages. Effects holds at most three entries after
// selection and is only ever reduced downstream.
type AnnotatedSegment struct {
	Segment
	EmotionalScore     float64            `json:"emotional_score"`
	Context            EmotionalContext   `json:"emotional_context"`
	CharacterRelevance map[string]float64 `json:"character_relevance,omitempty"`
	Effects            []Effect           `json:"effects"`
	// QualityScore is attached by the quality controller.
	QualityScore float64 `json:"quality_score,omitempty"`
}

// ChapterEmotionalProfile summarizes per-segment scores for a chapter.
type ChapterEmotionalProfile struct {
	AverageIntensity  float64 `json:"average_intensity"`
	EmotionalRange    float64 `json:"emotional_range"`
	PeakEmotion       float64 `json:"peak_emotion"`
	EmotionalVariance float64 `json:"emotional_variance"`
}

// AnnotatedChapter mirrors the input chapter with annotated segments.
type AnnotatedChapter struct {
	Title          string                  `json:"chapterTitle"`
	StructuralRole string                  `json:"structural_role,omitempty"`
	Segments       []AnnotatedSegment      `json:"content"`
	Profile        ChapterEmotionalProfile `json:"chapter_emotional_profile"`
}

// Markup status values.
const (
	StatusOK       = "ok"
	StatusFallback = "fallback"
)

// AnalysisMetadata records pipeline-level outcomes.
type AnalysisMetadata struct {
	Status               string         `json:"status"`
	Error                string         `json:"error,omitempty"`
	TotalEffectsApplied  int            `json:"total_effects_applied"`
	EffectDistribution   map[string]int `json:"effect_distribution,omitempty"`
	CharacterEffectUsage map[string]int `json:"character_effect_usage,omitempty"`
}

// QualityMetadata is attached by the quality controller.
type QualityMetadata struct {
	OriginalEffectCount  int     `json:"original_effect_count"`
	ValidatedEffectCount int     `json:"validated_effect_count"`
	EffectsRemoved       int     `json:"effects_removed"`
	AverageQualityScore  float64 `json:"average_quality_score"`
}

// SparsityCompliance reports which sparsity rules the final markup meets.
type SparsityCompliance struct {
	GlobalDensity bool `json:"global_density_rule"`
	ChapterLimit  bool `json:"chapter_limit_rule"`
	Spacing       bool `json:"spacing_rule"`
}

// SparsityMetadata is attached by the sparsity controller.
type SparsityMetadata struct {
	EffectsRemoved         int                `json:"effects_removed"`
	FinalEffectDensity     float64            `json:"final_effect_density"`
	SpacingViolationsFixed int                `json:"spacing_violations_fixed"`
	Compliance             SparsityCompliance `json:"sparsity_compliance"`
}

/// Markup is the pipeline output: the same text, annotated.
type Markup struct {
	BookTitle string             `json:"bookTitle"`
	Theme     string             `json:"theme"`
	Chapters  []AnnotatedChapter `json:"chapters"`
	Analysis  AnalysisMetadata   `json:"analysis_metadata"`
	Quality   *QualityMetadata   `json:"quality_metadata,omitempty"`
	Sparsity  *SparsityMetadata  `json:"sparsity_metadata,omitempty"`
}

// TotalSegments counts segments across all chapters.
func (m *Markup) TotalSegments() int {
	total := 0
	for _, ch := range m.Chapters {
		total += len(ch.Segments)
	}
	return total
}

// EffectCount counts individual effects across all segments.
func (m *Markup) EffectCount() int {
	total := 0
	for _, ch := range m.Chapters {
		for _, seg := range ch.Segments {
			total += len(seg.Effects)
		}
	}
	return total
}

// SegmentsWithEffects counts segments carrying at least one effect.
func (m *Markup) SegmentsWithEffects() int {
	total := 0
	for _, ch := range m.Chapters {
		for _, seg := range ch.Segments {
			if len(seg.Effects) > 0 {
				total++
			}
		}
	}
	return total
}

// EffectDensity is the fraction of segments carrying effects.
func (m *Markup) EffectDensity() float64 {
	total := m.TotalSegments()
	if total == 0 {
		return 0
	}
	return float64(m.SegmentsWithEffects()) / float64(total)
}
