// Package quality validates and prunes selected effects for contextual
// and character consistency. It only ever removes effects, never adds
// them, and is idempotent on its own output.
package quality

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/abdulachik/cinemark/internal/book"
)

// ContextViolation forbids certain effects when a context keyword is
// present in the segment text.
type ContextViolation struct {
	Context   string
	Forbidden []string
}

// Rules holds quality thresholds and blacklists.
type Rules struct {
	MinEmotionalScore             float64
	MaxEffectsPerSegment          int
	CharacterConsistencyThreshold float64

	// InappropriatePairs invalidates the first effect when the second
	// is present on the same segment.
	InappropriatePairs [][2]string
	ContextViolations  []ContextViolation
}

// DefaultRules returns the built-in quality rules.
func DefaultRules() Rules {
	return Rules{
		MinEmotionalScore:             0.5,
		MaxEffectsPerSegment:          3,
		CharacterConsistencyThreshold: 0.7,
		InappropriatePairs: [][2]string{
			{"fiery_sharp", "calm_gentle"},
			{"swords_clash", "gentle_wind"},
			{"burn", "glow"},
			{"passionate_flame", "mysterious_shadow"},
		},
		ContextViolations: []ContextViolation{
			{"romance", []string{"swords_clash", "burn", "fiery_sharp"}},
			{"peace", []string{"swords_clash", "burn", "heartbeat"}},
			{"reflection", []string{"swords_clash", "burn", "passionate_flame"}},
			{"dialogue", []string{"swords_clash"}},
		},
	}
}

// Config holds controller configuration.
type Config struct {
	Rules *Rules
}

// Controller validates effects against the quality rules.
type Controller struct {
	rules Rules
}

// New creates a quality controller.
func New(cfg Config) *Controller {
	rules := DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	return &Controller{rules: rules}
}

// Validate returns a new markup with quality-filtered effects and
// attached quality metadata. Effect counts are monotonically
// non-increasing.
func (c *Controller) Validate(m *book.Markup) (*book.Markup, error) {
	if m == nil {
		return nil, fmt.Errorf("quality: nil markup")
	}

	out := *m
	out.Chapters = make([]book.AnnotatedChapter, len(m.Chapters))

	original := 0
	validated := 0
	var qualityScores []float64

	for i, ch := range m.Chapters {
		chapter := ch
		chapter.Segments = make([]book.AnnotatedSegment, len(ch.Segments))
		for j, seg := range ch.Segments {
			original += len(seg.Effects)

			filtered := c.validateSegment(&seg)
			validated += len(filtered)

			seg.Effects = filtered
			seg.QualityScore = c.segmentQuality(&seg, filtered)
			if len(filtered) > 0 {
				qualityScores = append(qualityScores, seg.QualityScore)
			}
			chapter.Segments[j] = seg
		}
		out.Chapters[i] = chapter
	}

	avg := 0.0
	if len(qualityScores) > 0 {
		for _, s := range qualityScores {
			avg += s
		}
		avg /= float64(len(qualityScores))
	}

	out.Quality = &book.QualityMetadata{
		OriginalEffectCount:  original,
		ValidatedEffectCount: validated,
		EffectsRemoved:       original - validated,
		AverageQualityScore:  avg,
	}

	slog.Debug("quality validation completed", "removed", original-validated)
	return &out, nil
}

// validateSegment filters the segment's effects, caps the count, and
// collapses same-kind duplicates.
func (c *Controller) validateSegment(seg *book.AnnotatedSegment) []book.Effect {
	if len(seg.Effects) == 0 {
		return nil
	}

	var valid []book.Effect
	for _, e := range seg.Effects {
		if c.effectValid(&e, seg) {
			valid = append(valid, e)
		}
	}

	if len(valid) > c.rules.MaxEffectsPerSegment {
		valid = c.topByQuality(valid, seg)
	}
	return collapseByKind(valid)
}

func (c *Controller) effectValid(e *book.Effect, seg *book.AnnotatedSegment) bool {
	if seg.EmotionalScore < c.rules.MinEmotionalScore {
		return false
	}
	if !e.Kind.Valid() {
		return false
	}
	if !c.contextAppropriate(e, seg) {
		return false
	}
	return c.characterConsistent(e, seg)
}

// contextAppropriate checks the context-violation table against the
// segment text and the pair blacklist against the segment's other
// effects.
func (c *Controller) contextAppropriate(e *book.Effect, seg *book.AnnotatedSegment) bool {
	lower := strings.ToLower(seg.Text)
	for _, violation := range c.rules.ContextViolations {
		if !strings.Contains(lower, violation.Context) {
			continue
		}
		for _, forbidden := range violation.Forbidden {
			if e.Name == forbidden {
				return false
			}
		}
	}

	for _, other := range seg.Effects {
		if other == *e {
			continue
		}
		for _, pair := range c.rules.InappropriatePairs {
			if e.Name == pair[0] && other.Name == pair[1] {
				return false
			}
		}
	}
	return true
}

// characterConsistent requires the named character to be significantly
// relevant to the segment.
func (c *Controller) characterConsistent(e *book.Effect, seg *book.AnnotatedSegment) bool {
	if e.Character == "" {
		return true
	}
	return seg.CharacterRelevance[e.Character] >= c.rules.CharacterConsistencyThreshold
}

// effectQuality is the composite quality score: 0.4 emotional score,
// 0.3 intensity, 0.2 character relevance, 0.1 context appropriateness.
func (c *Controller) effectQuality(e *book.Effect, seg *book.AnnotatedSegment) float64 {
	score := seg.EmotionalScore*0.4 + e.Intensity*0.3
	if e.Character != "" {
		score += seg.CharacterRelevance[e.Character] * 0.2
	}
	if c.contextAppropriate(e, seg) {
		score += 0.1
	}
	return book.Clamp01(score)
}

// topByQuality keeps the best MaxEffectsPerSegment effects, ties broken
// by selection order.
func (c *Controller) topByQuality(effects []book.Effect, seg *book.AnnotatedSegment) []book.Effect {
	type scored struct {
		effect book.Effect
		score  float64
		order  int
	}
	ranked := make([]scored, len(effects))
	for i, e := range effects {
		ranked[i] = scored{e, c.effectQuality(&e, seg), i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	ranked = ranked[:c.rules.MaxEffectsPerSegment]
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].order < ranked[j].order })

	out := make([]book.Effect, len(ranked))
	for i, r := range ranked {
		out[i] = r.effect
	}
	return out
}

// collapseByKind keeps one effect per kind, the highest-intensity one,
// preserving first-occurrence kind order.
func collapseByKind(effects []book.Effect) []book.Effect {
	if len(effects) <= 1 {
		return effects
	}

	bestByKind := map[book.EffectKind]int{}
	kindOrder := []book.EffectKind{}
	for i, e := range effects {
		best, seen := bestByKind[e.Kind]
		if !seen {
			bestByKind[e.Kind] = i
			kindOrder = append(kindOrder, e.Kind)
			continue
		}
		if e.Intensity > effects[best].Intensity {
			bestByKind[e.Kind] = i
		}
	}

	out := make([]book.Effect, 0, len(kindOrder))
	for _, kind := range kindOrder {
		out = append(out, effects[bestByKind[kind]])
	}
	return out
}

// segmentQuality is the per-segment quality score attached as metadata:
// half emotional score, 0.3 average effect quality, 0.2 context bonus.
func (c *Controller) segmentQuality(seg *book.AnnotatedSegment, effects []book.Effect) float64 {
	if len(effects) == 0 {
		return 0
	}

	score := seg.EmotionalScore * 0.5

	sum := 0.0
	appropriate := true
	for _, e := range effects {
		sum += c.effectQuality(&e, seg)
		if !c.contextAppropriate(&e, seg) {
			appropriate = false
		}
	}
	score += sum / float64(len(effects)) * 0.3
	if appropriate {
		score += 0.2
	}
	return book.Clamp01(score)
}
