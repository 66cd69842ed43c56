// Package sparsity enforces effect density limits so the markup stays
// sparse: per-chapter caps scaled by story phase, minimum spacing
// between effect-bearing segments, and a cap on consecutive ones.
package sparsity

import (
	"log/slog"
	"sort"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/structure"
)

// Rules holds the density targets and spacing constraints.
type Rules struct {
	GlobalDensity    float64
	ChapterLimit     float64
	MinSpacing       int
	MaxConsecutive   int
	PhaseMultipliers map[string]float64
}

// DefaultRules returns the built-in sparsity rules: 2% global density,
// 5% per chapter, 8 segments minimum spacing, at most 2 consecutive.
func DefaultRules() Rules {
	return Rules{
		GlobalDensity:  0.02,
		ChapterLimit:   0.05,
		MinSpacing:     8,
		MaxConsecutive: 2,
		PhaseMultipliers: map[string]float64{
			structure.RoleExposition:   0.3,
			structure.RoleSetup:        0.5,
			structure.RoleRisingAction: 0.8,
			structure.RoleClimax:       1.5,
			structure.RoleResolution:   0.7,
		},
	}
}

// Config holds controller configuration.
type Config struct {
	Rules *Rules
}

// Controller enforces the sparsity rules.
type Controller struct {
	rules Rules
}

// New creates a sparsity controller.
func New(cfg Config) *Controller {
	rules := DefaultRules()
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	return &Controller{rules: rules}
}

// Enforce returns a new markup with effects thinned to meet the
// sparsity rules. Segment order and count are unchanged; effects are
// only ever cleared, never added.
func (c *Controller) Enforce(m *book.Markup) *book.Markup {
	out := *m
	out.Chapters = make([]book.AnnotatedChapter, len(m.Chapters))
	for i, ch := range m.Chapters {
		chapter := ch
		chapter.Segments = make([]book.AnnotatedSegment, len(ch.Segments))
		copy(chapter.Segments, ch.Segments)
		out.Chapters[i] = chapter
	}

	before := out.SegmentsWithEffects()
	spacingBefore := c.spacingViolations(&out)

	for i := range out.Chapters {
		c.capChapter(&out.Chapters[i])
	}
	c.enforceSpacing(&out)

	after := out.SegmentsWithEffects()
	density := out.EffectDensity()

	out.Sparsity = &book.SparsityMetadata{
		EffectsRemoved:         before - after,
		FinalEffectDensity:     density,
		SpacingViolationsFixed: spacingBefore - c.spacingViolations(&out),
		Compliance: book.SparsityCompliance{
			GlobalDensity: density <= c.rules.GlobalDensity,
			ChapterLimit:  c.chaptersWithinLimit(&out),
			Spacing:       c.spacingViolations(&out) == 0,
		},
	}

	slog.Debug("sparsity enforcement completed",
		"removed", before-after, "density", density)
	return &out
}

// capChapter limits the number of effect-bearing segments to the
// chapter's phase-scaled budget, keeping the highest emotional scores.
// Ties keep the earlier segment.
func (c *Controller) capChapter(ch *book.AnnotatedChapter) {
	limit := c.chapterBudget(ch)

	var bearers []int
	for i, seg := range ch.Segments {
		if len(seg.Effects) > 0 {
			bearers = append(bearers, i)
		}
	}
	if len(bearers) <= limit {
		return
	}

	ranked := make([]int, len(bearers))
	copy(ranked, bearers)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ch.Segments[ranked[i]], ch.Segments[ranked[j]]
		if a.EmotionalScore != b.EmotionalScore {
			return a.EmotionalScore > b.EmotionalScore
		}
		return ranked[i] < ranked[j]
	})

	keep := map[int]bool{}
	for _, idx := range ranked[:limit] {
		keep[idx] = true
	}
	for _, idx := range bearers {
		if !keep[idx] {
			ch.Segments[idx].Effects = nil
		}
	}
}

// chapterBudget is the maximum effect-bearing segments for a chapter.
func (c *Controller) chapterBudget(ch *book.AnnotatedChapter) int {
	multiplier, ok := c.rules.PhaseMultipliers[c.chapterPhase(ch)]
	if !ok {
		multiplier = 1.0
	}
	return int(float64(len(ch.Segments)) * c.rules.ChapterLimit * multiplier)
}

// chapterPhase uses the structural role when present, otherwise infers
// a phase from the chapter's average emotional score.
func (c *Controller) chapterPhase(ch *book.AnnotatedChapter) string {
	if _, ok := c.rules.PhaseMultipliers[ch.StructuralRole]; ok {
		return ch.StructuralRole
	}
	if len(ch.Segments) == 0 {
		return structure.RoleExposition
	}

	total := 0.0
	for _, seg := range ch.Segments {
		total += seg.EmotionalScore
	}
	avg := total / float64(len(ch.Segments))
	switch {
	case avg > 0.7:
		return structure.RoleClimax
	case avg > 0.5:
		return structure.RoleRisingAction
	case avg > 0.3:
		return structure.RoleSetup
	default:
		return structure.RoleExposition
	}
}

// enforceSpacing walks all segments in book order and clears effects
// from any segment too close to the previous effect-bearing one, or
// past the consecutive limit. The later segment always loses.
func (c *Controller) enforceSpacing(m *book.Markup) {
	position := 0
	lastEffect := -c.rules.MinSpacing
	consecutive := 0

	for i := range m.Chapters {
		for j := range m.Chapters[i].Segments {
			seg := &m.Chapters[i].Segments[j]
			if len(seg.Effects) > 0 {
				if position-lastEffect < c.rules.MinSpacing || consecutive >= c.rules.MaxConsecutive {
					seg.Effects = nil
				}
			}
			if len(seg.Effects) > 0 {
				lastEffect = position
				consecutive++
			} else {
				consecutive = 0
			}
			position++
		}
	}
}

// spacingViolations counts effect-bearing segments closer than the
// minimum spacing to the previous effect-bearing one.
func (c *Controller) spacingViolations(m *book.Markup) int {
	violations := 0
	position := 0
	lastEffect := -c.rules.MinSpacing

	for _, ch := range m.Chapters {
		for _, seg := range ch.Segments {
			if len(seg.Effects) > 0 {
				if position-lastEffect < c.rules.MinSpacing {
					violations++
				}
				lastEffect = position
			}
			position++
		}
	}
	return violations
}

func (c *Controller) chaptersWithinLimit(m *book.Markup) bool {
	for i := range m.Chapters {
		ch := &m.Chapters[i]
		bearers := 0
		for _, seg := range ch.Segments {
			if len(seg.Effects) > 0 {
				bearers++
			}
		}
		if bearers > c.chapterBudget(ch) {
			return false
		}
	}
	return true
}
