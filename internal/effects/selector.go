package effects

import (
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/character"
)

// Config holds selector configuration. Zero values fall back to the
// documented defaults.
type Config struct {
	Catalog *Catalog

	// Rand supplies the sparsity noise draw. Production leaves it nil
	// (entropy-seeded); tests pass a fixed-seed source for
	// reproducibility.
	Rand *rand.Rand

	// MinScore gates any effect consideration. Defaults to 0.5.
	MinScore float64
	// RecentWindow and RecentLimit cap effect-bearing segments among
	// the most recent history entries. Defaults: window 10, limit 2.
	RecentWindow int
	RecentLimit  int
	// AcceptRate is the probability a gated candidate survives the
	// sparsity noise draw. Defaults to 0.3.
	AcceptRate float64
	// SoundThreshold is the minimum score for a sound effect. Defaults
	// to 0.8.
	SoundThreshold float64
}

// Selector chooses zero or more effects per segment from the tiered
// catalog.
type Selector struct {
	catalog        *Catalog
	rng            *rand.Rand
	minScore       float64
	recentWindow   int
	recentLimit    int
	acceptRate     float64
	soundThreshold float64
}

// New creates an effect selector.
func New(cfg Config) *Selector {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &Selector{
		catalog:        catalog,
		rng:            rng,
		minScore:       cfg.MinScore,
		recentWindow:   cfg.RecentWindow,
		recentLimit:    cfg.RecentLimit,
		acceptRate:     cfg.AcceptRate,
		soundThreshold: cfg.SoundThreshold,
	}
	if s.minScore == 0 {
		s.minScore = 0.5
	}
	if s.recentWindow == 0 {
		s.recentWindow = 10
	}
	if s.recentLimit == 0 {
		s.recentLimit = 2
	}
	if s.acceptRate == 0 {
		s.acceptRate = 0.3
	}
	if s.soundThreshold == 0 {
		s.soundThreshold = 0.8
	}
	return s
}

// Select chooses up to three effects for the segment: at most one text
// style, up to two word effects, and one sound for very high intensity.
// history holds one entry per previously processed segment, true when
// that segment carried effects.
func (s *Selector) Select(seg *book.AnnotatedSegment, profiles map[string]character.Profile,
	history []bool, bookTheme string) []book.Effect {

	if !s.shouldApply(seg.EmotionalScore, history) {
		return nil
	}

	tier := TierFor(seg.EmotionalScore)
	text := seg.Text
	ctx := seg.Context

	var selected []book.Effect

	if style := s.selectTextStyle(tier, ctx, text, profiles, bookTheme); style != nil {
		selected = append(selected, *style)
	}
	selected = append(selected, s.selectWordEffects(tier, ctx, text, bookTheme)...)
	if seg.EmotionalScore > s.soundThreshold {
		if sound := s.selectSound(tier, ctx, text, bookTheme); sound != nil {
			selected = append(selected, *sound)
		}
	}

	if len(selected) > 3 {
		selected = selected[:3]
	}
	if len(selected) > 0 {
		slog.Debug("effects selected",
			"tier", tier.String(),
			"count", len(selected),
			"score", seg.EmotionalScore,
		)
	}
	return selected
}

// shouldApply gates selection: score threshold, recency cap, and the
// sparsity noise draw that rejects most remaining candidates.
func (s *Selector) shouldApply(score float64, history []bool) bool {
	if score < s.minScore {
		return false
	}

	recent := history
	if len(recent) > s.recentWindow {
		recent = recent[len(recent)-s.recentWindow:]
	}
	withEffects := 0
	for _, had := range recent {
		if had {
			withEffects++
		}
	}
	if withEffects > s.recentLimit {
		return false
	}

	return s.rng.Float64() < s.acceptRate
}

// matchesContext is deliberately permissive: a trigger substring, an
// emotion-name match (or neutral), or a context substring each suffice
// on their own.
func matchesContext(d *Definition, primaryEmotion, lowerText string) bool {
	for _, trigger := range d.Triggers {
		if strings.Contains(lowerText, trigger) {
			return true
		}
	}
	for _, trigger := range d.Triggers {
		if trigger == primaryEmotion {
			return true
		}
	}
	if primaryEmotion == "neutral" {
		return true
	}
	for _, context := range d.Contexts {
		if strings.Contains(lowerText, context) {
			return true
		}
	}
	return false
}

// relevance scores how well a definition fits the text: 0.3 per trigger
// hit plus 0.2 per context hit.
func relevance(d *Definition, lowerText string) float64 {
	score := 0.0
	for _, trigger := range d.Triggers {
		if strings.Contains(lowerText, trigger) {
			score += 0.3
		}
	}
	for _, context := range d.Contexts {
		if strings.Contains(lowerText, context) {
			score += 0.2
		}
	}
	return score
}

// intensity is the base intensity boosted 0.1 per trigger hit, capped
// at +0.3, clamped to 1.
func intensity(d *Definition, lowerText string) float64 {
	hits := 0
	for _, trigger := range d.Triggers {
		if strings.Contains(lowerText, trigger) {
			hits++
		}
	}
	boost := float64(hits) * 0.1
	if boost > 0.3 {
		boost = 0.3
	}
	return book.Clamp01(d.BaseIntensity + boost)
}

func (s *Selector) selectTextStyle(tier Tier, ctx book.EmotionalContext, text string,
	profiles map[string]character.Profile, theme string) *book.Effect {

	lower := strings.ToLower(text)
	candidates := s.catalog.Select(tier, book.KindTextStyle, theme)

	var best *Definition
	bestScore := -1.0
	for i := range candidates {
		d := &candidates[i]
		if !matchesContext(d, ctx.PrimaryEmotion, lower) {
			continue
		}
		// Strictly greater keeps declaration order on ties.
		if score := relevance(d, lower); score > bestScore {
			best, bestScore = d, score
		}
	}
	if best == nil {
		return nil
	}

	return &book.Effect{
		Kind:      book.KindTextStyle,
		Name:      best.Name,
		Intensity: intensity(best, lower),
		Character: characterFor(text, profiles),
	}
}

// characterFor associates the effect with the first mentioned character
// in stable name order.
func characterFor(text string, profiles map[string]character.Profile) string {
	lower := strings.ToLower(text)
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if strings.Contains(lower, strings.ToLower(name)) {
			return name
		}
	}
	return ""
}

func (s *Selector) selectWordEffects(tier Tier, ctx book.EmotionalContext, text, theme string) []book.Effect {
	lower := strings.ToLower(text)
	var out []book.Effect

	for _, d := range s.catalog.Select(tier, book.KindWordEffect, theme) {
		if !matchesContext(&d, ctx.PrimaryEmotion, lower) {
			continue
		}
		for _, word := range triggerWords(d.Triggers, text) {
			out = append(out, book.Effect{
				Kind:      book.KindWordEffect,
				Name:      d.Name,
				Word:      word,
				Intensity: intensity(&d, lower),
			})
		}
	}

	if len(out) > 2 {
		out = out[:2]
	}
	return out
}

// triggerWords extracts, per matched trigger, the first whole word of
// the original text containing that trigger.
func triggerWords(triggers []string, text string) []string {
	lower := strings.ToLower(text)
	words := strings.Fields(text)
	var matched []string

	for _, trigger := range triggers {
		if !strings.Contains(lower, trigger) {
			continue
		}
		for _, w := range words {
			if strings.Contains(strings.ToLower(w), trigger) {
				matched = append(matched, strings.Trim(w, ".,!?;:\"'"))
				break
			}
		}
	}
	if len(matched) > 3 {
		matched = matched[:3]
	}
	return matched
}

func (s *Selector) selectSound(tier Tier, ctx book.EmotionalContext, text, theme string) *book.Effect {
	lower := strings.ToLower(text)
	for _, d := range s.catalog.Select(tier, book.KindSound, theme) {
		if !matchesContext(&d, ctx.PrimaryEmotion, lower) {
			continue
		}
		return &book.Effect{
			Kind:      book.KindSound,
			Name:      d.Name,
			Intensity: intensity(&d, lower),
			Volume:    d.Volume,
		}
	}
	return nil
}
