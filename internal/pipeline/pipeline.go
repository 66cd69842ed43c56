// Package pipeline orchestrates the full annotation pass: structural
// analysis, character analysis, emotional scoring, effect selection,
// quality control, and sparsity enforcement, in that fixed order.
package pipeline

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/character"
	"github.com/abdulachik/cinemark/internal/config"
	"github.com/abdulachik/cinemark/internal/effects"
	"github.com/abdulachik/cinemark/internal/emotion"
	"github.com/abdulachik/cinemark/internal/quality"
	"github.com/abdulachik/cinemark/internal/sparsity"
	"github.com/abdulachik/cinemark/internal/structure"
	"github.com/abdulachik/cinemark/internal/theme"
)

// StructureStage analyzes narrative structure.
type StructureStage interface {
	Analyze(*book.ParsedBook) (structure.Analysis, error)
}

// CharacterStage extracts character profiles.
type CharacterStage interface {
	Analyze(*book.ParsedBook) (map[string]character.Profile, error)
}

// EmotionStage scores segments and derives their emotional context.
type EmotionStage interface {
	Score(seg book.Segment, chapter, position int,
		analysis *structure.Analysis, profiles map[string]character.Profile) float64
	Context(seg book.Segment) book.EmotionalContext
}

// EffectStage selects effects for an annotated segment.
type EffectStage interface {
	Select(seg *book.AnnotatedSegment, profiles map[string]character.Profile,
		history []bool, bookTheme string) []book.Effect
}

// QualityStage validates selected effects.
type QualityStage interface {
	Validate(*book.Markup) (*book.Markup, error)
}

// SparsityStage enforces density limits.
type SparsityStage interface {
	Enforce(*book.Markup) *book.Markup
}

// Config holds pipeline configuration. Nil stages are built from the
// tuning values; tests inject replacements.
type Config struct {
	Tuning *config.Tuning

	// Rand seeds the effect selector's noise draw. Nil means
	// entropy-seeded.
	Rand *rand.Rand

	Structure StructureStage
	Character CharacterStage
	Emotion   EmotionStage
	Effects   EffectStage
	Quality   QualityStage
	Sparsity  SparsityStage
}

// Pipeline runs the annotation stages over a parsed book.
type Pipeline struct {
	structure StructureStage
	character CharacterStage
	emotion   EmotionStage
	effects   EffectStage
	quality   QualityStage
	sparsity  SparsityStage
}

// New creates a pipeline. Stage overrides in cfg take precedence over
// the tuning-derived defaults.
func New(cfg Config) *Pipeline {
	tuning := config.DefaultTuning()
	if cfg.Tuning != nil {
		tuning = *cfg.Tuning
	}

	p := &Pipeline{
		structure: cfg.Structure,
		character: cfg.Character,
		emotion:   cfg.Emotion,
		effects:   cfg.Effects,
		quality:   cfg.Quality,
		sparsity:  cfg.Sparsity,
	}
	if p.structure == nil {
		p.structure = structure.New(structure.Config{TensionThreshold: tuning.TensionThreshold})
	}
	if p.character == nil {
		p.character = character.New(character.Config{})
	}
	if p.emotion == nil {
		weights := emotion.Weights{
			DialogueIntensity:      tuning.Weights.DialogueIntensity,
			ActionUrgency:          tuning.Weights.ActionUrgency,
			SensoryRichness:        tuning.Weights.SensoryRichness,
			ConflictLevel:          tuning.Weights.ConflictLevel,
			CharacterVulnerability: tuning.Weights.CharacterVulnerability,
		}
		p.emotion = emotion.New(emotion.Config{
			Weights:             &weights,
			StoryBeatMultiplier: tuning.StoryBeatMultiplier,
			TensionMultiplier:   tuning.TensionMultiplier,
		})
	}
	if p.effects == nil {
		p.effects = effects.New(effects.Config{
			Rand:           cfg.Rand,
			MinScore:       tuning.MinimumEmotionalScore,
			RecentWindow:   tuning.RecentEffectWindow,
			RecentLimit:    tuning.RecentEffectLimit,
			AcceptRate:     tuning.SelectionAcceptRate,
			SoundThreshold: tuning.SoundEffectThreshold,
		})
	}
	if p.quality == nil {
		rules := quality.DefaultRules()
		rules.MinEmotionalScore = tuning.MinimumEmotionalScore
		rules.MaxEffectsPerSegment = tuning.MaxEffectsPerSegment
		rules.CharacterConsistencyThreshold = tuning.CharacterConsistencyThreshold
		p.quality = quality.New(quality.Config{Rules: &rules})
	}
	if p.sparsity == nil {
		rules := sparsity.DefaultRules()
		rules.GlobalDensity = tuning.GlobalEffectDensity
		rules.ChapterLimit = tuning.ChapterEffectLimit
		rules.MinSpacing = tuning.MinimumEffectSpacing
		rules.MaxConsecutive = tuning.MaxConsecutiveEffects
		p.sparsity = sparsity.New(sparsity.Config{Rules: &rules})
	}
	return p
}

// Run executes the full pipeline. A stage returning an error falls back
// to that stage's neutral output and the pipeline continues; a panic
// escaping any stage yields a fallback markup carrying the original
// text with no effects.
func (p *Pipeline) Run(b *book.ParsedBook) (markup *book.Markup, err error) {
	if b == nil {
		return nil, fmt.Errorf("pipeline: nil book")
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("analysis pipeline failed, using fallback markup", "panic", r)
			markup = FallbackMarkup(b, fmt.Sprintf("analysis pipeline failed: %v", r))
			err = nil
		}
	}()

	slog.Info("starting analysis", "book", b.Title, "chapters", len(b.Chapters))

	analysis, serr := p.structure.Analyze(b)
	if serr != nil {
		slog.Warn("structural analysis failed, using neutral structure", "error", serr)
		analysis = structure.Empty()
	}

	profiles, cerr := p.character.Analyze(b)
	if cerr != nil {
		slog.Warn("character analysis failed, using narrator profile", "error", cerr)
		profiles = character.Fallback()
	}
	slog.Debug("character analysis completed", "characters", len(profiles))

	scored := p.scoreChapters(b, &analysis, profiles)
	bookTheme := theme.Vote(allText(b))

	markup = p.applyEffects(b.Title, bookTheme, scored, profiles)

	validated, qerr := p.quality.Validate(markup)
	if qerr != nil {
		slog.Warn("quality control failed, keeping unvalidated effects", "error", qerr)
	} else {
		markup = validated
	}

	markup = p.sparsity.Enforce(markup)

	slog.Info("analysis completed",
		"book", b.Title,
		"theme", bookTheme,
		"effects", markup.EffectCount(),
	)
	return markup, nil
}

// scoreChapters annotates every segment with its emotional score,
// context, and per-character relevance, and computes each chapter's
// emotional profile and structural role.
func (p *Pipeline) scoreChapters(b *book.ParsedBook, analysis *structure.Analysis,
	profiles map[string]character.Profile) []book.AnnotatedChapter {

	chapters := make([]book.AnnotatedChapter, len(b.Chapters))
	for i, ch := range b.Chapters {
		segments := make([]book.AnnotatedSegment, len(ch.Segments))
		for j, seg := range ch.Segments {
			segments[j] = book.AnnotatedSegment{
				Segment:            seg,
				EmotionalScore:     p.emotion.Score(seg, i, j, analysis, profiles),
				Context:            p.emotion.Context(seg),
				CharacterRelevance: characterRelevance(seg.Text, profiles),
			}
		}
		chapters[i] = book.AnnotatedChapter{
			Title:          ch.Title,
			StructuralRole: structure.ChapterRole(i, len(b.Chapters)),
			Segments:       segments,
			Profile:        chapterProfile(segments),
		}
	}
	return chapters
}

// applyEffects runs effect selection over the scored chapters in book
// order, threading the effect history through every segment.
func (p *Pipeline) applyEffects(title, bookTheme string,
	chapters []book.AnnotatedChapter, profiles map[string]character.Profile) *book.Markup {

	var history []bool
	segmentsWithEffects := 0
	distribution := map[string]int{}
	usage := map[string]int{}
	for name := range profiles {
		usage[name] = 0
	}

	for i := range chapters {
		for j := range chapters[i].Segments {
			seg := &chapters[i].Segments[j]
			seg.Effects = p.effects.Select(seg, profiles, history, bookTheme)

			applied := len(seg.Effects) > 0
			history = append(history, applied)
			if applied {
				segmentsWithEffects++
				distribution[strconv.Itoa(i)]++
				for _, e := range seg.Effects {
					if e.Character != "" {
						usage[e.Character]++
					}
				}
			}
		}
	}

	return &book.Markup{
		BookTitle: title,
		Theme:     bookTheme,
		Chapters:  chapters,
		Analysis: book.AnalysisMetadata{
			Status:               book.StatusOK,
			TotalEffectsApplied:  segmentsWithEffects,
			EffectDistribution:   distribution,
			CharacterEffectUsage: usage,
		},
	}
}

// FallbackMarkup carries the original text with no effects. It is the
// pipeline's output when a stage panics.
func FallbackMarkup(b *book.ParsedBook, reason string) *book.Markup {
	chapters := make([]book.AnnotatedChapter, len(b.Chapters))
	for i, ch := range b.Chapters {
		segments := make([]book.AnnotatedSegment, len(ch.Segments))
		for j, seg := range ch.Segments {
			segments[j] = book.AnnotatedSegment{
				Segment: seg,
				Context: book.NeutralContext(),
				Effects: []book.Effect{},
			}
		}
		chapters[i] = book.AnnotatedChapter{Title: ch.Title, Segments: segments}
	}

	return &book.Markup{
		BookTitle: b.Title,
		Theme:     theme.General,
		Chapters:  chapters,
		Analysis: book.AnalysisMetadata{
			Status: book.StatusFallback,
			Error:  reason,
		},
	}
}

// characterRelevance scores each known character's relevance to the
// text: 0.8 when mentioned, 0.1 otherwise.
func characterRelevance(text string, profiles map[string]character.Profile) map[string]float64 {
	if len(profiles) == 0 {
		return nil
	}
	lower := strings.ToLower(text)
	relevance := make(map[string]float64, len(profiles))
	for name := range profiles {
		if strings.Contains(lower, strings.ToLower(name)) {
			relevance[name] = 0.8
		} else {
			relevance[name] = 0.1
		}
	}
	return relevance
}

// chapterProfile summarizes a chapter's per-segment scores.
func chapterProfile(segments []book.AnnotatedSegment) book.ChapterEmotionalProfile {
	if len(segments) == 0 {
		return book.ChapterEmotionalProfile{}
	}

	scores := make([]float64, len(segments))
	total := 0.0
	peak := segments[0].EmotionalScore
	low := segments[0].EmotionalScore
	for i, seg := range segments {
		scores[i] = seg.EmotionalScore
		total += seg.EmotionalScore
		if seg.EmotionalScore > peak {
			peak = seg.EmotionalScore
		}
		if seg.EmotionalScore < low {
			low = seg.EmotionalScore
		}
	}

	profile := book.ChapterEmotionalProfile{
		AverageIntensity:  total / float64(len(segments)),
		PeakEmotion:       peak,
		EmotionalVariance: book.Variance(scores),
	}
	if len(segments) > 1 {
		profile.EmotionalRange = peak - low
	}
	return profile
}

// allText concatenates every segment for theme detection.
func allText(b *book.ParsedBook) string {
	var sb strings.Builder
	for _, ch := range b.Chapters {
		for _, seg := range ch.Segments {
			sb.WriteString(seg.Text)
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
