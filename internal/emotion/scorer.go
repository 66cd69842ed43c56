// Package emotion computes per-segment emotional weight and context.
// Scoring is a weighted sum of five deterministic keyword-density
// factors, amplified when the segment coincides with a story beat or
// tension point.
package emotion

import (
	"strings"

	"github.com/abdulachik/cinemark/internal/book"
	"github.com/abdulachik/cinemark/internal/character"
	"github.com/abdulachik/cinemark/internal/structure"
)

// NonDialogueFloor is the dialogue-intensity score for segments without
// any quoted span.
const NonDialogueFloor = 0.1

// Weights are the factor weights of the emotional score. They are
// expected to sum to 1.
type Weights struct {
	DialogueIntensity      float64
	ActionUrgency          float64
	SensoryRichness        float64
	ConflictLevel          float64
	CharacterVulnerability float64
}

// DefaultWeights returns the documented factor weights.
func DefaultWeights() Weights {
	return Weights{
		DialogueIntensity:      0.30,
		ActionUrgency:          0.25,
		SensoryRichness:        0.20,
		ConflictLevel:          0.15,
		CharacterVulnerability: 0.10,
	}
}

// Config holds scorer configuration.
type Config struct {
	Tables  *Tables
	Weights *Weights
	// StoryBeatMultiplier amplifies segments on a story beat. Defaults
	// to 1.5.
	StoryBeatMultiplier float64
	// TensionMultiplier additionally amplifies segments on a tension
	// point. Defaults to 1.3.
	TensionMultiplier float64
}

// Scorer computes emotional weight and context for segments.
type Scorer struct {
	tables         Tables
	weights        Weights
	beatMultiplier float64
	tensionMult    float64
}

// New creates an emotion scorer.
func New(cfg Config) *Scorer {
	tables := DefaultTables()
	if cfg.Tables != nil {
		tables = *cfg.Tables
	}
	weights := DefaultWeights()
	if cfg.Weights != nil {
		weights = *cfg.Weights
	}
	beat := cfg.StoryBeatMultiplier
	if beat == 0 {
		beat = 1.5
	}
	tension := cfg.TensionMultiplier
	if tension == 0 {
		tension = 1.3
	}
	return &Scorer{tables: tables, weights: weights, beatMultiplier: beat, tensionMult: tension}
}

// Score computes the emotional weight of a segment at the given book
// position, clamped to [0, 1]. Empty text scores 0.
func (s *Scorer) Score(seg book.Segment, chapter, position int,
	analysis *structure.Analysis, profiles map[string]character.Profile) float64 {

	if strings.TrimSpace(seg.Text) == "" {
		return 0
	}

	sum := s.weights.DialogueIntensity*s.DialogueIntensity(seg.Text) +
		s.weights.ActionUrgency*s.actionUrgency(seg.Text) +
		s.weights.SensoryRichness*s.sensoryRichness(seg.Text) +
		s.weights.ConflictLevel*s.conflictLevel(seg.Text) +
		s.weights.CharacterVulnerability*s.characterVulnerability(seg.Text, profiles)

	return book.Clamp01(sum * s.contextMultiplier(chapter, position, analysis))
}

// contextMultiplier composes the story-beat and tension-point
// amplifiers; both may apply to the same segment.
func (s *Scorer) contextMultiplier(chapter, position int, analysis *structure.Analysis) float64 {
	weight := 1.0
	if analysis == nil {
		return weight
	}
	if analysis.HasBeatAt(chapter, position) {
		weight *= s.beatMultiplier
	}
	if analysis.HasTensionAt(chapter, position) {
		weight *= s.tensionMult
	}
	return weight
}

// DialogueIntensity measures emotional intensity in dialogue. Segments
// without a quoted span score the non-dialogue floor.
func (s *Scorer) DialogueIntensity(text string) float64 {
	if !book.ContainsDialogue(text) {
		return NonDialogueFloor
	}

	lower := strings.ToLower(text)
	score := float64(countPresent(lower, s.tables.HighIntensity))*0.3 +
		float64(countPresent(lower, s.tables.MediumIntensity))*0.2 +
		float64(countPresent(lower, s.tables.IntensityIndicators))*0.15

	wc := book.WordCount(text)
	if wc == 0 {
		return 0
	}
	return score / float64(wc)
}

func (s *Scorer) actionUrgency(text string) float64 {
	lower := strings.ToLower(text)
	hits := countPresent(lower, s.tables.ActionVerbs) +
		countPresent(lower, s.tables.UrgencyWords) +
		countPresent(lower, s.tables.PacingWords)

	wc := book.WordCount(text)
	if wc == 0 {
		return 0
	}
	return float64(hits) / float64(wc)
}

func (s *Scorer) sensoryRichness(text string) float64 {
	lower := strings.ToLower(text)
	hits := countPresent(lower, s.tables.RichnessWords)
	for _, words := range s.tables.SensoryWords {
		hits += countPresent(lower, words)
	}

	wc := book.WordCount(text)
	if wc == 0 {
		return 0
	}
	return float64(hits) / float64(wc)
}

// conflictLevel weighs general, emotional, and physical conflict
// keywords 0.4/0.4/0.2.
func (s *Scorer) conflictLevel(text string) float64 {
	lower := strings.ToLower(text)
	weighted := float64(countPresent(lower, s.tables.ConflictWords))*0.4 +
		float64(countPresent(lower, s.tables.EmotionalConflict))*0.4 +
		float64(countPresent(lower, s.tables.PhysicalConflict))*0.2

	wc := book.WordCount(text)
	if wc == 0 {
		return 0
	}
	return weighted / float64(wc)
}

// characterVulnerability combines vulnerability keyword density with a
// 0.3 bonus for each mentioned character whose primary emotion is a
// vulnerable one.
func (s *Scorer) characterVulnerability(text string, profiles map[string]character.Profile) float64 {
	if len(profiles) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	base := 0.0
	if wc := book.WordCount(text); wc > 0 {
		base = float64(countPresent(lower, s.tables.VulnerabilityWords)) / float64(wc)
	}

	bonus := 0.0
	for name, profile := range profiles {
		if !strings.Contains(lower, strings.ToLower(name)) {
			continue
		}
		for _, vulnerable := range s.tables.VulnerableEmotions {
			if profile.Signature.PrimaryEmotion == vulnerable {
				bonus += 0.3
				break
			}
		}
	}

	return book.Clamp01(base + bonus)
}

// Context classifies the segment's emotional context.
func (s *Scorer) Context(seg book.Segment) book.EmotionalContext {
	text := seg.Text
	if strings.TrimSpace(text) == "" {
		return book.NeutralContext()
	}
	lower := strings.ToLower(text)

	primary, secondary := s.rankEmotions(lower)
	return book.EmotionalContext{
		PrimaryEmotion:      primary,
		SecondaryEmotion:    secondary,
		EmotionalComplexity: s.complexity(lower),
		IntensityLevel:      s.intensityLevel(lower),
		ContextType:         s.contextType(lower),
		Keywords:            s.emotionalKeywords(lower),
		NarrativeFunction:   s.narrativeFunction(lower),
	}
}

// rankEmotions picks the top two emotions by keyword presence count,
// ties broken by taxonomy order; all-zero yields neutral.
func (s *Scorer) rankEmotions(lower string) (string, string) {
	bestName, bestScore := "neutral", 0
	secondName, secondScore := "", 0
	for _, fam := range s.tables.Emotions {
		score := countPresent(lower, fam.Keywords)
		if score > bestScore {
			secondName, secondScore = bestName, bestScore
			bestName, bestScore = fam.Name, score
		} else if score > secondScore {
			secondName, secondScore = fam.Name, score
		}
	}
	if bestScore == 0 {
		return "neutral", ""
	}
	if secondScore == 0 {
		secondName = ""
	}
	return bestName, secondName
}

// complexity is the fraction of intensity tiers with any hit.
func (s *Scorer) complexity(lower string) float64 {
	tiers := [][]string{s.tables.HighIntensity, s.tables.MediumIntensity, s.tables.LowIntensity}
	hit := 0
	for _, tier := range tiers {
		if countPresent(lower, tier) > 0 {
			hit++
		}
	}
	return float64(hit) / float64(len(tiers))
}

// intensityLevel classifies by tier presence; high takes priority.
func (s *Scorer) intensityLevel(lower string) string {
	switch {
	case countPresent(lower, s.tables.HighIntensity) > 0:
		return "high"
	case countPresent(lower, s.tables.MediumIntensity) > 0:
		return "medium"
	case countPresent(lower, s.tables.LowIntensity) > 0:
		return "low"
	default:
		return "neutral"
	}
}

// contextType returns the first matching indicator family.
func (s *Scorer) contextType(lower string) string {
	for _, fam := range s.tables.Contexts {
		if countPresent(lower, fam.Keywords) > 0 {
			return fam.Name
		}
	}
	return "narrative"
}

func (s *Scorer) emotionalKeywords(lower string) []string {
	var found []string
	for _, tier := range [][]string{s.tables.HighIntensity, s.tables.MediumIntensity, s.tables.LowIntensity} {
		for _, kw := range tier {
			if strings.Contains(lower, kw) {
				found = append(found, kw)
			}
		}
	}
	return found
}

// narrativeFunction ranks dialogue > action > reflection > sensory >
// description.
func (s *Scorer) narrativeFunction(lower string) string {
	if s.matchesContext(lower, "dialogue") {
		return "dialogue"
	}
	if s.matchesContext(lower, "action") {
		return "action"
	}
	if s.matchesContext(lower, "reflective") {
		return "reflection"
	}
	if s.matchesContext(lower, "sensory") {
		return "sensory"
	}
	return "description"
}

func (s *Scorer) matchesContext(lower, name string) bool {
	for _, fam := range s.tables.Contexts {
		if fam.Name == name {
			return countPresent(lower, fam.Keywords) > 0
		}
	}
	return false
}

func countPresent(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}
