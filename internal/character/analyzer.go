// Package character extracts character identities and builds
// per-character emotional and speech profiles from raw segments.
package character

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/abdulachik/cinemark/internal/book"
)

// Arc types classified from emotional variance.
const (
	ArcStatic   = "static"
	ArcModerate = "moderate"
	ArcDynamic  = "dynamic"
)

// Mention records one segment that references a character.
type Mention struct {
	Chapter  int    `json:"chapter"`
	Position int    `json:"position"`
	Text     string `json:"text"`
	Context  string `json:"context"`
}

// SpeechCharacteristics summarizes how a character speaks.
type SpeechCharacteristics struct {
	PatternScores         map[string]int `json:"pattern_scores"`
	VocabularyComplexity  float64        `json:"vocabulary_complexity"`
	AverageSentenceLength float64        `json:"average_sentence_length"`
	DominantPattern       string         `json:"dominant_pattern"`
}

// EmotionalSignature is the aggregate emotion profile of a character.
type EmotionalSignature struct {
	Scores              map[string]int `json:"emotion_scores"`
	PrimaryEmotion      string         `json:"primary_emotion"`
	SecondaryEmotion    string         `json:"secondary_emotion,omitempty"`
	EmotionalComplexity int            `json:"emotional_complexity"`
}

// TimelineEntry is the character's emotional state within one chapter.
type TimelineEntry struct {
	Chapter   int      `json:"chapter"`
	State     string   `json:"emotional_state"`
	Intensity float64  `json:"emotional_intensity"`
	Keywords  []string `json:"emotional_keywords,omitempty"`
}

// KeyMoment flags a significant segment for the character.
type KeyMoment struct {
	Chapter      int     `json:"chapter"`
	Position     int     `json:"position"`
	Type         string  `json:"type"`
	Significance float64 `json:"significance"`
}

// DevelopmentArc classifies the character's emotional trajectory.
type DevelopmentArc struct {
	Type             string  `json:"arc_type"`
	DevelopmentScore float64 `json:"development_score"`
	Variance         float64 `json:"emotional_variance"`
	KeyMomentCount   int     `json:"character_growth"`
}

// Profile is the full analysis for one character. Profiles are keyed by
// name; names are case-sensitively unique within one book.
type Profile struct {
	Name          string                `json:"name"`
	Mentions      []Mention             `json:"dialogue_segments"`
	Speech        SpeechCharacteristics `json:"speech_characteristics"`
	Signature     EmotionalSignature    `json:"emotional_signature"`
	Timeline      []TimelineEntry       `json:"emotional_timeline"`
	KeyMoments    []KeyMoment           `json:"key_moments"`
	Arc           DevelopmentArc        `json:"development_arc"`
	Relationships map[string]float64    `json:"relationships"`
}

// Fallback returns the single-entry narrator map used when analysis
// fails.
func Fallback() map[string]Profile {
	return map[string]Profile{
		"narrator": {
			Name: "narrator",
			Signature: EmotionalSignature{
				Scores:         map[string]int{},
				PrimaryEmotion: "neutral",
			},
			Speech:        SpeechCharacteristics{PatternScores: map[string]int{}, DominantPattern: "neutral"},
			Arc:           DevelopmentArc{Type: ArcStatic},
			Relationships: map[string]float64{},
		},
	}
}

// Config holds analyzer configuration.
type Config struct {
	Tables *Tables
	// MinNameLength is the minimum rune count for a candidate name.
	// Defaults to 3.
	MinNameLength int
}

// Analyzer extracts character profiles from a parsed book.
type Analyzer struct {
	tables      Tables
	attribution []*regexp.Regexp
	minNameLen  int
}

// New creates a character analyzer.
func New(cfg Config) *Analyzer {
	tables := DefaultTables()
	if cfg.Tables != nil {
		tables = *cfg.Tables
	}
	minLen := cfg.MinNameLength
	if minLen == 0 {
		minLen = 3
	}

	patterns := make([]*regexp.Regexp, 0, len(tables.AttributionVerbs))
	for _, verb := range tables.AttributionVerbs {
		patterns = append(patterns, regexp.MustCompile(`([A-Z][a-z]+)\s+`+verb+`\b`))
	}

	return &Analyzer{tables: tables, attribution: patterns, minNameLen: minLen}
}

// Analyze builds a profile for every character found in the book.
func (a *Analyzer) Analyze(b *book.ParsedBook) (map[string]Profile, error) {
	if b == nil {
		return Fallback(), fmt.Errorf("character: nil parsed book")
	}

	names := a.identifyCharacters(b)
	slog.Debug("identified characters", "book", b.Title, "count", len(names))

	profiles := make(map[string]Profile, len(names))
	for _, name := range names {
		profiles[name] = a.analyzeCharacter(name, b)
	}

	relationships := a.analyzeRelationships(names, b)
	for name, p := range profiles {
		if rel, ok := relationships[name]; ok {
			p.Relationships = rel
		} else {
			p.Relationships = map[string]float64{}
		}
		profiles[name] = p
	}

	return profiles, nil
}

// identifyCharacters harvests candidate names from attribution patterns
// and capitalized mid-sentence tokens, then filters stop words, digits,
// all-caps tokens, and too-short names.
func (a *Analyzer) identifyCharacters(b *book.ParsedBook) []string {
	seen := map[string]bool{}
	for _, ch := range b.Chapters {
		for _, seg := range ch.Segments {
			for name := range a.extractNames(seg.Text) {
				seen[name] = true
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		if a.isPlausibleName(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func (a *Analyzer) extractNames(text string) map[string]bool {
	names := map[string]bool{}

	for _, re := range a.attribution {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if len([]rune(name)) >= a.minNameLen {
				names[name] = true
			}
		}
	}

	// Capitalized tokens not at the start of a sentence.
	words := strings.Fields(text)
	for i := 1; i < len(words); i++ {
		prev := words[i-1]
		if strings.HasSuffix(prev, ".") || strings.HasSuffix(prev, "!") || strings.HasSuffix(prev, "?") {
			continue
		}
		w := strings.Trim(words[i], ".,!?;:")
		runes := []rune(w)
		if len(runes) >= a.minNameLen && runes[0] >= 'A' && runes[0] <= 'Z' {
			names[w] = true
		}
	}

	return names
}

func (a *Analyzer) isPlausibleName(name string) bool {
	if len([]rune(name)) < a.minNameLen {
		return false
	}
	if a.tables.StopWords[strings.ToLower(name)] {
		return false
	}
	allDigits, allUpper := true, true
	for _, r := range name {
		if r < '0' || r > '9' {
			allDigits = false
		}
		if r < 'A' || r > 'Z' {
			allUpper = false
		}
	}
	return !allDigits && !allUpper
}

func (a *Analyzer) analyzeCharacter(name string, b *book.ParsedBook) Profile {
	mentions := a.collectMentions(name, b)

	p := Profile{
		Name:       name,
		Mentions:   mentions,
		Speech:     a.analyzeSpeech(mentions),
		Signature:  a.analyzeSignature(mentions),
		Timeline:   a.buildTimeline(name, b),
		KeyMoments: a.findKeyMoments(name, b),
	}
	p.Arc = a.analyzeArc(&p)
	return p
}

// mentioned is a case-insensitive substring check.
func mentioned(name, text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(name))
}

func (a *Analyzer) collectMentions(name string, b *book.ParsedBook) []Mention {
	mentions := []Mention{}
	for i, ch := range b.Chapters {
		for j, seg := range ch.Segments {
			if !mentioned(name, seg.Text) {
				continue
			}
			mentions = append(mentions, Mention{
				Chapter:  i,
				Position: j,
				Text:     seg.Text,
				Context:  mentionContext(name, seg.Text),
			})
		}
	}
	return mentions
}

func mentionContext(name, text string) string {
	if strings.Contains(text, `"`+name) || strings.Contains(text, "“"+name) {
		return "dialogue"
	}
	if strings.Contains(text, name) {
		return "narration"
	}
	return "mention"
}

func (a *Analyzer) analyzeSpeech(mentions []Mention) SpeechCharacteristics {
	scores := map[string]int{}
	if len(mentions) == 0 {
		return SpeechCharacteristics{PatternScores: scores, DominantPattern: "neutral"}
	}

	var sb strings.Builder
	for _, m := range mentions {
		sb.WriteString(m.Text)
		sb.WriteString(" ")
	}
	allText := sb.String()
	lower := strings.ToLower(allText)

	dominant, best := "neutral", 0
	for _, fam := range a.tables.Patterns {
		score := countPresent(lower, fam.Keywords)
		scores[fam.Name] = score
		if score > best {
			dominant, best = fam.Name, score
		}
	}
	if best == 0 && len(a.tables.Patterns) > 0 {
		// All-zero scores still name a dominant pattern, matching the
		// first declared family.
		dominant = a.tables.Patterns[0].Name
	}

	words := strings.Fields(allText)
	unique := map[string]bool{}
	for _, w := range words {
		unique[w] = true
	}
	complexity := 0.0
	if len(words) > 0 {
		complexity = float64(len(unique)) / float64(len(words))
	}

	return SpeechCharacteristics{
		PatternScores:         scores,
		VocabularyComplexity:  complexity,
		AverageSentenceLength: averageSentenceLength(allText),
		DominantPattern:       dominant,
	}
}

func averageSentenceLength(text string) float64 {
	sentences := strings.Split(text, ".")
	if len(sentences) == 0 {
		return 0
	}
	total := 0
	for _, s := range sentences {
		total += book.WordCount(s)
	}
	return float64(total) / float64(len(sentences))
}

func (a *Analyzer) analyzeSignature(mentions []Mention) EmotionalSignature {
	scores := map[string]int{}
	if len(mentions) == 0 {
		return EmotionalSignature{Scores: scores, PrimaryEmotion: "neutral"}
	}

	var sb strings.Builder
	for _, m := range mentions {
		sb.WriteString(strings.ToLower(m.Text))
		sb.WriteString(" ")
	}
	lower := sb.String()

	complexity := 0
	for _, fam := range a.tables.Emotions {
		score := countPresent(lower, fam.Keywords)
		scores[fam.Name] = score
		if score > 0 {
			complexity++
		}
	}

	primary, secondary := rankEmotions(a.tables.Emotions, scores)
	return EmotionalSignature{
		Scores:              scores,
		PrimaryEmotion:      primary,
		SecondaryEmotion:    secondary,
		EmotionalComplexity: complexity,
	}
}

// rankEmotions picks primary and secondary emotions by descending score;
// ties resolve to taxonomy declaration order, all-zero scores yield
// "neutral".
func rankEmotions(taxonomy []EmotionFamily, scores map[string]int) (string, string) {
	type ranked struct {
		name  string
		score int
		order int
	}
	rankings := make([]ranked, 0, len(taxonomy))
	for i, fam := range taxonomy {
		rankings = append(rankings, ranked{fam.Name, scores[fam.Name], i})
	}
	sort.SliceStable(rankings, func(i, j int) bool {
		if rankings[i].score != rankings[j].score {
			return rankings[i].score > rankings[j].score
		}
		return rankings[i].order < rankings[j].order
	})

	primary, secondary := "neutral", ""
	if len(rankings) > 0 && rankings[0].score > 0 {
		primary = rankings[0].name
	}
	if len(rankings) > 1 && rankings[1].score > 0 {
		secondary = rankings[1].name
	}
	return primary, secondary
}

func (a *Analyzer) buildTimeline(name string, b *book.ParsedBook) []TimelineEntry {
	timeline := make([]TimelineEntry, 0, len(b.Chapters))
	for i, ch := range b.Chapters {
		var sb strings.Builder
		for _, seg := range ch.Segments {
			if mentioned(name, seg.Text) {
				sb.WriteString(" ")
				sb.WriteString(seg.Text)
			}
		}
		text := sb.String()
		if text == "" {
			timeline = append(timeline, TimelineEntry{Chapter: i, State: "neutral"})
			continue
		}

		lower := strings.ToLower(text)
		present := []string{}
		hits := 0
		for _, fam := range a.tables.Emotions {
			famHits := countPresent(lower, fam.Keywords)
			hits += famHits
			if famHits > 0 {
				present = append(present, fam.Name)
			}
		}

		state := "neutral"
		if len(present) > 0 {
			state = present[0]
		}
		intensity := 0.0
		if wc := book.WordCount(text); wc > 0 {
			intensity = float64(hits) / float64(wc)
		}
		timeline = append(timeline, TimelineEntry{
			Chapter:   i,
			State:     state,
			Intensity: intensity,
			Keywords:  present,
		})
	}
	return timeline
}

func (a *Analyzer) findKeyMoments(name string, b *book.ParsedBook) []KeyMoment {
	moments := []KeyMoment{}
	for i, ch := range b.Chapters {
		for j, seg := range ch.Segments {
			if !mentioned(name, seg.Text) {
				continue
			}
			momentType, ok := a.classifyMoment(seg.Text)
			if !ok {
				continue
			}
			moments = append(moments, KeyMoment{
				Chapter:      i,
				Position:     j,
				Type:         momentType,
				Significance: a.momentSignificance(seg.Text),
			})
		}
	}
	return moments
}

// classifyMoment returns the first matching moment family.
func (a *Analyzer) classifyMoment(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, fam := range a.tables.Moments {
		for _, kw := range fam.Keywords {
			if strings.Contains(lower, kw) {
				return fam.Type, true
			}
		}
	}
	return "", false
}

// momentSignificance is the emotion-keyword density of the segment.
func (a *Analyzer) momentSignificance(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, fam := range a.tables.Emotions {
		hits += countPresent(lower, fam.Keywords)
	}
	wc := book.WordCount(text)
	if wc == 0 {
		return 0
	}
	return float64(hits) / float64(wc)
}

// analyzeArc classifies the development arc from the timeline's
// intensity variance: static <= 0.05 < moderate <= 0.1 < dynamic.
func (a *Analyzer) analyzeArc(p *Profile) DevelopmentArc {
	intensities := make([]float64, 0, len(p.Timeline))
	for _, entry := range p.Timeline {
		intensities = append(intensities, entry.Intensity)
	}
	variance := book.Variance(intensities)

	arcType := ArcStatic
	switch {
	case variance > 0.1:
		arcType = ArcDynamic
	case variance > 0.05:
		arcType = ArcModerate
	}

	score := variance * 10
	if score > 1 {
		score = 1
	}

	return DevelopmentArc{
		Type:             arcType,
		DevelopmentScore: score,
		Variance:         variance,
		KeyMomentCount:   len(p.KeyMoments),
	}
}

// analyzeRelationships builds undirected co-occurrence strengths. Ten or
// more shared segments saturate the relationship at 1.0.
func (a *Analyzer) analyzeRelationships(names []string, b *book.ParsedBook) map[string]map[string]float64 {
	counts := map[string]map[string]float64{}

	for _, ch := range b.Chapters {
		for _, seg := range ch.Segments {
			present := []string{}
			for _, name := range names {
				if mentioned(name, seg.Text) {
					present = append(present, name)
				}
			}
			for i := 0; i < len(present); i++ {
				for j := i + 1; j < len(present); j++ {
					addRelation(counts, present[i], present[j])
					addRelation(counts, present[j], present[i])
				}
			}
		}
	}

	for _, rel := range counts {
		for other, count := range rel {
			rel[other] = book.Clamp01(count / 10)
		}
	}
	return counts
}

func addRelation(counts map[string]map[string]float64, from, to string) {
	if counts[from] == nil {
		counts[from] = map[string]float64{}
	}
	counts[from][to]++
}

// countPresent counts how many keywords occur in the lowercased text.
// Each keyword contributes at most once.
func countPresent(lower string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			count++
		}
	}
	return count
}
