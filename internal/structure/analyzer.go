// Package structure derives the narrative shape of a book: story phases,
// per-chapter roles and densities, pacing curve, story beats, and
// tension points. It is a leaf stage with no pipeline dependencies.
package structure

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdulachik/cinemark/internal/book"
)

// Structural roles and story phases.
const (
	RoleExposition   = "exposition"
	RoleSetup        = "setup"
	RoleRisingAction = "rising_action"
	RoleClimax       = "climax"
	RoleResolution   = "resolution"

	PhaseExposition    = "exposition"
	PhaseRisingAction  = "rising_action"
	PhaseClimax        = "climax"
	PhaseFallingAction = "falling_action"
)

// Beat types.
const (
	BeatTurningPoint         = "turning_point"
	BeatCharacterDevelopment = "character_development"
)

// Tension types.
const (
	TensionPhysical      = "physical_conflict"
	TensionVerbal        = "verbal_conflict"
	TensionEnvironmental = "environmental_tension"
	TensionEmotional     = "emotional_tension"
)

// OverallStructure summarizes book-level shape.
type OverallStructure struct {
	TotalChapters        int               `json:"total_chapters"`
	TotalSegments        int               `json:"total_content_segments"`
	AverageChapterLength float64           `json:"average_chapter_length"`
	StoryPhases          map[string][]int  `json:"story_phases"`
	Balance              StructuralBalance `json:"structural_balance"`
}

// StructuralBalance measures how evenly the chapters are sized.
type StructuralBalance struct {
	BalanceScore      float64 `json:"balance_score"`
	PacingConsistency float64 `json:"pacing_consistency"`
	LengthVariance    float64 `json:"length_variance"`
}

// ChapterAnalysis holds per-chapter structural metrics.
type ChapterAnalysis struct {
	Index              int     `json:"chapter_index"`
	Title              string  `json:"chapter_title"`
	SegmentCount       int     `json:"content_length"`
	DialogueDensity    float64 `json:"dialogue_density"`
	ActionDensity      float64 `json:"action_density"`
	EmotionalIntensity float64 `json:"emotional_intensity"`
	PacingScore        float64 `json:"pacing_score"`
	StructuralRole     string  `json:"structural_role"`
}

// StoryBeat flags a narrative turning point or development moment.
type StoryBeat struct {
	Chapter   int     `json:"chapter"`
	Position  int     `json:"position"`
	Type      string  `json:"beat_type"`
	Intensity float64 `json:"intensity"`
}

// TensionPoint flags a segment whose conflict-keyword density exceeds
// the threshold.
type TensionPoint struct {
	Chapter  int     `json:"chapter"`
	Position int     `json:"position"`
	Score    float64 `json:"tension_score"`
	Type     string  `json:"tension_type"`
}

// EmotionalArcs tracks per-chapter emotional scores.
type EmotionalArcs struct {
	Overall  []float64 `json:"overall_emotion"`
	Dialogue []float64 `json:"dialogue_emotion"`
}

// SceneTransition is a detected scene change marker.
type SceneTransition struct {
	Chapter  int    `json:"chapter"`
	Position int    `json:"position"`
	Type     string `json:"transition_type"`
}

// Rhythm holds narrative rhythm statistics.
type Rhythm struct {
	SentenceLengths []float64         `json:"sentence_lengths"`
	Transitions     []SceneTransition `json:"scene_transitions"`
}

// Analysis is the structural analyzer output.
type Analysis struct {
	Overall       OverallStructure  `json:"overall_structure"`
	Chapters      []ChapterAnalysis `json:"chapter_analysis"`
	PacingCurve   []float64         `json:"pacing_curve"`
	StoryBeats    []StoryBeat       `json:"story_beats"`
	TensionPoints []TensionPoint    `json:"tension_points"`
	EmotionalArcs EmotionalArcs     `json:"emotional_arcs"`
	Rhythm        Rhythm            `json:"narrative_rhythm"`
}

// HasBeatAt reports whether a story beat coincides with the segment.
func (a *Analysis) HasBeatAt(chapter, position int) bool {
	for _, b := range a.StoryBeats {
		if b.Chapter == chapter && b.Position == position {
			return true
		}
	}
	return false
}

// HasTensionAt reports whether a tension point coincides with the segment.
func (a *Analysis) HasTensionAt(chapter, position int) bool {
	for _, t := range a.TensionPoints {
		if t.Chapter == chapter && t.Position == position {
			return true
		}
	}
	return false
}

// Empty returns the documented default analysis used when the stage
// fails: zeroed counts, empty lists.
func Empty() Analysis {
	return Analysis{
		Overall: OverallStructure{
			StoryPhases: map[string][]int{},
		},
		Chapters:      []ChapterAnalysis{},
		PacingCurve:   []float64{},
		StoryBeats:    []StoryBeat{},
		TensionPoints: []TensionPoint{},
	}
}

// Config holds analyzer configuration.
type Config struct {
	// Tables overrides the default keyword families.
	Tables *Tables
	// TensionThreshold is the minimum conflict density for a tension
	// point. Defaults to 0.6.
	TensionThreshold float64
}

// Analyzer derives narrative structure from raw segments.
type Analyzer struct {
	tables           Tables
	tensionThreshold float64
}

// New creates a structural analyzer.
func New(cfg Config) *Analyzer {
	tables := DefaultTables()
	if cfg.Tables != nil {
		tables = *cfg.Tables
	}
	threshold := cfg.TensionThreshold
	if threshold == 0 {
		threshold = 0.6
	}
	return &Analyzer{tables: tables, tensionThreshold: threshold}
}

// Analyze derives the complete narrative structure of the book.
func (a *Analyzer) Analyze(b *book.ParsedBook) (Analysis, error) {
	if b == nil {
		return Empty(), fmt.Errorf("structure: nil parsed book")
	}

	slog.Debug("starting structural analysis", "book", b.Title, "chapters", len(b.Chapters))

	analysis := Analysis{
		Overall:       a.analyzeOverall(b.Chapters),
		Chapters:      a.analyzeChapters(b.Chapters),
		PacingCurve:   a.pacingCurve(b.Chapters),
		StoryBeats:    a.findStoryBeats(b.Chapters),
		TensionPoints: a.findTensionPoints(b.Chapters),
		EmotionalArcs: a.mapEmotionalArcs(b.Chapters),
		Rhythm:        a.analyzeRhythm(b.Chapters),
	}

	slog.Debug("structural analysis completed",
		"beats", len(analysis.StoryBeats),
		"tension_points", len(analysis.TensionPoints),
	)
	return analysis, nil
}

func (a *Analyzer) analyzeOverall(chapters []book.Chapter) OverallStructure {
	totalSegments := 0
	for _, ch := range chapters {
		totalSegments += len(ch.Segments)
	}

	avg := 0.0
	if len(chapters) > 0 {
		avg = float64(totalSegments) / float64(len(chapters))
	}

	return OverallStructure{
		TotalChapters:        len(chapters),
		TotalSegments:        totalSegments,
		AverageChapterLength: avg,
		StoryPhases:          storyPhases(len(chapters)),
		Balance:              assessBalance(chapters),
	}
}

// storyPhases partitions chapter indexes into the four classical phases
// by quartile. Integer division; the last phase absorbs the remainder.
func storyPhases(total int) map[string][]int {
	phases := map[string][]int{
		PhaseExposition:    indexRange(0, maxInt(1, total/4)),
		PhaseRisingAction:  indexRange(maxInt(1, total/4), total/2),
		PhaseClimax:        indexRange(total/2, 3*total/4),
		PhaseFallingAction: indexRange(3*total/4, total),
	}
	return phases
}

func indexRange(from, to int) []int {
	idx := []int{}
	for i := from; i < to; i++ {
		idx = append(idx, i)
	}
	return idx
}

func assessBalance(chapters []book.Chapter) StructuralBalance {
	if len(chapters) == 0 {
		return StructuralBalance{}
	}

	lengths := make([]float64, len(chapters))
	sum := 0.0
	for i, ch := range chapters {
		lengths[i] = float64(len(ch.Segments))
		sum += lengths[i]
	}
	avg := sum / float64(len(chapters))

	variance := 0.0
	for _, l := range lengths {
		d := l - avg
		variance += d * d
	}
	variance /= float64(len(chapters))

	balance := 0.0
	if avg > 0 {
		balance = 1 - variance/(avg*avg)
		if balance < 0 {
			balance = 0
		}
	}

	consistency := 0.0
	if avg > 0 {
		consistency = 1 - variance/avg
	}

	return StructuralBalance{
		BalanceScore:      balance,
		PacingConsistency: consistency,
		LengthVariance:    variance,
	}
}

func (a *Analyzer) analyzeChapters(chapters []book.Chapter) []ChapterAnalysis {
	analyses := make([]ChapterAnalysis, 0, len(chapters))
	for i, ch := range chapters {
		title := ch.Title
		if title == "" {
			title = fmt.Sprintf("Chapter %d", i+1)
		}
		analyses = append(analyses, ChapterAnalysis{
			Index:              i,
			Title:              title,
			SegmentCount:       len(ch.Segments),
			DialogueDensity:    dialogueDensity(ch.Segments),
			ActionDensity:      a.actionDensity(ch.Segments),
			EmotionalIntensity: a.chapterEmotion(ch.Segments),
			PacingScore:        a.chapterPacing(ch.Segments),
			StructuralRole:     ChapterRole(i, len(chapters)),
		})
	}
	return analyses
}

// ChapterRole assigns a structural role by chapter position.
func ChapterRole(index, total int) string {
	switch {
	case index == 0:
		return RoleExposition
	case index < total/4:
		return RoleSetup
	case index < total/2:
		return RoleRisingAction
	case index < 3*total/4:
		return RoleClimax
	default:
		return RoleResolution
	}
}

func dialogueDensity(segments []book.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	count := 0
	for _, seg := range segments {
		if book.ContainsDialogue(seg.Text) {
			count++
		}
	}
	return float64(count) / float64(len(segments))
}

// actionDensity counts action tokens normalized by total word count.
func (a *Analyzer) actionDensity(segments []book.Segment) float64 {
	actionWords := map[string]bool{}
	for _, w := range a.tables.Pacing["action"] {
		actionWords[w] = true
	}

	hits, words := 0, 0
	for _, seg := range segments {
		for _, w := range strings.Fields(seg.Text) {
			words++
			if actionWords[strings.ToLower(w)] {
				hits++
			}
		}
	}
	if words == 0 {
		return 0
	}
	return float64(hits) / float64(words)
}

// chapterEmotion averages per-segment emotion keyword densities.
func (a *Analyzer) chapterEmotion(segments []book.Segment) float64 {
	if len(segments) == 0 {
		return 0
	}
	sum := 0.0
	for _, seg := range segments {
		text := strings.ToLower(seg.Text)
		hits := 0
		for _, kw := range a.tables.Emotion {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if wc := book.WordCount(seg.Text); wc > 0 {
			sum += float64(hits) / float64(wc)
		}
	}
	return sum / float64(len(segments))
}

// chapterPacing counts pacing keyword presences across all families,
// normalized by total word count.
func (a *Analyzer) chapterPacing(segments []book.Segment) float64 {
	hits, words := 0, 0
	for _, seg := range segments {
		text := strings.ToLower(seg.Text)
		words += book.WordCount(seg.Text)
		for _, keywords := range a.tables.Pacing {
			for _, kw := range keywords {
				if strings.Contains(text, kw) {
					hits++
				}
			}
		}
	}
	if words == 0 {
		return 0
	}
	return float64(hits) / float64(words)
}

func (a *Analyzer) pacingCurve(chapters []book.Chapter) []float64 {
	curve := make([]float64, 0, len(chapters))
	for _, ch := range chapters {
		curve = append(curve, a.chapterPacing(ch.Segments))
	}
	return curve
}

// findStoryBeats flags beat markers per segment. Multiple beats may fire
// on the same segment.
func (a *Analyzer) findStoryBeats(chapters []book.Chapter) []StoryBeat {
	beats := []StoryBeat{}
	for i, ch := range chapters {
		for j, seg := range ch.Segments {
			text := strings.ToLower(seg.Text)
			if containsAnyKeyword(text, a.tables.TurningPoint) {
				beats = append(beats, StoryBeat{
					Chapter: i, Position: j,
					Type: BeatTurningPoint, Intensity: 0.8,
				})
			}
			if containsAnyKeyword(text, a.tables.CharacterDevelopment) {
				beats = append(beats, StoryBeat{
					Chapter: i, Position: j,
					Type: BeatCharacterDevelopment, Intensity: 0.6,
				})
			}
		}
	}
	return beats
}

func (a *Analyzer) findTensionPoints(chapters []book.Chapter) []TensionPoint {
	points := []TensionPoint{}
	for i, ch := range chapters {
		for j, seg := range ch.Segments {
			text := strings.ToLower(seg.Text)
			score := a.tensionScore(text)
			if score > a.tensionThreshold {
				points = append(points, TensionPoint{
					Chapter: i, Position: j,
					Score: score,
					Type:  a.classifyTension(text),
				})
			}
		}
	}
	return points
}

// tensionScore is the conflict-keyword density of the lowercased text.
func (a *Analyzer) tensionScore(text string) float64 {
	hits := 0
	for _, kw := range a.tables.Conflict {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	wc := book.WordCount(text)
	if wc == 0 {
		return 0
	}
	return float64(hits) / float64(wc)
}

// classifyTension picks the tension family. First match wins.
func (a *Analyzer) classifyTension(text string) string {
	switch {
	case containsAnyKeyword(text, a.tables.PhysicalConflict):
		return TensionPhysical
	case containsAnyKeyword(text, a.tables.VerbalConflict):
		return TensionVerbal
	case containsAnyKeyword(text, a.tables.EnvironmentalTension):
		return TensionEnvironmental
	default:
		return TensionEmotional
	}
}

func (a *Analyzer) mapEmotionalArcs(chapters []book.Chapter) EmotionalArcs {
	arcs := EmotionalArcs{
		Overall:  make([]float64, 0, len(chapters)),
		Dialogue: make([]float64, 0, len(chapters)),
	}
	for _, ch := range chapters {
		arcs.Overall = append(arcs.Overall, a.chapterEmotion(ch.Segments))
		arcs.Dialogue = append(arcs.Dialogue, a.dialogueEmotion(ch.Segments))
	}
	return arcs
}

// dialogueEmotion averages emotion density over dialogue segments only.
func (a *Analyzer) dialogueEmotion(segments []book.Segment) float64 {
	sum, count := 0.0, 0
	for _, seg := range segments {
		if !book.ContainsDialogue(seg.Text) {
			continue
		}
		count++
		text := strings.ToLower(seg.Text)
		hits := 0
		for _, kw := range a.tables.Emotion {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if wc := book.WordCount(seg.Text); wc > 0 {
			sum += float64(hits) / float64(wc)
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func (a *Analyzer) analyzeRhythm(chapters []book.Chapter) Rhythm {
	rhythm := Rhythm{
		SentenceLengths: []float64{},
		Transitions:     []SceneTransition{},
	}
	for i, ch := range chapters {
		for j, seg := range ch.Segments {
			rhythm.SentenceLengths = append(rhythm.SentenceLengths, averageSentenceLength(seg.Text))
			if kind, ok := a.transitionType(seg.Text); ok {
				rhythm.Transitions = append(rhythm.Transitions, SceneTransition{
					Chapter: i, Position: j, Type: kind,
				})
			}
		}
	}
	return rhythm
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

// transitionType classifies a scene transition, if the segment starts one.
func (a *Analyzer) transitionType(text string) (string, bool) {
	found := false
	for _, marker := range a.tables.Transitions {
		if strings.Contains(text, marker) {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}
	switch {
	case strings.Contains(text, "Meanwhile"):
		return "parallel_action", true
	case strings.Contains(text, "Later") || strings.Contains(text, "Soon"):
		return "time_advance", true
	case strings.Contains(text, "When") || strings.Contains(text, "While"):
		return "simultaneous_action", true
	default:
		return "general_transition", true
	}
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
