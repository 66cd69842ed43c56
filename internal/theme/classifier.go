// Package theme classifies a book's overall theme. Vote is the fast
// keyword path used by the pipeline; Classifier is a weighted
// bag-of-words model with softmax confidence for callers that want a
// probability alongside the label.
package theme

import (
	"math"
	"regexp"
	"strings"
)

// General is the fallback theme when no keywords match.
const General = "general"

// labelKeywords lists the themes in a fixed order so ties are resolved
// deterministically.
type labelKeywords struct {
	Label    string
	Keywords []string
}

var voteTable = []labelKeywords{
	{"historical", []string{"king", "queen", "castle", "sword", "battle", "ancient"}},
	{"romance", []string{"love", "heart", "kiss", "romance", "passion"}},
	{"adventure", []string{"journey", "quest", "adventure", "explore", "discover"}},
	{"mystery", []string{"secret", "mystery", "clue", "investigate", "solve"}},
	{"scifi", []string{"space", "future", "robot", "technology", "planet"}},
}

// Vote returns the theme whose keywords score the most substring hits
// in the text. Each keyword votes at most once. All-zero votes return
// General; ties keep the earlier label.
func Vote(text string) string {
	lower := strings.ToLower(text)

	best := General
	bestScore := 0
	for _, entry := range voteTable {
		score := 0
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			best = entry.Label
			bestScore = score
		}
	}
	return best
}

var tokenPattern = regexp.MustCompile(`\w+`)

// Classifier predicts a theme from token frequencies with per-word
// weights, reporting a softmax probability for the winner.
type Classifier struct {
	weights []labelWeights
}

type labelWeights struct {
	Label string
	Words map[string]float64
}

// NewClassifier returns a classifier with the built-in weights.
func NewClassifier() *Classifier {
	return &Classifier{weights: []labelWeights{
		{"historical", map[string]float64{
			"king": 1.5, "queen": 1.2, "castle": 1.0,
			"sword": 1.0, "battle": 1.0, "ancient": 1.0,
		}},
		{"romance", map[string]float64{
			"love": 1.5, "heart": 1.2, "kiss": 1.0,
			"romance": 1.0, "passion": 1.0,
		}},
		{"adventure", map[string]float64{
			"journey": 1.2, "quest": 1.2, "adventure": 1.0,
			"explore": 1.0, "discover": 1.0,
		}},
		{"mystery", map[string]float64{
			"secret": 1.2, "mystery": 1.0, "clue": 1.2,
			"investigate": 1.0, "solve": 1.0,
		}},
		{"scifi", map[string]float64{
			"space": 1.2, "future": 1.0, "robot": 1.0,
			"technology": 1.0, "planet": 1.0,
		}},
	}}
}

// Encode builds a token frequency map from the text.
func Encode(text string) map[string]float64 {
	freq := make(map[string]float64)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		freq[tok]++
	}
	return freq
}

// Predict returns the most probable theme and its softmax probability.
// Ties keep the earlier label.
func (c *Classifier) Predict(text string) (string, float64) {
	if len(c.weights) == 0 {
		return General, 0
	}
	embedding := Encode(text)

	scores := make([]float64, len(c.weights))
	maxScore := math.Inf(-1)
	for i, lw := range c.weights {
		for tok, weight := range lw.Words {
			scores[i] += embedding[tok] * weight
		}
		if scores[i] > maxScore {
			maxScore = scores[i]
		}
	}

	total := 0.0
	for i, s := range scores {
		scores[i] = math.Exp(s - maxScore)
		total += scores[i]
	}

	bestIdx := 0
	for i, s := range scores {
		if s > scores[bestIdx] {
			bestIdx = i
		}
	}
	return c.weights[bestIdx].Label, scores[bestIdx] / total
}
