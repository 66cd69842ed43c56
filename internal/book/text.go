package book

import "strings"

// quoteMarks covers straight and curly quote characters used to delimit
// dialogue.
const quoteMarks = `"'` + "“”‘’"

// WordCount counts whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ContainsDialogue reports whether text contains a quote-delimited span.
func ContainsDialogue(text string) bool {
	return strings.ContainsAny(text, quoteMarks)
}

// Clamp01 clamps v to the [0, 1] range. Every score, intensity, and
// relevance value in the pipeline passes through this.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Variance is the sample variance of values; 0 for fewer than two values.
func Variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values)-1)
}
