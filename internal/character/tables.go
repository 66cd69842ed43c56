package character

// EmotionFamily is one entry of the emotion taxonomy. Declaration order
// is significant: ties between equal scores resolve to the earlier entry.
type EmotionFamily struct {
	Name     string
	Keywords []string
}

// PatternFamily is one speech-pattern keyword family, ordered like the
// emotion taxonomy.
type PatternFamily struct {
	Name     string
	Keywords []string
}

// MomentFamily classifies key character moments. First matching family
// wins per segment.
type MomentFamily struct {
	Type     string
	Keywords []string
}

// Tables holds the keyword data driving character analysis.
type Tables struct {
	Emotions  []EmotionFamily
	Patterns  []PatternFamily
	Moments   []MomentFamily
	StopWords map[string]bool

	// AttributionVerbs complete the "Name <verb>" speech patterns.
	AttributionVerbs []string
}

// DefaultTables returns the built-in character-analysis keyword data.
func DefaultTables() Tables {
	return Tables{
		Emotions: []EmotionFamily{
			{"anger", []string{"angry", "furious", "rage", "hate", "hostile", "aggressive", "fierce"}},
			{"sadness", []string{"sad", "depressed", "melancholy", "grief", "sorrow", "tears", "wept"}},
			{"joy", []string{"happy", "joy", "delighted", "excited", "cheerful", "laugh", "smile"}},
			{"fear", []string{"afraid", "fear", "terrified", "scared", "anxious", "worried", "panic"}},
			{"love", []string{"love", "adore", "passion", "affection", "tender", "romantic", "heart"}},
			{"surprise", []string{"surprised", "shocked", "amazed", "astonished", "stunned", "wonder"}},
			{"disgust", []string{"disgusted", "revolted", "sickened", "repulsed", "nauseated"}},
			{"trust", []string{"trust", "faith", "confidence", "belief", "reliable", "loyal"}},
		},
		Patterns: []PatternFamily{
			{"formal", []string{"indeed", "therefore", "thus", "hence", "moreover", "furthermore"}},
			{"casual", []string{"yeah", "okay", "sure", "whatever", "gonna", "wanna"}},
			{"aggressive", []string{"damn", "hell", "bastard", "idiot", "fool", "coward"}},
			{"submissive", []string{"sorry", "please", "forgive", "excuse", "pardon", "beg"}},
			{"confident", []string{"certainly", "absolutely", "definitely", "obviously", "clearly"}},
		},
		Moments: []MomentFamily{
			{"revelation", []string{"realized", "understood", "knew", "discovered"}},
			{"decision", []string{"decided", "chose", "determined", "resolved"}},
			{"transformation", []string{"changed", "transformed", "became", "turned"}},
			{"confession", []string{"confessed", "admitted", "revealed", "told"}},
			{"death", []string{"died", "killed", "murdered", "sacrificed"}},
		},
		StopWords: map[string]bool{
			"the": true, "and": true, "but": true, "for": true, "with": true,
			"from": true, "this": true, "that": true, "they": true, "them": true,
			"their": true, "there": true, "here": true, "when": true, "where": true,
			"what": true, "why": true, "how": true, "who": true, "which": true,
			"each": true, "every": true, "some": true, "any": true, "all": true,
			"none": true, "both": true, "either": true, "neither": true,
			"first": true, "last": true, "next": true, "previous": true,
			"current": true, "former": true, "latter": true,
		},
		AttributionVerbs: []string{"said", "asked", "replied", "whispered", "shouted"},
	}
}
