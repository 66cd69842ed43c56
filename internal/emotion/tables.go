package emotion

// EmotionFamily is a named emotion keyword set. Declaration order breaks
// ties when ranking.
type EmotionFamily struct {
	Name     string
	Keywords []string
}

// ContextFamily is a named context-indicator keyword set, checked in
// declaration order.
type ContextFamily struct {
	Name     string
	Keywords []string
}

// Tables holds the keyword data driving emotional scoring.
type Tables struct {
	// Intensity tiers, strongest first.
	HighIntensity   []string
	MediumIntensity []string
	LowIntensity    []string

	// Emotion taxonomy for primary-emotion classification.
	Emotions []EmotionFamily

	// Context indicator families: climactic, reflective, action,
	// dialogue, sensory.
	Contexts []ContextFamily

	// Factor word lists.
	ActionVerbs         []string
	UrgencyWords        []string
	PacingWords         []string
	SensoryWords        map[string][]string
	RichnessWords       []string
	ConflictWords       []string
	EmotionalConflict   []string
	PhysicalConflict    []string
	VulnerabilityWords  []string
	IntensityIndicators []string

	// Emotions that mark a character as vulnerable.
	VulnerableEmotions []string
}

// DefaultTables returns the built-in scoring keyword data.
func DefaultTables() Tables {
	return Tables{
		HighIntensity: []string{
			"rage", "fury", "terror", "ecstasy", "despair", "passion", "hatred",
			"love", "joy", "grief", "panic", "wonder", "shock", "amazement",
		},
		MediumIntensity: []string{
			"angry", "sad", "happy", "afraid", "excited", "worried", "surprised",
			"confused", "annoyed", "pleased", "disappointed", "relieved",
		},
		LowIntensity: []string{
			"slightly", "somewhat", "a bit", "kind of", "sort of", "maybe",
			"perhaps", "possibly", "gently", "softly", "quietly",
		},

		Emotions: []EmotionFamily{
			{"joy", []string{"happy", "joy", "delighted", "excited", "cheerful", "laugh", "smile"}},
			{"sadness", []string{"sad", "depressed", "melancholy", "grief", "sorrow", "tears"}},
			{"anger", []string{"angry", "furious", "rage", "hate", "hostile", "aggressive"}},
			{"fear", []string{"afraid", "fear", "terrified", "scared", "anxious", "worried"}},
			{"love", []string{"love", "adore", "passion", "affection", "tender", "romantic"}},
			{"surprise", []string{"surprised", "shocked", "amazed", "astonished", "stunned"}},
			{"disgust", []string{"disgusted", "revolted", "sickened", "repulsed"}},
			{"trust", []string{"trust", "faith", "confidence", "belief", "reliable"}},
		},

		Contexts: []ContextFamily{
			{"climactic", []string{"suddenly", "finally", "at last", "moment", "turning point"}},
			{"reflective", []string{"thought", "realized", "understood", "remembered", "considered"}},
			{"action", []string{"ran", "jumped", "fought", "moved", "entered", "left", "grabbed"}},
			{"dialogue", []string{"said", "asked", "replied", "whispered", "shouted", "muttered"}},
			{"sensory", []string{"saw", "heard", "felt", "smelled", "tasted", "touched"}},
		},

		ActionVerbs: []string{
			"ran", "jumped", "fought", "moved", "entered", "left", "grabbed", "pushed",
			"pulled", "threw", "caught", "escaped", "chased", "attacked", "defended",
		},
		UrgencyWords: []string{"suddenly", "quickly", "rapidly", "immediately", "instantly", "urgently"},
		PacingWords:  []string{"finally", "at last", "moment", "turning point", "climax"},

		SensoryWords: map[string][]string{
			"visual":    {"saw", "looked", "watched", "observed", "noticed", "appeared", "seemed"},
			"auditory":  {"heard", "listened", "sounded", "echoed", "whispered", "shouted"},
			"tactile":   {"felt", "touched", "grasped", "held", "pressed", "squeezed"},
			"olfactory": {"smelled", "scented", "aroma", "fragrance", "odor", "stench"},
			"gustatory": {"tasted", "flavor", "sweet", "bitter", "sour", "spicy"},
		},
		RichnessWords: []string{"vivid", "bright", "loud", "soft", "sharp", "smooth", "rough"},

		ConflictWords: []string{
			"fight", "battle", "conflict", "argument", "dispute", "disagreement",
			"struggle", "war", "attack", "defend", "resist", "oppose", "challenge",
		},
		EmotionalConflict: []string{
			"hate", "anger", "rage", "fury", "resentment", "jealousy", "envy",
			"betrayal", "deception", "lies", "secrets", "mistrust",
		},
		PhysicalConflict: []string{
			"punch", "kick", "hit", "strike", "wound", "injury", "blood", "pain",
		},

		VulnerabilityWords: []string{
			"confessed", "admitted", "revealed", "told", "shared", "opened up",
			"trusted", "believed", "hoped", "feared", "worried", "doubted",
		},
		IntensityIndicators: []string{"shouted", "whispered", "cried", "laughed", "screamed", "muttered"},

		VulnerableEmotions: []string{"fear", "sadness", "love", "trust"},
	}
}
