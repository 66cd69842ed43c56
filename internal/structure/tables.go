package structure

// Tables holds the keyword families driving structural analysis. They
// are immutable configuration injected at construction so tests can swap
// them out.
type Tables struct {
	// Pacing keyword families: action, tension, climax, resolution.
	Pacing map[string][]string

	// Emotion keywords used for chapter emotional intensity.
	Emotion []string

	// Conflict keywords driving tension scores.
	Conflict []string

	// Tension classification families, checked in order.
	PhysicalConflict     []string
	VerbalConflict       []string
	EnvironmentalTension []string

	// Story beat markers.
	TurningPoint         []string
	CharacterDevelopment []string

	// Scene transition markers (case-sensitive, sentence-leading words).
	Transitions []string
}

// DefaultTables returns the built-in keyword families.
func DefaultTables() Tables {
	return Tables{
		Pacing: map[string][]string{
			"action":     {"fight", "battle", "chase", "run", "attack", "defend", "escape"},
			"tension":    {"suddenly", "finally", "at last", "meanwhile", "however", "but"},
			"climax":     {"climax", "peak", "moment", "turning point", "decision", "choice"},
			"resolution": {"finally", "at last", "peace", "calm", "settled", "resolved"},
		},
		Emotion:  []string{"love", "hate", "fear", "joy", "sadness", "anger", "surprise"},
		Conflict: []string{"fight", "battle", "conflict", "danger", "threat", "attack", "escape"},

		PhysicalConflict:     []string{"fight", "battle", "attack"},
		VerbalConflict:       []string{"argument", "dispute", "disagreement"},
		EnvironmentalTension: []string{"danger", "threat", "risk"},

		TurningPoint:         []string{"suddenly", "finally", "at last", "turning point"},
		CharacterDevelopment: []string{"decision", "choice", "realized", "understood"},

		Transitions: []string{"Meanwhile", "Later", "Soon", "After", "Before", "When", "While"},
	}
}
