package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVote(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "historical",
			text:     "The king rode from the castle with his sword raised for battle.",
			expected: "historical",
		},
		{
			name:     "romance",
			text:     "Her heart raced as she confessed her love with a kiss.",
			expected: "romance",
		},
		{
			name:     "scifi",
			text:     "The robot piloted the ship through space toward a distant planet.",
			expected: "scifi",
		},
		{
			name:     "no keywords falls back to general",
			text:     "Nothing much happened on Tuesday.",
			expected: General,
		},
		{
			name:     "empty text",
			text:     "",
			expected: General,
		},
		{
			name: "tie keeps the earlier theme",
			// One historical hit and one romance hit.
			text:     "A sword and a kiss.",
			expected: "historical",
		},
		{
			name:     "case insensitive",
			text:     "THE QUEST BEGAN WITH A LONG JOURNEY.",
			expected: "adventure",
		},
		{
			name: "each keyword votes once",
			// Three mystery keywords beat one repeated historical one.
			text:     "king king king king, but a secret clue to investigate",
			expected: "mystery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Vote(tt.text))
		})
	}
}

func TestEncode(t *testing.T) {
	freq := Encode("The space ship drifted through space.")

	assert.Equal(t, 2.0, freq["space"])
	assert.Equal(t, 1.0, freq["drifted"])
	assert.Equal(t, 1.0, freq["the"])
	assert.NotContains(t, freq, "planet")
}

func TestEncode_Empty(t *testing.T) {
	assert.Empty(t, Encode(""))
}

func TestClassifier_Predict(t *testing.T) {
	c := NewClassifier()

	t.Run("weighted keywords win", func(t *testing.T) {
		label, prob := c.Predict("love love heart")
		assert.Equal(t, "romance", label)
		assert.Greater(t, prob, 0.0)
		assert.LessOrEqual(t, prob, 1.0)
	})

	t.Run("repeated tokens add up", func(t *testing.T) {
		label, _ := c.Predict("space space space versus one castle")
		assert.Equal(t, "scifi", label)
	})

	t.Run("no matching tokens ties to the first label", func(t *testing.T) {
		label, prob := c.Predict("an uneventful afternoon")
		assert.Equal(t, "historical", label)
		assert.InDelta(t, 0.2, prob, 1e-9)
	})

	t.Run("confidence grows with evidence", func(t *testing.T) {
		_, weak := c.Predict("love")
		_, strong := c.Predict("love love love love")
		assert.Greater(t, strong, weak)
	})
}
