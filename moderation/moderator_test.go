package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name:     "Leet speak folding",
			input:    "what a b4dg3r move",
			expected: "what a ****** move",
		},
		{
			name:     "Uppercase and internal punctuation",
			input:    "S-N-A-K-E is here",
			expected: "********* is here",
		},
		{
			name:     "Clean text untouched",
			input:    "nothing to see here",
			expected: "nothing to see here",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "Accented text untouched (UTF-8)",
			input:    "Un été tranquille",
			expected: "Un été tranquille",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestLoadCensoredWords_Embedded_Dictionaries(t *testing.T) {
	req := require.New(t)

	data, err := LoadCensoredWords()
	req.NoError(err)
	req.NotEmpty(data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)

	// Comments and blank lines are not words
	for _, w := range data.Words {
		req.NotEmpty(w)
		req.NotContains(w, "#")
	}
}
