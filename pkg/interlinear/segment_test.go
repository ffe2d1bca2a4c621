package interlinear

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple sentences",
			input:    "Der Hund schläft. Die Katze spielt.",
			expected: []string{"Der Hund schläft", "Die Katze spielt"},
		},
		{
			name:     "ellipsis collapses to one boundary",
			input:    "Warte... ich komme",
			expected: []string{"Warte", "ich komme"},
		},
		{
			name:     "newlines are boundaries",
			input:    "erste Zeile\nzweite Zeile",
			expected: []string{"erste Zeile", "zweite Zeile"},
		},
		{
			name:     "blank lines collapse",
			input:    "eins\n\n\nzwei",
			expected: []string{"eins", "zwei"},
		},
		{
			name:     "mixed delimiter runs",
			input:    "eins.\n.zwei.\n",
			expected: []string{"eins", "zwei"},
		},
		{
			name:     "fragments are trimmed",
			input:    "  eins  .  zwei  ",
			expected: []string{"eins", "zwei"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: []string{},
		},
		{
			name:     "only delimiters",
			input:    "...\n\n.",
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitSentences(tt.input))
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Run("splits on whitespace runs", func(t *testing.T) {
		assert.Equal(t, []string{"der", "schnelle", "Fuchs"}, Tokenize("der  schnelle\tFuchs"))
	})

	t.Run("keeps punctuation and case", func(t *testing.T) {
		assert.Equal(t, []string{"Hallo,", "Welt!"}, Tokenize("Hallo, Welt!"))
	})

	t.Run("empty sentence", func(t *testing.T) {
		assert.Empty(t, Tokenize("   "))
	})
}
