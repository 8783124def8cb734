package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  Dune  ", "Dune"},
		{"collapses runs", "The  Left\tHand\n of Darkness", "The Left Hand of Darkness"},
		{"drops null bytes", "Hyperion\x00", "Hyperion"},
		{"empty", "   ", ""},
		{"already clean", "Solaris", "Solaris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanText(tt.input))
		})
	}
}

func TestTitleKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "The Dispossessed", "the dispossessed"},
		{"collapses whitespace", "  Roadside   Picnic ", "roadside picnic"},
		{"folds diacritics", "Café on the Edge", "cafe on the edge"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TitleKey(tt.input))
		})
	}
}

func TestTitleKey_MatchesDriftedTitles(t *testing.T) {
	// A meeting-log title and an export title that differ only in case,
	// spacing, and accents must produce the same key.
	assert.Equal(t, TitleKey("LES  Misérables"), TitleKey("les miserables"))
}

func TestMemberColumn(t *testing.T) {
	assert.Equal(t, "Koen_v_W", MemberColumn(" Koen  v W "))
	assert.Equal(t, "Thirsa", MemberColumn("Thirsa"))
}
