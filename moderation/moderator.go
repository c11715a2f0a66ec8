package moderation

import (
	"slices"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator finds forbidden substrings in a text, ignoring case.
// The automaton is read-only once built, so a Moderator can be shared by
// every connection.
type Moderator struct {
	matcher *goahocorasick.Machine
}

// NewModerator initializes the Aho-Corasick automaton with a lower-cased,
// deduplicated version of the provided words. Blank words are ignored.
func NewModerator(words []string) (Moderator, error) {
	normalized := lo.Uniq(lo.FilterMap(words, func(word string, _ int) (string, bool) {
		word = strings.TrimSpace(word)
		return string(lower([]rune(word))), word != ""
	}))
	if len(normalized) == 0 {
		return Moderator{}, nil
	}
	slices.Sort(normalized)

	patterns := make([][]rune, len(normalized))
	for i, word := range normalized {
		patterns[i] = []rune(word)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m}, nil
}

// Find returns the first forbidden word contained in content.
func (m Moderator) Find(content string) (string, bool) {
	if m.matcher == nil || content == "" {
		return "", false
	}
	terms := m.matcher.MultiPatternSearch(lower([]rune(content)), true)
	if len(terms) == 0 {
		return "", false
	}
	return string(terms[0].Word), true
}

func lower(runes []rune) []rune {
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}
	return runes
}
