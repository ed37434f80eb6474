// Package prompt builds the instruction strings sent to generative backends.
package prompt

import (
	"fmt"
	"strings"

	"github.com/alkime/sonaris/internal/apperr"
)

// Request is a single generation submission: a harmonic key and a style.
type Request struct {
	Key   string
	Style string
}

// Validate rejects requests with an empty key or style.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Key) == "" {
		return fmt.Errorf("%w: key must not be empty", apperr.ErrState)
	}

	if strings.TrimSpace(r.Style) == "" {
		return fmt.Errorf("%w: style must not be empty", apperr.ErrState)
	}

	return nil
}

// KeywordForm selects how keyword ideas are requested.
type KeywordForm int

const (
	// KeywordsRange asks for four to six keywords.
	KeywordsRange KeywordForm = iota
	// KeywordsOneWord asks for at most five single-word lyric ideas.
	KeywordsOneWord
)

// Progression returns the chord progression prompt for the request.
func Progression(r Request) string {
	return fmt.Sprintf(
		"Generate a chord progression in the key of %s in the style of %s. "+
			"Only give the chords and no explanation.",
		r.Key, r.Style)
}

// Keywords returns the keyword prompt for the request in the given form.
func Keywords(r Request, form KeywordForm) string {
	if form == KeywordsOneWord {
		return fmt.Sprintf(
			"Generate one word lyric ideas for a song in the key of %s in the style of %s. "+
				"Only give the words and no explanation. "+
				"There should only be one word per lyric idea and no more than five lyric ideas.",
			r.Key, r.Style)
	}

	return fmt.Sprintf(
		"Generate 4 to 6 keywords for a song in the key of %s in the style of %s. "+
			"Only give the words and no explanation.",
		r.Key, r.Style)
}
