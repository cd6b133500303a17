// Package textnorm canonicalises Persian and Latin text before embedding.
//
// The same Normaliser runs when an index is built and when it is queried,
// so stored and query vectors are comparable.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/skillbot/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.TextNormaliser = (*Normaliser)(nil)

// persianLetters maps Arabic code points onto their Persian forms.
var persianLetters = map[rune]rune{
	'ي': 'ی', // arabic yeh
	'ى': 'ی', // alef maksura
	'ك': 'ک', // arabic kaf
	'ة': 'ه', // teh marbuta
	'ۀ': 'ه',
	'أ': 'ا',
	'إ': 'ا',
	'ٱ': 'ا',
}

// Normaliser applies lowercasing, Unicode compatibility folding and
// Persian letter and digit unification, then drops everything that is
// not a letter, digit or space. It is safe for concurrent use.
type Normaliser struct{}

// New creates a normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Normalise returns the canonical, whitespace-joined token form of text.
// Invalid UTF-8 is replaced rather than rejected.
func (n *Normaliser) Normalise(text string) string {
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, " ")
	}

	text = norm.NFKC.String(text)
	// cases.Caser holds state, so one per call.
	text = cases.Lower(language.Und).String(text)
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune('۰' + (r - '0'))
		case r >= '٠' && r <= '٩':
			b.WriteRune('۰' + (r - '٠'))
		case persianLetters[r] != 0:
			b.WriteRune(persianLetters[r])
		case r == '\u200c' || r == '\u200d' || r == '\u0640':
			// zero-width joiners and tatweel vanish inside words
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsMark(r):
			// diacritics
		default:
			b.WriteByte(' ')
		}
	}

	// Dropping joiners can bring composable runes together.
	return strings.Join(strings.Fields(norm.NFKC.String(b.String())), " ")
}
