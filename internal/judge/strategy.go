package judge

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Token is one meaningful word of a text after stopword removal.
type Token struct {
	Word    string
	Concept string
	Negated bool
}

// Strategy is the per-language half of the engine: how text is normalized
// and split into concept tokens.
type Strategy interface {
	Tag() language.Tag
	// Normalize folds case and width and collapses everything that is not a
	// letter or digit into single spaces.
	Normalize(text string) string
	Tokens(text string) []Token
	Lexicon() *Lexicon
	// GramSize is the character n-gram length used for surface similarity.
	GramSize() int
}

// lazyLexicon defers building a lexicon index until first use.
type lazyLexicon struct {
	once     sync.Once
	lex      *Lexicon
	concepts func() []Concept
	stem     func(string) string
}

func (l *lazyLexicon) get() *Lexicon {
	l.once.Do(func() {
		l.lex = newLexicon(l.concepts(), l.stem)
	})
	return l.lex
}

// foldText applies NFKC and Unicode case folding. A Caser is stateful, so
// each call gets its own.
func foldText(s string) string {
	return cases.Fold().String(norm.NFKC.String(s))
}

// collapse replaces runs of non letter/digit runes with a single space.
func collapse(s string) string {
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

func unknownConcept(word string) string {
	return "w:" + word
}

// ngrams counts the rune n-grams of s, padded with spaces at both ends so
// that short words still produce grams.
func ngrams(s string, n int) map[string]int {
	runes := []rune(" " + s + " ")
	grams := make(map[string]int)
	if len(runes) < n {
		grams[string(runes)]++
		return grams
	}
	for i := 0; i+n <= len(runes); i++ {
		grams[string(runes[i:i+n])]++
	}
	return grams
}

// dice is the Sørensen–Dice coefficient over n-gram multisets.
func dice(a, b map[string]int) float64 {
	var na, nb, shared int
	for g, ca := range a {
		na += ca
		if cb, ok := b[g]; ok {
			shared += min(ca, cb)
		}
	}
	for _, cb := range b {
		nb += cb
	}
	if na+nb == 0 {
		return 0
	}
	return 2 * float64(shared) / float64(na+nb)
}
