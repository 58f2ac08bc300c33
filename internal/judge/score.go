package judge

import "math"

// Scoring weights. A guess is judged mostly on whether it names the gist of
// the solution, then on whether what it says is backed by the puzzle, and
// only lightly on surface wording.
const (
	gistWeight      = 0.65
	precisionWeight = 0.25
	surfaceWeight   = 0.10

	// gistSaturation is the share of the weighted solution a guess must
	// cover to count as having the whole gist.
	gistSaturation = 0.55

	// A guess naming fewer than minGistConcepts solution concepts has its
	// gist capped at partialGist, so one keyword cannot reach Solved.
	minGistConcepts = 2
	partialGist     = 0.5

	relatedCredit   = 0.6
	narrativeCredit = 0.5
	conflictPenalty = 0.5
)

func score(guess string, k *Knowledge) int {
	s := k.strategy
	text := s.Normalize(guess)
	if text == "" {
		return 0
	}
	if text == k.answerText {
		return 100
	}

	surface := dice(ngrams(text, s.GramSize()), k.answerGrams)
	toks := dedupe(s.Tokens(guess))

	gist := surface
	if k.answerTotal > 0 {
		share, named := coverage(toks, k)
		gist = math.Min(1, share/gistSaturation)
		if named < min(minGistConcepts, len(k.order)) {
			gist = math.Min(gist, partialGist)
		}
	}
	precision := precisionOf(toks, k)

	v := gistWeight*gist + precisionWeight*precision + surfaceWeight*surface
	if conflicting(toks, k) {
		v *= conflictPenalty
	}
	return clampPercent(v)
}

// coverage is the weighted share of the solution the guess names, with
// partial credit for related ideas, and how many solution concepts it
// names directly.
func coverage(toks []Token, k *Knowledge) (float64, int) {
	lex := k.strategy.Lexicon()
	var (
		covered float64
		named   int
	)
	for _, a := range k.order {
		best := 0.0
		for _, t := range toks {
			if t.Negated {
				continue
			}
			if t.Concept == a {
				best = 1
				break
			}
			if lex.Related(t.Concept, a) {
				best = relatedCredit
			}
		}
		if best == 1 {
			named++
		}
		covered += best * k.answer[a]
	}
	return covered / k.answerTotal, named
}

// precisionOf is the weighted share of the guess backed by the puzzle.
func precisionOf(toks []Token, k *Knowledge) float64 {
	lex := k.strategy.Lexicon()
	var total, backed float64
	for _, t := range toks {
		w := lex.Salience(t.Concept)
		total += w
		if t.Negated {
			continue
		}
		switch {
		case k.inAnswer(t.Concept):
			backed += w
		case k.relatedToAnswer(t.Concept):
			backed += relatedCredit * w
		case k.inNarrative(t.Concept), k.relatedToNarrative(t.Concept):
			backed += narrativeCredit * w
		}
	}
	if total == 0 {
		return 0
	}
	return backed / total
}

// conflicting reports whether the guess commits to an alternative the
// solution rules out without also naming the solution's own choice.
func conflicting(toks []Token, k *Knowledge) bool {
	lex := k.strategy.Lexicon()
	named := make(map[string]bool)
	for _, t := range toks {
		if k.inAnswer(t.Concept) {
			if f := lex.Facet(t.Concept); f != "" {
				named[f] = true
			}
		}
	}
	for _, t := range toks {
		if !t.Negated && k.contradicts(t.Concept) && !named[lex.Facet(t.Concept)] {
			return true
		}
	}
	return false
}

func clampPercent(v float64) int {
	p := int(math.Round(v * 100))
	return max(0, min(100, p))
}
