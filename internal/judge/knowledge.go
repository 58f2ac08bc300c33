package judge

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Knowledge is the judging view of one puzzle: which ideas the solution
// contains, which of them the narrative already gives away, and what the
// solution looks like on the surface. It is never mutated after
// construction and is safe to share between goroutines.
type Knowledge struct {
	strategy Strategy

	answerText  string
	answerGrams map[string]int

	// answer maps each solution concept to its weight; order is the sorted
	// key list so that sums are reproducible.
	answer      map[string]float64
	order       []string
	answerTotal float64

	// hidden is the part of the answer that neither the narrative nor the
	// hints reveal.
	hidden      map[string]float64
	hiddenTotal float64

	narrative map[string]struct{}
	negated   map[string]struct{}
	facets    map[string]struct{}
}

func buildKnowledge(s Strategy, content, answer string, hints []string) *Knowledge {
	lex := s.Lexicon()

	narrative := make(map[string]struct{})
	for _, t := range s.Tokens(content) {
		narrative[t.Concept] = struct{}{}
	}
	clued := make(map[string]struct{})
	for _, h := range hints {
		for _, t := range s.Tokens(h) {
			clued[t.Concept] = struct{}{}
			narrative[t.Concept] = struct{}{}
		}
	}

	k := &Knowledge{
		strategy:  s,
		answer:    make(map[string]float64),
		hidden:    make(map[string]float64),
		narrative: narrative,
		negated:   make(map[string]struct{}),
		facets:    make(map[string]struct{}),
	}
	k.answerText = s.Normalize(answer)
	k.answerGrams = ngrams(k.answerText, s.GramSize())

	for _, t := range s.Tokens(answer) {
		if t.Negated {
			k.negated[t.Concept] = struct{}{}
			continue
		}
		if _, seen := k.answer[t.Concept]; seen {
			continue
		}
		w := lex.Salience(t.Concept)
		_, inNarrative := narrative[t.Concept]
		if inNarrative {
			w *= 0.5
		}
		k.answer[t.Concept] = w
		if f := lex.Facet(t.Concept); f != "" {
			k.facets[f] = struct{}{}
		}
		if _, isClue := clued[t.Concept]; !inNarrative && !isClue {
			k.hidden[t.Concept] = w
		}
	}

	k.order = make([]string, 0, len(k.answer))
	for c := range k.answer {
		k.order = append(k.order, c)
	}
	sort.Strings(k.order)
	for _, c := range k.order {
		k.answerTotal += k.answer[c]
		k.hiddenTotal += k.hidden[c]
	}
	return k
}

// Lang is the language the knowledge was built for.
func (k *Knowledge) Lang() language.Tag {
	return k.strategy.Tag()
}

// Concepts lists the solution's concept ids in sorted order.
func (k *Knowledge) Concepts() []string {
	return append([]string(nil), k.order...)
}

// HiddenConcepts lists the solution concepts the narrative does not reveal.
func (k *Knowledge) HiddenConcepts() []string {
	var out []string
	for _, c := range k.order {
		if _, ok := k.hidden[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (k *Knowledge) inAnswer(c string) bool {
	_, ok := k.answer[c]
	return ok
}

func (k *Knowledge) inNarrative(c string) bool {
	_, ok := k.narrative[c]
	return ok
}

// relatedToAnswer reports whether c is linked to any solution concept.
func (k *Knowledge) relatedToAnswer(c string) bool {
	lex := k.strategy.Lexicon()
	for _, a := range k.order {
		if lex.Related(c, a) {
			return true
		}
	}
	return false
}

func (k *Knowledge) relatedToNarrative(c string) bool {
	lex := k.strategy.Lexicon()
	for n := range k.narrative {
		if lex.Related(c, n) {
			return true
		}
	}
	return false
}

// contradicts reports whether c is an alternative the solution rules out:
// it shares a facet with a solution concept without being one.
func (k *Knowledge) contradicts(c string) bool {
	if k.inAnswer(c) {
		return false
	}
	f := k.strategy.Lexicon().Facet(c)
	if f == "" {
		return false
	}
	_, ok := k.facets[f]
	return ok
}

func (k *Knowledge) String() string {
	var b strings.Builder
	b.WriteString(k.Lang().String())
	b.WriteString("{")
	b.WriteString(strings.Join(k.order, ","))
	b.WriteString("}")
	return b.String()
}
