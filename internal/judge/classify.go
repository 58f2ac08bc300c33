package judge

// Thresholds for the question classifier.
const (
	// yesSupport is the share of a question's weight that must be backed by
	// the puzzle for a yes.
	yesSupport = 0.5
	// decisiveCoverage is the share of the hidden solution a question must
	// name directly to count as decisive.
	decisiveCoverage = 0.5
)

func classify(question string, k *Knowledge) Verdict {
	lex := k.strategy.Lexicon()
	toks := dedupe(k.strategy.Tokens(question))
	if len(toks) == 0 {
		return Irrelevant
	}

	var (
		total, backed float64
		conflict      bool
		denied        bool
		negated       bool
		direct        []string
	)
	for _, t := range toks {
		w := lex.Salience(t.Concept)
		total += w
		if t.Negated {
			negated = true
		}
		if _, ok := k.negated[t.Concept]; ok {
			denied = true
		}
		switch {
		case k.contradicts(t.Concept):
			conflict = true
		case k.inAnswer(t.Concept):
			backed += w
			direct = append(direct, t.Concept)
		case k.inNarrative(t.Concept), k.relatedToAnswer(t.Concept), k.relatedToNarrative(t.Concept):
			backed += w
		}
	}

	support := 0.0
	if total > 0 {
		support = backed / total
	}

	v := Irrelevant
	switch {
	case conflict:
		v = No
	case support >= yesSupport:
		v = Yes
		if isDecisive(direct, k) {
			v = Decisive
		}
	case support > 0:
		v = No
	case denied:
		v = No
	}
	if denied && (v == Yes || v == Decisive) {
		v = No
	}

	if negated {
		switch v {
		case Yes, Decisive:
			v = No
		case No:
			v = Yes
		}
	}
	return v
}

func isDecisive(direct []string, k *Knowledge) bool {
	if k.hiddenTotal == 0 {
		return false
	}
	var covered float64
	n := 0
	for _, c := range direct {
		if w, ok := k.hidden[c]; ok {
			covered += w
			n++
		}
	}
	return n >= 2 && covered/k.hiddenTotal >= decisiveCoverage
}

// dedupe keeps the first token per concept. A concept is negated if any of
// its occurrences is.
func dedupe(toks []Token) []Token {
	seen := make(map[string]int, len(toks))
	out := toks[:0:0]
	for _, t := range toks {
		if i, ok := seen[t.Concept]; ok {
			out[i].Negated = out[i].Negated || t.Negated
			continue
		}
		seen[t.Concept] = len(out)
		out = append(out, t)
	}
	return out
}
