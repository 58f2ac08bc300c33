package judge

import "sort"

// Concept groups surface words that mean the same thing for judging
// purposes.
type Concept struct {
	ID    string
	Words []string
	// Salience scales how much the concept counts toward coverage.
	// Zero means 1.
	Salience float64
	// Facet names a set of mutually exclusive alternatives, such as the
	// method by which something happened. Two different concepts sharing a
	// facet contradict each other.
	Facet   string
	Related []string
}

// Lexicon indexes concepts by stemmed word. It is immutable once built.
type Lexicon struct {
	concepts map[string]Concept
	byWord   map[string]string
	related  map[string]map[string]struct{}
	// suffixes lists indexed words of two or more runes, longest first, for
	// strategies that match compounds by suffix.
	suffixes []string
}

// newLexicon builds the index. stem is applied to every listed word so that
// lookups and the index agree on form.
func newLexicon(concepts []Concept, stem func(string) string) *Lexicon {
	l := &Lexicon{
		concepts: make(map[string]Concept, len(concepts)),
		byWord:   make(map[string]string),
		related:  make(map[string]map[string]struct{}),
	}
	link := func(a, b string) {
		if l.related[a] == nil {
			l.related[a] = make(map[string]struct{})
		}
		l.related[a][b] = struct{}{}
	}

	for _, c := range concepts {
		if c.Salience == 0 {
			c.Salience = 1
		}
		l.concepts[c.ID] = c
		for _, w := range c.Words {
			l.byWord[w] = c.ID
			if s := stem(w); s != "" {
				l.byWord[s] = c.ID
			}
		}
		for _, r := range c.Related {
			link(c.ID, r)
			link(r, c.ID)
		}
	}

	for w := range l.byWord {
		if len([]rune(w)) >= 2 {
			l.suffixes = append(l.suffixes, w)
		}
	}
	sort.Slice(l.suffixes, func(i, j int) bool {
		li, lj := len([]rune(l.suffixes[i])), len([]rune(l.suffixes[j]))
		if li != lj {
			return li > lj
		}
		return l.suffixes[i] < l.suffixes[j]
	})
	return l
}

// Lookup returns the concept id for a stemmed word.
func (l *Lexicon) Lookup(word string) (string, bool) {
	id, ok := l.byWord[word]
	return id, ok
}

// LookupSuffix returns the concept of the longest indexed word that word
// ends with.
func (l *Lexicon) LookupSuffix(word string) (string, bool) {
	for _, s := range l.suffixes {
		if len(s) < len(word) && hasSuffix(word, s) {
			return l.byWord[s], true
		}
	}
	return "", false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

// Salience returns the weight of a concept. Words outside the lexicon weigh 1.
func (l *Lexicon) Salience(id string) float64 {
	if c, ok := l.concepts[id]; ok {
		return c.Salience
	}
	return 1
}

func (l *Lexicon) Facet(id string) string {
	return l.concepts[id].Facet
}

// Related reports whether a and b are linked by a related edge.
func (l *Lexicon) Related(a, b string) bool {
	_, ok := l.related[a][b]
	return ok
}
