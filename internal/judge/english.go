package judge

import (
	"strings"

	"golang.org/x/text/language"
)

type englishStrategy struct {
	lex lazyLexicon
}

// English returns the strategy for English puzzles.
func English() Strategy {
	return &englishStrategy{lex: lazyLexicon{concepts: englishConcepts, stem: englishStem}}
}

func (e *englishStrategy) Tag() language.Tag { return language.English }
func (e *englishStrategy) Lexicon() *Lexicon { return e.lex.get() }
func (e *englishStrategy) GramSize() int { return 3 }

var englishContractions = strings.NewReplacer(
	"can't", "can not",
	"won't", "will not",
	"n't", " not",
	"'s", "",
	"'re", "",
	"'ve", "",
	"'ll", "",
	"'d", "",
	"'m", "",
)

func (e *englishStrategy) Normalize(text string) string {
	s := strings.ReplaceAll(foldText(text), "’", "'")
	return collapse(englishContractions.Replace(s))
}

func (e *englishStrategy) Tokens(text string) []Token {
	lex := e.Lexicon()
	words := strings.Fields(e.Normalize(text))

	// "Wasn't he ...?" asks the positive proposition.
	if len(words) > 1 && englishAux[words[0]] && words[1] == "not" {
		words = append(words[:1], words[2:]...)
	}

	var toks []Token
	scope := 0
	for _, w := range words {
		switch {
		case englishNegators[w]:
			scope = 2
			continue
		case englishClauseBreaks[w]:
			scope = 0
			continue
		case englishStopwords[w] || englishMeta[w]:
			continue
		}
		stem := englishStem(w)
		if englishMeta[stem] {
			continue
		}
		id, ok := lex.Lookup(stem)
		if !ok {
			id, ok = lex.Lookup(w)
		}
		if !ok {
			id = unknownConcept(stem)
		}
		toks = append(toks, Token{Word: stem, Concept: id, Negated: scope > 0})
		if scope > 0 {
			scope--
		}
	}
	return toks
}

// englishStem strips common inflections. It is deliberately crude: the
// lexicon is indexed with the same function, so both sides agree.
func englishStem(w string) string {
	if s, ok := englishIrregular[w]; ok {
		return s
	}
	n := len(w)
	switch {
	case n > 5 && strings.HasSuffix(w, "ing"):
		w = w[:n-3]
	case n > 4 && strings.HasSuffix(w, "ied"):
		w = w[:n-3] + "y"
	case n > 4 && strings.HasSuffix(w, "ed"):
		w = w[:n-2]
	case n > 4 && strings.HasSuffix(w, "ies"):
		w = w[:n-3] + "y"
	case n > 4 && (strings.HasSuffix(w, "ches") || strings.HasSuffix(w, "shes") ||
		strings.HasSuffix(w, "xes") || strings.HasSuffix(w, "sses") || strings.HasSuffix(w, "zes")):
		w = w[:n-2]
	case n > 3 && strings.HasSuffix(w, "s") &&
		!strings.HasSuffix(w, "ss") && !strings.HasSuffix(w, "us") && !strings.HasSuffix(w, "is"):
		w = w[:n-1]
	case n > 5 && strings.HasSuffix(w, "ly"):
		w = w[:n-2]
	}
	if m := len(w); m > 3 && w[m-1] == w[m-2] && isDoublable(w[m-1]) {
		w = w[:m-1]
	}
	return w
}

func isDoublable(b byte) bool {
	switch b {
	case 'b', 'd', 'g', 'm', 'n', 'p', 'r', 't':
		return true
	}
	return false
}

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var englishAux = wordSet("is", "was", "are", "were", "do", "does", "did", "has", "have", "had",
	"can", "could", "will", "would", "should", "ca", "wo")

var englishNegators = wordSet("not", "no", "never", "nothing", "nobody", "none", "neither", "nor", "without")

var englishClauseBreaks = wordSet("but", "and", "or", "because", "so", "although", "though", "while")

var englishStopwords = wordSet(
	"a", "an", "the", "he", "she", "it", "they", "them", "his", "her", "hers", "its", "their", "him",
	"i", "you", "we", "us", "me", "my", "your", "our", "this", "that", "these", "those",
	"is", "am", "are", "was", "were", "be", "been", "being", "do", "does", "did", "done",
	"have", "has", "had", "having", "will", "would", "shall", "should", "can", "could",
	"may", "might", "must", "to", "of", "in", "on", "at", "by", "for", "from", "with", "into",
	"inside", "onto", "about", "as", "if", "then", "than", "there", "here", "what", "which",
	"who", "whom", "whose", "when", "where", "why", "how", "any", "some", "all", "each",
	"every", "just", "also", "very", "really", "too", "again", "only", "own", "same",
	"other", "such", "both", "either", "up", "down", "out", "off", "over", "under",
	"after", "before", "somehow", "someone", "somebody", "something", "anyone", "anything",
	"get", "got", "go", "went", "gone", "s", "t", "d", "ll", "re", "ve", "m", "ca", "wo",
	"one", "himself", "herself", "itself", "themselves",
)

// englishMeta are words that talk about the puzzle rather than its world.
var englishMeta = wordSet(
	"question", "answer", "answers", "important", "importance", "relevant", "related", "relate",
	"matter", "matters", "story", "puzzle", "riddle", "key", "involved", "involve", "part",
	"role", "case", "situation", "thing", "solution", "truth", "hint", "clue", "significant",
	"necessary", "factor", "cause", "reason", "play", "happen", "happened",
)

var englishIrregular = map[string]string{
	"frozen": "freeze", "froze": "freeze",
	"shot": "shoot", "shooting": "shoot",
	"stabbed": "stab", "stabbing": "stab",
	"died": "die", "dying": "die",
	"fell": "fall", "fallen": "fall",
	"drowned": "drown",
	"hung": "hang", "hanged": "hang",
	"burnt": "burn",
	"ate": "eat", "eaten": "eat",
	"drank": "drink", "drunk": "drink",
	"saw": "see", "seen": "see",
	"knew": "know", "known": "know",
	"thought": "think",
	"bought": "buy",
	"left": "leave",
	"lost": "lose",
	"found": "find",
	"men": "man", "women": "woman", "people": "person", "children": "child",
	"wives": "wife", "knives": "knife", "lives": "life",
}

func englishConcepts() []Concept {
	return []Concept{
		// Methods by which a death or injury happened.
		{ID: "murder", Facet: "method", Words: []string{"murder", "murdered", "homicide", "assassinate", "assassinated", "slay", "slain"}, Related: []string{"death", "killer"}},
		{ID: "shoot", Facet: "method", Words: []string{"shoot", "shot", "gun", "pistol", "rifle", "bullet", "gunshot"}, Related: []string{"death"}},
		{ID: "stab", Facet: "method", Words: []string{"stab", "stabbed", "knife", "knives", "dagger", "blade"}, Related: []string{"death"}},
		{ID: "poison", Facet: "method", Words: []string{"poison", "poisoned", "poisonous", "toxic", "toxin", "venom"}, Related: []string{"death", "drink", "food"}},
		{ID: "strangle", Facet: "method", Words: []string{"strangle", "strangled", "choke", "choked"}, Related: []string{"death", "rope"}},
		{ID: "drown", Facet: "method", Words: []string{"drown", "drowned", "drowning"}, Related: []string{"water", "death", "sea"}},
		{ID: "freeze", Facet: "method", Words: []string{"freeze", "freezing", "frozen", "froze", "frostbite"}, Related: []string{"ice", "cold", "snow"}},
		{ID: "burn", Facet: "method", Words: []string{"burn", "burned", "burning", "burnt"}, Related: []string{"fire", "heat"}},
		{ID: "fall", Facet: "method", Words: []string{"fall", "fell", "falling", "fallen", "jump", "jumped"}, Related: []string{"height"}},
		{ID: "suffocate", Facet: "method", Words: []string{"suffocate", "suffocated", "suffocation", "asphyxiate", "smother"}, Related: []string{"air"}},
		{ID: "hang", Facet: "method", Words: []string{"hang", "hanged", "hanging", "noose"}, Related: []string{"rope"}},
		{ID: "crash", Facet: "method", Words: []string{"crash", "crashed", "collision", "collide"}, Related: []string{"car", "plane"}},
		{ID: "electrocute", Facet: "method", Words: []string{"electrocute", "electrocuted", "electricity", "shock"}, Related: []string{"electric"}},
		{ID: "starve", Facet: "method", Words: []string{"starve", "starved", "starvation", "hunger", "hungry"}, Related: []string{"food"}},

		// Agency.
		{ID: "suicide", Facet: "agency", Words: []string{"suicide"}, Related: []string{"death"}},
		{ID: "accident", Facet: "agency", Words: []string{"accident", "accidental", "accidentally", "mistake"}},

		// Events and states.
		{ID: "death", Words: []string{"die", "died", "dies", "dead", "death", "kill", "killed", "killing", "corpse", "body", "deceased", "fatal"}, Related: []string{"murder"}},
		{ID: "killer", Words: []string{"killer", "murderer", "culprit", "criminal", "suspect"}, Related: []string{"murder"}},
		{ID: "melt", Words: []string{"melt", "melted", "melting", "thaw", "thawed", "dissolve", "dissolved"}, Related: []string{"ice", "water", "heat", "snow"}},
		{ID: "lock", Words: []string{"lock", "locked", "sealed", "closed", "shut", "padlock"}, Related: []string{"door", "room"}},
		{ID: "sleep", Words: []string{"sleep", "slept", "asleep", "dream", "bed"}},
		{ID: "blind", Words: []string{"blind", "blindness", "sight", "see", "vision", "eye"}},
		{ID: "deaf", Words: []string{"deaf", "hear", "hearing", "sound", "noise"}},
		{ID: "eat", Words: []string{"eat", "ate", "eaten", "meal", "swallow", "swallowed"}, Related: []string{"food"}},
		{ID: "drink", Words: []string{"drink", "drank", "sip", "glass", "cup"}, Related: []string{"water", "poison"}},
		{ID: "lie", Words: []string{"lie", "lied", "lying", "liar", "deceive", "fake", "pretend"}},
		{ID: "steal", Words: []string{"steal", "stole", "stolen", "theft", "thief", "rob", "robbed", "robbery"}},

		// Things and places.
		{ID: "water", Words: []string{"water", "puddle", "liquid", "wet", "damp", "moisture"}, Related: []string{"ice", "melt", "drown", "sea", "rain", "drink"}},
		{ID: "ice", Words: []string{"ice", "icicle", "icy", "frost", "glacier"}, Related: []string{"freeze", "melt", "water", "cold", "snow"}},
		{ID: "snow", Words: []string{"snow", "snowman", "snowy", "blizzard"}, Related: []string{"ice", "cold", "melt"}},
		{ID: "cold", Words: []string{"cold", "chill", "chilly", "cool", "winter", "freezer", "fridge", "refrigerator"}, Related: []string{"ice", "freeze", "snow"}},
		{ID: "heat", Words: []string{"heat", "hot", "warm", "warmth", "sun", "summer", "temperature"}, Related: []string{"melt", "fire", "burn"}},
		{ID: "fire", Words: []string{"fire", "flame", "smoke", "ash", "candle", "match"}, Related: []string{"burn", "heat"}},
		{ID: "sea", Words: []string{"sea", "ocean", "beach", "wave", "boat", "ship", "swim", "swimming"}, Related: []string{"water", "drown"}},
		{ID: "rain", Words: []string{"rain", "storm", "umbrella"}, Related: []string{"water"}},
		{ID: "rope", Words: []string{"rope", "cord", "string", "wire"}},
		{ID: "door", Words: []string{"door", "window", "entrance", "exit"}, Related: []string{"lock", "room"}},
		{ID: "room", Words: []string{"room", "chamber", "cell", "bedroom"}, Related: []string{"door", "lock"}},
		{ID: "house", Words: []string{"house", "home", "apartment", "building"}},
		{ID: "car", Words: []string{"car", "vehicle", "truck", "drive", "driver", "road"}, Related: []string{"crash"}},
		{ID: "plane", Words: []string{"plane", "airplane", "aircraft", "flight", "pilot", "parachute"}, Related: []string{"crash", "height"}},
		{ID: "height", Words: []string{"height", "high", "roof", "cliff", "tower", "balcony"}, Related: []string{"fall"}},
		{ID: "air", Words: []string{"air", "breath", "breathe", "oxygen", "gas"}, Related: []string{"suffocate"}},
		{ID: "electric", Words: []string{"electric", "power", "light", "lamp", "bulb"}, Related: []string{"electrocute"}},
		{ID: "food", Words: []string{"food", "soup", "meat", "bread", "restaurant", "dinner"}, Related: []string{"eat", "poison"}},
		{ID: "money", Words: []string{"money", "cash", "coin", "wallet", "rich", "debt"}},
		{ID: "phone", Words: []string{"phone", "call", "telephone", "message"}},
		{ID: "animal", Words: []string{"animal", "dog", "cat", "bird", "horse", "pet"}},
		{ID: "doctor", Words: []string{"doctor", "hospital", "nurse", "medicine", "surgery", "sick", "ill", "illness", "disease"}},

		// Low-salience modifiers and people.
		{ID: "big", Salience: 0.4, Words: []string{"big", "giant", "huge", "large", "enormous", "massive"}},
		{ID: "small", Salience: 0.4, Words: []string{"small", "tiny", "little"}},
		{ID: "person", Salience: 0.5, Words: []string{"man", "woman", "person", "people", "guy", "lady", "boy", "girl", "child"}},
		{ID: "family", Salience: 0.7, Words: []string{"wife", "husband", "mother", "father", "son", "daughter", "brother", "sister", "family"}},
		{ID: "time", Salience: 0.6, Words: []string{"day", "night", "morning", "evening", "time", "hour", "minute"}},
	}
}
