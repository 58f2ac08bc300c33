package judge

import (
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

type koreanStrategy struct {
	lex lazyLexicon
}

// Korean returns the strategy for Korean puzzles. Korean attaches particles
// and verb endings to the stem, so tokens are peeled suffix by suffix until
// they hit the lexicon.
func Korean() Strategy {
	return &koreanStrategy{lex: lazyLexicon{
		concepts: koreanConcepts,
		stem:     func(s string) string { return s },
	}}
}

func (k *koreanStrategy) Tag() language.Tag { return language.Korean }
func (k *koreanStrategy) Lexicon() *Lexicon { return k.lex.get() }
func (k *koreanStrategy) GramSize() int { return 2 }

func (k *koreanStrategy) Normalize(text string) string {
	return collapse(foldText(text))
}

func (k *koreanStrategy) Tokens(text string) []Token {
	lex := k.Lexicon()

	var toks []Token
	negateNext := false
	for _, w := range strings.Fields(k.Normalize(text)) {
		if koreanNegators[w] {
			negateNext = true
			continue
		}
		if isKoreanPostNegation(w) {
			if n := len(toks); n > 0 {
				toks[n-1].Negated = true
			}
			continue
		}

		stem, id, negated := k.analyze(lex, w)
		if stem == "" {
			continue
		}
		toks = append(toks, Token{Word: stem, Concept: id, Negated: negateNext || negated})
		negateNext = false
	}
	return toks
}

// analyze peels suffixes off w until it reaches a lexicon entry, a stopword
// or nothing more to strip. An empty stem means the word carries no meaning.
func (k *koreanStrategy) analyze(lex *Lexicon, w string) (stem, concept string, negated bool) {
	cur := w
	for range 6 {
		if koreanStopwords[cur] || koreanMeta[cur] {
			return "", "", false
		}
		if id, ok := lex.Lookup(cur); ok {
			return cur, id, negated
		}
		if id, ok := lex.LookupSuffix(cur); ok {
			return cur, id, negated
		}
		if trimmed, ok := strings.CutSuffix(cur, "없"); ok && trimmed != "" {
			cur = trimmed
			negated = true
			continue
		}
		next, ok := stripKoreanSuffix(cur)
		if !ok {
			break
		}
		cur = next
	}
	if koreanStopwords[cur] || koreanMeta[cur] {
		return "", "", false
	}
	return cur, unknownConcept(cur), negated
}

func stripKoreanSuffix(s string) (string, bool) {
	n := utf8.RuneCountInString(s)
	for _, suf := range koreanSuffixes {
		if strings.HasSuffix(s, suf) && n-utf8.RuneCountInString(suf) >= 1 {
			return strings.TrimSuffix(s, suf), true
		}
	}
	return s, false
}

func isKoreanPostNegation(w string) bool {
	for _, p := range []string{"않", "아니", "없"} {
		if strings.HasPrefix(w, p) {
			return true
		}
	}
	return false
}

// koreanSuffixes holds particles and verb endings, longest first.
var koreanSuffixes = func() []string {
	s := []string{
		"었습니까", "았습니까", "했습니까", "였습니까", "습니까", "입니까",
		"었나요", "았나요", "했나요", "였나요", "됐나요", "인가요", "는가요", "을까요", "나요", "가요",
		"었어요", "았어요", "했어요", "였어요", "이에요", "어요", "아요", "에요", "예요",
		"었다", "았다", "했다", "였다", "됐다", "이다",
		"인가", "는가", "니까", "어서", "아서", "해서", "었고", "았고", "했고",
		"에서는", "으로는", "이라는", "에서", "에게", "한테", "으로", "께서", "까지", "부터",
		"처럼", "보다", "에는", "라는", "이랑", "랑",
		"고", "서", "며", "면", "지", "다", "요", "까", "죠",
		"한", "된", "던", "당", "하", "되", "었", "았", "했", "였",
		"은", "는", "이", "가", "을", "를", "에", "의", "로", "와", "과", "도", "만",
	}
	sort.SliceStable(s, func(i, j int) bool {
		return utf8.RuneCountInString(s[i]) > utf8.RuneCountInString(s[j])
	})
	return s
}()

var koreanNegators = wordSet("안", "못")

var koreanStopwords = wordSet(
	"그", "그녀", "그들", "나", "너", "저", "우리", "이", "그것", "이것", "저것", "것", "수", "등", "및",
	"정말", "혹시", "무슨", "어떤", "왜", "어떻게", "무엇", "뭐", "누가", "누구", "언제", "어디",
	"한", "두", "안", "속", "위", "아래", "옆", "채", "때", "중", "좀", "더", "또", "아주", "매우", "너무",
	"있", "하", "되", "않", "그런", "이런", "저런", "그리고", "하지만", "그래서",
)

// koreanMeta are words that talk about the puzzle rather than its world.
var koreanMeta = wordSet(
	"중요", "관련", "정답", "답", "문제", "이야기", "사건", "상관", "핵심", "힌트", "진실",
	"질문", "이유", "원인", "해답", "관계", "연관",
)

func koreanConcepts() []Concept {
	return []Concept{
		{ID: "murder", Facet: "method", Words: []string{"살인", "살해", "타살", "죽이", "죽였"}, Related: []string{"death", "killer"}},
		{ID: "shoot", Facet: "method", Words: []string{"총", "총격", "총알", "권총", "쏘", "쐈", "저격"}, Related: []string{"death"}},
		{ID: "stab", Facet: "method", Words: []string{"칼", "찌르", "찔", "찔렸", "흉기", "칼부림"}, Related: []string{"death"}},
		{ID: "poison", Facet: "method", Words: []string{"독", "독살", "중독", "독약"}, Related: []string{"death", "drink", "food"}},
		{ID: "strangle", Facet: "method", Words: []string{"목졸", "교살"}, Related: []string{"death"}},
		{ID: "drown", Facet: "method", Words: []string{"익사", "빠져"}, Related: []string{"water", "death", "sea"}},
		{ID: "freeze", Facet: "method", Words: []string{"얼", "얼어", "얼었", "얼린", "얼어붙", "동사", "냉동"}, Related: []string{"ice", "cold"}},
		{ID: "burn", Facet: "method", Words: []string{"화상", "불타", "타죽"}, Related: []string{"fire", "heat"}},
		{ID: "fall", Facet: "method", Words: []string{"추락", "떨어지", "떨어져", "떨어졌", "뛰어내리"}},
		{ID: "suffocate", Facet: "method", Words: []string{"질식"}},
		{ID: "hang", Facet: "method", Words: []string{"목매", "교수"}},
		{ID: "crash", Facet: "method", Words: []string{"충돌", "추돌"}, Related: []string{"car", "plane"}},
		{ID: "electrocute", Facet: "method", Words: []string{"감전"}},
		{ID: "starve", Facet: "method", Words: []string{"굶", "아사", "굶주"}, Related: []string{"food"}},

		{ID: "suicide", Facet: "agency", Words: []string{"자살"}, Related: []string{"death"}},
		{ID: "accident", Facet: "agency", Words: []string{"사고", "실수"}},

		{ID: "death", Words: []string{"죽", "죽은", "죽음", "사망", "시체", "시신", "숨지", "숨졌"}, Related: []string{"murder"}},
		{ID: "killer", Words: []string{"범인", "살인자", "용의자"}, Related: []string{"murder"}},
		{ID: "melt", Words: []string{"녹", "녹아", "녹은", "해동"}, Related: []string{"ice", "water", "heat"}},
		{ID: "lock", Words: []string{"잠긴", "잠기", "잠겨", "잠금", "밀실", "자물쇠"}, Related: []string{"door", "room"}},
		{ID: "eat", Words: []string{"먹", "먹었", "식사"}, Related: []string{"food"}},
		{ID: "drink", Words: []string{"마시", "마셨", "음료", "잔"}, Related: []string{"water", "poison"}},

		{ID: "water", Words: []string{"물", "웅덩이", "액체", "젖", "젖은", "습기"}, Related: []string{"ice", "melt", "drown", "sea", "rain", "drink"}},
		{ID: "ice", Words: []string{"얼음", "서리", "빙하", "고드름"}, Related: []string{"freeze", "melt", "water", "cold"}},
		{ID: "cold", Words: []string{"추위", "추운", "차가운", "냉장고", "냉동고", "겨울"}, Related: []string{"ice", "freeze"}},
		{ID: "heat", Words: []string{"열", "더위", "더운", "뜨거운", "태양", "여름"}, Related: []string{"melt", "fire", "burn"}},
		{ID: "fire", Words: []string{"불", "화재", "연기", "촛불"}, Related: []string{"burn", "heat"}},
		{ID: "sea", Words: []string{"바다", "해변", "배", "파도", "수영"}, Related: []string{"water", "drown"}},
		{ID: "rain", Words: []string{"비", "폭우", "우산"}, Related: []string{"water"}},
		{ID: "room", Words: []string{"방", "객실", "침실"}, Related: []string{"door", "lock"}},
		{ID: "door", Words: []string{"문", "창문", "출입구"}, Related: []string{"lock", "room"}},
		{ID: "house", Words: []string{"집", "아파트", "건물"}},
		{ID: "car", Words: []string{"차", "자동차", "운전"}, Related: []string{"crash"}},
		{ID: "plane", Words: []string{"비행기", "조종사", "낙하산"}, Related: []string{"crash"}},
		{ID: "food", Words: []string{"음식", "수프", "스프", "고기"}, Related: []string{"eat", "poison"}},
		{ID: "block", Words: []string{"덩어리", "덩이", "블록", "조각"}},

		{ID: "big", Salience: 0.4, Words: []string{"거대한", "거대", "큰", "커다란", "엄청난"}},
		{ID: "small", Salience: 0.4, Words: []string{"작은", "조그만"}},
		{ID: "person", Salience: 0.5, Words: []string{"남자", "여자", "사람", "남성", "여성", "아이"}},
		{ID: "family", Salience: 0.7, Words: []string{"아내", "남편", "엄마", "아빠", "아들", "딸", "가족"}},
	}
}
