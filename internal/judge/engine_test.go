package judge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

const (
	icemanContent = "A man is found dead in a locked room with a puddle of water"
	icemanAnswer  = "He was frozen inside a giant ice block and it melted"

	icemanContentKo = "한 남자가 잠긴 방에서 죽은 채 발견되었고 바닥에는 물웅덩이가 있었다"
	icemanAnswerKo  = "그는 거대한 얼음 덩어리 안에 얼어 있었고 얼음이 녹았다"
)

func icemanKnowledge(t *testing.T, e *Engine) *Knowledge {
	t.Helper()
	k, err := e.BuildKnowledge("en", icemanContent, icemanAnswer, nil)
	require.NoError(t, err)
	return k
}

func TestBuildKnowledge(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	assert.Equal(t, language.English, k.Lang())
	assert.Equal(t, []string{"big", "freeze", "ice", "melt", "w:block"}, k.Concepts())
	assert.Equal(t, k.Concepts(), k.HiddenConcepts(), "the narrative reveals none of the solution")
}

func TestBuildKnowledgeHintsRevealConcepts(t *testing.T) {
	e := New()
	k, err := e.BuildKnowledge("en", icemanContent, icemanAnswer, []string{"Think about ice."})
	require.NoError(t, err)

	assert.NotContains(t, k.HiddenConcepts(), "ice")
	assert.Contains(t, k.Concepts(), "ice")
}

func TestBuildKnowledgeRejectsEmptyInput(t *testing.T) {
	e := New()

	_, err := e.BuildKnowledge("en", "   ", icemanAnswer, nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = e.BuildKnowledge("en", icemanContent, "", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestClassifyIceman(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	tests := []struct {
		question string
		want     []Verdict
	}{
		{"Is water important to the answer?", []Verdict{Yes}},
		{"Was he murdered?", []Verdict{No, Irrelevant}},
		{"Wasn't he murdered?", []Verdict{No}},
		{"Was he not murdered?", []Verdict{Yes}},
		{"Was the room locked?", []Verdict{Yes}},
		{"Did he like pizza?", []Verdict{Irrelevant}},
		{"Was he frozen in a block of ice?", []Verdict{Decisive}},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			got, err := e.Classify(tt.question, k)
			require.NoError(t, err)
			assert.Contains(t, tt.want, got)
		})
	}
}

func TestClassifyAlwaysReturnsAVerdict(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	questions := []string{
		"?",
		"...!!!",
		"Is it?",
		"물이 중요한가요?",
		"🧊🧊🧊",
		strings.Repeat("was it the ice or the water ", 40),
	}
	for _, q := range questions {
		got, err := e.Classify(q, k)
		require.NoError(t, err, q)
		assert.True(t, got.Judged(), "question %q gave %v", q, got)
	}
}

func TestClassifyRejectsEmptyQuestion(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	_, err := e.Classify("  \t ", k)
	assert.ErrorIs(t, err, ErrEmptyQuestion)

	_, err = e.Classify("Was he cold?", nil)
	assert.ErrorIs(t, err, ErrNilKnowledge)
}

func TestScoreIceman(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	solved, err := e.Score("The ice melted and killed him", icemanAnswer, icemanContent, k)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, solved, SolvedScore)

	far, err := e.Score("He was shot", icemanAnswer, icemanContent, k)
	require.NoError(t, err)
	assert.Less(t, far, CloseScore)

	exact, err := e.Score(icemanAnswer, icemanAnswer, icemanContent, k)
	require.NoError(t, err)
	assert.Equal(t, 100, exact)
}

func TestScoreNeedsMoreThanOneKeyword(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	for _, g := range []string{"ice", "frozen", "melted", "ice ice ice", "a block"} {
		got, err := e.Score(g, icemanAnswer, icemanContent, k)
		require.NoError(t, err)
		assert.Less(t, got, SolvedScore, "single keyword %q reached solved", g)
	}

	got, err := e.Score("melted ice", icemanAnswer, icemanContent, k)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, SolvedScore)

	ko, err := e.BuildKnowledge("ko", icemanContentKo, icemanAnswerKo, nil)
	require.NoError(t, err)
	got, err = e.Score("얼음", icemanAnswerKo, icemanContentKo, ko)
	require.NoError(t, err)
	assert.Less(t, got, SolvedScore)
}

func TestScoreRejectsMismatchedAnswer(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	_, err := e.Score("The ice melted", "He slipped on the wet floor", icemanContent, k)
	assert.ErrorIs(t, err, ErrAnswerMismatch)

	// Formatting differences are not a mismatch, and an empty answer
	// defers to the knowledge.
	_, err = e.Score("The ice melted", "  HE WAS FROZEN inside a giant ice block, and it melted! ", icemanContent, k)
	assert.NoError(t, err)
	_, err = e.Score("The ice melted", "", icemanContent, k)
	assert.NoError(t, err)
}

func TestScoreRangeAndDeterminism(t *testing.T) {
	e := New()
	k := icemanKnowledge(t, e)

	guesses := []string{
		"",
		"   ",
		"ice",
		"He drowned in the sea",
		"He was poisoned by his wife but the ice was not involved",
		strings.Repeat("frozen ice block melted ", 25),
		"얼음이 녹았다",
		"🧊",
	}
	for _, g := range guesses {
		first, err := e.Score(g, icemanAnswer, icemanContent, k)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, first, 0, g)
		assert.LessOrEqual(t, first, 100, g)

		second, err := e.Score(g, icemanAnswer, icemanContent, k)
		require.NoError(t, err)
		assert.Equal(t, first, second, "score for %q is not deterministic", g)
	}
}

func TestScoreWithoutKnowledge(t *testing.T) {
	e := New()

	got, err := e.Score(icemanAnswer, icemanAnswer, "", nil)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	_, err = e.Score("anything", "", "", nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestDirectPath(t *testing.T) {
	e := New()

	v, err := e.ClassifyDirect("en", "Was he shot?", icemanContent, icemanAnswer)
	require.NoError(t, err)
	assert.True(t, v.Judged())

	v, err = e.ClassifyDirect("en", "Did the ice melt?", "", icemanAnswer)
	require.NoError(t, err)
	assert.True(t, v.Judged())

	p, err := e.ScoreDirect("en", "The ice melted", icemanContent, icemanAnswer)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p, 0)
	assert.LessOrEqual(t, p, 100)

	_, err = e.ClassifyDirect("en", "", icemanContent, icemanAnswer)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestKoreanIceman(t *testing.T) {
	e := New()
	k, err := e.BuildKnowledge("ko-KR", icemanContentKo, icemanAnswerKo, nil)
	require.NoError(t, err)
	require.Equal(t, language.Korean, k.Lang())
	assert.Equal(t, []string{"big", "block", "freeze", "ice", "melt"}, k.Concepts())

	v, err := e.Classify("물이 중요한가요?", k)
	require.NoError(t, err)
	assert.Equal(t, Yes, v)

	v, err = e.Classify("그는 살해당했나요?", k)
	require.NoError(t, err)
	assert.Equal(t, No, v)

	solved, err := e.Score("얼음이 녹았다", icemanAnswerKo, icemanContentKo, k)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, solved, SolvedScore)

	far, err := e.Score("총에 맞았다", icemanAnswerKo, icemanContentKo, k)
	require.NoError(t, err)
	assert.Less(t, far, CloseScore)

	exact, err := e.Score(icemanAnswerKo, icemanAnswerKo, icemanContentKo, k)
	require.NoError(t, err)
	assert.Equal(t, 100, exact)
}

func TestStrategySelection(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		lang string
		want language.Tag
	}{
		{"empty uses default", nil, "", language.English},
		{"korean region", nil, "ko-KR", language.Korean},
		{"english region", nil, "en-GB", language.English},
		{"unsupported falls back", nil, "fr", language.English},
		{"garbage falls back", nil, "not a tag!", language.English},
		{"configured default", []Option{WithDefaultLanguage("ko")}, "", language.Korean},
		{"configured default for unsupported", []Option{WithDefaultLanguage("ko")}, "de", language.Korean},
		{"single strategy", []Option{WithStrategies(Korean())}, "en", language.Korean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.opts...)
			assert.Equal(t, tt.want, e.Strategy(tt.lang).Tag())
		})
	}
}

func TestEnglishTokens(t *testing.T) {
	toks := English().Tokens("He wasn't murdered, but the knives were frozen!")

	var concepts []string
	for _, tok := range toks {
		concepts = append(concepts, tok.Concept)
	}
	assert.Equal(t, []string{"murder", "stab", "freeze"}, concepts)
	assert.True(t, toks[0].Negated)
	assert.False(t, toks[1].Negated, "negation must not cross a clause break")
}
