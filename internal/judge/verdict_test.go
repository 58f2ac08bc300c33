package judge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJudge(t *testing.T) {
	tests := []struct {
		score int
		want  Closeness
	}{
		{0, Far},
		{59, Far},
		{60, Close},
		{79, Close},
		{80, Solved},
		{100, Solved},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Judge(tt.score), "score %d", tt.score)
	}
}

func TestParseVerdict(t *testing.T) {
	for _, v := range []Verdict{Pending, Yes, No, Irrelevant, Decisive} {
		got, err := ParseVerdict(v.String())
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	_, err := ParseVerdict("maybe")
	assert.Error(t, err)
	_, err = ParseVerdict("YES")
	assert.Error(t, err)
}

func TestVerdictJudged(t *testing.T) {
	assert.False(t, Pending.Judged())
	assert.True(t, Yes.Judged())
	assert.True(t, Decisive.Judged())
	assert.False(t, Verdict(42).Judged())
	assert.Equal(t, "verdict(42)", Verdict(42).String())
}

func TestVerdictJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Verdict{"verdict": Irrelevant})
	require.NoError(t, err)
	assert.JSONEq(t, `{"verdict":"irrelevant"}`, string(b))

	var out struct {
		Verdict Verdict `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"verdict":"decisive"}`), &out))
	assert.Equal(t, Decisive, out.Verdict)

	assert.Error(t, json.Unmarshal([]byte(`{"verdict":"sometimes"}`), &out))
}
