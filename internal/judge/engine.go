// Package judge implements the question and guess judging engine for
// lateral-thinking puzzles. It is pure computation: no I/O, no logging, no
// hidden global state. Callers own caching (see Cache) and persistence.
//
// The engine is one policy parameterized by a per-language Strategy. A
// puzzle is first turned into Knowledge; questions are classified against
// it and free-text guesses are scored against it. When building Knowledge
// fails, ClassifyDirect and ScoreDirect judge from raw text instead.
package judge

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

var (
	ErrEmptyInput    = errors.New("content and answer must not be empty")
	ErrEmptyQuestion = errors.New("question must not be empty")
	ErrNilKnowledge  = errors.New("knowledge is nil")

	// ErrAnswerMismatch means Score was handed Knowledge built from a
	// different answer than the one passed alongside it.
	ErrAnswerMismatch = errors.New("answer does not match knowledge")
)

// Engine selects a language strategy per puzzle and runs the judging
// policy. It is safe for concurrent use.
type Engine struct {
	strategies  []Strategy
	defaultLang string
	matcher     language.Matcher
	fallback    Strategy
}

type Option func(*Engine)

// WithStrategies replaces the built-in strategies.
func WithStrategies(s ...Strategy) Option {
	return func(e *Engine) { e.strategies = s }
}

// WithDefaultLanguage picks the strategy used for empty or unmatched
// language tags. Without it the first strategy is the default.
func WithDefaultLanguage(tag string) Option {
	return func(e *Engine) { e.defaultLang = tag }
}

// New returns an engine with English and Korean strategies.
func New(opts ...Option) *Engine {
	e := &Engine{strategies: []Strategy{English(), Korean()}}
	for _, opt := range opts {
		opt(e)
	}
	if len(e.strategies) == 0 {
		e.strategies = []Strategy{English()}
	}

	tags := make([]language.Tag, len(e.strategies))
	for i, s := range e.strategies {
		tags[i] = s.Tag()
	}
	e.matcher = language.NewMatcher(tags)

	e.fallback = e.strategies[0]
	if e.defaultLang != "" {
		e.fallback = e.match(e.defaultLang, e.fallback)
	}
	return e
}

// Warmup builds every strategy's lexicon index so that the first judged
// question does not pay for it.
func (e *Engine) Warmup() {
	for _, s := range e.strategies {
		s.Lexicon()
	}
}

// Strategy returns the strategy that serves lang. Empty or unknown tags get
// the default.
func (e *Engine) Strategy(lang string) Strategy {
	return e.match(lang, e.fallback)
}

func (e *Engine) match(lang string, def Strategy) Strategy {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return def
	}
	t, err := language.Parse(lang)
	if err != nil {
		return def
	}
	_, idx, conf := e.matcher.Match(t)
	if conf == language.No {
		return def
	}
	return e.strategies[idx]
}

// BuildKnowledge derives the judging view of a puzzle. The result depends
// only on its inputs.
func (e *Engine) BuildKnowledge(lang, content, answer string, hints []string) (k *Knowledge, err error) {
	if strings.TrimSpace(content) == "" || strings.TrimSpace(answer) == "" {
		return nil, ErrEmptyInput
	}
	defer func() {
		if r := recover(); r != nil {
			k, err = nil, fmt.Errorf("building knowledge: %v", r)
		}
	}()
	return buildKnowledge(e.Strategy(lang), content, answer, hints), nil
}

// Classify suggests a verdict for a yes/no question. The result is advisory;
// a person confirms it before it becomes final.
func (e *Engine) Classify(question string, k *Knowledge) (v Verdict, err error) {
	if strings.TrimSpace(question) == "" {
		return Pending, ErrEmptyQuestion
	}
	if k == nil {
		return Pending, ErrNilKnowledge
	}
	defer func() {
		if r := recover(); r != nil {
			v, err = Pending, fmt.Errorf("classifying question: %v", r)
		}
	}()
	return classify(question, k), nil
}

// Score rates how close guess is to the solution, from 0 to 100. When k is
// nil it is built on the spot from answer and content in the default
// language. Otherwise k is authoritative: content is unused and a
// non-empty answer must match the one k was built from.
func (e *Engine) Score(guess, answer, content string, k *Knowledge) (p int, err error) {
	if k == nil {
		if strings.TrimSpace(content) == "" {
			content = answer
		}
		k, err = e.BuildKnowledge("", content, answer, nil)
		if err != nil {
			return 0, err
		}
	}
	defer func() {
		if r := recover(); r != nil {
			p, err = 0, fmt.Errorf("scoring guess: %v", r)
		}
	}()
	if strings.TrimSpace(answer) != "" && k.strategy.Normalize(answer) != k.answerText {
		return 0, ErrAnswerMismatch
	}
	return score(guess, k), nil
}

// ClassifyDirect judges a question from raw puzzle text without a cached
// Knowledge. It is the degraded path for when BuildKnowledge failed.
func (e *Engine) ClassifyDirect(lang, question, content, answer string) (Verdict, error) {
	if strings.TrimSpace(question) == "" {
		return Pending, ErrEmptyQuestion
	}
	k, err := e.direct(lang, content, answer)
	if err != nil {
		return Pending, err
	}
	return e.Classify(question, k)
}

// ScoreDirect scores a guess from raw puzzle text without a cached Knowledge.
func (e *Engine) ScoreDirect(lang, guess, content, answer string) (int, error) {
	k, err := e.direct(lang, content, answer)
	if err != nil {
		return 0, err
	}
	return e.Score(guess, answer, content, k)
}

// direct builds a throwaway Knowledge without hints. A missing narrative is
// replaced by the answer so that only the answer is required.
func (e *Engine) direct(lang, content, answer string) (*Knowledge, error) {
	if strings.TrimSpace(content) == "" {
		content = answer
	}
	return e.BuildKnowledge(lang, content, answer, nil)
}
