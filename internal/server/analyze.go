package server

import (
	"errors"
	"log/slog"

	"github.com/playperu/pelicansoup/internal/judge"
)

// errAnalysis is the only judging failure users see. Details go to the log.
var errAnalysis = errors.New("analysis error")

// subject is the puzzle text a question or guess is judged against. key
// identifies it in the knowledge cache.
type subject struct {
	key     string
	lang    string
	content string
	answer  string
	hints   []string
}

func puzzleKey(id string) string { return "puzzle:" + id }
func roomKey(id string) string   { return "room:" + id }

// analyzer runs the judging engine for handlers. Knowledge comes from the
// cache; if it cannot be built, the engine's direct path is used instead
// and nothing is cached.
type analyzer struct {
	engine  *judge.Engine
	cache   *judge.Cache
	metrics *Metrics
	logger  *slog.Logger
}

func newAnalyzer(engine *judge.Engine, cache *judge.Cache, metrics *Metrics, logger *slog.Logger) *analyzer {
	return &analyzer{engine: engine, cache: cache, metrics: metrics, logger: logger}
}

func (a *analyzer) knowledge(s subject) *judge.Knowledge {
	k, hit, err := a.cache.Get(s.key, judge.Source{
		Lang:    s.lang,
		Content: s.content,
		Answer:  s.answer,
		Hints:   s.hints,
	})
	if err != nil {
		a.logger.Warn("building knowledge failed, using direct path", "key", s.key, "error", err)
		return nil
	}
	if hit {
		a.metrics.KnowledgeCache.WithLabelValues("hit").Inc()
	} else {
		a.metrics.KnowledgeCache.WithLabelValues("miss").Inc()
	}
	return k
}

// classify suggests a verdict. On failure it returns Pending and
// errAnalysis.
func (a *analyzer) classify(s subject, question string) (judge.Verdict, error) {
	var (
		v   judge.Verdict
		err error
	)
	outcome := "ok"
	if k := a.knowledge(s); k != nil {
		v, err = a.engine.Classify(question, k)
	} else {
		outcome = "degraded"
		v, err = a.engine.ClassifyDirect(s.lang, question, s.content, s.answer)
	}
	if err != nil {
		a.metrics.Analysis.WithLabelValues("classify", "failed").Inc()
		a.logger.Error("classifying question", "key", s.key, "error", err)
		return judge.Pending, errAnalysis
	}
	a.metrics.Analysis.WithLabelValues("classify", outcome).Inc()
	a.metrics.Verdicts.WithLabelValues(v.String()).Inc()
	return v, nil
}

// score rates a guess. On failure it returns errAnalysis.
func (a *analyzer) score(s subject, guess string) (int, error) {
	var (
		p   int
		err error
	)
	outcome := "ok"
	if k := a.knowledge(s); k != nil {
		p, err = a.engine.Score(guess, s.answer, s.content, k)
	} else {
		outcome = "degraded"
		p, err = a.engine.ScoreDirect(s.lang, guess, s.content, s.answer)
	}
	if err != nil {
		a.metrics.Analysis.WithLabelValues("score", "failed").Inc()
		a.logger.Error("scoring guess", "key", s.key, "error", err)
		return 0, errAnalysis
	}
	a.metrics.Analysis.WithLabelValues("score", outcome).Inc()
	a.metrics.Scores.Observe(float64(p))
	return p, nil
}

// forget drops cached knowledge after the underlying text changed.
func (a *analyzer) forget(key string) {
	a.cache.Invalidate(key)
}
