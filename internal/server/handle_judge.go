package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/pelicansoup/internal/judge"
	"github.com/playperu/pelicansoup/internal/soup"
)

type QuestionRequest struct {
	Question string `json:"question" validate:"required,max=500"`
}

func (q *QuestionRequest) normalize() { q.Question = strings.TrimSpace(q.Question) }

// QuestionResponse carries the suggested verdict for a question. Error is
// set when the question could not be analysed; Recorded reports whether
// the question was logged (only official puzzles keep a log).
type QuestionResponse struct {
	ID         string        `json:"id,omitempty"`
	Question   string        `json:"question"`
	Suggestion judge.Verdict `json:"suggestion"`
	Recorded   bool          `json:"recorded"`
	Error      string        `json:"error,omitempty"`
}

type GuessRequest struct {
	Guess string `json:"guess" validate:"required,max=500"`
}

func (g *GuessRequest) normalize() { g.Guess = strings.TrimSpace(g.Guess) }

// GuessResponse reports how close a guess came. Answer is revealed once
// the puzzle is solved.
type GuessResponse struct {
	Score     *int            `json:"score"`
	Closeness judge.Closeness `json:"closeness,omitempty"`
	Solved    bool            `json:"solved"`
	Answer    string          `json:"answer,omitempty"`
	Error     string          `json:"error,omitempty"`
}

func puzzleSubject(p soup.Puzzle) subject {
	return subject{key: puzzleKey(p.ID), lang: p.Lang, content: p.Content, answer: p.Answer, hints: p.Hints}
}

// loadPuzzle fetches the {id} puzzle or writes the error response.
func loadPuzzle(w http.ResponseWriter, r *http.Request, store Store) (soup.Puzzle, bool) {
	p, err := store.GetPuzzle(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "puzzle not found")
		return p, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return p, false
	}
	return p, true
}

func handleAskPuzzle(store Store, a *analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req QuestionRequest
		if !decodeValid(w, r, &req) {
			return
		}
		p, ok := loadPuzzle(w, r, store)
		if !ok {
			return
		}

		resp := QuestionResponse{Question: req.Question}
		v, err := a.classify(puzzleSubject(p), req.Question)
		if err != nil {
			resp.Error = err.Error()
		}
		resp.Suggestion = v

		if p.Official {
			u, _ := userFrom(r)
			q, err := store.RecordPuzzleQuestion(r.Context(), p.ID, u.ID, req.Question, v)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			resp.ID, resp.Recorded = q.ID, true
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleListPuzzleQuestions(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadPuzzle(w, r, store)
		if !ok {
			return
		}
		qs, err := store.ListPuzzleQuestions(r.Context(), p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func handleGuessPuzzle(store Store, a *analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if !decodeValid(w, r, &req) {
			return
		}
		p, ok := loadPuzzle(w, r, store)
		if !ok {
			return
		}

		var resp GuessResponse
		if score, err := a.score(puzzleSubject(p), req.Guess); err != nil {
			resp.Error = err.Error()
		} else {
			resp.Score = &score
			resp.Closeness = judge.Judge(score)
			resp.Solved = resp.Closeness == judge.Solved
		}
		if resp.Solved {
			resp.Answer = p.Answer
		}

		if u, ok := userFrom(r); ok {
			if err := store.RecordPuzzleGuess(r.Context(), p.ID, u.ID, req.Guess, resp.Score); err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if resp.Solved {
				if err := store.MarkSolved(r.Context(), u.ID, p.ID, *resp.Score); err != nil {
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
