package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/pelicansoup/internal/soup"
)

// PuzzleRequest is the request body for creating or updating a puzzle.
type PuzzleRequest struct {
	Title   string   `json:"title" validate:"required,max=120"`
	Content string   `json:"content" validate:"required,max=4000"`
	Answer  string   `json:"answer" validate:"required,max=4000"`
	Hints   []string `json:"hints" validate:"max=10,dive,required,max=500"`
	Lang    string   `json:"lang" validate:"omitempty,bcp47_language_tag"`
}

func (p *PuzzleRequest) normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	p.Answer = strings.TrimSpace(p.Answer)
	p.Lang = strings.TrimSpace(p.Lang)
	hints := make([]string, 0, len(p.Hints))
	for _, h := range p.Hints {
		if h = strings.TrimSpace(h); h != "" {
			hints = append(hints, h)
		}
	}
	p.Hints = hints
}

// LikeResponse is returned by POST /api/puzzles/{id}/like.
type LikeResponse struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// redact hides the answer from everyone but the author.
func redact(p soup.Puzzle, r *http.Request) soup.Puzzle {
	if u, ok := userFrom(r); ok && p.AuthorID != "" && u.ID == p.AuthorID {
		return p
	}
	p.Answer = ""
	return p
}

func handleListPuzzles(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := PuzzleFilter{AuthorID: q.Get("author"), Lang: q.Get("lang")}
		f.Limit, _ = strconv.Atoi(q.Get("limit"))
		f.Offset, _ = strconv.Atoi(q.Get("offset"))
		if f.Limit > 100 {
			f.Limit = 100
		}
		if f.Offset < 0 {
			f.Offset = 0
		}

		puzzles, err := store.ListPuzzles(r.Context(), f)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for i := range puzzles {
			puzzles[i] = redact(puzzles[i], r)
		}
		writeJSON(w, http.StatusOK, puzzles)
	}
}

func handleGetPuzzle(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := store.IncrementViews(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		p, err := store.GetPuzzle(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "puzzle not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, redact(p, r))
	}
}

func handleCreatePuzzle(store Store, defaultLang string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PuzzleRequest
		if !decodeValid(w, r, &req) {
			return
		}
		if req.Lang == "" {
			req.Lang = defaultLang
		}

		u, _ := userFrom(r)
		p, err := store.CreatePuzzle(r.Context(), soup.Puzzle{
			AuthorID: u.ID,
			Title:    req.Title,
			Content:  req.Content,
			Answer:   req.Answer,
			Hints:    req.Hints,
			Lang:     req.Lang,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

// authoredPuzzle loads the {id} puzzle and checks that the caller wrote
// it. On failure it writes the response and returns false.
func authoredPuzzle(w http.ResponseWriter, r *http.Request, store Store) (soup.Puzzle, bool) {
	p, err := store.GetPuzzle(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "puzzle not found")
		return p, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return p, false
	}
	if u, _ := userFrom(r); p.AuthorID == "" || p.AuthorID != u.ID {
		writeError(w, http.StatusForbidden, "only the author can change this puzzle")
		return p, false
	}
	return p, true
}

func handleUpdatePuzzle(store Store, a *analyzer, defaultLang string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authoredPuzzle(w, r, store)
		if !ok {
			return
		}

		var req PuzzleRequest
		if !decodeValid(w, r, &req) {
			return
		}
		if req.Lang == "" {
			req.Lang = defaultLang
		}

		p.Title, p.Content, p.Answer, p.Hints, p.Lang = req.Title, req.Content, req.Answer, req.Hints, req.Lang
		updated, err := store.UpdatePuzzle(r.Context(), p)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "puzzle not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		a.forget(puzzleKey(p.ID))

		writeJSON(w, http.StatusOK, updated)
	}
}

func handleDeletePuzzle(store Store, a *analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := authoredPuzzle(w, r, store)
		if !ok {
			return
		}
		if err := store.DeletePuzzle(r.Context(), p.ID); err != nil && !errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		a.forget(puzzleKey(p.ID))

		writeJSON(w, http.StatusOK, StatusResponse{Status: "deleted"})
	}
}

func handleLikePuzzle(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, _ := userFrom(r)
		liked, likes, err := store.ToggleLike(r.Context(), chi.URLParam(r, "id"), u.ID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "puzzle not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, LikeResponse{Liked: liked, Likes: likes})
	}
}
