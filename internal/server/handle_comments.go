package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/playperu/pelicansoup/internal/soup"
)

type CommentRequest struct {
	Body     string `json:"body" validate:"required,max=2000"`
	ParentID string `json:"parentId" validate:"omitempty,uuid"`
}

func (c *CommentRequest) normalize() {
	c.Body = strings.TrimSpace(c.Body)
	c.ParentID = strings.TrimSpace(c.ParentID)
}

func handleListComments(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := loadPuzzle(w, r, store)
		if !ok {
			return
		}
		flat, err := store.ListComments(r.Context(), p.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, soup.CommentTree(flat))
	}
}

func handleCreateComment(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CommentRequest
		if !decodeValid(w, r, &req) {
			return
		}
		p, ok := loadPuzzle(w, r, store)
		if !ok {
			return
		}

		u, _ := userFrom(r)
		c, err := store.CreateComment(r.Context(), soup.Comment{
			PuzzleID: p.ID,
			UserID:   u.ID,
			ParentID: req.ParentID,
			Body:     req.Body,
		})
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) {
			writeError(w, http.StatusBadRequest, "parent comment not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		c.Username = u.Username

		writeJSON(w, http.StatusCreated, c)
	}
}
