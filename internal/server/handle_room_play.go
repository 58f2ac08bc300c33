package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/pelicansoup/internal/judge"
	"github.com/playperu/pelicansoup/internal/soup"
)

type VerdictRequest struct {
	Verdict string `json:"verdict" validate:"required,oneof=yes no irrelevant decisive"`
}

func (v *VerdictRequest) normalize() { v.Verdict = strings.ToLower(strings.TrimSpace(v.Verdict)) }

type ChatRequest struct {
	Body string `json:"body" validate:"required,max=500"`
}

func (c *ChatRequest) normalize() { c.Body = strings.TrimSpace(c.Body) }

type VoteRequest struct {
	PlayerID string `json:"playerId" validate:"required,uuid"`
}

func (v *VoteRequest) normalize() { v.PlayerID = strings.TrimSpace(v.PlayerID) }

// RoomQuestionResponse wraps a stored question. Error is set when the
// suggestion could not be computed and was left pending.
type RoomQuestionResponse struct {
	Question soup.QuestionAttempt `json:"question"`
	Error    string               `json:"error,omitempty"`
}

type RoomGuessResponse struct {
	Guess soup.GuessAttempt `json:"guess"`
	Error string            `json:"error,omitempty"`
}

func roomSubject(room soup.Room) subject {
	return subject{key: roomKey(room.ID), lang: room.Lang, content: room.Story, answer: room.Truth, hints: room.Hints}
}

// requirePlaying rejects the request unless the room's game is running.
func requirePlaying(w http.ResponseWriter, room soup.Room) bool {
	if room.Status != soup.RoomPlaying {
		writeError(w, http.StatusConflict, "room is not playing")
		return false
	}
	return true
}

// requireActive rejects eliminated players.
func requireActive(w http.ResponseWriter, p soup.Player) bool {
	if p.Eliminated {
		writeError(w, http.StatusConflict, "player is eliminated")
		return false
	}
	return true
}

func handleAskRoom(store Store, broker Broker, a *analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if !requirePlaying(w, room) || !requireActive(w, playerFrom(r)) {
			return
		}
		var req QuestionRequest
		if !decodeValid(w, r, &req) {
			return
		}

		var resp RoomQuestionResponse
		suggestion, err := a.classify(roomSubject(room), req.Question)
		if err != nil {
			resp.Error = err.Error()
		}

		q, err := store.AddRoomQuestion(r.Context(), room.ID, playerFrom(r).ID, req.Question, suggestion)
		if errors.Is(err, ErrQuestionLimit) {
			writeError(w, http.StatusConflict, "question limit reached")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Question = q

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventQuestionAsked,
			RoomCode: room.Code,
			Question: &q,
		})

		writeJSON(w, http.StatusCreated, resp)
	}
}

func handleSetVerdict(store Store, broker Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if !requirePlaying(w, room) {
			return
		}
		var req VerdictRequest
		if !decodeValid(w, r, &req) {
			return
		}
		v, err := judge.ParseVerdict(req.Verdict)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		q, err := store.SetQuestionVerdict(r.Context(), room.ID, chi.URLParam(r, "qid"), v)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventQuestionJudged,
			RoomCode: room.Code,
			Question: &q,
		})

		writeJSON(w, http.StatusOK, q)
	}
}

func handleReanalyze(store Store, broker Broker, a *analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if !requirePlaying(w, room) {
			return
		}
		q, err := store.RoomQuestion(r.Context(), room.ID, chi.URLParam(r, "qid"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "question not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var resp RoomQuestionResponse
		a.forget(roomKey(room.ID))
		suggestion, err := a.classify(roomSubject(room), q.Question)
		if err != nil {
			resp.Error = err.Error()
		}

		q, err = store.SetQuestionSuggestion(r.Context(), room.ID, q.ID, suggestion)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Question = q

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventQuestionJudged,
			RoomCode: room.Code,
			Question: &q,
		})

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleGuessRoom(store Store, broker Broker, a *analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if !requirePlaying(w, room) || !requireActive(w, playerFrom(r)) {
			return
		}
		var req GuessRequest
		if !decodeValid(w, r, &req) {
			return
		}

		var (
			resp  RoomGuessResponse
			score *int
		)
		if s, err := a.score(roomSubject(room), req.Guess); err != nil {
			resp.Error = err.Error()
		} else {
			score = &s
		}

		g, err := store.AddRoomGuess(r.Context(), room.ID, playerFrom(r).ID, req.Guess, score)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp.Guess = g

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventGuessMade,
			RoomCode: room.Code,
			Guess:    &g,
		})

		writeJSON(w, http.StatusCreated, resp)
	}
}

// handleVote records the caller's vote to eliminate another player. A new
// vote replaces the previous one.
func handleVote(store Store, broker Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		voter := playerFrom(r)
		if !requirePlaying(w, room) || !requireActive(w, voter) {
			return
		}
		var req VoteRequest
		if !decodeValid(w, r, &req) {
			return
		}
		if req.PlayerID == voter.ID {
			writeError(w, http.StatusBadRequest, "cannot vote for yourself")
			return
		}

		p, err := store.CastVote(r.Context(), room.ID, voter.ID, req.PlayerID)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventVoteCast,
			RoomCode: room.Code,
			Player:   &p,
		})

		writeJSON(w, http.StatusOK, p)
	}
}

func handleEliminate(store Store, broker Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if !requirePlaying(w, room) {
			return
		}

		p, err := store.EliminatePlayer(r.Context(), room.ID, chi.URLParam(r, "pid"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "player not found")
			return
		}
		if errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "player already eliminated")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventPlayerEliminated,
			RoomCode: room.Code,
			Player:   &p,
		})

		writeJSON(w, http.StatusOK, p)
	}
}

func handleListChat(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := store.ListRoomMessages(r.Context(), roomFrom(r).ID, chatHistory)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, messages)
	}
}

func handlePostChat(store Store, broker Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		var req ChatRequest
		if !decodeValid(w, r, &req) {
			return
		}

		m, err := store.AddRoomMessage(r.Context(), room.ID, playerFrom(r).ID, req.Body)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventChatMessage,
			RoomCode: room.Code,
			Message:  &m,
		})

		writeJSON(w, http.StatusCreated, m)
	}
}
