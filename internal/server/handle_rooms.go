package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/playperu/pelicansoup/internal/soup"
)

const (
	roomCodeLen      = 6
	roomCodeAttempts = 5
	defaultQuestions = 30
	chatHistory      = 100
)

// CreateRoomRequest opens a room either from an existing puzzle or from a
// story written for the room.
type CreateRoomRequest struct {
	Nickname     string   `json:"nickname" validate:"required,max=24"`
	PuzzleID     string   `json:"puzzleId" validate:"omitempty,uuid"`
	Title        string   `json:"title" validate:"max=120"`
	Story        string   `json:"story" validate:"required_without=PuzzleID,max=4000"`
	Truth        string   `json:"truth" validate:"required_without=PuzzleID,max=4000"`
	Hints        []string `json:"hints" validate:"max=10,dive,required,max=500"`
	Lang         string   `json:"lang" validate:"omitempty,bcp47_language_tag"`
	MaxQuestions int      `json:"maxQuestions" validate:"omitempty,min=1,max=200"`
}

func (c *CreateRoomRequest) normalize() {
	c.Nickname = strings.TrimSpace(c.Nickname)
	c.PuzzleID = strings.TrimSpace(c.PuzzleID)
	c.Title = strings.TrimSpace(c.Title)
	c.Story = strings.TrimSpace(c.Story)
	c.Truth = strings.TrimSpace(c.Truth)
	c.Lang = strings.TrimSpace(c.Lang)
}

type JoinRoomRequest struct {
	Nickname string `json:"nickname" validate:"required,max=24"`
}

func (j *JoinRoomRequest) normalize() { j.Nickname = strings.TrimSpace(j.Nickname) }

// RoomSessionResponse is returned to a player entering a room. Token
// authenticates their later calls.
type RoomSessionResponse struct {
	Room   soup.Room   `json:"room"`
	Player soup.Player `json:"player"`
	Token  string      `json:"token"`
}

// RoomStateResponse is a full snapshot that clients reconcile events
// against.
type RoomStateResponse struct {
	Room      soup.Room              `json:"room"`
	Players   []soup.Player          `json:"players"`
	Questions []soup.QuestionAttempt `json:"questions"`
	Guesses   []soup.GuessAttempt    `json:"guesses"`
	Messages  []soup.ChatMessage     `json:"messages"`
}

// hideTruth strips the truth unless the room reveals it.
func hideTruth(room soup.Room) soup.Room {
	if !room.RevealsTruth() {
		room.Truth = ""
	}
	return room
}

func newRoomCode() string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(code[:roomCodeLen])
}

func handleCreateRoom(store Store, defaultLang string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateRoomRequest
		if !decodeValid(w, r, &req) {
			return
		}

		room := soup.Room{
			Title:        req.Title,
			Story:        req.Story,
			Truth:        req.Truth,
			Hints:        req.Hints,
			Lang:         req.Lang,
			MaxQuestions: req.MaxQuestions,
		}
		if req.PuzzleID != "" {
			p, err := store.GetPuzzle(r.Context(), req.PuzzleID)
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "puzzle not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if u, _ := userFrom(r); !p.Official && p.AuthorID != u.ID {
				writeError(w, http.StatusForbidden, "only the author can open a room from this puzzle")
				return
			}
			room.PuzzleID = p.ID
			room.Title, room.Story, room.Truth, room.Hints = p.Title, p.Content, p.Answer, p.Hints
			if room.Lang == "" {
				room.Lang = p.Lang
			}
		}
		if room.Lang == "" {
			room.Lang = defaultLang
		}
		if room.MaxQuestions == 0 {
			room.MaxQuestions = defaultQuestions
		}
		if room.Hints == nil {
			room.Hints = []string{}
		}

		for range roomCodeAttempts {
			room.Code = newRoomCode()
			created, host, token, err := store.CreateRoom(r.Context(), room, req.Nickname)
			if errors.Is(err, ErrConflict) {
				continue
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			writeJSON(w, http.StatusCreated, RoomSessionResponse{
				Room:   hideTruth(created),
				Player: host,
				Token:  token,
			})
			return
		}
		writeError(w, http.StatusServiceUnavailable, "could not allocate a room code")
	}
}

func handleRoomState(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		ctx := r.Context()

		players, err := store.ListRoomPlayers(ctx, room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		questions, err := store.ListRoomQuestions(ctx, room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		guesses, err := store.ListRoomGuesses(ctx, room.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		messages, err := store.ListRoomMessages(ctx, room.ID, chatHistory)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, RoomStateResponse{
			Room:      hideTruth(room),
			Players:   players,
			Questions: questions,
			Guesses:   guesses,
			Messages:  messages,
		})
	}
}

func handleJoinRoom(store Store, broker Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if room.Status == soup.RoomFinished {
			writeError(w, http.StatusConflict, "room is finished")
			return
		}

		var req JoinRoomRequest
		if !decodeValid(w, r, &req) {
			return
		}

		player, token, err := store.JoinRoom(r.Context(), room.ID, req.Nickname)
		if errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "nickname already taken")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		broker.Publish(r.Context(), room.Code, RoomEvent{
			Type:     EventPlayerJoined,
			RoomCode: room.Code,
			Player:   &player,
		})

		writeJSON(w, http.StatusCreated, RoomSessionResponse{
			Room:   hideTruth(room),
			Player: player,
			Token:  token,
		})
	}
}

// handleRoomTransition moves the room to next. Finishing reveals the
// truth to every subscriber when the room allows it.
func handleRoomTransition(store Store, broker Broker, next soup.RoomStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		room := roomFrom(r)
		if err := store.SetRoomStatus(r.Context(), room.ID, room.Status, next); errors.Is(err, ErrConflict) {
			writeError(w, http.StatusConflict, "room cannot move from "+string(room.Status)+" to "+string(next))
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		updated, err := store.RoomByCode(r.Context(), room.Code)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		ev := RoomEvent{Type: EventStatusChanged, RoomCode: room.Code, Status: next}
		if updated.RevealsTruth() {
			ev.Truth = updated.Truth
		}
		broker.Publish(r.Context(), room.Code, ev)

		writeJSON(w, http.StatusOK, hideTruth(updated))
	}
}
