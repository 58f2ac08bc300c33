// Package soup defines the domain types of the lateral-thinking puzzle
// site: puzzles, accounts, multiplayer rooms and the attempts made in them.
// It depends only on the judging engine's verdict types.
package soup

import (
	"errors"
	"fmt"

	"github.com/playperu/pelicansoup/internal/judge"
)

type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Official  bool   `json:"official"`
	CreatedAt string `json:"createdAt"`
}

type UserStats struct {
	UserID   string `json:"userId"`
	Solved   int    `json:"solved"`
	Guesses  int    `json:"guesses"`
	Authored int    `json:"authored"`
}

// Puzzle is a situation puzzle. Answer is only filled for its author.
type Puzzle struct {
	ID         string   `json:"id"`
	AuthorID   string   `json:"authorId,omitempty"`
	AuthorName string   `json:"authorName,omitempty"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Answer     string   `json:"answer,omitempty"`
	Hints      []string `json:"hints"`
	Lang       string   `json:"lang"`
	Official   bool     `json:"official"`
	Views      int      `json:"views"`
	Likes      int      `json:"likes"`
	Comments   int      `json:"comments"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

type Comment struct {
	ID        string     `json:"id"`
	PuzzleID  string     `json:"puzzleId"`
	UserID    string     `json:"userId"`
	Username  string     `json:"username"`
	ParentID  string     `json:"parentId,omitempty"`
	Body      string     `json:"body"`
	CreatedAt string     `json:"createdAt"`
	Replies   []*Comment `json:"replies"`
}

// CommentTree nests flat comments under their parents, preserving input
// order among siblings. Comments whose parent is missing become roots.
func CommentTree(flat []Comment) []*Comment {
	nodes := make(map[string]*Comment, len(flat))
	for i := range flat {
		c := flat[i]
		c.Replies = []*Comment{}
		nodes[c.ID] = &c
	}

	roots := []*Comment{}
	for i := range flat {
		c := nodes[flat[i].ID]
		if parent, ok := nodes[c.ParentID]; ok && c.ParentID != c.ID {
			parent.Replies = append(parent.Replies, c)
			continue
		}
		roots = append(roots, c)
	}
	return roots
}

type RoomStatus string

const (
	RoomLobby    RoomStatus = "LOBBY"
	RoomPlaying  RoomStatus = "PLAYING"
	RoomFinished RoomStatus = "FINISHED"
)

var ErrInvalidTransition = errors.New("invalid room status transition")

// Transition checks that a room may move from s to next. Rooms only move
// forward: LOBBY to PLAYING to FINISHED, and a lobby may be closed early.
func (s RoomStatus) Transition(next RoomStatus) error {
	switch {
	case s == RoomLobby && next == RoomPlaying,
		s == RoomLobby && next == RoomFinished,
		s == RoomPlaying && next == RoomFinished:
		return nil
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, s, next)
}

// Room is a multiplayer session around one story. Truth is hidden from
// players until RevealsTruth holds. PuzzleID is set when the story was
// copied from a stored puzzle; Solved reports whether any guess in the
// room reached judge.SolvedScore.
type Room struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Status        RoomStatus `json:"status"`
	PuzzleID      string     `json:"puzzleId,omitempty"`
	Title         string     `json:"title"`
	Story         string     `json:"story"`
	Truth         string     `json:"truth,omitempty"`
	Hints         []string   `json:"hints"`
	Lang          string     `json:"lang"`
	MaxQuestions  int        `json:"maxQuestions"`
	QuestionCount int        `json:"questionCount"`
	Solved        bool       `json:"solved"`
	CreatedAt     string     `json:"createdAt"`
	StartedAt     *string    `json:"startedAt"`
	FinishedAt    *string    `json:"finishedAt"`
}

// RevealsTruth reports whether players may see the truth. A story written
// for the room is revealed once the room finishes. A stored puzzle's answer
// is only revealed if someone in the room solved it, so a room cannot be
// used to read a puzzle's answer.
func (r Room) RevealsTruth() bool {
	if r.Status != RoomFinished {
		return false
	}
	return r.PuzzleID == "" || r.Solved
}

// Player is a room member. VoteFor holds the player they currently vote
// to eliminate; eliminated players can no longer ask, guess or vote.
type Player struct {
	ID         string  `json:"id"`
	RoomID     string  `json:"roomId"`
	Nickname   string  `json:"nickname"`
	IsHost     bool    `json:"isHost"`
	Eliminated bool    `json:"eliminated"`
	VoteFor    *string `json:"voteFor"`
	JoinedAt   string  `json:"joinedAt"`
}

// QuestionAttempt is a yes/no question asked in a room. Suggestion is the
// engine's advice; Verdict is what the host confirmed. Both are pending
// until set.
type QuestionAttempt struct {
	ID         string        `json:"id"`
	PlayerID   string        `json:"playerId"`
	Nickname   string        `json:"nickname"`
	Question   string        `json:"question"`
	Suggestion judge.Verdict `json:"suggestion"`
	Verdict    judge.Verdict `json:"verdict"`
	CreatedAt  string        `json:"createdAt"`
	AnsweredAt *string       `json:"answeredAt"`
}

// GuessAttempt is a free-text solution attempt. Score is nil when the
// guess could not be analysed.
type GuessAttempt struct {
	ID        string          `json:"id"`
	PlayerID  string          `json:"playerId"`
	Nickname  string          `json:"nickname"`
	Guess     string          `json:"guess"`
	Score     *int            `json:"score"`
	Closeness judge.Closeness `json:"closeness,omitempty"`
	CreatedAt string          `json:"createdAt"`
}

type ChatMessage struct {
	ID        string `json:"id"`
	PlayerID  string `json:"playerId"`
	Nickname  string `json:"nickname"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}
