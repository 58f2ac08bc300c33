package server

import (
	"context"
	"errors"

	"github.com/playperu/pelicansoup/internal/judge"
	"github.com/playperu/pelicansoup/internal/soup"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a uniqueness or state precondition that failed.
	ErrConflict = errors.New("conflict")
	// ErrQuestionLimit is returned when a room has used all its questions.
	ErrQuestionLimit = errors.New("question limit reached")
)

// PuzzleFilter narrows ListPuzzles. Zero values mean no constraint.
type PuzzleFilter struct {
	AuthorID string
	Lang     string
	Limit    int
	Offset   int
}

// PuzzleQuestion is a question logged against an official puzzle.
type PuzzleQuestion struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId,omitempty"`
	Question   string        `json:"question"`
	Suggestion judge.Verdict `json:"suggestion"`
	CreatedAt  string        `json:"createdAt"`
}

type Store interface {
	CreateUser(ctx context.Context, username, passwordHash string) (soup.User, error)
	UserCredentials(ctx context.Context, username string) (soup.User, string, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	DeleteSession(ctx context.Context, token string) error
	UserFromSession(ctx context.Context, token string) (soup.User, error)
	UserStats(ctx context.Context, userID string) (soup.UserStats, error)

	ListPuzzles(ctx context.Context, f PuzzleFilter) ([]soup.Puzzle, error)
	// GetPuzzle returns the full puzzle including its answer.
	GetPuzzle(ctx context.Context, id string) (soup.Puzzle, error)
	CreatePuzzle(ctx context.Context, p soup.Puzzle) (soup.Puzzle, error)
	UpdatePuzzle(ctx context.Context, p soup.Puzzle) (soup.Puzzle, error)
	DeletePuzzle(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	ToggleLike(ctx context.Context, puzzleID, userID string) (liked bool, likes int, err error)

	RecordPuzzleQuestion(ctx context.Context, puzzleID, userID, question string, suggestion judge.Verdict) (PuzzleQuestion, error)
	ListPuzzleQuestions(ctx context.Context, puzzleID string) ([]PuzzleQuestion, error)
	RecordPuzzleGuess(ctx context.Context, puzzleID, userID, guess string, score *int) error
	MarkSolved(ctx context.Context, userID, puzzleID string, score int) error

	ListComments(ctx context.Context, puzzleID string) ([]soup.Comment, error)
	CreateComment(ctx context.Context, c soup.Comment) (soup.Comment, error)

	CreateRoom(ctx context.Context, room soup.Room, hostNickname string) (soup.Room, soup.Player, string, error)
	RoomByCode(ctx context.Context, code string) (soup.Room, error)
	JoinRoom(ctx context.Context, roomID, nickname string) (soup.Player, string, error)
	PlayerFromToken(ctx context.Context, roomID, token string) (soup.Player, error)
	ListRoomPlayers(ctx context.Context, roomID string) ([]soup.Player, error)
	// CastVote returns ErrNotFound unless voter and target are both active
	// players of the room.
	CastVote(ctx context.Context, roomID, voterID, targetID string) (soup.Player, error)
	EliminatePlayer(ctx context.Context, roomID, playerID string) (soup.Player, error)
	// SetRoomStatus moves a room from one status to another and fails with
	// ErrConflict if the room is no longer in from.
	SetRoomStatus(ctx context.Context, roomID string, from, to soup.RoomStatus) error

	AddRoomQuestion(ctx context.Context, roomID, playerID, question string, suggestion judge.Verdict) (soup.QuestionAttempt, error)
	RoomQuestion(ctx context.Context, roomID, questionID string) (soup.QuestionAttempt, error)
	ListRoomQuestions(ctx context.Context, roomID string) ([]soup.QuestionAttempt, error)
	SetQuestionVerdict(ctx context.Context, roomID, questionID string, v judge.Verdict) (soup.QuestionAttempt, error)
	SetQuestionSuggestion(ctx context.Context, roomID, questionID string, v judge.Verdict) (soup.QuestionAttempt, error)

	AddRoomGuess(ctx context.Context, roomID, playerID, guess string, score *int) (soup.GuessAttempt, error)
	ListRoomGuesses(ctx context.Context, roomID string) ([]soup.GuessAttempt, error)

	AddRoomMessage(ctx context.Context, roomID, playerID, body string) (soup.ChatMessage, error)
	ListRoomMessages(ctx context.Context, roomID string, limit int) ([]soup.ChatMessage, error)
}
