package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/playperu/pelicansoup/internal/judge"
	"github.com/playperu/pelicansoup/internal/soup"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

var _ Store = (*SQLiteStore)(nil)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func encodeHints(hints []string) string {
	if hints == nil {
		hints = []string{}
	}
	b, _ := json.Marshal(hints)
	return string(b)
}

func decodeHints(raw string) []string {
	hints := []string{}
	if raw != "" {
		json.Unmarshal([]byte(raw), &hints)
	}
	return hints
}

func parseVerdict(s string) judge.Verdict {
	v, err := judge.ParseVerdict(s)
	if err != nil {
		return judge.Pending
	}
	return v
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// --- Accounts ---

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (soup.User, error) {
	u := soup.User{ID: uuid.NewString(), Username: username}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES (?, ?, ?)
		RETURNING is_official, created_at
	`, u.ID, username, passwordHash).Scan(&u.Official, &u.CreatedAt)
	if isUniqueViolation(err) {
		return soup.User{}, fmt.Errorf("username %q taken: %w", username, ErrConflict)
	}
	return u, err
}

func (s *SQLiteStore) UserCredentials(ctx context.Context, username string) (soup.User, string, error) {
	var u soup.User
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, is_official, created_at, password_hash
		FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.Official, &u.CreatedAt, &hash)
	return u, hash, notFound(err)
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_sessions (id, user_id) VALUES (?, ?)
	`, token, userID)
	return token, err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE id = ?`, token)
	return err
}

func (s *SQLiteStore) UserFromSession(ctx context.Context, token string) (soup.User, error) {
	var u soup.User
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.is_official, u.created_at
		FROM user_sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ?
	`, token).Scan(&u.ID, &u.Username, &u.Official, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, errNoSession
	}
	return u, err
}

func (s *SQLiteStore) UserStats(ctx context.Context, userID string) (soup.UserStats, error) {
	st := soup.UserStats{UserID: userID}
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&exists)
	if err != nil {
		return st, notFound(err)
	}
	err = s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM solved_puzzles WHERE user_id = ?),
			(SELECT COUNT(*) FROM puzzle_guesses WHERE user_id = ?),
			(SELECT COUNT(*) FROM puzzles WHERE author_id = ?)
	`, userID, userID, userID).Scan(&st.Solved, &st.Guesses, &st.Authored)
	return st, err
}

// --- Puzzles ---

const puzzleColumns = `
	p.id, COALESCE(p.author_id, ''), COALESCE(u.username, ''), p.title, p.content, p.answer,
	p.hints, p.lang, CASE WHEN p.author_id IS NULL THEN 1 ELSE u.is_official END,
	p.views, p.likes, (SELECT COUNT(*) FROM comments c WHERE c.puzzle_id = p.id),
	p.created_at, p.updated_at`

func scanPuzzle(row rowScanner) (soup.Puzzle, error) {
	var p soup.Puzzle
	var hints string
	err := row.Scan(&p.ID, &p.AuthorID, &p.AuthorName, &p.Title, &p.Content, &p.Answer,
		&hints, &p.Lang, &p.Official, &p.Views, &p.Likes, &p.Comments, &p.CreatedAt, &p.UpdatedAt)
	p.Hints = decodeHints(hints)
	return p, err
}

func (s *SQLiteStore) ListPuzzles(ctx context.Context, f PuzzleFilter) ([]soup.Puzzle, error) {
	query := `SELECT` + puzzleColumns + `
		FROM puzzles p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE (? = '' OR p.author_id = ?) AND (? = '' OR p.lang = ?)
		ORDER BY p.created_at DESC, p.rowid DESC
		LIMIT ? OFFSET ?`
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, query, f.AuthorID, f.AuthorID, f.Lang, f.Lang, limit, f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	puzzles := []soup.Puzzle{}
	for rows.Next() {
		p, err := scanPuzzle(rows)
		if err != nil {
			return nil, err
		}
		puzzles = append(puzzles, p)
	}
	return puzzles, rows.Err()
}

func (s *SQLiteStore) GetPuzzle(ctx context.Context, id string) (soup.Puzzle, error) {
	p, err := scanPuzzle(s.db.QueryRowContext(ctx, `SELECT`+puzzleColumns+`
		FROM puzzles p
		LEFT JOIN users u ON u.id = p.author_id
		WHERE p.id = ?
	`, id))
	return p, notFound(err)
}

func (s *SQLiteStore) CreatePuzzle(ctx context.Context, p soup.Puzzle) (soup.Puzzle, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	var author any
	if p.AuthorID != "" {
		author = p.AuthorID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO puzzles (id, author_id, title, content, answer, hints, lang)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, author, p.Title, p.Content, p.Answer, encodeHints(p.Hints), p.Lang)
	if err != nil {
		return soup.Puzzle{}, err
	}
	return s.GetPuzzle(ctx, p.ID)
}

func (s *SQLiteStore) UpdatePuzzle(ctx context.Context, p soup.Puzzle) (soup.Puzzle, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE puzzles
		SET title = ?, content = ?, answer = ?, hints = ?, lang = ?,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ?
	`, p.Title, p.Content, p.Answer, encodeHints(p.Hints), p.Lang, p.ID)
	if err != nil {
		return soup.Puzzle{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return soup.Puzzle{}, ErrNotFound
	}
	return s.GetPuzzle(ctx, p.ID)
}

func (s *SQLiteStore) DeletePuzzle(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM puzzles WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) IncrementViews(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE puzzles SET views = views + 1 WHERE id = ?`, id)
	return err
}

func (s *SQLiteStore) ToggleLike(ctx context.Context, puzzleID, userID string) (bool, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM puzzles WHERE id = ?`, puzzleID).Scan(&exists); err != nil {
		return false, 0, notFound(err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM puzzle_likes WHERE puzzle_id = ? AND user_id = ?`, puzzleID, userID)
	if err != nil {
		return false, 0, err
	}
	liked := false
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO puzzle_likes (puzzle_id, user_id) VALUES (?, ?)
		`, puzzleID, userID); err != nil {
			return false, 0, err
		}
		liked = true
	}

	var likes int
	err = tx.QueryRowContext(ctx, `
		UPDATE puzzles SET likes = (SELECT COUNT(*) FROM puzzle_likes WHERE puzzle_id = ?)
		WHERE id = ?
		RETURNING likes
	`, puzzleID, puzzleID).Scan(&likes)
	if err != nil {
		return false, 0, err
	}
	return liked, likes, tx.Commit()
}

func (s *SQLiteStore) RecordPuzzleQuestion(ctx context.Context, puzzleID, userID, question string, suggestion judge.Verdict) (PuzzleQuestion, error) {
	q := PuzzleQuestion{ID: uuid.NewString(), UserID: userID, Question: question, Suggestion: suggestion}
	var user any
	if userID != "" {
		user = userID
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO puzzle_questions (id, puzzle_id, user_id, question, suggestion)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at
	`, q.ID, puzzleID, user, question, suggestion.String()).Scan(&q.CreatedAt)
	return q, err
}

func (s *SQLiteStore) ListPuzzleQuestions(ctx context.Context, puzzleID string) ([]PuzzleQuestion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, COALESCE(user_id, ''), question, suggestion, created_at
		FROM puzzle_questions
		WHERE puzzle_id = ?
		ORDER BY created_at, rowid
	`, puzzleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []PuzzleQuestion{}
	for rows.Next() {
		var q PuzzleQuestion
		var suggestion string
		if err := rows.Scan(&q.ID, &q.UserID, &q.Question, &suggestion, &q.CreatedAt); err != nil {
			return nil, err
		}
		q.Suggestion = parseVerdict(suggestion)
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) RecordPuzzleGuess(ctx context.Context, puzzleID, userID, guess string, score *int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO puzzle_guesses (id, puzzle_id, user_id, guess, score)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), puzzleID, userID, guess, score)
	return err
}

// MarkSolved records a solve, keeping the best score on repeats.
func (s *SQLiteStore) MarkSolved(ctx context.Context, userID, puzzleID string, score int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO solved_puzzles (user_id, puzzle_id, score)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, puzzle_id) DO UPDATE SET score = max(score, excluded.score)
	`, userID, puzzleID, score)
	return err
}

// --- Comments ---

func (s *SQLiteStore) ListComments(ctx context.Context, puzzleID string) ([]soup.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.puzzle_id, c.user_id, u.username, COALESCE(c.parent_id, ''), c.body, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.puzzle_id = ?
		ORDER BY c.created_at, c.rowid
	`, puzzleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []soup.Comment
	for rows.Next() {
		var c soup.Comment
		if err := rows.Scan(&c.ID, &c.PuzzleID, &c.UserID, &c.Username, &c.ParentID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *SQLiteStore) CreateComment(ctx context.Context, c soup.Comment) (soup.Comment, error) {
	if c.ParentID != "" {
		var parentPuzzle string
		err := s.db.QueryRowContext(ctx, `SELECT puzzle_id FROM comments WHERE id = ?`, c.ParentID).Scan(&parentPuzzle)
		if err != nil {
			return soup.Comment{}, notFound(err)
		}
		if parentPuzzle != c.PuzzleID {
			return soup.Comment{}, fmt.Errorf("parent belongs to another puzzle: %w", ErrConflict)
		}
	}

	c.ID = uuid.NewString()
	var parent any
	if c.ParentID != "" {
		parent = c.ParentID
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO comments (id, puzzle_id, user_id, parent_id, body)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at
	`, c.ID, c.PuzzleID, c.UserID, parent, c.Body).Scan(&c.CreatedAt)
	c.Replies = []*soup.Comment{}
	return c, err
}

// --- Rooms ---

var roomColumns = `
	r.id, r.code, r.status, COALESCE(r.puzzle_id, ''), r.title, r.story, r.truth, r.hints, r.lang, r.max_questions,
	(SELECT COUNT(*) FROM room_questions q WHERE q.room_id = r.id),
	EXISTS (SELECT 1 FROM room_guesses g WHERE g.room_id = r.id AND g.score >= ` + strconv.Itoa(judge.SolvedScore) + `),
	r.created_at, r.started_at, r.finished_at`

func scanRoom(row rowScanner) (soup.Room, error) {
	var r soup.Room
	var hints string
	var started, finished sql.NullString
	err := row.Scan(&r.ID, &r.Code, &r.Status, &r.PuzzleID, &r.Title, &r.Story, &r.Truth, &hints, &r.Lang,
		&r.MaxQuestions, &r.QuestionCount, &r.Solved, &r.CreatedAt, &started, &finished)
	r.Hints = decodeHints(hints)
	r.StartedAt = nullString(started)
	r.FinishedAt = nullString(finished)
	return r, err
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, room soup.Room, hostNickname string) (soup.Room, soup.Player, string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return soup.Room{}, soup.Player{}, "", err
	}
	defer tx.Rollback()

	room.ID = uuid.NewString()
	var puzzleID any
	if room.PuzzleID != "" {
		puzzleID = room.PuzzleID
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO rooms (id, code, puzzle_id, title, story, truth, hints, lang, max_questions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, room.ID, room.Code, puzzleID, room.Title, room.Story, room.Truth, encodeHints(room.Hints), room.Lang, room.MaxQuestions)
	if isUniqueViolation(err) {
		return soup.Room{}, soup.Player{}, "", fmt.Errorf("room code %q in use: %w", room.Code, ErrConflict)
	}
	if err != nil {
		return soup.Room{}, soup.Player{}, "", err
	}

	host, token, err := insertPlayer(ctx, tx, room.ID, hostNickname, true)
	if err != nil {
		return soup.Room{}, soup.Player{}, "", err
	}

	created, err := scanRoom(tx.QueryRowContext(ctx, `SELECT`+roomColumns+` FROM rooms r WHERE r.id = ?`, room.ID))
	if err != nil {
		return soup.Room{}, soup.Player{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return soup.Room{}, soup.Player{}, "", err
	}
	return created, host, token, nil
}

func insertPlayer(ctx context.Context, tx *sql.Tx, roomID, nickname string, host bool) (soup.Player, string, error) {
	p := soup.Player{ID: uuid.NewString(), RoomID: roomID, Nickname: nickname, IsHost: host}
	token := uuid.NewString()
	err := tx.QueryRowContext(ctx, `
		INSERT INTO room_players (id, room_id, nickname, is_host, session_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING joined_at
	`, p.ID, roomID, nickname, host, token).Scan(&p.JoinedAt)
	if isUniqueViolation(err) {
		return soup.Player{}, "", fmt.Errorf("nickname %q taken: %w", nickname, ErrConflict)
	}
	return p, token, err
}

func (s *SQLiteStore) RoomByCode(ctx context.Context, code string) (soup.Room, error) {
	r, err := scanRoom(s.db.QueryRowContext(ctx, `SELECT`+roomColumns+` FROM rooms r WHERE r.code = ?`, code))
	return r, notFound(err)
}

func (s *SQLiteStore) JoinRoom(ctx context.Context, roomID, nickname string) (soup.Player, string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return soup.Player{}, "", err
	}
	defer tx.Rollback()

	p, token, err := insertPlayer(ctx, tx, roomID, nickname, false)
	if err != nil {
		return soup.Player{}, "", err
	}
	return p, token, tx.Commit()
}

const playerColumns = `id, room_id, nickname, is_host, eliminated, vote_for, joined_at`

func scanPlayer(row rowScanner) (soup.Player, error) {
	var p soup.Player
	var vote sql.NullString
	err := row.Scan(&p.ID, &p.RoomID, &p.Nickname, &p.IsHost, &p.Eliminated, &vote, &p.JoinedAt)
	p.VoteFor = nullString(vote)
	return p, err
}

func (s *SQLiteStore) PlayerFromToken(ctx context.Context, roomID, token string) (soup.Player, error) {
	p, err := scanPlayer(s.db.QueryRowContext(ctx, `
		SELECT `+playerColumns+`
		FROM room_players
		WHERE session_id = ? AND room_id = ?
	`, token, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		return p, errNoSession
	}
	return p, err
}

func (s *SQLiteStore) ListRoomPlayers(ctx context.Context, roomID string) ([]soup.Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playerColumns+`
		FROM room_players WHERE room_id = ? ORDER BY joined_at, rowid
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := []soup.Player{}
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// CastVote records voterID's vote against targetID. Both must be active
// players of the room.
func (s *SQLiteStore) CastVote(ctx context.Context, roomID, voterID, targetID string) (soup.Player, error) {
	p, err := scanPlayer(s.db.QueryRowContext(ctx, `
		UPDATE room_players SET vote_for = ?
		WHERE id = ? AND room_id = ? AND eliminated = 0
			AND EXISTS (SELECT 1 FROM room_players t WHERE t.id = ? AND t.room_id = ? AND t.eliminated = 0)
		RETURNING `+playerColumns,
		targetID, voterID, roomID, targetID, roomID))
	return p, notFound(err)
}

// EliminatePlayer marks a player eliminated and withdraws every vote cast
// for or by them.
func (s *SQLiteStore) EliminatePlayer(ctx context.Context, roomID, playerID string) (soup.Player, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return soup.Player{}, err
	}
	defer tx.Rollback()

	p, err := scanPlayer(tx.QueryRowContext(ctx, `
		UPDATE room_players SET eliminated = 1, vote_for = NULL
		WHERE id = ? AND room_id = ? AND eliminated = 0
		RETURNING `+playerColumns,
		playerID, roomID))
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM room_players WHERE id = ? AND room_id = ?)`, playerID, roomID,
		).Scan(&exists); err != nil {
			return soup.Player{}, err
		}
		if exists {
			return soup.Player{}, fmt.Errorf("player already eliminated: %w", ErrConflict)
		}
		return soup.Player{}, ErrNotFound
	}
	if err != nil {
		return soup.Player{}, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE room_players SET vote_for = NULL WHERE room_id = ? AND vote_for = ?`, roomID, playerID,
	); err != nil {
		return soup.Player{}, err
	}
	return p, tx.Commit()
}

func (s *SQLiteStore) SetRoomStatus(ctx context.Context, roomID string, from, to soup.RoomStatus) error {
	if err := from.Transition(to); err != nil {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	stamp := "started_at"
	if to == soup.RoomFinished {
		stamp = "finished_at"
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE rooms SET status = ?, `+stamp+` = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND status = ?
	`, to, roomID, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("room is not %s: %w", from, ErrConflict)
	}
	return nil
}

const questionColumns = `
	q.id, q.player_id, p.nickname, q.question, q.suggestion, q.verdict, q.created_at, q.answered_at`

func scanQuestion(row rowScanner) (soup.QuestionAttempt, error) {
	var q soup.QuestionAttempt
	var suggestion, verdict string
	var answered sql.NullString
	err := row.Scan(&q.ID, &q.PlayerID, &q.Nickname, &q.Question, &suggestion, &verdict, &q.CreatedAt, &answered)
	q.Suggestion = parseVerdict(suggestion)
	q.Verdict = parseVerdict(verdict)
	q.AnsweredAt = nullString(answered)
	return q, err
}

func (s *SQLiteStore) AddRoomQuestion(ctx context.Context, roomID, playerID, question string, suggestion judge.Verdict) (soup.QuestionAttempt, error) {
	id := uuid.NewString()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO room_questions (id, room_id, player_id, question, suggestion)
		SELECT ?, ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM room_questions WHERE room_id = ?)
			< (SELECT max_questions FROM rooms WHERE id = ?)
	`, id, roomID, playerID, question, suggestion.String(), roomID, roomID)
	if err != nil {
		return soup.QuestionAttempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return soup.QuestionAttempt{}, ErrQuestionLimit
	}
	return s.RoomQuestion(ctx, roomID, id)
}

func (s *SQLiteStore) RoomQuestion(ctx context.Context, roomID, questionID string) (soup.QuestionAttempt, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `SELECT`+questionColumns+`
		FROM room_questions q
		JOIN room_players p ON p.id = q.player_id
		WHERE q.id = ? AND q.room_id = ?
	`, questionID, roomID))
	return q, notFound(err)
}

func (s *SQLiteStore) ListRoomQuestions(ctx context.Context, roomID string) ([]soup.QuestionAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT`+questionColumns+`
		FROM room_questions q
		JOIN room_players p ON p.id = q.player_id
		WHERE q.room_id = ?
		ORDER BY q.created_at, q.rowid
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []soup.QuestionAttempt{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) SetQuestionVerdict(ctx context.Context, roomID, questionID string, v judge.Verdict) (soup.QuestionAttempt, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE room_questions
		SET verdict = ?, answered_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
		WHERE id = ? AND room_id = ?
	`, v.String(), questionID, roomID)
	if err != nil {
		return soup.QuestionAttempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return soup.QuestionAttempt{}, ErrNotFound
	}
	return s.RoomQuestion(ctx, roomID, questionID)
}

func (s *SQLiteStore) SetQuestionSuggestion(ctx context.Context, roomID, questionID string, v judge.Verdict) (soup.QuestionAttempt, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE room_questions SET suggestion = ? WHERE id = ? AND room_id = ?
	`, v.String(), questionID, roomID)
	if err != nil {
		return soup.QuestionAttempt{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return soup.QuestionAttempt{}, ErrNotFound
	}
	return s.RoomQuestion(ctx, roomID, questionID)
}

func scanGuess(row rowScanner) (soup.GuessAttempt, error) {
	var g soup.GuessAttempt
	var score sql.NullInt64
	err := row.Scan(&g.ID, &g.PlayerID, &g.Nickname, &g.Guess, &score, &g.CreatedAt)
	if score.Valid {
		v := int(score.Int64)
		g.Score = &v
		g.Closeness = judge.Judge(v)
	}
	return g, err
}

func (s *SQLiteStore) AddRoomGuess(ctx context.Context, roomID, playerID, guess string, score *int) (soup.GuessAttempt, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO room_guesses (id, room_id, player_id, guess, score)
		VALUES (?, ?, ?, ?, ?)
	`, id, roomID, playerID, guess, score); err != nil {
		return soup.GuessAttempt{}, err
	}
	g, err := scanGuess(s.db.QueryRowContext(ctx, `
		SELECT g.id, g.player_id, p.nickname, g.guess, g.score, g.created_at
		FROM room_guesses g
		JOIN room_players p ON p.id = g.player_id
		WHERE g.id = ?
	`, id))
	return g, notFound(err)
}

func (s *SQLiteStore) ListRoomGuesses(ctx context.Context, roomID string) ([]soup.GuessAttempt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.player_id, p.nickname, g.guess, g.score, g.created_at
		FROM room_guesses g
		JOIN room_players p ON p.id = g.player_id
		WHERE g.room_id = ?
		ORDER BY g.created_at, g.rowid
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guesses := []soup.GuessAttempt{}
	for rows.Next() {
		g, err := scanGuess(rows)
		if err != nil {
			return nil, err
		}
		guesses = append(guesses, g)
	}
	return guesses, rows.Err()
}

func (s *SQLiteStore) AddRoomMessage(ctx context.Context, roomID, playerID, body string) (soup.ChatMessage, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO room_messages (id, room_id, player_id, body)
		VALUES (?, ?, ?, ?)
	`, id, roomID, playerID, body); err != nil {
		return soup.ChatMessage{}, err
	}
	var m soup.ChatMessage
	err := s.db.QueryRowContext(ctx, `
		SELECT m.id, m.player_id, p.nickname, m.body, m.created_at
		FROM room_messages m
		JOIN room_players p ON p.id = m.player_id
		WHERE m.id = ?
	`, id).Scan(&m.ID, &m.PlayerID, &m.Nickname, &m.Body, &m.CreatedAt)
	return m, notFound(err)
}

// ListRoomMessages returns the latest limit messages, oldest first.
func (s *SQLiteStore) ListRoomMessages(ctx context.Context, roomID string, limit int) ([]soup.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, nickname, body, created_at FROM (
			SELECT m.id, m.player_id, p.nickname, m.body, m.created_at, m.rowid AS seq
			FROM room_messages m
			JOIN room_players p ON p.id = m.player_id
			WHERE m.room_id = ?
			ORDER BY m.created_at DESC, m.rowid DESC
			LIMIT ?
		) ORDER BY created_at, seq
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []soup.ChatMessage{}
	for rows.Next() {
		var m soup.ChatMessage
		if err := rows.Scan(&m.ID, &m.PlayerID, &m.Nickname, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
