package migrations_test

import (
	"context"
	"testing"

	"github.com/playperu/pelicansoup/internal/database"
	"github.com/playperu/pelicansoup/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	n, err := migrations.Run(context.Background(), db)
	if err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	if n == 0 {
		t.Fatal("no migrations applied on a fresh database")
	}

	// Verify all tables exist by querying sqlite_master.
	want := []string{
		"users", "user_sessions", "puzzles", "puzzle_likes", "puzzle_questions", "puzzle_guesses",
		"solved_puzzles", "comments", "rooms", "room_players", "room_questions", "room_guesses", "room_messages",
	}

	for _, table := range want {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found: %v", table, err)
		}
	}
}

func TestMigrationsAddRoomColumns(t *testing.T) {
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := migrations.Run(context.Background(), db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	for _, c := range []struct{ table, column string }{
		{"rooms", "puzzle_id"},
		{"room_players", "eliminated"},
		{"room_players", "vote_for"},
	} {
		var n int
		err := db.QueryRow(
			"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", c.table, c.column,
		).Scan(&n)
		if err != nil {
			t.Fatalf("reading %s columns: %v", c.table, err)
		}
		if n != 1 {
			t.Errorf("column %s.%s not found", c.table, c.column)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), database.Memory)
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := migrations.Run(context.Background(), db); err != nil {
		t.Fatalf("first run: %v", err)
	}
	n, err := migrations.Run(context.Background(), db)
	if err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
	if n != 0 {
		t.Fatalf("second run applied %d migrations, want 0", n)
	}
}
