package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playperu/pelicansoup/internal/soup"
)

// demoPuzzles are published as official puzzles on an empty database.
var demoPuzzles = []soup.Puzzle{
	{
		Title:   "The Locked Room",
		Content: "A man is found dead in a locked room with a puddle of water",
		Answer:  "He was frozen inside a giant ice block and it melted",
		Hints:   []string{"Nobody else entered the room.", "The water was not there the day before."},
		Lang:    "en",
	},
	{
		Title:   "잠긴 방",
		Content: "한 남자가 잠긴 방에서 죽은 채 발견되었고 바닥에는 물웅덩이가 있었다",
		Answer:  "그는 거대한 얼음 덩어리 안에 얼어 있었고 얼음이 녹았다",
		Hints:   []string{"아무도 방에 들어오지 않았다."},
		Lang:    "ko",
	},
}

// SeedDemo publishes the demo puzzles if no puzzles exist.
// Idempotent: does nothing otherwise.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store) error {
	existing, err := store.ListPuzzles(ctx, PuzzleFilter{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range demoPuzzles {
		if _, err := store.CreatePuzzle(ctx, p); err != nil {
			return fmt.Errorf("seeding %q: %w", p.Title, err)
		}
	}

	logger.Info("demo puzzles seeded", "count", len(demoPuzzles))
	return nil
}
