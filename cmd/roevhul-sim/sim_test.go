package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"roevhul/internal/config"
	"roevhul/internal/ports/redisfeed"
)

func TestSimulate(t *testing.T) {
	cfg := config.Defaults()

	summary, err := simulate(context.Background(), &cfg, simOptions{Players: 3, Level: "good", Games: 3, Seed: 42}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if len(summary.Games) != 3 {
		t.Fatalf("expected 3 games, got %d", len(summary.Games))
	}
	total := 0
	for _, entry := range summary.Losses() {
		total += entry.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 losses in total, got %d", total)
	}
	for _, g := range summary.Games {
		if len(g.FinishOrder) != 3 || g.Loser != g.FinishOrder[2] {
			t.Fatalf("unexpected result %+v", g)
		}
	}
}

func TestSimulate_PublishesMoves(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })
	feed := redisfeed.New(rdb, redisfeed.WithHistory(10000, time.Hour))

	cfg := config.Defaults()
	summary, err := simulate(context.Background(), &cfg, simOptions{Players: 2, Games: 1, Seed: 1}, feed, zerolog.Nop())
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	game := summary.Games[0]
	history, err := feed.History(context.Background(), game.MatchID)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if int64(len(history)) != game.Turns-1 {
		t.Fatalf("expected %d published moves, got %d", game.Turns-1, len(history))
	}
	if last := history[len(history)-1]; !last.GameOver || last.Loser != game.Loser {
		t.Fatalf("last message should announce the loser, got %+v", last)
	}
}

func TestSimulate_BadLevel(t *testing.T) {
	cfg := config.Defaults()
	if _, err := simulate(context.Background(), &cfg, simOptions{Players: 2, Level: "god"}, nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected an error for an unknown level")
	}
}
