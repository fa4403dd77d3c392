package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"roevhul/internal/config"
	"roevhul/internal/ports"
	"roevhul/internal/ports/redisfeed"
)

var (
	configFile = flag.String("config", "", "Game config file (YAML, JSON or TOML). Defaults and ROEVHUL_* env apply when empty.")
	players    = flag.Int("players", 0, "Number of bots at the table. Zero uses human_seats+bot_seats from the config.")
	level      = flag.String("level", "", "Bot level (easy or good). Empty uses bot_level from the config.")
	games      = flag.Int("games", 1, "Number of consecutive games to play with the same table.")
	seed       = flag.Int64("seed", 0, "Shuffle seed. Zero picks one from the clock.")
	verbose    = flag.Bool("v", false, "Log every move.")
	followID   = flag.String("follow", "", "Print the moves of this match from the redis feed instead of playing.")
)

func main() {
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	opts := simOptions{
		Players: *players,
		Level:   *level,
		Games:   *games,
		Seed:    *seed,
	}
	if opts.Seed == 0 {
		opts.Seed = time.Now().UnixNano()
	}

	var feed ports.MoveFeed
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		feed = redisfeed.New(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("publishing moves to redis")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *followID != "" {
		publisher, ok := feed.(*redisfeed.Publisher)
		if !ok {
			log.Fatal().Msg("-follow needs redis_addr in the config")
		}
		err := follow(ctx, publisher, *followID, func(m ports.MoveMessage) {
			log.Info().
				Int64("turn_id", m.TurnID).
				Str("player", m.PlayerID).
				Strs("move", m.Move).
				Bool("cleared", m.Cleared).
				Str("next", m.NextPlayer).
				Bool("game_over", m.GameOver).
				Str("loser", m.Loser).
				Msg("move")
		})
		if err != nil {
			log.Fatal().Err(err).Str("match", *followID).Msg("follow failed")
		}
		return
	}

	summary, err := simulate(ctx, cfg, opts, feed, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("simulation failed")
	}
	for _, entry := range summary.Losses() {
		log.Info().Str("player", entry.Name).Int("lost", entry.Count).Msg("losses")
	}
}
