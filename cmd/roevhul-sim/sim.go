package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"roevhul/internal/app"
	"roevhul/internal/bot"
	"roevhul/internal/config"
	"roevhul/internal/domain"
	"roevhul/internal/ports"
)

// maxTurnsPerGame guards against a table that never finishes.
const maxTurnsPerGame = 10000

var errStuck = errors.New("game did not finish")

type simOptions struct {
	Players int
	Level   string
	Games   int
	Seed    int64
}

// Summary tallies the results of a simulation run.
type Summary struct {
	Games  []GameResult
	names  map[string]string
	losses map[string]int
}

type GameResult struct {
	MatchID     string
	FinishOrder []string
	Loser       string
	Turns       int64
}

type LossCount struct {
	Name  string
	Count int
}

// Losses returns the loss tally, most losses first.
func (s *Summary) Losses() []LossCount {
	out := make([]LossCount, 0, len(s.names))
	for id, name := range s.names {
		out = append(out, LossCount{Name: name, Count: s.losses[id]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// simulate seats bots and plays opts.Games games through a Session.
func simulate(ctx context.Context, cfg *config.GameConfig, opts simOptions, feed ports.MoveFeed, logger zerolog.Logger) (*Summary, error) {
	order, err := cfg.Magnitudes()
	if err != nil {
		return nil, err
	}
	levelName := opts.Level
	if levelName == "" {
		levelName = cfg.BotLevel
	}
	lvl, err := bot.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	seats := opts.Players
	if seats == 0 {
		seats = cfg.HumanSeats + cfg.BotSeats
	}
	if opts.Games < 1 {
		opts.Games = 1
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	svc := app.NewService(rng)
	pool := bot.NewNamePool(rng)

	summary := &Summary{names: make(map[string]string), losses: make(map[string]int)}
	agents := make(map[string]*bot.Agent, seats)
	ids := make([]string, 0, seats)
	for i := 0; i < seats; i++ {
		identity, err := pool.NewIdentity(lvl)
		if err != nil {
			return nil, err
		}
		brain, err := bot.NewBrain(lvl, order)
		if err != nil {
			return nil, err
		}
		agents[identity.UserID] = bot.NewAgent(identity, brain)
		summary.names[identity.UserID] = identity.DisplayName
		ids = append(ids, identity.UserID)
	}

	settings := app.Settings{Jokers: cfg.Jokers, MagnitudeOrder: order}
	logger.Info().Int64("seed", opts.Seed).Int("players", seats).Str("level", lvl.String()).Msg("starting simulation")

	for g := 0; g < opts.Games; g++ {
		game, _, err := svc.StartGame(ids, settings)
		if err != nil {
			return summary, err
		}
		result, err := playGame(ctx, svc, game, agents, summary.names, feed, logger)
		if err != nil {
			return summary, err
		}
		summary.Games = append(summary.Games, result)
		summary.losses[result.Loser]++
	}
	return summary, nil
}

func playGame(ctx context.Context, svc *app.Service, game *app.Game, agents map[string]*bot.Agent, names map[string]string, feed ports.MoveFeed, logger zerolog.Logger) (GameResult, error) {
	matchID := uuid.NewString()
	log := logger.With().Str("match", matchID).Logger()

	opts := []app.SessionOption{
		app.WithLogger(logger),
		app.WithEventHandler(func(ev app.Event) { logEvent(log, names, ev) }),
	}
	if feed != nil {
		opts = append(opts, app.WithMoveFeed(feed))
	}
	session := app.NewSession(matchID, svc, game, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- session.Run(runCtx) }()

	for turns := 0; ; turns++ {
		if turns >= maxTurnsPerGame {
			return GameResult{}, fmt.Errorf("%w after %d turns", errStuck, turns)
		}
		view, ok := session.State(game.Players[0])
		if !ok {
			return GameResult{}, fmt.Errorf("no view for %s", game.Players[0])
		}
		if view.IsGameOver {
			break
		}

		current := view.CurrentPlayerTurn
		own, _ := session.State(current)
		situation, err := bot.NewSituation(own.Hand, own.Top, own.Opening)
		if err != nil {
			return GameResult{}, err
		}
		tokens, err := agents[current].PlayTokens(situation)
		if err != nil {
			log.Warn().Err(err).Str("player", names[current]).Msg("bot failed, passing")
		}

		res, err := session.Submit(ctx, current, tokens)
		if err != nil {
			return GameResult{}, err
		}
		if !res.OK {
			// A bot move the rules refuse falls back to a pass.
			log.Warn().Str("player", names[current]).Strs("move", tokens).Str("reason", res.Message).Msg("bot move rejected")
			res, err = session.Submit(ctx, current, []string{domain.PassToken})
			if err != nil {
				return GameResult{}, err
			}
			if !res.OK {
				return GameResult{}, fmt.Errorf("%s cannot move: %s", names[current], res.Message)
			}
		}
	}

	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return GameResult{}, err
	}

	finish := make([]string, len(game.FinishOrder))
	for i, id := range game.FinishOrder {
		finish[i] = names[id]
	}
	log.Info().Strs("finish_order", finish).Str("loser", names[game.Loser()]).Int64("turns", game.TurnID).Msg("game over")

	return GameResult{
		MatchID:     matchID,
		FinishOrder: append([]string(nil), game.FinishOrder...),
		Loser:       game.Loser(),
		Turns:       game.TurnID,
	}, nil
}

func logEvent(log zerolog.Logger, names map[string]string, ev app.Event) {
	switch p := ev.Payload.(type) {
	case app.PlayerMovedPayload:
		log.Debug().
			Str("player", names[p.UserID]).
			Str("move", moveText(p.Move)).
			Bool("cleared", p.Cleared).
			Bool("round_reset", p.RoundReset).
			Str("next", names[p.NextTurnUserID]).
			Msg("move")
	case app.PlayerFinishedPayload:
		log.Info().Str("player", names[p.UserID]).Int("place", p.Place).Msg("finished")
	case app.MoveRejectedPayload:
		log.Debug().Str("player", names[p.UserID]).Str("reason", p.Reason).Msg("rejected")
	}
}

func moveText(m domain.Move) string {
	if domain.IsPass(m) {
		return domain.PassToken
	}
	return domain.CardsString(m.Cards())
}
