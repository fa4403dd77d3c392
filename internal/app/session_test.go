package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"roevhul/internal/bot"
	"roevhul/internal/domain"
	"roevhul/internal/ports"
)

type recordingFeed struct {
	mu   sync.Mutex
	msgs []ports.MoveMessage
}

func (f *recordingFeed) PublishMove(_ context.Context, msg ports.MoveMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *recordingFeed) messages() []ports.MoveMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.MoveMessage(nil), f.msgs...)
}

func botTokens(t *testing.T, brain bot.Brain, view View) []string {
	t.Helper()
	s, err := bot.NewSituation(view.Hand, view.Top, view.Opening)
	if err != nil {
		t.Fatalf("situation: %v", err)
	}
	move, err := brain.CalculateMove(s)
	if err != nil {
		t.Fatalf("CalculateMove: %v", err)
	}
	return domain.FormatMove(move)
}

func cardsInPlay(game *Game) int {
	n := len(game.Table.Pile)
	for _, h := range game.Hands {
		n += h.Len()
	}
	return n
}

func TestBotOnlyGamesTerminate(t *testing.T) {
	for _, level := range []bot.BotLevel{bot.BotLevelEasy, bot.BotLevelGood} {
		for players := 2; players <= 6; players++ {
			for seed := int64(1); seed <= 10; seed++ {
				name := fmt.Sprintf("%s/%d-players/seed-%d", level, players, seed)
				t.Run(name, func(t *testing.T) {
					playBotGame(t, level, players, seed)
				})
			}
		}
	}
}

func playBotGame(t *testing.T, level bot.BotLevel, players int, seed int64) {
	svc := NewService(rand.New(rand.NewSource(seed)))
	roster := make([]string, players)
	for i := range roster {
		roster[i] = fmt.Sprintf("p%d", i)
	}
	settings := DefaultSettings()
	game, _, err := svc.StartGame(roster, settings)
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	brain, err := bot.NewBrain(level, settings.MagnitudeOrder)
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}
	deckSize := 52 + settings.Jokers

	for step := 0; !game.IsOver(); step++ {
		if step > 5000 {
			t.Fatalf("game did not terminate; finish order %v", game.FinishOrder)
		}
		player := game.CurrentPlayer()
		view, err := svc.State(game, player)
		if err != nil {
			t.Fatalf("State: %v", err)
		}
		if len(view.Hand) == 0 {
			t.Fatalf("turn given to %s with an empty hand", player)
		}
		tokens := botTokens(t, brain, view)
		beforeID := game.TurnID
		if _, err := svc.PlayMove(game, player, tokens); err != nil {
			t.Fatalf("step %d: %s played %v on %v: %v", step, player, tokens, view.Top, err)
		}
		if game.TurnID != beforeID+1 {
			t.Fatalf("turn id = %d, want %d", game.TurnID, beforeID+1)
		}
		if got := cardsInPlay(game); got != deckSize {
			t.Fatalf("cards in play = %d, want %d", got, deckSize)
		}
	}

	if game.Phase != PhaseOver {
		t.Fatalf("phase = %s, want over", game.Phase)
	}
	if len(game.FinishOrder) != players {
		t.Fatalf("finish order %v has %d entries, want %d", game.FinishOrder, len(game.FinishOrder), players)
	}
	seen := map[string]bool{}
	for _, id := range game.FinishOrder {
		if seen[id] {
			t.Fatalf("duplicate %s in finish order %v", id, game.FinishOrder)
		}
		seen[id] = true
	}
	if game.Loser() != game.FinishOrder[players-1] {
		t.Fatalf("loser = %s, want %s", game.Loser(), game.FinishOrder[players-1])
	}
}

func TestSession_ConcurrentPlayers(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(3)))
	roster := []string{"a", "b", "c", "d"}
	game, _, err := svc.StartGame(roster, DefaultSettings())
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}

	feed := &recordingFeed{}
	var mu sync.Mutex
	ended := 0
	session := NewSession("m1", svc, game,
		WithMoveFeed(feed),
		WithEventHandler(func(ev Event) {
			if ev.Kind == EventGameEnded {
				mu.Lock()
				ended++
				mu.Unlock()
			}
		}),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- session.Run(ctx) }()

	brain, err := bot.NewBrain(bot.BotLevelEasy, domain.DefaultMagnitudeOrder())
	if err != nil {
		t.Fatalf("NewBrain: %v", err)
	}

	var wg sync.WaitGroup
	for _, id := range roster {
		wg.Add(1)
		go func(player string) {
			defer wg.Done()
			for ctx.Err() == nil {
				view, ok := session.State(player)
				if !ok {
					t.Errorf("no view for %s", player)
					return
				}
				if view.IsGameOver {
					return
				}
				if view.CurrentPlayerTurn != player {
					// Contend with the current player; stale submissions are refused.
					_, _ = session.Submit(ctx, player, []string{domain.PassToken})
					time.Sleep(time.Millisecond)
					continue
				}
				s, err := bot.NewSituation(view.Hand, view.Top, view.Opening)
				if err != nil {
					t.Errorf("situation: %v", err)
					return
				}
				move, _ := brain.CalculateMove(s)
				if _, err := session.Submit(ctx, player, domain.FormatMove(move)); err != nil {
					t.Errorf("submit: %v", err)
					return
				}
			}
		}(id)
	}
	wg.Wait()

	final, ok := session.State("a")
	if !ok || !final.IsGameOver {
		t.Fatalf("game not over: %+v", final)
	}
	if len(final.FinishOrder) != len(roster) {
		t.Fatalf("finish order = %v", final.FinishOrder)
	}
	if got, want := int64(len(feed.messages())), final.TurnID-1; got != want {
		t.Fatalf("feed messages = %d, want %d", got, want)
	}
	msgs := feed.messages()
	if last := msgs[len(msgs)-1]; !last.GameOver || last.Loser != final.Loser {
		t.Fatalf("last feed message = %+v", last)
	}
	mu.Lock()
	if ended != 1 {
		t.Fatalf("game_ended events = %d, want 1", ended)
	}
	mu.Unlock()

	cancel()
	if err := <-runErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if _, err := session.Submit(context.Background(), "a", []string{"pass"}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("Submit after close error = %v, want ErrSessionClosed", err)
	}
}

func TestSession_SubmitHonoursContext(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(5)))
	game, _, err := svc.StartGame([]string{"a", "b"}, DefaultSettings())
	if err != nil {
		t.Fatalf("start game error: %v", err)
	}
	session := NewSession("m2", svc, game)

	// Run is never started, so the command cannot be enqueued.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := session.Submit(ctx, "a", []string{"C3"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Submit() error = %v, want DeadlineExceeded", err)
	}

	view, ok := session.State("a")
	if !ok || !view.Opening || view.TurnID != game.TurnID {
		t.Fatalf("initial view not published: %+v", view)
	}
}

func TestSession_RejectionMessage(t *testing.T) {
	svc := NewService(nil)
	game := fixedGame(t, []string{"A", "B"}, []string{"C3", "H4"}, []string{"H5"})
	var rejected []MoveRejectedPayload
	session := NewSession("m3", svc, game, WithEventHandler(func(ev Event) {
		if p, ok := ev.Payload.(MoveRejectedPayload); ok {
			rejected = append(rejected, p)
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go session.Run(ctx)

	res, err := session.Submit(ctx, "A", []string{"H4"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.OK || res.Message != "game must start with ♣3" {
		t.Fatalf("result = %+v", res)
	}
	res, err = session.Submit(ctx, "A", []string{"C3"})
	if err != nil || !res.OK {
		t.Fatalf("result = %+v, err = %v", res, err)
	}
	view, _ := session.State("B")
	if view.CurrentPlayerTurn != "B" || view.Opening {
		t.Fatalf("view after accepted move = %+v", view)
	}
	if len(rejected) != 1 || rejected[0].UserID != "A" {
		t.Fatalf("rejections = %+v", rejected)
	}
}
