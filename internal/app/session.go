package app

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"roevhul/internal/domain"
	"roevhul/internal/ports"
)

var ErrSessionClosed = errors.New("session closed")

// Result is the outcome of a submitted move. Message is empty when OK.
type Result struct {
	OK      bool
	Message string
}

// viewSet is an immutable snapshot of every player's view taken after a state change.
type viewSet struct {
	turnID int64
	views  map[string]View
}

type reply struct {
	result Result
	err    error
}

type command struct {
	player string
	exec   func(*Game) ([]Event, error)
	reply  chan reply
}

// Session owns one Game and serializes every mutation on a single goroutine.
// Readers use State, which never blocks on the actor.
type Session struct {
	id   string
	svc  *Service
	game *Game

	cmds  chan command
	done  chan struct{}
	views atomic.Pointer[viewSet]

	log     zerolog.Logger
	feed    ports.MoveFeed
	onEvent func(Event)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) SessionOption {
	return func(s *Session) { s.log = l }
}

// WithMoveFeed publishes accepted moves to feed.
func WithMoveFeed(feed ports.MoveFeed) SessionOption {
	return func(s *Session) { s.feed = feed }
}

// WithEventHandler is called on the actor goroutine for every emitted event.
func WithEventHandler(fn func(Event)) SessionOption {
	return func(s *Session) { s.onEvent = fn }
}

// NewSession wraps a started game. Call Run to start processing.
func NewSession(id string, svc *Service, game *Game, opts ...SessionOption) *Session {
	s := &Session{
		id:   id,
		svc:  svc,
		game: game,
		cmds: make(chan command),
		done: make(chan struct{}),
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("match", id).Logger()
	s.publishViews()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Run processes commands until ctx is cancelled or the game hits a fatal invariant.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-s.cmds:
			r, fatal := s.handle(ctx, cmd)
			cmd.reply <- r
			if fatal != nil {
				return fatal
			}
		}
	}
}

// Done is closed once Run has returned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Submit enqueues a move and waits for its outcome. Rejections are reported through
// Result; the error is reserved for cancellation, a closed session or fatal failures.
func (s *Session) Submit(ctx context.Context, player string, tokens []string) (Result, error) {
	tokens = append([]string(nil), tokens...)
	return s.do(ctx, player, func(g *Game) ([]Event, error) {
		return s.svc.PlayMove(g, player, tokens)
	})
}

// Restart deals a new game for the same roster once the current one is over.
func (s *Session) Restart(ctx context.Context) (Result, error) {
	return s.do(ctx, "", s.svc.Restart)
}

func (s *Session) do(ctx context.Context, player string, exec func(*Game) ([]Event, error)) (Result, error) {
	cmd := command{player: player, exec: exec, reply: make(chan reply, 1)}
	select {
	case s.cmds <- cmd:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-s.done:
		return Result{}, ErrSessionClosed
	}

	select {
	case r := <-cmd.reply:
		return r.result, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-s.done:
		// The reply is buffered, so a command handled just before shutdown is not lost.
		select {
		case r := <-cmd.reply:
			return r.result, r.err
		default:
			return Result{}, ErrSessionClosed
		}
	}
}

// State returns the latest published view for player.
func (s *Session) State(player string) (View, bool) {
	vs := s.views.Load()
	if vs == nil {
		return View{}, false
	}
	v, ok := vs.views[player]
	return v, ok
}

// TurnID returns the turn id of the latest published snapshot.
func (s *Session) TurnID() int64 {
	if vs := s.views.Load(); vs != nil {
		return vs.turnID
	}
	return 0
}

func (s *Session) handle(ctx context.Context, cmd command) (reply, error) {
	evs, err := cmd.exec(s.game)
	if err != nil {
		var moveErr *MoveError
		switch {
		case errors.As(err, &moveErr):
			s.log.Debug().Str("player", cmd.player).Str("reason", moveErr.Reason).Msg("move rejected")
			s.emit(RejectionEvent(moveErr))
			return reply{result: Result{OK: false, Message: moveErr.Reason}}, nil
		case errors.Is(err, ErrInvariant):
			s.log.Error().Err(err).Str("player", cmd.player).Msg("game aborted")
			s.publishViews()
			return reply{result: Result{OK: false, Message: err.Error()}, err: err}, err
		default:
			return reply{result: Result{OK: false, Message: err.Error()}}, nil
		}
	}

	s.publishViews()
	for _, ev := range evs {
		s.emit(ev)
		if moved, ok := ev.Payload.(PlayerMovedPayload); ok {
			s.publishMove(ctx, moved)
		}
	}
	if s.game.IsOver() {
		s.log.Info().Strs("finish_order", s.game.FinishOrder).Str("loser", s.game.Loser()).Msg("game over")
	}
	return reply{result: Result{OK: true}}, nil
}

func (s *Session) emit(ev Event) {
	if s.onEvent != nil {
		s.onEvent(ev)
	}
}

func (s *Session) publishViews() {
	s.views.Store(&viewSet{turnID: s.game.TurnID, views: s.svc.Views(s.game)})
}

func (s *Session) publishMove(ctx context.Context, moved PlayerMovedPayload) {
	if s.feed == nil {
		return
	}
	msg := MoveMessage(s.id, s.game, moved)
	if err := s.feed.PublishMove(ctx, msg); err != nil {
		s.log.Warn().Err(err).Int64("turn_id", moved.TurnID).Msg("publish move failed")
	}
}

// MoveMessage converts an accepted move into its spectator feed form.
func MoveMessage(matchID string, game *Game, moved PlayerMovedPayload) ports.MoveMessage {
	return ports.MoveMessage{
		MatchID:    matchID,
		TurnID:     moved.TurnID,
		PlayerID:   moved.UserID,
		Move:       domain.FormatMove(moved.Move),
		Cleared:    moved.Cleared,
		RoundReset: moved.RoundReset,
		NextPlayer: moved.NextTurnUserID,
		GameOver:   game.IsOver(),
		Loser:      game.Loser(),
	}
}
