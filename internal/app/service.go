package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"roevhul/internal/domain"
)

// Service contains Røvhul use-cases operating on domain state.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng}
}

var (
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrTooManyPlayers  = errors.New("too many players")
	ErrDuplicatePlayer = errors.New("player listed twice")
	ErrEmptyPlayerID   = errors.New("empty player id")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrMatchNotEnded   = errors.New("match not ended")

	// ErrInvariant marks failures that leave the match unusable.
	ErrInvariant        = errors.New("internal invariant violated")
	ErrNoOpeningCard    = fmt.Errorf("%w: no player holds %s", ErrInvariant, domain.ThreeOfClubs)
	ErrNoEligiblePlayer = fmt.Errorf("%w: no player left to take the turn", ErrInvariant)

	ErrNotYourTurn   = errors.New(ReasonNotYourTurn)
	ErrCardNotInHand = errors.New(ReasonCardNotInHand)
	ErrGameOver      = errors.New(ReasonGameOver)
	ErrNotStarted    = errors.New(ReasonNotStarted)
)

// MoveError is a rejected move. Reason is safe to show to the player.
// Rejections never change game state.
type MoveError struct {
	PlayerID string
	Reason   string
	Err      error
}

func (e *MoveError) Error() string {
	return e.Reason
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func reject(playerID string, err error) *MoveError {
	return &MoveError{PlayerID: playerID, Reason: err.Error(), Err: err}
}

// StartGame deals a fresh shuffled deck round-robin to players (in seat order) and
// gives the first turn to whoever holds the 3 of clubs.
func (s *Service) StartGame(players []string, settings Settings) (*Game, []Event, error) {
	if len(players) < MinPlayersToStartGame {
		return nil, nil, ErrTooFewPlayers
	}
	if len(players) > MaxPlayers {
		return nil, nil, fmt.Errorf("%w: %d > %d", ErrTooManyPlayers, len(players), MaxPlayers)
	}
	seen := make(map[string]bool, len(players))
	for _, id := range players {
		if id == "" {
			return nil, nil, ErrEmptyPlayerID
		}
		if seen[id] {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
		}
		seen[id] = true
	}
	if settings.MagnitudeOrder == nil {
		settings.MagnitudeOrder = domain.DefaultMagnitudeOrder()
	}
	if err := settings.MagnitudeOrder.Validate(); err != nil {
		return nil, nil, err
	}

	game := &Game{
		Phase:    PhaseNotStarted,
		Settings: settings,
		Rules:    domain.NewRules(settings.MagnitudeOrder),
		Players:  append([]string(nil), players...),
	}
	events, err := s.deal(game)
	if err != nil {
		return nil, nil, err
	}
	return game, events, nil
}

// Restart deals a new game for the same roster once the previous one is over.
func (s *Service) Restart(game *Game) ([]Event, error) {
	if game.Phase != PhaseOver {
		return nil, ErrMatchNotEnded
	}
	return s.deal(game)
}

func (s *Service) deal(game *Game) ([]Event, error) {
	deck := domain.NewDeck(game.Settings.Jokers)
	deck.Shuffle(s.rng)

	game.Hands = make(map[string]*domain.Hand, len(game.Players))
	for _, id := range game.Players {
		game.Hands[id] = domain.NewHand(game.Settings.MagnitudeOrder)
	}
	for i := 0; deck.Size() > 0; i = (i + 1) % len(game.Players) {
		card, _ := deck.Draw()
		game.Hands[game.Players[i]].Add(card)
	}

	opener := -1
	for i, id := range game.Players {
		if game.Hands[id].Has(domain.ThreeOfClubs) {
			opener = i
			break
		}
	}
	if opener < 0 {
		game.Phase = PhaseAborted
		return nil, ErrNoOpeningCard
	}

	game.Table = domain.NewTable()
	game.Turn = opener
	game.TurnID++
	game.FinishOrder = nil
	game.LeaderID = ""
	game.Passes = 0
	game.Phase = PhaseInProgress

	events := make([]Event, 0, len(game.Players)+1)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			Players:         append([]string(nil), game.Players...),
			FirstTurnUserID: game.CurrentPlayer(),
			TurnID:          game.TurnID,
		},
	})
	for _, id := range game.Players {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{UserID: id, Hand: game.Hands[id].Cards()},
			Recipients: []string{id},
		})
	}
	return events, nil
}

// PlayMove processes one move message. Rejections are returned as *MoveError and leave
// the game untouched. Errors wrapping ErrInvariant are fatal for the match.
func (s *Service) PlayMove(game *Game, playerID string, tokens []string) ([]Event, error) {
	switch game.Phase {
	case PhaseNotStarted:
		return nil, reject(playerID, ErrNotStarted)
	case PhaseOver, PhaseAborted:
		return nil, reject(playerID, ErrGameOver)
	}

	if playerID != game.CurrentPlayer() {
		return nil, reject(playerID, ErrNotYourTurn)
	}

	move, err := domain.ParseMove(tokens)
	if err != nil {
		return nil, reject(playerID, err)
	}

	hand := game.Hands[playerID]
	if !hand.Contains(move.Cards()...) {
		return nil, reject(playerID, ErrCardNotInHand)
	}

	if err := game.Rules.Check(move, game.Table); err != nil {
		return nil, reject(playerID, err)
	}

	return s.apply(game, playerID, hand, move)
}

func (s *Service) apply(game *Game, playerID string, hand *domain.Hand, move domain.Move) ([]Event, error) {
	hand.Remove(move.Cards()...)
	game.Table.Update(move)
	game.TurnID++

	cleared := domain.ClearsTable(move)
	roundReset := false
	if domain.IsPass(move) {
		game.Passes++
		roundReset = s.resetRoundIfUnbeaten(game)
	} else if cleared {
		game.LeaderID = ""
		game.Passes = 0
	} else {
		game.LeaderID = playerID
		game.Passes = 0
	}

	var events []Event
	if hand.IsEmpty() && !game.finished(playerID) {
		game.FinishOrder = append(game.FinishOrder, playerID)
		events = append(events, Event{
			Kind:    EventPlayerFinished,
			Payload: PlayerFinishedPayload{UserID: playerID, Place: len(game.FinishOrder)},
		})
	}

	moved := PlayerMovedPayload{
		UserID:     playerID,
		Move:       move,
		Cleared:    cleared,
		RoundReset: roundReset,
		TurnID:     game.TurnID,
	}

	if active := game.ActivePlayers(); len(active) < 2 {
		for _, id := range active {
			if !game.finished(id) {
				game.FinishOrder = append(game.FinishOrder, id)
			}
		}
		game.Phase = PhaseOver
		moved.NextTurnUserID = game.CurrentPlayer()
		events = append([]Event{{Kind: EventPlayerMoved, Payload: moved}}, events...)
		events = append(events, Event{
			Kind: EventGameEnded,
			Payload: GameEndedPayload{
				FinishOrder: append([]string(nil), game.FinishOrder...),
				Loser:       game.Loser(),
			},
		})
		return events, nil
	}

	// A clear card or four of a kind earns another turn while cards remain.
	if !(cleared && !hand.IsEmpty()) {
		next, err := nextTurn(game)
		if err != nil {
			game.Phase = PhaseAborted
			return nil, err
		}
		game.Turn = next
	}

	moved.NextTurnUserID = game.CurrentPlayer()
	return append([]Event{{Kind: EventPlayerMoved, Payload: moved}}, events...), nil
}

// resetRoundIfUnbeaten clears the top once every other active player passed on it.
func (s *Service) resetRoundIfUnbeaten(game *Game) bool {
	if game.Table.Top == nil {
		return false
	}
	required := len(game.ActivePlayers())
	if game.LeaderID != "" && game.HasCards(game.LeaderID) {
		required--
	}
	if game.Passes < required {
		return false
	}
	game.Table.Clear()
	game.LeaderID = ""
	game.Passes = 0
	return true
}

// nextTurn scans forward at most one lap for a player that still holds cards.
func nextTurn(game *Game) (int, error) {
	n := len(game.Players)
	for i := 1; i <= n; i++ {
		candidate := game.Turn + i
		if game.HasCards(game.Players[candidate%n]) {
			return candidate, nil
		}
	}
	return 0, ErrNoEligiblePlayer
}

// View is the read-only state of a game as seen by one player.
type View struct {
	TurnID            int64
	IsGameOver        bool
	Opening           bool
	Hand              []string
	Top               []string // nil when the table is clear
	CurrentPlayerTurn string
	CardCounts        map[string]int
	FinishOrder       []string
	Loser             string
}

// State returns playerID's view. Other players' hands are reduced to card counts.
func (s *Service) State(game *Game, playerID string) (View, error) {
	hand, ok := game.Hands[playerID]
	if !ok {
		return View{}, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	view := View{
		TurnID:            game.TurnID,
		IsGameOver:        game.IsOver(),
		Opening:           game.Table.IsFirstPlay(),
		Hand:              hand.Codes(),
		CurrentPlayerTurn: game.CurrentPlayer(),
		CardCounts:        game.CardCounts(),
		FinishOrder:       append([]string(nil), game.FinishOrder...),
		Loser:             game.Loser(),
	}
	if top := game.Table.TopCards(); top != nil {
		view.Top = domain.CardCodes(top)
	}
	return view, nil
}

// Views returns the state of every seated player.
func (s *Service) Views(game *Game) map[string]View {
	out := make(map[string]View, len(game.Players))
	for _, id := range game.Players {
		if v, err := s.State(game, id); err == nil {
			out[id] = v
		}
	}
	return out
}
