package nakama

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"

	"roevhul/internal/app"
	"roevhul/internal/bot"
	"roevhul/internal/config"
	"roevhul/internal/ports"
	"roevhul/internal/ports/redisfeed"
)

const (
	// tickRate is the number of MatchLoop calls per second.
	tickRate = 1

	feedPublishTimeout = 500 * time.Millisecond
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID   string
	Config    *config.GameConfig
	Seats     []string          // user IDs in seat order, empty string means seat is empty
	OwnerSeat int               // seat index of the match owner
	Private   bool              // joins need a ticket
	Tick      int64             // current tick of the match for turn-based logic
	Names     map[string]string // display names by user ID

	Presences map[string]runtime.Presence // user ID -> presence for targeted messaging
	App       *app.Service
	Settings  app.Settings
	Game      *app.Game // nil while in the lobby
	Aborted   bool

	BotLevel             bot.BotLevel
	Bots                 map[string]*bot.Agent
	BotNames             *bot.NamePool
	IdleAgent            *bot.Agent // plays for humans who let their turn time out
	BotWaitUntil         int64      // tick when the current bot should act
	LastSinglePlayerTick int64      // tick when a single human started waiting
	TurnDeadline         int64      // tick when the current human's turn times out

	Tickets *app.TicketService
	Feed    ports.MoveFeed

	rng *rand.Rand
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

// Occupied returns the seated user IDs in seat order.
func (ms *MatchState) Occupied() []string {
	out := make([]string, 0, len(ms.Seats))
	for _, seat := range ms.Seats {
		if seat != "" {
			out = append(out, seat)
		}
	}
	return out
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !bot.IsBot(seat) {
			count++
		}
	}
	return count
}

func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat == userID {
			return i
		}
	}
	return -1
}

func (ms *MatchState) inProgress() bool {
	return ms.Game != nil && ms.Game.Phase == app.PhaseInProgress
}

func (ms *MatchState) phase() string {
	switch {
	case ms.Game == nil:
		return PhaseLobby
	case ms.Game.IsOver():
		return PhaseOver
	default:
		return PhasePlaying
	}
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userID := seats[seatIndex]
	return userID != "" && !bot.IsBot(userID)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userID := range seats {
		if userID != "" && !bot.IsBot(userID) {
			return i
		}
	}
	return -1
}

// secondsToTicks rounds a delay up to whole ticks.
func secondsToTicks(seconds float64) int64 {
	if seconds <= 0 {
		return 0
	}
	return int64(math.Ceil(seconds * tickRate))
}

// loadConfig applies the runtime env on top of the process-wide configuration.
func loadConfig(ctx context.Context) (*config.GameConfig, error) {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if len(env) == 0 {
		return config.GetGameConfig(), nil
	}
	return config.Overlay(*config.GetGameConfig(), env, EnvPrefix)
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	cfg, err := loadConfig(ctx)
	if err != nil {
		logger.Error("MatchInit: Invalid game config: %v", err)
		return nil, 0, ""
	}
	state, err := newMatchState(cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		logger.Error("MatchInit: %v", err)
		return nil, 0, ""
	}
	state.MatchID, _ = ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	state.Private = cast.ToBool(params["private"])

	if cfg.RedisAddr != "" {
		state.Feed = redisfeed.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	label, err := mh.label(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, tickRate, label
}

func newMatchState(cfg *config.GameConfig, rng *rand.Rand) (*MatchState, error) {
	order, err := cfg.Magnitudes()
	if err != nil {
		return nil, err
	}
	level, err := bot.ParseLevel(cfg.BotLevel)
	if err != nil {
		return nil, err
	}
	easy, err := bot.NewBrain(bot.BotLevelEasy, order)
	if err != nil {
		return nil, err
	}

	state := &MatchState{
		Config:    cfg,
		Seats:     make([]string, cfg.HumanSeats+cfg.BotSeats),
		OwnerSeat: -1,
		Names:     make(map[string]string),
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(rng),
		Settings:  app.Settings{Jokers: cfg.Jokers, MagnitudeOrder: order},
		BotLevel:  level,
		Bots:      make(map[string]*bot.Agent),
		BotNames:  bot.NewNamePool(rng),
		IdleAgent: &bot.Agent{ID: "idle", Name: "idle", Strategy: easy},
		Tickets:   app.NewTicketService(cfg.TicketSecret, 0),
		rng:       rng,
	}
	for i := cfg.HumanSeats; i < len(state.Seats); i++ {
		if err := state.seatBot(i); err != nil {
			return nil, err
		}
	}
	return state, nil
}

// seatBot places a new bot in seat i.
func (ms *MatchState) seatBot(i int) error {
	identity, err := ms.BotNames.NewIdentity(ms.BotLevel)
	if err != nil {
		return err
	}
	brain, err := bot.NewBrain(ms.BotLevel, ms.Settings.MagnitudeOrder)
	if err != nil {
		return err
	}
	ms.Seats[i] = identity.UserID
	ms.Names[identity.UserID] = identity.DisplayName
	ms.Bots[identity.UserID] = bot.NewAgent(identity, brain)
	return nil
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	userID := presence.GetUserId()

	// Seated players may come back to a running game.
	if matchState.seatOf(userID) >= 0 {
		return state, true, ""
	}

	if matchState.Private {
		if err := matchState.Tickets.Verify(metadata[TicketMetadataKey], matchState.MatchID); err != nil {
			logger.Info("MatchJoinAttempt: %s refused: %v", userID, err)
			return state, false, "invalid ticket"
		}
	}

	if matchState.inProgress() {
		return state, false, "game in progress"
	}

	// Allow join if there is an empty seat OR a bot to replace.
	if matchState.GetOpenSeatsCount() <= 0 {
		hasBot := false
		for _, seat := range matchState.Seats {
			if bot.IsBot(seat) {
				hasBot = true
				break
			}
		}
		if !hasBot {
			return state, false, "Match full"
		}
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.Names[userID] = p.GetUsername()
		matchState.BotNames.Reserve(p.GetUsername())

		if matchState.seatOf(userID) >= 0 {
			continue
		}

		// Assign seat: Try empty seats first, then bots.
		assigned := false
		for i, seatUserID := range matchState.Seats {
			if seatUserID == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned && !matchState.inProgress() {
			for i, seatUserID := range matchState.Seats {
				if bot.IsBot(seatUserID) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserID, userID, i)
					delete(matchState.Bots, seatUserID)
					delete(matchState.Names, seatUserID)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	if matchState.Game != nil {
		for _, p := range presences {
			mh.sendState(matchState, dispatcher, logger, p.GetUserId())
		}
	}

	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		// A running game keeps the seat; the idle timeout plays for the absent player.
		if matchState.inProgress() {
			continue
		}
		if i := matchState.seatOf(userID); i >= 0 {
			matchState.Seats[i] = ""
			delete(matchState.Names, userID)
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, i)
		}
	}

	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) || matchState.Presences[matchState.Seats[matchState.OwnerSeat]] == nil {
		matchState.OwnerSeat = mh.firstConnectedHumanSeat(matchState)
		logger.Debug("MatchLeave: Owner set to seat %d.", matchState.OwnerSeat)
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) firstConnectedHumanSeat(state *MatchState) int {
	for i, userID := range state.Seats {
		if userID == "" || bot.IsBot(userID) {
			continue
		}
		if _, ok := state.Presences[userID]; ok {
			return i
		}
	}
	return -1
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpPlayMove:
			mh.handlePlayMove(ctx, matchState, dispatcher, logger, msg)
		case OpPassTurn:
			mh.handlePassTurn(ctx, matchState, dispatcher, logger, msg)
		case OpRequestNewGame:
			mh.handleRequestNewGame(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
		if matchState.Aborted {
			return nil
		}
	}

	mh.processBots(ctx, matchState, dispatcher, logger)
	mh.processIdleTurn(ctx, matchState, dispatcher, logger)
	if matchState.Aborted {
		return nil
	}

	return matchState
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby with bots if there's only one human player after delay.
	if state.Game == nil && state.Config.BotAutoFillDelaySeconds > 0 {
		if state.GetHumanPlayerCount() == 1 && state.GetOpenSeatsCount() > 0 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}

			if state.Tick-state.LastSinglePlayerTick >= secondsToTicks(float64(state.Config.BotAutoFillDelaySeconds)) {
				added := false
				for i, seat := range state.Seats {
					if seat != "" {
						continue
					}
					if err := state.seatBot(i); err != nil {
						logger.Error("processBots: Failed to seat bot in seat %d: %v", i, err)
						break
					}
					logger.Info("processBots: Added bot %s (%s) to seat %d", state.Names[state.Seats[i]], state.Seats[i], i)
					added = true
				}
				if added {
					mh.updateLabel(state, dispatcher, logger)
					mh.broadcastLobbyState(state, dispatcher, logger)
				}
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
	}

	// 2. Handle bot turns in-game.
	if !state.inProgress() {
		state.BotWaitUntil = 0
		return
	}
	currentUserID := state.Game.CurrentPlayer()
	agent, isBot := state.Bots[currentUserID]
	if !isBot {
		state.BotWaitUntil = 0
		return
	}

	if state.BotWaitUntil == 0 {
		minDelay, maxDelay := state.Config.BotMinDelaySeconds, state.Config.BotMaxDelaySeconds
		delay := minDelay + state.rng.Float64()*(maxDelay-minDelay)
		state.BotWaitUntil = state.Tick + secondsToTicks(delay)
		logger.Debug("processBots: Bot %s will act at tick %d (current %d)", currentUserID, state.BotWaitUntil, state.Tick)
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0
	mh.playFor(ctx, state, dispatcher, logger, currentUserID, agent)
}

// processIdleTurn plays for a human whose turn timed out.
func (mh *matchHandler) processIdleTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	timeout := state.Config.TurnTimeoutSeconds
	if timeout <= 0 || !state.inProgress() {
		state.TurnDeadline = 0
		return
	}
	current := state.Game.CurrentPlayer()
	if bot.IsBot(current) {
		state.TurnDeadline = 0
		return
	}
	if state.TurnDeadline == 0 {
		state.TurnDeadline = state.Tick + secondsToTicks(float64(timeout))
		return
	}
	if state.Tick < state.TurnDeadline {
		return
	}
	logger.Info("processIdleTurn: %s timed out, playing on their behalf.", current)
	mh.playFor(ctx, state, dispatcher, logger, current, state.IdleAgent)
}

func (mh *matchHandler) playFor(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, agent *bot.Agent) {
	view, err := state.App.State(state.Game, userID)
	if err != nil {
		logger.Error("playFor: %v", err)
		return
	}
	situation, err := bot.NewSituation(view.Hand, view.Top, view.Opening)
	if err != nil {
		logger.Error("playFor: %v", err)
		return
	}
	tokens, err := agent.PlayTokens(situation)
	if err != nil {
		logger.Warn("playFor: %s failed to calculate move, passing: %v", userID, err)
	}
	mh.applyMove(ctx, state, dispatcher, logger, userID, tokens)
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d)", senderID, senderSeat, state.OwnerSeat)

	if senderSeat < 0 || senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendRejection(state, dispatcher, logger, senderID, CodeForbidden, reasonNotOwner)
		return
	}
	if state.Game != nil {
		logger.Warn("StartGame: Game already started.")
		return
	}

	players := state.Occupied()
	if len(players) < app.MinPlayersToStartGame {
		logger.Warn("StartGame: Cannot start with %d players. Need at least %d.", len(players), app.MinPlayersToStartGame)
		return
	}

	game, events, err := state.App.StartGame(players, state.Settings)
	if err != nil {
		logger.Error("StartGame: Failed to start game: %v", err)
		if errors.Is(err, app.ErrInvariant) {
			state.Aborted = true
		}
		return
	}
	state.Game = game

	mh.afterTransition(ctx, state, dispatcher, logger, events)
	logger.Info("StartGame: Game started with %d players.", len(players))
}

func (mh *matchHandler) handleRequestNewGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if state.seatOf(senderID) != state.OwnerSeat || state.OwnerSeat < 0 {
		mh.sendRejection(state, dispatcher, logger, senderID, CodeForbidden, reasonNotOwner)
		return
	}
	if state.Game == nil || !state.Game.IsOver() {
		mh.sendRejection(state, dispatcher, logger, senderID, CodeRejected, app.ErrMatchNotEnded.Error())
		return
	}

	var (
		events []app.Event
		err    error
	)
	players := state.Occupied()
	if sameRoster(players, state.Game.Players) && state.Game.Phase == app.PhaseOver {
		events, err = state.App.Restart(state.Game)
	} else {
		var game *app.Game
		game, events, err = state.App.StartGame(players, state.Settings)
		if err == nil {
			state.Game = game
		}
	}
	if err != nil {
		logger.Error("RequestNewGame: %v", err)
		if errors.Is(err, app.ErrInvariant) {
			state.Aborted = true
		}
		return
	}

	mh.afterTransition(ctx, state, dispatcher, logger, events)
	logger.Info("RequestNewGame: New game started by %s.", senderID)
}

func sameRoster(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (mh *matchHandler) handlePlayMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !mh.checkSeated(state, dispatcher, logger, senderID) {
		return
	}

	request, err := decodePlayMove(msg.GetData())
	if err != nil {
		logger.Warn("handlePlayMove: Invalid request from %s: %v", senderID, err)
		mh.sendRejection(state, dispatcher, logger, senderID, CodeBadRequest, reasonBadRequest)
		return
	}
	if !mh.checkTurnID(state, dispatcher, logger, senderID, request.TurnID) {
		return
	}
	tokens, err := request.Tokens()
	if err != nil {
		// Notation errors carry their own client-facing message.
		logger.Debug("handlePlayMove: Undecodable move from %s: %v", senderID, err)
		mh.sendRejection(state, dispatcher, logger, senderID, CodeBadRequest, err.Error())
		return
	}

	mh.applyMove(ctx, state, dispatcher, logger, senderID, tokens)
}

func (mh *matchHandler) handlePassTurn(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !mh.checkSeated(state, dispatcher, logger, senderID) {
		return
	}

	request, err := decodePassTurn(msg.GetData())
	if err != nil {
		logger.Warn("handlePassTurn: Invalid request from %s: %v", senderID, err)
		mh.sendRejection(state, dispatcher, logger, senderID, CodeBadRequest, reasonBadRequest)
		return
	}
	if !mh.checkTurnID(state, dispatcher, logger, senderID, request.TurnID) {
		return
	}

	mh.applyMove(ctx, state, dispatcher, logger, senderID, []string{"pass"})
}

func (mh *matchHandler) checkSeated(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) bool {
	if state.seatOf(userID) < 0 {
		mh.sendRejection(state, dispatcher, logger, userID, CodeForbidden, reasonNotSeated)
		return false
	}
	if state.Game == nil {
		mh.sendRejection(state, dispatcher, logger, userID, CodeRejected, app.ReasonNotStarted)
		return false
	}
	return true
}

// checkTurnID rejects moves computed against an outdated snapshot.
func (mh *matchHandler) checkTurnID(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, turnID int64) bool {
	if turnID == state.Game.TurnID {
		return true
	}
	logger.Debug("checkTurnID: %s sent turn %d, current %d", userID, turnID, state.Game.TurnID)
	mh.sendRejection(state, dispatcher, logger, userID, CodeStaleTurn, reasonStaleTurn)
	mh.sendState(state, dispatcher, logger, userID)
	return false
}

// applyMove runs one move through the engine and fans out the outcome.
func (mh *matchHandler) applyMove(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, tokens []string) {
	events, err := state.App.PlayMove(state.Game, userID, tokens)
	if err != nil {
		var moveErr *app.MoveError
		if errors.As(err, &moveErr) {
			logger.Debug("applyMove: %s move %v rejected: %s", userID, tokens, moveErr.Reason)
			mh.broadcastEvent(state, dispatcher, logger, app.RejectionEvent(moveErr))
			return
		}
		logger.Error("applyMove: Fatal error after %s played %v: %v", userID, tokens, err)
		state.Aborted = true
		return
	}

	for _, ev := range events {
		if moved, ok := ev.Payload.(app.PlayerMovedPayload); ok {
			mh.publishMove(ctx, state, logger, moved)
		}
	}
	mh.afterTransition(ctx, state, dispatcher, logger, events)
}

// afterTransition broadcasts events and fresh snapshots after the game state changed.
func (mh *matchHandler) afterTransition(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	state.BotWaitUntil = 0
	state.TurnDeadline = 0

	for _, ev := range events {
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
	for userID := range state.Presences {
		mh.sendState(state, dispatcher, logger, userID)
	}
	if state.Game.IsOver() {
		logger.Info("Game over: finish order %v, loser %s", state.Game.FinishOrder, state.Game.Loser())
	}
	mh.updateLabel(state, dispatcher, logger)
}

func (mh *matchHandler) publishMove(ctx context.Context, state *MatchState, logger runtime.Logger, moved app.PlayerMovedPayload) {
	if state.Feed == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, feedPublishTimeout)
	defer cancel()
	if err := state.Feed.PublishMove(ctx, app.MoveMessage(state.MatchID, state.Game, moved)); err != nil {
		logger.Warn("publishMove: %v", err)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, payload, ok := eventMessage(ev)
	if !ok {
		return
	}
	data, err := encode(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast).
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}

		// Intended recipients that are not connected (e.g. bots) must not turn into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, data, recipients, nil, true); err != nil {
		logger.Warn("broadcastEvent: %v", err)
	}
}

func (mh *matchHandler) sendState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if state.Game == nil {
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		return
	}
	view, err := state.App.State(state.Game, userID)
	if err != nil {
		// Connected but not part of this deal.
		return
	}
	data, err := encode(toStateMessage(view))
	if err != nil {
		logger.Error("sendState: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpState, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("sendState: %v", err)
	}
}

// sendRejection sends a MoveRejectedMessage to a specific user.
func (mh *matchHandler) sendRejection(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send rejection to %s: Presence not found", userID)
		return
	}
	data, err := encode(MoveRejectedMessage{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal rejection: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpMoveRejected, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Warn("sendRejection: %v", err)
	}
}

func (mh *matchHandler) broadcastLobbyState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var counts map[string]int
	if state.Game != nil {
		counts = state.Game.CardCounts()
	}

	seats := make([]SeatInfo, 0, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		name := state.Names[userID]
		if name == "" {
			name = userID
		}
		seats = append(seats, SeatInfo{
			UserID:      userID,
			DisplayName: name,
			IsBot:       bot.IsBot(userID),
			IsOwner:     i == state.OwnerSeat,
			Cards:       counts[userID],
		})
	}

	data, err := encode(LobbyStateMessage{
		Seats:   seats,
		Open:    state.GetOpenSeatsCount(),
		Phase:   state.phase(),
		Private: state.Private,
	})
	if err != nil {
		logger.Error("broadcastLobbyState: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpLobbyState, data, nil, nil, true); err != nil {
		logger.Warn("broadcastLobbyState: %v", err)
	}
}

func (mh *matchHandler) label(state *MatchState) (string, error) {
	open := state.GetOpenSeatsCount()
	if state.inProgress() {
		open = 0
	}
	return MatchLabel{Open: open, Phase: state.phase(), Private: state.Private}.Encode()
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := mh.label(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated, grace %d seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
