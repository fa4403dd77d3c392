package nakama

const (
	// RpcCreateMatch is the Nakama RPC id clients call to open a new table.
	RpcCreateMatch = "create_match"

	// MatchNameRoevhul is the authoritative match handler name registered with Nakama.
	MatchNameRoevhul = "roevhul_match"

	// GameName tags match labels so queries can find Røvhul tables.
	GameName = "roevhul"

	// EnvPrefix prefixes the runtime env keys read at match init.
	EnvPrefix = "roevhul_"

	// ConfigFileEnvKey names the runtime env key holding a game config file path.
	ConfigFileEnvKey = EnvPrefix + "config_file"

	// TicketMetadataKey carries a private match ticket in join metadata.
	TicketMetadataKey = "ticket"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame      int64 = 1
	OpPlayMove       int64 = 2
	OpPassTurn       int64 = 3
	OpRequestNewGame int64 = 4

	// Server -> Client events
	OpLobbyState   int64 = 101
	OpGameStarted  int64 = 103
	OpHandDealt    int64 = 104 // send privately
	OpPlayerMove   int64 = 105
	OpGameEnded    int64 = 107
	OpState        int64 = 108 // send privately
	OpMoveRejected int64 = 109 // send privately
)

// Match phases as shown in the label.
const (
	PhaseLobby   = "lobby"
	PhasePlaying = "playing"
	PhaseOver    = "over"
)

// Rejection codes sent with OpMoveRejected.
const (
	CodeRejected   = 400
	CodeForbidden  = 403
	CodeStaleTurn  = 409
	CodeBadRequest = 422
)

const (
	reasonStaleTurn  = "stale turn id"
	reasonBadRequest = "malformed request"
	reasonNotSeated  = "not seated at this table"
	reasonNotOwner   = "only the table owner can do that"
)
