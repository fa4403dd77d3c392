package app

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a game.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const MinPlayersToStartGame = 2

// MaxPlayers caps the roster; a 54-card deck still deals several cards each.
const MaxPlayers = 8

// Rejection reasons sent to clients verbatim.
const (
	ReasonNotYourTurn   = "not your turn"
	ReasonCardNotInHand = "card not in hand"
	ReasonGameOver      = "game is over"
	ReasonNotStarted    = "game has not started"
)
