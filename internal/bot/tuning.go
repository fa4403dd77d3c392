package bot

// Tuning holds the knobs of GoodBot.
type Tuning struct {
	// EndgameHandSize is the hand size at or below which clear cards are spent freely.
	EndgameHandSize int
	// KeepQuads makes the bot hold four of a kind back as a clear.
	KeepQuads bool
}

// DefaultTuning keeps clears for the last few cards.
var DefaultTuning = Tuning{
	EndgameHandSize: 3,
	KeepQuads:       true,
}
