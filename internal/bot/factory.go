package bot

import (
	"fmt"
	"strings"

	"roevhul/internal/domain"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelEasy BotLevel = iota
	BotLevelGood
)

func (l BotLevel) String() string {
	switch l {
	case BotLevelEasy:
		return "easy"
	case BotLevelGood:
		return "good"
	default:
		return fmt.Sprintf("BotLevel(%d)", int(l))
	}
}

// ParseLevel maps a configured level name to a BotLevel.
func ParseLevel(s string) (BotLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "easy":
		return BotLevelEasy, nil
	case "good":
		return BotLevelGood, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", s)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, order domain.MagnitudeOrder) (Brain, error) {
	rules := domain.NewRules(order)
	switch level {
	case BotLevelEasy:
		return &EasyBot{rules: rules}, nil
	case BotLevelGood:
		return &GoodBot{rules: rules, tuning: DefaultTuning}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
