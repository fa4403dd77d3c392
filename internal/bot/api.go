package bot

import (
	"fmt"

	"roevhul/internal/domain"
)

// Situation is what a bot knows when asked to move: the same data a player's client receives.
type Situation struct {
	Hand []domain.Card
	// Top is nil when the table is clear.
	Top domain.Move
	// Opening is set until the first card of the game has been played.
	Opening bool
}

// NewSituation decodes the compact codes of a player's view.
func NewSituation(hand, top []string, opening bool) (Situation, error) {
	s := Situation{Opening: opening}
	for _, code := range hand {
		c, err := domain.ParseCard(code)
		if err != nil {
			return Situation{}, fmt.Errorf("hand: %w", err)
		}
		s.Hand = append(s.Hand, c)
	}
	if len(top) > 0 {
		move, err := domain.ParseMove(top)
		if err != nil {
			return Situation{}, fmt.Errorf("top: %w", err)
		}
		s.Top = move
	}
	return s, nil
}

// table rebuilds enough of the table for rule checks. Once the game is open the 3 of clubs
// is known to be on the pile.
func (s Situation) table() *domain.Table {
	if s.Opening {
		return domain.NewTable()
	}
	pile := []domain.Card{domain.ThreeOfClubs}
	if s.Top != nil {
		pile = append(pile, s.Top.Cards()...)
	}
	return &domain.Table{Top: s.Top, Pile: pile}
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	CalculateMove(s Situation) (domain.Move, error)
}
