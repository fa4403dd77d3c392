package bot

import (
	"slices"

	"roevhul/internal/domain"
)

// EasyBot plays the lowest card that beats the top, then any clear card, then passes.
type EasyBot struct {
	rules domain.Rules
}

func (b *EasyBot) CalculateMove(s Situation) (domain.Move, error) {
	hand := sortedHand(s.Hand, b.rules.Order)
	if len(hand) == 0 {
		return domain.Pass{}, nil
	}
	order := b.rules.Order

	var candidate domain.Move
	switch top := s.Top.(type) {
	case nil:
		candidate = domain.Single{Card: hand[0]}
		if slices.Contains(hand, domain.ThreeOfClubs) {
			candidate = domain.Single{Card: domain.ThreeOfClubs}
		}
	case domain.Single:
		for _, c := range hand {
			if !c.IsClear() && order.Of(c.Rank) >= order.Of(top.Card.Rank) {
				candidate = domain.Single{Card: c}
				break
			}
		}
	case domain.Set:
		for _, g := range groupByRank(hand) {
			if order.Of(g.rank) >= order.Of(top.Rank()) && len(g.cards) >= top.Len() {
				candidate = g.asMove(top.Len())
				break
			}
		}
	}

	var fallback domain.Move
	if clears := clearCards(hand); len(clears) > 0 {
		fallback = domain.Single{Card: clears[0]}
	}
	return firstLegal(b.rules, s.table(), candidate, fallback), nil
}
