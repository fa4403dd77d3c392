package bot

import (
	"slices"

	"roevhul/internal/domain"
)

// rankGroup is every held regular card of one rank.
type rankGroup struct {
	rank  domain.Rank
	cards []domain.Card
}

// sortedHand returns a copy of hand in canonical order.
func sortedHand(hand []domain.Card, order domain.MagnitudeOrder) []domain.Card {
	out := slices.Clone(hand)
	domain.SortCards(out, order)
	return out
}

// groupByRank groups the non-clear cards of a sorted hand, lowest magnitude first.
func groupByRank(hand []domain.Card) []rankGroup {
	var groups []rankGroup
	for _, c := range hand {
		if c.IsClear() {
			continue
		}
		if n := len(groups); n > 0 && groups[n-1].rank == c.Rank {
			groups[n-1].cards = append(groups[n-1].cards, c)
			continue
		}
		groups = append(groups, rankGroup{rank: c.Rank, cards: []domain.Card{c}})
	}
	return groups
}

// clearCards returns the 10s and jokers of a sorted hand.
func clearCards(hand []domain.Card) []domain.Card {
	var out []domain.Card
	for _, c := range hand {
		if c.IsClear() {
			out = append(out, c)
		}
	}
	return out
}

// asMove plays the first n cards of a group.
func (g rankGroup) asMove(n int) domain.Move {
	if n <= 0 || n > len(g.cards) {
		return nil
	}
	if n == 1 {
		return domain.Single{Card: g.cards[0]}
	}
	set, err := domain.NewSet(g.cards[:n]...)
	if err != nil {
		return nil
	}
	return set
}

// firstLegal returns the first candidate the rules accept, or a pass.
func firstLegal(rules domain.Rules, table *domain.Table, candidates ...domain.Move) domain.Move {
	for _, m := range candidates {
		if m == nil {
			continue
		}
		if rules.Check(m, table) == nil {
			return m
		}
	}
	return domain.Pass{}
}
