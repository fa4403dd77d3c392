package bot

import (
	"roevhul/internal/domain"
)

// GoodBot sheds whole rank groups and keeps clear cards for when nothing else beats the top.
type GoodBot struct {
	rules  domain.Rules
	tuning Tuning
}

func (b *GoodBot) CalculateMove(s Situation) (domain.Move, error) {
	hand := sortedHand(s.Hand, b.rules.Order)
	if len(hand) == 0 {
		return domain.Pass{}, nil
	}

	groups := groupByRank(hand)
	var regular, quads []domain.Move
	if s.Top == nil {
		regular, quads = b.leads(s, groups)
	} else {
		regular, quads = b.answers(s.Top, groups)
	}

	var clears []domain.Move
	for _, c := range clearCards(hand) {
		clears = append(clears, domain.Single{Card: c})
	}

	// Clears and quads grant another turn, which is worth most when few cards remain.
	var candidates []domain.Move
	if len(hand) <= b.tuning.EndgameHandSize {
		candidates = append(append(append(candidates, quads...), clears...), regular...)
	} else {
		candidates = append(append(append(candidates, regular...), quads...), clears...)
	}
	return firstLegal(b.rules, s.table(), candidates...), nil
}

// leads plays the lowest whole group; the opening lead is the group holding the 3 of clubs.
func (b *GoodBot) leads(s Situation, groups []rankGroup) (regular, quads []domain.Move) {
	for _, g := range groups {
		if s.Opening {
			if g.rank == domain.ThreeOfClubs.Rank {
				regular = append(regular, g.asMove(len(g.cards)))
			}
			continue
		}
		if len(g.cards) == 4 && b.tuning.KeepQuads {
			quads = append(quads, g.asMove(4))
			continue
		}
		regular = append(regular, g.asMove(len(g.cards)))
	}
	return regular, quads
}

// answers lists moves beating top, exact-size groups before broken ones.
func (b *GoodBot) answers(top domain.Move, groups []rankGroup) (regular, quads []domain.Move) {
	need := top.Len()
	var broken []domain.Move
	for _, g := range groups {
		if len(g.cards) == 4 {
			quads = append(quads, g.asMove(4))
			if b.tuning.KeepQuads {
				continue
			}
		}
		switch {
		case len(g.cards) == need:
			regular = append(regular, g.asMove(need))
		case len(g.cards) > need:
			broken = append(broken, g.asMove(need))
		}
	}
	return append(regular, broken...), quads
}
