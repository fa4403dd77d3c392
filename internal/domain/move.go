package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidSet = errors.New("invalid multi-card set")

// Move is a closed set of variants: Pass, Single and Set.
type Move interface {
	// Cards returns the cards the move puts on the table; nil for Pass.
	Cards() []Card
	// Len returns the number of cards played.
	Len() int
	String() string
	isMove()
}

// Pass skips the turn.
type Pass struct{}

// Single plays one card.
type Single struct {
	Card Card
}

// Set plays 2 to 4 regular cards as one unit.
type Set struct {
	cards []Card
}

// NewSet builds a multi-card set. Jokers are not allowed and the size must be 2..4.
// Mixed ranks are accepted here and rejected by Rules.
func NewSet(cards ...Card) (Set, error) {
	if len(cards) < 2 || len(cards) > 4 {
		return Set{}, fmt.Errorf("%w: %d cards", ErrInvalidSet, len(cards))
	}
	for _, c := range cards {
		if c.IsJoker() {
			return Set{}, fmt.Errorf("%w: jokers cannot be part of a set", ErrInvalidSet)
		}
	}
	return Set{cards: append([]Card(nil), cards...)}, nil
}

// MustSet is NewSet for literals known to be valid.
func MustSet(cards ...Card) Set {
	s, err := NewSet(cards...)
	if err != nil {
		panic(err)
	}
	return s
}

func (Pass) isMove()   {}
func (Single) isMove() {}
func (Set) isMove()    {}

func (Pass) Cards() []Card     { return nil }
func (s Single) Cards() []Card { return []Card{s.Card} }
func (s Set) Cards() []Card    { return append([]Card(nil), s.cards...) }

func (Pass) Len() int           { return 0 }
func (Single) Len() int         { return 1 }
func (s Set) Len() int          { return len(s.cards) }
func (Pass) String() string     { return "pass" }
func (s Single) String() string { return s.Card.String() }
func (s Set) String() string    { return CardsString(s.cards) }

// Rank returns the rank shared by the set, or RankNone if ranks are mixed.
func (s Set) Rank() Rank {
	if !s.SameRank() {
		return RankNone
	}
	return s.cards[0].Rank
}

// SameRank reports whether every card of the set has the same rank.
func (s Set) SameRank() bool {
	if len(s.cards) == 0 {
		return false
	}
	for _, c := range s.cards[1:] {
		if c.Rank != s.cards[0].Rank {
			return false
		}
	}
	return true
}

// IsPass reports whether m skips the turn.
func IsPass(m Move) bool {
	_, ok := m.(Pass)
	return ok || m == nil
}

// IsClearMove reports whether m is a single clear card (joker or 10).
func IsClearMove(m Move) bool {
	s, ok := m.(Single)
	return ok && s.Card.IsClear()
}

// IsFourOfAKind reports whether m is a same-rank set of four.
func IsFourOfAKind(m Move) bool {
	s, ok := m.(Set)
	return ok && s.Len() == 4 && s.SameRank()
}

// ClearsTable reports whether applying m resets the table top.
func ClearsTable(m Move) bool {
	return IsClearMove(m) || IsFourOfAKind(m)
}

// MoveContains reports whether m plays card c.
func MoveContains(m Move, c Card) bool {
	for _, played := range m.Cards() {
		if played == c {
			return true
		}
	}
	return false
}

// rankOf returns the rank compared for beating: the single card's rank or the set's shared rank.
func rankOf(m Move) Rank {
	switch mv := m.(type) {
	case Single:
		return mv.Card.Rank
	case Set:
		return mv.Rank()
	default:
		return RankNone
	}
}
