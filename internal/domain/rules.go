package domain

import "errors"

// RuleError is a rejection reason that can be shown to the player verbatim.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

var (
	ErrMustOpenWithThreeOfClubs = &RuleError{Reason: "game must start with " + ThreeOfClubs.String()}
	ErrMixedRanks               = &RuleError{Reason: "cannot play multiple cards of different rank"}
	ErrSingleOnMulti            = &RuleError{Reason: "cannot play a single card in multi-card play"}
	ErrMultiOnSingle            = &RuleError{Reason: "cannot play multiple cards in single-card play"}
	ErrCardinalityMismatch      = &RuleError{Reason: "must play same number of cards in multi-card play"}
	ErrInsufficientRank         = &RuleError{Reason: "card has insufficient rank"}
	ErrJokerInSet               = &RuleError{Reason: "cannot play jokers in multi-card play"}
	ErrSetSize                  = &RuleError{Reason: "multi-card play must be 2 to 4 cards"}
)

// IsRuleError reports whether err is a rules rejection.
func IsRuleError(err error) bool {
	var re *RuleError
	return errors.As(err, &re)
}

// Rules decides whether a move is legal against the table. It never mutates the table.
type Rules struct {
	Order MagnitudeOrder
}

// NewRules returns Rules using the given magnitude order.
func NewRules(order MagnitudeOrder) Rules {
	return Rules{Order: order}
}

// Check returns nil if move may be played on table, or a *RuleError describing why not.
func (r Rules) Check(move Move, table *Table) error {
	if move == nil {
		move = Pass{}
	}

	// The match opens with the 3 of clubs, alone or inside a set.
	if table.IsFirstPlay() {
		if !MoveContains(move, ThreeOfClubs) {
			return ErrMustOpenWithThreeOfClubs
		}
		if set, ok := move.(Set); ok {
			return r.checkSetShape(set)
		}
		return nil
	}

	switch mv := move.(type) {
	case Pass:
		return nil
	case Single:
		return r.checkSingle(mv, table.Top)
	case Set:
		return r.checkSet(mv, table.Top)
	default:
		return ErrSetSize
	}
}

// Beats is Check reduced to a bool.
func (r Rules) Beats(move Move, table *Table) bool {
	return r.Check(move, table) == nil
}

func (r Rules) checkSingle(move Single, top Move) error {
	if top == nil {
		return nil
	}

	// Jokers and 10s can always be played.
	if move.Card.IsClear() {
		return nil
	}

	topSingle, ok := top.(Single)
	if !ok {
		return ErrSingleOnMulti
	}

	if r.Order.Of(move.Card.Rank) < r.Order.Of(topSingle.Card.Rank) {
		return ErrInsufficientRank
	}
	return nil
}

func (r Rules) checkSet(move Set, top Move) error {
	if err := r.checkSetShape(move); err != nil {
		return err
	}

	if top == nil {
		return nil
	}

	// Four of a kind clears the table like a clear card.
	if move.Len() == 4 {
		return nil
	}

	topSet, ok := top.(Set)
	if !ok {
		return ErrMultiOnSingle
	}

	if move.Len() != topSet.Len() {
		return ErrCardinalityMismatch
	}

	if r.Order.Of(move.Rank()) < r.Order.Of(topSet.Rank()) {
		return ErrInsufficientRank
	}
	return nil
}

func (r Rules) checkSetShape(move Set) error {
	if move.Len() < 2 || move.Len() > 4 {
		return ErrSetSize
	}
	for _, c := range move.cards {
		if c.IsJoker() {
			return ErrJokerInSet
		}
	}
	if !move.SameRank() {
		return ErrMixedRanks
	}
	return nil
}
