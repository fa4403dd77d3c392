package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIncompleteMagnitudeOrder = errors.New("magnitude order is missing ranks")
	ErrDuplicateMagnitude       = errors.New("magnitude order assigns the same value twice")
)

// MagnitudeOrder maps every regular rank to the value used for beat comparisons.
type MagnitudeOrder map[Rank]int

// DefaultMagnitudeOrder returns 3 < 4 < ... < K < A < 2 < 10.
// Rank 10 holds the highest magnitude and is also a clear card.
func DefaultMagnitudeOrder() MagnitudeOrder {
	return MagnitudeOrder{
		Rank3:     1,
		Rank4:     2,
		Rank5:     3,
		Rank6:     4,
		Rank7:     5,
		Rank8:     6,
		Rank9:     7,
		RankJack:  8,
		RankQueen: 9,
		RankKing:  10,
		RankAce:   11,
		Rank2:     12,
		Rank10:    13,
	}
}

// Validate checks that the order covers all 13 ranks with distinct values.
func (o MagnitudeOrder) Validate() error {
	var missing []string
	seen := make(map[int]Rank, len(o))
	for _, r := range Ranks {
		v, ok := o[r]
		if !ok {
			missing = append(missing, r.String())
			continue
		}
		if prev, dup := seen[v]; dup {
			return fmt.Errorf("%w: %s and %s both map to %d", ErrDuplicateMagnitude, prev, r, v)
		}
		seen[v] = r
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrIncompleteMagnitudeOrder, missing)
	}
	return nil
}

// Of returns the magnitude of r.
func (o MagnitudeOrder) Of(r Rank) int {
	return o[r]
}

// Clone returns an independent copy.
func (o MagnitudeOrder) Clone() MagnitudeOrder {
	out := make(MagnitudeOrder, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}
