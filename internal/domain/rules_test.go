package domain

import (
	"errors"
	"testing"
)

func c(code string) Card {
	card, err := ParseCard(code)
	if err != nil {
		panic(err)
	}
	return card
}

func single(code string) Single {
	return Single{Card: c(code)}
}

func set(codes ...string) Set {
	cards := make([]Card, len(codes))
	for i, code := range codes {
		cards[i] = c(code)
	}
	return MustSet(cards...)
}

// playedTable returns a table past the opening play with the given top.
func playedTable(top Move) *Table {
	return &Table{Top: top, Pile: []Card{Joker}}
}

func TestCheck_AlwaysPassAfterOpening(t *testing.T) {
	rules := NewRules(DefaultMagnitudeOrder())
	tops := []Move{nil, single("H2"), set("S9", "D9"), set("SK", "DK", "CK")}
	for _, top := range tops {
		if err := rules.Check(Pass{}, playedTable(top)); err != nil {
			t.Fatalf("Check(pass, top=%v) = %v, want nil", top, err)
		}
	}
}

func TestCheck_OpeningMove(t *testing.T) {
	tests := []struct {
		name string
		move Move
		want error
	}{
		{name: "pass", move: Pass{}, want: ErrMustOpenWithThreeOfClubs},
		{name: "joker", move: Single{Card: Joker}, want: ErrMustOpenWithThreeOfClubs},
		{name: "four of clubs", move: single("C4"), want: ErrMustOpenWithThreeOfClubs},
		{name: "three of hearts", move: single("H3"), want: ErrMustOpenWithThreeOfClubs},
		{name: "pair without clubs", move: set("H3", "D3"), want: ErrMustOpenWithThreeOfClubs},
		{name: "three of clubs", move: single("C3"), want: nil},
		{name: "pair with three of clubs", move: set("C3", "H3"), want: nil},
		{name: "quad with three of clubs", move: set("C3", "H3", "D3", "S3"), want: nil},
		{name: "mixed set with three of clubs", move: set("C3", "H4"), want: ErrMixedRanks},
	}

	rules := NewRules(DefaultMagnitudeOrder())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.Check(tt.move, NewTable())
			if !errors.Is(err, tt.want) {
				t.Fatalf("Check(%v) = %v, want %v", tt.move, err, tt.want)
			}
		})
	}
}

func TestCheck_OpeningMessage(t *testing.T) {
	err := NewRules(DefaultMagnitudeOrder()).Check(Pass{}, NewTable())
	if err == nil || err.Error() != "game must start with ♣3" {
		t.Fatalf("unexpected opening rejection: %v", err)
	}
}

func TestCheck_MultiPlay(t *testing.T) {
	tests := []struct {
		name string
		top  Move
		move Move
		want error
	}{
		{name: "mixed pair on empty table", top: nil, move: set("C4", "H3"), want: ErrMixedRanks},
		{name: "mixed triple", top: nil, move: set("C3", "H3", "S5"), want: ErrMixedRanks},
		{name: "mixed quad", top: nil, move: set("C3", "H3", "S3", "D5"), want: ErrMixedRanks},
		{name: "mixed pair on pair", top: set("C4", "H4"), move: set("SA", "D2"), want: ErrMixedRanks},
		{name: "pair on single", top: single("C4"), move: set("S5", "D5"), want: ErrMultiOnSingle},
		{name: "pair on triple", top: set("C4", "H4", "D4"), move: set("S5", "D5"), want: ErrCardinalityMismatch},
		{name: "lower pair", top: set("CK", "HK"), move: set("S5", "D5"), want: ErrInsufficientRank},
		{name: "equal pair", top: set("CK", "HK"), move: set("SK", "DK"), want: nil},
		{name: "higher triple", top: set("C4", "H4", "D4"), move: set("S2", "D2", "H2"), want: nil},
		{name: "pair on empty", top: nil, move: set("C3", "H3"), want: nil},
		{name: "quad on single", top: single("H2"), move: set("C5", "H5", "S5", "D5"), want: nil},
		{name: "quad on higher pair", top: set("H2", "D2"), move: set("C5", "H5", "S5", "D5"), want: nil},
		{name: "pair of tens on pair of twos", top: set("H2", "D2"), move: set("CT", "HT"), want: nil},
	}

	rules := NewRules(DefaultMagnitudeOrder())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.Check(tt.move, playedTable(tt.top))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Check(%v on %v) = %v, want %v", tt.move, tt.top, err, tt.want)
			}
		})
	}
}

func TestCheck_SingleCard(t *testing.T) {
	tests := []struct {
		name string
		top  Move
		move Move
		want error
	}{
		{name: "anything on empty table", top: nil, move: single("H4"), want: nil},
		{name: "single on pair", top: set("C4", "H4"), move: single("S5"), want: ErrSingleOnMulti},
		{name: "lower single", top: single("HK"), move: single("S5"), want: ErrInsufficientRank},
		{name: "equal magnitude", top: single("HK"), move: single("SK"), want: nil},
		{name: "two beats ace", top: single("HA"), move: single("S2"), want: nil},
		{name: "ace loses to two", top: single("H2"), move: single("SA"), want: ErrInsufficientRank},
		{name: "joker on two", top: single("H2"), move: Single{Card: Joker}, want: nil},
		{name: "ten on pair", top: set("H2", "D2"), move: single("ST"), want: nil},
		{name: "joker on triple", top: set("H2", "D2", "C2"), move: Single{Card: Joker}, want: nil},
	}

	rules := NewRules(DefaultMagnitudeOrder())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.Check(tt.move, playedTable(tt.top))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Check(%v on %v) = %v, want %v", tt.move, tt.top, err, tt.want)
			}
		})
	}
}

func TestCheck_MagnitudeMonotonicity(t *testing.T) {
	order := DefaultMagnitudeOrder()
	rules := NewRules(order)
	for _, topRank := range Ranks {
		if topRank == Rank10 {
			continue
		}
		top := Single{Card: NewCard(SuitHearts, topRank)}
		for _, rank := range Ranks {
			move := Single{Card: NewCard(SuitSpades, rank)}
			if move.Card.IsClear() {
				continue
			}
			want := order.Of(rank) >= order.Of(topRank)
			if got := rules.Beats(move, playedTable(top)); got != want {
				t.Fatalf("Beats(%v on %v) = %t, want %t", move, top, got, want)
			}
		}
	}
}

func TestCheck_CustomOrder(t *testing.T) {
	order := DefaultMagnitudeOrder()
	order[Rank3], order[Rank2] = order[Rank2], order[Rank3]
	rules := NewRules(order)

	if err := rules.Check(single("H3"), playedTable(single("SA"))); err != nil {
		t.Fatalf("3 should beat A when configured highest: %v", err)
	}
	if err := rules.Check(single("H2"), playedTable(single("S4"))); !errors.Is(err, ErrInsufficientRank) {
		t.Fatalf("2 should lose to 4 when configured lowest, got %v", err)
	}
}

func TestCheck_DoesNotMutateTable(t *testing.T) {
	table := playedTable(single("H5"))
	before := table.Clone()
	_ = NewRules(DefaultMagnitudeOrder()).Check(single("H9"), table)
	if len(table.Pile) != len(before.Pile) || table.Top.String() != before.Top.String() {
		t.Fatalf("Check mutated the table: %+v -> %+v", before, table)
	}
}

func TestCheck_ReasonText(t *testing.T) {
	err := NewRules(DefaultMagnitudeOrder()).Check(set("C4", "H5"), playedTable(nil))
	if err.Error() != "cannot play multiple cards of different rank" {
		t.Fatalf("unexpected reason %q", err.Error())
	}
	if !IsRuleError(err) {
		t.Fatalf("expected rule error")
	}
}
