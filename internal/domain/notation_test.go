package domain

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCard(t *testing.T) {
	tests := []struct {
		code    string
		want    Card
		wantErr bool
	}{
		{code: "C3", want: ThreeOfClubs},
		{code: "ht", want: NewCard(SuitHearts, Rank10)},
		{code: "SA", want: NewCard(SuitSpades, RankAce)},
		{code: "D2", want: NewCard(SuitDiamonds, Rank2)},
		{code: "JK", want: Joker},
		{code: "jk", want: Joker},
		{code: "X3", wantErr: true},
		{code: "C1", wantErr: true},
		{code: "C10", wantErr: true},
		{code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := ParseCard(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCard) {
					t.Fatalf("ParseCard(%q) error = %v, want ErrUnknownCard", tt.code, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCard(%q) unexpected error: %v", tt.code, err)
			}
			if got != tt.want {
				t.Fatalf("ParseCard(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestCardCodeRoundTrip(t *testing.T) {
	for _, card := range NewDeck(1).Cards() {
		got, err := ParseCard(card.Code())
		if err != nil || got != card {
			t.Fatalf("ParseCard(%q) = %v, %v, want %v", card.Code(), got, err, card)
		}
	}
}

func TestParseMove(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		want    []string
		wantErr bool
	}{
		{name: "pass", tokens: []string{"pass"}, want: []string{"pass"}},
		{name: "pass any case", tokens: []string{"PASS"}, want: []string{"pass"}},
		{name: "single", tokens: []string{"C3"}, want: []string{"C3"}},
		{name: "joker single", tokens: []string{"JK"}, want: []string{"JK"}},
		{name: "pair", tokens: []string{"C3", "D3"}, want: []string{"C3", "D3"}},
		{name: "quad", tokens: []string{"C3", "D3", "H3", "S3"}, want: []string{"C3", "D3", "H3", "S3"}},
		{name: "mixed pair decodes", tokens: []string{"C3", "D4"}, want: []string{"C3", "D4"}},
		{name: "empty", tokens: nil, wantErr: true},
		{name: "five cards", tokens: []string{"C3", "D3", "H3", "S3", "C4"}, wantErr: true},
		{name: "unknown code", tokens: []string{"C3", "ZZ"}, wantErr: true},
		{name: "joker in set", tokens: []string{"C3", "JK"}, wantErr: true},
		{name: "pass with cards", tokens: []string{"pass", "C3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, err := ParseMove(tt.tokens)
			if tt.wantErr {
				var de *DecodeError
				if !errors.As(err, &de) || !errors.Is(err, ErrMalformedMove) {
					t.Fatalf("ParseMove(%v) error = %v, want DecodeError", tt.tokens, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMove(%v) unexpected error: %v", tt.tokens, err)
			}
			if diff := cmp.Diff(tt.want, FormatMove(move)); diff != "" {
				t.Fatalf("FormatMove(ParseMove(%v)) mismatch (-want +got):\n%s", tt.tokens, diff)
			}
		})
	}
}

func TestParseMove_Variants(t *testing.T) {
	move, _ := ParseMove([]string{"C3"})
	if _, ok := move.(Single); !ok {
		t.Fatalf("one card should decode to Single, got %T", move)
	}
	move, _ = ParseMove([]string{"C3", "H3", "S3"})
	if s, ok := move.(Set); !ok || s.Len() != 3 {
		t.Fatalf("three cards should decode to a Set of 3, got %T", move)
	}
}

func TestParseMoveText(t *testing.T) {
	move, err := ParseMoveText("c3, h3")
	if err != nil {
		t.Fatalf("ParseMoveText() error: %v", err)
	}
	if diff := cmp.Diff([]string{"C3", "H3"}, FormatMove(move)); diff != "" {
		t.Fatalf("ParseMoveText() mismatch (-want +got):\n%s", diff)
	}
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card Card
		want string
	}{
		{card: ThreeOfClubs, want: "♣3"},
		{card: NewCard(SuitHearts, Rank10), want: "♥10"},
		{card: Joker, want: "✪"},
	}
	for _, tt := range tests {
		if got := tt.card.String(); got != tt.want {
			t.Fatalf("%s.String() = %q, want %q", tt.card.Code(), got, tt.want)
		}
	}
}
