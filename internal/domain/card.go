package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Suit is the suit of a card. Jokers carry SuitJoker.
type Suit uint8

const (
	SuitNone Suit = iota
	SuitHearts
	SuitDiamonds
	SuitSpades
	SuitClubs
	SuitJoker
)

// Rank is the face value of a card. Jokers carry RankJoker.
type Rank uint8

const (
	RankNone Rank = iota
	RankAce
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
	Rank9
	Rank10
	RankJack
	RankQueen
	RankKing
	RankJoker
)

// Suits lists the regular suits in deck enumeration order.
var Suits = [...]Suit{SuitHearts, SuitDiamonds, SuitSpades, SuitClubs}

// Ranks lists the regular ranks in deck enumeration order.
var Ranks = [...]Rank{RankAce, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8, Rank9, Rank10, RankJack, RankQueen, RankKing}

var ErrUnknownCard = errors.New("unknown card")

var suitIcons = map[Suit]string{
	SuitHearts:   "♥",
	SuitDiamonds: "♦",
	SuitSpades:   "♠",
	SuitClubs:    "♣",
}

var suitCodes = map[Suit]byte{
	SuitHearts:   'H',
	SuitDiamonds: 'D',
	SuitSpades:   'S',
	SuitClubs:    'C',
}

var rankShort = map[Rank]string{
	RankAce:   "A",
	Rank2:     "2",
	Rank3:     "3",
	Rank4:     "4",
	Rank5:     "5",
	Rank6:     "6",
	Rank7:     "7",
	Rank8:     "8",
	Rank9:     "9",
	Rank10:    "10",
	RankJack:  "J",
	RankQueen: "Q",
	RankKing:  "K",
}

// rankCodes is the single-character form used on the wire; 10 is "T".
var rankCodes = map[Rank]byte{
	RankAce:   'A',
	Rank2:     '2',
	Rank3:     '3',
	Rank4:     '4',
	Rank5:     '5',
	Rank6:     '6',
	Rank7:     '7',
	Rank8:     '8',
	Rank9:     '9',
	Rank10:    'T',
	RankJack:  'J',
	RankQueen: 'Q',
	RankKing:  'K',
}

// JokerCode is the compact code of a joker.
const JokerCode = "JK"

// Card is a playing card. Two cards with the same suit and rank are interchangeable.
type Card struct {
	Suit Suit
	Rank Rank
}

var (
	// Joker is the suitless, rankless card.
	Joker = Card{Suit: SuitJoker, Rank: RankJoker}
	// ThreeOfClubs must be part of the opening move of every match.
	ThreeOfClubs = Card{Suit: SuitClubs, Rank: Rank3}
)

// NewCard returns a regular card.
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// IsJoker reports whether c is a joker.
func (c Card) IsJoker() bool {
	return c.Suit == SuitJoker || c.Rank == RankJoker
}

// IsClear reports whether playing c alone always clears the table.
func (c Card) IsClear() bool {
	return c.IsJoker() || c.Rank == Rank10
}

// IsValid reports whether c is a joker or a card of a regular suit and rank.
func (c Card) IsValid() bool {
	if c.IsJoker() {
		return c == Joker
	}
	_, okSuit := suitCodes[c.Suit]
	_, okRank := rankCodes[c.Rank]
	return okSuit && okRank
}

// String returns the short human notation, suit icon first, e.g. "♣3" or "✪".
func (c Card) String() string {
	if c.IsJoker() {
		return "✪"
	}
	return suitIcons[c.Suit] + rankShort[c.Rank]
}

// Code returns the compact wire code, e.g. "C3", "HT" or "JK".
func (c Card) Code() string {
	if c.IsJoker() {
		return JokerCode
	}
	return string([]byte{suitCodes[c.Suit], rankCodes[c.Rank]})
}

// ParseCard decodes a compact card code. Codes are case-insensitive.
func ParseCard(code string) (Card, error) {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == JokerCode {
		return Joker, nil
	}
	if len(upper) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, code)
	}
	suit, ok := suitFromCode(upper[0])
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, code)
	}
	rank, ok := rankFromCode(upper[1])
	if !ok {
		return Card{}, fmt.Errorf("%w: %q", ErrUnknownCard, code)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseRank decodes a rank as written in configuration files ("3".."10", "J", "Q", "K", "A").
func ParseRank(s string) (Rank, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for r, short := range rankShort {
		if short == upper {
			return r, nil
		}
	}
	if upper == "T" {
		return Rank10, nil
	}
	return RankNone, fmt.Errorf("%w: rank %q", ErrUnknownCard, s)
}

// String returns the rank as written on the card face.
func (r Rank) String() string {
	if s, ok := rankShort[r]; ok {
		return s
	}
	if r == RankJoker {
		return "Joker"
	}
	return "?"
}

func suitFromCode(b byte) (Suit, bool) {
	for s, code := range suitCodes {
		if code == b {
			return s, true
		}
	}
	return SuitNone, false
}

func rankFromCode(b byte) (Rank, bool) {
	for r, code := range rankCodes {
		if code == b {
			return r, true
		}
	}
	return RankNone, false
}

// CardCodes maps cards to their compact codes.
func CardCodes(cards []Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Code()
	}
	return out
}

// CardsString joins the human notation of cards with ", ".
func CardsString(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}
