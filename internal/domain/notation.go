package domain

import (
	"errors"
	"fmt"
	"strings"
)

// PassToken is the notation of a pass.
const PassToken = "pass"

// MaxMoveCards is the largest number of cards a single move may carry.
const MaxMoveCards = 4

var ErrMalformedMove = errors.New("malformed move")

// DecodeError reports move notation that could not be decoded.
type DecodeError struct {
	Tokens []string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s %v: %v", ErrMalformedMove, e.Tokens, e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformedMove, e.Err}
}

// ParseMove decodes move notation: ["pass"], or 1 to 4 compact card codes.
func ParseMove(tokens []string) (Move, error) {
	if len(tokens) == 0 {
		return nil, &DecodeError{Tokens: tokens, Err: errors.New("no cards given")}
	}
	if len(tokens) == 1 && strings.EqualFold(strings.TrimSpace(tokens[0]), PassToken) {
		return Pass{}, nil
	}
	if len(tokens) > MaxMoveCards {
		return nil, &DecodeError{Tokens: tokens, Err: fmt.Errorf("at most %d cards can be played at a time", MaxMoveCards)}
	}

	cards := make([]Card, 0, len(tokens))
	for _, tok := range tokens {
		c, err := ParseCard(tok)
		if err != nil {
			return nil, &DecodeError{Tokens: tokens, Err: err}
		}
		cards = append(cards, c)
	}

	if len(cards) == 1 {
		return Single{Card: cards[0]}, nil
	}

	set, err := NewSet(cards...)
	if err != nil {
		return nil, &DecodeError{Tokens: tokens, Err: err}
	}
	return set, nil
}

// ParseMoveText decodes a whitespace or comma separated move, e.g. "C3 D3" or "pass".
func ParseMoveText(s string) (Move, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return ParseMove(fields)
}

// FormatMove encodes a move as notation tokens.
func FormatMove(m Move) []string {
	if IsPass(m) {
		return []string{PassToken}
	}
	return CardCodes(m.Cards())
}
