package domain

import "math/rand"

// DefaultJokers is the number of jokers added to a deck unless configured otherwise.
const DefaultJokers = 2

// Deck is an owned stack of cards. Cards are drawn from the back.
type Deck struct {
	cards []Card
}

// NewDeck returns the 52 regular cards in suit/rank enumeration order followed by the jokers.
func NewDeck(jokers int) *Deck {
	if jokers < 0 {
		jokers = 0
	}
	cards := make([]Card, 0, len(Suits)*len(Ranks)+jokers)
	for _, s := range Suits {
		for _, r := range Ranks {
			cards = append(cards, Card{Suit: s, Rank: r})
		}
	}
	for i := 0; i < jokers; i++ {
		cards = append(cards, Joker)
	}
	return &Deck{cards: cards}
}

// EmptyDeck returns a deck without cards.
func EmptyDeck() *Deck {
	return &Deck{}
}

// Size returns the number of cards left.
func (d *Deck) Size() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, bottom first.
func (d *Deck) Cards() []Card {
	return append([]Card(nil), d.cards...)
}

// Add puts cards back on top of the deck.
func (d *Deck) Add(cards ...Card) {
	d.cards = append(d.cards, cards...)
}

// Draw removes and returns the top card. ok is false when the deck is exhausted.
func (d *Deck) Draw() (card Card, ok bool) {
	if len(d.cards) == 0 {
		return Card{}, false
	}
	last := len(d.cards) - 1
	card = d.cards[last]
	d.cards = d.cards[:last]
	return card, true
}

// DrawN draws up to n cards. Fewer are returned when the deck runs out.
func (d *Deck) DrawN(n int) []Card {
	if n <= 0 {
		return nil
	}
	drawn := make([]Card, 0, min(n, len(d.cards)))
	for i := 0; i < n; i++ {
		c, ok := d.Draw()
		if !ok {
			break
		}
		drawn = append(drawn, c)
	}
	return drawn
}

// Shuffle permutes the deck in place with Fisher–Yates.
func (d *Deck) Shuffle(rng *rand.Rand) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}
