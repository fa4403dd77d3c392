package domain

import "sort"

// Hand holds one player's cards, kept sorted by ascending magnitude with clear cards last.
// The order is for display and bot selection only.
type Hand struct {
	order MagnitudeOrder
	cards []Card
}

// NewHand returns an empty hand sorted with the given magnitude order.
func NewHand(order MagnitudeOrder, cards ...Card) *Hand {
	h := &Hand{order: order}
	h.Add(cards...)
	return h
}

// Add inserts cards and restores the canonical order.
func (h *Hand) Add(cards ...Card) {
	if len(cards) == 0 {
		return
	}
	h.cards = append(h.cards, cards...)
	SortCards(h.cards, h.order)
}

// Len returns the number of cards held.
func (h *Hand) Len() int {
	return len(h.cards)
}

// IsEmpty reports whether the hand has no cards.
func (h *Hand) IsEmpty() bool {
	return len(h.cards) == 0
}

// Cards returns a copy of the held cards in canonical order.
func (h *Hand) Cards() []Card {
	return append([]Card(nil), h.cards...)
}

// Codes returns the compact codes of the held cards.
func (h *Hand) Codes() []string {
	return CardCodes(h.cards)
}

// Has reports whether at least one copy of c is held.
func (h *Hand) Has(c Card) bool {
	for _, held := range h.cards {
		if held == c {
			return true
		}
	}
	return false
}

// Contains reports whether every card is held, counting duplicates.
func (h *Hand) Contains(cards ...Card) bool {
	need := make(map[Card]int, len(cards))
	for _, c := range cards {
		need[c]++
	}
	for _, held := range h.cards {
		if need[held] > 0 {
			need[held]--
		}
	}
	for _, n := range need {
		if n > 0 {
			return false
		}
	}
	return true
}

// Remove takes one occurrence of each card out of the hand.
// Nothing is removed and false is returned if any card is missing.
func (h *Hand) Remove(cards ...Card) bool {
	if !h.Contains(cards...) {
		return false
	}
	h.cards = RemoveCards(h.cards, cards)
	return true
}

// RemoveCards removes the specified cards from a hand and returns the updated hand.
func RemoveCards(hand []Card, toRemove []Card) []Card {
	if len(toRemove) == 0 || len(hand) == 0 {
		return hand
	}

	removeCounts := make(map[Card]int, len(toRemove))
	for _, card := range toRemove {
		removeCounts[card]++
	}

	updated := make([]Card, 0, len(hand))
	for _, card := range hand {
		if count, ok := removeCounts[card]; ok && count > 0 {
			removeCounts[card] = count - 1
			continue
		}
		updated = append(updated, card)
	}

	return updated
}

// SortCards orders cards by ascending magnitude, clear cards last, ties by suit.
func SortCards(cards []Card, order MagnitudeOrder) {
	sort.SliceStable(cards, func(i, j int) bool {
		return sortKey(cards[i], order) < sortKey(cards[j], order)
	})
}

func sortKey(c Card, order MagnitudeOrder) int {
	const clearBase = 1 << 20
	if c.IsJoker() {
		return clearBase*2 + int(SuitJoker)
	}
	if c.IsClear() {
		return clearBase + int(c.Suit)
	}
	return order.Of(c.Rank)*16 + int(c.Suit)
}
