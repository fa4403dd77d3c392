package domain

// Table is the shared state every move reads: the unbeaten unit on top and the pile of played cards.
type Table struct {
	// Top is nil, a Single, or a Set of 2 or 3 cards.
	Top Move
	// Pile holds every card played this match, in order.
	Pile []Card
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{}
}

// Update applies an already validated move.
func (t *Table) Update(move Move) {
	if IsPass(move) {
		return
	}

	t.Pile = append(t.Pile, move.Cards()...)

	if ClearsTable(move) {
		t.Top = nil
		return
	}

	t.Top = move
}

// Clear empties the top without touching the pile.
func (t *Table) Clear() {
	t.Top = nil
}

// IsFirstPlay reports whether no card has been played yet.
func (t *Table) IsFirstPlay() bool {
	return len(t.Pile) == 0
}

// TopCards returns the cards on top, nil when the table is clear.
func (t *Table) TopCards() []Card {
	if t.Top == nil {
		return nil
	}
	return t.Top.Cards()
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return &Table{Top: t.Top, Pile: append([]Card(nil), t.Pile...)}
}
