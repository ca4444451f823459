// Package statemachine provides immutable transition tables.
//
// A Table does not hold a current state. Callers keep their own state (for
// example a persisted session status) and ask the table for the next state,
// so one table can serve any number of concurrently evolving records.
package statemachine

// Table maps (state, event) pairs to the next state.
type Table[S, E comparable] struct {
	next map[S]map[E]S
}

// Transition is one row of a Table.
type Transition[S, E comparable] struct {
	From  S
	Event E
	To    S
}

// New builds a Table from rows. A later row for the same (From, Event)
// replaces an earlier one.
func New[S, E comparable](rows ...Transition[S, E]) *Table[S, E] {
	t := &Table[S, E]{next: make(map[S]map[E]S, len(rows))}
	for _, r := range rows {
		if t.next[r.From] == nil {
			t.next[r.From] = make(map[E]S)
		}
		t.next[r.From][r.Event] = r.To
	}
	return t
}

// Next returns the state reached from `from` on `event`.
func (t *Table[S, E]) Next(from S, event E) (S, error) {
	to, ok := t.next[from][event]
	if !ok {
		var zero S
		return zero, &NoTransitionError[S, E]{From: from, Event: event}
	}
	return to, nil
}

// Can reports whether `event` is accepted in state `from`.
func (t *Table[S, E]) Can(from S, event E) bool {
	_, ok := t.next[from][event]
	return ok
}

// Events lists the events accepted in state `from`, in no particular order.
func (t *Table[S, E]) Events(from S) []E {
	events := make([]E, 0, len(t.next[from]))
	for e := range t.next[from] {
		events = append(events, e)
	}
	return events
}
