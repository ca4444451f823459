package statemachine

import (
	"errors"
	"fmt"
)

// NoTransitionError reports an event that the table does not accept in the
// given state.
type NoTransitionError[S, E comparable] struct {
	From  S
	Event E
}

func (e *NoTransitionError[S, E]) Error() string {
	return fmt.Sprintf("statemachine: no transition from %v on %v", e.From, e.Event)
}

// IsNoTransition reports whether err is a NoTransitionError for S and E.
func IsNoTransition[S, E comparable](err error) bool {
	var target *NoTransitionError[S, E]
	return errors.As(err, &target)
}
