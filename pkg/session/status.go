package session

import "github.com/ferdaws-ahmed/wisdomvault/pkg/statemachine"

// Event drives a Status transition.
type Event string

const (
	// EventResume starts resolving a session whose principal is unknown.
	EventResume Event = "resume"
	// EventSignedIn is a provider signed-in notification; the profile
	// sync it triggers has not finished yet.
	EventSignedIn Event = "signed_in"
	// EventProfileSynced applies a finished profile sync, fallback
	// included.
	EventProfileSynced Event = "profile_synced"
	EventSignedOut     Event = "signed_out"
	EventProfileEdited Event = "profile_edited"
)

// transitions is the complete status table. An authenticated session that
// receives another signed-in notification stays authenticated while it
// re-syncs in the background.
var transitions = statemachine.New(
	statemachine.Transition[Status, Event]{From: StatusLoading, Event: EventResume, To: StatusLoading},
	statemachine.Transition[Status, Event]{From: StatusLoading, Event: EventSignedIn, To: StatusLoading},
	statemachine.Transition[Status, Event]{From: StatusLoading, Event: EventProfileSynced, To: StatusAuthenticated},
	statemachine.Transition[Status, Event]{From: StatusLoading, Event: EventSignedOut, To: StatusAnonymous},

	statemachine.Transition[Status, Event]{From: StatusAnonymous, Event: EventResume, To: StatusLoading},
	statemachine.Transition[Status, Event]{From: StatusAnonymous, Event: EventSignedIn, To: StatusLoading},
	statemachine.Transition[Status, Event]{From: StatusAnonymous, Event: EventSignedOut, To: StatusAnonymous},

	statemachine.Transition[Status, Event]{From: StatusAuthenticated, Event: EventResume, To: StatusLoading},
	statemachine.Transition[Status, Event]{From: StatusAuthenticated, Event: EventSignedIn, To: StatusAuthenticated},
	statemachine.Transition[Status, Event]{From: StatusAuthenticated, Event: EventProfileSynced, To: StatusAuthenticated},
	statemachine.Transition[Status, Event]{From: StatusAuthenticated, Event: EventSignedOut, To: StatusAnonymous},
	statemachine.Transition[Status, Event]{From: StatusAuthenticated, Event: EventProfileEdited, To: StatusAuthenticated},
)

// NextStatus returns the status reached from s on e.
func NextStatus(s Status, e Event) (Status, error) {
	return transitions.Next(s, e)
}
