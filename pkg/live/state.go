package live

// State is the lifecycle state of a live session.
type State int

const (
	// StateConnecting means the connection is being established and
	// the setup handshake has not completed yet.
	StateConnecting State = iota
	// StateActive means the session is open for audio in both
	// directions.
	StateActive
	// StateClosed means the session ended cleanly.
	StateClosed
	// StateError means the session hit an unrecoverable fault.
	// A new Session must be constructed to retry.
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateClosed || s == StateError
}

// EventKind identifies a session event.
type EventKind int

const (
	// EventOpened: the setup handshake completed.
	EventOpened EventKind = iota
	// EventFragment: an inbound audio fragment arrived.
	EventFragment
	// EventInterrupted: the user spoke over the model.
	EventInterrupted
	// EventClosed: the session was closed deliberately.
	EventClosed
	// EventFaulted: the connection hit an unrecoverable fault.
	EventFaulted
)

// Event is a typed session event fed to Transition.
type Event struct {
	Kind     EventKind
	Fragment *Fragment // set for EventFragment
	Err      error     // set for EventFaulted
}

// EffectKind identifies a side effect requested by a transition.
type EffectKind int

const (
	// EffectDrainPending: flush frames queued while connecting.
	EffectDrainPending EffectKind = iota
	// EffectSchedule: hand a fragment to the playback scheduler.
	EffectSchedule
	// EffectFlushPlayback: force-stop all scheduled playback.
	EffectFlushPlayback
	// EffectTeardown: release the connection.
	EffectTeardown
)

// Effect is a side effect to execute after a transition. Effects are
// executed in order; in particular a flush always precedes a schedule
// produced by the same event, so stale audio is discarded before any
// post-interruption fragment plays.
type Effect struct {
	Kind     EffectKind
	Fragment *Fragment // set for EffectSchedule
}

// Transition is the session state machine: given the current state and
// an event it returns the next state and the side effects to run. It
// is pure, which keeps every protocol path testable without a live
// connection or audio device.
func Transition(s State, ev Event) (State, []Effect) {
	// Terminal states absorb everything.
	if s.Terminal() {
		return s, nil
	}

	switch ev.Kind {
	case EventOpened:
		if s == StateConnecting {
			return StateActive, []Effect{{Kind: EffectDrainPending}}
		}
		return s, nil

	case EventFragment:
		if s != StateActive || ev.Fragment == nil {
			return s, nil
		}
		var effects []Effect
		if ev.Fragment.Interrupted {
			effects = append(effects, Effect{Kind: EffectFlushPlayback})
		}
		if len(ev.Fragment.Audio) > 0 {
			effects = append(effects, Effect{Kind: EffectSchedule, Fragment: ev.Fragment})
		}
		return s, effects

	case EventInterrupted:
		if s == StateActive {
			return s, []Effect{{Kind: EffectFlushPlayback}}
		}
		return s, nil

	case EventClosed:
		return StateClosed, []Effect{{Kind: EffectTeardown}}

	case EventFaulted:
		return StateError, []Effect{{Kind: EffectTeardown}}

	default:
		return s, nil
	}
}
