package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition returned when a forward edge does not start in the current state
var ErrInvalidTransition = errors.New("domain: invalid state transition")

// Transition a guarded forward edge of the reservation lifecycle.
// Administrative overrides do not go through this table.
type Transition struct {
	Name string
	// From lists the states the edge may start in; empty means any non-terminal state
	From   []State
	Target func(r *Reservation) State
}

func to(s State) func(*Reservation) State {
	return func(*Reservation) State { return s }
}

var (
	TransitionConfirmDropoff = Transition{
		Name:   "confirm_dropoff",
		Target: to(StateDropoffAndLocationConfirmed),
	}
	TransitionStartWash = Transition{
		Name:   "start_wash",
		Target: to(StateWashInProgress),
	}
	TransitionCompleteWash = Transition{
		Name: "complete_wash",
		Target: func(r *Reservation) State {
			if r.Private {
				return StateNotYetPaid
			}
			return StateDone
		},
	}
	TransitionConfirmPayment = Transition{
		Name:   "confirm_payment",
		From:   []State{StateNotYetPaid},
		Target: to(StateDone),
	}
)

// Apply computes the next state of r along t without mutating r
func (t Transition) Apply(r *Reservation) (State, error) {
	if r.IsDone() {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t.Name, r.State)
	}
	if len(t.From) > 0 && !containsState(t.From, r.State) {
		return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, t.Name, r.State)
	}
	return t.Target(r), nil
}

func containsState(states []State, s State) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}
