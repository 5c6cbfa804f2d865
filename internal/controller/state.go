package controller

import "fmt"

type State int

const (
	StateIdle State = iota
	StateTracking
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracking:
		return "tracking"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*s = StateIdle
	case "tracking":
		*s = StateTracking
	default:
		return fmt.Errorf("unknown state: %s", text)
	}
	return nil
}

// stateOf returns the state a controller with the given setpoint is in
func stateOf(setpoint float64, idleThreshold float64) State {
	if setpoint < idleThreshold {
		return StateIdle
	}
	return StateTracking
}
