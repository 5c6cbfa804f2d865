package encoder

import (
	"fmt"
	"strings"
)

// Phase is the 2-bit state of the encoder lines, (A<<1)|B
type Phase uint8

// PhaseOf combines the levels of line A and line B into a Phase
func PhaseOf(a, b bool) Phase {
	var phase Phase
	if a {
		phase |= 0b10
	}
	if b {
		phase |= 0b01
	}
	return phase
}

// Step is the signed count change caused by a single transition
type Step int8

const (
	StepReverse Step = -1
	StepNone    Step = 0
	StepForward Step = 1
)

// Policy decides how transitions that skip a phase are counted.
type Policy int

const (
	// PolicyLenient counts every non-forward transition as a reverse step,
	// which folds electrical noise into the reverse direction.
	PolicyLenient Policy = iota
	// PolicyStrict only counts adjacent transitions and drops double-steps.
	PolicyStrict
)

const (
	PolicyNameLenient = "lenient"
	PolicyNameStrict  = "strict"
)

func (p Policy) String() string {
	switch p {
	case PolicyStrict:
		return PolicyNameStrict
	default:
		return PolicyNameLenient
	}
}

// ParsePolicy parses a policy name (case-insensitive)
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyNameLenient:
		return PolicyLenient, nil
	case PolicyNameStrict:
		return PolicyStrict, nil
	}
	return PolicyLenient, fmt.Errorf("unknown decoder policy '%s', use one of: %s | %s", name, PolicyNameLenient, PolicyNameStrict)
}

// successor of each phase in the forward sequence 0 -> 1 -> 3 -> 2 -> 0
var forward = [4]Phase{
	0: 1,
	1: 3,
	3: 2,
	2: 0,
}

// predecessor of each phase in the forward sequence
var reverse = [4]Phase{
	1: 0,
	3: 1,
	2: 3,
	0: 2,
}

// Classify returns the step caused by the transition last -> next.
// legal is false if the transition skipped a phase.
func Classify(policy Policy, last, next Phase) (step Step, legal bool) {
	last &= 0b11
	next &= 0b11

	if last == next {
		return StepNone, true
	}
	if forward[last] == next {
		return StepForward, true
	}

	legal = reverse[last] == next
	if !legal && policy == PolicyStrict {
		return StepNone, false
	}
	return StepReverse, legal
}

// MarshalText implements encoding.TextMarshaler
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Policy) UnmarshalText(text []byte) error {
	policy, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}
