package eval

// PolicyState is the reevaluation state of one (quiz, subject) pair.
type PolicyState string

const (
	// NeverEvaluated: no verdict has ever been recorded.
	NeverEvaluated PolicyState = "never_evaluated"
	// EvaluatedNonSatisfactory: re-entrant, any number of new rounds may follow.
	EvaluatedNonSatisfactory PolicyState = "evaluated_non_satisfactory"
	// EvaluatedSatisfactory: terminal, the evaluation is permanently locked.
	EvaluatedSatisfactory PolicyState = "evaluated_satisfactory"
)

// Policy is the state machine governing whether a new verdict may be recorded.
// Its state is constructed strictly from the persisted verdict, never from a
// second mutable lock flag.
type Policy struct {
	state PolicyState
}

// NewPolicy returns the policy for a pair that has never been evaluated.
func NewPolicy() *Policy {
	return &Policy{state: NeverEvaluated}
}

// SeedPolicy places the policy directly into the state matching a persisted
// record, without replaying transitions.
func SeedPolicy(rec EvaluationRecord) *Policy {
	switch rec.Verdict {
	case VerdictSatisfactory:
		return &Policy{state: EvaluatedSatisfactory}
	case VerdictNonSatisfactory:
		return &Policy{state: EvaluatedNonSatisfactory}
	default:
		return NewPolicy()
	}
}

func (p *Policy) State() PolicyState { return p.state }

func (p *Policy) Locked() bool { return p.state == EvaluatedSatisfactory }

// Record transitions the policy for a committed verdict.
// The satisfactory state is terminal; any commit against it is illegal.
func (p *Policy) Record(v Verdict) error {
	if p.Locked() {
		return ErrEvaluationLocked
	}
	switch v {
	case VerdictSatisfactory:
		p.state = EvaluatedSatisfactory
	case VerdictNonSatisfactory:
		p.state = EvaluatedNonSatisfactory
	default:
		return ErrInvalidState
	}
	return nil
}
