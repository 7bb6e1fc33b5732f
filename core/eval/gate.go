package eval

// Gate is the pair of verdicts the evaluator is currently permitted to record.
// The two outputs are mutually exclusive: AllAcquired and AnyExplicitFailure /
// AnyToImproveWithAck range over a partition of competency states, so no fact
// set can enable both. No ordering tie-break exists, or is needed.
type Gate struct {
	SatisfactoryAllowed    bool `json:"satisfactory_allowed"`
	NonSatisfactoryAllowed bool `json:"non_satisfactory_allowed"`
}

// DeriveGate computes the permitted verdicts from a fact set. A locked
// evaluation disallows both regardless of facts; the reevaluation policy
// enforces the same lock independently so a bug in either layer cannot
// bypass the other.
func DeriveGate(facts FactSet, locked bool) Gate {
	if locked || !facts.AllScored {
		return Gate{}
	}
	sat := facts.AllAcquired && facts.AllActionsChecked && facts.NumericIntact
	return Gate{
		SatisfactoryAllowed:    sat,
		NonSatisfactoryAllowed: !sat || facts.AnyExplicitFailure || facts.AnyToImproveWithAck,
	}
}

// Allows reports whether the gate permits recording the given verdict.
func (g Gate) Allows(v Verdict) bool {
	switch v {
	case VerdictSatisfactory:
		return g.SatisfactoryAllowed
	case VerdictNonSatisfactory:
		return g.NonSatisfactoryAllowed
	default:
		return false
	}
}
