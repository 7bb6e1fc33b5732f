package eval

// FactSet is the derived boolean summary of one checklist snapshot.
// It is recomputed on every mutation and never persisted.
type FactSet struct {
	AllScored           bool `json:"all_scored"`
	AllAcquired         bool `json:"all_acquired"`
	AllActionsChecked   bool `json:"all_actions_checked"`
	NumericIntact       bool `json:"numeric_intact"`
	AnyExplicitFailure  bool `json:"any_explicit_failure"`
	AnyToImproveWithAck bool `json:"any_to_improve_with_ack"`
}

// DeriveFacts maps a checklist snapshot to its fact set. It is pure and total:
// identical inputs always yield identical outputs, which lets callers recompute
// on every edit without ordering concerns.
func DeriveFacts(cl Checklist) FactSet {
	facts := FactSet{
		AllScored:         true,
		AllAcquired:       true,
		AllActionsChecked: true,
		NumericIntact:     true,
	}

	for _, comp := range cl.Competencies {
		if comp.State == StateUnset {
			facts.AllScored = false
		}
		if comp.State != StateAcquired {
			facts.AllAcquired = false
		}
		if comp.State == StateNotAcquired || comp.State == StateNotEvaluated {
			facts.AnyExplicitFailure = true
		}
		if comp.State == StateToImprove {
			for _, sub := range comp.SubCompetencies {
				if sub.Checked {
					facts.AnyToImproveWithAck = true
					break
				}
			}
		}
	}

	// vacuously true when the quiz defines no actions
	for _, act := range cl.Actions {
		if !act.Checked {
			facts.AllActionsChecked = false
			break
		}
	}

	// the feature is inert when the quiz is not parameter-checked
	if cl.Params != nil {
		facts.NumericIntact = cl.Params.Primary.Current == cl.Params.Primary.Original &&
			cl.Params.Secondary.Current == cl.Params.Secondary.Original
	}

	return facts
}
