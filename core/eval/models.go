package eval

import (
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound           = errors.New("checklist item not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrInvalidState       = errors.New("invalid competency state")
	ErrNotImprovable      = errors.New("competency is not marked to improve")
	ErrEvaluationLocked   = errors.New("a satisfactory verdict has already been recorded")
	ErrVerdictNotAllowed  = errors.New("checklist state does not permit this verdict")
)

// CompetencyState is the terminal grade an evaluator gives one competency.
type CompetencyState string

const (
	StateUnset        CompetencyState = "unset"
	StateAcquired     CompetencyState = "acquired"
	StateToImprove    CompetencyState = "to_improve"
	StateNotAcquired  CompetencyState = "not_acquired"
	StateNotEvaluated CompetencyState = "not_evaluated"
)

var ScorableStates = []CompetencyState{StateAcquired, StateToImprove, StateNotAcquired, StateNotEvaluated}

func (s CompetencyState) Scorable() bool {
	for _, state := range ScorableStates {
		if s == state {
			return true
		}
	}
	return false
}

// Verdict is the terminal grading outcome of a whole quiz evaluation.
type Verdict string

const (
	VerdictNone            Verdict = "none"
	VerdictSatisfactory    Verdict = "satisfactory"
	VerdictNonSatisfactory Verdict = "non_satisfactory"
)

// ParamSlot names one of the two numeric-parameter slots of a parameter-checked quiz.
type ParamSlot string

const (
	SlotPrimary   ParamSlot = "primary"
	SlotSecondary ParamSlot = "secondary"
)

type (
	SubCompetency struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Checked bool   `json:"checked"`
	}

	Competency struct {
		ID              string          `json:"id"`
		Label           string          `json:"label"`
		State           CompetencyState `json:"state"`
		SubCompetencies []SubCompetency `json:"sub_competencies,omitempty"`
	}

	RequiredAction struct {
		ID      string `json:"id"`
		Label   string `json:"label"`
		Checked bool   `json:"checked"`
	}

	ParamValues struct {
		Current  int `json:"current"`
		Original int `json:"original"`
	}

	// ParamCheck holds the numeric integrity check of a parameter-checked quiz.
	// It is nil on checklists of quizzes that do not request the feature.
	ParamCheck struct {
		Primary   ParamValues `json:"primary"`
		Secondary ParamValues `json:"secondary"`
	}

	// Checklist is the mutable state of one quiz's evaluable items for one subject.
	Checklist struct {
		QuizID       string           `json:"quiz_id"`
		SubjectID    string           `json:"subject_id"`
		SubjectEmail string           `json:"subject_email,omitempty"`
		CourseID     string           `json:"course_id"`
		Competencies []Competency     `json:"competencies"`
		Actions      []RequiredAction `json:"actions,omitempty"`
		Params       *ParamCheck      `json:"params,omitempty"`
	}

	// EvaluationRecord is the persisted verdict of one (quiz, subject) pair.
	// Lock state is never stored separately: it is derived from the verdict.
	EvaluationRecord struct {
		ID        string    `json:"id"`
		QuizID    string    `json:"quiz_id"`
		SubjectID string    `json:"subject_id"`
		Verdict   Verdict   `json:"verdict"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
)

func (r EvaluationRecord) Locked() bool { return r.Verdict == VerdictSatisfactory }

func (cl *Checklist) competency(id string) *Competency {
	for i := range cl.Competencies {
		if cl.Competencies[i].ID == id {
			return &cl.Competencies[i]
		}
	}
	return nil
}

// SetCompetencyState grades a competency. Moving away from StateToImprove
// force-clears its sub-competency checks so the cascade invariant can never
// be observed broken.
func (cl *Checklist) SetCompetencyState(id string, state CompetencyState) error {
	if !state.Scorable() {
		return ErrInvalidState
	}
	comp := cl.competency(id)
	if comp == nil {
		return ErrNotFound
	}
	comp.State = state
	if state != StateToImprove {
		for i := range comp.SubCompetencies {
			comp.SubCompetencies[i].Checked = false
		}
	}
	return nil
}

// ToggleSubCompetency flips a remediation check mark. Sub-competencies are only
// meaningful while their parent is marked to improve; toggling under any other
// parent state is rejected.
func (cl *Checklist) ToggleSubCompetency(id string) error {
	for i := range cl.Competencies {
		comp := &cl.Competencies[i]
		for j := range comp.SubCompetencies {
			if comp.SubCompetencies[j].ID != id {
				continue
			}
			if comp.State != StateToImprove {
				return ErrNotImprovable
			}
			comp.SubCompetencies[j].Checked = !comp.SubCompetencies[j].Checked
			return nil
		}
	}
	return ErrNotFound
}

func (cl *Checklist) ToggleAction(id string) error {
	for i := range cl.Actions {
		if cl.Actions[i].ID == id {
			cl.Actions[i].Checked = !cl.Actions[i].Checked
			return nil
		}
	}
	return ErrNotFound
}

// SetParam records the current value of a numeric-parameter slot.
// Unknown slots, and any slot on a quiz without the feature, signal ErrNotFound.
func (cl *Checklist) SetParam(slot ParamSlot, value int) error {
	if cl.Params == nil {
		return ErrNotFound
	}
	switch slot {
	case SlotPrimary:
		cl.Params.Primary.Current = value
	case SlotSecondary:
		cl.Params.Secondary.Current = value
	default:
		return ErrNotFound
	}
	return nil
}

// ResetForNewRound clears every selection so a re-evaluation round starts from
// scratch: the evaluator must re-affirm every item rather than inherit stale marks.
func (cl *Checklist) ResetForNewRound() {
	for i := range cl.Competencies {
		cl.Competencies[i].State = StateUnset
		for j := range cl.Competencies[i].SubCompetencies {
			cl.Competencies[i].SubCompetencies[j].Checked = false
		}
	}
	for i := range cl.Actions {
		cl.Actions[i].Checked = false
	}
	if cl.Params != nil {
		cl.Params.Primary.Current = cl.Params.Primary.Original
		cl.Params.Secondary.Current = cl.Params.Secondary.Original
	}
}
