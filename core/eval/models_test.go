package eval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestChecklist(withActions, withParams bool) Checklist {
	cl := Checklist{
		QuizID:    "quiz-1",
		SubjectID: "subject-1",
		CourseID:  "course-1",
		Competencies: []Competency{
			{
				ID:    "c1",
				Label: "Reading",
				State: StateUnset,
				SubCompetencies: []SubCompetency{
					{ID: "c1s1", Label: "Fluency"},
					{ID: "c1s2", Label: "Comprehension"},
				},
			},
			{
				ID:    "c2",
				Label: "Writing",
				State: StateUnset,
			},
		},
	}
	if withActions {
		cl.Actions = []RequiredAction{
			{ID: "a1", Label: "Submit workbook"},
		}
	}
	if withParams {
		cl.Params = &ParamCheck{
			Primary:   ParamValues{Current: 3, Original: 3},
			Secondary: ParamValues{Current: 4, Original: 4},
		}
	}
	return cl
}

func Test_Checklist_SetCompetencyState(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		state   CompetencyState
		wantErr error
	}{
		{name: "acquired", id: "c1", state: StateAcquired},
		{name: "to improve", id: "c1", state: StateToImprove},
		{name: "not acquired", id: "c2", state: StateNotAcquired},
		{name: "not evaluated", id: "c2", state: StateNotEvaluated},
		{name: "unset is not scorable", id: "c1", state: StateUnset, wantErr: ErrInvalidState},
		{name: "garbage state", id: "c1", state: CompetencyState("nope"), wantErr: ErrInvalidState},
		{name: "unknown id", id: "c404", state: StateAcquired, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cl := newTestChecklist(false, false)
			err := cl.SetCompetencyState(tt.id, tt.state)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			assert.NoError(t, err)
			comp := cl.competency(tt.id)
			if assert.NotNil(t, comp) {
				assert.Equal(t, tt.state, comp.State)
			}
		})
	}
}

func Test_Checklist_cascadeClearsSubCompetencies(t *testing.T) {
	cl := newTestChecklist(false, false)

	assert.NoError(t, cl.SetCompetencyState("c1", StateToImprove))
	assert.NoError(t, cl.ToggleSubCompetency("c1s1"))
	assert.NoError(t, cl.ToggleSubCompetency("c1s2"))
	assert.True(t, cl.Competencies[0].SubCompetencies[0].Checked)
	assert.True(t, cl.Competencies[0].SubCompetencies[1].Checked)

	// any state other than to_improve force-clears the check marks
	assert.NoError(t, cl.SetCompetencyState("c1", StateAcquired))
	assert.False(t, cl.Competencies[0].SubCompetencies[0].Checked)
	assert.False(t, cl.Competencies[0].SubCompetencies[1].Checked)
}

// the cascade invariant must hold for every sequence of state changes:
// a checked sub-competency under a parent not marked to_improve is unreachable.
func Test_Checklist_cascadeInvariantHoldsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	cl := newTestChecklist(false, false)
	ids := []string{"c1", "c2"}
	subIDs := []string{"c1s1", "c1s2"}

	for i := 0; i < 1000; i++ {
		if rng.Intn(2) == 0 {
			state := ScorableStates[rng.Intn(len(ScorableStates))]
			assert.NoError(t, cl.SetCompetencyState(ids[rng.Intn(len(ids))], state))
		} else {
			err := cl.ToggleSubCompetency(subIDs[rng.Intn(len(subIDs))])
			if err != nil {
				assert.Equal(t, ErrNotImprovable, err)
			}
		}

		for _, comp := range cl.Competencies {
			if comp.State == StateToImprove {
				continue
			}
			for _, sub := range comp.SubCompetencies {
				assert.False(t, sub.Checked, "checked sub-competency under %s parent", comp.State)
			}
		}
	}
}

func Test_Checklist_ToggleSubCompetency(t *testing.T) {
	cl := newTestChecklist(false, false)

	// parent still unset
	assert.Equal(t, ErrNotImprovable, cl.ToggleSubCompetency("c1s1"))

	assert.NoError(t, cl.SetCompetencyState("c1", StateToImprove))
	assert.NoError(t, cl.ToggleSubCompetency("c1s1"))
	assert.True(t, cl.Competencies[0].SubCompetencies[0].Checked)
	assert.NoError(t, cl.ToggleSubCompetency("c1s1"))
	assert.False(t, cl.Competencies[0].SubCompetencies[0].Checked)

	assert.Equal(t, ErrNotFound, cl.ToggleSubCompetency("s404"))
}

func Test_Checklist_ToggleAction(t *testing.T) {
	cl := newTestChecklist(true, false)

	assert.NoError(t, cl.ToggleAction("a1"))
	assert.True(t, cl.Actions[0].Checked)
	assert.NoError(t, cl.ToggleAction("a1"))
	assert.False(t, cl.Actions[0].Checked)

	assert.Equal(t, ErrNotFound, cl.ToggleAction("a404"))
}

func Test_Checklist_SetParam(t *testing.T) {
	cl := newTestChecklist(false, true)

	assert.NoError(t, cl.SetParam(SlotPrimary, 7))
	assert.Equal(t, 7, cl.Params.Primary.Current)
	assert.Equal(t, 3, cl.Params.Primary.Original)
	assert.NoError(t, cl.SetParam(SlotSecondary, 9))
	assert.Equal(t, 9, cl.Params.Secondary.Current)

	assert.Equal(t, ErrNotFound, cl.SetParam(ParamSlot("tertiary"), 1))

	// feature disabled: no slot exists
	plain := newTestChecklist(false, false)
	assert.Equal(t, ErrNotFound, plain.SetParam(SlotPrimary, 1))
}

func Test_Checklist_ResetForNewRound(t *testing.T) {
	cl := newTestChecklist(true, true)
	assert.NoError(t, cl.SetCompetencyState("c1", StateToImprove))
	assert.NoError(t, cl.ToggleSubCompetency("c1s1"))
	assert.NoError(t, cl.SetCompetencyState("c2", StateAcquired))
	assert.NoError(t, cl.ToggleAction("a1"))
	assert.NoError(t, cl.SetParam(SlotPrimary, 99))

	cl.ResetForNewRound()

	for _, comp := range cl.Competencies {
		assert.Equal(t, StateUnset, comp.State)
		for _, sub := range comp.SubCompetencies {
			assert.False(t, sub.Checked)
		}
	}
	for _, act := range cl.Actions {
		assert.False(t, act.Checked)
	}
	assert.Equal(t, cl.Params.Primary.Original, cl.Params.Primary.Current)
	assert.Equal(t, cl.Params.Secondary.Original, cl.Params.Secondary.Current)
}

func Test_EvaluationRecord_Locked(t *testing.T) {
	assert.False(t, EvaluationRecord{Verdict: VerdictNone}.Locked())
	assert.False(t, EvaluationRecord{Verdict: VerdictNonSatisfactory}.Locked())
	assert.True(t, EvaluationRecord{Verdict: VerdictSatisfactory}.Locked())
}
