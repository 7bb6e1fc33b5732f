package eval

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_DeriveGate_scenarios(t *testing.T) {
	tests := []struct {
		name  string
		cl    Checklist
		setup func(cl *Checklist)
		want  Gate
	}{
		{
			name: "both acquired, no actions, no params",
			cl:   newTestChecklist(false, false),
			setup: func(cl *Checklist) {
				_ = cl.SetCompetencyState("c1", StateAcquired)
				_ = cl.SetCompetencyState("c2", StateAcquired)
			},
			want: Gate{SatisfactoryAllowed: true, NonSatisfactoryAllowed: false},
		},
		{
			name: "one acquired, one not acquired",
			cl:   newTestChecklist(false, false),
			setup: func(cl *Checklist) {
				_ = cl.SetCompetencyState("c1", StateAcquired)
				_ = cl.SetCompetencyState("c2", StateNotAcquired)
			},
			want: Gate{SatisfactoryAllowed: false, NonSatisfactoryAllowed: true},
		},
		{
			name: "all acquired but required action unchecked",
			cl:   newTestChecklist(true, false),
			setup: func(cl *Checklist) {
				_ = cl.SetCompetencyState("c1", StateAcquired)
				_ = cl.SetCompetencyState("c2", StateAcquired)
			},
			want: Gate{SatisfactoryAllowed: false, NonSatisfactoryAllowed: true},
		},
		{
			name: "all acquired, action checked, numeric drifted",
			cl:   newTestChecklist(true, true),
			setup: func(cl *Checklist) {
				_ = cl.SetCompetencyState("c1", StateAcquired)
				_ = cl.SetCompetencyState("c2", StateAcquired)
				_ = cl.ToggleAction("a1")
				_ = cl.SetParam(SlotPrimary, 5) // original is 3
			},
			want: Gate{SatisfactoryAllowed: false, NonSatisfactoryAllowed: true},
		},
		{
			name: "not all scored disables both",
			cl:   newTestChecklist(false, false),
			setup: func(cl *Checklist) {
				_ = cl.SetCompetencyState("c1", StateAcquired)
			},
			want: Gate{},
		},
		{
			name: "stale acknowledged remediation keeps non-satisfactory open",
			cl:   newTestChecklist(false, false),
			setup: func(cl *Checklist) {
				_ = cl.SetCompetencyState("c1", StateToImprove)
				_ = cl.ToggleSubCompetency("c1s1")
				_ = cl.SetCompetencyState("c2", StateAcquired)
			},
			want: Gate{SatisfactoryAllowed: false, NonSatisfactoryAllowed: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup(&tt.cl)
			}
			assert.Equal(t, tt.want, DeriveGate(DeriveFacts(tt.cl), false))
		})
	}
}

func Test_DeriveGate_lockedForcesBothFalse(t *testing.T) {
	cl := newTestChecklist(false, false)
	_ = cl.SetCompetencyState("c1", StateAcquired)
	_ = cl.SetCompetencyState("c2", StateAcquired)
	facts := DeriveFacts(cl)

	assert.Equal(t, Gate{SatisfactoryAllowed: true}, DeriveGate(facts, false))
	assert.Equal(t, Gate{}, DeriveGate(facts, true))
}

// Mutual exclusion must hold for every fact set reachable from a checklist,
// whatever the evaluator did to it.
func Test_DeriveGate_mutualExclusion(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 5000; i++ {
		cl := newTestChecklist(rng.Intn(2) == 0, rng.Intn(2) == 0)
		for op := 0; op < 10; op++ {
			switch rng.Intn(4) {
			case 0:
				id := []string{"c1", "c2"}[rng.Intn(2)]
				_ = cl.SetCompetencyState(id, ScorableStates[rng.Intn(len(ScorableStates))])
			case 1:
				_ = cl.ToggleSubCompetency([]string{"c1s1", "c1s2"}[rng.Intn(2)])
			case 2:
				_ = cl.ToggleAction("a1")
			case 3:
				_ = cl.SetParam(SlotPrimary, rng.Intn(5))
			}
		}

		gate := DeriveGate(DeriveFacts(cl), false)
		assert.False(t, gate.SatisfactoryAllowed && gate.NonSatisfactoryAllowed,
			"both verdicts allowed for checklist %+v", cl)
	}
}

func Test_Gate_Allows(t *testing.T) {
	g := Gate{SatisfactoryAllowed: true}
	assert.True(t, g.Allows(VerdictSatisfactory))
	assert.False(t, g.Allows(VerdictNonSatisfactory))
	assert.False(t, g.Allows(VerdictNone))

	g = Gate{NonSatisfactoryAllowed: true}
	assert.False(t, g.Allows(VerdictSatisfactory))
	assert.True(t, g.Allows(VerdictNonSatisfactory))
}

func Test_DeriveGate_deterministic(t *testing.T) {
	cl := newTestChecklist(true, true)
	_ = cl.SetCompetencyState("c1", StateAcquired)
	_ = cl.SetCompetencyState("c2", StateToImprove)
	facts := DeriveFacts(cl)

	first := DeriveGate(facts, false)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, DeriveGate(facts, false))
	}
}
