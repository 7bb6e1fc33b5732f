package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Policy_transitions(t *testing.T) {
	t.Run("never evaluated to non-satisfactory is re-entrant", func(t *testing.T) {
		p := NewPolicy()
		assert.Equal(t, NeverEvaluated, p.State())

		assert.NoError(t, p.Record(VerdictNonSatisfactory))
		assert.Equal(t, EvaluatedNonSatisfactory, p.State())
		assert.False(t, p.Locked())

		// unlimited re-entry
		assert.NoError(t, p.Record(VerdictNonSatisfactory))
		assert.Equal(t, EvaluatedNonSatisfactory, p.State())
	})

	t.Run("satisfactory is terminal from anywhere", func(t *testing.T) {
		p := NewPolicy()
		assert.NoError(t, p.Record(VerdictSatisfactory))
		assert.Equal(t, EvaluatedSatisfactory, p.State())
		assert.True(t, p.Locked())

		p = NewPolicy()
		assert.NoError(t, p.Record(VerdictNonSatisfactory))
		assert.NoError(t, p.Record(VerdictSatisfactory))
		assert.True(t, p.Locked())
	})

	t.Run("locked policy rejects every commit", func(t *testing.T) {
		p := NewPolicy()
		assert.NoError(t, p.Record(VerdictSatisfactory))

		assert.Equal(t, ErrEvaluationLocked, p.Record(VerdictSatisfactory))
		assert.Equal(t, ErrEvaluationLocked, p.Record(VerdictNonSatisfactory))
		assert.Equal(t, EvaluatedSatisfactory, p.State())
	})

	t.Run("none is not recordable", func(t *testing.T) {
		p := NewPolicy()
		assert.Equal(t, ErrInvalidState, p.Record(VerdictNone))
		assert.Equal(t, NeverEvaluated, p.State())
	})
}

func Test_SeedPolicy(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    PolicyState
	}{
		{name: "no prior verdict", verdict: VerdictNone, want: NeverEvaluated},
		{name: "prior non-satisfactory", verdict: VerdictNonSatisfactory, want: EvaluatedNonSatisfactory},
		{name: "prior satisfactory", verdict: VerdictSatisfactory, want: EvaluatedSatisfactory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SeedPolicy(EvaluationRecord{QuizID: "q", SubjectID: "s", Verdict: tt.verdict})
			assert.Equal(t, tt.want, p.State())
			assert.Equal(t, tt.verdict == VerdictSatisfactory, p.Locked())
		})
	}
}
