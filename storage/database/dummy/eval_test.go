package dummydb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tathmini/core/eval"
)

func newTestChecklist() eval.Checklist {
	return eval.Checklist{
		QuizID:   "quiz-1",
		CourseID: "course-1",
		Competencies: []eval.Competency{
			{ID: "c1", SubCompetencies: []eval.SubCompetency{{ID: "c1s1"}}},
		},
		Actions: []eval.RequiredAction{{ID: "a1"}},
		Params: &eval.ParamCheck{
			Primary:   eval.ParamValues{Current: 3, Original: 3},
			Secondary: eval.ParamValues{Current: 4, Original: 4},
		},
	}
}

func Test_checklistSource_GetChecklist(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	src := NewChecklistSource(db)
	src.SetChecklist(newTestChecklist())

	t.Run("unknown quiz", func(t *testing.T) {
		_, err := src.GetChecklist(ctx, "nope", "subject-1")
		assert.Equal(t, eval.ErrNotFound, err)
	})

	t.Run("copies are independent", func(t *testing.T) {
		cl1, err := src.GetChecklist(ctx, "quiz-1", "subject-1")
		require.NoError(t, err)
		assert.Equal(t, "subject-1", cl1.SubjectID)

		// mutate the first copy; a fresh fetch must be pristine
		require.NoError(t, cl1.SetCompetencyState("c1", eval.StateNotAcquired))
		require.NoError(t, cl1.ToggleAction("a1"))
		require.NoError(t, cl1.SetParam(eval.SlotPrimary, 9))

		cl2, err := src.GetChecklist(ctx, "quiz-1", "subject-2")
		require.NoError(t, err)
		assert.Equal(t, eval.StateUnset, cl2.Competencies[0].State)
		assert.False(t, cl2.Actions[0].Checked)
		assert.Equal(t, 3, cl2.Params.Primary.Current)
	})
}

func Test_evaluationRepository(t *testing.T) {
	ctx := context.Background()
	db, err := Open()
	require.NoError(t, err)
	repo := NewEvaluationRepository(db)

	t.Run("get missing record", func(t *testing.T) {
		_, err := repo.GetEvaluation(ctx, "quiz-1", "subject-1")
		assert.Equal(t, eval.ErrEvaluationNotFound, err)
	})

	t.Run("save assigns an ID and upserts", func(t *testing.T) {
		rec, err := repo.SaveEvaluation(ctx, eval.EvaluationRecord{
			QuizID: "quiz-1", SubjectID: "subject-1", Verdict: eval.VerdictNonSatisfactory,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)

		rec2, err := repo.SaveEvaluation(ctx, eval.EvaluationRecord{
			QuizID: "quiz-1", SubjectID: "subject-1", Verdict: eval.VerdictSatisfactory,
		})
		require.NoError(t, err)
		assert.Equal(t, rec.ID, rec2.ID)

		got, err := repo.GetEvaluation(ctx, "quiz-1", "subject-1")
		require.NoError(t, err)
		assert.Equal(t, eval.VerdictSatisfactory, got.Verdict)
		assert.True(t, got.Locked())
	})

	t.Run("locked record rejects a different verdict", func(t *testing.T) {
		_, err := repo.SaveEvaluation(ctx, eval.EvaluationRecord{
			QuizID: "quiz-1", SubjectID: "subject-1", Verdict: eval.VerdictNonSatisfactory,
		})
		assert.Equal(t, eval.ErrEvaluationLocked, err)
	})

	t.Run("details accumulate per evaluation", func(t *testing.T) {
		cl := newTestChecklist()
		require.NoError(t, repo.SaveEvaluationDetail(ctx, "rec-1", cl))
		require.NoError(t, repo.SaveEvaluationDetail(ctx, "rec-1", cl))
		assert.Len(t, repo.EvaluationDetails("rec-1"), 2)
	})
}
