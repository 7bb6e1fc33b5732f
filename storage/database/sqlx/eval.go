package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/tathmini/core/eval"
)

type (
	quizRow struct {
		ID             string   `db:"id"`
		CourseID       string   `db:"course_id"`
		ParamChecked   bool     `db:"param_checked"`
		ParamPrimary   null.Int `db:"param_primary"`
		ParamSecondary null.Int `db:"param_secondary"`
	}

	itemRow struct {
		ID    string `db:"id"`
		Label string `db:"label"`
	}

	subRow struct {
		ID           string `db:"id"`
		CompetencyID string `db:"competency_id"`
		Label        string `db:"label"`
	}

	evaluationRow struct {
		ID        string    `db:"id"`
		QuizID    string    `db:"quiz_id"`
		SubjectID string    `db:"subject_id"`
		Verdict   string    `db:"verdict"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
)

// checklistSource loads a quiz's evaluable items. Items come back pristine:
// the mutable marks live in the evaluation session, not in these tables.
type checklistSource struct {
	db *sqlx.DB
}

var _ eval.ChecklistSource = (*checklistSource)(nil) // interface compliance check

func NewChecklistSource(db *sqlx.DB) *checklistSource {
	return &checklistSource{db: db}
}

func (src checklistSource) GetChecklist(ctx context.Context, quizID, subjectID string) (eval.Checklist, error) {
	var quiz quizRow
	err := src.db.GetContext(ctx, &quiz,
		`SELECT id, course_id, param_checked, param_primary, param_secondary FROM quiz WHERE id = $1`, quizID)
	if err != nil {
		if err == sql.ErrNoRows {
			return eval.Checklist{}, eval.ErrNotFound
		}
		return eval.Checklist{}, errors.Wrap(err, "querying quiz")
	}

	var subjectEmail string
	err = src.db.GetContext(ctx, &subjectEmail, `SELECT email FROM subject WHERE id = $1`, subjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return eval.Checklist{}, eval.ErrNotFound
		}
		return eval.Checklist{}, errors.Wrap(err, "querying subject")
	}

	cl := eval.Checklist{
		QuizID:       quizID,
		SubjectID:    subjectID,
		SubjectEmail: subjectEmail,
		CourseID:     quiz.CourseID,
	}

	var comps []itemRow
	err = src.db.SelectContext(ctx, &comps,
		`SELECT id, label FROM quiz_competency WHERE quiz_id = $1 ORDER BY position`, quizID)
	if err != nil {
		return eval.Checklist{}, errors.Wrap(err, "querying competencies")
	}

	var subs []subRow
	err = src.db.SelectContext(ctx, &subs,
		`SELECT s.id, s.competency_id, s.label
		 FROM quiz_sub_competency s
		 JOIN quiz_competency c ON c.id = s.competency_id
		 WHERE c.quiz_id = $1
		 ORDER BY s.position`, quizID)
	if err != nil {
		return eval.Checklist{}, errors.Wrap(err, "querying sub-competencies")
	}
	subsByComp := make(map[string][]eval.SubCompetency, len(comps))
	for _, sub := range subs {
		subsByComp[sub.CompetencyID] = append(subsByComp[sub.CompetencyID], eval.SubCompetency{
			ID:    sub.ID,
			Label: sub.Label,
		})
	}

	cl.Competencies = make([]eval.Competency, 0, len(comps))
	for _, comp := range comps {
		cl.Competencies = append(cl.Competencies, eval.Competency{
			ID:              comp.ID,
			Label:           comp.Label,
			State:           eval.StateUnset,
			SubCompetencies: subsByComp[comp.ID],
		})
	}

	var actions []itemRow
	err = src.db.SelectContext(ctx, &actions,
		`SELECT id, label FROM quiz_required_action WHERE quiz_id = $1 ORDER BY position`, quizID)
	if err != nil {
		return eval.Checklist{}, errors.Wrap(err, "querying required actions")
	}
	for _, act := range actions {
		cl.Actions = append(cl.Actions, eval.RequiredAction{ID: act.ID, Label: act.Label})
	}

	if quiz.ParamChecked {
		cl.Params = &eval.ParamCheck{
			Primary:   eval.ParamValues{Current: quiz.ParamPrimary.Int, Original: quiz.ParamPrimary.Int},
			Secondary: eval.ParamValues{Current: quiz.ParamSecondary.Int, Original: quiz.ParamSecondary.Int},
		}
	}
	return cl, nil
}

type evaluationRepository struct {
	db *sqlx.DB
}

var _ eval.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *sqlx.DB) *evaluationRepository {
	return &evaluationRepository{db: db}
}

func (repo evaluationRepository) unrow(row evaluationRow) eval.EvaluationRecord {
	return eval.EvaluationRecord{
		ID:        row.ID,
		QuizID:    row.QuizID,
		SubjectID: row.SubjectID,
		Verdict:   eval.Verdict(row.Verdict),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

func (repo evaluationRepository) GetEvaluation(ctx context.Context, quizID, subjectID string) (eval.EvaluationRecord, error) {
	var row evaluationRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT id, quiz_id, subject_id, verdict, created_at, updated_at
		 FROM evaluation
		 WHERE quiz_id = $1 AND subject_id = $2`, quizID, subjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return eval.EvaluationRecord{}, eval.ErrEvaluationNotFound
		}
		return eval.EvaluationRecord{}, errors.Wrap(err, "querying evaluation")
	}
	return repo.unrow(row), nil
}

// SaveEvaluation upserts the verdict of a (quiz, subject) pair. A recorded
// satisfactory verdict is self-locking: the update clause refuses to overwrite
// it, guarding against two concurrent commits racing past the engine's checks.
func (repo evaluationRepository) SaveEvaluation(ctx context.Context, rec eval.EvaluationRecord) (eval.EvaluationRecord, error) {
	// always insert a fresh id; on conflict the existing row keeps its own
	rec.ID = uuid.New().String()

	var row evaluationRow
	err := repo.db.GetContext(ctx, &row,
		`INSERT INTO evaluation (id, quiz_id, subject_id, verdict, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (quiz_id, subject_id) DO UPDATE
		     SET verdict = EXCLUDED.verdict, updated_at = EXCLUDED.updated_at
		     WHERE evaluation.verdict <> 'satisfactory'
		 RETURNING id, quiz_id, subject_id, verdict, created_at, updated_at`,
		rec.ID, rec.QuizID, rec.SubjectID, string(rec.Verdict), rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		if err == sql.ErrNoRows { // update refused: pair already locked
			return eval.EvaluationRecord{}, eval.ErrEvaluationLocked
		}
		return eval.EvaluationRecord{}, errors.Wrap(err, "saving evaluation")
	}
	return repo.unrow(row), nil
}

func (repo evaluationRepository) SaveEvaluationDetail(ctx context.Context, evaluationID string, snapshot eval.Checklist) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshaling checklist snapshot")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO evaluation_detail (id, evaluation_id, snapshot) VALUES ($1, $2, $3)`,
		uuid.New().String(), evaluationID, data)
	return errors.Wrap(err, "saving evaluation detail")
}
