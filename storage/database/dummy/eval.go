package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/tathmini/core/eval"
)

func pairKey(quizID, subjectID string) string { return quizID + ":" + subjectID }

// copyChecklist returns a deep copy so sessions never share slices with the table.
func copyChecklist(cl eval.Checklist) eval.Checklist {
	cp := cl
	cp.Competencies = make([]eval.Competency, len(cl.Competencies))
	for i, comp := range cl.Competencies {
		cp.Competencies[i] = comp
		cp.Competencies[i].SubCompetencies = append([]eval.SubCompetency(nil), comp.SubCompetencies...)
	}
	cp.Actions = append([]eval.RequiredAction(nil), cl.Actions...)
	if cl.Params != nil {
		params := *cl.Params
		cp.Params = &params
	}
	return cp
}

type checklistSource struct {
	db *checklistTable
}

var _ eval.ChecklistSource = (*checklistSource)(nil) // interface compliance check

func NewChecklistSource(db *DB) *checklistSource {
	return &checklistSource{db: db.checklists}
}

// SetChecklist registers the checklist template of a quiz.
func (src *checklistSource) SetChecklist(cl eval.Checklist) {
	src.db.Lock()
	defer src.db.Unlock()
	cp := copyChecklist(cl)
	src.db.table[cl.QuizID] = &cp
}

func (src *checklistSource) GetChecklist(_ context.Context, quizID, subjectID string) (eval.Checklist, error) {
	src.db.RLock()
	defer src.db.RUnlock()

	if cl, ok := src.db.table[quizID]; ok {
		cp := copyChecklist(*cl)
		cp.SubjectID = subjectID
		return cp, nil
	}
	return eval.Checklist{}, eval.ErrNotFound
}

type evaluationRepository struct {
	db *evaluationTable
}

var _ eval.Repository = (*evaluationRepository)(nil) // interface compliance check

func NewEvaluationRepository(db *DB) *evaluationRepository {
	return &evaluationRepository{db: db.evaluations}
}

func (repo *evaluationRepository) GetEvaluation(_ context.Context, quizID, subjectID string) (eval.EvaluationRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[pairKey(quizID, subjectID)]; ok {
		return *rec, nil
	}
	return eval.EvaluationRecord{}, eval.ErrEvaluationNotFound
}

func (repo *evaluationRepository) SaveEvaluation(_ context.Context, rec eval.EvaluationRecord) (eval.EvaluationRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := pairKey(rec.QuizID, rec.SubjectID)
	if orig, ok := repo.db.table[key]; ok {
		// a satisfactory verdict is self-locking
		if orig.Locked() && rec.Verdict != orig.Verdict {
			return eval.EvaluationRecord{}, eval.ErrEvaluationLocked
		}
		rec.ID = orig.ID
		rec.CreatedAt = orig.CreatedAt
	} else if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	repo.db.table[key] = &rec
	return rec, nil
}

func (repo *evaluationRepository) SaveEvaluationDetail(_ context.Context, evaluationID string, snapshot eval.Checklist) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.details[evaluationID] = append(repo.db.details[evaluationID], copyChecklist(snapshot))
	return nil
}

// EvaluationDetails returns the evidentiary snapshots recorded for an evaluation.
func (repo *evaluationRepository) EvaluationDetails(evaluationID string) []eval.Checklist {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.details[evaluationID]
}
