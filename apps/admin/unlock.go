package main

import (
	"database/sql"
	"errors"

	"github.com/trezcool/tathmini/core/eval"
)

var (
	errLocked = errors.New("evaluation is locked: a satisfactory verdict is permanent")

	unlockFunc = unlockEvaluation // mockable
)

func (cli *commandLine) unlock(quizID, subjectID string) error {
	return unlockFunc(cli.db, quizID, subjectID)
}

// unlockEvaluation deletes a non-satisfactory evaluation record so the next
// session starts as never evaluated. Locked records are never touched.
func unlockEvaluation(db *sql.DB, quizID, subjectID string) error {
	var verdict string
	err := db.QueryRow(
		`SELECT verdict FROM evaluation WHERE quiz_id = $1 AND subject_id = $2`,
		quizID, subjectID,
	).Scan(&verdict)
	if err == sql.ErrNoRows {
		return eval.ErrEvaluationNotFound
	}
	if err != nil {
		return err
	}

	if eval.Verdict(verdict) == eval.VerdictSatisfactory {
		return errLocked
	}

	_, err = db.Exec(
		`DELETE FROM evaluation WHERE quiz_id = $1 AND subject_id = $2 AND verdict <> 'satisfactory'`,
		quizID, subjectID,
	)
	return err
}
