package dummydb

import (
	"sync"

	"github.com/trezcool/tathmini/core/eval"
)

type (
	DB struct {
		checklists  *checklistTable
		evaluations *evaluationTable
	}

	checklistTable struct {
		sync.RWMutex
		table map[string]*eval.Checklist // keyed by quiz ID
	}

	evaluationTable struct {
		sync.RWMutex
		table   map[string]*eval.EvaluationRecord // keyed by quiz ID + subject ID
		details map[string][]eval.Checklist       // keyed by evaluation ID
	}
)

func Open() (*DB, error) {
	db := &DB{
		checklists: &checklistTable{table: make(map[string]*eval.Checklist)},
		evaluations: &evaluationTable{
			table:   make(map[string]*eval.EvaluationRecord),
			details: make(map[string][]eval.Checklist),
		},
	}
	return db, nil
}
