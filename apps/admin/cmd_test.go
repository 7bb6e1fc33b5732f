package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/trezcool/tathmini/core/eval"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCliTests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			} else if tt.wantErr != nil || tt.wantErrStr != "" {
				t.Errorf("cli.run() error = nil, want %v%s", tt.wantErr, tt.wantErrStr)
			}
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := &commandLine{}

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "quiz", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	runCliTests(t, cli, tests)
}

func Test_commandLine_unlock(t *testing.T) {
	cli := &commandLine{}

	records := map[string]eval.Verdict{
		"quiz-1:subject-1": eval.VerdictNonSatisfactory,
		"quiz-1:subject-2": eval.VerdictSatisfactory,
	}
	unlockFunc = func(db *sql.DB, quizID, subjectID string) error {
		verdict, ok := records[quizID+":"+subjectID]
		if !ok {
			return eval.ErrEvaluationNotFound
		}
		if verdict == eval.VerdictSatisfactory {
			return errLocked
		}
		delete(records, quizID+":"+subjectID)
		return nil
	}

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"unlock"}, wantErr: errHelp},
		{name: "quiz but no subject", args: []string{"unlock", "-quiz", "quiz-1"}, wantErr: errHelp},
		{name: "record not found", args: []string{"unlock", "-quiz", "lol", "-subject", "lol"}, wantErr: eval.ErrEvaluationNotFound},
		{name: "locked record is refused", args: []string{"unlock", "-quiz", "quiz-1", "-subject", "subject-2"}, wantErr: errLocked},
		{name: "non-satisfactory record is deleted", args: []string{"unlock", "-quiz", "quiz-1", "-subject", "subject-1"}},
	}
	runCliTests(t, cli, tests)

	if _, ok := records["quiz-1:subject-1"]; ok {
		t.Error("failed to delete the evaluation record")
	}
	if _, ok := records["quiz-1:subject-2"]; !ok {
		t.Error("locked record must not be deleted")
	}
}
