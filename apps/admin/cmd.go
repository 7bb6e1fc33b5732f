package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db *sql.DB
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Println("  unlock -quiz QUIZ -subject SUBJECT - delete a non-satisfactory evaluation record")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	unlockCmd := flag.NewFlagSet("unlock", flag.ExitOnError)
	unlockQuiz := unlockCmd.String("quiz", "", "The quiz ID of the evaluation record.")
	unlockSubject := unlockCmd.String("subject", "", "The subject ID of the evaluation record.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "unlock":
		if err := unlockCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *unlockQuiz == "" || *unlockSubject == "" {
			unlockCmd.Usage()
			return errHelp
		}
		return cli.unlock(*unlockQuiz, *unlockSubject)
	default:
		cli.printUsage()
		return errHelp
	}
}
