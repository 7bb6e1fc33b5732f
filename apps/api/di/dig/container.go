package dig_container

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/tathmini/apps/api/echo"
	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/eval"
	certsvc "github.com/trezcool/tathmini/services/certificate"
	emailsvc "github.com/trezcool/tathmini/services/email"
	logsvc "github.com/trezcool/tathmini/services/logger"
	progresssvc "github.com/trezcool/tathmini/services/progress"
	"github.com/trezcool/tathmini/storage/database"
	sqlxrepos "github.com/trezcool/tathmini/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sql.DB, *sqlx.DB) {
	setUp := func() (*sql.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db); err != nil {
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, sqlx.NewDb(db, conf.Database.Engine)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(sqlxrepos.NewChecklistSource, dig.As(new(eval.ChecklistSource))))
	must(c.Provide(sqlxrepos.NewEvaluationRepository, dig.As(new(eval.Repository))))
	must(c.Provide(progresssvc.NewHTTPService, dig.As(new(eval.ProgressService))))
	must(c.Provide(certsvc.NewHTTPService, dig.As(new(eval.CertificateService))))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(eval.NewService))
	must(c.Provide(newServerDeps))
	must(c.Provide(echoapi.NewServer))

	return c
}

func newServerDeps(
	conf *core.Config,
	logger core.Logger,
	evalSvc *eval.Service,
	validate *validator.Validate,
	translator ut.Translator,
) echoapi.ServerDeps {
	return echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		EvalSvc:    evalSvc,
		Validate:   validate,
		Translator: translator,
	}
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
