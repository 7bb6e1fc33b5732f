package echoapi

import (
	"net/http"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/eval"
)

type evalApi struct {
	svc        *eval.Service
	validate   *validator.Validate
	translator ut.Translator

	// sessions holds the open evaluation session of each (quiz, subject) pair.
	// Session mutations are single-threaded; the mutex serializes them.
	mut      sync.Mutex
	sessions map[string]*eval.Session
}

func registerEvalAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *eval.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := evalApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
		sessions:   make(map[string]*eval.Session),
	}

	eg := g.Group("/evaluations/:quizID/subjects/:subjectID", jwt, evaluatorMiddleware())
	eg.GET("", api.open)
	eg.PUT("/competencies/:id", api.setCompetencyState)
	eg.POST("/sub-competencies/:id/toggle", api.toggleSubCompetency)
	eg.POST("/actions/:id/toggle", api.toggleAction)
	eg.PUT("/params/:slot", api.setParam)
	eg.POST("/commit", api.commit)
}

// withSession runs fn against the session of the addressed pair, opening one on
// first access. The registry lock is held for the whole call. dropAfter ends
// the round: the next request re-opens a fresh session.
func (api *evalApi) withSession(ctx echo.Context, dropAfter bool, fn func(sess *eval.Session) error) error {
	quizID, subjectID := ctx.Param("quizID"), ctx.Param("subjectID")
	key := quizID + ":" + subjectID

	api.mut.Lock()
	defer api.mut.Unlock()

	sess, ok := api.sessions[key]
	if !ok {
		var err error
		if sess, err = api.svc.Open(ctx.Request().Context(), quizID, subjectID); err != nil {
			return errors.Wrap(err, "opening evaluation session")
		}
		api.sessions[key] = sess
	}

	if err := fn(sess); err != nil {
		return err
	}

	if dropAfter || sess.Locked() {
		delete(api.sessions, key)
	}
	return nil
}

// Handlers

func (api *evalApi) open(ctx echo.Context) error {
	return api.withSession(ctx, false, func(sess *eval.Session) error {
		return ctx.JSON(http.StatusOK, newSessionResponse(sess))
	})
}

func (api *evalApi) setCompetencyState(ctx echo.Context) error {
	var data SetCompetencyStateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCompetencyStateRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	return api.withSession(ctx, false, func(sess *eval.Session) error {
		if err := sess.SetCompetencyState(ctx.Param("id"), eval.CompetencyState(data.State)); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, newSessionResponse(sess))
	})
}

func (api *evalApi) toggleSubCompetency(ctx echo.Context) error {
	return api.withSession(ctx, false, func(sess *eval.Session) error {
		if err := sess.ToggleSubCompetency(ctx.Param("id")); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, newSessionResponse(sess))
	})
}

func (api *evalApi) toggleAction(ctx echo.Context) error {
	return api.withSession(ctx, false, func(sess *eval.Session) error {
		if err := sess.ToggleAction(ctx.Param("id")); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, newSessionResponse(sess))
	})
}

func (api *evalApi) setParam(ctx echo.Context) error {
	var data SetParamRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetParamRequest")
	}
	data.Slot = ctx.Param("slot")
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	return api.withSession(ctx, false, func(sess *eval.Session) error {
		if err := sess.SetParam(eval.ParamSlot(data.Slot), data.Value); err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, newSessionResponse(sess))
	})
}

func (api *evalApi) commit(ctx echo.Context) error {
	var data CommitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CommitRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	// a commit ends the round either way
	return api.withSession(ctx, true, func(sess *eval.Session) error {
		rec, err := sess.Commit(ctx.Request().Context(), eval.Verdict(data.Verdict))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, CommitResponse{
			Record:      rec,
			PolicyState: sess.PolicyState(),
			Locked:      sess.Locked(),
		})
	})
}

type (
	SetCompetencyStateRequest struct {
		State string `json:"state" validate:"required,compstate"`
	}

	SetParamRequest struct {
		Slot  string `json:"-" validate:"required,paramslot"`
		Value int    `json:"value"`
	}

	CommitRequest struct {
		Verdict string `json:"verdict" validate:"required,verdict"`
	}

	SessionResponse struct {
		Checklist   eval.Checklist   `json:"checklist"`
		Facts       eval.FactSet     `json:"facts"`
		Gate        eval.Gate        `json:"gate"`
		PolicyState eval.PolicyState `json:"policy_state"`
		Locked      bool             `json:"locked"`
	}

	CommitResponse struct {
		Record      eval.EvaluationRecord `json:"record"`
		PolicyState eval.PolicyState      `json:"policy_state"`
		Locked      bool                  `json:"locked"`
	}
)

func newSessionResponse(sess *eval.Session) SessionResponse {
	return SessionResponse{
		Checklist:   sess.Checklist(),
		Facts:       sess.Facts(),
		Gate:        sess.Gate(),
		PolicyState: sess.PolicyState(),
		Locked:      sess.Locked(),
	}
}

func (r *SetCompetencyStateRequest) Validate(validate *validator.Validate) error {
	r.State = core.CleanString(r.State, true /* lower */)
	return validate.Struct(r)
}

func (r *SetParamRequest) Validate(validate *validator.Validate) error {
	r.Slot = core.CleanString(r.Slot, true /* lower */)
	return validate.Struct(r)
}

func (r *CommitRequest) Validate(validate *validator.Validate) error {
	r.Verdict = core.CleanString(r.Verdict, true /* lower */)
	return validate.Struct(r)
}
