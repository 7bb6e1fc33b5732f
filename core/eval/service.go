package eval

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
)

type (
	// ChecklistSource returns the evaluable items of a quiz for a subject,
	// with the quiz's numeric-parameter flag and original values.
	ChecklistSource interface {
		GetChecklist(ctx context.Context, quizID, subjectID string) (Checklist, error)
	}

	Repository interface {
		// GetEvaluation returns ErrEvaluationNotFound when the pair has never been evaluated.
		GetEvaluation(ctx context.Context, quizID, subjectID string) (EvaluationRecord, error)
		SaveEvaluation(ctx context.Context, rec EvaluationRecord) (EvaluationRecord, error)
		// SaveEvaluationDetail persists the full checklist snapshot as evidentiary
		// detail of a non-satisfactory verdict.
		SaveEvaluationDetail(ctx context.Context, evaluationID string, snapshot Checklist) error
	}

	// ProgressService reports whether a just-recorded satisfactory verdict
	// completed the subject's course. Course completion is computed externally.
	ProgressService interface {
		CourseCompleted(ctx context.Context, courseID, subjectID string) (bool, error)
	}

	// CertificateService receives the certificate-eligibility signal.
	// Implementations must be idempotent per (course, subject).
	CertificateService interface {
		NotifyEligibility(ctx context.Context, courseID, subjectID string) error
	}

	Service struct {
		source   ChecklistSource
		repo     Repository
		progress ProgressService
		certs    CertificateService
		mailSvc  core.EmailService
		logger   core.Logger
	}

	// Session owns the evaluation of one (quiz, subject) pair. All mutations and
	// recomputations are synchronous; facts and gate are never observed stale.
	// A Session is not safe for concurrent use; callers own the serialization.
	Session struct {
		svc       *Service
		checklist Checklist
		record    EvaluationRecord
		policy    *Policy
		facts     FactSet
		gate      Gate
	}
)

func NewService(
	source ChecklistSource,
	repo Repository,
	progress ProgressService,
	certs CertificateService,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		source:   source,
		repo:     repo,
		progress: progress,
		certs:    certs,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// Open starts an evaluation session. An existing record seeds the reevaluation
// policy directly into its matching state and forces a fresh round: every item
// comes back unset so the evaluator must re-affirm each one.
func (svc *Service) Open(ctx context.Context, quizID, subjectID string) (*Session, error) {
	checklist, err := svc.source.GetChecklist(ctx, quizID, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "loading checklist")
	}

	sess := &Session{svc: svc, checklist: checklist, policy: NewPolicy()}

	rec, err := svc.repo.GetEvaluation(ctx, quizID, subjectID)
	switch errors.Cause(err) {
	case nil:
		sess.record = rec
		sess.policy = SeedPolicy(rec)
		sess.checklist.ResetForNewRound()
	case ErrEvaluationNotFound:
		sess.record = EvaluationRecord{QuizID: quizID, SubjectID: subjectID, Verdict: VerdictNone}
	default:
		return nil, errors.Wrap(err, "loading evaluation record")
	}

	sess.recompute()
	return sess, nil
}

// recompute is the single entry point re-deriving facts and gate after a mutation.
func (sess *Session) recompute() {
	sess.facts = DeriveFacts(sess.checklist)
	sess.gate = DeriveGate(sess.facts, sess.policy.Locked())
}

func (sess *Session) Checklist() Checklist     { return sess.checklist }
func (sess *Session) Record() EvaluationRecord { return sess.record }
func (sess *Session) PolicyState() PolicyState { return sess.policy.State() }
func (sess *Session) Locked() bool             { return sess.policy.Locked() }
func (sess *Session) Facts() FactSet           { return sess.facts }
func (sess *Session) Gate() Gate               { return sess.gate }

func (sess *Session) mutate(op func() error) error {
	if sess.policy.Locked() {
		return ErrEvaluationLocked
	}
	if err := op(); err != nil {
		return err
	}
	sess.recompute()
	return nil
}

func (sess *Session) SetCompetencyState(id string, state CompetencyState) error {
	return sess.mutate(func() error { return sess.checklist.SetCompetencyState(id, state) })
}

func (sess *Session) ToggleSubCompetency(id string) error {
	return sess.mutate(func() error { return sess.checklist.ToggleSubCompetency(id) })
}

func (sess *Session) ToggleAction(id string) error {
	return sess.mutate(func() error { return sess.checklist.ToggleAction(id) })
}

func (sess *Session) SetParam(slot ParamSlot, value int) error {
	return sess.mutate(func() error { return sess.checklist.SetParam(slot, value) })
}

// Commit records a verdict. The record is persisted before the policy
// transitions, so a failed persist leaves policy and gate exactly as they were
// and the commit is safe to retry.
func (sess *Session) Commit(ctx context.Context, verdict Verdict) (EvaluationRecord, error) {
	if sess.policy.Locked() {
		return sess.record, ErrEvaluationLocked
	}
	if !sess.gate.Allows(verdict) {
		return sess.record, ErrVerdictNotAllowed
	}

	now := time.Now().UTC()
	rec := sess.record
	rec.Verdict = verdict
	rec.UpdatedAt = now
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	saved, err := sess.svc.repo.SaveEvaluation(ctx, rec)
	if err != nil {
		return sess.record, errors.Wrap(err, "saving evaluation")
	}

	if verdict == VerdictNonSatisfactory {
		// best-effort evidentiary write; the verdict above is already durable
		if err := sess.svc.repo.SaveEvaluationDetail(ctx, saved.ID, sess.checklist); err != nil {
			sess.svc.logger.Warn(fmt.Sprintf("saving evaluation detail: %v", err), err)
		}
	}

	if err := sess.policy.Record(verdict); err != nil {
		return sess.record, err
	}
	sess.record = saved
	sess.recompute()

	sess.svc.notifyVerdict(sess.checklist, verdict)
	if verdict == VerdictSatisfactory {
		sess.svc.signalEligibility(ctx, sess.checklist)
	}
	return saved, nil
}

// signalEligibility consults the course-progress collaborator and, when the
// satisfactory verdict completed the course, emits the certificate-eligibility
// signal. Both calls are post-commit: failures are logged, never rolled back.
func (svc *Service) signalEligibility(ctx context.Context, cl Checklist) {
	done, err := svc.progress.CourseCompleted(ctx, cl.CourseID, cl.SubjectID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("checking course completion: %v", err), err)
		return
	}
	if !done {
		return
	}
	if err := svc.certs.NotifyEligibility(ctx, cl.CourseID, cl.SubjectID); err != nil {
		svc.logger.Error(fmt.Sprintf("signaling certificate eligibility: %v", err), err)
	}
}

func (svc *Service) notifyVerdict(cl Checklist, verdict Verdict) {
	if cl.SubjectEmail == "" {
		return
	}
	body := "Your evaluation has been recorded as non-satisfactory. A new evaluation round may be scheduled."
	if verdict == VerdictSatisfactory {
		body = "Congratulations! Your evaluation has been recorded as satisfactory."
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: cl.SubjectEmail}},
		Subject: "Evaluation result",
		Body:    body,
	})
}
