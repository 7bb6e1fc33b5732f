package certsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/eval"
)

// httpService notifies the certificate platform over its REST API.
// Each notification carries an idempotency key so redeliveries are safe.
type httpService struct {
	baseURL string
	client  *http.Client
}

var _ eval.CertificateService = (*httpService)(nil)

func NewHTTPService(conf *core.Config) *httpService {
	return &httpService{
		baseURL: conf.Services.CertificateBaseURL,
		client:  &http.Client{Timeout: conf.Services.Timeout},
	}
}

func (svc *httpService) NotifyEligibility(ctx context.Context, courseID, subjectID string) error {
	payload, err := json.Marshal(struct {
		CourseID  string `json:"course_id"`
		SubjectID string `json:"subject_id"`
	}{courseID, subjectID})
	if err != nil {
		return errors.Wrap(err, "encoding eligibility")
	}

	endpoint := fmt.Sprintf("%s/v1/eligibilities", svc.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.New().String())

	res, err := svc.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "notifying eligibility")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("notifying eligibility - status: %d", res.StatusCode)
	}
	return nil
}

// dummyService records notifications in memory for tests and local runs.
type dummyService struct {
	mu       sync.RWMutex
	notified []string
}

var _ eval.CertificateService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{}
}

func (svc *dummyService) NotifyEligibility(_ context.Context, courseID, subjectID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.notified = append(svc.notified, courseID+":"+subjectID)
	return nil
}

func (svc *dummyService) Notified() []string {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return append([]string(nil), svc.notified...)
}
