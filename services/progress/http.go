package progresssvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/tathmini/core"
	"github.com/trezcool/tathmini/core/eval"
)

// httpService queries the course-progress platform over its REST API.
type httpService struct {
	baseURL string
	client  *http.Client
}

var _ eval.ProgressService = (*httpService)(nil)

func NewHTTPService(conf *core.Config) *httpService {
	return &httpService{
		baseURL: conf.Services.ProgressBaseURL,
		client:  &http.Client{Timeout: conf.Services.Timeout},
	}
}

func (svc *httpService) CourseCompleted(ctx context.Context, courseID, subjectID string) (bool, error) {
	endpoint := fmt.Sprintf(
		"%s/v1/courses/%s/subjects/%s/completion",
		svc.baseURL, url.PathEscape(courseID), url.PathEscape(subjectID),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, errors.Wrap(err, "creating request")
	}

	res, err := svc.client.Do(req)
	if err != nil {
		return false, errors.Wrap(err, "querying course progress")
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.StatusCode >= http.StatusBadRequest:
		return false, errors.Errorf("querying course progress - status: %d", res.StatusCode)
	}

	var body struct {
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completed_at"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return false, errors.Wrap(err, "decoding course progress")
	}
	return body.Completed, nil
}

// dummyService is an in-memory stand-in for tests and local runs.
type dummyService struct {
	mu        sync.RWMutex
	completed map[string]bool
}

var _ eval.ProgressService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{completed: make(map[string]bool)}
}

func (svc *dummyService) SetCompleted(courseID, subjectID string, done bool) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.completed[courseID+":"+subjectID] = done
}

func (svc *dummyService) CourseCompleted(_ context.Context, courseID, subjectID string) (bool, error) {
	svc.mu.RLock()
	defer svc.mu.RUnlock()
	return svc.completed[courseID+":"+subjectID], nil
}
