// Package clientfeedbacksvc talks to the external AI collaborator that plays
// the simulated client. It is a thin HTTP gateway; all fallback logic lives
// with the caller.
package clientfeedbacksvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazungumzo/core"
)

const feedbackEndpoint = "/v1/client-feedback"

type httpService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  core.Logger
}

var _ core.ClientFeedbackService = (*httpService)(nil)

func NewHTTPService(logger core.Logger, conf *core.Config) core.ClientFeedbackService {
	if !conf.ClientFeedback.Enabled || conf.ClientFeedback.BaseURL == "" {
		return NewDisabledService()
	}
	return &httpService{
		client:  &http.Client{Timeout: conf.ClientFeedback.Timeout},
		baseURL: conf.ClientFeedback.BaseURL,
		apiKey:  conf.ClientFeedback.ApiKey,
		logger:  logger,
	}
}

func (svc *httpService) Enabled() bool { return true }

func (svc *httpService) GenerateFeedback(ctx context.Context, snap core.OfferSnapshot) (core.ClientFeedback, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return core.ClientFeedback{}, errors.Wrap(err, "encoding offer snapshot")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+feedbackEndpoint, bytes.NewReader(body))
	if err != nil {
		return core.ClientFeedback{}, errors.Wrap(err, "building feedback request")
	}
	req.Header.Set("Content-Type", "application/json")
	if svc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+svc.apiKey)
	}

	start := time.Now()
	res, err := svc.client.Do(req)
	if err != nil {
		return core.ClientFeedback{}, errors.Wrap(err, "requesting client feedback")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return core.ClientFeedback{}, errors.Errorf("client feedback: unexpected status %d", res.StatusCode)
	}

	var fb core.ClientFeedback
	if err := json.NewDecoder(res.Body).Decode(&fb); err != nil {
		return core.ClientFeedback{}, errors.Wrap(err, "decoding client feedback")
	}
	fb.ResponseTime = time.Since(start)

	svc.logger.Debug(fmt.Sprintf("client feedback served in %s (cost %.4f)", fb.ResponseTime, fb.Cost))
	return fb, nil
}

type disabledService struct{}

var _ core.ClientFeedbackService = (*disabledService)(nil)

// NewDisabledService returns a service that reports itself disabled so that
// callers take the rule-based path.
func NewDisabledService() core.ClientFeedbackService {
	return disabledService{}
}

func (disabledService) Enabled() bool { return false }

func (disabledService) GenerateFeedback(context.Context, core.OfferSnapshot) (core.ClientFeedback, error) {
	return core.ClientFeedback{}, errors.New("client feedback service is disabled")
}
