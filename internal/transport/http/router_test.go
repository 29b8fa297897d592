package httptransport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	mpinhandler "pinguard/internal/mpin/handler"
	mpinmetrics "pinguard/internal/mpin/metrics"
	"pinguard/internal/mpin/service"
	platformmetrics "pinguard/internal/platform/metrics"
	rlmw "pinguard/internal/ratelimit/middleware"
	rlmodels "pinguard/internal/ratelimit/models"
	"pinguard/internal/ratelimit/store/bucket"
	"pinguard/pkg/platform/middleware/requestid"
	"pinguard/pkg/testutil"
)

type stubHealth struct {
	err error
}

func (s stubHealth) Health(context.Context) error {
	return s.err
}

type RouterSuite struct {
	suite.Suite
	logger     *slog.Logger
	metrics    *platformmetrics.Registry
	trustProxy bool
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.trustProxy = false
}

func (s *RouterSuite) newRouter(redis HealthChecker, limit int) http.Handler {
	s.metrics = platformmetrics.New()
	svc := service.New(
		service.WithLogger(s.logger),
		service.WithMetrics(mpinmetrics.New(s.metrics.Registerer())),
		service.WithBatchLimits(5, 2),
	)
	limiter := rlmw.New(bucket.NewInMemoryBucketStore(), s.logger,
		rlmw.WithLimit(rlmodels.ClassEvaluate, limit, time.Minute),
		rlmw.WithLimit(rlmodels.ClassRead, limit, time.Minute),
	)
	return NewRouter(Dependencies{
		Logger:       s.logger,
		MPIN:         mpinhandler.New(svc, s.logger),
		RateLimiter:  limiter,
		Metrics:      s.metrics,
		Redis:        redis,
		MaxBodyBytes: 256,

		TrustProxyHeaders: s.trustProxy,
	})
}

func (s *RouterSuite) TestEvaluateEndToEnd() {
	router := s.newRouter(nil, 10)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{
		"mpin": "0201",
		"dob":  "1998-01-02",
	})

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[mpinhandler.EvaluateResponse](s.T(), rr)
	s.Equal("WEAK", resp.Strength)
	s.ElementsMatch([]string{"DEMOGRAPHIC_DOB_SELF"}, resp.Reasons)
	s.Equal(4, resp.MPINLength)
	s.NotEmpty(rr.Header().Get(requestid.Header))
	s.Equal("10", rr.Header().Get("X-RateLimit-Limit"))
}

func (s *RouterSuite) TestInvalidMPINIsNotAnError() {
	router := s.newRouter(nil, 10)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "12a4"})

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[mpinhandler.EvaluateResponse](s.T(), rr)
	s.Equal("INVALID", resp.Strength)
	s.Equal([]string{"INVALID_FORMAT"}, resp.Reasons)
}

func (s *RouterSuite) TestBatchEndToEnd() {
	router := s.newRouter(nil, 10)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate/batch", map[string]any{
		"candidates": []string{"1234", "7391", "12"},
	})

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[mpinhandler.BatchResponse](s.T(), rr)
	s.Len(resp.Results, 3)
	s.Equal(1, resp.Weak)
	s.Equal(1, resp.Strong)
	s.Equal(1, resp.Invalid)
}

func (s *RouterSuite) TestBodyLimit() {
	router := s.newRouter(nil, 10)
	body := `{"mpin":"1234","dob":"` + strings.Repeat("1", 400) + `"}`
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/mpin/evaluate", body)

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusRequestEntityTooLarge, "payload_too_large")
}

func (s *RouterSuite) TestRateLimitExceeded() {
	router := s.newRouter(nil, 2)
	for range 2 {
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "7391"}))
		testutil.AssertStatusOK(s.T(), rr)
	}

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "7391"}))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	s.NotEmpty(rr.Header().Get("Retry-After"))

	s.Run("catalog has its own budget", func() {
		rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/mpin/reasons"))
		testutil.AssertStatusOK(s.T(), rr)
	})
}

func (s *RouterSuite) TestForwardedHeaderDoesNotResetBudget() {
	router := s.newRouter(nil, 3)
	evaluate := func(forwardedFor string) *http.Request {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "7391"})
		req.RemoteAddr = "192.0.2.10:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.Header.Set("X-Real-IP", forwardedFor)
		return req
	}

	for i := range 3 {
		rr := testutil.DoRequest(router, evaluate(fmt.Sprintf("203.0.113.%d", i)))
		testutil.AssertStatusOK(s.T(), rr)
	}
	for i := range 20 {
		rr := testutil.DoRequest(router, evaluate(fmt.Sprintf("198.51.100.%d", i)))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limit_exceeded")
	}

	s.Run("different remote address has its own budget", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "7391"})
		req.RemoteAddr = "192.0.2.11:40000"
		testutil.AssertStatusOK(s.T(), testutil.DoRequest(router, req))
	})
}

func (s *RouterSuite) TestTrustedProxyKeysOnForwardedHeader() {
	s.trustProxy = true
	router := s.newRouter(nil, 1)
	evaluate := func(forwardedFor string) *http.Request {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "7391"})
		req.RemoteAddr = "10.0.0.1:40000"
		req.Header.Set("X-Forwarded-For", forwardedFor+", 10.0.0.1")
		return req
	}

	testutil.AssertStatusOK(s.T(), testutil.DoRequest(router, evaluate("203.0.113.1")))
	testutil.AssertStatusOK(s.T(), testutil.DoRequest(router, evaluate("203.0.113.2")))

	rr := testutil.DoRequest(router, evaluate("203.0.113.1"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limit_exceeded")
}

func (s *RouterSuite) TestReasons() {
	router := s.newRouter(nil, 10)

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/mpin/reasons"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONHasKey(s.T(), rr, "reasons")
}

func (s *RouterSuite) TestHealth() {
	s.Run("redis disabled", func() {
		rr := testutil.DoRequest(s.newRouter(nil, 10), testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[healthResponse](s.T(), rr)
		s.Equal(healthResponse{Status: "ok", Redis: "disabled"}, *resp)
	})

	s.Run("redis healthy", func() {
		rr := testutil.DoRequest(s.newRouter(stubHealth{}, 10), testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[healthResponse](s.T(), rr)
		s.Equal("ok", resp.Redis)
	})

	s.Run("redis down", func() {
		rr := testutil.DoRequest(s.newRouter(stubHealth{err: errors.New("dial tcp: refused")}, 10), testutil.NewRequest(s.T(), http.MethodGet, "/healthz"))
		testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
		resp := testutil.UnmarshalResponse[healthResponse](s.T(), rr)
		s.Equal(healthResponse{Status: "degraded", Redis: "unavailable"}, *resp)
	})
}

func (s *RouterSuite) TestMetricsEndpoint() {
	router := s.newRouter(nil, 10)
	testutil.DoRequest(router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/mpin/evaluate", map[string]string{"mpin": "1234"}))

	rr := testutil.DoRequest(router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))

	testutil.AssertStatusOK(s.T(), rr)
	body := rr.Body.String()
	s.Contains(body, "pinguard_mpin_verdicts_total")
	s.Contains(body, `pinguard_http_requests_total{method="POST",route="/mpin/evaluate",status="2xx"} 1`)
}

func (s *RouterSuite) TestUnknownRoute() {
	rr := testutil.DoRequest(s.newRouter(nil, 10), testutil.NewRequest(s.T(), http.MethodGet, "/nope"))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *RouterSuite) TestMethodNotAllowed() {
	rr := testutil.DoRequest(s.newRouter(nil, 10), testutil.NewRequest(s.T(), http.MethodGet, "/mpin/evaluate"))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusMethodNotAllowed, "method_not_allowed")
}
