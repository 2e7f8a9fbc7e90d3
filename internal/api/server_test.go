package api_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"referralflow/internal/api"
	"referralflow/internal/api/handler/v1handler"
	mockpipeline "referralflow/internal/pipeline/mock"
	"referralflow/pkg/logger"
	"referralflow/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func newTestServer(t *testing.T, deps api.Deps, opts api.Options) *httptest.Server {
	t.Helper()
	srv, err := api.NewServer(deps, opts)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	res, err := http.Get(url) //nolint: noctx
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res, string(b)
}

func TestNewServer_Routes(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.Setup(reg)
	require.NoError(t, err)
	metrics.Enqueued(context.Background(), "memory")

	ts := newTestServer(t, api.Deps{}, api.Options{Gatherer: reg, CORSOrigins: []string{"http://localhost:3000"}})

	res, body := get(t, ts.URL+"/health")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `{"status":"ok","app_name":"referralflow"}`, body)
	require.NotEmpty(t, res.Header.Get("X-Request-Id"))

	res, body = get(t, ts.URL+"/specs/v1.yaml")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "/api/v1/orchestrator/webhook/ingest")

	res, body = get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, body, "pipeline_enqueued_total")

	res, _ = get(t, ts.URL+"/v1/docs/")
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, _ = get(t, ts.URL+"/debug/pprof/cmdline")
	require.Equal(t, http.StatusOK, res.StatusCode)
}

func TestNewServer_IngestRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	enq := mockpipeline.NewMockEnqueuer(ctrl)
	enq.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	ts := newTestServer(t,
		api.Deps{Deps: v1handler.Deps{Enqueuer: enq}},
		api.Options{RateLimit: 0.001, RateBurst: 2, Gatherer: prometheus.NewRegistry()})

	post := func() int {
		res, err := http.Post(ts.URL+v1handler.IngestPath, "application/json", //nolint: noctx
			strings.NewReader(`{"text":"python","email":"a@b.com"}`))
		require.NoError(t, err)
		_ = res.Body.Close()

		return res.StatusCode
	}

	require.Equal(t, http.StatusAccepted, post())
	require.Equal(t, http.StatusAccepted, post())
	require.Equal(t, http.StatusTooManyRequests, post())

	// the health check is not throttled
	for range 3 {
		res, _ := get(t, ts.URL+"/health")
		require.Equal(t, http.StatusOK, res.StatusCode)
	}
}

func TestNewServer_InvalidPublicKey(t *testing.T) {
	_, err := api.NewServer(api.Deps{}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: "nope"},
	})
	require.Error(t, err)
}

func TestNewServer_InvalidTrustedProxy(t *testing.T) {
	_, err := api.NewServer(api.Deps{}, api.Options{RateLimit: 1, TrustedProxies: []string{"not-an-ip"}})
	require.Error(t, err)
}

func TestNewServer_BearerRequiredWhenKeyConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	enq := mockpipeline.NewMockEnqueuer(ctrl)

	ts := newTestServer(t,
		api.Deps{Deps: v1handler.Deps{Enqueuer: enq}},
		api.Options{SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: testPublicKey(t)}, Gatherer: prometheus.NewRegistry()})

	res, err := http.Post(ts.URL+v1handler.IngestPath, "application/json", //nolint: noctx
		strings.NewReader(`{"text":"python","email":"a@b.com"}`))
	require.NoError(t, err)
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	_ = res.Body.Close()

	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.JSONEq(t, `{"code":"UNAUTHORIZED","message":"missing bearer token"}`, string(b))
}

func TestNewServer_BodyLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	enq := mockpipeline.NewMockEnqueuer(ctrl)

	ts := newTestServer(t,
		api.Deps{Deps: v1handler.Deps{Enqueuer: enq}},
		api.Options{MaxBodyBytes: 32, Gatherer: prometheus.NewRegistry()})

	res, err := http.Post(ts.URL+v1handler.IngestPath, "application/json", //nolint: noctx
		strings.NewReader(`{"text":"`+strings.Repeat("x", 64)+`","email":"a@b.com"}`))
	require.NoError(t, err)
	_ = res.Body.Close()

	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func testPublicKey(t *testing.T) string {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}
