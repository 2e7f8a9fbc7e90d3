package huggingface_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"referralflow/pkg/credentials"
	"referralflow/pkg/extractor"
	"referralflow/pkg/extractor/huggingface"
	"referralflow/pkg/retry"
	"referralflow/pkg/serrors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// rtFunc allows using a function as an http.RoundTripper.
type rtFunc func(*http.Request) (*http.Response, error)

func (f rtFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func fastPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		MinBackoff:  time.Millisecond,
		MaxBackoff:  2 * time.Millisecond,
		Retryable:   extractor.Retryable,
	}
}

func newTestClient(fn rtFunc, secrets credentials.Provider) *huggingface.Client {
	return huggingface.New(&http.Client{Transport: fn}, secrets, huggingface.Options{
		BaseURL: "https://inference.test/models",
		Model:   "acme/instruct",
		Retry:   fastPolicy(),
	})
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

var token = credentials.Static{huggingface.DefaultAccount: "hf-token"}

func TestClient_Extract_success(t *testing.T) {
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "inference.test", r.URL.Host)
		require.Equal(t, "/models/acme/instruct", r.URL.Path)
		require.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var req struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				MaxNewTokens   int  `json:"max_new_tokens"`
				ReturnFullText bool `json:"return_full_text"`
			} `json:"parameters"`
			Options struct {
				WaitForModel bool `json:"wait_for_model"`
			} `json:"options"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Contains(t, req.Inputs, "Jane Doe")
		require.Equal(t, huggingface.DefaultMaxNewTokens, req.Parameters.MaxNewTokens)
		require.False(t, req.Parameters.ReturnFullText)
		require.True(t, req.Options.WaitForModel)

		return respond(http.StatusOK,
			`[{"generated_text":"Here you go {\"candidate_name\":\"Jane Doe\",\"top_skills\":[\"Go\"],\"years_of_experience\":6,\"positions\":[\"Backend Engineer\"]}"}]`), nil
	}, token)

	p, err := c.Extract(context.Background(), "Jane Doe\nGo developer")
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", p.CandidateName)
	require.Equal(t, []string{"Go"}, p.TopSkills)
	require.Equal(t, "6", p.YearsOfExperience)
	require.Equal(t, "Backend Engineer", p.PrimaryPosition())
}

func TestClient_Extract_truncatesInput(t *testing.T) {
	long := strings.Repeat("x", extractor.DefaultMaxInputChars) + "TAIL"
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NotContains(t, string(b), "TAIL")

		return respond(http.StatusOK, `{"generated_text":"{\"positions\":[\"SRE\"]}"}`), nil
	}, token)

	p, err := c.Extract(context.Background(), long)
	require.NoError(t, err)
	require.Equal(t, []string{"SRE"}, p.Positions)
}

func TestClient_Extract_missingCredential(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)

		return respond(http.StatusOK, `{}`), nil
	}, credentials.Static{})

	_, err := c.Extract(context.Background(), "resume")
	require.ErrorIs(t, err, extractor.ErrExtraction)
	require.ErrorIs(t, err, serrors.ErrUnauthorized)
	require.Zero(t, calls.Load())
}

func TestClient_Extract_statusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		kind      error
		wantCalls int32
	}{
		{name: "warming up is retried", status: http.StatusServiceUnavailable, kind: serrors.ErrUnavailable, wantCalls: 3},
		{name: "rate limit is retried", status: http.StatusTooManyRequests, kind: serrors.ErrRateLimited, wantCalls: 3},
		{name: "server error is retried", status: http.StatusBadGateway, kind: serrors.ErrUnavailable, wantCalls: 3},
		{name: "invalid credential fails once", status: http.StatusUnauthorized, kind: serrors.ErrUnauthorized, wantCalls: 1},
		{name: "rejected request fails once", status: http.StatusUnprocessableEntity, kind: serrors.ErrBadRequest, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(func(r *http.Request) (*http.Response, error) {
				calls.Add(1)

				return respond(tt.status, `{"error":"nope"}`), nil
			}, token)

			_, err := c.Extract(context.Background(), "resume")
			require.ErrorIs(t, err, extractor.ErrExtraction)
			require.ErrorIs(t, err, tt.kind)
			require.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestClient_Extract_retriesMalformedThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return respond(http.StatusOK, `[{"generated_text":"sorry, no json today"}]`), nil
		}

		return respond(http.StatusOK, `[{"generated_text":"{\"top_skills\":\"go, sql\"}"}]`), nil
	}, token)

	p, err := c.Extract(context.Background(), "resume")
	require.NoError(t, err)
	require.Equal(t, []string{"go", "sql"}, p.TopSkills)
	require.Equal(t, int32(2), calls.Load())
}

func TestClient_Extract_networkErrorExhausts(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(func(r *http.Request) (*http.Response, error) {
		calls.Add(1)

		return nil, errors.New("connection reset by peer")
	}, token)

	_, err := c.Extract(context.Background(), "resume")
	require.ErrorIs(t, err, extractor.ErrExtraction)
	require.Equal(t, int32(3), calls.Load())
}

func TestGeneratedText(t *testing.T) {
	t.Parallel()

	got, err := huggingface.GeneratedText([]byte(`[{"score":1},{"generated_text":"first"},{"generated_text":"second"}]`))
	require.NoError(t, err)
	require.Equal(t, "first", got)

	got, err = huggingface.GeneratedText([]byte(`{"generated_text":"obj"}`))
	require.NoError(t, err)
	require.Equal(t, "obj", got)

	_, err = huggingface.GeneratedText([]byte(`[]`))
	require.ErrorIs(t, err, extractor.ErrMalformed)

	_, err = huggingface.GeneratedText([]byte(`"just a string"`))
	require.ErrorIs(t, err, extractor.ErrMalformed)
}
