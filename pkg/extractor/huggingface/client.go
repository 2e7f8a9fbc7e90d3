// Package huggingface provides an extractor.Extractor backed by the Hugging
// Face hosted inference API for text-generation models.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"referralflow/pkg/credentials"
	"referralflow/pkg/domain"
	"referralflow/pkg/extractor"
	"referralflow/pkg/logger"
	"referralflow/pkg/retry"
	"referralflow/pkg/serrors"
	"strings"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the hosted inference endpoint prefix.
	DefaultBaseURL = "https://api-inference.huggingface.co/models"
	// DefaultModel is the instruction-tuned model used when none is configured.
	DefaultModel = "mistralai/Mistral-7B-Instruct-v0.2"
	// DefaultAccount is the credential account holding the API token.
	DefaultAccount = "huggingface"
	// DefaultMaxNewTokens bounds the generated output.
	DefaultMaxNewTokens = 500
)

// Options configures a Client. Zero values fall back to the defaults above
// and to retry.Default(extractor.Retryable).
type Options struct {
	BaseURL       string
	Model         string
	Account       string
	MaxInputChars int
	MaxNewTokens  int
	Retry         retry.Policy
}

func (o Options) withDefaults() Options {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.Model == "" {
		o.Model = DefaultModel
	}
	if o.Account == "" {
		o.Account = DefaultAccount
	}
	if o.MaxInputChars <= 0 {
		o.MaxInputChars = extractor.DefaultMaxInputChars
	}
	if o.MaxNewTokens <= 0 {
		o.MaxNewTokens = DefaultMaxNewTokens
	}
	if o.Retry.MaxAttempts == 0 {
		o.Retry = retry.Default(extractor.Retryable)
	}
	if o.Retry.Retryable == nil {
		o.Retry.Retryable = extractor.Retryable
	}

	return o
}

// Client calls the inference API. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	secrets    credentials.Provider
	opts       Options
}

// Ensure Client conforms to the extractor.Extractor interface at compile time.
var _ extractor.Extractor = (*Client)(nil)

// New constructs a Client. The API token is looked up through secrets on every
// call so rotated credentials are picked up without a restart.
func New(httpClient *http.Client, secrets credentials.Provider, opts Options) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		httpClient: httpClient,
		secrets:    secrets,
		opts:       opts.withDefaults(),
	}
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return strings.TrimRight(c.opts.BaseURL, "/") + "/" + strings.TrimLeft(c.opts.Model, "/")
}

// Extract sends the truncated résumé text to the model and parses the profile
// out of the generated text. The request and the parsing are retried together
// according to the configured policy.
func (c *Client) Extract(ctx context.Context, text string) (domain.Profile, error) {
	if c.secrets == nil {
		return domain.Profile{}, extractor.MissingCredential(nil)
	}
	token, err := c.secrets.Secret(ctx, c.opts.Account)
	if err != nil || token == "" {
		return domain.Profile{}, extractor.MissingCredential(err)
	}

	prompt := extractor.Prompt(extractor.Truncate(text, c.opts.MaxInputChars))

	policy := c.opts.Retry
	policy.OnRetry = func(attempt int, err error) {
		logger.Warn(ctx, "extraction attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("model", c.opts.Model),
			zap.Error(err))
	}

	var profile domain.Profile
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		generated, err := c.generate(ctx, token, prompt)
		if err != nil {
			return err
		}
		profile, err = extractor.ParseGenerated(generated)

		return err
	})
	if err != nil {
		return domain.Profile{}, extractor.Failed(err)
	}

	return profile, nil
}

type generateReq struct {
	Inputs     string         `json:"inputs"`
	Parameters generateParams `json:"parameters"`
	Options    generateOpts   `json:"options"`
}

type generateParams struct {
	MaxNewTokens   int  `json:"max_new_tokens"`
	ReturnFullText bool `json:"return_full_text"`
}

type generateOpts struct {
	WaitForModel bool `json:"wait_for_model"`
}

// generate performs one inference request and returns the generated text.
func (c *Client) generate(ctx context.Context, token, prompt string) (string, error) {
	body, err := json.Marshal(generateReq{
		Inputs:     prompt,
		Parameters: generateParams{MaxNewTokens: c.opts.MaxNewTokens, ReturnFullText: false},
		Options:    generateOpts{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("could not marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("could not read response body: %w", err)
	}
	if err := statusError(resp.StatusCode, b); err != nil {
		return "", err
	}

	return GeneratedText(b)
}

// statusError classifies non-2xx responses.
func statusError(status int, body []byte) error {
	detail := strings.TrimSpace(string(body))
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusServiceUnavailable:
		return serrors.With(serrors.ErrUnavailable, "model warming up: %s", detail)
	case status == http.StatusUnauthorized:
		return serrors.With(serrors.ErrUnauthorized, "credential invalid: %s", detail)
	case status == http.StatusTooManyRequests:
		return serrors.With(serrors.ErrRateLimited, "rate limited: %s", detail)
	case status >= 500:
		return serrors.With(serrors.ErrUnavailable, "inference endpoint error %d: %s", status, detail)
	default:
		return serrors.With(serrors.ErrBadRequest, "inference request rejected with %d: %s", status, detail)
	}
}

// GeneratedText reads the generated_text field from an inference response,
// which is either an object or a list whose first element is that object.
func GeneratedText(body []byte) (string, error) {
	d := jx.DecodeBytes(body)

	var (
		text  string
		found bool
	)
	readObj := func(d *jx.Decoder) error {
		return d.Obj(func(d *jx.Decoder, key string) error {
			if key != "generated_text" || found {
				return d.Skip()
			}
			s, err := d.Str()
			if err != nil {
				return err
			}
			text, found = s, true

			return nil
		})
	}

	var err error
	switch d.Next() {
	case jx.Array:
		err = d.Arr(func(d *jx.Decoder) error {
			if found || d.Next() != jx.Object {
				return d.Skip()
			}

			return readObj(d)
		})
	case jx.Object:
		err = readObj(d)
	default:
		err = fmt.Errorf("unexpected response type %v", d.Next())
	}
	if err != nil {
		return "", serrors.Wrap(extractor.ErrMalformed, err, "could not decode inference response")
	}
	if !found {
		return "", serrors.With(extractor.ErrMalformed, "inference response has no generated_text")
	}

	return text, nil
}
