// Package gemini provides an extractor.Extractor backed by the Gemini API.
// The model is asked for JSON constrained by a response schema, and the result
// goes through the same parser as the other providers.
package gemini

import (
	"context"
	"errors"
	"net/http"
	"referralflow/pkg/credentials"
	"referralflow/pkg/domain"
	"referralflow/pkg/extractor"
	"referralflow/pkg/logger"
	"referralflow/pkg/retry"
	"referralflow/pkg/serrors"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// DefaultModel is used when Options.Model is empty.
	DefaultModel = "gemini-2.0-flash"
	// DefaultAccount is the credential account holding the API key.
	DefaultAccount = "gemini"
)

// Options configures a Client.
type Options struct {
	// Account names the secret holding the API key.
	Account string
	Model   string
	// BaseURL overrides the Gemini API base URL, for proxies and tests.
	BaseURL       string
	MaxInputChars int
	Retry         retry.Policy
	// HTTPClient is handed to the Gemini SDK; nil uses its default.
	HTTPClient *http.Client
}

// Client calls Gemini. The API key is resolved on every call, so a key
// rotated in the secret store is used without a restart. Calls without a key
// fail with a missing-credential extraction error.
type Client struct {
	secrets credentials.Provider
	opts    Options

	mu     sync.Mutex
	apiKey string
	client *genai.Client
}

var _ extractor.Extractor = (*Client)(nil)

var outputSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"candidate_name":      {Type: genai.TypeString},
		"top_skills":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"years_of_experience": {Type: genai.TypeString},
		"positions":           {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"candidate_name", "top_skills", "years_of_experience", "positions"},
}

// New constructs a Client reading its API key from secrets.
func New(secrets credentials.Provider, opts Options) *Client {
	opts.Model = strings.TrimSpace(opts.Model)
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Account == "" {
		opts.Account = DefaultAccount
	}
	if opts.MaxInputChars <= 0 {
		opts.MaxInputChars = extractor.DefaultMaxInputChars
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default(extractor.Retryable)
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = extractor.Retryable
	}

	return &Client{secrets: secrets, opts: opts}
}

// sdk returns a Gemini client for the current API key, rebuilding it when the
// key changed since the last call.
func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	if c.secrets == nil {
		return nil, extractor.MissingCredential(nil)
	}
	key, err := c.secrets.Secret(ctx, c.opts.Account)
	key = strings.TrimSpace(key)
	if err != nil || key == "" {
		return nil, extractor.MissingCredential(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil && c.apiKey == key {
		return c.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.opts.HTTPClient,
	}
	if base := strings.TrimSpace(c.opts.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = base
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, extractor.Failed(serrors.Wrap(serrors.ErrInternal, err, "could not create gemini client"))
	}
	if c.client != nil {
		logger.Info(ctx, "gemini api key changed, client rebuilt")
	}
	c.client, c.apiKey = client, key

	return client, nil
}

// Extract implements extractor.Extractor.
func (c *Client) Extract(ctx context.Context, text string) (domain.Profile, error) {
	client, err := c.sdk(ctx)
	if err != nil {
		return domain.Profile{}, err
	}

	prompt := extractor.Prompt(extractor.Truncate(text, c.opts.MaxInputChars))
	policy := c.opts.Retry
	policy.OnRetry = func(attempt int, err error) {
		logger.Warn(ctx, "gemini extraction attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
	}

	var profile domain.Profile
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		resp, err := client.Models.GenerateContent(ctx, c.opts.Model, genai.Text(prompt), &genai.GenerateContentConfig{
			CandidateCount:   1,
			ResponseMIMEType: "application/json",
			ResponseSchema:   outputSchema,
		})
		if err != nil {
			return classifyErr(err)
		}
		profile, err = extractor.ParseGenerated(resp.Text())

		return err
	})
	if err != nil {
		return domain.Profile{}, extractor.Failed(err)
	}

	return profile, nil
}

// classifyErr maps Gemini API errors onto the shared error kinds. Network
// errors pass through unchanged; extractor.Retryable recognizes them.
func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return serrors.Wrap(serrors.ErrRateLimited, err, "rate limited")
		case apiErr.Code == 503:
			return serrors.Wrap(serrors.ErrUnavailable, err, "model warming up")
		case apiErr.Code/100 == 5:
			return serrors.Wrap(serrors.ErrUnavailable, err, "gemini unavailable")
		case apiErr.Code == 401 || apiErr.Code == 403:
			return serrors.Wrap(serrors.ErrUnauthorized, err, "credential invalid")
		default:
			return serrors.Wrap(serrors.ErrBadRequest, err, "gemini rejected request")
		}
	}

	return err
}
