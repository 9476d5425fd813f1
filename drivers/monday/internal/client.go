package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/datazip-inc/tap-monday/types"
	"github.com/datazip-inc/tap-monday/utils/logger"
)

// error codes monday.com reports inside a 200 response
var (
	retryableCodes = []string{
		"ComplexityException",
		"COMPLEXITY_BUDGET_EXHAUSTED",
		"RATE_LIMIT_EXCEEDED",
		"Rate Limit Exceeded",
		"maxConcurrencyExceeded",
		"FIELD_MINUTE_RATE_LIMIT_EXCEEDED",
		"IP_RATE_LIMIT_EXCEEDED",
		"INTERNAL_SERVER_ERROR",
	}
	authCodes = []string{
		"UserUnauthorizedException",
		"USER_UNAUTHORIZED",
		"Unauthorized",
		"NotAuthenticated",
	}
	cursorCodes = []string{
		"CursorExpiredError",
		"CURSOR_EXPIRED",
		"InvalidCursorException",
	}
)

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
	// legacy error envelope
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

// Client posts GraphQL operations to monday.com, pacing them with a token
// bucket and retrying transient failures with exponential backoff
type Client struct {
	url        string
	token      string
	apiVersion string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	initial    time.Duration
}

func NewClient(config *Config) *Client {
	return &Client{
		url:        config.APIURL,
		token:      config.APIToken,
		apiVersion: config.APIVersion,
		httpClient: &http.Client{Timeout: config.requestTimeout()},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		maxRetries: config.MaxRetries,
		initial:    config.backoffInitial(),
	}
}

// Execute runs query and decodes its data into out
func (c *Client) Execute(ctx context.Context, query *Query, variables map[string]any, out any) error {
	if err := query.CheckVariables(variables); err != nil {
		return err
	}
	body, err := json.Marshal(graphQLRequest{Query: query.Text, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode query %s: %s", query.Name, err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initial
	policy.MaxElapsedTime = 0
	hinted := &retryAfterBackOff{BackOff: backoff.WithMaxRetries(policy, uint64(c.maxRetries))}
	bo := backoff.WithContext(hinted, ctx)

	attempt := 0
	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := c.do(ctx, body, out)
		if err == nil {
			return nil
		}
		var transient *types.TransientUpstreamError
		if !errors.As(err, &transient) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		hinted.hint = transient.RetryAfter
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warnf("query %s failed on attempt %d, retrying in %s: %s", query.Name, attempt, wait, err)
	}

	if err := backoff.RetryNotify(operation, bo, notify); err != nil {
		if types.IsRetryable(err) {
			return fmt.Errorf("query %s failed after %d attempts: %w", query.Name, attempt, err)
		}
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Content-Type", "application/json")
	if c.apiVersion != "" {
		req.Header.Set("API-Version", c.apiVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &types.TransientUpstreamError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.TransientUpstreamError{StatusCode: resp.StatusCode, Err: err}
	}

	if err := classifyStatus(resp, payload); err != nil {
		return err
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return &types.UpstreamError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed response: %s", err)}
	}
	if err := classifyGraphQLErrors(&decoded); err != nil {
		return err
	}

	if out == nil || len(decoded.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(decoded.Data, out); err != nil {
		return &types.UpstreamError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("unexpected data shape: %s", err)}
	}
	return nil
}

func classifyStatus(resp *http.Response, payload []byte) error {
	status := resp.StatusCode
	message := strings.TrimSpace(string(payload))
	switch {
	case status < 400:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &types.AuthenticationError{StatusCode: status, Message: message}
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return &types.TransientUpstreamError{
			StatusCode: status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("%s: %s", http.StatusText(status), message),
		}
	default:
		return &types.UpstreamError{StatusCode: status, Message: message}
	}
}

func classifyGraphQLErrors(resp *graphQLResponse) error {
	if resp.ErrorCode != "" || resp.ErrorMessage != "" {
		return classifyCode(resp.ErrorCode, resp.ErrorMessage, 0)
	}
	if len(resp.Errors) == 0 {
		return nil
	}

	first := resp.Errors[0]
	code, _ := first.Extensions["code"].(string)
	var retryIn time.Duration
	if seconds, ok := first.Extensions["retry_in_seconds"].(float64); ok {
		retryIn = time.Duration(seconds * float64(time.Second))
	}
	return classifyCode(code, first.Message, retryIn)
}

func classifyCode(code, message string, retryIn time.Duration) error {
	matches := func(codes []string) bool {
		for _, one := range codes {
			if strings.EqualFold(code, one) {
				return true
			}
		}
		return false
	}

	switch {
	case matches(authCodes):
		return &types.AuthenticationError{Message: message}
	case matches(cursorCodes), strings.Contains(strings.ToLower(message), "cursor") && strings.Contains(strings.ToLower(message), "expired"):
		return fmt.Errorf("%w: %s", types.ErrInvalidPageToken, message)
	case matches(retryableCodes):
		return &types.TransientUpstreamError{RetryAfter: retryIn, Err: fmt.Errorf("%s: %s", code, message)}
	default:
		return &types.UpstreamError{Message: strings.TrimSpace(code + " " + message)}
	}
}

// parseRetryAfter reads delay-seconds or an HTTP date
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if wait := time.Until(at); wait > 0 {
			return wait
		}
	}
	return 0
}

// retryAfterBackOff waits at least as long as upstream asked for
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	hint := b.hint
	b.hint = 0
	if next == backoff.Stop || hint <= next {
		return next
	}
	return hint
}
