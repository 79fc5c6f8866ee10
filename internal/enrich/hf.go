package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"intelcore/internal/resilience/circuitbreaker"
	"intelcore/internal/resilience/retry"

	"github.com/sony/gobreaker"
)

// hfBaseURL is the hub inference endpoint; with UseEndpoints the model
// identifier is already a full URL.
const hfBaseURL = "https://api-inference.huggingface.co/models/"

// HFClient calls the Hugging Face Inference API with credential rotation,
// retry on transient failures and a shared circuit breaker. Auth rejections
// fail fast with the error preserved.
type HFClient struct {
	client         *http.Client
	pool           *TokenPool
	useEndpoints   bool
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter
}

// NewHFClient creates an inference client over the given credential pool.
// A nil http client falls back to the default client; timeouts are enforced
// per task via context.
func NewHFClient(client *http.Client, pool *TokenPool, useEndpoints bool) *HFClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HFClient{
		client:         client,
		pool:           pool,
		useEndpoints:   useEndpoints,
		circuitBreaker: circuitbreaker.New(circuitbreaker.HFInferenceConfig()),
		retryConfig:    retry.InferenceConfig(),
		// Sequential enrichment already bounds throughput; the limiter is a
		// backstop against bursty parallel callers.
		limiter: rate.NewLimiter(rate.Limit(8), 8),
	}
}

// Call posts the payload to the model and returns the raw JSON response.
// Each attempt takes the next credential from the pool, so consecutive
// retries walk the pool in order.
func (c *HFClient) Call(ctx context.Context, model string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal inference payload: %w", err)
	}

	var result json.RawMessage
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		cbResult, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doCall(ctx, model, body)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("hf inference circuit breaker open, request rejected",
					slog.String("service", "hf-inference"),
					slog.String("model", model),
					slog.String("state", c.circuitBreaker.State().String()))
				return err
			}
			return err
		}
		result = cbResult.(json.RawMessage)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}
	return result, nil
}

// doCall performs a single inference attempt.
func (c *HFClient) doCall(ctx context.Context, model string, body []byte) (json.RawMessage, error) {
	url := model
	if !c.useEndpoints {
		url = hfBaseURL + model
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.pool.Next(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Debug("close inference response body", slog.Any("error", cerr))
		}
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("inference %s: %s", model, truncate(string(respBody), 200)),
		}
	}

	return json.RawMessage(respBody), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "..."
}
