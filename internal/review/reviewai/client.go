// Package reviewai calls the external review model service and shields the
// pipeline from its failure modes. Transport failures surface as errors;
// malformed model output never does, it degrades to an empty issue list with
// a manual-review recommendation.
package reviewai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/pkg/errors"
	"github.com/docuflow/docuflow-backend/pkg/logger"
)

const serviceName = "review-ai"

// textReviewPrompt instructs the model to review extracted document text.
const textReviewPrompt = `You are a technical documentation reviewer. Find spelling, grammar, formatting and consistency problems in the provided text. Respond with JSON only: {"issues": [{"type", "severity", "location", "original_text", "suggested_fix", "explanation", "confidence", "category"}], "recommendations": [], "overall_quality_score": 0-100}. Severity is high, medium or low. Category is basic or advanced. Confidence is 0-100.`

// visionReviewPrompt instructs the model to review page images directly.
const visionReviewPrompt = `You are a technical documentation reviewer. The attached images are document pages. Find spelling, grammar, formatting and layout problems visible on the pages. Respond with JSON only: {"issues": [{"type", "severity", "location", "original_text", "suggested_fix", "explanation", "confidence", "category"}], "recommendations": [], "overall_quality_score": 0-100}. Severity is high, medium or low. Category is basic or advanced. Confidence is 0-100.`

// Result is the parsed outcome of one review call.
type Result struct {
	Issues          []domain.RawIssue `json:"issues"`
	Recommendations []string          `json:"recommendations"`
	QualityScore    int               `json:"quality_score"`
}

// Client talks to the review model service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a review client for the given service URL. Model
// inference is slow; pass a generous timeout.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithComponent("reviewai"),
	}
}

// ReviewText submits extracted text for review.
func (c *Client) ReviewText(ctx context.Context, text string) (*Result, error) {
	return c.review(ctx, reviewRequest{
		SystemPrompt: textReviewPrompt,
		UserText:     text,
	})
}

// ReviewImages submits PNG-encoded page images for direct vision review.
func (c *Client) ReviewImages(ctx context.Context, images [][]byte) (*Result, error) {
	encoded := make([]string, len(images))
	for i, img := range images {
		encoded[i] = base64.StdEncoding.EncodeToString(img)
	}
	return c.review(ctx, reviewRequest{
		SystemPrompt: visionReviewPrompt,
		Images:       encoded,
	})
}

type reviewRequest struct {
	SystemPrompt string   `json:"system_prompt"`
	UserText     string   `json:"user_text,omitempty"`
	Images       []string `json:"images,omitempty"`
}

func (c *Client) review(ctx context.Context, reqBody reviewRequest) (*Result, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, errors.Internal("marshal review request: " + err.Error())
	}

	url := c.baseURL + "/api/v1/review"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.ExternalService(serviceName, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalService(serviceName, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalService(serviceName, fmt.Errorf("read response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ExternalService(serviceName, fmt.Errorf("service returned %d: %s", resp.StatusCode, string(body)))
	}

	return c.parseResult(body), nil
}
