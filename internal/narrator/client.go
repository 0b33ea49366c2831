// Package narrator fetches short "why this ranked here" texts for the shown
// localities from an external narration service.
package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/MikeSquared-Agency/Zipfit/internal/metrics"
	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
)

var ErrRateLimited = errors.New("narrator: rate limited")

// Candidate is the slice of a scored locality the narrator needs.
type Candidate struct {
	ZipCode         string             `json:"zip_code"`
	Name            string             `json:"name"`
	AdjustedScore   float64            `json:"adjusted_score"`
	Price           *float64           `json:"price,omitempty"`
	IsStretchBudget bool               `json:"is_stretch_budget"`
	Scores          map[string]float64 `json:"scores"`
}

type NarrationRequest struct {
	RankingID   string              `json:"ranking_id"`
	Preferences scoring.Preferences `json:"preferences"`
	Candidates  []Candidate         `json:"candidates"`
}

// Narrator returns narratives keyed by zip code.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (map[string]string, error)
}

// NewRequest builds a narration request from the shown candidates.
func NewRequest(rankingID string, prefs scoring.Preferences, shown []*scoring.ScoredCandidate) NarrationRequest {
	req := NarrationRequest{
		RankingID:   rankingID,
		Preferences: prefs,
		Candidates:  make([]Candidate, 0, len(shown)),
	}
	for _, c := range shown {
		scores := make(map[string]float64, len(scoring.AllCriteria))
		for _, k := range scoring.AllCriteria {
			scores[string(k)] = c.Score(k)
		}
		req.Candidates = append(req.Candidates, Candidate{
			ZipCode:         c.ZipCode,
			Name:            c.Name,
			AdjustedScore:   c.AdjustedScore,
			Price:           c.Price,
			IsStretchBudget: c.IsStretchBudget,
			Scores:          scores,
		})
	}
	return req
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	metrics    *metrics.Metrics
}

// NewHTTPClient creates a client allowing rps calls per second with the given
// burst. Calls over the limit are skipped rather than queued.
func NewHTTPClient(baseURL string, timeout time.Duration, rps float64, burst int, m *metrics.Metrics) *HTTPClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if burst < 1 {
		burst = 1
	}
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		metrics:    m,
	}
}

type narrateResponse struct {
	Narratives map[string]string `json:"narratives"`
}

func (c *HTTPClient) Narrate(ctx context.Context, req NarrationRequest) (map[string]string, error) {
	if len(req.Candidates) == 0 {
		return map[string]string{}, nil
	}
	if !c.limiter.Allow() {
		c.metrics.ObserveNarration("skipped")
		return nil, ErrRateLimited
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	narratives, err := c.narrate(ctx, req)
	if err != nil {
		c.metrics.ObserveNarration("error")
		return nil, err
	}
	c.metrics.ObserveNarration("ok")
	return narratives, nil
}

func (c *HTTPClient) narrate(ctx context.Context, req NarrationRequest) (map[string]string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("narrator: marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/narrate", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Client-ID", "zipfit")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("narrator: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("narrator: %d %s", resp.StatusCode, string(body))
	}

	var out narrateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("narrator: decode response: %w", err)
	}

	// Drop narratives for zips that were not asked about.
	asked := make(map[string]bool, len(req.Candidates))
	for _, cand := range req.Candidates {
		asked[cand.ZipCode] = true
	}
	narratives := make(map[string]string, len(out.Narratives))
	for zip, text := range out.Narratives {
		if asked[zip] && text != "" {
			narratives[zip] = text
		}
	}
	return narratives, nil
}

// Nop never narrates. It stands in when no narrator URL is configured.
type Nop struct{}

func (Nop) Narrate(context.Context, NarrationRequest) (map[string]string, error) {
	return nil, nil
}
