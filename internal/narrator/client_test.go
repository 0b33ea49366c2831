package narrator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/MikeSquared-Agency/Zipfit/internal/scoring"
)

func float64Ptr(v float64) *float64 { return &v }

func sampleRequest() NarrationRequest {
	shown := []*scoring.ScoredCandidate{
		{ZipCode: "07040", Name: "Maplewood", AdjustedScore: 82.5, Price: float64Ptr(720_000)},
		{ZipCode: "07302", Name: "Jersey City", AdjustedScore: 77, IsStretchBudget: true},
	}
	return NewRequest("r-1", scoring.Preferences{BudgetMax: 700_000}, shown)
}

func TestNewRequest(t *testing.T) {
	req := sampleRequest()
	if len(req.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(req.Candidates))
	}
	if len(req.Candidates[0].Scores) != len(scoring.AllCriteria) {
		t.Errorf("expected a score per criterion, got %d", len(req.Candidates[0].Scores))
	}
	if !req.Candidates[1].IsStretchBudget {
		t.Error("stretch flag should carry over")
	}
}

func TestNarrate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/narrate" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req NarrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req.RankingID != "r-1" || len(req.Candidates) != 2 {
			t.Errorf("unexpected body: %+v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"narratives": map[string]string{
				"07040": "Strong schools inside your budget.",
				"07302": "A short commute if you can stretch.",
				"10001": "Not requested.",
			},
		})
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, time.Second, 10, 1, nil)
	c.limiter = rate.NewLimiter(rate.Inf, 1)

	got, err := c.Narrate(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("Narrate() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 narratives, got %v", got)
	}
	if got["07040"] != "Strong schools inside your budget." {
		t.Errorf("unexpected narrative: %q", got["07040"])
	}
	if _, ok := got["10001"]; ok {
		t.Error("narratives for unrequested zips should be dropped")
	}
}

func TestNarrateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, time.Second, 10, 1, nil)
	_, err := c.Narrate(context.Background(), sampleRequest())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error should carry the status, got %v", err)
	}
}

func TestNarrateTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, 50*time.Millisecond, 10, 1, nil)
	start := time.Now()
	if _, err := c.Narrate(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("timeout not honored, took %s", time.Since(start))
	}
}

func TestNarrateRateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"narratives":{}}`))
	}))
	defer server.Close()

	c := NewHTTPClient(server.URL, time.Second, 0.001, 1, nil)
	if _, err := c.Narrate(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("first call should pass: %v", err)
	}
	if _, err := c.Narrate(context.Background(), sampleRequest()); err != ErrRateLimited {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls)
	}
}

func TestNarrateEmptySkipsCall(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", time.Second, 10, 1, nil)
	got, err := c.Narrate(context.Background(), NarrationRequest{})
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty result, got %v %v", got, err)
	}
}

func TestNop(t *testing.T) {
	var n Narrator = Nop{}
	got, err := n.Narrate(context.Background(), sampleRequest())
	if err != nil || got != nil {
		t.Errorf("Nop should return nothing, got %v %v", got, err)
	}
}
