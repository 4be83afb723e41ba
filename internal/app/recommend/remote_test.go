package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRemoteScorerRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Query != "intramural soccer" {
			t.Errorf("unexpected query: %q", req.Query)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []Candidate{
				{ID: "abc", Name: "Soccer Club", Score: 0.91},
				{Name: "Intramural Sports Council", Score: 0.72},
			},
		})
	}))
	defer srv.Close()

	scorer := NewRemoteScorer(srv.URL)
	got, err := scorer.Score(context.Background(), Request{Query: "intramural soccer"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(got) != 2 || got[0].ID != "abc" || got[1].Name != "Intramural Sports Council" {
		t.Errorf("unexpected results: %v", got)
	}
}

func TestRemoteScorerNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scorer := NewRemoteScorer(srv.URL)
	if _, err := scorer.Score(context.Background(), Request{Query: "anything"}); err == nil {
		t.Error("expected error for non-200 response")
	}
}

func TestRemoteScorerUnreachable(t *testing.T) {
	scorer := NewRemoteScorer("http://127.0.0.1:1")
	if _, err := scorer.Score(context.Background(), Request{Query: "anything"}); err == nil {
		t.Error("expected error for unreachable service")
	}
}

func TestRemoteScorerMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	scorer := NewRemoteScorer(srv.URL)
	if _, err := scorer.Score(context.Background(), Request{Query: "anything"}); err == nil {
		t.Error("expected error for malformed response body")
	}
}
