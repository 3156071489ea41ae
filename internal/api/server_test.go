package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Swordfish189/github-events-tracker/internal/metrics"
)

type stubEngine struct {
	result map[string]map[string]float64
	err    error
}

func (s *stubEngine) Stats(context.Context) (map[string]map[string]float64, error) {
	return s.result, s.err
}

func newTestServer(eng StatsProvider) *Server {
	return &Server{
		engine:  eng,
		stats:   metrics.NewStore(),
		repos:   []string{"o/r"},
		version: "test",
		started: time.Now().UTC(),
	}
}

func TestStatsEndpoint(t *testing.T) {
	eng := &stubEngine{result: map[string]map[string]float64{
		"o/r": {"PushEvent": 300.0},
	}}
	srv := httptest.NewServer(newTestServer(eng).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["o/r"]["PushEvent"] != 300.0 {
		t.Fatalf("got %v", got)
	}
}

func TestStatsEndpointEmptyResult(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&stubEngine{result: map[string]map[string]float64{}}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	// No data is a valid empty map, not an error.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestStatsEndpointStoreError(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&stubEngine{err: errors.New("read failed")}).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestStatsEndpointMethodNotAllowed(t *testing.T) {
	srv := httptest.NewServer(newTestServer(&stubEngine{}).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/stats", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(&stubEngine{})
	s.stats.CycleDone()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var got statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Cycles != 1 {
		t.Fatalf("status = %+v", got)
	}
	if len(got.Repositories) != 1 || got.Repositories[0] != "o/r" {
		t.Fatalf("repositories = %v", got.Repositories)
	}
}
