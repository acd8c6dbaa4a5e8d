package server

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tripvoice/go-tripvoice/internal/config"
	"github.com/tripvoice/go-tripvoice/pkg/logstore"
	"github.com/tripvoice/go-tripvoice/pkg/tools"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	store := logstore.New(10)
	store.Event("TOOL_EVENT", "test entry", nil)

	registry := tools.NewRegistry()
	if err := tools.NewSuite(store, time.Hour).RegisterAll(registry); err != nil {
		t.Fatal(err)
	}
	return New(config.Config{HTTPPort: "0"}, store, registry)
}

func TestPing(t *testing.T) {
	s := testServer(t)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/ping", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "pong") {
		t.Errorf("body = %s", body)
	}
}

func TestLogsEndpoint(t *testing.T) {
	s := testServer(t)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/api/logs", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"count":1`) {
		t.Errorf("body = %s", body)
	}
	if !strings.Contains(string(body), "test entry") {
		t.Errorf("entry missing from body: %s", body)
	}
}

func TestListenRequiresUpgrade(t *testing.T) {
	s := testServer(t)

	resp, err := s.app.Test(httptest.NewRequest("GET", "/listen", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 426 {
		t.Errorf("plain GET on /listen: status = %d, want 426", resp.StatusCode)
	}
}
