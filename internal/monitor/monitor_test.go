package monitor

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mytunnel_ops/internal/statusapi"
)

func newMonitorWithAPI(t *testing.T, stats, connections string) (*Monitor, *bytes.Buffer) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(stats)) })
	mux.HandleFunc("/connections", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte(connections)) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	out := &bytes.Buffer{}
	m := New(statusapi.New(srv.URL), out, 2*time.Second, "0.0.0-test")
	m.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return m, out
}

func TestUsers_NoUsersPlaceholder(t *testing.T) {
	m, out := newMonitorWithAPI(t,
		`{"connections_total":0,"connections_active":0}`,
		`{"count":0,"connections":[]}`)

	if err := m.Users(); err != nil {
		t.Fatalf("Users() returned error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "No users connected") {
		t.Errorf("expected the no-users placeholder, output:\n%s", text)
	}
	if strings.Contains(text, "CLIENT") {
		t.Errorf("no table header should render for an empty list, output:\n%s", text)
	}
}

func TestUsers_RendersStatsVerbatim(t *testing.T) {
	m, out := newMonitorWithAPI(t,
		`{"connections_total":5,"connections_active":2,"connections_failed":1,"bytes_received":1073741824,"bytes_sent":1024}`,
		`{"count":1,"connections":[{"id":"abcdef1234567890","client_addr":"10.0.0.5:52310","duration_secs":125,"bytes_rx":1024,"bytes_tx":1048576,"active_streams":2}]}`)

	if err := m.Users(); err != nil {
		t.Fatalf("Users() returned error: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Active Connections: 2") {
		t.Errorf("active count must render verbatim, output:\n%s", text)
	}
	if !strings.Contains(text, "1.00GB") || !strings.Contains(text, "1.00KB") {
		t.Errorf("byte counters must be humanized, output:\n%s", text)
	}
	if !strings.Contains(text, "abcdef12") || strings.Contains(text, "abcdef1234567890") {
		t.Errorf("connection id must be shortened to 8 chars, output:\n%s", text)
	}
	if !strings.Contains(text, "2m5s") {
		t.Errorf("duration must be humanized, output:\n%s", text)
	}
}

func TestUsers_APIUnavailableFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	out := &bytes.Buffer{}
	m := New(statusapi.New(srv.URL), out, time.Second, "0.0.0-test")

	err := m.Users()
	if !errors.Is(err, statusapi.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should render before the availability check passes, output:\n%s", out.String())
	}
}
