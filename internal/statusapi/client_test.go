package statusapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newAPIServer(t *testing.T, stats, connections string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mytunnel status API"))
	})
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stats))
	})
	mux.HandleFunc("/connections", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(connections))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestStats_FullResponse(t *testing.T) {
	srv := newAPIServer(t,
		`{"connections_total":5,"connections_active":2,"connections_failed":1,"bytes_received":1048576,"bytes_sent":2048,"streams_opened":9,"streams_closed":7,"errors_total":0}`,
		`{"count":0,"connections":[]}`)

	stats, err := New(srv.URL).Stats()
	if err != nil {
		t.Fatalf("Stats() returned error: %v", err)
	}
	if stats.ConnectionsTotal != 5 || stats.ConnectionsActive != 2 || stats.ConnectionsFailed != 1 {
		t.Errorf("unexpected connection counters: %+v", stats)
	}
	if stats.BytesReceived != 1048576 || stats.BytesSent != 2048 {
		t.Errorf("unexpected byte counters: %+v", stats)
	}
}

func TestStats_MissingFieldsDefaultToZero(t *testing.T) {
	srv := newAPIServer(t, `{"connections_active":3}`, `{}`)

	stats, err := New(srv.URL).Stats()
	if err != nil {
		t.Fatalf("Stats() returned error: %v", err)
	}
	if stats.ConnectionsActive != 3 {
		t.Errorf("ConnectionsActive = %d, want 3", stats.ConnectionsActive)
	}
	if stats.ConnectionsTotal != 0 || stats.BytesSent != 0 {
		t.Errorf("missing fields must default to zero: %+v", stats)
	}
}

func TestConnections_Records(t *testing.T) {
	srv := newAPIServer(t, `{}`,
		`{"count":2,"connections":[
			{"id":"abcdef1234567890","client_addr":"10.0.0.5:52310","duration_secs":125.4,"bytes_rx":1024,"bytes_tx":4096,"active_streams":3},
			{"id":"fedcba0987654321","client_addr":"10.0.0.6:52311"}
		]}`)

	count, conns, err := New(srv.URL).Connections()
	if err != nil {
		t.Fatalf("Connections() returned error: %v", err)
	}
	if count != 2 || len(conns) != 2 {
		t.Fatalf("count=%d len=%d, want 2/2", count, len(conns))
	}
	if conns[0].ID != "abcdef1234567890" || conns[0].DurationSecs != 125.4 || conns[0].ActiveStreams != 3 {
		t.Errorf("unexpected first record: %+v", conns[0])
	}
	// Missing numeric fields default to zero, missing strings to empty.
	if conns[1].BytesRx != 0 || conns[1].DurationSecs != 0 {
		t.Errorf("missing fields must default to zero: %+v", conns[1])
	}
}

func TestConnections_EmptyList(t *testing.T) {
	srv := newAPIServer(t, `{}`, `{"count":0,"connections":[]}`)

	count, conns, err := New(srv.URL).Connections()
	if err != nil {
		t.Fatalf("Connections() returned error: %v", err)
	}
	if count != 0 || len(conns) != 0 {
		t.Errorf("count=%d len=%d, want 0/0", count, len(conns))
	}
}

func TestAvailable_AnyResponseCounts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	if err := New(srv.URL).Available(); err != nil {
		t.Errorf("a 404 still proves the API is up, got %v", err)
	}
}

func TestAvailable_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := New(srv.URL).Available()
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
