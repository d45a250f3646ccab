package types

// ServerStats mirrors the status API's GET /stats response. Fields absent
// from the response decode to zero rather than failing.
type ServerStats struct {
	ConnectionsTotal  uint64 `json:"connections_total"`
	ConnectionsActive uint64 `json:"connections_active"`
	ConnectionsFailed uint64 `json:"connections_failed"`
	BytesReceived     uint64 `json:"bytes_received"`
	BytesSent         uint64 `json:"bytes_sent"`
	StreamsOpened     uint64 `json:"streams_opened"`
	StreamsClosed     uint64 `json:"streams_closed"`
	ErrorsTotal       uint64 `json:"errors_total"`
}

// ConnectionRecord is one entry of the status API's GET /connections list.
// Records are rebuilt from scratch on every poll and never cached.
type ConnectionRecord struct {
	ID            string  `json:"id"`
	ClientAddr    string  `json:"client_addr"`
	DurationSecs  float64 `json:"duration_secs"`
	BytesRx       uint64  `json:"bytes_rx"`
	BytesTx       uint64  `json:"bytes_tx"`
	ActiveStreams uint64  `json:"active_streams"`
}
