package monitor

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"mytunnel_ops/internal/shared"
	"mytunnel_ops/internal/shared/types"
	"mytunnel_ops/internal/statusapi"
)

// Monitor renders server state fetched from the status API, either once
// (Users) or in a continuously refreshing loop (Run).
type Monitor struct {
	API     *statusapi.Client
	Out     io.Writer
	Refresh time.Duration
	Version string

	// now is swappable for deterministic header timestamps in tests.
	now func() time.Time
}

func New(api *statusapi.Client, out io.Writer, refresh time.Duration, version string) *Monitor {
	return &Monitor{API: api, Out: out, Refresh: refresh, Version: version, now: time.Now}
}

// Users renders a one-shot view of the connected users.
func (m *Monitor) Users() error {
	if err := m.API.Available(); err != nil {
		return err
	}
	return m.renderOnce()
}

// Run refreshes the view until ctx is cancelled. The loop holds no file
// handles and spawns no processes, so cancellation is simply "stop looping".
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.API.Available(); err != nil {
		return err
	}
	for {
		fmt.Fprint(m.Out, "\033[2J\033[H")
		if err := m.renderOnce(); err != nil {
			fmt.Fprintf(m.Out, "refresh failed: %v\n", err)
		}
		fmt.Fprintln(m.Out, "\nPress Ctrl+C to exit")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(m.Refresh):
		}
	}
}

func (m *Monitor) renderOnce() error {
	stats, err := m.API.Stats()
	if err != nil {
		return err
	}
	count, conns, err := m.API.Connections()
	if err != nil {
		return err
	}

	fmt.Fprintf(m.Out, "mytunnel server monitor v%s  %s\n\n", m.Version, m.now().Format("2006-01-02 15:04:05"))
	m.renderStats(stats)
	m.renderTable(count, conns)
	return nil
}

func (m *Monitor) renderStats(stats *types.ServerStats) {
	fmt.Fprintf(m.Out, "Total Connections:  %d\n", stats.ConnectionsTotal)
	fmt.Fprintf(m.Out, "Active Connections: %d\n", stats.ConnectionsActive)
	fmt.Fprintf(m.Out, "Failed Connections: %d\n", stats.ConnectionsFailed)
	fmt.Fprintf(m.Out, "Bytes Received:     %s\n", shared.FormatBytes(stats.BytesReceived))
	fmt.Fprintf(m.Out, "Bytes Sent:         %s\n", shared.FormatBytes(stats.BytesSent))
	fmt.Fprintf(m.Out, "Streams:            %d opened / %d closed\n", stats.StreamsOpened, stats.StreamsClosed)
	fmt.Fprintf(m.Out, "Errors:             %d\n\n", stats.ErrorsTotal)
}

func (m *Monitor) renderTable(count int, conns []types.ConnectionRecord) {
	if count == 0 {
		fmt.Fprintln(m.Out, "No users connected")
		return
	}

	w := tabwriter.NewWriter(m.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLIENT\tDURATION\tRECEIVED\tSENT\tSTREAMS")
	for _, c := range conns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
			shortID(c.ID),
			c.ClientAddr,
			shared.FormatDuration(c.DurationSecs),
			shared.FormatBytes(c.BytesRx),
			shared.FormatBytes(c.BytesTx),
			c.ActiveStreams)
	}
	w.Flush()
	fmt.Fprintf(m.Out, "\n%d user(s) connected\n", count)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
