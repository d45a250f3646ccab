package proc

import (
	"net"
	"time"

	"mytunnel_ops/internal/shared/types"
)

// PollOutcome is the terminal result of a readiness-polling loop.
type PollOutcome string

const (
	PollReady         PollOutcome = "ready"
	PollProcessExited PollOutcome = "process_exited"
	PollTimedOut      PollOutcome = "timed_out"
)

// Poller probes TCP reachability of target addresses under a bounded retry
// policy. The same loop serves both "is something already listening"
// (MaxAttempts=1) and "wait for a fresh process to come up" (MaxAttempts=6).
type Poller struct {
	// Dial defaults to net.DialTimeout; tests inject a fake.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)
	// Sleep defaults to time.Sleep; tests inject a no-op.
	Sleep func(d time.Duration)
}

func NewPoller() *Poller {
	return &Poller{Dial: net.DialTimeout, Sleep: time.Sleep}
}

// Poll probes until any address accepts a TCP connection, the optional alive
// check reports the watched process gone, or the attempt budget runs out.
func (p *Poller) Poll(addrs []string, policy types.RetryPolicy, alive func() bool) PollOutcome {
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if alive != nil && !alive() {
			return PollProcessExited
		}
		for _, addr := range addrs {
			conn, err := p.Dial("tcp", addr, policy.PerAttemptTimeout)
			if err == nil {
				conn.Close()
				return PollReady
			}
		}
		if attempt < policy.MaxAttempts {
			p.Sleep(policy.Interval)
		}
	}
	return PollTimedOut
}
