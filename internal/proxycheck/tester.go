package proxycheck

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	xproxy "golang.org/x/net/proxy"

	"mytunnel_ops/internal/proc"
	"mytunnel_ops/internal/shared"
	"mytunnel_ops/internal/shared/logger"
	"mytunnel_ops/internal/shared/types"
)

var (
	// ErrStartTimeout means a spawned client never opened its proxy ports.
	ErrStartTimeout = errors.New("client did not become ready in time")
	// ErrProcessExited means a spawned client died during startup.
	ErrProcessExited = errors.New("client exited during startup")
)

const (
	probeConnectTimeout = 10 * time.Second
	probeOverallTimeout = 20 * time.Second
	startupLogLines     = 50
)

var (
	detectPolicy = types.RetryPolicy{MaxAttempts: 1, PerAttemptTimeout: time.Second}
	readyPolicy  = types.RetryPolicy{MaxAttempts: 6, Interval: time.Second, PerAttemptTimeout: time.Second}
)

// Tester validates that each enabled proxy endpoint actually forwards an
// HTTPS request end-to-end. If no client is running it spawns one for the
// duration of the test and guarantees its termination before returning.
type Tester struct {
	Supervisor proc.Supervisor
	Poller     *proc.Poller
	ProbeURL   string
	ClientBin  string
	ConfigPath string
	Out        io.Writer

	// probe is swappable so tests can avoid real network traffic.
	probe func(ep types.ProxyEndpoint, probeURL string) (int, time.Duration, error)
	log   zerolog.Logger
}

func New(sup proc.Supervisor, probeURL, clientBin, configPath string, out io.Writer) *Tester {
	return &Tester{
		Supervisor: sup,
		Poller:     proc.NewPoller(),
		ProbeURL:   probeURL,
		ClientBin:  clientBin,
		ConfigPath: configPath,
		Out:        out,
		probe:      probeThroughProxy,
		log:        logger.WithComponent("proxycheck"),
	}
}

// Run tests every enabled endpoint. It returns an error if the client could
// not be started or any enabled endpoint failed its request test.
func (t *Tester) Run(endpoints []types.ProxyEndpoint) error {
	var enabled []types.ProxyEndpoint
	var addrs []string
	for _, ep := range endpoints {
		if ep.Enabled {
			enabled = append(enabled, ep)
			addrs = append(addrs, ep.BindAddr)
		}
	}
	if len(enabled) == 0 {
		return fmt.Errorf("no proxy endpoints enabled (set proxy.socks5_enabled or proxy.http_enabled in the client config)")
	}

	spawned, err := t.ensureRunning(addrs)
	if err != nil {
		return err
	}
	if spawned != nil {
		// Cleanup invariant: a process we spawned must not outlive the test,
		// whatever happens below.
		defer func() {
			t.log.Debug().Int("pid", spawned.PID).Msg("terminating spawned client")
			if err := t.Supervisor.Terminate(spawned.PID); err != nil {
				t.log.Warn().Err(err).Int("pid", spawned.PID).Msg("failed to terminate spawned client")
			}
			spawned.State = proc.StateStopped
			os.Remove(spawned.LogPath)
		}()
	}

	failed := 0
	for _, ep := range enabled {
		status, latency, err := t.probe(ep, t.ProbeURL)
		if err != nil {
			failed++
			fmt.Fprintf(t.Out, "[FAIL] %s proxy %s: %v\n", ep.Kind, ep.BindAddr, err)
			continue
		}
		fmt.Fprintf(t.Out, "[PASS] %s proxy %s: HTTP %d in %dms\n", ep.Kind, ep.BindAddr, status, latency.Milliseconds())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d enabled proxy endpoint(s) failed (check the client log, or re-run 'test' for the full suite)", failed, len(enabled))
	}
	fmt.Fprintf(t.Out, "All %d enabled proxy endpoint(s) passed\n", len(enabled))
	return nil
}

// ensureRunning returns the process it spawned, or nil when a proxy was
// already listening on one of the bind addresses.
func (t *Tester) ensureRunning(addrs []string) (*proc.ManagedProcess, error) {
	if t.Poller.Poll(addrs, detectPolicy, nil) == proc.PollReady {
		fmt.Fprintln(t.Out, "Client already running, testing against the live instance")
		return nil, nil
	}

	// Best-effort pre-flight: the bind port may be held by something that is
	// not our proxy. This check and the spawn below are deliberately not
	// atomic; the ports belong to external processes we cannot lock, so the
	// race window stays and the check only warns.
	for _, addr := range addrs {
		if l, err := net.Listen("tcp", addr); err != nil {
			fmt.Fprintf(t.Out, "Warning: %s appears to be in use by another process\n", addr)
		} else {
			l.Close()
		}
	}

	logPath := filepath.Join(os.TempDir(), "mytunnel-test-"+uuid.NewString()+".log")
	mp, err := t.Supervisor.Start(proc.Command{
		Path: t.ClientBin,
		Args: []string{"run", "--config", t.ConfigPath},
	}, logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to start client for testing: %w", err)
	}
	fmt.Fprintf(t.Out, "Started client (pid %d), waiting for proxy ports...\n", mp.PID)

	switch t.Poller.Poll(addrs, readyPolicy, func() bool { return t.Supervisor.Alive(mp.PID) }) {
	case proc.PollReady:
		mp.State = proc.StateReady
		return mp, nil
	case proc.PollProcessExited:
		mp.State = proc.StateFailed
		t.dumpStartupLog(logPath)
		os.Remove(logPath)
		return nil, fmt.Errorf("%w (see log output above)", ErrProcessExited)
	default:
		mp.State = proc.StateTimedOut
		t.dumpStartupLog(logPath)
		// Still alive but not listening; terminate before reporting.
		if err := t.Supervisor.Terminate(mp.PID); err != nil {
			t.log.Warn().Err(err).Int("pid", mp.PID).Msg("failed to terminate stuck client")
		}
		mp.State = proc.StateStopped
		os.Remove(logPath)
		return nil, fmt.Errorf("%w (see log output above)", ErrStartTimeout)
	}
}

func (t *Tester) dumpStartupLog(logPath string) {
	lines, err := shared.TailLines(logPath, startupLogLines)
	if err != nil {
		t.log.Warn().Err(err).Str("log", logPath).Msg("could not read startup log")
		return
	}
	fmt.Fprintf(t.Out, "--- last %d line(s) of client log ---\n", len(lines))
	for _, line := range lines {
		fmt.Fprintln(t.Out, line)
	}
	fmt.Fprintln(t.Out, "--- end of client log ---")
}

// probeThroughProxy issues one HTTPS GET through the endpoint and reports
// status and wall-clock latency. Peer verification is relaxed on purpose:
// this probe asserts reachability, not certificate validity (the TLS suite
// stage audits certificates).
func probeThroughProxy(ep types.ProxyEndpoint, probeURL string) (int, time.Duration, error) {
	transport := &http.Transport{
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
		DisableKeepAlives: true,
	}

	switch ep.Kind {
	case types.ProxySOCKS5:
		dialer, err := xproxy.SOCKS5("tcp", ep.BindAddr, nil, &net.Dialer{Timeout: probeConnectTimeout})
		if err != nil {
			return 0, 0, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	case types.ProxyHTTP:
		transport.Proxy = http.ProxyURL(&url.URL{Scheme: "http", Host: ep.BindAddr})
	default:
		return 0, 0, fmt.Errorf("unknown proxy kind %q", ep.Kind)
	}

	client := &http.Client{Transport: transport, Timeout: probeOverallTimeout}

	start := time.Now()
	resp, err := client.Get(probeURL)
	if err != nil {
		return 0, 0, fmt.Errorf("request through proxy failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	latency := time.Since(start)

	if resp.StatusCode >= 400 {
		return resp.StatusCode, latency, fmt.Errorf("probe URL returned HTTP %d", resp.StatusCode)
	}
	return resp.StatusCode, latency, nil
}
