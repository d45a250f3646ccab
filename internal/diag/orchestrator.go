package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"mytunnel_ops/internal/shared/config"
	"mytunnel_ops/internal/shared/logger"
	"mytunnel_ops/internal/shared/types"
)

// Orchestrator runs the ordered connectivity test suite:
// DNS -> port -> TLS -> QUIC handshake.
type Orchestrator struct {
	client     *config.ClientConfig
	ops        *config.OpsConf
	configPath string
	out        io.Writer
	lookups    []lookupFn
	log        zerolog.Logger
}

func New(client *config.ClientConfig, ops *config.OpsConf, configPath string, out io.Writer) *Orchestrator {
	return &Orchestrator{
		client:     client,
		ops:        ops,
		configPath: configPath,
		out:        out,
		lookups:    defaultLookups(),
		log:        logger.WithComponent("diag"),
	}
}

// DNS runs the required DNS resolution stage.
func (o *Orchestrator) DNS() types.TestOutcome {
	return dnsStage(o.client.ServerHost(), o.lookups)
}

// Port runs the optional TCP reachability stage.
func (o *Orchestrator) Port() types.TestOutcome {
	return portStage(o.client.Server.Address)
}

// TLS runs the optional certificate inspection stage.
func (o *Orchestrator) TLS() types.TestOutcome {
	return tlsStage(o.client.Server.Address, o.client.TLSServerName())
}

// QUIC runs the required handshake self-test stage.
func (o *Orchestrator) QUIC() types.TestOutcome {
	return quicStage(o.ops.ClientConf.Binary, o.configPath)
}

// RunSuite executes all four stages in order, printing each outcome as it
// completes, then the aggregate counts and verdict. The verdict depends only
// on the required stages.
func (o *Orchestrator) RunSuite() *types.SuiteReport {
	fmt.Fprintf(o.out, "Connectivity test suite for %s\n\n", o.client.Server.Address)

	report := &types.SuiteReport{}
	for _, stage := range []func() types.TestOutcome{o.DNS, o.Port, o.TLS, o.QUIC} {
		outcome := stage()
		report.Add(outcome)
		o.log.Debug().Str("stage", outcome.Name).Str("result", string(outcome.Result)).Msg("stage complete")
		o.PrintOutcome(outcome)
	}

	o.printSummary(report)
	return report
}

// PrintOutcome writes one stage result line.
func (o *Orchestrator) PrintOutcome(outcome types.TestOutcome) {
	fmt.Fprintf(o.out, "[%s] %-5s (%s): %s\n",
		strings.ToUpper(string(outcome.Result)), outcome.Name, outcome.Kind, outcome.Detail)
}

func (o *Orchestrator) printSummary(report *types.SuiteReport) {
	reqRun, reqPass, optRun, optPass := report.Counts()
	fmt.Fprintf(o.out, "\nRequired: %d/%d passed  Optional: %d/%d passed\n", reqPass, reqRun, optPass, optRun)
	if report.Verdict() == types.Pass {
		fmt.Fprintln(o.out, "Verdict: connectivity OK")
	} else {
		fmt.Fprintln(o.out, "Verdict: connectivity FAILED (see failed required stages above)")
	}
}
