package types

import "time"

// Requiredness tags a diagnostic stage as suite-affecting or informational.
type Requiredness string

const (
	Required Requiredness = "required"
	Optional Requiredness = "optional"
)

// Result is the outcome of a single diagnostic stage.
type Result string

const (
	Pass Result = "pass"
	Fail Result = "fail"
)

// TestOutcome records one completed diagnostic stage. It is immutable once
// produced; stages create it, the report only aggregates it.
type TestOutcome struct {
	Name   string
	Kind   Requiredness
	Result Result
	Detail string
}

// SuiteReport is the ordered collection of stage outcomes for one suite run.
type SuiteReport struct {
	Outcomes []TestOutcome
}

func (r *SuiteReport) Add(o TestOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Counts returns (requiredRun, requiredPassed, optionalRun, optionalPassed).
func (r *SuiteReport) Counts() (int, int, int, int) {
	var reqRun, reqPass, optRun, optPass int
	for _, o := range r.Outcomes {
		if o.Kind == Required {
			reqRun++
			if o.Result == Pass {
				reqPass++
			}
		} else {
			optRun++
			if o.Result == Pass {
				optPass++
			}
		}
	}
	return reqRun, reqPass, optRun, optPass
}

// Verdict is Pass iff every required outcome passed. Optional outcomes are
// reported but never change the verdict.
func (r *SuiteReport) Verdict() Result {
	for _, o := range r.Outcomes {
		if o.Kind == Required && o.Result != Pass {
			return Fail
		}
	}
	return Pass
}

// ProxyKind identifies a local proxy endpoint protocol.
type ProxyKind string

const (
	ProxySOCKS5 ProxyKind = "socks5"
	ProxyHTTP   ProxyKind = "http"
)

// ProxyEndpoint is a read-only view of one configured local proxy listener.
type ProxyEndpoint struct {
	Kind     ProxyKind
	BindAddr string
	Enabled  bool
}

// RetryPolicy bounds a readiness-polling loop: at most MaxAttempts probes,
// each limited to PerAttemptTimeout, separated by Interval.
type RetryPolicy struct {
	MaxAttempts       int
	Interval          time.Duration
	PerAttemptTimeout time.Duration
}
