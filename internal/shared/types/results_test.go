package types

import "testing"

func TestVerdict_RequiredOnly(t *testing.T) {
	cases := []struct {
		name     string
		outcomes []TestOutcome
		want     Result
	}{
		{
			name: "all required pass",
			outcomes: []TestOutcome{
				{Name: "dns", Kind: Required, Result: Pass},
				{Name: "quic", Kind: Required, Result: Pass},
			},
			want: Pass,
		},
		{
			name: "one required fails",
			outcomes: []TestOutcome{
				{Name: "dns", Kind: Required, Result: Fail},
				{Name: "quic", Kind: Required, Result: Pass},
			},
			want: Fail,
		},
		{
			name: "optional failures never change the verdict",
			outcomes: []TestOutcome{
				{Name: "dns", Kind: Required, Result: Pass},
				{Name: "port", Kind: Optional, Result: Fail},
				{Name: "tls", Kind: Optional, Result: Fail},
				{Name: "quic", Kind: Required, Result: Pass},
			},
			want: Pass,
		},
		{
			name: "optional passes cannot rescue a required failure",
			outcomes: []TestOutcome{
				{Name: "dns", Kind: Required, Result: Fail},
				{Name: "port", Kind: Optional, Result: Pass},
				{Name: "tls", Kind: Optional, Result: Pass},
			},
			want: Fail,
		},
		{
			name:     "empty report passes vacuously",
			outcomes: nil,
			want:     Pass,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			report := &SuiteReport{}
			for _, o := range c.outcomes {
				report.Add(o)
			}
			if got := report.Verdict(); got != c.want {
				t.Errorf("Verdict() = %v, want %v", got, c.want)
			}
		})
	}
}

func TestCounts(t *testing.T) {
	report := &SuiteReport{}
	report.Add(TestOutcome{Name: "dns", Kind: Required, Result: Pass})
	report.Add(TestOutcome{Name: "port", Kind: Optional, Result: Fail})
	report.Add(TestOutcome{Name: "tls", Kind: Optional, Result: Pass})
	report.Add(TestOutcome{Name: "quic", Kind: Required, Result: Fail})

	reqRun, reqPass, optRun, optPass := report.Counts()
	if reqRun != 2 || reqPass != 1 || optRun != 2 || optPass != 1 {
		t.Errorf("Counts() = (%d, %d, %d, %d), want (2, 1, 2, 1)", reqRun, reqPass, optRun, optPass)
	}
}
