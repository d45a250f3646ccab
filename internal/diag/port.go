package diag

import (
	"fmt"
	"net"
	"time"

	"mytunnel_ops/internal/shared/types"
)

const portConnectTimeout = 5 * time.Second

// portStage attempts a raw TCP connect to the server address. The real
// transport is UDP, so this stage is informational only and can never fail
// the suite.
func portStage(address string) types.TestOutcome {
	out := types.TestOutcome{Name: "port", Kind: types.Optional}

	start := time.Now()
	conn, err := net.DialTimeout("tcp", address, portConnectTimeout)
	if err != nil {
		out.Result = types.Fail
		out.Detail = fmt.Sprintf("tcp connect %s failed: %v (informational: the tunnel transport is UDP)", address, err)
		return out
	}
	conn.Close()

	out.Result = types.Pass
	out.Detail = fmt.Sprintf("tcp connect %s succeeded in %dms", address, time.Since(start).Milliseconds())
	return out
}
