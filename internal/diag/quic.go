package diag

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"mytunnel_ops/internal/shared/types"
)

const quicTestTimeout = 30 * time.Second

// quicStage delegates to the client binary's own connectivity self-test.
// The QUIC handshake is opaque to this tool; exit code 0 is the authoritative
// signal that the tunnel can actually be established.
func quicStage(binary, configPath string) types.TestOutcome {
	out := types.TestOutcome{Name: "quic", Kind: types.Required}

	path, err := exec.LookPath(binary)
	if err != nil {
		out.Result = types.Fail
		out.Detail = fmt.Sprintf("client binary %q not found in PATH (install it or set client.binary in ops.ini)", binary)
		return out
	}

	ctx, cancel := context.WithTimeout(context.Background(), quicTestTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, path, "test-connection", "--config", configPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		out.Result = types.Fail
		out.Detail = fmt.Sprintf("handshake self-test failed: %v%s (check server.address and that the server is running)", err, lastOutputLine(output))
		return out
	}

	out.Result = types.Pass
	out.Detail = "QUIC handshake self-test succeeded"
	return out
}

func lastOutputLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return ""
	}
	return ", last output: " + last
}
