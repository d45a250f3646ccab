package diag

import (
	"net"
	"testing"

	"mytunnel_ops/internal/shared/types"
)

func TestPortStage_ReachableListener(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open test listener: %v", err)
	}
	defer l.Close()

	out := portStage(l.Addr().String())
	if out.Result != types.Pass {
		t.Errorf("reachable listener should pass, got %v: %s", out.Result, out.Detail)
	}
	if out.Kind != types.Optional {
		t.Errorf("port stage must be optional, got %v", out.Kind)
	}
}

func TestPortStage_ClosedPort(t *testing.T) {
	// Grab a free port and release it so the connect is refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to open test listener: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	out := portStage(addr)
	if out.Result != types.Fail {
		t.Errorf("closed port should fail, got %v", out.Result)
	}
	if out.Kind != types.Optional {
		t.Errorf("port stage must stay optional on failure, got %v", out.Kind)
	}
}
