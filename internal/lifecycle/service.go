package lifecycle

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"mytunnel_ops/internal/shared"
)

// Service is thin glue over systemd for the tunnel client unit. The unit
// itself is installed by the client's own installer, not by this tool.
type Service struct {
	Name    string
	LogFile string
	Out     io.Writer
}

// Control runs one systemctl verb (start, stop, restart, status) against
// the unit and relays its output.
func (s *Service) Control(verb string) error {
	cmd := exec.Command("systemctl", verb, s.Name)
	cmd.Stdout = s.Out
	cmd.Stderr = s.Out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("systemctl %s %s failed: %w (check 'logs' for details)", verb, s.Name, err)
	}
	return nil
}

// Logs prints the last n lines of the service log, preferring the client's
// log file and falling back to journalctl when the file is absent.
func (s *Service) Logs(n int) error {
	lines, err := shared.TailLines(s.LogFile, n)
	if err == nil {
		for _, line := range lines {
			fmt.Fprintln(s.Out, line)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", s.LogFile, err)
	}

	cmd := exec.Command("journalctl", "-u", s.Name, "-n", strconv.Itoa(n), "--no-pager")
	cmd.Stdout = s.Out
	cmd.Stderr = s.Out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("no log file at %s and journalctl failed: %w", s.LogFile, err)
	}
	return nil
}
