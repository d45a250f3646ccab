package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// State of a managed process. Legal transitions:
// starting -> ready -> stopped, starting -> failed, starting -> timed_out.
type State string

const (
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateFailed   State = "failed"
	StateTimedOut State = "timed_out"
	StateStopped  State = "stopped"
)

// Command is a process spawn specification.
type Command struct {
	Path string
	Args []string
}

// ManagedProcess is a background process whose lifecycle is owned by the
// component that spawned it. It must reach a terminal state before that
// component returns.
type ManagedProcess struct {
	PID     int
	LogPath string
	State   State
}

// Supervisor spawns, checks, and terminates background processes. Tests
// substitute a fake so no real process is touched.
type Supervisor interface {
	Start(cmd Command, logPath string) (*ManagedProcess, error)
	Alive(pid int) bool
	Terminate(pid int) error
}

// ExecSupervisor runs real OS processes, detached into their own session,
// with stdout and stderr appended to a log file.
type ExecSupervisor struct {
	// Grace is how long Terminate waits after SIGTERM before SIGKILL.
	Grace time.Duration
}

func NewExecSupervisor() *ExecSupervisor {
	return &ExecSupervisor{Grace: 5 * time.Second}
}

func (s *ExecSupervisor) Start(spec Command, logPath string) (*ManagedProcess, error) {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open process log %s: %w", logPath, err)
	}
	defer logFile.Close()

	cmd := exec.Command(spec.Path, spec.Args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", spec.Path, err)
	}

	// Reap the child when it exits so Alive sees the death immediately.
	go func() { _ = cmd.Wait() }()

	return &ManagedProcess{PID: cmd.Process.Pid, LogPath: logPath, State: StateStarting}, nil
}

// Alive reports whether pid exists, via a null signal.
func (s *ExecSupervisor) Alive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// Terminate sends SIGTERM, waits up to Grace for the process to exit, then
// escalates to SIGKILL and waits again. It never blocks indefinitely.
func (s *ExecSupervisor) Terminate(pid int) error {
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		return fmt.Errorf("failed to signal pid %d: %w", pid, err)
	}
	if s.awaitExit(pid, s.Grace) {
		return nil
	}
	_ = unix.Kill(pid, unix.SIGKILL)
	if s.awaitExit(pid, 2*time.Second) {
		return nil
	}
	return fmt.Errorf("pid %d did not exit after SIGKILL", pid)
}

func (s *ExecSupervisor) awaitExit(pid int, limit time.Duration) bool {
	deadline := time.Now().Add(limit)
	for time.Now().Before(deadline) {
		if !s.Alive(pid) {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return !s.Alive(pid)
}
