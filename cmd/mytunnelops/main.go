package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"mytunnel_ops/internal/diag"
	"mytunnel_ops/internal/lifecycle"
	"mytunnel_ops/internal/monitor"
	"mytunnel_ops/internal/proc"
	"mytunnel_ops/internal/proxycheck"
	"mytunnel_ops/internal/shared/config"
	"mytunnel_ops/internal/shared/logger"
	"mytunnel_ops/internal/shared/types"
	"mytunnel_ops/internal/statusapi"
)

const version = "0.3.1"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type appEnv struct {
	configPath string
	opsPath    string
	ops        *config.OpsConf
}

func newRootCmd() *cobra.Command {
	env := &appEnv{ops: config.DefaultOps()}

	root := &cobra.Command{
		Use:           "mytunnelops",
		Short:         "Operational tooling for the mytunnel QUIC tunnel client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadOps(env.ops, env.opsPath); err != nil {
				return fmt.Errorf("failed to load %s: %w", env.opsPath, err)
			}
			return logger.Init(env.ops.LogConf.Level)
		},
	}
	root.PersistentFlags().StringVar(&env.configPath, "config", "client-config.toml", "path to the client configuration file")
	root.PersistentFlags().StringVar(&env.opsPath, "ops", "ops.ini", "path to the tool's own settings file")

	root.AddCommand(
		newTestCmd(env),
		newStageCmd(env, "test-dns", "Test DNS resolution of the server address", func(o *diag.Orchestrator) types.TestOutcome { return o.DNS() }),
		newStageCmd(env, "test-port", "Test TCP reachability of the server port (informational)", func(o *diag.Orchestrator) types.TestOutcome { return o.Port() }),
		newStageCmd(env, "test-tls", "Inspect the TLS certificate the server port presents", func(o *diag.Orchestrator) types.TestOutcome { return o.TLS() }),
		newStageCmd(env, "test-quic", "Run the client's QUIC handshake self-test", func(o *diag.Orchestrator) types.TestOutcome { return o.QUIC() }),
		newTestProxyCmd(env),
		newDiagnoseCmd(env),
		newUsersCmd(env),
		newMonitorCmd(env),
		newServiceCmd(env, "start", "Start the tunnel client service"),
		newServiceCmd(env, "stop", "Stop the tunnel client service"),
		newServiceCmd(env, "restart", "Restart the tunnel client service"),
		newServiceCmd(env, "status", "Show tunnel client service status"),
		newLogsCmd(env),
		newVersionCmd(),
	)
	return root
}

func (e *appEnv) orchestrator() (*diag.Orchestrator, error) {
	client, err := config.LoadClient(e.configPath)
	if err != nil {
		return nil, err
	}
	return diag.New(client, e.ops, e.configPath, os.Stdout), nil
}

func (e *appEnv) service() *lifecycle.Service {
	return &lifecycle.Service{Name: e.ops.ClientConf.Service, LogFile: e.ops.ClientConf.LogFile, Out: os.Stdout}
}

func (e *appEnv) monitor() *monitor.Monitor {
	refresh := time.Duration(e.ops.MonitorConf.RefreshSecs) * time.Second
	if refresh <= 0 {
		refresh = 2 * time.Second
	}
	return monitor.New(statusapi.New(e.ops.APIConf.BaseURL), os.Stdout, refresh, version)
}

func newTestCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Run the full connectivity test suite",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := env.orchestrator()
			if err != nil {
				return err
			}
			if o.RunSuite().Verdict() != types.Pass {
				return fmt.Errorf("connectivity test suite failed")
			}
			return nil
		},
	}
}

func newStageCmd(env *appEnv, use, short string, stage func(*diag.Orchestrator) types.TestOutcome) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := env.orchestrator()
			if err != nil {
				return err
			}
			outcome := stage(o)
			o.PrintOutcome(outcome)
			if outcome.Result != types.Pass {
				return fmt.Errorf("%s test failed", outcome.Name)
			}
			return nil
		},
	}
}

func newTestProxyCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "test-proxy",
		Short: "Verify the local proxy endpoints forward traffic end-to-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := config.LoadClient(env.configPath)
			if err != nil {
				return err
			}
			tester := proxycheck.New(proc.NewExecSupervisor(),
				env.ops.ProbeConf.URL, env.ops.ClientConf.Binary, env.configPath, os.Stdout)
			return tester.Run(client.Endpoints())
		},
	}
}

func newDiagnoseCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "diagnose",
		Short: "Run the full suite, the proxy test, and a status API check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := config.LoadClient(env.configPath)
			if err != nil {
				return err
			}
			failures := 0

			o := diag.New(client, env.ops, env.configPath, os.Stdout)
			if o.RunSuite().Verdict() != types.Pass {
				failures++
			}

			fmt.Println("\nProxy functional test")
			tester := proxycheck.New(proc.NewExecSupervisor(),
				env.ops.ProbeConf.URL, env.ops.ClientConf.Binary, env.configPath, os.Stdout)
			if err := tester.Run(client.Endpoints()); err != nil {
				fmt.Printf("[FAIL] %v\n", err)
				failures++
			}

			fmt.Println("\nStatus API")
			if err := statusapi.New(env.ops.APIConf.BaseURL).Available(); err != nil {
				fmt.Printf("[FAIL] %v\n", err)
				failures++
			} else {
				fmt.Printf("[PASS] status API reachable at %s\n", env.ops.APIConf.BaseURL)
			}

			if failures > 0 {
				return fmt.Errorf("diagnosis found %d failing area(s)", failures)
			}
			fmt.Println("\nAll diagnostics passed")
			return nil
		},
	}
}

func newUsersCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Show currently connected users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.monitor().Users()
		},
	}
}

func newMonitorCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Live view of server state, refreshed until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return env.monitor().Run(ctx)
		},
	}
}

func newServiceCmd(env *appEnv, verb, short string) *cobra.Command {
	return &cobra.Command{
		Use:   verb,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.service().Control(verb)
		},
	}
}

func newLogsCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "logs [lines]",
		Short: "Show the last lines of the client service log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lines := 50
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid line count %q", args[0])
				}
				lines = n
			}
			return env.service().Logs(lines)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tool version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("mytunnelops v" + version)
		},
	}
}
