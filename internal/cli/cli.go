package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/specialistvlad/vrpbench/internal/app"
	"github.com/spf13/cobra"
)

// Exit codes returned through ExitError.
const (
	ExitUsage  = 2
	ExitStrict = 3
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// commonFlags are shared by every subcommand.
type commonFlags struct {
	logFormat string
	logLevel  string
}

func (c *commonFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	cmd.Flags().StringVar(&c.logLevel, "log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
}

func (c *commonFlags) apply(cfg *app.Config) {
	cfg.LogFormat = strings.ToLower(c.logFormat)
	cfg.LogLevel = strings.ToLower(c.logLevel)
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly (help was shown),
// or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	var parsed *app.Config
	accept := func(cfg app.Config) error {
		c, err := app.NewConfig(cfg)
		if err != nil {
			return err
		}
		parsed = c
		return nil
	}

	root := &cobra.Command{
		Use:   "vrpbench",
		Short: "vrpbench - benchmark a VRP solver over a parameter sweep and an instance corpus.",
		Long: `vrpbench runs a solver executable once per (parameter combination, instance)
pair, decodes the solver's block-structured output, and aggregates the final
solutions into one results table per combination.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)
	root.AddCommand(runCommand(accept), decodeCommand(accept), compareCommand(accept))

	if err := root.Execute(); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if parsed == nil {
		return nil, true, nil
	}
	return parsed, false, nil
}

func runCommand(accept func(app.Config) error) *cobra.Command {
	var (
		cfg    app.Config
		common commonFlags
	)
	cmd := &cobra.Command{
		Use:   "run [SWEEP_FILE...]",
		Short: "Run the solver over every combination and instance",
		Long: `Run the solver over every combination and instance.

SWEEP_FILE is an .hcl or .yaml sweep file, or a directory of .hcl files.
Flags override the values read from sweep files.`,
		Example: `  vrpbench run sweep.hcl
  vrpbench run --solver ./bin/method-4 --corpus inputs --output results --param 'retries={1,3}'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = app.CommandRun
			cfg.ConfigPaths = args
			common.apply(&cfg)
			return accept(cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Solver, "solver", "", "Path to the solver executable.")
	f.StringVar(&cfg.Corpus, "corpus", "", "Root directory of the instance corpus.")
	f.StringVar(&cfg.Extension, "ext", "", "Instance file extension (default \".vrp\").")
	f.StringVarP(&cfg.OutputRoot, "output", "o", "", "Output root directory.")
	f.StringArrayVarP(&cfg.Params, "param", "p", nil, "Sweep parameter as name=candidates, e.g. 'retries={1,3}'. Repeatable.")
	f.DurationVar(&cfg.Timeout, "timeout", 0, "Timeout of a single solver invocation. 0 means none.")
	f.IntVarP(&cfg.Workers, "workers", "w", 0, "Number of concurrent solver invocations (default 1).")
	f.Float64Var(&cfg.LaunchRate, "launch-rate", 0, "Maximum solver launches per second. 0 means unlimited.")
	f.BoolVar(&cfg.Snapshots, "snapshots", false, "Write JSON scenes and a cost chart next to every result.")
	f.StringVar(&cfg.LiveURL, "live-url", "", "socket.io server that receives live scenes.")
	f.StringVar(&cfg.LiveNamespace, "live-namespace", "", "socket.io namespace for live scenes (default \"/\").")
	f.StringVar(&cfg.LedgerPath, "ledger", "", "sqlite file recording every run and work item outcome.")
	f.BoolVar(&cfg.Strict, "strict", false, "Exit non-zero when any work item failed.")
	f.IntVar(&cfg.HealthcheckPort, "healthcheck-port", 0, "Port for the /health and /metrics server. 0 is disabled.")
	common.bind(cmd)
	return cmd
}

func decodeCommand(accept func(app.Config) error) *cobra.Command {
	var (
		cfg    app.Config
		common commonFlags
	)
	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode one captured solver output offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = app.CommandDecode
			common.apply(&cfg)
			return accept(cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Instance, "instance", "", "Instance file the capture was produced from.")
	f.StringVar(&cfg.Capture, "capture", "", "Captured standard output (.exe_sol).")
	f.StringVar(&cfg.DecodeOut, "out", "", "Directory for decoded artifacts (default: the capture's directory).")
	f.BoolVar(&cfg.Snapshots, "snapshots", false, "Write JSON scenes and a cost chart.")
	_ = cmd.MarkFlagRequired("instance")
	_ = cmd.MarkFlagRequired("capture")
	common.bind(cmd)
	return cmd
}

func compareCommand(accept func(app.Config) error) *cobra.Command {
	var (
		cfg    app.Config
		common commonFlags
	)
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Rebuild the cost comparison table of an output root",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = app.CommandCompare
			common.apply(&cfg)
			return accept(cfg)
		},
	}
	cmd.Flags().StringVarP(&cfg.OutputRoot, "output", "o", "", "Output root holding one directory per combination.")
	_ = cmd.MarkFlagRequired("output")
	common.bind(cmd)
	return cmd
}

// IsStrictFailure reports whether err is a strict sweep's failure verdict.
func IsStrictFailure(err error) bool {
	return errors.Is(err, app.ErrWorkItemsFailed)
}
