// Package cli provides the diffgen command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/output"
	"github.com/AndreyAkinshin/diffgen/internal/target"
	"github.com/AndreyAkinshin/diffgen/internal/version"
)

// app holds state shared by the commands of one invocation.
type app struct {
	out    *output.Writer
	logger *zap.Logger

	quiet   bool
	verbose bool

	// newLogger builds the logger once flags are parsed.
	newLogger func(level zapcore.Level) (*zap.Logger, error)
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, args, output.New(), productionLogger)
}

// RunWithWriters executes the CLI writing to the given streams, without color.
// Logs are discarded.
func RunWithWriters(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return run(ctx, args, output.NewWithWriters(stdout, stderr, false), func(zapcore.Level) (*zap.Logger, error) {
		return zap.NewNop(), nil
	})
}

func run(ctx context.Context, args []string, out *output.Writer, newLogger func(zapcore.Level) (*zap.Logger, error)) int {
	a := &app{out: out, logger: zap.NewNop(), newLogger: newLogger}
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(out.Out())

	err := root.ExecuteContext(ctx)
	_ = a.logger.Sync()
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return errors.GetExitCode(err)
	}
	return errors.ExitSuccess
}

// productionLogger builds a JSON logger on stderr.
func productionLogger(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("version", version.Current())), nil
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "diffgen",
		Short: "Generate a concise differential test set",
		Long: `diffgen runs a reference implementation and a directory of candidate
implementations of the same function over generated inputs, then selects
a small set of inputs that still tells every distinguishable candidate
apart from the reference.`,
		Version:       version.Current(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out.SetQuiet(a.quiet)
			level := zapcore.WarnLevel
			switch {
			case a.verbose:
				level = zapcore.DebugLevel
			case a.quiet:
				level = zapcore.ErrorLevel
			}
			logger, err := a.newLogger(level)
			if err != nil {
				return errors.Wrap(err, "cannot set up logging")
			}
			a.logger = logger
			return nil
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Config(err.Error())
	})
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Only print the report and errors")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.MarkFlagsMutuallyExclusive("quiet", "verbose")

	root.AddCommand(a.generateCmd(), a.validateCmd(), a.versionCmd(), a.invokeCmd())
	return root
}

// exactArgs is cobra.ExactArgs with a configuration error kind.
func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.Configf("expected %d arguments, got %d (usage: %s)", n, len(args), usage)
		}
		return nil
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the diffgen version",
		Args:  exactArgs(0, "diffgen version"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.out.Println("%s", version.Describe())
			return nil
		},
	}
}

// invokeCmd hosts one Go invocation in this process. GoTarget starts it.
func (a *app) invokeCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:    target.InvokeCommand + " PATH FNAME",
		Hidden: true,
		Args:   exactArgs(2, "diffgen "+target.InvokeCommand+" [--check] PATH FNAME"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return target.ServeGo(args[0], args[1], check, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Only load the implementation")
	return cmd
}
