package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AndreyAkinshin/diffgen/internal/config"
	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/pipeline"
	"github.com/AndreyAkinshin/diffgen/internal/report"
	"github.com/AndreyAkinshin/diffgen/internal/target"
)

type generateOptions struct {
	format  string
	output  string
	seed    uint64
	timeout time.Duration
	workers int
	python  string
}

func (a *app) generateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate CONFIG CANDIDATES_DIR REFERENCE",
		Short: "Generate the concise test set",
		Long: `Generate loads CONFIG, runs REFERENCE and every implementation in
CANDIDATES_DIR on the generated base test set, and prints the concise
test set that kills every killable candidate.

Implementations are Python (.py) or Go (.go) source files defining the
function named by "fname".`,
		Args: exactArgs(3, "diffgen generate CONFIG CANDIDATES_DIR REFERENCE"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, args[0], args[1], args[2], &opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.format, "format", "f", string(report.FormatText), "Report format: text, json or yaml")
	f.StringVarP(&opts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.Uint64Var(&opts.seed, "seed", 0, "Seed for random draws (overrides the configuration)")
	f.DurationVar(&opts.timeout, "timeout", 0, "Per-invocation timeout (overrides the configuration)")
	f.IntVarP(&opts.workers, "workers", "j", 0, "Parallel invocations (overrides the configuration)")
	f.StringVar(&opts.python, "python", target.DefaultPython, "Python interpreter for .py implementations")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, configPath, candidatesDir, referencePath string, opts *generateOptions) error {
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return errors.Config(err.Error())
	}

	cfg, warnings, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	if err := applyOverrides(cmd, cfg, opts); err != nil {
		return err
	}

	topts := target.Options{FuncName: cfg.FuncName, Python: opts.python}
	reference, err := target.Open(referencePath, topts)
	if err != nil {
		return err
	}
	registry, err := target.Discover(candidatesDir, topts, referencePath)
	if err != nil {
		return err
	}
	if registry.Len() == 0 {
		return errors.Configf("no candidate implementations in %s", candidatesDir)
	}
	candidates := registry.All()

	a.logger.Debug("starting generation",
		zap.String("function", cfg.FuncName),
		zap.String("reference", reference.Name()),
		zap.Int("candidates", len(candidates)),
		zap.Duration("timeout", cfg.Timeout))

	step := 0
	res, err := pipeline.Run(cmd.Context(), cfg, reference, candidates, pipeline.Options{
		Logger: a.logger,
		OnStage: func(s pipeline.Stage) {
			step++
			a.out.Step(step, "%s", stageMessage(s, len(candidates)))
		},
	})
	if err != nil {
		return err
	}
	a.out.StepDetail("%d of %d test cases selected", len(res.Concise.Indices), len(res.Base))

	return writeReport(a, res.Report, format, opts.output)
}

func stageMessage(s pipeline.Stage, candidates int) string {
	switch s {
	case pipeline.StageBuild:
		return "Building base test set"
	case pipeline.StageExpected:
		return "Running reference implementation"
	case pipeline.StageTest:
		return fmt.Sprintf("Running %d candidate implementations", candidates)
	default:
		return "Selecting concise test set"
	}
}

// applyOverrides copies explicitly set flags over the configuration.
func applyOverrides(cmd *cobra.Command, cfg *config.Config, opts *generateOptions) error {
	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed, cfg.HasSeed = opts.seed, true
	}
	if f.Changed("timeout") {
		if opts.timeout <= 0 {
			return errors.Configf("--timeout must be positive, got %s", opts.timeout)
		}
		cfg.Timeout = opts.timeout
	}
	if f.Changed("workers") {
		if opts.workers < 0 || opts.workers > config.MaxWorkers {
			return errors.Configf("--workers must be between 0 and %d, got %d", config.MaxWorkers, opts.workers)
		}
		cfg.Workers = opts.workers
	}
	return nil
}

func writeReport(a *app, r *report.Report, format report.Format, path string) error {
	if path == "" {
		if err := r.Write(a.out.Out(), format); err != nil {
			return errors.Wrap(err, "cannot write report")
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "cannot create report file")
	}
	if err := r.Write(f, format); err != nil {
		f.Close()
		return errors.Wrap(err, "cannot write report")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "cannot write report")
	}
	a.out.Info("report written to %s", path)
	return nil
}
