package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/diffgen/internal/basegen"
	"github.com/AndreyAkinshin/diffgen/internal/config"
	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/node"
)

const overflow = "overflow"

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG",
		Short: "Check a configuration and show the size of its base set",
		Args:  exactArgs(1, "diffgen validate CONFIG"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(args[0])
		},
	}
}

func (a *app) runValidate(path string) error {
	cfg, warnings, err := config.LoadAndValidate(path)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}

	rows := make([][]string, len(cfg.Params))
	for i, p := range cfg.Params {
		count := overflow
		if c, ok := node.Count(p); ok {
			count = strconv.FormatUint(c, 10)
		}
		rows[i] = []string{strconv.Itoa(i), p.String(), count}
	}

	a.out.ValidationSuccess("%s: configuration for %s is valid", path, cfg.FuncName)
	a.out.Section("Parameters")
	a.out.Table([]string{"#", "TYPE", "EXHAUSTIVE"}, rows)

	b := basegen.New(cfg.Params, basegen.Options{NumRandom: cfg.NumRandom, MaxExhaustive: cfg.MaxExhaustive})
	total, ok := b.ExhaustiveCount()

	a.out.Section("Base Set")
	switch {
	case !ok:
		a.out.SummaryFailed("exhaustive", overflow)
	case cfg.MaxExhaustive > 0 && total > cfg.MaxExhaustive:
		a.out.SummaryFailed("exhaustive", strconv.FormatUint(total, 10)+" (limit "+strconv.FormatUint(cfg.MaxExhaustive, 10)+")")
	default:
		a.out.SummaryPassed("exhaustive", strconv.FormatUint(total, 10))
	}
	a.out.SummaryItem("random", strconv.Itoa(cfg.NumRandom))
	a.out.SummaryItem("timeout", cfg.Timeout.String())

	if !ok || (cfg.MaxExhaustive > 0 && total > cfg.MaxExhaustive) {
		a.out.Hint("narrow the exhaustive domains or raise \"max exhaustive\"")
		return errors.Generation(node.ErrTooLarge, "exhaustive base set exceeds \"max exhaustive\"")
	}
	return nil
}
