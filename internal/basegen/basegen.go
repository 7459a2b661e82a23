// Package basegen builds the base test set: the exhaustive cross product of every
// parameter's values, followed by independently drawn random test cases.
package basegen

import (
	"context"
	"fmt"
	"iter"
	"math/bits"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AndreyAkinshin/diffgen/internal/errors"
	"github.com/AndreyAkinshin/diffgen/internal/node"
	"github.com/AndreyAkinshin/diffgen/internal/tests"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// randomRetryFactor bounds redraws of random test cases that repeat an already
// collected input: n requested cases allow n*(randomRetryFactor+1) draws.
const randomRetryFactor = 10

// seedStream is the second PCG word; the configured seed is the first.
const seedStream = 0x9e3779b97f4a7c15

// Options configures a Builder.
type Options struct {
	NumRandom int
	Seed      uint64

	// MaxExhaustive caps the number of exhaustive test cases. Zero means no cap.
	MaxExhaustive uint64

	Logger *zap.Logger
}

// Builder produces the base test set for one parameter list. Parameter nodes
// are read-only, so a Builder may be used concurrently.
type Builder struct {
	params []node.Node
	opts   Options
	logger *zap.Logger
}

// New creates a builder for the given parameters.
func New(params []node.Node, opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{params: params, opts: opts, logger: logger}
}

// Validate checks every parameter tree.
func (b *Builder) Validate() error {
	for i, p := range b.params {
		if err := node.Validate(p); err != nil {
			return errors.Generation(err, fmt.Sprintf("parameter %d", i))
		}
	}
	return nil
}

// ExhaustiveCount returns the size of the exhaustive partition, the product of
// the per-parameter exhaustive counts. ok is false on overflow.
func (b *Builder) ExhaustiveCount() (n uint64, ok bool) {
	n = 1
	for _, p := range b.params {
		c, ok := node.Count(p)
		if !ok {
			return 0, false
		}
		hi, lo := bits.Mul64(n, c)
		if hi != 0 {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// Build returns the exhaustive test cases followed by the random ones. The
// result is duplicate-free by input tuple.
func (b *Builder) Build(ctx context.Context) ([]*tests.TestCase, error) {
	cases, err := b.Exhaustive(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(cases)+b.opts.NumRandom)
	for _, tc := range cases {
		seen[tc.Key()] = struct{}{}
	}

	random, err := b.Random(seen)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("built base test set",
		zap.Int("exhaustive", len(cases)),
		zap.Int("random", len(random)))
	return append(cases, random...), nil
}

// Exhaustive returns every combination of the parameters' exhaustive values, in
// odometer order with the last parameter varying fastest.
func (b *Builder) Exhaustive(ctx context.Context) ([]*tests.TestCase, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	total, ok := b.ExhaustiveCount()
	if !ok {
		return nil, errors.Generation(node.ErrTooLarge, "exhaustive base set size overflows")
	}
	if limit := b.opts.MaxExhaustive; limit > 0 && total > limit {
		return nil, errors.Generation(
			fmt.Errorf("%w: %d test cases, limit %d", node.ErrTooLarge, total, limit),
			"exhaustive base set")
	}

	if total == 0 {
		b.logger.Warn("exhaustive domain is empty; only random test cases will be used")
		return nil, nil
	}

	sets, err := b.parameterSets(ctx)
	if err != nil {
		return nil, err
	}

	cases := make([]*tests.TestCase, 0, total)
	for inputs := range CrossProduct(sets) {
		if len(cases)%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		cases = append(cases, tests.NewTestCase(inputs...))
	}
	return cases, nil
}

// parameterSets materializes each parameter's exhaustive value set, one
// goroutine per parameter.
func (b *Builder) parameterSets(ctx context.Context) ([][]value.Value, error) {
	sets := make([][]value.Value, len(b.params))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range b.params {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vs, err := node.Exhaustive(p, b.opts.MaxExhaustive)
			if err != nil {
				return errors.Generation(err, fmt.Sprintf("parameter %d", i))
			}
			sets[i] = vs
			b.logger.Debug("enumerated parameter",
				zap.Int("index", i),
				zap.String("type", p.String()),
				zap.Int("values", len(vs)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

// Random draws up to NumRandom test cases whose inputs are not already in seen,
// and adds their keys to it. Draws that repeat a known input are retried within
// a bounded budget; when the budget runs out fewer cases are returned.
func (b *Builder) Random(seen map[string]struct{}) ([]*tests.TestCase, error) {
	n := b.opts.NumRandom
	if n <= 0 {
		return nil, nil
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if seen == nil {
		seen = make(map[string]struct{}, n)
	}

	r := rand.New(rand.NewPCG(b.opts.Seed, seedStream))
	out := make([]*tests.TestCase, 0, n)
	draws := 0
	for budget := n * (randomRetryFactor + 1); len(out) < n && draws < budget; draws++ {
		inputs := make([]value.Value, len(b.params))
		for i, p := range b.params {
			v, err := node.Random(p, r)
			if err != nil {
				return nil, errors.Generation(err, fmt.Sprintf("parameter %d", i))
			}
			inputs[i] = v
		}
		tc := tests.NewTestCase(inputs...)
		key := tc.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tc)
	}

	if len(out) < n {
		b.logger.Warn("random domain exhausted before reaching the requested count",
			zap.Int("requested", n),
			zap.Int("drawn", len(out)),
			zap.Int("attempts", draws))
	}
	return out, nil
}

// CrossProduct yields every tuple taking one value from each set, with the last
// set varying fastest. A zero-length sets argument yields one empty tuple; an
// empty set yields nothing. Each yielded slice is freshly allocated.
func CrossProduct(sets [][]value.Value) iter.Seq[[]value.Value] {
	return func(yield func([]value.Value) bool) {
		for _, s := range sets {
			if len(s) == 0 {
				return
			}
		}
		idx := make([]int, len(sets))
		for {
			tuple := make([]value.Value, len(sets))
			for i, j := range idx {
				tuple[i] = sets[i][j]
			}
			if !yield(tuple) {
				return
			}
			pos := len(sets) - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < len(sets[pos]) {
					break
				}
				idx[pos] = 0
				pos--
			}
			if pos < 0 {
				return
			}
		}
	}
}
