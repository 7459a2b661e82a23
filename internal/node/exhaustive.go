package node

import (
	"errors"
	"fmt"
	"iter"
	"math/bits"
	"slices"

	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// ErrTooLarge is returned when an exhaustive domain exceeds the caller's limit.
var ErrTooLarge = errors.New("exhaustive domain too large")

// Count returns the number of values Exhaustive would produce for n. The second
// result is false when the count does not fit in a uint64.
func Count(n Node) (uint64, bool) {
	switch n := n.(type) {
	case *BoolNode:
		return uint64(len(uniqueBools(n.Exhaustive))), true
	case *IntNode:
		return uint64(len(uniqueInts(n.Exhaustive))), true
	case *FloatNode:
		return uint64(len(uniqueFloats(n.Exhaustive))), true
	case *StringNode:
		k := uint64(len(uniqueRunes(n.Alphabet)))
		return sumOver(n.Exhaustive, func(size int) (uint64, bool) { return pow(k, size) })
	case *ListNode:
		return countSeq(n.Elem, n.Exhaustive)
	case *TupleNode:
		return countSeq(n.Elem, n.Exhaustive)
	case *SetNode:
		k, ok := Count(n.Elem)
		if !ok {
			return 0, false
		}
		return sumOver(n.Exhaustive, func(size int) (uint64, bool) { return choose(k, size) })
	case *DictNode:
		kk, ok := Count(n.Key)
		if !ok {
			return 0, false
		}
		kv, ok := Count(n.Val)
		if !ok {
			return 0, false
		}
		return sumOver(n.Exhaustive, func(size int) (uint64, bool) {
			c, ok := choose(kk, size)
			if !ok {
				return 0, false
			}
			p, ok := pow(kv, size)
			if !ok {
				return 0, false
			}
			return mul(c, p)
		})
	}
	return 0, true
}

func countSeq(elem Node, lengths []int) (uint64, bool) {
	k, ok := Count(elem)
	if !ok {
		return 0, false
	}
	return sumOver(lengths, func(size int) (uint64, bool) { return pow(k, size) })
}

// Exhaustive materializes every value representable under n's exhaustive domain,
// without duplicates, in a deterministic order. It fails with ErrTooLarge when
// the count exceeds limit (0 means no limit).
func Exhaustive(n Node, limit uint64) ([]value.Value, error) {
	seq, err := Enumerate(n, limit)
	if err != nil {
		return nil, err
	}
	c, _ := Count(n)
	out := make([]value.Value, 0, c)
	for v := range seq {
		out = append(out, v)
	}
	return out, nil
}

// Enumerate returns a lazy sequence over n's exhaustive values. Child value sets
// are materialized up front (they are indexed repeatedly); the combinations built
// from them are produced one at a time.
//
// Set sizes are exact: a set of declared size k is built from k distinct
// elements, so draws that would collapse to a smaller set are never produced.
func Enumerate(n Node, limit uint64) (iter.Seq[value.Value], error) {
	c, ok := Count(n)
	if !ok || (limit > 0 && c > limit) {
		if !ok {
			return nil, fmt.Errorf("%s: %w (count overflows)", n, ErrTooLarge)
		}
		return nil, fmt.Errorf("%s: %w (%d values, limit %d)", n, ErrTooLarge, c, limit)
	}

	switch n := n.(type) {
	case *BoolNode:
		return scalarSeq(uniqueBools(n.Exhaustive), value.Bool), nil
	case *IntNode:
		return scalarSeq(uniqueInts(n.Exhaustive), value.Int), nil
	case *FloatNode:
		return scalarSeq(uniqueFloats(n.Exhaustive), value.Float), nil
	case *StringNode:
		alphabet := uniqueRunes(n.Alphabet)
		return func(yield func(value.Value) bool) {
			buf := make([]rune, 0)
			for _, size := range uniqueSizes(n.Exhaustive) {
				for idx := range product(len(alphabet), size) {
					buf = buf[:0]
					for _, i := range idx {
						buf = append(buf, alphabet[i])
					}
					if !yield(value.Str(string(buf))) {
						return
					}
				}
			}
		}, nil
	case *ListNode:
		return seqOf(n.Elem, n.Exhaustive, limit, value.List)
	case *TupleNode:
		return seqOf(n.Elem, n.Exhaustive, limit, value.Tuple)
	case *SetNode:
		elems, err := Exhaustive(n.Elem, limit)
		if err != nil {
			return nil, err
		}
		return func(yield func(value.Value) bool) {
			for _, size := range uniqueSizes(n.Exhaustive) {
				for idx := range combinations(len(elems), size) {
					if !yield(value.Set(pick(elems, idx)...)) {
						return
					}
				}
			}
		}, nil
	case *DictNode:
		keys, err := Exhaustive(n.Key, limit)
		if err != nil {
			return nil, err
		}
		vals, err := Exhaustive(n.Val, limit)
		if err != nil {
			return nil, err
		}
		return func(yield func(value.Value) bool) {
			for _, size := range uniqueSizes(n.Exhaustive) {
				for kidx := range combinations(len(keys), size) {
					ks := pick(keys, kidx)
					for vidx := range product(len(vals), size) {
						pairs := make([]value.Pair, size)
						for i := range pairs {
							pairs[i] = value.Pair{Key: ks[i], Val: vals[vidx[i]]}
						}
						if !yield(value.MustDict(pairs...)) {
							return
						}
					}
				}
			}
		}, nil
	}
	return nil, fmt.Errorf("unsupported node %T", n)
}

func scalarSeq[T any](domain []T, wrap func(T) value.Value) iter.Seq[value.Value] {
	return func(yield func(value.Value) bool) {
		for _, d := range domain {
			if !yield(wrap(d)) {
				return
			}
		}
	}
}

func seqOf(elem Node, lengths []int, limit uint64, build func(...value.Value) value.Value) (iter.Seq[value.Value], error) {
	elems, err := Exhaustive(elem, limit)
	if err != nil {
		return nil, err
	}
	return func(yield func(value.Value) bool) {
		for _, size := range uniqueSizes(lengths) {
			for idx := range product(len(elems), size) {
				if !yield(build(pick(elems, idx)...)) {
					return
				}
			}
		}
	}, nil
}

func pick(from []value.Value, idx []int) []value.Value {
	out := make([]value.Value, len(idx))
	for i, j := range idx {
		out[i] = from[j]
	}
	return out
}

// product yields every index vector of length size over [0, k), odometer style
// with the last position varying fastest. The yielded slice is reused.
func product(k, size int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if size > 0 && k == 0 {
			return
		}
		idx := make([]int, size)
		for {
			if !yield(idx) {
				return
			}
			pos := size - 1
			for pos >= 0 {
				idx[pos]++
				if idx[pos] < k {
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

// combinations yields every strictly increasing index vector of length size over
// [0, k) in lexicographic order. The yielded slice is reused.
func combinations(k, size int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if size > k {
			return
		}
		idx := make([]int, size)
		for i := range idx {
			idx[i] = i
		}
		for {
			if !yield(idx) {
				return
			}
			pos := size - 1
			for pos >= 0 && idx[pos] == k-size+pos {
				pos--
			}
			if pos < 0 {
				return
			}
			idx[pos]++
			for i := pos + 1; i < size; i++ {
				idx[i] = idx[i-1] + 1
			}
		}
	}
}

func sumOver(sizes []int, f func(int) (uint64, bool)) (uint64, bool) {
	var total uint64
	for _, s := range uniqueSizes(sizes) {
		c, ok := f(s)
		if !ok {
			return 0, false
		}
		var carry uint64
		total, carry = bits.Add64(total, c, 0)
		if carry != 0 {
			return 0, false
		}
	}
	return total, true
}

func mul(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

func pow(base uint64, exp int) (uint64, bool) {
	result := uint64(1)
	for i := 0; i < exp; i++ {
		var ok bool
		if result, ok = mul(result, base); !ok {
			return 0, false
		}
	}
	return result, true
}

func choose(n uint64, k int) (uint64, bool) {
	if uint64(k) > n {
		return 0, true
	}
	kk := uint64(k)
	if kk > n-kk {
		kk = n - kk
	}
	result := uint64(1)
	for i := uint64(1); i <= kk; i++ {
		hi, lo := bits.Mul64(result, n-kk+i)
		if hi != 0 {
			return 0, false
		}
		result = lo / i
	}
	return result, true
}

func uniqueSizes(d []int) []int { return uniq(d) }

func uniqueInts(d []int64) []int64 { return uniq(d) }
func uniqueBools(d []bool) []bool  { return uniq(d) }
func uniqueRunes(d []rune) []rune  { return uniq(d) }
func uniqueFloats(d []float64) []float64 {
	out := make([]float64, 0, len(d))
	for _, f := range d {
		if !slices.ContainsFunc(out, func(g float64) bool { return value.Equal(value.Float(f), value.Float(g)) }) {
			out = append(out, f)
		}
	}
	return out
}

// uniq drops repeated entries, keeping first occurrences in order.
func uniq[T comparable](d []T) []T {
	seen := make(map[T]struct{}, len(d))
	out := make([]T, 0, len(d))
	for _, x := range d {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}
