package node

import (
	"fmt"
	"math/rand/v2"

	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// retryFactor bounds the extra draws spent filling a set or dict: a target size of
// k allows k*retryFactor draws before the undersized result is accepted.
const retryFactor = 10

// Random draws one value from n's random domain. Lengths, sizes and scalar values
// are chosen uniformly from the domain entries; children are drawn recursively.
//
// Sets and dicts redraw duplicate elements (keys) until the target size is met or
// the retry budget is spent, then keep what they have.
func Random(n Node, r *rand.Rand) (value.Value, error) {
	switch n := n.(type) {
	case *BoolNode:
		b, err := choice(n.Random, r)
		return value.Bool(b), err
	case *IntNode:
		i, err := choice(n.Random, r)
		return value.Int(i), err
	case *FloatNode:
		f, err := choice(n.Random, r)
		return value.Float(f), err
	case *StringNode:
		size, err := choice(n.Random, r)
		if err != nil {
			return value.Value{}, err
		}
		if size > 0 && len(n.Alphabet) == 0 {
			return value.Value{}, fmt.Errorf("%s: empty alphabet", n)
		}
		buf := make([]rune, size)
		for i := range buf {
			buf[i] = n.Alphabet[r.IntN(len(n.Alphabet))]
		}
		return value.Str(string(buf)), nil
	case *ListNode:
		elems, err := randomSeq(n.Elem, n.Random, r)
		if err != nil {
			return value.Value{}, err
		}
		return value.List(elems...), nil
	case *TupleNode:
		elems, err := randomSeq(n.Elem, n.Random, r)
		if err != nil {
			return value.Value{}, err
		}
		return value.Tuple(elems...), nil
	case *SetNode:
		size, err := choice(n.Random, r)
		if err != nil {
			return value.Value{}, err
		}
		elems, err := randomDistinct(n.Elem, size, r)
		if err != nil {
			return value.Value{}, err
		}
		return value.Set(elems...), nil
	case *DictNode:
		size, err := choice(n.Random, r)
		if err != nil {
			return value.Value{}, err
		}
		keys, err := randomDistinct(n.Key, size, r)
		if err != nil {
			return value.Value{}, err
		}
		pairs := make([]value.Pair, len(keys))
		for i, k := range keys {
			v, err := Random(n.Val, r)
			if err != nil {
				return value.Value{}, err
			}
			pairs[i] = value.Pair{Key: k, Val: v}
		}
		return value.Dict(pairs...)
	}
	return value.Value{}, fmt.Errorf("unsupported node %T", n)
}

func randomSeq(elem Node, lengths []int, r *rand.Rand) ([]value.Value, error) {
	size, err := choice(lengths, r)
	if err != nil {
		return nil, err
	}
	elems := make([]value.Value, size)
	for i := range elems {
		if elems[i], err = Random(elem, r); err != nil {
			return nil, err
		}
	}
	return elems, nil
}

func randomDistinct(elem Node, size int, r *rand.Rand) ([]value.Value, error) {
	seen := make(map[string]struct{}, size)
	out := make([]value.Value, 0, size)
	for attempts := 0; len(out) < size && attempts < size*(retryFactor+1); attempts++ {
		v, err := Random(elem, r)
		if err != nil {
			return nil, err
		}
		key := v.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

func choice[T any](domain []T, r *rand.Rand) (T, error) {
	var zero T
	if len(domain) == 0 {
		return zero, fmt.Errorf("empty random domain")
	}
	return domain[r.IntN(len(domain))], nil
}
