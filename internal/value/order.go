package value

import (
	"cmp"
	"math"
	"strings"
)

// Compare defines a total order over values that is consistent with Equal:
// Compare(a, b) == 0 iff Equal(a, b). Values of different kinds order by kind;
// NaN sorts before every other float.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindInt:
		return cmp.Compare(a.i, b.i)
	case KindFloat:
		an, bn := math.IsNaN(a.f), math.IsNaN(b.f)
		switch {
		case an && bn:
			return 0
		case an:
			return -1
		case bn:
			return 1
		}
		return cmp.Compare(a.f, b.f)
	case KindString, KindOpaque:
		return strings.Compare(a.s, b.s)
	case KindNone:
		return 0
	}
	n := min(len(a.elems), len(b.elems))
	for i := 0; i < n; i++ {
		if c := Compare(a.elems[i], b.elems[i]); c != 0 {
			return c
		}
		if a.kind == KindDict {
			if c := Compare(a.vals[i], b.vals[i]); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(a.elems), len(b.elems))
}
