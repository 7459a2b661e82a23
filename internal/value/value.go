// Package value provides the tagged value model shared by generators, targets and
// the differential tester.
package value

import (
	"fmt"
	"math"
	"sort"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindFloat
	KindString
	KindList
	KindTuple
	KindSet
	KindDict

	// KindNone and KindOpaque only appear in implementation outputs.
	KindNone
	KindOpaque
)

var kindNames = [...]string{
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "str",
	KindList:   "list",
	KindTuple:  "tuple",
	KindSet:    "set",
	KindDict:   "dict",
	KindNone:   "none",
	KindOpaque: "opaque",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a kind name as produced by Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return 0, false
}

// IsCompound reports whether values of this kind own child values.
func (k Kind) IsCompound() bool {
	switch k {
	case KindList, KindTuple, KindSet, KindDict:
		return true
	}
	return false
}

// Value is an immutable generated or observed datum.
//
// The zero Value is the boolean false. Set elements and dict entries are stored in
// canonical order (see Compare), so structural equality does not depend on
// construction order.
type Value struct {
	kind  Kind
	b     bool
	i     int64
	f     float64
	s     string
	elems []Value // list, tuple, set elements; dict keys
	vals  []Value // dict values, parallel to elems
}

// Pair is one dict entry.
type Pair struct {
	Key Value
	Val Value
}

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Str(s string) Value     { return Value{kind: KindString, s: s} }
func None() Value            { return Value{kind: KindNone} }
func Opaque(r string) Value  { return Value{kind: KindOpaque, s: r} }
func List(el ...Value) Value { return Value{kind: KindList, elems: clone(el)} }

func Tuple(el ...Value) Value { return Value{kind: KindTuple, elems: clone(el)} }

// Set builds a set value. Duplicate elements are collapsed.
func Set(el ...Value) Value {
	sorted := clone(el)
	sortValues(sorted)
	out := sorted[:0]
	for i, v := range sorted {
		if i > 0 && Equal(v, out[len(out)-1]) {
			continue
		}
		out = append(out, v)
	}
	return Value{kind: KindSet, elems: out}
}

// Dict builds a dict value. It returns an error when two pairs share a key.
func Dict(pairs ...Pair) (Value, error) {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(a, b int) bool { return Compare(sorted[a].Key, sorted[b].Key) < 0 })

	v := Value{kind: KindDict, elems: make([]Value, 0, len(sorted)), vals: make([]Value, 0, len(sorted))}
	for i, p := range sorted {
		if i > 0 && Equal(p.Key, sorted[i-1].Key) {
			return Value{}, fmt.Errorf("duplicate dict key %s", p.Key)
		}
		v.elems = append(v.elems, p.Key)
		v.vals = append(v.vals, p.Val)
	}
	return v, nil
}

// MustDict is Dict for callers that guarantee unique keys.
func MustDict(pairs ...Pair) Value {
	v, err := Dict(pairs...)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Value) Kind() Kind          { return v.kind }
func (v Value) AsBool() bool        { return v.b }
func (v Value) AsInt() int64        { return v.i }
func (v Value) AsFloat() float64    { return v.f }
func (v Value) AsString() string    { return v.s }
func (v Value) Elems() []Value      { return clone(v.elems) }
func (v Value) Elem(i int) Value    { return v.elems[i] }
func (v Value) DictVal(i int) Value { return v.vals[i] }

// Len returns the number of characters of a string or elements of a compound value.
func (v Value) Len() int {
	if v.kind == KindString {
		return len([]rune(v.s))
	}
	return len(v.elems)
}

// Pairs returns dict entries in canonical key order.
func (v Value) Pairs() []Pair {
	out := make([]Pair, len(v.elems))
	for i := range v.elems {
		out[i] = Pair{Key: v.elems[i], Val: v.vals[i]}
	}
	return out
}

// Lookup returns the dict value stored under key.
func (v Value) Lookup(key Value) (Value, bool) {
	for i, k := range v.elems {
		if Equal(k, key) {
			return v.vals[i], true
		}
	}
	return Value{}, false
}

// Equal reports structural equality: same kind and recursively equal children.
// Float NaNs compare equal to each other so that a value always equals itself.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		if math.IsNaN(a.f) || math.IsNaN(b.f) {
			return math.IsNaN(a.f) && math.IsNaN(b.f)
		}
		return a.f == b.f
	case KindString, KindOpaque:
		return a.s == b.s
	case KindNone:
		return true
	}
	if len(a.elems) != len(b.elems) {
		return false
	}
	for i := range a.elems {
		if !Equal(a.elems[i], b.elems[i]) {
			return false
		}
	}
	for i := range a.vals {
		if !Equal(a.vals[i], b.vals[i]) {
			return false
		}
	}
	return true
}

// Key returns a string that is identical for two values iff they are Equal.
func (v Value) Key() string {
	if v.kind == KindOpaque {
		return "<opaque " + v.s + ">"
	}
	return v.canonical()
}

// TupleKey returns a key for an ordered tuple of values.
func TupleKey(vs []Value) string {
	return Tuple(vs...).Key()
}

func sortValues(vs []Value) {
	sort.SliceStable(vs, func(a, b int) bool { return Compare(vs[a], vs[b]) < 0 })
}

func clone(vs []Value) []Value {
	if len(vs) == 0 {
		return nil
	}
	out := make([]Value, len(vs))
	copy(out, vs)
	return out
}
