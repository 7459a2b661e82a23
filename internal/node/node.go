// Package node implements the generator tree: one node type per supported value
// type, each carrying an exhaustive domain and a random domain.
//
// Scalar nodes (bool, int, float) hold candidate values directly. String and
// container nodes hold candidate lengths. Compound nodes own their child nodes;
// DictNode is the only node with two children.
//
// Nodes are built once, with both domains attached at construction, and are
// read-only afterwards, so generation may run concurrently on a shared tree.
package node

import (
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// Node is a generator for values of one type. The set of implementations is
// closed; callers dispatch with a type switch.
type Node interface {
	// Kind is the value kind this node generates.
	Kind() value.Kind
	// String renders the node's type expression, e.g. "dict(int:str(ab))".
	String() string

	sealed()
}

// BoolNode generates booleans. Domains hold the candidate values.
type BoolNode struct {
	Exhaustive []bool
	Random     []bool
}

// IntNode generates integers. Domains hold the candidate values.
type IntNode struct {
	Exhaustive []int64
	Random     []int64
}

// FloatNode generates floats. Domains hold the candidate values.
type FloatNode struct {
	Exhaustive []float64
	Random     []float64
}

// StringNode generates strings over Alphabet. Domains hold candidate lengths.
type StringNode struct {
	Alphabet   []rune
	Exhaustive []int
	Random     []int
}

// ListNode generates lists of Elem values. Domains hold candidate lengths.
type ListNode struct {
	Elem       Node
	Exhaustive []int
	Random     []int
}

// TupleNode generates tuples of Elem values. Domains hold candidate lengths.
type TupleNode struct {
	Elem       Node
	Exhaustive []int
	Random     []int
}

// SetNode generates sets of Elem values. Domains hold candidate sizes.
type SetNode struct {
	Elem       Node
	Exhaustive []int
	Random     []int
}

// DictNode generates dicts with Key keys and Val values. Domains hold candidate sizes.
type DictNode struct {
	Key        Node
	Val        Node
	Exhaustive []int
	Random     []int
}

func (*BoolNode) Kind() value.Kind   { return value.KindBool }
func (*IntNode) Kind() value.Kind    { return value.KindInt }
func (*FloatNode) Kind() value.Kind  { return value.KindFloat }
func (*StringNode) Kind() value.Kind { return value.KindString }
func (*ListNode) Kind() value.Kind   { return value.KindList }
func (*TupleNode) Kind() value.Kind  { return value.KindTuple }
func (*SetNode) Kind() value.Kind    { return value.KindSet }
func (*DictNode) Kind() value.Kind   { return value.KindDict }

func (*BoolNode) sealed()   {}
func (*IntNode) sealed()    {}
func (*FloatNode) sealed()  {}
func (*StringNode) sealed() {}
func (*ListNode) sealed()   {}
func (*TupleNode) sealed()  {}
func (*SetNode) sealed()    {}
func (*DictNode) sealed()   {}

func (*BoolNode) String() string     { return "bool" }
func (*IntNode) String() string      { return "int" }
func (*FloatNode) String() string    { return "float" }
func (n *StringNode) String() string { return "str(" + string(n.Alphabet) + ")" }
func (n *ListNode) String() string   { return "list(" + n.Elem.String() + ")" }
func (n *TupleNode) String() string  { return "tuple(" + n.Elem.String() + ")" }
func (n *SetNode) String() string    { return "set(" + n.Elem.String() + ")" }
func (n *DictNode) String() string {
	return "dict(" + n.Key.String() + ":" + n.Val.String() + ")"
}

// sizes returns the exhaustive and random size domains of a string or container node.
func sizes(n Node) (ex, rnd []int, ok bool) {
	switch n := n.(type) {
	case *StringNode:
		return n.Exhaustive, n.Random, true
	case *ListNode:
		return n.Exhaustive, n.Random, true
	case *TupleNode:
		return n.Exhaustive, n.Random, true
	case *SetNode:
		return n.Exhaustive, n.Random, true
	case *DictNode:
		return n.Exhaustive, n.Random, true
	}
	return nil, nil, false
}

// Children returns the child nodes in depth-first left-then-right order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *ListNode:
		return []Node{n.Elem}
	case *TupleNode:
		return []Node{n.Elem}
	case *SetNode:
		return []Node{n.Elem}
	case *DictNode:
		return []Node{n.Key, n.Val}
	}
	return nil
}

// Validate checks the structural invariants of the tree rooted at n: domains are
// non-empty, sizes are non-negative, strings that may be non-empty have an
// alphabet, and set elements and dict keys are hashable (not list, set or dict).
func Validate(n Node) error {
	return validate(n, "")
}

func validate(n Node, path string) error {
	if n == nil {
		return fmt.Errorf("%smissing node", pathPrefix(path))
	}
	for _, c := range Children(n) {
		if c == nil {
			return fmt.Errorf("%s%s node is missing a child", pathPrefix(path), n.Kind())
		}
	}
	where := pathPrefix(path + n.String())
	switch n := n.(type) {
	case *BoolNode:
		if len(n.Exhaustive) == 0 || len(n.Random) == 0 {
			return fmt.Errorf("%sempty domain", where)
		}
	case *IntNode:
		if len(n.Exhaustive) == 0 || len(n.Random) == 0 {
			return fmt.Errorf("%sempty domain", where)
		}
	case *FloatNode:
		if len(n.Exhaustive) == 0 || len(n.Random) == 0 {
			return fmt.Errorf("%sempty domain", where)
		}
	}

	if ex, rnd, ok := sizes(n); ok {
		if len(ex) == 0 || len(rnd) == 0 {
			return fmt.Errorf("%sempty domain", where)
		}
		maxLen := 0
		for _, d := range [][]int{ex, rnd} {
			for _, s := range d {
				if s < 0 {
					return fmt.Errorf("%snegative length %d", where, s)
				}
				maxLen = max(maxLen, s)
			}
		}
		if sn, isStr := n.(*StringNode); isStr && maxLen > 0 && len(sn.Alphabet) == 0 {
			return fmt.Errorf("%sempty alphabet", where)
		}
	}

	switch n := n.(type) {
	case *SetNode:
		if !hashable(n.Elem) {
			return fmt.Errorf("%sset elements of type %s are not hashable", where, n.Elem)
		}
	case *DictNode:
		if !hashable(n.Key) {
			return fmt.Errorf("%sdict keys of type %s are not hashable", where, n.Key)
		}
	}

	for _, c := range Children(n) {
		if err := validate(c, path+n.String()+" > "); err != nil {
			return err
		}
	}
	return nil
}

func hashable(n Node) bool {
	switch n := n.(type) {
	case *ListNode, *SetNode, *DictNode:
		return false
	case *TupleNode:
		return hashable(n.Elem)
	}
	return true
}

func pathPrefix(path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimSuffix(path, " > ") + ": "
}
