package config

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"

	"github.com/AndreyAkinshin/diffgen/internal/node"
)

func TestParseParameter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		typ        string
		exhaustive string
		random     string
		want       node.Node
	}{
		{
			name: "int range and list",
			typ:  "int", exhaustive: "0~2", random: "[5, -1, 5]",
			want: &node.IntNode{Exhaustive: []int64{0, 1, 2}, Random: []int64{5, -1}},
		},
		{
			name: "negative int range",
			typ:  "int", exhaustive: "-2~-1", random: "-7",
			want: &node.IntNode{Exhaustive: []int64{-2, -1}, Random: []int64{-7}},
		},
		{
			name: "bool",
			typ:  "bool", exhaustive: "[0, 1]", random: "1",
			want: &node.BoolNode{Exhaustive: []bool{false, true}, Random: []bool{true}},
		},
		{
			name: "float list and range",
			typ:  "float", exhaustive: "[0.5, 1.5, 0.5]", random: "0~2",
			want: &node.FloatNode{Exhaustive: []float64{0.5, 1.5}, Random: []float64{0, 1, 2}},
		},
		{
			name: "string",
			typ:  "str(ab)", exhaustive: "0~2", random: "[3]",
			want: &node.StringNode{Alphabet: []rune("ab"), Exhaustive: []int{0, 1, 2}, Random: []int{3}},
		},
		{
			name: "list",
			typ:  "list(int)", exhaustive: "1~2(0~3)", random: "0(1)",
			want: &node.ListNode{
				Elem:       &node.IntNode{Exhaustive: []int64{0, 1, 2, 3}, Random: []int64{1}},
				Exhaustive: []int{1, 2},
				Random:     []int{0},
			},
		},
		{
			name: "dict without closing parentheses",
			typ:  "dict(int:str(ab", exhaustive: "0~2(1~3:0~2", random: "1(5:1",
			want: &node.DictNode{
				Key:        &node.IntNode{Exhaustive: []int64{1, 2, 3}, Random: []int64{5}},
				Val:        &node.StringNode{Alphabet: []rune("ab"), Exhaustive: []int{0, 1, 2}, Random: []int{1}},
				Exhaustive: []int{0, 1, 2},
				Random:     []int{1},
			},
		},
		{
			name: "nested tuple of sets",
			typ:  "tuple(set(bool))", exhaustive: "[1](1(0~1))", random: "[1](1(1))",
			want: &node.TupleNode{
				Elem: &node.SetNode{
					Elem:       &node.BoolNode{Exhaustive: []bool{false, true}, Random: []bool{true}},
					Exhaustive: []int{1},
					Random:     []int{1},
				},
				Exhaustive: []int{1},
				Random:     []int{1},
			},
		},
		{
			name: "dict with tuple keys",
			typ:  "dict(tuple(int):list(float))", exhaustive: "1(1(0~1):1([2.5]))", random: "0(2(3):0(4))",
			want: &node.DictNode{
				Key: &node.TupleNode{
					Elem:       &node.IntNode{Exhaustive: []int64{0, 1}, Random: []int64{3}},
					Exhaustive: []int{1},
					Random:     []int{2},
				},
				Val: &node.ListNode{
					Elem:       &node.FloatNode{Exhaustive: []float64{2.5}, Random: []float64{4}},
					Exhaustive: []int{1},
					Random:     []int{0},
				},
				Exhaustive: []int{1},
				Random:     []int{0},
			},
		},
		{
			name: "whitespace",
			typ:  "  list( int )  ", exhaustive: " 1 ~ 2 ( 0 ~ 1 ) ", random: "[ 1 , 2 ]( [0] )",
			want: &node.ListNode{
				Elem:       &node.IntNode{Exhaustive: []int64{0, 1}, Random: []int64{0}},
				Exhaustive: []int{1, 2},
				Random:     []int{1, 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseParameter(tt.typ, tt.exhaustive, tt.random)
			if err != nil {
				t.Fatalf("ParseParameter() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseParameter() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseParameter_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		typ        string
		exhaustive string
		random     string
		field      string
		contains   string
	}{
		{"type ends with paren", "list(", "0", "0", "types[0]", "expected a type"},
		{"type ends with colon", "dict(int:", "0", "0", "types[0]", "expected a type"},
		{"dict missing value type", "dict(int)", "0", "0", "types[0]", `expected ':'`},
		{"unknown type", "float64", "0", "0", "types[0]", `unknown type "float64"`},
		{"unknown name", "complex", "0", "0", "types[0]", `unknown type "complex"`},
		{"scalar with argument", "int(3)", "0", "0", "types[0]", "takes no arguments"},
		{"trailing type text", "list(int))", "0(0)", "0(0)", "types[0]", "unexpected"},
		{"missing element domain", "list(int)", "0~2", "0(0)", "exhaustive domain[0]", `expected '('`},
		{"domain nested under scalar", "int", "0~2(1)", "0", "exhaustive domain[0]", "unexpected"},
		{"dict domain without colon", "dict(int:int)", "0~1(0~1)", "0(0:0)", "exhaustive domain[0]", `expected ':'`},
		{"colon domain for list", "list(int)", "1(0)", "1(0:1)", "random domain[0]", "unexpected"},
		{"empty range", "int", "3~1", "0", "exhaustive domain[0]", "is empty"},
		{"negative size", "list(int)", "0(0)", "-1(0)", "random domain[0]", "negative"},
		{"bool out of range", "bool", "0~2", "0", "exhaustive domain[0]", "only 0 and 1"},
		{"bad integer", "int", "[1, x]", "0", "exhaustive domain[0]", `invalid integer "x"`},
		{"bad float", "float", "0", "[1.5, y]", "random domain[0]", `invalid float "y"`},
		{"unterminated list", "int", "[1, 2", "0", "exhaustive domain[0]", "unterminated"},
		{"empty list", "int", "[]", "0", "exhaustive domain[0]", "empty domain"},
		{"missing domain", "int", " ", "0", "exhaustive domain[0]", "expected a domain"},
		{"range too wide", "int", "0~2000000", "0", "exhaustive domain[0]", "more than"},
		{"unhashable set element", "set(list(int))", "0(0(0))", "0(0(0))", "types[0]", "not hashable"},
		{"unhashable dict key", "dict(set(int):int)", "0(0(0):0)", "0(0(0):0)", "types[0]", "not hashable"},
		{"empty alphabet", "str()", "1", "0", "types[0]", "empty alphabet"},
		{"infinite float range", "float", "0~inf", "0", "exhaustive domain[0]", "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseParameter(tt.typ, tt.exhaustive, tt.random)
			if err == nil {
				t.Fatal("ParseParameter() error = nil, want error")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("ParseParameter() error = %T, want *ValidationError", err)
			}
			if ve.Field != tt.field {
				t.Errorf("Field = %q, want %q", ve.Field, tt.field)
			}
			if !strings.Contains(ve.Message, tt.contains) {
				t.Errorf("Message = %q, want it to contain %q", ve.Message, tt.contains)
			}
		})
	}
}

// drawParam draws a well-formed type expression with one matching domain.
func drawParam(t *rapid.T, depth int) (typ, dom string) {
	kinds := []string{"int", "bool", "float", "str"}
	if depth < 3 {
		kinds = append(kinds, "list", "tuple", "set", "dict")
	}
	switch rapid.SampledFrom(kinds).Draw(t, "kind") {
	case "int":
		lo := rapid.IntRange(-5, 5).Draw(t, "lo")
		hi := rapid.IntRange(lo, lo+5).Draw(t, "hi")
		return "int", strings.Join([]string{strconv.Itoa(lo), strconv.Itoa(hi)}, "~")
	case "bool":
		return "bool", "[0, 1]"
	case "float":
		return "float", "[0.5, -1.25]"
	case "str":
		return "str(xyz)", "0~" + strconv.Itoa(rapid.IntRange(0, 3).Draw(t, "len"))
	case "list", "tuple":
		kind := rapid.SampledFrom([]string{"list", "tuple"}).Draw(t, "seq")
		et, ed := drawParam(t, depth+1)
		return kind + "(" + et + ")", "1~2(" + ed + ")"
	case "set":
		return "set(int)", "0~2(0~3)"
	default:
		vt, vd := drawParam(t, depth+1)
		return "dict(int:" + vt + ")", "0~1(0~2:" + vd + ")"
	}
}

func TestParseParameter_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		typ, dom := drawParam(t, 0)

		n, err := ParseParameter(typ, dom, dom)
		if err != nil {
			t.Fatalf("ParseParameter(%q, %q) error = %v", typ, dom, err)
		}
		if got := n.String(); got != typ {
			t.Fatalf("String() = %q, want %q", got, typ)
		}

		// Closing parentheses are optional.
		short, err := ParseParameter(strings.TrimRight(typ, ")"), strings.TrimRight(dom, ")"), dom)
		if err != nil {
			t.Fatalf("ParseParameter() without closing parentheses error = %v", err)
		}
		if diff := cmp.Diff(n, short); diff != "" {
			t.Fatalf("trimmed parse mismatch (-full +trimmed):\n%s", diff)
		}
	})
}
