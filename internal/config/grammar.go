package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/AndreyAkinshin/diffgen/internal/node"
	"github.com/AndreyAkinshin/diffgen/internal/value"
)

// maxRangeWidth bounds how many entries a lo~hi range may expand to.
const maxRangeWidth = 1 << 20

// typeExpr is a parsed type expression such as "dict(int:list(str(ab)))".
type typeExpr struct {
	kind     value.Kind
	alphabet []rune
	elem     *typeExpr // element type; key type for dicts
	val      *typeExpr // dict value type
}

// scanner walks one expression. Field names the document entry it came from and
// is used in error messages.
type scanner struct {
	field string
	src   []rune
	pos   int
}

func newScanner(field, src string) *scanner {
	return &scanner{field: field, src: []rune(src)}
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(s.src[s.pos]) {
		s.pos++
	}
}

// accept consumes r if it is the next non-space rune.
func (s *scanner) accept(r rune) bool {
	s.skipSpace()
	if s.peek() == r {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) expect(r rune, what string) error {
	if s.accept(r) {
		return nil
	}
	return s.errorf("expected %q %s", r, what)
}

func (s *scanner) finish() error {
	s.skipSpace()
	if !s.eof() {
		return s.errorf("unexpected %q", string(s.src[s.pos:]))
	}
	return nil
}

func (s *scanner) errorf(format string, args ...any) error {
	return &ValidationError{
		Field:   s.field,
		Message: fmt.Sprintf("%s in %q at offset %d", fmt.Sprintf(format, args...), string(s.src), s.pos),
	}
}

// ParseParameter parses one parameter: its type expression together with its
// exhaustive and random domain expressions. The three are walked in a single
// recursive descent, so every node is built with both domains attached.
//
// Closing parentheses may be omitted, as in "list(str(ab" with domain "0~2(1~2".
func ParseParameter(typ, exhaustive, random string) (node.Node, error) {
	return parseParameter(0, typ, exhaustive, random)
}

func parseParameter(i int, typ, exhaustive, random string) (node.Node, error) {
	ts := newScanner(fmt.Sprintf("types[%d]", i), typ)
	t, err := parseType(ts)
	if err != nil {
		return nil, err
	}
	if err := ts.finish(); err != nil {
		return nil, err
	}

	ex := newScanner(fmt.Sprintf("exhaustive domain[%d]", i), exhaustive)
	rnd := newScanner(fmt.Sprintf("random domain[%d]", i), random)
	n, err := build(t, ex, rnd)
	if err != nil {
		return nil, err
	}
	if err := ex.finish(); err != nil {
		return nil, err
	}
	if err := rnd.finish(); err != nil {
		return nil, err
	}

	if err := node.Validate(n); err != nil {
		return nil, &ValidationError{Field: ts.field, Message: err.Error()}
	}
	return n, nil
}

func parseType(s *scanner) (*typeExpr, error) {
	s.skipSpace()
	start := s.pos
	for !s.eof() && (unicode.IsLetter(s.src[s.pos]) || unicode.IsDigit(s.src[s.pos])) {
		s.pos++
	}
	name := string(s.src[start:s.pos])
	if name == "" {
		return nil, s.errorf("expected a type")
	}

	switch name {
	case "bool", "int", "float":
		kind, _ := value.ParseKind(name)
		if s.accept('(') {
			return nil, s.errorf("%s takes no arguments", name)
		}
		return &typeExpr{kind: kind}, nil

	case "str":
		if err := s.expect('(', "after str"); err != nil {
			return nil, err
		}
		// The alphabet runs up to the closing parenthesis, a dict separator, or
		// the end of the expression; it is taken verbatim.
		start := s.pos
		for !s.eof() && !strings.ContainsRune("():", s.src[s.pos]) {
			s.pos++
		}
		alphabet := append([]rune(nil), s.src[start:s.pos]...)
		if s.peek() == '(' {
			return nil, s.errorf("alphabet may not contain '('")
		}
		s.accept(')')
		return &typeExpr{kind: value.KindString, alphabet: alphabet}, nil

	case "list", "tuple", "set":
		kind, _ := value.ParseKind(name)
		if err := s.expect('(', "after "+name); err != nil {
			return nil, err
		}
		elem, err := parseType(s)
		if err != nil {
			return nil, err
		}
		s.accept(')')
		return &typeExpr{kind: kind, elem: elem}, nil

	case "dict":
		if err := s.expect('(', "after dict"); err != nil {
			return nil, err
		}
		key, err := parseType(s)
		if err != nil {
			return nil, err
		}
		if err := s.expect(':', "between dict key and value types"); err != nil {
			return nil, err
		}
		val, err := parseType(s)
		if err != nil {
			return nil, err
		}
		s.accept(')')
		return &typeExpr{kind: value.KindDict, elem: key, val: val}, nil
	}

	s.pos = start
	return nil, s.errorf("unknown type %q", name)
}

// build constructs the node for t, consuming the matching part of both domain
// expressions.
func build(t *typeExpr, ex, rnd *scanner) (node.Node, error) {
	switch t.kind {
	case value.KindBool:
		e, err := boolDomain(ex)
		if err != nil {
			return nil, err
		}
		r, err := boolDomain(rnd)
		if err != nil {
			return nil, err
		}
		return &node.BoolNode{Exhaustive: e, Random: r}, nil

	case value.KindInt:
		e, err := intDomain(ex)
		if err != nil {
			return nil, err
		}
		r, err := intDomain(rnd)
		if err != nil {
			return nil, err
		}
		return &node.IntNode{Exhaustive: e, Random: r}, nil

	case value.KindFloat:
		e, err := floatDomain(ex)
		if err != nil {
			return nil, err
		}
		r, err := floatDomain(rnd)
		if err != nil {
			return nil, err
		}
		return &node.FloatNode{Exhaustive: e, Random: r}, nil

	case value.KindString:
		e, r, err := sizeDomains(ex, rnd)
		if err != nil {
			return nil, err
		}
		return &node.StringNode{Alphabet: t.alphabet, Exhaustive: e, Random: r}, nil

	case value.KindList, value.KindTuple, value.KindSet:
		e, r, err := sizeDomains(ex, rnd)
		if err != nil {
			return nil, err
		}
		if err := open(ex, rnd); err != nil {
			return nil, err
		}
		elem, err := build(t.elem, ex, rnd)
		if err != nil {
			return nil, err
		}
		closeOptional(ex, rnd)
		switch t.kind {
		case value.KindList:
			return &node.ListNode{Elem: elem, Exhaustive: e, Random: r}, nil
		case value.KindTuple:
			return &node.TupleNode{Elem: elem, Exhaustive: e, Random: r}, nil
		default:
			return &node.SetNode{Elem: elem, Exhaustive: e, Random: r}, nil
		}

	case value.KindDict:
		e, r, err := sizeDomains(ex, rnd)
		if err != nil {
			return nil, err
		}
		if err := open(ex, rnd); err != nil {
			return nil, err
		}
		key, err := build(t.elem, ex, rnd)
		if err != nil {
			return nil, err
		}
		for _, s := range []*scanner{ex, rnd} {
			if err := s.expect(':', "between dict key and value domains"); err != nil {
				return nil, err
			}
		}
		val, err := build(t.val, ex, rnd)
		if err != nil {
			return nil, err
		}
		closeOptional(ex, rnd)
		return &node.DictNode{Key: key, Val: val, Exhaustive: e, Random: r}, nil
	}
	return nil, fmt.Errorf("unsupported type kind %s", t.kind)
}

func open(ex, rnd *scanner) error {
	for _, s := range []*scanner{ex, rnd} {
		if err := s.expect('(', "before the element domain"); err != nil {
			return err
		}
	}
	return nil
}

func closeOptional(ex, rnd *scanner) {
	ex.accept(')')
	rnd.accept(')')
}

// rangeToken reads one range: a bracketed list "[a, b]" or a bare "lo~hi" or
// single value, which ends at '(', ')', ':' or the end of input.
func (s *scanner) rangeToken() (string, error) {
	s.skipSpace()
	start := s.pos
	if s.peek() == '[' {
		for !s.eof() && s.src[s.pos] != ']' {
			s.pos++
		}
		if s.eof() {
			s.pos = start
			return "", s.errorf("unterminated '['")
		}
		s.pos++
		return string(s.src[start:s.pos]), nil
	}
	for !s.eof() && !strings.ContainsRune("():", s.src[s.pos]) {
		s.pos++
	}
	tok := strings.TrimSpace(string(s.src[start:s.pos]))
	if tok == "" {
		return "", s.errorf("expected a domain")
	}
	return tok, nil
}

// listItems splits "[a, b, c]" into its trimmed items. ok is false when tok is
// not bracketed.
func listItems(tok string) (items []string, ok bool) {
	if !strings.HasPrefix(tok, "[") {
		return nil, false
	}
	body := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(tok, "["), "]"))
	if body == "" {
		return []string{}, true
	}
	for _, item := range strings.Split(body, ",") {
		items = append(items, strings.TrimSpace(item))
	}
	return items, true
}

func intDomain(s *scanner) ([]int64, error) {
	tok, err := s.rangeToken()
	if err != nil {
		return nil, err
	}
	if items, ok := listItems(tok); ok {
		if len(items) == 0 {
			return nil, s.errorf("empty domain")
		}
		out := make([]int64, 0, len(items))
		for _, item := range items {
			v, err := strconv.ParseInt(item, 10, 64)
			if err != nil {
				return nil, s.errorf("invalid integer %q", item)
			}
			out = append(out, v)
		}
		return dedupe(out), nil
	}

	loText, hiText, isRange := strings.Cut(tok, "~")
	lo, err := strconv.ParseInt(strings.TrimSpace(loText), 10, 64)
	if err != nil {
		return nil, s.errorf("invalid integer %q", strings.TrimSpace(loText))
	}
	if !isRange {
		return []int64{lo}, nil
	}
	hi, err := strconv.ParseInt(strings.TrimSpace(hiText), 10, 64)
	if err != nil {
		return nil, s.errorf("invalid integer %q", strings.TrimSpace(hiText))
	}
	if lo > hi {
		return nil, s.errorf("range %d~%d is empty", lo, hi)
	}
	if uint64(hi-lo) >= maxRangeWidth {
		return nil, s.errorf("range %d~%d has more than %d values", lo, hi, maxRangeWidth)
	}
	out := make([]int64, 0, hi-lo+1)
	for v := lo; ; v++ {
		out = append(out, v)
		if v == hi {
			break
		}
	}
	return out, nil
}

func floatDomain(s *scanner) ([]float64, error) {
	tok, err := s.rangeToken()
	if err != nil {
		return nil, err
	}
	if items, ok := listItems(tok); ok {
		if len(items) == 0 {
			return nil, s.errorf("empty domain")
		}
		out := make([]float64, 0, len(items))
		for _, item := range items {
			v, err := strconv.ParseFloat(item, 64)
			if err != nil {
				return nil, s.errorf("invalid float %q", item)
			}
			out = append(out, v)
		}
		return dedupeFloats(out), nil
	}

	loText, hiText, isRange := strings.Cut(tok, "~")
	lo, err := strconv.ParseFloat(strings.TrimSpace(loText), 64)
	if err != nil {
		return nil, s.errorf("invalid float %q", strings.TrimSpace(loText))
	}
	if !isRange {
		return []float64{lo}, nil
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(hiText), 64)
	if err != nil {
		return nil, s.errorf("invalid float %q", strings.TrimSpace(hiText))
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, s.errorf("range bounds must be finite")
	}
	if lo > hi {
		return nil, s.errorf("range %s~%s is empty", value.FormatFloat(lo), value.FormatFloat(hi))
	}
	if hi-lo >= maxRangeWidth {
		return nil, s.errorf("range %s~%s has more than %d values", value.FormatFloat(lo), value.FormatFloat(hi), maxRangeWidth)
	}
	// Float ranges step by one from lo.
	n := int(hi-lo) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)
	}
	return dedupeFloats(out), nil
}

func boolDomain(s *scanner) ([]bool, error) {
	ints, err := intDomain(s)
	if err != nil {
		return nil, err
	}
	out := make([]bool, 0, len(ints))
	for _, v := range ints {
		if v != 0 && v != 1 {
			return nil, s.errorf("boolean domain accepts only 0 and 1, got %d", v)
		}
		out = append(out, v == 1)
	}
	return dedupe(out), nil
}

func sizeDomain(s *scanner) ([]int, error) {
	ints, err := intDomain(s)
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(ints))
	for _, v := range ints {
		if v < 0 {
			return nil, s.errorf("size %d is negative", v)
		}
		if v > math.MaxInt32 {
			return nil, s.errorf("size %d is too large", v)
		}
		out = append(out, int(v))
	}
	return out, nil
}

func sizeDomains(ex, rnd *scanner) (e, r []int, err error) {
	if e, err = sizeDomain(ex); err != nil {
		return nil, nil, err
	}
	if r, err = sizeDomain(rnd); err != nil {
		return nil, nil, err
	}
	return e, r, nil
}

func dedupe[T comparable](d []T) []T {
	seen := make(map[T]struct{}, len(d))
	out := d[:0]
	for _, x := range d {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

func dedupeFloats(d []float64) []float64 {
	out := d[:0]
	for _, f := range d {
		dup := false
		for _, g := range out {
			if value.Equal(value.Float(f), value.Float(g)) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, f)
		}
	}
	return out
}
