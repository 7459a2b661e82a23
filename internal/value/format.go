package value

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// String renders the value as a Python expression that evaluates to it. Non-finite
// floats have no literal and render as float('inf'), float('-inf') and
// float('nan'). Reports use this form for call strings.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb, false)
	return sb.String()
}

// canonical is String with negative zero folded into zero, matching Equal.
func (v Value) canonical() string {
	var sb strings.Builder
	v.write(&sb, true)
	return sb.String()
}

// CallArgs renders a parameter tuple as a call argument list without parentheses.
func CallArgs(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

func (v Value) write(sb *strings.Builder, canon bool) {
	switch v.kind {
	case KindBool:
		if v.b {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		f := v.f
		if canon && f == 0 {
			f = 0
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			sb.WriteString("float('" + FormatFloat(f) + "')")
			return
		}
		sb.WriteString(FormatFloat(f))
	case KindString:
		sb.WriteString(quote(v.s))
	case KindNone:
		sb.WriteString("None")
	case KindOpaque:
		sb.WriteString(v.s)
	case KindList:
		writeSeq(sb, "[", "]", v.elems, canon)
	case KindTuple:
		if len(v.elems) == 1 {
			sb.WriteString("(")
			v.elems[0].write(sb, canon)
			sb.WriteString(",)")
			return
		}
		writeSeq(sb, "(", ")", v.elems, canon)
	case KindSet:
		if len(v.elems) == 0 {
			sb.WriteString("set()")
			return
		}
		writeSeq(sb, "{", "}", v.elems, canon)
	case KindDict:
		sb.WriteString("{")
		for i := range v.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			v.elems[i].write(sb, canon)
			sb.WriteString(": ")
			v.vals[i].write(sb, canon)
		}
		sb.WriteString("}")
	}
}

func writeSeq(sb *strings.Builder, open, end string, elems []Value, canon bool) {
	sb.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		e.write(sb, canon)
	}
	sb.WriteString(end)
}

// FormatFloat renders f the way Python's repr does: shortest round-trip digits,
// positional notation for exponents in [-4, 16), and a trailing ".0" on integers.
// Non-finite values come out as nan, inf and -inf, which are display forms rather
// than Python literals.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mant, expStr, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expStr)
	if exp < -4 || exp >= 16 {
		sign := "+"
		if exp < 0 {
			sign = "-"
			exp = -exp
		}
		es := strconv.Itoa(exp)
		if len(es) < 2 {
			es = "0" + es
		}
		return mant + "e" + sign + es
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

// quote renders s as a Python string literal, preferring single quotes.
func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var sb strings.Builder
	sb.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			sb.WriteString(`\\`)
		case r == rune(q):
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			sb.WriteString(`\x`)
			sb.WriteString(hex2(int(r)))
		case !unicode.IsPrint(r) && r < 0x10000:
			sb.WriteString(`\u`)
			sb.WriteString(strings.Repeat("0", 4-len(strconv.FormatInt(int64(r), 16))))
			sb.WriteString(strconv.FormatInt(int64(r), 16))
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}

func hex2(n int) string {
	s := strconv.FormatInt(int64(n), 16)
	if len(s) < 2 {
		s = "0" + s
	}
	return s
}
