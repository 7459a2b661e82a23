package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// wire is the tagged JSON form of a Value:
//
//	{"type": "int", "value": 3}
//	{"type": "float", "value": "nan"}
//	{"type": "set", "items": [{"type": "int", "value": 1}]}
//	{"type": "dict", "items": [[KEY, VALUE], ...]}
type wire struct {
	Type  string            `json:"type"`
	Value json.RawMessage   `json:"value,omitempty"`
	Items []json.RawMessage `json:"items,omitempty"`
}

// MarshalJSON implements json.Marshaler using the tagged wire form.
func (v Value) MarshalJSON() ([]byte, error) {
	w := wire{Type: v.kind.String()}
	var err error
	switch v.kind {
	case KindBool:
		w.Value, err = json.Marshal(v.b)
	case KindInt:
		w.Value = []byte(strconv.FormatInt(v.i, 10))
	case KindFloat:
		switch {
		case math.IsNaN(v.f), math.IsInf(v.f, 0):
			w.Value, err = json.Marshal(FormatFloat(v.f))
		default:
			w.Value, err = json.Marshal(v.f)
		}
	case KindString, KindOpaque:
		w.Value, err = json.Marshal(v.s)
	case KindNone:
	case KindList, KindTuple, KindSet:
		w.Items = make([]json.RawMessage, len(v.elems))
		for i, e := range v.elems {
			if w.Items[i], err = e.MarshalJSON(); err != nil {
				return nil, err
			}
		}
	case KindDict:
		w.Items = make([]json.RawMessage, len(v.elems))
		for i := range v.elems {
			if w.Items[i], err = json.Marshal([2]Value{v.elems[i], v.vals[i]}); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %s", v.kind)
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler for the tagged wire form.
// Integers outside the int64 range decode as opaque values.
func (v *Value) UnmarshalJSON(data []byte) error {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode value: %w", err)
	}
	kind, ok := ParseKind(w.Type)
	if !ok {
		return fmt.Errorf("decode value: unknown type %q", w.Type)
	}

	switch kind {
	case KindBool:
		var b bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return fmt.Errorf("decode bool: %w", err)
		}
		*v = Bool(b)
	case KindInt:
		dec := json.NewDecoder(bytes.NewReader(w.Value))
		dec.UseNumber()
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("decode int: %w", err)
		}
		i, err := n.Int64()
		if err != nil {
			*v = Opaque(n.String())
			return nil
		}
		*v = Int(i)
	case KindFloat:
		f, err := decodeFloat(w.Value)
		if err != nil {
			return err
		}
		*v = Float(f)
	case KindString, KindOpaque:
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return fmt.Errorf("decode %s: %w", kind, err)
		}
		if kind == KindString {
			*v = Str(s)
		} else {
			*v = Opaque(s)
		}
	case KindNone:
		*v = None()
	case KindList, KindTuple, KindSet:
		elems := make([]Value, len(w.Items))
		for i, raw := range w.Items {
			if err := elems[i].UnmarshalJSON(raw); err != nil {
				return err
			}
		}
		switch kind {
		case KindList:
			*v = List(elems...)
		case KindTuple:
			*v = Tuple(elems...)
		default:
			*v = Set(elems...)
		}
	case KindDict:
		pairs := make([]Pair, len(w.Items))
		for i, raw := range w.Items {
			var kv [2]Value
			if err := json.Unmarshal(raw, &kv); err != nil {
				return fmt.Errorf("decode dict entry: %w", err)
			}
			pairs[i] = Pair{Key: kv[0], Val: kv[1]}
		}
		d, err := Dict(pairs...)
		if err != nil {
			return fmt.Errorf("decode dict: %w", err)
		}
		*v = d
	}
	return nil
}

func decodeFloat(raw json.RawMessage) (float64, error) {
	var special string
	if err := json.Unmarshal(raw, &special); err == nil {
		switch special {
		case "nan":
			return math.NaN(), nil
		case "inf":
			return math.Inf(1), nil
		case "-inf":
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("decode float: unexpected %q", special)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("decode float: %w", err)
	}
	return f, nil
}
