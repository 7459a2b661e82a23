package value

import (
	"fmt"
	"math"
	"reflect"
)

var (
	emptyStructType = reflect.TypeOf(struct{}{})
	anyType         = reflect.TypeOf((*any)(nil)).Elem()
)

// FromGo converts a Go value observed at runtime into a Value.
//
// Maps with struct{} elements become sets; other maps become dicts. Arrays become
// tuples and slices become lists. A nil interface or pointer becomes None.
func FromGo(x any) (Value, error) {
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return None(), nil
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return None(), nil
		}
		return fromReflect(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Opaque(fmt.Sprint(u)), nil
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return Str(rv.String()), nil
	case reflect.Slice, reflect.Array:
		elems := make([]Value, rv.Len())
		for i := range elems {
			e, err := fromReflect(rv.Index(i))
			if err != nil {
				return Value{}, err
			}
			elems[i] = e
		}
		if rv.Kind() == reflect.Array {
			return Tuple(elems...), nil
		}
		return List(elems...), nil
	case reflect.Map:
		return fromMap(rv)
	}
	return Opaque(fmt.Sprintf("%v", rv.Interface())), nil
}

func fromMap(rv reflect.Value) (Value, error) {
	isSet := rv.Type().Elem() == emptyStructType
	keys := make([]Value, 0, rv.Len())
	pairs := make([]Pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := fromReflect(iter.Key())
		if err != nil {
			return Value{}, err
		}
		if isSet {
			keys = append(keys, k)
			continue
		}
		val, err := fromReflect(iter.Value())
		if err != nil {
			return Value{}, err
		}
		pairs = append(pairs, Pair{Key: k, Val: val})
	}
	if isSet {
		return Set(keys...), nil
	}
	return Dict(pairs...)
}

// ToGo converts v into a reflect.Value assignable to t. It is the inverse of FromGo
// for the generable kinds, and fails when v's shape does not fit t.
func ToGo(v Value, t reflect.Type) (reflect.Value, error) {
	if t == anyType {
		return toAny(v)
	}
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		if v.kind != KindBool {
			return mismatch(v, t)
		}
		out.SetBool(v.b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.kind != KindInt {
			return mismatch(v, t)
		}
		if out.OverflowInt(v.i) {
			return reflect.Value{}, fmt.Errorf("%s overflows %s", v, t)
		}
		out.SetInt(v.i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if v.kind != KindInt || v.i < 0 || out.OverflowUint(uint64(v.i)) {
			return mismatch(v, t)
		}
		out.SetUint(uint64(v.i))
	case reflect.Float32, reflect.Float64:
		switch v.kind {
		case KindFloat:
			out.SetFloat(v.f)
		case KindInt:
			out.SetFloat(float64(v.i))
		default:
			return mismatch(v, t)
		}
	case reflect.String:
		if v.kind != KindString {
			return mismatch(v, t)
		}
		out.SetString(v.s)
	case reflect.Slice:
		if v.kind != KindList && v.kind != KindTuple && v.kind != KindSet {
			return mismatch(v, t)
		}
		out = reflect.MakeSlice(t, len(v.elems), len(v.elems))
		for i, e := range v.elems {
			ev, err := ToGo(e, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
	case reflect.Array:
		if (v.kind != KindTuple && v.kind != KindList) || len(v.elems) != t.Len() {
			return mismatch(v, t)
		}
		for i, e := range v.elems {
			ev, err := ToGo(e, t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
	case reflect.Map:
		return toMap(v, t)
	default:
		return mismatch(v, t)
	}
	return out, nil
}

func toMap(v Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(t, len(v.elems))
	switch {
	case v.kind == KindSet && (t.Elem() == emptyStructType || t.Elem().Kind() == reflect.Bool):
		for _, e := range v.elems {
			k, err := ToGo(e, t.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			mark := reflect.New(t.Elem()).Elem()
			if mark.Kind() == reflect.Bool {
				mark.SetBool(true)
			}
			out.SetMapIndex(k, mark)
		}
	case v.kind == KindDict:
		for i := range v.elems {
			k, err := ToGo(v.elems[i], t.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			val, err := ToGo(v.vals[i], t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(k, val)
		}
	default:
		return mismatch(v, t)
	}
	return out, nil
}

// toAny produces the natural Go form of v for parameters declared as any.
func toAny(v Value) (reflect.Value, error) {
	var x any
	switch v.kind {
	case KindBool:
		x = v.b
	case KindInt:
		x = int(v.i)
	case KindFloat:
		x = v.f
	case KindString:
		x = v.s
	case KindList, KindTuple:
		s := make([]any, len(v.elems))
		for i, e := range v.elems {
			ev, err := toAny(e)
			if err != nil {
				return reflect.Value{}, err
			}
			s[i] = ev.Interface()
		}
		x = s
	default:
		return reflect.Value{}, fmt.Errorf("%s value has no natural Go form", v.kind)
	}
	out := reflect.New(anyType).Elem()
	out.Set(reflect.ValueOf(x))
	return out, nil
}

func mismatch(v Value, t reflect.Type) (reflect.Value, error) {
	return reflect.Value{}, fmt.Errorf("cannot convert %s value %s to Go type %s", v.kind, v, t)
}
