// Package machine implements the virtual machine that executes the
// bytecode-compiled form of Glipt source code: the value and heap object
// model, the interning and globals tables, the interpreter loop with its
// call frames and error handlers, the closure/upvalue runtime, the garbage
// collector and the module import runtime.
package machine

import (
	"math"
	"strconv"
	"strings"
)

// A Value is the machine's tagged 64-bit representation, carried alongside
// a typed object reference. The bits hold the exact NaN-boxed encoding: any
// pattern whose quiet-NaN bits are not all set is an IEEE 754 double; the
// nil/true/false singletons attach small tags to a canonical quiet NaN; and
// heap values set the sign bit together with the quiet-NaN bits, with the
// object carried in obj (the host language owns pointers, so the mantissa
// stays free).
type Value struct {
	bits uint64
	obj  Obj
}

const (
	qnan    uint64 = 0x7ffc000000000000
	signBit uint64 = 0x8000000000000000

	tagNil   uint64 = 1
	tagFalse uint64 = 2
	tagTrue  uint64 = 3
)

// Singleton values.
var (
	Nil   = Value{bits: qnan | tagNil}
	True  = Value{bits: qnan | tagTrue}
	False = Value{bits: qnan | tagFalse}
)

// Number returns the value of an IEEE 754 double.
func Number(f float64) Value { return Value{bits: math.Float64bits(f)} }

// Bool returns the true or false singleton.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// ObjValue returns a value referring to the heap object o.
func ObjValue(o Obj) Value { return Value{bits: signBit | qnan, obj: o} }

// IsNumber reports whether v is a number.
func (v Value) IsNumber() bool { return v.bits&qnan != qnan }

// IsObj reports whether v refers to a heap object.
func (v Value) IsObj() bool { return v.bits&(signBit|qnan) == signBit|qnan }

// IsNil reports whether v is the nil singleton.
func (v Value) IsNil() bool { return v.bits == qnan|tagNil }

// IsBool reports whether v is true or false.
func (v Value) IsBool() bool { return v.bits == qnan|tagTrue || v.bits == qnan|tagFalse }

// Num returns the number held by v; v must be a number.
func (v Value) Num() float64 { return math.Float64frombits(v.bits) }

// Obj returns the heap object referred to by v; v must be an object value.
func (v Value) Obj() Obj { return v.obj }

// Truth reports the truthiness of v: nil, false and the number 0 are
// falsey, everything else is truthy.
func Truth(v Value) bool {
	switch {
	case v.IsNumber():
		return v.Num() != 0
	case v.bits == qnan|tagNil || v.bits == qnan|tagFalse:
		return false
	}
	return true
}

// Equal reports whether two values are equal: their encodings must match,
// except that numbers compare by IEEE == (so NaN is not equal to itself).
// Because strings are interned, string equality is object identity.
func Equal(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return a.Num() == b.Num()
	}
	return a.bits == b.bits && a.obj == b.obj
}

// TypeName returns a short string describing the value's type.
func (v Value) TypeName() string {
	switch {
	case v.IsNumber():
		return "number"
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return "bool"
	}
	switch v.obj.(type) {
	case *String:
		return "string"
	case *Function, *Closure:
		return "function"
	case *Native:
		return "native"
	case *List:
		return "list"
	case *Map:
		return "map"
	case *Upvalue:
		return "upvalue"
	}
	return "unknown"
}

// String returns the display representation of the value, as printed by
// the print native. Strings render raw at the top level and quoted inside
// lists and maps.
func (v Value) String() string {
	var sb strings.Builder
	writeValue(&sb, v, false)
	return sb.String()
}

func writeValue(sb *strings.Builder, v Value, quote bool) {
	switch {
	case v.IsNumber():
		sb.WriteString(strconv.FormatFloat(v.Num(), 'g', -1, 64))
	case v.IsNil():
		sb.WriteString("nil")
	case v.IsBool():
		if v.bits == qnan|tagTrue {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	default:
		writeObj(sb, v.obj, quote)
	}
}

func writeObj(sb *strings.Builder, o Obj, quote bool) {
	switch o := o.(type) {
	case *String:
		if quote {
			sb.WriteString(strconv.Quote(o.s))
		} else {
			sb.WriteString(o.s)
		}
	case *Function:
		sb.WriteString("<fn " + o.NameOr("anonymous") + ">")
	case *Closure:
		sb.WriteString("<fn " + o.Fn.NameOr("anonymous") + ">")
	case *Native:
		sb.WriteString("<native " + o.name + ">")
	case *List:
		sb.WriteByte('[')
		for i, e := range o.elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeValue(sb, e, true)
		}
		sb.WriteByte(']')
	case *Map:
		sb.WriteByte('{')
		first := true
		o.entries.Iter(func(k *String, v Value) bool {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(k.s)
			sb.WriteString(": ")
			writeValue(sb, v, true)
			return false
		})
		sb.WriteByte('}')
	case *Upvalue:
		sb.WriteString("<upvalue>")
	}
}
