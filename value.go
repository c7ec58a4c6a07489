package scatter

import (
	"fmt"
	"math"
	"strconv"
)

// ValueKind discriminates the payload a Value carries.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueBool
	ValueAddress
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueNumber:
		return "number"
	case ValueBool:
		return "bool"
	case ValueAddress:
		return "address"
	default:
		return "unknown"
	}
}

// Address is a function pointer: the namespace the `@name` term was
// evaluated in, together with the name as written. Nothing is resolved when
// an Address is created; `eval` resolves the name from that namespace
// (program.go's Resolve, imports included) when it invokes it.
type Address struct {
	Namespace NamespaceID
	Name      string
}

func (a Address) String() string {
	return fmt.Sprintf("@%s/%s", a.Namespace, a.Name)
}

// Value is the tagged union every stack slot holds. A String Value's Go
// string may be a slice of the original source text (Go string slicing
// shares the backing array, never copies) or a freshly built string from
// concatenation -- that distinction is exactly Go's native borrowed/owned
// split, so no separate tag is needed for it.
type Value struct {
	Kind ValueKind

	Str  string
	Num  float64
	Bool bool
	Addr Address
}

func NewString(s string) Value  { return Value{Kind: ValueString, Str: s} }
func NewNumber(n float64) Value { return Value{Kind: ValueNumber, Num: n} }
func NewBool(b bool) Value      { return Value{Kind: ValueBool, Bool: b} }
func NewAddress(a Address) Value { return Value{Kind: ValueAddress, Addr: a} }

// Truthy implements spec's truthiness rule: a number is truthy unless it is
// zero or NaN. Strings and addresses are never used in boolean context by
// intrinsics, but are given defaults rather than an error: a string is
// truthy unless empty, and an address is always truthy ("a function pointer
// exists").
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValueString:
		return v.Str != ""
	case ValueNumber:
		return !math.IsNaN(v.Num) && v.Num != 0
	case ValueBool:
		return v.Bool
	case ValueAddress:
		return true
	default:
		return false
	}
}

func (v Value) Type() Type {
	switch v.Kind {
	case ValueString:
		return TypeString
	case ValueNumber:
		return TypeNumber
	case ValueBool:
		return TypeBool
	case ValueAddress:
		return TypeAddress
	default:
		return TypeUnknown
	}
}

// Equal implements scalar-sequence equality for strings and ordinary
// equality otherwise; NaN numbers are never equal to anything, including
// themselves, matching IEEE-754.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueString:
		return v.Str == o.Str
	case ValueNumber:
		return v.Num == o.Num
	case ValueBool:
		return v.Bool == o.Bool
	case ValueAddress:
		return v.Addr == o.Addr
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		return v.Str
	case ValueNumber:
		return formatNumber(v.Num)
	case ValueBool:
		return strconv.FormatBool(v.Bool)
	case ValueAddress:
		return v.Addr.String()
	default:
		return "<invalid value>"
	}
}

// GoString renders a debug form: strings are quoted, everything else reads
// the same as String. Mirrors the teacher's habit of giving domain values a
// GoString alongside String for %#v-style debug output (see core.go).
func (v Value) GoString() string {
	if v.Kind == ValueString {
		return strconv.Quote(v.Str)
	}
	return v.String()
}
