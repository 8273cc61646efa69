package dispatch

import (
	"fmt"
	"strings"
)

// Value represents a trellis runtime value as a tagged union.
//
// Primitive kinds carry their payload inline plus optional shape metadata
// (dims). The two object kinds carry a pointer: TagObject pointers may be
// freely shared because a TagObject is frozen after construction, while
// RefObject pointers deliberately alias mutable state.
type Value struct {
	kind Kind

	b    bool
	i    int64
	f    float64
	c    complex128
	s    string
	list []Value

	// dims is the optional shape of a primitive (nil for scalars).
	// A 2-element dims makes the value a matrix; any other non-empty
	// dims makes it an array.
	dims []int

	tag *TagObject
	ref *RefObject
}

// Kind identifies which arm of the Value union is populated.
type Kind uint8

const (
	KindNull Kind = iota
	KindLogical
	KindInteger
	KindDouble
	KindComplex
	KindCharacter
	KindList
	KindTagged
	KindRef
)

// String returns the kind's lowercase name, matching the built-in class
// name used for implicit dispatch.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindLogical:
		return "logical"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindComplex:
		return "complex"
	case KindCharacter:
		return "character"
	case KindList:
		return "list"
	case KindTagged:
		return "tagged"
	case KindRef:
		return "ref"
	default:
		return "?"
	}
}

// Null is the distinguished empty value.
var Null = Value{kind: KindNull}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// FromLogical creates a logical value.
func FromLogical(b bool) Value {
	return Value{kind: KindLogical, b: b}
}

// FromInteger creates an integer value.
func FromInteger(n int64) Value {
	return Value{kind: KindInteger, i: n}
}

// FromDouble creates a double value.
func FromDouble(f float64) Value {
	return Value{kind: KindDouble, f: f}
}

// FromComplex creates a complex value.
func FromComplex(c complex128) Value {
	return Value{kind: KindComplex, c: c}
}

// FromCharacter creates a character (string) value.
func FromCharacter(s string) Value {
	return Value{kind: KindCharacter, s: s}
}

// FromList creates a list value. The slice is not copied.
func FromList(elems []Value) Value {
	return Value{kind: KindList, list: elems}
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsNull returns true if v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsLogical returns true if v is a logical.
func (v Value) IsLogical() bool { return v.kind == KindLogical }

// IsInteger returns true if v is an integer.
func (v Value) IsInteger() bool { return v.kind == KindInteger }

// IsDouble returns true if v is a double.
func (v Value) IsDouble() bool { return v.kind == KindDouble }

// IsComplex returns true if v is a complex.
func (v Value) IsComplex() bool { return v.kind == KindComplex }

// IsCharacter returns true if v is a character value.
func (v Value) IsCharacter() bool { return v.kind == KindCharacter }

// IsList returns true if v is a list.
func (v Value) IsList() bool { return v.kind == KindList }

// IsTag returns true if v wraps a TagObject.
func (v Value) IsTag() bool { return v.kind == KindTagged }

// IsRef returns true if v wraps a RefObject.
func (v Value) IsRef() bool { return v.kind == KindRef }

// IsNumeric returns true for integer and double values.
func (v Value) IsNumeric() bool {
	return v.kind == KindInteger || v.kind == KindDouble
}

// IsPrimitive returns true if v is neither a TagObject nor a RefObject.
func (v Value) IsPrimitive() bool {
	return v.kind != KindTagged && v.kind != KindRef
}

// Kind returns the populated union arm.
func (v Value) Kind() Kind { return v.kind }

// ---------------------------------------------------------------------------
// Payload access
// ---------------------------------------------------------------------------

// Logical returns v as a bool.
// Panics if v is not a logical.
func (v Value) Logical() bool {
	if v.kind != KindLogical {
		panic("Value.Logical: not a logical")
	}
	return v.b
}

// Integer returns v as an int64.
// Panics if v is not an integer.
func (v Value) Integer() int64 {
	if v.kind != KindInteger {
		panic("Value.Integer: not an integer")
	}
	return v.i
}

// Double returns v as a float64.
// Panics if v is not a double.
func (v Value) Double() float64 {
	if v.kind != KindDouble {
		panic("Value.Double: not a double")
	}
	return v.f
}

// Complex returns v as a complex128.
// Panics if v is not a complex.
func (v Value) Complex() complex128 {
	if v.kind != KindComplex {
		panic("Value.Complex: not a complex")
	}
	return v.c
}

// Character returns v as a string.
// Panics if v is not a character value.
func (v Value) Character() string {
	if v.kind != KindCharacter {
		panic("Value.Character: not a character")
	}
	return v.s
}

// List returns the element slice of a list value.
// Panics if v is not a list.
func (v Value) List() []Value {
	if v.kind != KindList {
		panic("Value.List: not a list")
	}
	return v.list
}

// Tag returns the wrapped TagObject.
// Panics if v is not a tag object.
func (v Value) Tag() *TagObject {
	if v.kind != KindTagged {
		panic("Value.Tag: not a tag object")
	}
	return v.tag
}

// Ref returns the wrapped RefObject.
// Panics if v is not a ref object.
func (v Value) Ref() *RefObject {
	if v.kind != KindRef {
		panic("Value.Ref: not a ref object")
	}
	return v.ref
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

// WithDims returns a copy of v carrying the given shape.
// Only primitive values can be shaped; panics otherwise.
func (v Value) WithDims(dims ...int) Value {
	if !v.IsPrimitive() || v.kind == KindNull {
		panic("Value.WithDims: only non-null primitives can be shaped")
	}
	out := v
	out.dims = append([]int(nil), dims...)
	return out
}

// Dims returns a copy of v's shape, or nil for an unshaped value.
func (v Value) Dims() []int {
	if v.dims == nil {
		return nil
	}
	return append([]int(nil), v.dims...)
}

// IsMatrix returns true if v has exactly two dimensions.
func (v Value) IsMatrix() bool { return len(v.dims) == 2 }

// IsArray returns true if v has any dimensions at all.
func (v Value) IsArray() bool { return len(v.dims) > 0 }

// ---------------------------------------------------------------------------
// Debugging
// ---------------------------------------------------------------------------

// String renders a compact debugging representation.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindLogical:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindInteger:
		return fmt.Sprintf("%dL", v.i)
	case KindDouble:
		return fmt.Sprintf("%g", v.f)
	case KindComplex:
		return fmt.Sprintf("%v", v.c)
	case KindCharacter:
		return fmt.Sprintf("%q", v.s)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "list(" + strings.Join(parts, ", ") + ")"
	case KindTagged:
		return v.tag.String()
	case KindRef:
		return v.ref.String()
	default:
		return "?"
	}
}
