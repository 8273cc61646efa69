package dispatch

import (
	"reflect"
	"testing"
)

func TestValueKinds(t *testing.T) {
	cases := []struct {
		v    Value
		kind Kind
	}{
		{Null, KindNull},
		{FromLogical(true), KindLogical},
		{FromInteger(42), KindInteger},
		{FromDouble(3.14), KindDouble},
		{FromComplex(1 + 2i), KindComplex},
		{FromCharacter("hello"), KindCharacter},
		{FromList([]Value{FromInteger(1)}), KindList},
	}
	for _, c := range cases {
		if c.v.Kind() != c.kind {
			t.Errorf("Kind() = %v, want %v", c.v.Kind(), c.kind)
		}
	}
}

func TestValueAccessors(t *testing.T) {
	if got := FromInteger(42).Integer(); got != 42 {
		t.Errorf("Integer() = %d, want 42", got)
	}
	if got := FromDouble(2.5).Double(); got != 2.5 {
		t.Errorf("Double() = %g, want 2.5", got)
	}
	if got := FromCharacter("x").Character(); got != "x" {
		t.Errorf("Character() = %q, want %q", got, "x")
	}
	if !FromLogical(true).Logical() {
		t.Error("Logical() = false, want true")
	}
	if got := FromComplex(1 + 2i).Complex(); got != 1+2i {
		t.Errorf("Complex() = %v, want 1+2i", got)
	}
}

func TestAccessorPanicsOnWrongKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Integer() on a double should panic")
		}
	}()
	FromDouble(1.0).Integer()
}

func TestIsNumeric(t *testing.T) {
	if !FromInteger(1).IsNumeric() {
		t.Error("integer should be numeric")
	}
	if !FromDouble(1.0).IsNumeric() {
		t.Error("double should be numeric")
	}
	if FromCharacter("1").IsNumeric() {
		t.Error("character should not be numeric")
	}
}

// ---------------------------------------------------------------------------
// Shape
// ---------------------------------------------------------------------------

func TestWithDims(t *testing.T) {
	m := FromDouble(0).WithDims(2, 3)
	if !m.IsMatrix() {
		t.Error("2-D value should be a matrix")
	}
	if !m.IsArray() {
		t.Error("a matrix is also an array")
	}
	if got := m.Dims(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("Dims() = %v, want [2 3]", got)
	}

	a := FromInteger(0).WithDims(2, 3, 4)
	if a.IsMatrix() {
		t.Error("3-D value should not be a matrix")
	}
	if !a.IsArray() {
		t.Error("3-D value should be an array")
	}
}

func TestWithDimsLeavesOriginalUnshaped(t *testing.T) {
	v := FromDouble(1)
	_ = v.WithDims(2, 2)
	if v.IsArray() {
		t.Error("WithDims must not mutate its receiver")
	}
}

func TestWithDimsPanicsOnObjects(t *testing.T) {
	tag, err := NewTagObject(FromInteger(1), []string{"A"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if recover() == nil {
			t.Error("WithDims on a tag object should panic")
		}
	}()
	tag.ToValue().WithDims(2)
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Null, "NULL"},
		{FromLogical(true), "TRUE"},
		{FromLogical(false), "FALSE"},
		{FromInteger(7), "7L"},
		{FromCharacter("hi"), `"hi"`},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}
