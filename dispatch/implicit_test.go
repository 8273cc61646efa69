package dispatch

import (
	"reflect"
	"testing"
)

func TestImplicitClassesScalars(t *testing.T) {
	cases := []struct {
		v    Value
		want []string
	}{
		{Null, []string{"NULL"}},
		{FromLogical(true), []string{"logical"}},
		{FromInteger(1), []string{"integer", "numeric"}},
		{FromDouble(1.5), []string{"double", "numeric"}},
		{FromComplex(1i), []string{"complex"}},
		{FromCharacter("a"), []string{"character"}},
		{FromList(nil), []string{"list"}},
	}
	for _, c := range cases {
		if got := ImplicitClasses(c.v); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ImplicitClasses(%s) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestImplicitClassesShaped(t *testing.T) {
	m := FromInteger(0).WithDims(2, 2)
	want := []string{"matrix", "array", "integer", "numeric"}
	if got := ImplicitClasses(m); !reflect.DeepEqual(got, want) {
		t.Errorf("ImplicitClasses(2-D integer) = %v, want %v", got, want)
	}

	a := FromDouble(0).WithDims(2, 2, 2)
	want = []string{"array", "double", "numeric"}
	if got := ImplicitClasses(a); !reflect.DeepEqual(got, want) {
		t.Errorf("ImplicitClasses(3-D double) = %v, want %v", got, want)
	}
}

func TestClassesOfPrefersStoredTags(t *testing.T) {
	tag, err := NewTagObject(FromInteger(1), []string{"Dog", "Animal"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ClassesOf(tag.ToValue()); !reflect.DeepEqual(got, []string{"Dog", "Animal"}) {
		t.Errorf("ClassesOf(tag) = %v, want stored classes", got)
	}

	ref, err := NewRefObject(nil, []string{"Account"})
	if err != nil {
		t.Fatal(err)
	}
	if got := ClassesOf(ref.ToValue()); !reflect.DeepEqual(got, []string{"Account"}) {
		t.Errorf("ClassesOf(ref) = %v, want stored classes", got)
	}

	// Primitives fall through to the implicit path.
	if got := ClassesOf(FromDouble(1)); !reflect.DeepEqual(got, []string{"double", "numeric"}) {
		t.Errorf("ClassesOf(double) = %v, want implicit classes", got)
	}
}
