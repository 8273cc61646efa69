package dispatch

// Implicit classification of primitive values.
//
// Primitives carry no class tag, so dispatch synthesizes one from shape
// and kind metadata. The sequence mirrors the documented class-vector
// order: shape tags first ("matrix" then "array" for 2-D shapes, "array"
// alone otherwise), the kind tag, then "numeric" for the numeric kinds.
// This path is kept entirely separate from explicit class tags so the two
// resolution sources never interfere.

// Class name sentinels recognized by the dispatch engines.
const (
	// ClassAny is the universal class implicitly terminating every
	// linearization. In a multi-dispatch signature it is a wildcard.
	ClassAny = "ANY"

	// ClassMissing matches an absent trailing argument in a
	// multi-dispatch signature.
	ClassMissing = "missing"

	// ClassDefault is the single-dispatch fallback pseudo-class.
	ClassDefault = "default"
)

// ImplicitClasses returns the synthesized class sequence for a primitive
// value, most specific first. Tag and ref objects are not handled here;
// use ClassesOf for the unified view.
func ImplicitClasses(v Value) []string {
	var classes []string

	if v.IsMatrix() {
		classes = append(classes, "matrix", "array")
	} else if v.IsArray() {
		classes = append(classes, "array")
	}

	classes = append(classes, v.kind.String())
	if v.IsNumeric() {
		classes = append(classes, "numeric")
	}
	return classes
}

// ClassesOf returns the ordered class sequence used for dispatch:
// the stored tag for tag/ref objects, the implicit classes otherwise.
func ClassesOf(v Value) []string {
	switch v.kind {
	case KindTagged:
		return v.tag.Classes()
	case KindRef:
		return v.ref.Classes()
	default:
		return ImplicitClasses(v)
	}
}
