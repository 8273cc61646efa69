package dispatch

import (
	"fmt"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Introspection: registry and value reports for external tooling
// ---------------------------------------------------------------------------

// MethodInfo describes one registered method of a generic.
type MethodInfo struct {
	Generic   string
	Signature []string
	ImplID    uuid.UUID
	Default   bool
}

// MethodsFor lists every method registered on a generic, sorted by
// signature, with the default implementation (if any) last.
func (rt *Runtime) MethodsFor(generic string) ([]MethodInfo, error) {
	g := rt.generics.Lookup(generic)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGeneric, generic)
	}
	var infos []MethodInfo
	for _, m := range g.Methods() {
		infos = append(infos, MethodInfo{
			Generic:   generic,
			Signature: append([]string(nil), m.Signature...),
			ImplID:    m.ID,
		})
	}
	if def := g.Default(); def != nil {
		infos = append(infos, MethodInfo{
			Generic:   generic,
			Signature: []string{ClassDefault},
			ImplID:    def.ID,
			Default:   true,
		})
	}
	return infos, nil
}

// ReachableMethods lists the methods of a generic that an instance of the
// given class could reach: for single dispatch, the methods along the
// class's linearization in resolution order plus the default; for multi
// dispatch, every method whose signature mentions the class, one of its
// ancestors, or a wildcard in some position.
func (rt *Runtime) ReachableMethods(generic, class string) ([]MethodInfo, error) {
	g := rt.generics.Lookup(generic)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGeneric, generic)
	}
	chain, err := rt.classes.Linearize(class)
	if err != nil {
		return nil, err
	}

	var infos []MethodInfo
	if g.Kind == SingleDispatch {
		for _, c := range chain {
			if m := g.lookupClass(c); m != nil {
				infos = append(infos, MethodInfo{
					Generic:   generic,
					Signature: []string{c},
					ImplID:    m.ID,
				})
			}
		}
		if def := g.Default(); def != nil {
			infos = append(infos, MethodInfo{
				Generic:   generic,
				Signature: []string{ClassDefault},
				ImplID:    def.ID,
				Default:   true,
			})
		}
		return infos, nil
	}

	inChain := make(map[string]bool, len(chain))
	for _, c := range chain {
		inChain[c] = true
	}
	for _, m := range g.Methods() {
		for _, sc := range m.Signature {
			if sc == ClassAny || inChain[sc] {
				infos = append(infos, MethodInfo{
					Generic:   generic,
					Signature: append([]string(nil), m.Signature...),
					ImplID:    m.ID,
				})
				break
			}
		}
	}
	return infos, nil
}

// ---------------------------------------------------------------------------
// Value classification
// ---------------------------------------------------------------------------

// ValueSource says where a value's class sequence comes from.
type ValueSource string

const (
	SourceTag       ValueSource = "tag"       // explicit tag, value semantics
	SourceRef       ValueSource = "ref"       // explicit tag, reference semantics
	SourcePrimitive ValueSource = "primitive" // implicit, synthesized from kind/shape
)

// ValueReport describes how dispatch sees a value.
type ValueReport struct {
	Kind    string
	Classes []string
	Source  ValueSource
}

// Classify reports a value's class sequence and its provenance.
func Classify(v Value) ValueReport {
	report := ValueReport{
		Kind:    v.Kind().String(),
		Classes: ClassesOf(v),
	}
	switch v.Kind() {
	case KindTagged:
		report.Source = SourceTag
	case KindRef:
		report.Source = SourceRef
	default:
		report.Source = SourcePrimitive
	}
	return report
}
