package dispatch

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// Runtime ties the registries and engines together: one class table, one
// generic registry, one delegation table, and a dispatch profiler. All
// resolution is a pure, synchronous computation over registry state; the
// registries carry their own reader/writer locks, so a Runtime may be
// shared across goroutines.
type Runtime struct {
	classes   *ClassTable
	generics  *GenericTable
	delegates *DelegationTable
	profiler  *Profiler
	log       commonlog.Logger
}

// builtinClasses are the implicit classes of primitive values, registered
// up front so methods can be attached to them like any declared class.
// Order matters: parents before children.
var builtinClasses = []*ClassDef{
	{Name: "NULL"},
	{Name: "logical"},
	{Name: "character"},
	{Name: "complex"},
	{Name: "list"},
	{Name: "numeric", Virtual: true},
	{Name: "integer", Parents: []string{"numeric"}},
	{Name: "double", Parents: []string{"numeric"}},
	{Name: "array", Virtual: true},
	{Name: "matrix", Parents: []string{"array"}},
}

// NewRuntime creates a runtime with the built-in primitive classes
// registered.
func NewRuntime() *Runtime {
	rt := &Runtime{
		classes:  NewClassTable(),
		profiler: NewProfiler(),
		log:      commonlog.GetLogger("trellis.runtime"),
	}
	rt.generics = NewGenericTable(rt.classes)
	rt.delegates = NewDelegationTable(rt.classes)

	for _, def := range builtinClasses {
		if err := rt.classes.Define(def); err != nil {
			panic(fmt.Sprintf("dispatch: builtin class %s: %v", def.Name, err))
		}
	}
	return rt
}

// Classes returns the class registry.
func (rt *Runtime) Classes() *ClassTable { return rt.classes }

// Generics returns the generic registry.
func (rt *Runtime) Generics() *GenericTable { return rt.generics }

// Delegates returns the delegation table.
func (rt *Runtime) Delegates() *DelegationTable { return rt.delegates }

// Profiler returns the dispatch profiler.
func (rt *Runtime) Profiler() *Profiler { return rt.profiler }

// ---------------------------------------------------------------------------
// Registration API
// ---------------------------------------------------------------------------

// DefineClass registers a new class.
func (rt *Runtime) DefineClass(def *ClassDef) error {
	if err := rt.classes.Define(def); err != nil {
		return err
	}
	rt.log.Debugf("defined class %s, parents %v", def.Name, def.Parents)
	if len(def.Parents) > 1 {
		rt.log.Infof("class %s has multiple parents; diamond ambiguity is resolved by declaration order", def.Name)
	}
	return nil
}

// RedefineClass replaces a class definition. Already-constructed objects
// keep the class sequences they captured; this is a documented hazard,
// not an error.
func (rt *Runtime) RedefineClass(def *ClassDef) error {
	if err := rt.classes.Redefine(def); err != nil {
		return err
	}
	rt.log.Infof("redefined class %s; existing instances keep their captured class chains", def.Name)
	return nil
}

// DefineGeneric registers a generic function.
func (rt *Runtime) DefineGeneric(name string, kind GenericKind, arity int) (*GenericDef, error) {
	g, err := rt.generics.Define(name, kind, arity)
	if err != nil {
		return nil, err
	}
	rt.log.Debugf("defined %s-dispatch generic %s/%d", kind, name, arity)
	return g, nil
}

// RemoveGeneric deletes a generic and its method table, allowing it to be
// redefined with a different kind or arity.
func (rt *Runtime) RemoveGeneric(name string) bool {
	removed := rt.generics.Remove(name)
	if removed {
		rt.log.Infof("removed generic %s and its method table", name)
	}
	return removed
}

// RegisterMethod installs an implementation for a signature on a generic.
func (rt *Runtime) RegisterMethod(generic string, sig []string, fn GenericFunc) (*MethodImpl, error) {
	return rt.generics.RegisterMethod(generic, sig, fn)
}

// RemoveMethod deletes the implementation for one signature of a generic.
// Returns true if a method was removed.
func (rt *Runtime) RemoveMethod(generic string, sig []string) bool {
	g := rt.generics.Lookup(generic)
	if g == nil {
		return false
	}
	return g.Remove(sig)
}

// SetDefault installs a generic's fallback implementation.
func (rt *Runtime) SetDefault(generic string, fn GenericFunc) error {
	g := rt.generics.Lookup(generic)
	if g == nil {
		return fmt.Errorf("%w: %s", ErrUnknownGeneric, generic)
	}
	g.SetDefault(fn)
	return nil
}

// RegisterDelegatedMethod installs a class-owned method used by message
// dispatch on RefObjects.
func (rt *Runtime) RegisterDelegatedMethod(class, name string, fn DelegatedFunc) (*DelegatedMethod, error) {
	return rt.delegates.Register(class, name, fn)
}

// ---------------------------------------------------------------------------
// Construction API
// ---------------------------------------------------------------------------

// New constructs a RefObject of a registered, non-virtual class. The
// class linearization is captured at construction time: redefining the
// class later does not migrate the object. Declared slots absent from
// fields are initialized to Null; undeclared fields are rejected; slot
// constraints are checked against the value's class sequence.
func (rt *Runtime) New(class string, fields map[string]Value) (*RefObject, error) {
	def := rt.classes.Lookup(class)
	if def == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if def.Virtual {
		return nil, fmt.Errorf("class %s is virtual and cannot be instantiated", class)
	}
	chain, err := rt.classes.Linearize(class)
	if err != nil {
		return nil, err
	}
	slots, err := rt.classes.AllSlots(class)
	if err != nil {
		return nil, err
	}

	init := make(map[string]Value, len(slots))
	for slot := range slots {
		init[slot] = Null
	}
	for name, v := range fields {
		constraint, declared := slots[name]
		if !declared {
			return nil, fmt.Errorf("class %s has no slot %q", class, name)
		}
		if err := rt.checkConstraint(name, v, constraint); err != nil {
			return nil, err
		}
		init[name] = v
	}
	return NewRefObject(init, chain)
}

// NewTagged constructs a TagObject of a registered class, capturing the
// class linearization as the tag.
func (rt *Runtime) NewTagged(class string, payload Value) (*TagObject, error) {
	chain, err := rt.classes.Linearize(class)
	if err != nil {
		return nil, err
	}
	return NewTagObject(payload, chain)
}

// Retag attaches an arbitrary class sequence to a value's payload with no
// registry checks. This reinterprets, it does not construct: callers who
// want checked construction should use NewTagged. Unsafe by convention.
func (rt *Runtime) Retag(v Value, classes []string) (*TagObject, error) {
	payload := v
	if v.IsTag() {
		payload = v.Tag().Payload()
	}
	return NewTagObject(payload, classes)
}

// checkConstraint verifies a slot value against its declared class
// constraint. Null always satisfies (the uninitialized state).
func (rt *Runtime) checkConstraint(slot string, v Value, constraint string) error {
	if constraint == "" || constraint == ClassAny || v.IsNull() {
		return nil
	}
	classes := ClassesOf(v)
	for _, c := range classes {
		if c == constraint {
			return nil
		}
	}
	if len(classes) > 0 && rt.classes.Has(classes[0]) {
		if ok, err := rt.classes.IsAncestor(classes[0], constraint); err == nil && ok {
			return nil
		}
	}
	return fmt.Errorf("slot %q requires class %s, got %s",
		slot, constraint, SignatureString(classes))
}
