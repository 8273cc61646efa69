package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// GenericDef: a generic function definition
// ---------------------------------------------------------------------------

// GenericKind selects which dispatch engine owns a generic.
type GenericKind uint8

const (
	// SingleDispatch resolves on the first argument's class sequence.
	SingleDispatch GenericKind = iota
	// MultiDispatch resolves on every dispatch argument's class.
	MultiDispatch
)

// String implements the Stringer interface.
func (k GenericKind) String() string {
	if k == MultiDispatch {
		return "multi"
	}
	return "single"
}

// sigKey is the method-table key for a signature.
// Class names never contain the separator.
const sigSep = "\x1f"

func sigKey(sig []string) string {
	return strings.Join(sig, sigSep)
}

// GenericDef holds a generic function's dispatch contract and its method
// table. The table maps a signature to exactly one implementation; a
// registration for an identical signature silently replaces the former.
type GenericDef struct {
	ID    uuid.UUID
	Name  string
	Kind  GenericKind
	Arity int // number of dispatch arguments (1 for single dispatch)

	mu          sync.RWMutex
	methods     map[string]*MethodImpl
	defaultImpl *MethodImpl
}

// Register adds or replaces the implementation for a signature.
// The signature must already be validated by the table.
func (g *GenericDef) register(impl *MethodImpl) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Kind == SingleDispatch && impl.Signature[0] == ClassDefault {
		g.defaultImpl = impl
		return
	}
	g.methods[sigKey(impl.Signature)] = impl
}

// lookup returns the implementation registered for the exact signature.
func (g *GenericDef) lookup(sig []string) *MethodImpl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.methods[sigKey(sig)]
}

// lookupClass returns the single-dispatch implementation for one class.
func (g *GenericDef) lookupClass(class string) *MethodImpl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.methods[class]
}

// Default returns the generic's default implementation, or nil.
func (g *GenericDef) Default() *MethodImpl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.defaultImpl
}

// SetDefault installs the fallback implementation used when no signature
// matches.
func (g *GenericDef) SetDefault(fn GenericFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.defaultImpl = NewMethodImpl([]string{ClassDefault}, fn)
}

// Methods returns every registered implementation, sorted by signature
// for deterministic introspection. The default implementation is not
// included.
func (g *GenericDef) Methods() []*MethodImpl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*MethodImpl, 0, len(g.methods))
	for _, m := range g.methods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return sigKey(out[i].Signature) < sigKey(out[j].Signature)
	})
	return out
}

// Remove deletes the implementation for a signature.
// Returns true if a method was removed.
func (g *GenericDef) Remove(sig []string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := sigKey(sig)
	if _, ok := g.methods[key]; !ok {
		return false
	}
	delete(g.methods, key)
	return true
}

// ---------------------------------------------------------------------------
// GenericTable: the generic registry
// ---------------------------------------------------------------------------

// GenericTable manages generic function definitions by name. Signature
// validation consults the class table the registry was built with.
type GenericTable struct {
	mu       sync.RWMutex
	generics map[string]*GenericDef
	classes  *ClassTable
}

// NewGenericTable creates an empty generic registry bound to a class table.
func NewGenericTable(classes *ClassTable) *GenericTable {
	return &GenericTable{
		generics: make(map[string]*GenericDef),
		classes:  classes,
	}
}

// Define registers a generic function, or returns the existing definition
// when name, kind, and arity all agree (permissive re-declaration).
//
// Fails with ErrRedefinition if a generic of the same name exists with a
// different kind or arity: changing either requires an explicit Remove
// first, which guards against silently replacing a live dispatch table.
func (gt *GenericTable) Define(name string, kind GenericKind, arity int) (*GenericDef, error) {
	if kind == SingleDispatch && arity != 1 {
		return nil, fmt.Errorf("%w: single-dispatch generic %q must have arity 1, got %d",
			ErrArityMismatch, name, arity)
	}
	if arity < 1 {
		return nil, fmt.Errorf("%w: generic %q must have arity >= 1, got %d",
			ErrArityMismatch, name, arity)
	}

	gt.mu.Lock()
	defer gt.mu.Unlock()

	if existing, ok := gt.generics[name]; ok {
		if existing.Kind != kind || existing.Arity != arity {
			return nil, fmt.Errorf("%w: %q is %s/%d, requested %s/%d",
				ErrRedefinition, name, existing.Kind, existing.Arity, kind, arity)
		}
		return existing, nil
	}

	g := &GenericDef{
		ID:      uuid.New(),
		Name:    name,
		Kind:    kind,
		Arity:   arity,
		methods: make(map[string]*MethodImpl),
	}
	gt.generics[name] = g
	return g, nil
}

// Remove deletes a generic and its whole method table.
// Returns true if a generic was removed.
func (gt *GenericTable) Remove(name string) bool {
	gt.mu.Lock()
	defer gt.mu.Unlock()
	if _, ok := gt.generics[name]; !ok {
		return false
	}
	delete(gt.generics, name)
	return true
}

// Lookup finds a generic by name, or nil.
func (gt *GenericTable) Lookup(name string) *GenericDef {
	gt.mu.RLock()
	defer gt.mu.RUnlock()
	return gt.generics[name]
}

// All returns all registered generic names, sorted.
func (gt *GenericTable) All() []string {
	gt.mu.RLock()
	defer gt.mu.RUnlock()
	names := make([]string, 0, len(gt.generics))
	for name := range gt.generics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterMethod validates a signature against the generic's contract and
// the class registry, then installs the implementation. An identical
// signature silently replaces the previous registration.
//
// Fails with ErrUnknownGeneric if the generic does not exist,
// ErrArityMismatch if the signature length disagrees with the dispatch
// arity, and ErrUnknownClassInSignature for unregistered class names
// (the ANY/missing wildcards and the single-dispatch "default" sentinel
// are exempt).
func (gt *GenericTable) RegisterMethod(name string, sig []string, fn GenericFunc) (*MethodImpl, error) {
	g := gt.Lookup(name)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGeneric, name)
	}
	if len(sig) != g.Arity {
		return nil, fmt.Errorf("%w: generic %q has arity %d, signature %s has length %d",
			ErrArityMismatch, name, g.Arity, SignatureString(sig), len(sig))
	}
	for i, class := range sig {
		if class == ClassAny {
			continue
		}
		if g.Kind == MultiDispatch && class == ClassMissing {
			continue
		}
		if g.Kind == SingleDispatch && class == ClassDefault {
			continue
		}
		if !gt.classes.Has(class) {
			return nil, fmt.Errorf("%w: %q at position %d of %s",
				ErrUnknownClassInSignature, class, i, SignatureString(sig))
		}
	}
	impl := NewMethodImpl(sig, fn)
	g.register(impl)
	return impl, nil
}
