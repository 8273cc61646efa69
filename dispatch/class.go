package dispatch

import (
	"fmt"
	"sort"
	"sync"
)

// ---------------------------------------------------------------------------
// ClassDef: a declared class
// ---------------------------------------------------------------------------

// ClassDef describes a formally declared class: its ordered parent list,
// its declared slots, and whether it is virtual (abstract, not directly
// instantiable).
type ClassDef struct {
	Name    string
	Parents []string          // ordered, most specific contribution first
	Slots   map[string]string // slot name -> constraint class ("" = unconstrained)
	Virtual bool
}

// AllSlots returns this class's slots merged with inherited ones.
// A slot declared locally shadows an inherited slot of the same name.
// The table is consulted for parent definitions.
func (ct *ClassTable) AllSlots(name string) (map[string]string, error) {
	chain, err := ct.Linearize(name)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]string)
	// Walk least specific first so more specific declarations win.
	for i := len(chain) - 1; i >= 0; i-- {
		def := ct.Lookup(chain[i])
		if def == nil {
			continue
		}
		for slot, constraint := range def.Slots {
			merged[slot] = constraint
		}
	}
	return merged, nil
}

// ---------------------------------------------------------------------------
// ClassTable: the class registry
// ---------------------------------------------------------------------------

// ClassTable stores class definitions and their cached linearizations.
// It's thread-safe for concurrent access: a single writer-exclusive lock
// protects both the definitions and the linearization cache, since
// redefinition mutates the cache.
type ClassTable struct {
	mu      sync.RWMutex
	defs    map[string]*ClassDef
	linear  map[string][]string // cached linearizations, keyed by class name
	version uint64              // bumped on every mutation
}

// NewClassTable creates a new empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{
		defs:   make(map[string]*ClassDef),
		linear: make(map[string][]string),
	}
}

// Define registers a new class.
//
// Fails with ErrDuplicateClass if the name is taken, ErrUnknownParent if
// any parent is unregistered, and ErrCyclicInheritance if the new edges
// would create a cycle (checked by reachability before insertion).
func (ct *ClassTable) Define(def *ClassDef) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	if _, ok := ct.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateClass, def.Name)
	}
	return ct.insertLocked(def)
}

// Redefine replaces an existing class definition (or registers a new one).
// Cached linearizations for the class and every descendant are discarded;
// objects constructed before the redefinition keep their captured class
// sequences and are not migrated.
func (ct *ClassTable) Redefine(def *ClassDef) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	old := ct.defs[def.Name]
	delete(ct.defs, def.Name) // so reachability checks see the new edges only
	if err := ct.insertLocked(def); err != nil {
		if old != nil {
			ct.defs[def.Name] = old
		}
		return err
	}
	ct.invalidateLocked(def.Name)
	return nil
}

// insertLocked validates parents and cycles, then installs the definition.
// Caller must hold the write lock.
func (ct *ClassTable) insertLocked(def *ClassDef) error {
	for _, p := range def.Parents {
		if _, ok := ct.defs[p]; !ok {
			return fmt.Errorf("%w: %s (parent of %s)", ErrUnknownParent, p, def.Name)
		}
		if ct.reachesLocked(p, def.Name) {
			return fmt.Errorf("%w: %s is already an ancestor of %s",
				ErrCyclicInheritance, def.Name, p)
		}
	}
	stored := &ClassDef{
		Name:    def.Name,
		Parents: append([]string(nil), def.Parents...),
		Virtual: def.Virtual,
	}
	if def.Slots != nil {
		stored.Slots = make(map[string]string, len(def.Slots))
		for k, v := range def.Slots {
			stored.Slots[k] = v
		}
	}
	ct.defs[def.Name] = stored
	ct.version++
	return nil
}

// reachesLocked reports whether target is reachable from the class `from`
// through parent edges. Caller must hold at least the read lock.
func (ct *ClassTable) reachesLocked(from, target string) bool {
	if from == target {
		return true
	}
	def, ok := ct.defs[from]
	if !ok {
		return false
	}
	for _, p := range def.Parents {
		if ct.reachesLocked(p, target) {
			return true
		}
	}
	return false
}

// invalidateLocked drops cached linearizations containing the named class.
// Caller must hold the write lock.
func (ct *ClassTable) invalidateLocked(name string) {
	for cached, chain := range ct.linear {
		for _, c := range chain {
			if c == name {
				delete(ct.linear, cached)
				break
			}
		}
	}
	delete(ct.linear, name)
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Lookup finds a class definition by name, or nil.
func (ct *ClassTable) Lookup(name string) *ClassDef {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.defs[name]
}

// Has returns true if a class with this name is registered.
func (ct *ClassTable) Has(name string) bool {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	_, ok := ct.defs[name]
	return ok
}

// All returns all registered class names, sorted.
func (ct *ClassTable) All() []string {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	names := make([]string, 0, len(ct.defs))
	for name := range ct.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered classes.
func (ct *ClassTable) Len() int {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return len(ct.defs)
}

// Version returns the mutation counter. It changes whenever a class is
// defined or redefined, so holders of derived data can cheaply detect
// staleness.
func (ct *ClassTable) Version() uint64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.version
}

// ---------------------------------------------------------------------------
// Linearization
// ---------------------------------------------------------------------------

// Linearize returns the ordered ancestor chain for a class, most specific
// first, beginning with the class itself. The traversal is depth-first
// and left-to-right over the ordered parent list, keeping the first
// occurrence of each duplicate. The chain terminates implicitly in ANY,
// which is not included.
//
// Results are cached until a mutation touches the class's ancestry, and a
// fresh copy is returned on every call: a previously returned chain is
// never mutated in place.
func (ct *ClassTable) Linearize(name string) ([]string, error) {
	ct.mu.RLock()
	if chain, ok := ct.linear[name]; ok {
		out := append([]string(nil), chain...)
		ct.mu.RUnlock()
		return out, nil
	}
	ct.mu.RUnlock()

	ct.mu.Lock()
	defer ct.mu.Unlock()
	if chain, ok := ct.linear[name]; ok {
		return append([]string(nil), chain...), nil
	}
	if _, ok := ct.defs[name]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, name)
	}
	var chain []string
	seen := make(map[string]bool)
	ct.walkLocked(name, seen, &chain)
	ct.linear[name] = chain
	return append([]string(nil), chain...), nil
}

// walkLocked performs the depth-first, left-to-right traversal.
// Duplicates keep their first (most specific) position.
func (ct *ClassTable) walkLocked(name string, seen map[string]bool, out *[]string) {
	if seen[name] {
		return
	}
	seen[name] = true
	*out = append(*out, name)
	def := ct.defs[name]
	if def == nil {
		return
	}
	for _, p := range def.Parents {
		ct.walkLocked(p, seen, out)
	}
}

// IsAncestor reports whether candidate appears in name's linearization.
// ANY is an ancestor of every class. A class is its own ancestor.
func (ct *ClassTable) IsAncestor(name, candidate string) (bool, error) {
	if candidate == ClassAny {
		return true, nil
	}
	chain, err := ct.Linearize(name)
	if err != nil {
		return false, err
	}
	for _, c := range chain {
		if c == candidate {
			return true, nil
		}
	}
	return false, nil
}

// Descendants returns the names of all registered classes whose
// linearization contains the given class, excluding the class itself.
func (ct *ClassTable) Descendants(name string) []string {
	var out []string
	for _, candidate := range ct.All() {
		if candidate == name {
			continue
		}
		if ok, err := ct.IsAncestor(candidate, name); err == nil && ok {
			out = append(out, candidate)
		}
	}
	return out
}
