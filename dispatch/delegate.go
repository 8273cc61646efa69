package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Delegation Engine: message passing on mutable objects
// ---------------------------------------------------------------------------

// DelegatedFunc is the Go implementation of a class-owned method. The
// call handle exposes the receiver (whose fields are mutable in place and
// immediately visible to all holders) and the explicit parent-call
// operation.
type DelegatedFunc func(call *DelegateCall, args []Value) (Value, error)

// DelegatedMethod is one entry in a class's own method table. Unlike
// generic methods, it belongs to the class, not to a free-standing
// generic.
type DelegatedMethod struct {
	ID    uuid.UUID
	Class string
	Name  string
	Fn    DelegatedFunc
}

// DelegationTable holds the per-class method tables used by message
// dispatch on RefObjects. It is distinct from the generic registry.
type DelegationTable struct {
	mu      sync.RWMutex
	methods map[string]map[string]*DelegatedMethod // class -> method name -> method
	classes *ClassTable
}

// NewDelegationTable creates an empty delegation table bound to a class
// table.
func NewDelegationTable(classes *ClassTable) *DelegationTable {
	return &DelegationTable{
		methods: make(map[string]map[string]*DelegatedMethod),
		classes: classes,
	}
}

// Register installs a method on a class. The class must be registered.
// Registering the same name again silently replaces the previous method.
func (dt *DelegationTable) Register(class, name string, fn DelegatedFunc) (*DelegatedMethod, error) {
	if !dt.classes.Has(class) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	m := &DelegatedMethod{
		ID:    uuid.New(),
		Class: class,
		Name:  name,
		Fn:    fn,
	}
	dt.mu.Lock()
	defer dt.mu.Unlock()
	if dt.methods[class] == nil {
		dt.methods[class] = make(map[string]*DelegatedMethod)
	}
	dt.methods[class][name] = m
	return m, nil
}

// Remove deletes a method from a class's table.
// Returns true if a method was removed.
func (dt *DelegationTable) Remove(class, name string) bool {
	dt.mu.Lock()
	defer dt.mu.Unlock()
	table, ok := dt.methods[class]
	if !ok {
		return false
	}
	if _, ok := table[name]; !ok {
		return false
	}
	delete(table, name)
	return true
}

// lookup finds the method a single class (not its ancestors) owns.
func (dt *DelegationTable) lookup(class, name string) *DelegatedMethod {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	return dt.methods[class][name]
}

// MethodNames returns the sorted method names a class itself owns.
func (dt *DelegationTable) MethodNames(class string) []string {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	names := make([]string, 0, len(dt.methods[class]))
	for name := range dt.methods[class] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classes returns the sorted names of classes owning at least one method.
func (dt *DelegationTable) Classes() []string {
	dt.mu.RLock()
	defer dt.mu.RUnlock()
	names := make([]string, 0, len(dt.methods))
	for class, table := range dt.methods {
		if len(table) > 0 {
			names = append(names, class)
		}
	}
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// DelegateCall: resolution handle and in-method context
// ---------------------------------------------------------------------------

// DelegateCall is both the handle returned by ResolveDelegated and the
// context passed to an executing method body.
type DelegateCall struct {
	rt     *Runtime
	self   *RefObject
	name   string
	chain  []string
	pos    int
	method *DelegatedMethod
}

// Runtime returns the owning runtime.
func (c *DelegateCall) Runtime() *Runtime { return c.rt }

// Self returns the receiver.
func (c *DelegateCall) Self() *RefObject { return c.self }

// Method returns the resolved method.
func (c *DelegateCall) Method() *DelegatedMethod { return c.method }

// OwnerClass returns the class in the linearization that owns the
// resolved method.
func (c *DelegateCall) OwnerClass() string { return c.chain[c.pos] }

// Invoke runs the resolved method. The receiver's fields are bound as
// mutable in-place state.
func (c *DelegateCall) Invoke(args []Value) (Value, error) {
	return c.method.Fn(c, args)
}

// CallParent resolves and invokes the implementation the immediate parent
// chain would have used for this method name, continuing the same
// linearization walk from just past the currently executing class. Only
// meaningful from within an executing method body.
func (c *DelegateCall) CallParent(args []Value) (Value, error) {
	next, err := c.rt.resolveDelegatedFrom(c.self, c.name, c.chain, c.pos+1)
	if err != nil {
		return Null, err
	}
	return next.Invoke(args)
}

// ---------------------------------------------------------------------------
// Runtime entry points
// ---------------------------------------------------------------------------

// ResolveDelegated resolves a message send on a RefObject: the object's
// most specific class is linearized and the walk selects the first class
// owning the method. Fails with ErrNoSuchMethod when no class in the
// chain defines it.
func (rt *Runtime) ResolveDelegated(obj *RefObject, name string) (*DelegateCall, error) {
	return rt.resolveDelegatedFrom(obj, name, rt.delegationChain(obj), 0)
}

// delegationChain returns the walk order for an object: the registry
// linearization of its most specific class when that class is registered,
// the captured class sequence otherwise (stale tags stay valid under
// their captured chain).
func (rt *Runtime) delegationChain(obj *RefObject) []string {
	classes := obj.Classes()
	if chain, err := rt.classes.Linearize(classes[0]); err == nil {
		return chain
	}
	return classes
}

func (rt *Runtime) resolveDelegatedFrom(obj *RefObject, name string, chain []string, start int) (*DelegateCall, error) {
	for i := start; i < len(chain); i++ {
		if m := rt.delegates.lookup(chain[i], name); m != nil {
			return &DelegateCall{
				rt:     rt,
				self:   obj,
				name:   name,
				chain:  chain,
				pos:    i,
				method: m,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on classes %s",
		ErrNoSuchMethod, name, SignatureString(chain))
}

// Send resolves and invokes a message on a RefObject.
func (rt *Runtime) Send(obj *RefObject, name string, args []Value) (Value, error) {
	call, err := rt.ResolveDelegated(obj, name)
	if err != nil {
		return Null, err
	}
	return call.Invoke(args)
}
