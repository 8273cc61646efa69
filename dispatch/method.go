package dispatch

import (
	"github.com/google/uuid"
)

// GenericFunc is the Go implementation behind a generic's method.
//
// The call handle gives the body access to the runtime and to the
// "continue with the next-best method" operation; args is the full
// original argument list, passed unchanged by the engines.
type GenericFunc func(call *Call, args []Value) (Value, error)

// MethodImpl binds an implementation to the signature it was registered
// against. The ID is stable for the lifetime of the registration and is
// what introspection and tooling key on.
type MethodImpl struct {
	ID        uuid.UUID
	Signature []string
	Fn        GenericFunc
}

// NewMethodImpl creates a method implementation for a signature.
// The signature slice is copied.
func NewMethodImpl(signature []string, fn GenericFunc) *MethodImpl {
	return &MethodImpl{
		ID:        uuid.New(),
		Signature: append([]string(nil), signature...),
		Fn:        fn,
	}
}

// Call is the per-invocation handle passed to method bodies.
type Call struct {
	rt  *Runtime
	res *Resolution
}

// Runtime returns the owning runtime.
func (c *Call) Runtime() *Runtime { return c.rt }

// Generic returns the name of the generic being dispatched.
func (c *Call) Generic() string { return c.res.generic.Name }

// Signature returns the signature the engine matched.
func (c *Call) Signature() []string {
	return append([]string(nil), c.res.signature...)
}

// NextMethod resolves and invokes the implementation that would have been
// selected had the current one not existed, passing the given argument
// list. This is the explicit parent-delegation operation for generic
// dispatch; there is no implicit chaining.
func (c *Call) NextMethod(args []Value) (Value, error) {
	next, err := c.res.Next()
	if err != nil {
		return Null, err
	}
	return next.Invoke(args)
}

// ---------------------------------------------------------------------------
// Resolution: the handle returned by the dispatch engines
// ---------------------------------------------------------------------------

// resolutionKind selects which resume strategy a Resolution uses.
type resolutionKind uint8

const (
	resolvedSingle resolutionKind = iota
	resolvedMulti
	resolvedDefault // fell through to the generic's default impl
)

// Resolution is a resolved implementation handle plus the metadata needed
// for introspection and for resuming resolution at the next-best match.
type Resolution struct {
	rt        *Runtime
	generic   *GenericDef
	impl      *MethodImpl
	signature []string
	kind      resolutionKind

	// Single-dispatch resume state: the receiver's class sequence and
	// the index of the matched class within it.
	chain []string
	pos   int

	// Multi-dispatch resume state: candidates grouped by score,
	// best first, and the index of the currently selected group.
	groups   [][]*MethodImpl
	groupIdx int
}

// Impl returns the resolved method implementation.
func (r *Resolution) Impl() *MethodImpl { return r.impl }

// Signature returns the matched signature. For single dispatch it is the
// one-element matched class (or "default"); for multi dispatch it is the
// winning registered signature.
func (r *Resolution) Signature() []string {
	return append([]string(nil), r.signature...)
}

// Invoke runs the resolved implementation with the given argument list.
func (r *Resolution) Invoke(args []Value) (Value, error) {
	r.rt.profiler.Record(r.generic.Name, r.signature)
	return r.impl.Fn(&Call{rt: r.rt, res: r}, args)
}

// Next resolves the next-best implementation: for single dispatch, the
// first match after the currently matched class (then the default); for
// multi dispatch, the next score group (a tie inside that group is an
// ambiguity, never a guess). Fails with ErrNoApplicableMethod when the
// chain is exhausted.
func (r *Resolution) Next() (*Resolution, error) {
	switch r.kind {
	case resolvedSingle:
		return r.rt.resolveSingleFrom(r.generic, r.chain, r.pos+1)
	case resolvedMulti:
		return r.rt.resolveMultiGroup(r.generic, r.groups, r.groupIdx+1)
	default:
		return nil, noApplicableMethod(r.generic.Name)
	}
}
