package dispatch

import "fmt"

// ---------------------------------------------------------------------------
// Single-Dispatch Engine
// ---------------------------------------------------------------------------

// ResolveSingle resolves a one-argument generic call against the
// receiver's ordered class sequence: stored classes for tag/ref objects,
// implicit classes for primitives. The first class with a registered
// method wins; the generic's default implementation is the fallback.
//
// The returned Resolution supports Next(), which continues resolution
// from the class after the matched one — the explicit "call the version
// that would otherwise have been used" operation. The engine itself never
// chains implicitly.
func (rt *Runtime) ResolveSingle(generic string, receiver Value) (*Resolution, error) {
	g := rt.generics.Lookup(generic)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGeneric, generic)
	}
	if g.Kind != SingleDispatch {
		return nil, fmt.Errorf("generic %q is registered for %s dispatch", generic, g.Kind)
	}
	return rt.resolveSingleFrom(g, ClassesOf(receiver), 0)
}

// resolveSingleFrom walks the class sequence starting at the given
// position. Shared by ResolveSingle and Resolution.Next.
func (rt *Runtime) resolveSingleFrom(g *GenericDef, chain []string, start int) (*Resolution, error) {
	for i := start; i < len(chain); i++ {
		if impl := g.lookupClass(chain[i]); impl != nil {
			return &Resolution{
				rt:        rt,
				generic:   g,
				impl:      impl,
				signature: []string{chain[i]},
				kind:      resolvedSingle,
				chain:     chain,
				pos:       i,
			}, nil
		}
	}
	if def := g.Default(); def != nil {
		return &Resolution{
			rt:        rt,
			generic:   g,
			impl:      def,
			signature: []string{ClassDefault},
			kind:      resolvedDefault,
		}, nil
	}
	return nil, fmt.Errorf("%w for generic %q on classes %s",
		ErrNoApplicableMethod, g.Name, SignatureString(chain))
}

// CallSingle resolves and invokes a single-dispatch generic. The first
// argument is the dispatch receiver; the full argument list is passed to
// the implementation unchanged.
func (rt *Runtime) CallSingle(generic string, args []Value) (Value, error) {
	if len(args) == 0 {
		return Null, fmt.Errorf("%w: generic %q called with no arguments",
			ErrArityMismatch, generic)
	}
	res, err := rt.ResolveSingle(generic, args[0])
	if err != nil {
		return Null, err
	}
	return res.Invoke(args)
}
