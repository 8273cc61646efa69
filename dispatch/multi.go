package dispatch

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Multi-Dispatch Engine
// ---------------------------------------------------------------------------

// anyDistance is the per-position cost of an ANY wildcard match. It is
// larger than any concrete chain position, so an exact or inherited match
// always beats a wildcard at the same position.
const anyDistance = 1 << 20

// ResolveMulti resolves a multi-argument generic call against every
// dispatch argument's class sequence. Registered signatures are scored by
// the sum of per-position inheritance distances (0 = exact class, higher
// = further up the argument's chain, anyDistance for a wildcard); the
// minimum-sum signature wins.
//
// A tie for the minimum is an AmbiguityError naming the tied signatures —
// the engine never guesses. Absent trailing arguments match only the
// "missing" wildcard (or ANY).
func (rt *Runtime) ResolveMulti(generic string, args []Value) (*Resolution, error) {
	g := rt.generics.Lookup(generic)
	if g == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGeneric, generic)
	}
	if g.Kind != MultiDispatch {
		return nil, fmt.Errorf("generic %q is registered for %s dispatch", generic, g.Kind)
	}

	// Class sequences for the dispatch positions that are present.
	seqs := make([][]string, g.Arity)
	for i := 0; i < g.Arity && i < len(args); i++ {
		seqs[i] = ClassesOf(args[i])
	}

	type scored struct {
		impl  *MethodImpl
		total int
	}
	var matches []scored
	for _, impl := range g.Methods() {
		total, ok := scoreSignature(impl.Signature, seqs, len(args))
		if ok {
			matches = append(matches, scored{impl, total})
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w for generic %q", ErrNoApplicableMethod, g.Name)
	}

	// Group candidates by score, best first. Methods() is already in
	// deterministic signature order, and the sort is stable, so groups
	// have a reproducible internal order too.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].total < matches[j].total
	})
	var groups [][]*MethodImpl
	for i := 0; i < len(matches); {
		j := i
		for j < len(matches) && matches[j].total == matches[i].total {
			j++
		}
		group := make([]*MethodImpl, 0, j-i)
		for _, m := range matches[i:j] {
			group = append(group, m.impl)
		}
		groups = append(groups, group)
		i = j
	}

	return rt.resolveMultiGroup(g, groups, 0)
}

// scoreSignature computes the match score of one signature against the
// argument class sequences. Returns ok=false if any position fails to
// match.
func scoreSignature(sig []string, seqs [][]string, argc int) (int, bool) {
	total := 0
	for pos, class := range sig {
		absent := pos >= argc
		switch {
		case class == ClassAny:
			// ANY matches anything, present or absent, at a cost
			// that always loses to a concrete match.
			total += anyDistance
		case class == ClassMissing:
			if !absent {
				return 0, false
			}
		case absent:
			return 0, false
		default:
			d := chainIndex(seqs[pos], class)
			if d < 0 {
				return 0, false
			}
			total += d
		}
	}
	return total, true
}

// chainIndex returns the position of class within the sequence, or -1.
func chainIndex(chain []string, class string) int {
	for i, c := range chain {
		if c == class {
			return i
		}
	}
	return -1
}

// resolveMultiGroup selects the candidate group at the given rank.
// Shared by ResolveMulti and Resolution.Next.
func (rt *Runtime) resolveMultiGroup(g *GenericDef, groups [][]*MethodImpl, idx int) (*Resolution, error) {
	if idx >= len(groups) {
		return nil, noApplicableMethod(g.Name)
	}
	group := groups[idx]
	if len(group) > 1 {
		sigs := make([][]string, len(group))
		for i, m := range group {
			sigs[i] = append([]string(nil), m.Signature...)
		}
		return nil, &AmbiguityError{Generic: g.Name, Signatures: sigs}
	}
	impl := group[0]
	return &Resolution{
		rt:        rt,
		generic:   g,
		impl:      impl,
		signature: append([]string(nil), impl.Signature...),
		kind:      resolvedMulti,
		groups:    groups,
		groupIdx:  idx,
	}, nil
}

// CallMulti resolves and invokes a multi-dispatch generic with the full
// argument list.
func (rt *Runtime) CallMulti(generic string, args []Value) (Value, error) {
	res, err := rt.ResolveMulti(generic, args)
	if err != nil {
		return Null, err
	}
	return res.Invoke(args)
}
