package dispatch

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Registry-construction and registration errors are
// surfaced to the caller and never retried; resolution errors are typed
// so callers can pick their own fallback policy. The runtime never
// silently picks an arbitrary candidate among ties.
var (
	// Registry construction.
	ErrDuplicateClass    = errors.New("duplicate class")
	ErrUnknownParent     = errors.New("unknown parent")
	ErrCyclicInheritance = errors.New("cyclic inheritance")
	ErrUnknownClass      = errors.New("unknown class")
	ErrUnknownGeneric    = errors.New("unknown generic")

	// Registration-time contract violations.
	ErrRedefinition            = errors.New("incompatible generic redefinition")
	ErrArityMismatch           = errors.New("signature arity mismatch")
	ErrUnknownClassInSignature = errors.New("unknown class in signature")

	// Resolution time.
	ErrNoApplicableMethod = errors.New("no applicable method")
	ErrAmbiguousDispatch  = errors.New("ambiguous dispatch")
	ErrNoSuchMethod       = errors.New("no such method")
)

// AmbiguityError reports a multi-dispatch tie. It satisfies
// errors.Is(err, ErrAmbiguousDispatch) and names every tied signature so
// the caller can disambiguate by registering a more specific method.
type AmbiguityError struct {
	Generic    string
	Signatures [][]string
}

func (e *AmbiguityError) Error() string {
	sigs := make([]string, len(e.Signatures))
	for i, s := range e.Signatures {
		sigs[i] = SignatureString(s)
	}
	return fmt.Sprintf("ambiguous dispatch for %q: tied signatures %s",
		e.Generic, strings.Join(sigs, " and "))
}

// Is reports whether target is the ambiguous-dispatch sentinel.
func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguousDispatch
}

// noApplicableMethod builds the standard exhausted-resolution error.
func noApplicableMethod(generic string) error {
	return fmt.Errorf("%w for generic %q", ErrNoApplicableMethod, generic)
}

// SignatureString renders a signature as "(A, B)".
func SignatureString(sig []string) string {
	return "(" + strings.Join(sig, ", ") + ")"
}
