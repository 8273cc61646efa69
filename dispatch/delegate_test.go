package dispatch

import (
	"errors"
	"testing"
)

// newAccountHierarchy builds Parent/Child classes where both define
// "describe" and only Parent defines "close".
func newAccountHierarchy(t *testing.T) *Runtime {
	t.Helper()
	rt := NewRuntime()
	if err := rt.DefineClass(&ClassDef{Name: "Parent"}); err != nil {
		t.Fatal(err)
	}
	if err := rt.DefineClass(&ClassDef{Name: "Child", Parents: []string{"Parent"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RegisterDelegatedMethod("Parent", "describe",
		func(call *DelegateCall, args []Value) (Value, error) {
			return FromCharacter("parent"), nil
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RegisterDelegatedMethod("Child", "describe",
		func(call *DelegateCall, args []Value) (Value, error) {
			return FromCharacter("child"), nil
		}); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RegisterDelegatedMethod("Parent", "close",
		func(call *DelegateCall, args []Value) (Value, error) {
			return FromCharacter("closed"), nil
		}); err != nil {
		t.Fatal(err)
	}
	return rt
}

func TestDelegationSelectsMostSpecificClass(t *testing.T) {
	rt := newAccountHierarchy(t)
	obj, err := rt.New("Child", nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := rt.Send(obj, "describe", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Character() != "child" {
		t.Errorf("describe = %q, want Child's %q", out.Character(), "child")
	}
}

func TestDelegationWalksParentChain(t *testing.T) {
	rt := newAccountHierarchy(t)
	obj, err := rt.New("Child", nil)
	if err != nil {
		t.Fatal(err)
	}

	out, err := rt.Send(obj, "close", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Character() != "closed" {
		t.Errorf("close = %q, want inherited %q", out.Character(), "closed")
	}
}

func TestDelegationNoSuchMethod(t *testing.T) {
	rt := newAccountHierarchy(t)
	obj, err := rt.New("Child", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = rt.Send(obj, "fly", nil)
	if !errors.Is(err, ErrNoSuchMethod) {
		t.Errorf("Send(fly) = %v, want ErrNoSuchMethod", err)
	}
}

func TestCallParentInvokesOverriddenMethod(t *testing.T) {
	rt := newAccountHierarchy(t)
	// Replace Child.describe with one that defers to the parent.
	if _, err := rt.RegisterDelegatedMethod("Child", "describe",
		func(call *DelegateCall, args []Value) (Value, error) {
			inner, err := call.CallParent(args)
			if err != nil {
				return Null, err
			}
			return FromCharacter("child of " + inner.Character()), nil
		}); err != nil {
		t.Fatal(err)
	}

	obj, err := rt.New("Child", nil)
	if err != nil {
		t.Fatal(err)
	}
	out, err := rt.Send(obj, "describe", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Character(); got != "child of parent" {
		t.Errorf("describe = %q, want parent-delegated result", got)
	}
}

func TestCallParentExhaustsChain(t *testing.T) {
	rt := newAccountHierarchy(t)
	if _, err := rt.RegisterDelegatedMethod("Parent", "describe",
		func(call *DelegateCall, args []Value) (Value, error) {
			return call.CallParent(args)
		}); err != nil {
		t.Fatal(err)
	}

	obj, err := rt.New("Parent", nil)
	if err != nil {
		t.Fatal(err)
	}
	_, err = rt.Send(obj, "describe", nil)
	if !errors.Is(err, ErrNoSuchMethod) {
		t.Errorf("exhausted parent chain = %v, want ErrNoSuchMethod", err)
	}
}

func TestDelegatedMethodMutatesReceiverInPlace(t *testing.T) {
	rt := NewRuntime()
	if err := rt.DefineClass(&ClassDef{
		Name:  "Account",
		Slots: map[string]string{"balance": "numeric"},
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RegisterDelegatedMethod("Account", "deposit",
		func(call *DelegateCall, args []Value) (Value, error) {
			bal, _ := call.Self().Get("balance")
			next := bal.Double() + args[0].Double()
			call.Self().Set("balance", FromDouble(next))
			return FromDouble(next), nil
		}); err != nil {
		t.Fatal(err)
	}

	obj, err := rt.New("Account", map[string]Value{"balance": FromDouble(0)})
	if err != nil {
		t.Fatal(err)
	}
	alias := obj

	if _, err := rt.Send(obj, "deposit", []Value{FromDouble(75)}); err != nil {
		t.Fatal(err)
	}
	got, _ := alias.Get("balance")
	if got.Double() != 75 {
		t.Errorf("alias sees balance %g, want 75 (mutation must be immediate)", got.Double())
	}
}

func TestDelegationRegisterUnknownClass(t *testing.T) {
	rt := NewRuntime()
	_, err := rt.RegisterDelegatedMethod("Ghost", "m",
		func(call *DelegateCall, args []Value) (Value, error) { return Null, nil })
	if !errors.Is(err, ErrUnknownClass) {
		t.Errorf("register on unknown class = %v, want ErrUnknownClass", err)
	}
}

func TestDelegationUsesCapturedChainForUnregisteredClasses(t *testing.T) {
	rt := NewRuntime()
	if err := rt.DefineClass(&ClassDef{Name: "Legacy"}); err != nil {
		t.Fatal(err)
	}
	if _, err := rt.RegisterDelegatedMethod("Legacy", "describe",
		func(call *DelegateCall, args []Value) (Value, error) {
			return FromCharacter("legacy"), nil
		}); err != nil {
		t.Fatal(err)
	}

	// An object whose most specific class was never registered still
	// resolves through the rest of its captured chain.
	obj, err := NewRefObject(nil, []string{"Orphan", "Legacy"})
	if err != nil {
		t.Fatal(err)
	}
	out, err := rt.Send(obj, "describe", nil)
	if err != nil {
		t.Fatal(err)
	}
	if out.Character() != "legacy" {
		t.Errorf("describe = %q, want %q via captured chain", out.Character(), "legacy")
	}
}

func TestDelegationOwnerClass(t *testing.T) {
	rt := newAccountHierarchy(t)
	obj, err := rt.New("Child", nil)
	if err != nil {
		t.Fatal(err)
	}
	call, err := rt.ResolveDelegated(obj, "close")
	if err != nil {
		t.Fatal(err)
	}
	if call.OwnerClass() != "Parent" {
		t.Errorf("OwnerClass() = %q, want Parent", call.OwnerClass())
	}
}
