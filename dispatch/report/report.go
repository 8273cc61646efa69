// Package report builds machine-readable snapshots of a runtime's
// registries for external tooling. A report is a read-only description of
// classes, generics, and delegated methods; it carries no implementations
// and cannot be loaded back into a runtime.
package report

import (
	"github.com/chazu/trellis/dispatch"
)

// Report is a point-in-time description of a runtime's registries.
type Report struct {
	Classes   []ClassInfo     `cbor:"classes"`
	Generics  []GenericInfo   `cbor:"generics"`
	Delegated []DelegatedInfo `cbor:"delegated"`
}

// ClassInfo describes one registered class.
type ClassInfo struct {
	Name          string            `cbor:"name"`
	Parents       []string          `cbor:"parents"`
	Slots         map[string]string `cbor:"slots,omitempty"`
	Virtual       bool              `cbor:"virtual,omitempty"`
	Linearization []string          `cbor:"linearization"`
}

// GenericInfo describes one generic and its registered signatures.
type GenericInfo struct {
	Name       string     `cbor:"name"`
	Kind       string     `cbor:"kind"`
	Arity      int        `cbor:"arity"`
	Signatures [][]string `cbor:"signatures"`
	HasDefault bool       `cbor:"has-default,omitempty"`
}

// DelegatedInfo describes the methods a class itself owns.
type DelegatedInfo struct {
	Class   string   `cbor:"class"`
	Methods []string `cbor:"methods"`
}

// Build snapshots the given runtime. Registry iteration order is sorted,
// so two builds over identical registries produce identical reports.
func Build(rt *dispatch.Runtime) (*Report, error) {
	r := &Report{}

	for _, name := range rt.Classes().All() {
		def := rt.Classes().Lookup(name)
		if def == nil {
			continue
		}
		chain, err := rt.Classes().Linearize(name)
		if err != nil {
			return nil, err
		}
		info := ClassInfo{
			Name:          def.Name,
			Parents:       def.Parents,
			Virtual:       def.Virtual,
			Linearization: chain,
		}
		if len(def.Slots) > 0 {
			info.Slots = def.Slots
		}
		r.Classes = append(r.Classes, info)
	}

	for _, name := range rt.Generics().All() {
		g := rt.Generics().Lookup(name)
		if g == nil {
			continue
		}
		info := GenericInfo{
			Name:       g.Name,
			Kind:       g.Kind.String(),
			Arity:      g.Arity,
			HasDefault: g.Default() != nil,
		}
		for _, m := range g.Methods() {
			info.Signatures = append(info.Signatures, m.Signature)
		}
		r.Generics = append(r.Generics, info)
	}

	for _, class := range rt.Delegates().Classes() {
		r.Delegated = append(r.Delegated, DelegatedInfo{
			Class:   class,
			Methods: rt.Delegates().MethodNames(class),
		})
	}
	return r, nil
}
