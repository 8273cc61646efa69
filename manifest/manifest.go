// Package manifest handles trellis.toml schema configuration.
//
// A manifest declares the classes, generics, and delegated-method names a
// host wants preloaded into a runtime. Implementations are Go functions
// and cannot live in configuration; the manifest only establishes the
// dispatch structure they attach to.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/chazu/trellis/dispatch"
)

// Manifest represents a trellis.toml schema configuration.
type Manifest struct {
	Project  Project       `toml:"project"`
	Classes  []ClassDecl   `toml:"class"`
	Generics []GenericDecl `toml:"generic"`

	// Dir is the directory containing the trellis.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// ClassDecl declares one class. Parents must be declared (or built in)
// before the classes that inherit from them; declaration order in the
// file is registration order.
type ClassDecl struct {
	Name    string            `toml:"name"`
	Parents []string          `toml:"parents"`
	Slots   map[string]string `toml:"slots"`
	Virtual bool              `toml:"virtual"`
	Methods []string          `toml:"methods"` // delegated-method names owned by this class
}

// GenericDecl declares one generic function.
type GenericDecl struct {
	Name  string `toml:"name"`
	Kind  string `toml:"kind"` // "single" or "multi"
	Arity int    `toml:"arity"`
}

// Load parses a trellis.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "trellis.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a trellis.toml file, then
// loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "trellis.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Kind resolves the declared dispatch kind, defaulting to single.
func (g *GenericDecl) DispatchKind() (dispatch.GenericKind, error) {
	switch g.Kind {
	case "", "single":
		return dispatch.SingleDispatch, nil
	case "multi":
		return dispatch.MultiDispatch, nil
	default:
		return 0, fmt.Errorf("generic %q: unknown kind %q", g.Name, g.Kind)
	}
}

// Apply registers every declared class and generic on the runtime, in
// declaration order. Declared method names are registered as stubs that
// fail until the host binds a real implementation; this keeps the
// introspection surface complete even before binding.
func (m *Manifest) Apply(rt *dispatch.Runtime) error {
	for _, c := range m.Classes {
		def := &dispatch.ClassDef{
			Name:    c.Name,
			Parents: c.Parents,
			Slots:   c.Slots,
			Virtual: c.Virtual,
		}
		if err := rt.DefineClass(def); err != nil {
			return fmt.Errorf("class %s: %w", c.Name, err)
		}
		for _, name := range c.Methods {
			if _, err := rt.RegisterDelegatedMethod(c.Name, name, unboundMethod(c.Name, name)); err != nil {
				return fmt.Errorf("class %s method %s: %w", c.Name, name, err)
			}
		}
	}
	for _, g := range m.Generics {
		kind, err := g.DispatchKind()
		if err != nil {
			return err
		}
		arity := g.Arity
		if arity == 0 {
			arity = 1
		}
		if _, err := rt.DefineGeneric(g.Name, kind, arity); err != nil {
			return fmt.Errorf("generic %s: %w", g.Name, err)
		}
	}
	return nil
}

// unboundMethod is the placeholder installed for declared-but-unbound
// delegated methods.
func unboundMethod(class, name string) dispatch.DelegatedFunc {
	return func(call *dispatch.DelegateCall, args []dispatch.Value) (dispatch.Value, error) {
		return dispatch.Null, fmt.Errorf("method %s.%s is declared in the manifest but not bound", class, name)
	}
}
