package dispatch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ---------------------------------------------------------------------------
// TagObject: a value plus an ordered class tag (value semantics)
// ---------------------------------------------------------------------------

// TagObject attaches an ordered class sequence to an otherwise untyped
// payload. A TagObject is frozen after construction: every "mutation"
// returns a fresh object, so sharing the pointer inside a Value preserves
// value semantics.
type TagObject struct {
	payload Value
	classes []string
}

// NewTagObject creates a tag object with the given payload and class
// sequence, most specific class first. The class list must be non-empty.
func NewTagObject(payload Value, classes []string) (*TagObject, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("tag object: empty class sequence")
	}
	return &TagObject{
		payload: payload,
		classes: append([]string(nil), classes...),
	}, nil
}

// Payload returns the wrapped value.
func (t *TagObject) Payload() Value { return t.payload }

// Classes returns a copy of the ordered class sequence.
func (t *TagObject) Classes() []string {
	return append([]string(nil), t.classes...)
}

// Retag returns a new TagObject with the same payload and a different
// class sequence. This is the deliberate "reinterpret the tag" escape
// hatch; construction through a registry should be preferred.
func (t *TagObject) Retag(classes []string) (*TagObject, error) {
	return NewTagObject(t.payload, classes)
}

// ToValue wraps the tag object in a Value.
func (t *TagObject) ToValue() Value {
	return Value{kind: KindTagged, tag: t}
}

// String implements the Stringer interface.
func (t *TagObject) String() string {
	return fmt.Sprintf("<%s>%s", strings.Join(t.classes, ","), t.payload.String())
}

// ---------------------------------------------------------------------------
// RefObject: a shared, mutable field map (reference semantics)
// ---------------------------------------------------------------------------

// RefObject is the one deliberately aliasable entity in the model: every
// holder of the pointer observes mutations made by any other holder.
// Field access is guarded by a per-object mutex so concurrent method
// invocations on the same object are safe at the field level.
type RefObject struct {
	mu      sync.RWMutex
	fields  map[string]Value
	classes []string
}

// NewRefObject creates a reference object with the given fields and class
// sequence, most specific class first. The field map is copied.
func NewRefObject(fields map[string]Value, classes []string) (*RefObject, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("ref object: empty class sequence")
	}
	f := make(map[string]Value, len(fields))
	for k, v := range fields {
		f[k] = v
	}
	return &RefObject{
		fields:  f,
		classes: append([]string(nil), classes...),
	}, nil
}

// Classes returns a copy of the ordered class sequence.
func (r *RefObject) Classes() []string {
	return append([]string(nil), r.classes...)
}

// Get returns the value of a field and whether it exists.
func (r *RefObject) Get(name string) (Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.fields[name]
	return v, ok
}

// Set stores a field value. The write is immediately visible to every
// other holder of this object.
func (r *RefObject) Set(name string, v Value) {
	r.mu.Lock()
	r.fields[name] = v
	r.mu.Unlock()
}

// Has returns true if the field exists.
func (r *RefObject) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.fields[name]
	return ok
}

// FieldNames returns the sorted field names.
func (r *RefObject) FieldNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Copy returns a new RefObject with an independent field map and the same
// class sequence. Mutations on the original are not observable through
// the copy.
func (r *RefObject) Copy() *RefObject {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f := make(map[string]Value, len(r.fields))
	for k, v := range r.fields {
		f[k] = v
	}
	return &RefObject{
		fields:  f,
		classes: append([]string(nil), r.classes...),
	}
}

// ToValue wraps the ref object in a Value.
func (r *RefObject) ToValue() Value {
	return Value{kind: KindRef, ref: r}
}

// String implements the Stringer interface.
func (r *RefObject) String() string {
	return fmt.Sprintf("<ref %s>", strings.Join(r.classes, ","))
}
