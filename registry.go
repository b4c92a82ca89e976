package shroud

import (
	"context"
	"sort"
	"sync"
)

// Assignment pairs a canonical field with its transform. A nil Transform
// means none.
type Assignment struct {
	Ref       FieldRef
	Transform Transform
}

// Registry is the live mapping from canonical field to assigned transform
// for one session.
//
// An explicit none is kept as an entry with a nil transform, so a field the
// user deliberately left untransformed is distinguishable from one never
// configured. Lookup reports both as nil; Decided tells them apart.
//
// All operations hold a single registry-wide lock for the duration of one
// map operation. Lookup returns the transform handle and releases the lock
// before the caller invokes it.
//
// The registry does not check assignments against a Catalog. Callers that
// accept user input validate at their boundary (see Processor.Select).
type Registry struct {
	mu      sync.RWMutex
	entries map[FieldRef]Transform
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[FieldRef]Transform)}
}

// Assign replaces the assignment for ref. A nil t records an explicit none.
func (r *Registry) Assign(ref FieldRef, t Transform) {
	r.mu.Lock()
	r.entries[ref] = t
	r.mu.Unlock()

	emitAssigned(context.Background(), ref, transformName(t))
}

// Lookup returns the transform assigned to ref, or nil.
func (r *Registry) Lookup(ref FieldRef) Transform {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[ref]
}

// Has reports whether ref has a transform assigned. An explicit none is
// not an assignment.
func (r *Registry) Has(ref FieldRef) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[ref] != nil
}

// Decided reports whether ref has a recorded choice, including an explicit
// none.
func (r *Registry) Decided(ref FieldRef) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[ref]
	return ok
}

// Len returns the number of refs with a transform assigned.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.entries {
		if t != nil {
			n++
		}
	}
	return n
}

// Snapshot returns all assignments ordered by kind then field. Explicit
// none entries are excluded.
func (r *Registry) Snapshot() []Assignment {
	return r.collect(false)
}

// Choices returns every recorded choice ordered by kind then field,
// including explicit none entries with a nil Transform.
func (r *Registry) Choices() []Assignment {
	return r.collect(true)
}

func (r *Registry) collect(withNone bool) []Assignment {
	r.mu.RLock()
	out := make([]Assignment, 0, len(r.entries))
	for ref, t := range r.entries {
		if t == nil && !withNone {
			continue
		}
		out = append(out, Assignment{Ref: ref, Transform: t})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Ref.Kind != out[j].Ref.Kind {
			return out[i].Ref.Kind < out[j].Ref.Kind
		}
		return out[i].Ref.Field < out[j].Ref.Field
	})
	return out
}

// Merge inserts each assignment whose ref has no recorded choice yet, under
// one lock. Existing entries, explicit none included, are never overwritten
// and nil transforms are skipped. Returns the number of entries inserted.
func (r *Registry) Merge(assignments []Assignment) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range assignments {
		if a.Transform == nil {
			continue
		}
		if _, exists := r.entries[a.Ref]; exists {
			continue
		}
		r.entries[a.Ref] = a.Transform
		n++
	}
	return n
}

// restore records every choice in assignments, nil transforms as explicit
// none, without overwriting existing entries.
func (r *Registry) restore(assignments []Assignment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range assignments {
		if _, exists := r.entries[a.Ref]; !exists {
			r.entries[a.Ref] = a.Transform
		}
	}
}

// Clear removes every recorded choice.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[FieldRef]Transform)
}
