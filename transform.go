package shroud

import "context"

// Transform maps a raw field value to its anonymized form.
//
// Transforms must not retain or mutate the value they are given. They may
// read state from the Session, such as derived keys or offsets, so the same
// input yields the same output within one session for deterministic
// transforms.
type Transform interface {
	// Name is the stable identifier persisted in registry snapshots and
	// matched by the legacy encoding.
	Name() string

	// Apply returns the anonymized value.
	Apply(ctx context.Context, s *Session, value any) (any, error)
}

// Reversible is implemented by transforms whose output can be turned back
// into the original value by a holder of the session secrets.
type Reversible interface {
	Transform
	Revert(ctx context.Context, s *Session, value any) (any, error)
}

// TransformFunc adapts a plain function to the Transform interface.
type TransformFunc func(ctx context.Context, s *Session, value any) (any, error)

type funcTransform struct {
	name string
	fn   TransformFunc
}

// NewTransform returns a named Transform backed by fn.
func NewTransform(name string, fn TransformFunc) Transform {
	return &funcTransform{name: name, fn: fn}
}

func (t *funcTransform) Name() string { return t.name }

func (t *funcTransform) Apply(ctx context.Context, s *Session, value any) (any, error) {
	return t.fn(ctx, s, value)
}

// transformName returns the name of t, or "" for none.
func transformName(t Transform) string {
	if t == nil {
		return ""
	}
	return t.Name()
}
