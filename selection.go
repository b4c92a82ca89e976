package shroud

import (
	"context"

	"github.com/samber/lo"
)

// NoneOption is the label of the implicit zeroth selection.
const NoneOption = "None"

// selectable resolves ref to a stored field declaration.
func (p *Processor) selectable(ref FieldRef) (FieldDecl, error) {
	f, err := p.catalog.Field(ref)
	if err != nil {
		return FieldDecl{}, err
	}
	if !f.Settable() {
		return FieldDecl{}, newConfigError(ErrNotSettable, "", ref.String())
	}
	return f, nil
}

// Options lists the selectable transforms for ref: "None" followed by the
// declared transform names in declaration order.
func (p *Processor) Options(ref FieldRef) ([]string, error) {
	f, err := p.selectable(ref)
	if err != nil {
		return nil, err
	}
	names := lo.Map(f.Transforms, func(t Transform, _ int) string { return t.Name() })
	return append([]string{NoneOption}, names...), nil
}

// CurrentIndex returns the position of ref's current assignment in its
// Options list. Zero means none. An assigned transform that is no longer
// declared for the field also reports zero, with a diagnostic signal.
func (p *Processor) CurrentIndex(ref FieldRef) (int, error) {
	f, err := p.selectable(ref)
	if err != nil {
		return 0, err
	}
	t := p.registry.Lookup(ref)
	if t == nil {
		return 0, nil
	}
	_, i, found := lo.FindIndexOf(f.Transforms, func(d Transform) bool { return d.Name() == t.Name() })
	if !found {
		emitTransformMissing(context.Background(), ref, t.Name())
		return 0, nil
	}
	return i + 1, nil
}

// Select assigns the option at index to ref. Index zero clears the
// assignment. This is the validation boundary for user input: indexes
// outside Options fail with ErrSelectionRange and computed fields with
// ErrNotSettable.
func (p *Processor) Select(ref FieldRef, index int) error {
	f, err := p.selectable(ref)
	if err != nil {
		return err
	}
	if index < 0 || index > len(f.Transforms) {
		return newConfigError(ErrSelectionRange, "", ref.String())
	}
	if index == 0 {
		p.registry.Assign(ref, nil)
		return nil
	}
	p.registry.Assign(ref, f.Transforms[index-1])
	return nil
}

// SelectByName assigns the declared transform called name to ref. An empty
// name or NoneOption clears the assignment.
func (p *Processor) SelectByName(ref FieldRef, name string) error {
	if _, err := p.selectable(ref); err != nil {
		return err
	}
	if name == "" || name == NoneOption {
		p.registry.Assign(ref, nil)
		return nil
	}
	t, ok := p.catalog.Resolve(ref, name)
	if !ok {
		return newConfigError(ErrUndeclaredTransform, name, ref.String())
	}
	p.registry.Assign(ref, t)
	return nil
}
