package shroud

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Processor serializes records with anonymization applied.
//
// Store consults the Registry for every stored field of the record, applies
// the assigned transform with the active Session, and marks the record
// transformed. Load restores records, including the marker, from the wire
// form.
//
// Processors are safe for concurrent use. The registry may be mutated while
// Store runs in other goroutines; each field sees the latest completed
// assignment at the moment it is looked up.
type Processor struct {
	codec    Codec
	catalog  *Catalog
	registry *Registry

	mu      sync.RWMutex
	session *Session
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithRegistry sets the registry. Defaults to an empty registry.
func WithRegistry(r *Registry) ProcessorOption {
	return func(p *Processor) { p.registry = r }
}

// WithSession sets the transform execution context. Defaults to a fresh
// session with a random secret.
func WithSession(s *Session) ProcessorOption {
	return func(p *Processor) { p.session = s }
}

// NewProcessor creates a Processor for the kinds in catalog.
func NewProcessor(codec Codec, catalog *Catalog, opts ...ProcessorOption) (*Processor, error) {
	if codec == nil {
		return nil, fmt.Errorf("codec is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	p := &Processor{
		codec:   codec,
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.registry == nil {
		p.registry = NewRegistry()
	}
	if p.session == nil {
		s, err := NewSession()
		if err != nil {
			return nil, err
		}
		p.session = s
	}

	emitProcessorCreated(context.Background(), codec.ContentType())
	return p, nil
}

// Catalog returns the processor's catalog.
func (p *Processor) Catalog() *Catalog { return p.catalog }

// Registry returns the processor's registry.
func (p *Processor) Registry() *Registry { return p.registry }

// Codec returns the processor's codec.
func (p *Processor) Codec() Codec { return p.codec }

// Session returns the active session.
func (p *Processor) Session() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// SetSession replaces the active session, e.g. after key rotation.
// Returns the processor for chaining. Safe for concurrent use.
func (p *Processor) SetSession(s *Session) *Processor {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = s
	return p
}

// Store applies assigned transforms and marshals the result.
//
// The record itself is never modified except for its marker, which is set
// once the output has been produced. If any transform fails, Store returns a
// *TransformError, produces no output and leaves the marker unset.
func (p *Processor) Store(ctx context.Context, rec Record) ([]byte, error) {
	if rec == nil {
		data, err := p.codec.Marshal(nil)
		if err != nil {
			return nil, newCodecError(ErrMarshal, err)
		}
		return data, nil
	}

	kind := rec.Kind()
	start := time.Now()
	emitStoreStart(ctx, p.codec.ContentType(), kind)

	var (
		retErr      error
		retData     []byte
		transformed int
		passthrough int
	)
	defer func() {
		emitStoreComplete(ctx, p.codec.ContentType(), kind,
			len(retData), time.Since(start), transformed, passthrough, retErr)
	}()

	already := rec.Transformed()
	if already {
		passthrough = 1
	}

	doc, n, err := p.document(ctx, rec, already)
	if err != nil {
		retErr = err
		return nil, retErr
	}
	transformed = n

	data, err := p.codec.Marshal(doc)
	if err != nil {
		retErr = newCodecError(ErrMarshal, err)
		return nil, retErr
	}

	rec.MarkTransformed()
	retData = data
	return retData, nil
}

// Document builds the ordered document Store would marshal, without
// marshaling it and without setting the record's marker. A nil record
// fails with ErrNilRecord.
func (p *Processor) Document(ctx context.Context, rec Record) (*Document, error) {
	if rec == nil {
		return nil, newConfigError(ErrNilRecord, "", "")
	}
	doc, _, err := p.document(ctx, rec, rec.Transformed())
	return doc, err
}

// document runs the interceptor over every stored field of rec.
func (p *Processor) document(ctx context.Context, rec Record, already bool) (*Document, int, error) {
	kind := rec.Kind()
	e, ok := p.catalog.entry(kind)
	if !ok {
		return nil, 0, newConfigError(ErrUnknownKind, "", string(kind))
	}

	session := p.Session()
	doc := &Document{
		Kind:    kind,
		Entries: make([]Entry, 0, len(e.schema.Fields)+1),
	}

	n := 0
	for _, f := range e.schema.Fields {
		// Computed fields are not stored state and are never emitted.
		if !f.Settable() {
			continue
		}

		value, applied, err := p.intercept(ctx, session, kind, f, f.get(rec), already)
		if err != nil {
			return nil, 0, err
		}
		if applied {
			n++
		}
		doc.add(f.Name, value)
	}

	// The marker is always emitted as true: this record has been through
	// anonymization processing, whether or not any field changed.
	doc.add(MarkerField, true)

	return doc, n, nil
}

// intercept decides the emitted value of one field. applied reports whether
// a transform ran.
func (p *Processor) intercept(ctx context.Context, s *Session, kind Kind, f FieldDecl, raw any, already bool) (value any, applied bool, err error) {
	if isAbsent(raw) || already {
		return raw, false, nil
	}

	ref, err := p.catalog.Canonical(kind, f.Name)
	if err != nil {
		return nil, false, err
	}

	t := p.registry.Lookup(ref)
	if t == nil {
		return raw, false, nil
	}

	out, err := t.Apply(ctx, s, raw)
	if err != nil {
		return nil, false, newTransformError(ref, t.Name(), err)
	}
	return out, true, nil
}

// Load unmarshals data into a new record of the kind named in the payload.
// A payload that reports itself transformed yields a record whose marker is
// set, so storing it again re-emits its values unchanged.
func (p *Processor) Load(ctx context.Context, data []byte) (Record, error) {
	start := time.Now()
	emitLoadStart(ctx, p.codec.ContentType())

	var (
		kind   Kind
		retErr error
	)
	defer func() {
		emitLoadComplete(ctx, p.codec.ContentType(), kind, time.Since(start), retErr)
	}()

	var raw map[string]any
	if err := p.codec.Unmarshal(data, &raw); err != nil {
		retErr = newCodecError(ErrUnmarshal, err)
		return nil, retErr
	}

	name, ok := raw[KindKey].(string)
	if !ok {
		retErr = newCodecError(ErrUnmarshal, fmt.Errorf("missing %s", KindKey))
		return nil, retErr
	}
	kind = Kind(name)

	e, ok := p.catalog.entry(kind)
	if !ok {
		retErr = newConfigError(ErrUnknownKind, "", name)
		return nil, retErr
	}

	rec := e.schema.New()
	for _, f := range e.schema.Fields {
		if !f.Settable() {
			continue
		}
		v, ok := raw[f.Name]
		if !ok || v == nil {
			continue
		}
		decoded, err := f.decode(p.codec, v)
		if err != nil {
			retErr = newCodecError(ErrUnmarshal, fmt.Errorf("field %s: %w", Ref(kind, f.Name), err))
			return nil, retErr
		}
		if err := f.set(rec, decoded); err != nil {
			retErr = err
			return nil, retErr
		}
	}

	if marked, _ := raw[MarkerField].(bool); marked {
		rec.MarkTransformed()
	}
	return rec, nil
}
