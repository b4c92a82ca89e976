package shroud

import "sync/atomic"

// Record is a unit of sensed data with a fixed per-kind shape.
//
// Every record carries the idempotence marker. Once MarkTransformed has been
// called, Transformed reports true for the life of the instance.
type Record interface {
	Kind() Kind
	Transformed() bool
	MarkTransformed()
}

// Marker implements the marker half of Record. Embed it in concrete record
// types:
//
//	type GpsDatum struct {
//	    shroud.Marker
//	    Location shroud.Coordinate
//	}
//
//	func (*GpsDatum) Kind() shroud.Kind { return "GpsDatum" }
//
// The zero value is an untransformed record. There is deliberately no way to
// clear the flag once set.
type Marker struct {
	transformed atomic.Bool
}

// Transformed reports whether the record has passed through a Store pass,
// or was loaded from a payload that had.
func (m *Marker) Transformed() bool {
	return m.transformed.Load()
}

// MarkTransformed sets the marker. Calling it again is a no-op.
func (m *Marker) MarkTransformed() {
	m.transformed.Store(true)
}
