package shroud

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

// testCodec is a simple JSON codec for testing.
type testCodec struct{}

func (c *testCodec) ContentType() string { return "application/json" }

func (c *testCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *testCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

const (
	kindGps   Kind = "GpsDatum"
	kindAccel Kind = "AccelDatum"
	kindBase  Kind = "Datum"
)

// baseRecord is shared by the test kinds, like a base class.
type baseRecord struct {
	Marker
	DeviceId string
}

func (b *baseRecord) base() *baseRecord { return b }

type based interface {
	Record
	base() *baseRecord
}

type gpsRecord struct {
	baseRecord
	Location Coordinate
	Label    string
}

func (*gpsRecord) Kind() Kind { return kindGps }

type accelRecord struct {
	baseRecord
	X float64
}

func (*accelRecord) Kind() Kind { return kindAccel }

func (r *accelRecord) Magnitude() float64 {
	if r.X < 0 {
		return -r.X
	}
	return r.X
}

var errBoom = errors.New("boom")

// countingTransform counts invocations and appends a suffix to text.
type countingTransform struct {
	name  string
	calls int
}

func (t *countingTransform) Name() string { return t.name }

func (t *countingTransform) Apply(_ context.Context, _ *Session, v any) (any, error) {
	t.calls++
	s, _ := v.(string)
	return s + "#" + t.name, nil
}

func failing() Transform {
	return NewTransform("Boom", func(context.Context, *Session, any) (any, error) {
		return nil, errBoom
	})
}

func deviceField() FieldDecl {
	return Field("DeviceId",
		func(r based) string { return r.base().DeviceId },
		func(r based, v string) { r.base().DeviceId = v },
		Sha256Hash(), MaskUUID(), &countingTransform{name: "Tag"},
	).DeclaredIn(kindBase)
}

func testSchemas() []Schema {
	return []Schema{
		{
			Kind: kindGps,
			New:  func() Record { return &gpsRecord{} },
			Fields: []FieldDecl{
				deviceField(),
				Field("Location",
					func(r *gpsRecord) Coordinate { return r.Location },
					func(r *gpsRecord, v Coordinate) { r.Location = v },
					RoundToNearestCity(), RoundTenths(), failing(),
				).Display("Position"),
				Field("Label",
					func(r *gpsRecord) string { return r.Label },
					func(r *gpsRecord, v string) { r.Label = v },
					MaskName(), &countingTransform{name: "Tag"},
				),
			},
		},
		{
			Kind: kindAccel,
			New:  func() Record { return &accelRecord{} },
			Fields: []FieldDecl{
				deviceField(),
				Field("X",
					func(r *accelRecord) float64 { return r.X },
					func(r *accelRecord, v float64) { r.X = v },
					RoundOnes(),
				),
				Computed("Magnitude", (*accelRecord).Magnitude),
			},
		},
	}
}

func testCatalog(t testing.TB) *Catalog {
	t.Helper()
	c := NewCatalog()
	for _, s := range testSchemas() {
		if err := c.Register(s); err != nil {
			t.Fatalf("Register(%s) error: %v", s.Kind, err)
		}
	}
	return c
}

func testSession(t testing.TB) *Session {
	t.Helper()
	s, err := NewSession(WithSessionID("session-1"), WithSecret([]byte("0123456789abcdef0123456789abcdef")))
	if err != nil {
		t.Fatalf("NewSession() error: %v", err)
	}
	return s
}

func testProcessor(t testing.TB) *Processor {
	t.Helper()
	p, err := NewProcessor(&testCodec{}, testCatalog(t), WithSession(testSession(t)))
	if err != nil {
		t.Fatalf("NewProcessor() error: %v", err)
	}
	return p
}

// decode unmarshals a stored payload for inspection.
func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("json.Unmarshal(%s) error: %v", data, err)
	}
	return m
}
